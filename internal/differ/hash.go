package differ

import (
	"encoding/binary"
	"hash/fnv"
	"math"

	"github.com/mcncl/jsondiff/internal/models"
)

// valueHash returns a 64-bit FNV-1a signature for a subtree, used to bucket
// array elements in multiset matching. The hash must agree with Value.Equal:
// equal values hash identically, so object member hashes are folded
// order-independently and zero normalizes with negative zero.
func valueHash(v models.Value) uint64 {
	switch v.Kind() {
	case models.KindNull:
		return scalarHash(0, nil)
	case models.KindBool:
		if v.Bool() {
			return scalarHash(1, []byte{1})
		}
		return scalarHash(1, []byte{0})
	case models.KindNumber:
		n := v.Number()
		if n == 0 {
			n = 0 // fold -0 into +0, they compare equal
		}
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(n))
		return scalarHash(2, buf[:])
	case models.KindString:
		return scalarHash(3, []byte(v.Text()))
	case models.KindArray:
		h := fnv.New64a()
		h.Write([]byte{4})
		var buf [8]byte
		for _, e := range v.Elements() {
			binary.BigEndian.PutUint64(buf[:], valueHash(e))
			h.Write(buf[:])
		}
		return h.Sum64()
	case models.KindObject:
		// XOR-fold member hashes so key order does not affect the signature
		var acc uint64
		var buf [8]byte
		for _, m := range v.Members() {
			mh := fnv.New64a()
			mh.Write([]byte(m.Key))
			mh.Write([]byte{0})
			binary.BigEndian.PutUint64(buf[:], valueHash(m.Value))
			mh.Write(buf[:])
			acc ^= mh.Sum64()
		}
		h := fnv.New64a()
		h.Write([]byte{5})
		binary.BigEndian.PutUint64(buf[:], uint64(v.Len()))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], acc)
		h.Write(buf[:])
		return h.Sum64()
	default:
		return 0
	}
}

func scalarHash(tag byte, data []byte) uint64 {
	h := fnv.New64a()
	h.Write([]byte{tag})
	h.Write(data)
	return h.Sum64()
}
