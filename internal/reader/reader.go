// Package reader turns a byte source into text incrementally, reporting load
// progress as it goes.
//
// Decoding runs through a stateful incremental UTF-8 decoder, so a multi-byte
// character split across two chunks decodes correctly with no corruption or
// duplication. Progress callbacks are monotonically non-decreasing and end
// with consumed == total.
package reader

import (
	"io"

	"golang.org/x/text/encoding/unicode"

	apperrors "github.com/mcncl/jsondiff/internal/errors"
)

// ProgressFunc receives load progress as (bytes consumed, bytes total).
type ProgressFunc func(consumed, total int64)

const defaultChunkSize = 64 * 1024

// Reader streams a sized byte source into decoded text.
type Reader struct {
	src        io.Reader
	total      int64
	onProgress ProgressFunc
	chunkSize  int
}

// New creates a Reader over src with its declared total size in bytes.
// onProgress may be nil.
func New(src io.Reader, total int64, onProgress ProgressFunc) *Reader {
	return &Reader{
		src:        src,
		total:      total,
		onProgress: onProgress,
		chunkSize:  defaultChunkSize,
	}
}

// ReadAll streams the whole source through the decoder, invoking the
// progress callback after each chunk. Read failures surface as IO errors and
// are not retried.
func (r *Reader) ReadAll() (string, error) {
	counter := &countingReader{src: r.src}
	decoded := unicode.UTF8.NewDecoder().Reader(counter)

	r.emit(0)
	var out []byte
	buf := make([]byte, r.chunkSize)
	for {
		n, err := decoded.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", apperrors.NewIOError("failed to read source", err)
		}
		r.emit(counter.n)
	}
	r.emit(r.total)
	return string(out), nil
}

// emit reports progress clamped to total, keeping the sequence monotone even
// if the source yields more bytes than its declared size.
func (r *Reader) emit(consumed int64) {
	if r.onProgress == nil {
		return
	}
	if consumed > r.total {
		consumed = r.total
	}
	r.onProgress(consumed, r.total)
}

// ReadFull is the non-streaming fallback: it reads the entire source at once
// and emits exactly two progress events, 0 and total.
func ReadFull(src io.Reader, onProgress ProgressFunc) (string, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", apperrors.NewIOError("failed to read source", err)
	}
	decoded, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		return "", apperrors.NewIOError("failed to decode source", err)
	}
	total := int64(len(raw))
	if onProgress != nil {
		onProgress(0, total)
		onProgress(total, total)
	}
	return string(decoded), nil
}

// countingReader tracks how many raw bytes the decoder has consumed from the
// underlying source.
type countingReader struct {
	src io.Reader
	n   int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.src.Read(p)
	c.n += int64(n)
	return n, err
}
