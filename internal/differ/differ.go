// Package differ computes a capped, summarized structural difference between
// two canonical value trees.
//
// The comparison is recursive and deterministic: entries are emitted top-down
// and, within a container, in the order keys and indices are visited. The
// report is truncated at DiffOptions.MaxDiffs entries but the comparison
// always runs to completion, so the summary reflects the true totals.
package differ

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/mcncl/jsondiff/internal/models"
)

// Diff compares left and right under opts.
func Diff(left, right models.Value, opts models.DiffOptions) models.DiffResult {
	res, _ := DiffContext(context.Background(), left, right, opts)
	return res
}

// DiffContext is Diff with cooperative cancellation: ctx is polled between
// top-level container children. The returned error is non-nil only when ctx
// was cancelled, in which case the result is meaningless.
func DiffContext(ctx context.Context, left, right models.Value, opts models.DiffOptions) (models.DiffResult, error) {
	d := &differ{ctx: ctx, opts: opts}
	d.compare("", left, right, 0)
	if err := ctx.Err(); err != nil {
		return models.DiffResult{}, err
	}
	return models.DiffResult{
		Identical:   d.summary.Total() == 0,
		Summary:     d.summary,
		Differences: d.entries,
	}, nil
}

type differ struct {
	ctx     context.Context
	opts    models.DiffOptions
	entries []models.DiffEntry
	summary models.DiffSummary
}

func (d *differ) record(kind models.EntryKind, path string) {
	switch kind {
	case models.EntryAdded:
		d.summary.Added++
	case models.EntryRemoved:
		d.summary.Removed++
	case models.EntryModified:
		d.summary.Modified++
	}
	if d.opts.MaxDiffs == 0 || uint32(len(d.entries)) < d.opts.MaxDiffs {
		d.entries = append(d.entries, models.DiffEntry{Kind: kind, Path: path})
	}
}

func (d *differ) compare(path string, left, right models.Value, depth int) {
	if d.ctx.Err() != nil {
		return
	}
	// different variant kinds are a single modification; children are not
	// descended into
	if left.Kind() != right.Kind() {
		d.record(models.EntryModified, path)
		return
	}
	switch left.Kind() {
	case models.KindObject:
		d.compareObjects(path, left, right, depth)
	case models.KindArray:
		if d.opts.IgnoreArrayOrder {
			d.compareArraysUnordered(path, left, right)
		} else {
			d.compareArraysPositional(path, left, right, depth)
		}
	default:
		if !left.Equal(right) {
			d.record(models.EntryModified, path)
		}
	}
}

func (d *differ) compareObjects(path string, left, right models.Value, depth int) {
	if d.opts.IgnoreKeyOrder {
		d.compareObjectsSorted(path, left, right, depth)
		return
	}

	// left members in insertion order: removed or recursed
	for _, m := range left.Members() {
		if depth == 0 && d.ctx.Err() != nil {
			return
		}
		child := joinPath(path, escapeKey(m.Key))
		if rv, ok := right.Get(m.Key); ok {
			d.compare(child, m.Value, rv, depth+1)
		} else {
			d.record(models.EntryRemoved, child)
		}
	}
	// then right-only members in right's insertion order: added
	for _, m := range right.Members() {
		if _, ok := left.Get(m.Key); !ok {
			d.record(models.EntryAdded, joinPath(path, escapeKey(m.Key)))
		}
	}
}

// compareObjectsSorted enumerates the union of keys in sorted order. Only the
// enumeration order changes; the set of reported entries is the same as in
// insertion-order mode.
func (d *differ) compareObjectsSorted(path string, left, right models.Value, depth int) {
	keys := make([]string, 0, left.Len()+right.Len())
	for _, m := range left.Members() {
		keys = append(keys, m.Key)
	}
	for _, m := range right.Members() {
		if _, ok := left.Get(m.Key); !ok {
			keys = append(keys, m.Key)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		if depth == 0 && d.ctx.Err() != nil {
			return
		}
		child := joinPath(path, escapeKey(key))
		lv, inLeft := left.Get(key)
		rv, inRight := right.Get(key)
		switch {
		case inLeft && inRight:
			d.compare(child, lv, rv, depth+1)
		case inLeft:
			d.record(models.EntryRemoved, child)
		default:
			d.record(models.EntryAdded, child)
		}
	}
}

func (d *differ) compareArraysPositional(path string, left, right models.Value, depth int) {
	ln, rn := left.Len(), right.Len()
	n := ln
	if rn < n {
		n = rn
	}
	for i := 0; i < n; i++ {
		if depth == 0 && d.ctx.Err() != nil {
			return
		}
		d.compare(joinPath(path, strconv.Itoa(i)), left.Index(i), right.Index(i), depth+1)
	}
	for i := n; i < ln; i++ {
		d.record(models.EntryRemoved, joinPath(path, strconv.Itoa(i)))
	}
	for i := n; i < rn; i++ {
		d.record(models.EntryAdded, joinPath(path, strconv.Itoa(i)))
	}
}

// compareArraysUnordered treats both arrays as multisets under full
// structural equality. Matched elements produce no entries regardless of
// position; an unmatched left element is Removed, an unmatched right element
// is Added. This mode never emits Modified for array elements because no
// positional correspondence is assumed.
func (d *differ) compareArraysUnordered(path string, left, right models.Value) {
	// bucket right elements by subtree hash, then confirm candidate matches
	// with Equal so hash collisions cannot produce false matches
	buckets := make(map[uint64][]int, right.Len())
	for j, e := range right.Elements() {
		h := valueHash(e)
		buckets[h] = append(buckets[h], j)
	}
	matched := make([]bool, right.Len())

	for i, le := range left.Elements() {
		found := false
		for _, j := range buckets[valueHash(le)] {
			if !matched[j] && le.Equal(right.Index(j)) {
				matched[j] = true
				found = true
				break
			}
		}
		if !found {
			d.record(models.EntryRemoved, joinPath(path, strconv.Itoa(i)))
		}
	}
	for j := range matched {
		if !matched[j] {
			d.record(models.EntryAdded, joinPath(path, strconv.Itoa(j)))
		}
	}
}

func joinPath(path, segment string) string {
	return path + "/" + segment
}

// escapeKey applies JSON-pointer escaping: "~" becomes "~0", "/" becomes "~1".
func escapeKey(key string) string {
	if !strings.ContainsAny(key, "~/") {
		return key
	}
	key = strings.ReplaceAll(key, "~", "~0")
	return strings.ReplaceAll(key, "/", "~1")
}
