package models

import "fmt"

// ParseError describes the first syntax violation found in a document.
// Line and Column are 1-based and derived by scanning the source up to
// Offset; Offset is the byte position of the offending token.
type ParseError struct {
	Message string `json:"message"`
	Offset  int64  `json:"byte_position"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// ParseResult is the outcome of a parse job: exactly one of Value or Err is
// set. Syntax failures are data, not Go errors, so they travel inside the
// result across the worker boundary.
type ParseResult struct {
	Value *Value      `json:"value,omitempty"`
	Err   *ParseError `json:"error,omitempty"`
}

// Ok reports whether the parse succeeded.
func (r ParseResult) Ok() bool { return r.Err == nil }

// Clone deep-copies the result for handoff across the worker channel.
func (r ParseResult) Clone() ParseResult {
	out := ParseResult{}
	if r.Value != nil {
		v := r.Value.Clone()
		out.Value = &v
	}
	if r.Err != nil {
		e := *r.Err
		out.Err = &e
	}
	return out
}

// DiffOptions configures a structural comparison.
type DiffOptions struct {
	// IgnoreKeyOrder only changes the enumeration order of object members in
	// the report; object equality is order-independent either way. When set,
	// members are visited in sorted key order instead of insertion order.
	IgnoreKeyOrder bool `json:"ignore_key_order"`
	// IgnoreArrayOrder switches array comparison from positional to
	// multiset-based matching.
	IgnoreArrayOrder bool `json:"ignore_array_order"`
	// MaxDiffs caps the number of entries retained in the report. The
	// comparison always runs to completion so the summary stays exact;
	// zero means no cap.
	MaxDiffs uint32 `json:"max_diffs"`
}

// DefaultMaxDiffs is the report cap applied when the caller does not choose one.
const DefaultMaxDiffs uint32 = 100

// DefaultDiffOptions returns positional, order-sensitive comparison with the
// default report cap.
func DefaultDiffOptions() DiffOptions {
	return DiffOptions{MaxDiffs: DefaultMaxDiffs}
}

// EntryKind classifies a single difference.
type EntryKind string

const (
	EntryAdded    EntryKind = "added"
	EntryRemoved  EntryKind = "removed"
	EntryModified EntryKind = "modified"
)

// DiffEntry is one reported difference. Path is a /-separated pointer into
// the tree: array indices in decimal, object keys verbatim with "~"
// escaped as "~0" and "/" as "~1".
type DiffEntry struct {
	Kind EntryKind `json:"kind"`
	Path string    `json:"path"`
}

// DiffSummary counts every difference found, regardless of report truncation.
type DiffSummary struct {
	Added    uint32 `json:"added"`
	Removed  uint32 `json:"removed"`
	Modified uint32 `json:"modified"`
}

// Total returns the complete difference count.
func (s DiffSummary) Total() uint32 { return s.Added + s.Removed + s.Modified }

// DiffResult is the outcome of a diff job. Identical is true iff the
// complete comparison produced zero entries, independent of truncation;
// Differences holds at most MaxDiffs entries in deterministic top-down order.
type DiffResult struct {
	Identical   bool        `json:"identical"`
	Summary     DiffSummary `json:"summary"`
	Differences []DiffEntry `json:"differences"`
}

// Clone deep-copies the result for handoff across the worker channel.
func (r DiffResult) Clone() DiffResult {
	out := r
	if r.Differences != nil {
		out.Differences = make([]DiffEntry, len(r.Differences))
		copy(out.Differences, r.Differences)
	}
	return out
}

// JobKind distinguishes the two kinds of background work.
type JobKind string

const (
	JobParse JobKind = "parse"
	JobDiff  JobKind = "diff"
)

// ProgressEvent is an informational notification of partial completion.
// Fraction, when present, is in [0.0, 1.0]; neither field is required for
// correctness.
type ProgressEvent struct {
	ID       uint64   `json:"id"`
	Fraction *float64 `json:"fraction,omitempty"`
	Message  string   `json:"message,omitempty"`
}
