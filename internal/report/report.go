// Package report renders a DiffResult for human or machine consumption.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/mcncl/jsondiff/internal/errors"
	"github.com/mcncl/jsondiff/internal/models"
)

// entry prefixes follow the usual diff conventions.
const (
	markAdded    = "+"
	markRemoved  = "-"
	markModified = "~"
)

// Text renders the result as a line-oriented report: one line per retained
// entry, then a summary. A truncated report says so explicitly.
func Text(res models.DiffResult) string {
	var b strings.Builder

	if res.Identical {
		b.WriteString("Documents are identical.\n")
		return b.String()
	}

	for _, e := range res.Differences {
		b.WriteString(mark(e.Kind))
		b.WriteByte(' ')
		b.WriteString(e.Path)
		b.WriteByte('\n')
	}

	total := res.Summary.Total()
	if shown := uint32(len(res.Differences)); shown < total {
		fmt.Fprintf(&b, "... and %d more\n", total-shown)
	}
	fmt.Fprintf(&b, "%d added, %d removed, %d modified\n",
		res.Summary.Added, res.Summary.Removed, res.Summary.Modified)
	return b.String()
}

// JSON renders the result as indented JSON.
func JSON(res models.DiffResult) (string, error) {
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", apperrors.NewOutputError("failed to encode report", err)
	}
	return string(out), nil
}

func mark(kind models.EntryKind) string {
	switch kind {
	case models.EntryAdded:
		return markAdded
	case models.EntryRemoved:
		return markRemoved
	case models.EntryModified:
		return markModified
	default:
		return "?"
	}
}

// ParseFailure renders a parse error with its source location, for the CLI.
func ParseFailure(name string, perr *models.ParseError) string {
	return fmt.Sprintf("%s: line %d, column %d (byte %d): %s",
		name, perr.Line, perr.Column, perr.Offset, perr.Message)
}
