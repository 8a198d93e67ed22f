// Package parser converts JSON text into the canonical ordered value tree.
//
// The grammar is strict: no trailing commas, no comments, a single top-level
// value, and duplicate object keys are rejected. Object member order and
// array element order are preserved exactly as written. Numbers become IEEE
// 754 doubles; integers beyond 2^53 lose precision, which is accepted and
// documented rather than treated as an error.
package parser

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/go-json-experiment/json/jsontext"

	"github.com/mcncl/jsondiff/internal/models"
)

// Parse converts text into a ParseResult. Syntax violations are returned as
// data inside the result, never as a Go error.
func Parse(text string) models.ParseResult {
	res, _ := ParseContext(context.Background(), text)
	return res
}

// ParseContext is Parse with cooperative cancellation: ctx is polled between
// top-level container children, so a cancelled multi-megabyte parse aborts
// early. The returned error is non-nil only when ctx was cancelled.
func ParseContext(ctx context.Context, text string) (models.ParseResult, error) {
	dec := jsontext.NewDecoder(strings.NewReader(text))

	root, err := parseValue(ctx, dec, 0)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return models.ParseResult{}, ctxErr
		}
		return models.ParseResult{Err: positionError(text, dec, err)}, nil
	}

	// The tokenizer accepts streams of top-level values; this parser does not.
	if off, ok := trailingData(text, dec.InputOffset()); ok {
		return models.ParseResult{Err: errorAt(text, off, "unexpected data after top-level value")}, nil
	}

	return models.ParseResult{Value: &root}, nil
}

func parseValue(ctx context.Context, dec *jsontext.Decoder, depth int) (models.Value, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return models.Value{}, err
	}
	switch tok.Kind() {
	case 'n':
		return models.NewNull(), nil
	case 't', 'f':
		return models.NewBool(tok.Bool()), nil
	case '"':
		return models.NewString(tok.String()), nil
	case '0':
		return models.NewNumber(tok.Float()), nil
	case '{':
		return parseObject(ctx, dec, depth+1)
	case '[':
		return parseArray(ctx, dec, depth+1)
	default:
		return models.Value{}, errors.New("unexpected token " + tok.Kind().String())
	}
}

func parseObject(ctx context.Context, dec *jsontext.Decoder, depth int) (models.Value, error) {
	var members []models.Member
	for {
		if depth == 1 {
			if err := ctx.Err(); err != nil {
				return models.Value{}, err
			}
		}
		tok, err := dec.ReadToken()
		if err != nil {
			return models.Value{}, err
		}
		if tok.Kind() == '}' {
			break
		}
		key := tok.String()
		child, err := parseValue(ctx, dec, depth)
		if err != nil {
			return models.Value{}, err
		}
		members = append(members, models.Member{Key: key, Value: child})
	}
	// the tokenizer already rejects duplicate names; constructing through
	// NewObject keeps uniqueness enforced in one place
	return models.NewObject(members...)
}

func parseArray(ctx context.Context, dec *jsontext.Decoder, depth int) (models.Value, error) {
	var elems []models.Value
	for {
		if depth == 1 {
			if err := ctx.Err(); err != nil {
				return models.Value{}, err
			}
		}
		if dec.PeekKind() == ']' {
			if _, err := dec.ReadToken(); err != nil {
				return models.Value{}, err
			}
			break
		}
		child, err := parseValue(ctx, dec, depth)
		if err != nil {
			return models.Value{}, err
		}
		elems = append(elems, child)
	}
	return models.NewArray(elems...), nil
}

// positionError turns a tokenizer error into a ParseError with the byte
// offset of the offending token and its 1-based line and column.
func positionError(text string, dec *jsontext.Decoder, err error) *models.ParseError {
	var syn *jsontext.SyntacticError
	if errors.As(err, &syn) {
		msg := syn.Error()
		if syn.Err != nil {
			msg = syn.Err.Error()
		}
		return errorAt(text, syn.ByteOffset, msg)
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return errorAt(text, int64(len(text)), "unexpected end of input")
	}
	return errorAt(text, dec.InputOffset(), err.Error())
}

func errorAt(text string, offset int64, message string) *models.ParseError {
	line, column := locate(text, offset)
	return &models.ParseError{
		Message: message,
		Offset:  offset,
		Line:    line,
		Column:  column,
	}
}

// locate translates a byte offset into a 1-based line and column by counting
// line breaks up to the offset.
func locate(text string, offset int64) (line, column int) {
	if offset < 0 {
		offset = 0
	}
	if offset > int64(len(text)) {
		offset = int64(len(text))
	}
	prefix := text[:offset]
	line = 1 + strings.Count(prefix, "\n")
	column = int(offset) - strings.LastIndexByte(prefix, '\n')
	return line, column
}

// trailingData reports the offset of the first non-whitespace byte at or
// after from, if any.
func trailingData(text string, from int64) (int64, bool) {
	for i := from; i < int64(len(text)); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
		default:
			return i, true
		}
	}
	return 0, false
}
