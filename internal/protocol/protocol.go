// Package protocol defines the message types exchanged between the
// orchestrator and the background worker.
//
// The transport is an in-process channel pair carrying these structs by
// value; the JSON tags keep the protocol serializable should the worker ever
// move out of process. Ordering is guaranteed within one id's lifetime, not
// across ids. Every job sees zero or more progress responses followed by
// exactly one terminal response, either "result" or "error".
package protocol

import "github.com/mcncl/jsondiff/internal/models"

// RequestType enumerates caller-to-worker messages.
type RequestType string

const (
	RequestParse  RequestType = "parse"
	RequestDiff   RequestType = "diff"
	RequestCancel RequestType = "cancel"
)

// ResponseType enumerates worker-to-caller messages.
type ResponseType string

const (
	// ResponseProgress is informational and never required for correctness.
	ResponseProgress ResponseType = "progress"
	// ResponseResult is the terminal message for a completed job. Structured
	// parse failures travel inside the result, not as ResponseError.
	ResponseResult ResponseType = "result"
	// ResponseError is the terminal message for transport or unexpected
	// failures only.
	ResponseError ResponseType = "error"
)

// ParsePayload carries the text of a parse job.
type ParsePayload struct {
	Text string `json:"text"`
}

// DiffPayload carries both canonical values and the comparison options for a
// diff job. The values are full copies owned by the job.
type DiffPayload struct {
	Left    models.Value       `json:"left"`
	Right   models.Value       `json:"right"`
	Options models.DiffOptions `json:"options"`
}

// Request is one caller-to-worker message. Exactly one payload field is set,
// matching Type; cancel requests carry only the id.
type Request struct {
	Type  RequestType   `json:"type"`
	ID    uint64        `json:"id"`
	Parse *ParsePayload `json:"parse,omitempty"`
	Diff  *DiffPayload  `json:"diff,omitempty"`
}

// Response is one worker-to-caller message.
type Response struct {
	Type     ResponseType        `json:"type"`
	ID       uint64              `json:"id"`
	Progress *float64            `json:"progress,omitempty"`
	Message  string              `json:"message,omitempty"`
	Parse    *models.ParseResult `json:"parse,omitempty"`
	Diff     *models.DiffResult  `json:"diff,omitempty"`
	Error    string              `json:"error,omitempty"`
}
