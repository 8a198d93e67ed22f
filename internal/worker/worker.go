// Package worker hosts the parser and differ in an isolated goroutine so
// large-document work never stalls the interactive caller.
//
// The worker consumes one job at a time from its request queue, computes
// synchronously within its own goroutine, and emits zero or more progress
// responses followed by exactly one terminal response per job id. Messages
// referencing an unknown id, such as a late cancel for a completed job, are
// ignored.
package worker

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcncl/jsondiff/internal/differ"
	apperrors "github.com/mcncl/jsondiff/internal/errors"
	"github.com/mcncl/jsondiff/internal/parser"
	"github.com/mcncl/jsondiff/internal/protocol"
)

const defaultQueueSize = 16

// Worker is a single background execution unit. Create one with New, feed it
// with Send, consume Responses, and Stop it when done.
type Worker struct {
	jobs      chan job
	responses chan protocol.Response

	mu       sync.Mutex
	inflight map[uint64]context.CancelFunc

	// sendMu serializes queue sends against Stop closing the queue. It is
	// never held together with mu.
	sendMu  sync.Mutex
	stopped bool
}

// job pairs a request with the context its cancel message arms.
type job struct {
	req protocol.Request
	ctx context.Context
}

// New starts a worker goroutine and returns its handle.
func New() *Worker {
	w := &Worker{
		jobs:      make(chan job, defaultQueueSize),
		responses: make(chan protocol.Response, defaultQueueSize),
		inflight:  make(map[uint64]context.CancelFunc),
	}
	go w.run()
	return w
}

// Responses returns the worker-to-caller channel. It is closed after Stop
// once all queued jobs have drained.
func (w *Worker) Responses() <-chan protocol.Response {
	return w.responses
}

// Send delivers one request to the worker. Cancel requests take effect
// immediately, even while another job is executing; parse and diff requests
// queue in order. Returns ErrWorkerStopped after Stop.
func (w *Worker) Send(req protocol.Request) error {
	if req.Type == protocol.RequestCancel {
		// arm the in-flight cancellation if the id is known; unknown ids are
		// ignored per the protocol contract
		w.mu.Lock()
		cancel, ok := w.inflight[req.ID]
		w.mu.Unlock()
		if ok {
			cancel()
		}
		return nil
	}

	// register before queueing so a cancel arriving ahead of execution still
	// lands
	ctx, cancel := context.WithCancel(context.Background())
	w.mu.Lock()
	w.inflight[req.ID] = cancel
	w.mu.Unlock()

	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.stopped {
		w.release(req.ID)
		return apperrors.ErrWorkerStopped
	}
	w.jobs <- job{req: req, ctx: ctx}
	return nil
}

// Stop closes the request queue. Queued jobs finish, then the response
// channel closes.
func (w *Worker) Stop() {
	w.sendMu.Lock()
	defer w.sendMu.Unlock()
	if w.stopped {
		return
	}
	w.stopped = true
	close(w.jobs)
}

func (w *Worker) run() {
	for j := range w.jobs {
		w.handle(j.ctx, j.req)
	}
	close(w.responses)
}

func (w *Worker) handle(ctx context.Context, req protocol.Request) {
	defer w.release(req.ID)

	// a panic inside a job becomes a terminal error response, not a process
	// crash
	defer func() {
		if r := recover(); r != nil {
			w.responses <- protocol.Response{
				Type:  protocol.ResponseError,
				ID:    req.ID,
				Error: fmt.Sprintf("worker panic: %v", r),
			}
		}
	}()

	switch req.Type {
	case protocol.RequestParse:
		w.emitProgress(req.ID, 0, "parsing")
		res, err := parser.ParseContext(ctx, req.Parse.Text)
		if err != nil {
			w.emitError(req.ID, err)
			return
		}
		w.emitProgress(req.ID, 1, "")
		clone := res.Clone()
		w.responses <- protocol.Response{
			Type:  protocol.ResponseResult,
			ID:    req.ID,
			Parse: &clone,
		}
	case protocol.RequestDiff:
		w.emitProgress(req.ID, 0, "comparing")
		res, err := differ.DiffContext(ctx, req.Diff.Left, req.Diff.Right, req.Diff.Options)
		if err != nil {
			w.emitError(req.ID, err)
			return
		}
		w.emitProgress(req.ID, 1, "")
		clone := res.Clone()
		w.responses <- protocol.Response{
			Type: protocol.ResponseResult,
			ID:   req.ID,
			Diff: &clone,
		}
	default:
		w.responses <- protocol.Response{
			Type:  protocol.ResponseError,
			ID:    req.ID,
			Error: fmt.Sprintf("unsupported request type %q", req.Type),
		}
	}
}

func (w *Worker) release(id uint64) {
	w.mu.Lock()
	if cancel, ok := w.inflight[id]; ok {
		cancel()
		delete(w.inflight, id)
	}
	w.mu.Unlock()
}

func (w *Worker) emitProgress(id uint64, fraction float64, message string) {
	f := fraction
	w.responses <- protocol.Response{
		Type:     protocol.ResponseProgress,
		ID:       id,
		Progress: &f,
		Message:  message,
	}
}

func (w *Worker) emitError(id uint64, err error) {
	w.responses <- protocol.Response{
		Type:  protocol.ResponseError,
		ID:    id,
		Error: err.Error(),
	}
}
