// Package orchestrator is the caller-side component of the engine: it issues
// jobs to the background worker, correlates asynchronous responses by id,
// debounces progress notifications, and implements cooperative cancellation.
//
// Each Orchestrator owns its own id generator and pending-continuation table,
// so independent engine instances coexist without interference.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	apperrors "github.com/mcncl/jsondiff/internal/errors"
	"github.com/mcncl/jsondiff/internal/models"
	"github.com/mcncl/jsondiff/internal/protocol"
	"github.com/mcncl/jsondiff/internal/worker"
)

// DefaultProgressInterval is the coalescing window for surfaced progress
// updates. The final completion update always bypasses it.
const DefaultProgressInterval = 50 * time.Millisecond

// ProgressHandler receives coalesced progress events.
type ProgressHandler func(models.ProgressEvent)

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProgressHandler installs fn as the progress sink.
func WithProgressHandler(fn ProgressHandler) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithProgressInterval overrides the progress coalescing interval.
// A non-positive interval surfaces every event.
func WithProgressInterval(d time.Duration) Option {
	return func(o *Orchestrator) { o.interval = d }
}

// outcome is the resolved continuation of one job. Exactly one field is set.
type outcome struct {
	parse *models.ParseResult
	diff  *models.DiffResult
	err   error
}

type pendingJob struct {
	kind     models.JobKind
	ch       chan outcome
	throttle *Throttle
}

// Orchestrator correlates submitted jobs with worker responses.
type Orchestrator struct {
	worker     *worker.Worker
	interval   time.Duration
	onProgress ProgressHandler

	nextID atomic.Uint64

	mu      sync.Mutex
	pending map[uint64]*pendingJob

	pumpDone chan struct{}
}

// New wires an orchestrator to w and starts its response pump.
func New(w *worker.Worker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		worker:   w,
		interval: DefaultProgressInterval,
		pending:  make(map[uint64]*pendingJob),
		pumpDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	go o.pump()
	return o
}

// NewEngine creates a fresh worker and an orchestrator wired to it. Closing
// the orchestrator stops the worker.
func NewEngine(opts ...Option) *Orchestrator {
	return New(worker.New(), opts...)
}

// Close stops the worker and waits for the response pump to drain. Any jobs
// still pending resolve with a transport error.
func (o *Orchestrator) Close() {
	o.worker.Stop()
	<-o.pumpDone
}

// ParseJob is the awaitable continuation of a submitted parse job.
type ParseJob struct {
	id uint64
	o  *Orchestrator
	ch chan outcome
}

// ID returns the job's unique identifier, usable with Cancel.
func (j *ParseJob) ID() uint64 { return j.id }

// Wait blocks until the job resolves. If ctx expires first, the job is
// cancelled and a Cancelled error returned.
func (j *ParseJob) Wait(ctx context.Context) (models.ParseResult, error) {
	select {
	case out := <-j.ch:
		if out.err != nil {
			return models.ParseResult{}, out.err
		}
		return *out.parse, nil
	case <-ctx.Done():
		j.o.Cancel(j.id)
		return models.ParseResult{}, apperrors.NewCancelledError("parse job abandoned", ctx.Err())
	}
}

// DiffJob is the awaitable continuation of a submitted diff job.
type DiffJob struct {
	id uint64
	o  *Orchestrator
	ch chan outcome
}

// ID returns the job's unique identifier, usable with Cancel.
func (j *DiffJob) ID() uint64 { return j.id }

// Wait blocks until the job resolves. If ctx expires first, the job is
// cancelled and a Cancelled error returned.
func (j *DiffJob) Wait(ctx context.Context) (models.DiffResult, error) {
	select {
	case out := <-j.ch:
		if out.err != nil {
			return models.DiffResult{}, out.err
		}
		return *out.diff, nil
	case <-ctx.Done():
		j.o.Cancel(j.id)
		return models.DiffResult{}, apperrors.NewCancelledError("diff job abandoned", ctx.Err())
	}
}

// SubmitParse registers a continuation and dispatches a parse job.
func (o *Orchestrator) SubmitParse(text string) (*ParseJob, error) {
	id, ch, err := o.submit(models.JobParse, protocol.Request{
		Type:  protocol.RequestParse,
		Parse: &protocol.ParsePayload{Text: text},
	})
	if err != nil {
		return nil, err
	}
	return &ParseJob{id: id, o: o, ch: ch}, nil
}

// SubmitDiff registers a continuation and dispatches a diff job. Both values
// are deep-copied before crossing the worker boundary, so the caller's trees
// are never aliased by the job.
func (o *Orchestrator) SubmitDiff(left, right models.Value, opts models.DiffOptions) (*DiffJob, error) {
	id, ch, err := o.submit(models.JobDiff, protocol.Request{
		Type: protocol.RequestDiff,
		Diff: &protocol.DiffPayload{
			Left:    left.Clone(),
			Right:   right.Clone(),
			Options: opts,
		},
	})
	if err != nil {
		return nil, err
	}
	return &DiffJob{id: id, o: o, ch: ch}, nil
}

// Parse submits a parse job and waits for it.
func (o *Orchestrator) Parse(ctx context.Context, text string) (models.ParseResult, error) {
	j, err := o.SubmitParse(text)
	if err != nil {
		return models.ParseResult{}, err
	}
	return j.Wait(ctx)
}

// Diff submits a diff job and waits for it.
func (o *Orchestrator) Diff(ctx context.Context, left, right models.Value, opts models.DiffOptions) (models.DiffResult, error) {
	j, err := o.SubmitDiff(left, right, opts)
	if err != nil {
		return models.DiffResult{}, err
	}
	return j.Wait(ctx)
}

// Cancel sends a best-effort cancel notice to the worker and immediately
// retires the local continuation with a Cancelled outcome. A terminal
// response arriving later for the same id is discarded silently. Returns
// false if the id is unknown or already resolved.
func (o *Orchestrator) Cancel(id uint64) bool {
	o.mu.Lock()
	p, ok := o.pending[id]
	if ok {
		delete(o.pending, id)
	}
	o.mu.Unlock()
	if !ok {
		return false
	}
	p.ch <- outcome{err: apperrors.NewCancelledError("job cancelled before completion", nil)}
	// best effort only; the worker may finish the job anyway and its
	// terminal response will be dropped above
	_ = o.worker.Send(protocol.Request{Type: protocol.RequestCancel, ID: id})
	return true
}

func (o *Orchestrator) submit(kind models.JobKind, req protocol.Request) (uint64, chan outcome, error) {
	id := o.nextID.Add(1)
	req.ID = id
	p := &pendingJob{
		kind:     kind,
		ch:       make(chan outcome, 1),
		throttle: NewThrottle(o.interval),
	}

	o.mu.Lock()
	o.pending[id] = p
	o.mu.Unlock()

	if err := o.worker.Send(req); err != nil {
		o.mu.Lock()
		delete(o.pending, id)
		o.mu.Unlock()
		return 0, nil, apperrors.NewTransportError("failed to dispatch job", err)
	}
	return id, p.ch, nil
}

// pump reads worker responses until the channel closes, then rejects all
// remaining pending jobs with a transport error.
func (o *Orchestrator) pump() {
	for resp := range o.worker.Responses() {
		switch resp.Type {
		case protocol.ResponseProgress:
			o.handleProgress(resp)
		case protocol.ResponseResult, protocol.ResponseError:
			o.resolve(resp)
		}
	}

	o.mu.Lock()
	orphaned := o.pending
	o.pending = make(map[uint64]*pendingJob)
	o.mu.Unlock()
	for _, p := range orphaned {
		p.ch <- outcome{err: apperrors.NewTransportError("worker stopped before the job completed", apperrors.ErrWorkerStopped)}
	}
	close(o.pumpDone)
}

func (o *Orchestrator) handleProgress(resp protocol.Response) {
	o.mu.Lock()
	p, ok := o.pending[resp.ID]
	o.mu.Unlock()
	if !ok || o.onProgress == nil {
		return
	}
	final := resp.Progress != nil && *resp.Progress >= 1
	if !p.throttle.Allow(final) {
		return
	}
	o.onProgress(models.ProgressEvent{
		ID:       resp.ID,
		Fraction: resp.Progress,
		Message:  resp.Message,
	})
}

func (o *Orchestrator) resolve(resp protocol.Response) {
	o.mu.Lock()
	p, ok := o.pending[resp.ID]
	if ok {
		delete(o.pending, resp.ID)
	}
	o.mu.Unlock()
	if !ok {
		// late terminal for a cancelled or unknown id
		return
	}

	var out outcome
	switch {
	case resp.Type == protocol.ResponseError:
		out.err = apperrors.NewTransportError(resp.Error, nil)
	case p.kind == models.JobParse && resp.Parse != nil:
		out.parse = resp.Parse
	case p.kind == models.JobDiff && resp.Diff != nil:
		out.diff = resp.Diff
	default:
		out.err = apperrors.NewTransportError("worker returned a mismatched result payload", nil)
	}
	p.ch <- out
}
