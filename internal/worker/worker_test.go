package worker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/jsondiff/internal/models"
	"github.com/mcncl/jsondiff/internal/parser"
	"github.com/mcncl/jsondiff/internal/protocol"
)

// collectJob reads responses for one id until its terminal message arrives.
func collectJob(t *testing.T, w *Worker, id uint64) (progress []protocol.Response, terminal protocol.Response) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case resp, ok := <-w.Responses():
			require.True(t, ok, "response channel closed before terminal message")
			require.Equal(t, id, resp.ID)
			if resp.Type == protocol.ResponseProgress {
				progress = append(progress, resp)
				continue
			}
			return progress, resp
		case <-deadline:
			t.Fatal("timed out waiting for worker responses")
		}
	}
}

func TestWorker_ParseJob(t *testing.T) {
	w := New()
	defer w.Stop()

	require.NoError(t, w.Send(protocol.Request{
		Type:  protocol.RequestParse,
		ID:    1,
		Parse: &protocol.ParsePayload{Text: `{"a": [1, 2]}`},
	}))

	progress, terminal := collectJob(t, w, 1)
	assert.NotEmpty(t, progress, "worker emits progress before the terminal message")
	require.Equal(t, protocol.ResponseResult, terminal.Type)
	require.NotNil(t, terminal.Parse)
	require.True(t, terminal.Parse.Ok())
	a, ok := terminal.Parse.Value.Get("a")
	require.True(t, ok)
	assert.Equal(t, 2, a.Len())
}

func TestWorker_ParseJob_SyntaxErrorIsResultNotError(t *testing.T) {
	w := New()
	defer w.Stop()

	require.NoError(t, w.Send(protocol.Request{
		Type:  protocol.RequestParse,
		ID:    7,
		Parse: &protocol.ParsePayload{Text: `{"a":}`},
	}))

	_, terminal := collectJob(t, w, 7)
	require.Equal(t, protocol.ResponseResult, terminal.Type,
		"syntax failures travel inside the result, not as a transport error")
	require.NotNil(t, terminal.Parse)
	require.False(t, terminal.Parse.Ok())
	assert.Equal(t, 1, terminal.Parse.Err.Line)
	assert.Equal(t, 6, terminal.Parse.Err.Column)
}

func TestWorker_DiffJob(t *testing.T) {
	w := New()
	defer w.Stop()

	left := parser.Parse(`{"a": 1}`)
	right := parser.Parse(`{"a": 2, "b": 3}`)
	require.True(t, left.Ok() && right.Ok())

	require.NoError(t, w.Send(protocol.Request{
		Type: protocol.RequestDiff,
		ID:   2,
		Diff: &protocol.DiffPayload{
			Left:    *left.Value,
			Right:   *right.Value,
			Options: models.DefaultDiffOptions(),
		},
	}))

	_, terminal := collectJob(t, w, 2)
	require.Equal(t, protocol.ResponseResult, terminal.Type)
	require.NotNil(t, terminal.Diff)
	assert.False(t, terminal.Diff.Identical)
	assert.Equal(t, models.DiffSummary{Added: 1, Modified: 1}, terminal.Diff.Summary)
}

func TestWorker_SequentialJobsKeepTerminalPerID(t *testing.T) {
	w := New()
	defer w.Stop()

	for id := uint64(10); id < 13; id++ {
		require.NoError(t, w.Send(protocol.Request{
			Type:  protocol.RequestParse,
			ID:    id,
			Parse: &protocol.ParsePayload{Text: `[true]`},
		}))
	}

	// jobs execute one at a time, so responses group by id in order
	for id := uint64(10); id < 13; id++ {
		_, terminal := collectJob(t, w, id)
		assert.Equal(t, protocol.ResponseResult, terminal.Type)
	}
}

func TestWorker_UnknownCancelIsIgnored(t *testing.T) {
	w := New()
	defer w.Stop()

	// cancel for an id the worker has never seen must be a no-op
	require.NoError(t, w.Send(protocol.Request{Type: protocol.RequestCancel, ID: 999}))

	require.NoError(t, w.Send(protocol.Request{
		Type:  protocol.RequestParse,
		ID:    3,
		Parse: &protocol.ParsePayload{Text: `null`},
	}))
	_, terminal := collectJob(t, w, 3)
	assert.Equal(t, protocol.ResponseResult, terminal.Type)
}

func TestWorker_SendAfterStop(t *testing.T) {
	w := New()
	w.Stop()

	err := w.Send(protocol.Request{
		Type:  protocol.RequestParse,
		ID:    4,
		Parse: &protocol.ParsePayload{Text: `null`},
	})
	assert.Error(t, err)
}

func TestWorker_StopClosesResponses(t *testing.T) {
	w := New()
	require.NoError(t, w.Send(protocol.Request{
		Type:  protocol.RequestParse,
		ID:    5,
		Parse: &protocol.ParsePayload{Text: `1`},
	}))
	w.Stop()

	// drain until the channel closes; queued work still finishes first
	sawTerminal := false
	for resp := range w.Responses() {
		if resp.Type == protocol.ResponseResult {
			sawTerminal = true
		}
	}
	assert.True(t, sawTerminal)
}
