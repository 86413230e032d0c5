/*
Package worker invokes the recommendation engine as an isolated process.

Every train/predict call spawns a fresh worker process, writes the request
document to its stdin, closes stdin to signal end-of-request, and reads a
single response document from stdout. Calls are fully synchronous and share
no memory; only the model store bridges them.

The runner distinguishes transport failures (spawn error, non-zero exit,
unparseable output, timeout) from in-band application errors, which arrive
as a well-formed response with status "error".
*/
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/luxestream/recommender/internal/protocol"
)

// DefaultTimeout bounds a single worker invocation. Scoring 1000 candidates
// fits comfortably; a stuck worker is killed rather than waited on.
const DefaultTimeout = 30 * time.Second

// ErrTimeout reports that the worker exceeded its time budget and was
// forcibly terminated.
var ErrTimeout = errors.New("worker timed out")

// TransportError is a process-level failure: the worker could not be
// launched, exited non-zero, or produced output that failed parsing. It is
// distinct from an in-band error response, which means the worker ran fine
// but could not compute a result.
type TransportError struct {
	Stage  string
	Stderr string
	Err    error
}

func (e *TransportError) Error() string {
	msg := fmt.Sprintf("worker %s failed: %v", e.Stage, e.Err)
	if e.Stderr != "" {
		msg += fmt.Sprintf(" (stderr: %s)", e.Stderr)
	}
	return msg
}

func (e *TransportError) Unwrap() error { return e.Err }

// State tracks a call through its lifecycle.
type State int

const (
	// StateIdle is the initial state before the worker is launched.
	StateIdle State = iota

	// StateDispatched means the worker process launched.
	StateDispatched

	// StateAwaitingResult means the request was delivered and the caller
	// is blocked on worker termination or timeout.
	StateAwaitingResult

	// StateCompleted means a parseable response was received, success or
	// in-band error alike.
	StateCompleted

	// StateFailed means transport failure or timeout.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatched:
		return "dispatched"
	case StateAwaitingResult:
		return "awaiting-result"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Call is the record of one worker invocation.
type Call struct {
	State    State
	Response protocol.Response
	Err      error
	Duration time.Duration
}

// Runner spawns worker processes. Safe for concurrent use: each call gets
// its own process and buffers.
type Runner struct {
	command string
	args    []string
	timeout time.Duration
}

// NewRunner creates a runner for an explicit worker command.
func NewRunner(command string, args []string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{
		command: command,
		args:    args,
		timeout: timeout,
	}
}

// NewSelfRunner creates a runner that re-executes the current binary with
// the "worker" subcommand. This is how the CLI front-end reaches the engine.
func NewSelfRunner(timeout time.Duration) (*Runner, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to locate current executable: %w", err)
	}
	return NewRunner(exe, []string{"worker"}, timeout), nil
}

// execCommandContext allows tests to substitute the spawned command.
var execCommandContext = exec.CommandContext

// TrainModel runs a train call through a worker process.
func (r *Runner) TrainModel(ctx context.Context, movies []protocol.Movie, prefs protocol.PreferencesList) (protocol.Response, error) {
	return r.Do(ctx, protocol.Request{
		Action:      protocol.ActionTrain,
		Movies:      movies,
		Preferences: prefs,
	})
}

// GetRecommendations runs a predict call through a worker process.
func (r *Runner) GetRecommendations(ctx context.Context, movies []protocol.Movie, prefs protocol.UserPreferences) (protocol.Response, error) {
	return r.Do(ctx, protocol.Request{
		Action:      protocol.ActionPredict,
		Movies:      movies,
		Preferences: protocol.PreferencesList{prefs},
	})
}

// Do invokes a worker for one request. The returned error is nil whenever a
// well-formed response was received, even one with status "error".
func (r *Runner) Do(ctx context.Context, req protocol.Request) (protocol.Response, error) {
	call := r.DoCall(ctx, req)
	return call.Response, call.Err
}

// DoCall invokes a worker and returns the full call record, including the
// terminal state and duration.
func (r *Runner) DoCall(ctx context.Context, req protocol.Request) *Call {
	call := &Call{State: StateIdle}
	start := time.Now()
	defer func() { call.Duration = time.Since(start) }()

	reqBytes, err := json.Marshal(req)
	if err != nil {
		call.State = StateFailed
		call.Err = &TransportError{Stage: "encode", Err: err}
		return call
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := execCommandContext(ctx, r.command, r.args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdin = bytes.NewReader(reqBytes)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		call.State = StateFailed
		call.Err = &TransportError{Stage: "spawn", Err: err}
		return call
	}
	call.State = StateDispatched

	// Stdin is fully buffered and closed by exec once drained; from here the
	// call blocks on worker termination or context expiry, whichever comes
	// first. CommandContext kills the process on expiry.
	call.State = StateAwaitingResult
	err = cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		call.State = StateFailed
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			call.Err = fmt.Errorf("%w after %v", ErrTimeout, r.timeout)
		} else {
			call.Err = &TransportError{Stage: "wait", Err: ctxErr}
		}
		return call
	}

	if err != nil {
		call.State = StateFailed
		call.Err = &TransportError{
			Stage:  "exit",
			Stderr: truncate(stderr.String(), 512),
			Err:    err,
		}
		return call
	}

	var resp protocol.Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		call.State = StateFailed
		call.Err = &TransportError{
			Stage:  "parse",
			Stderr: truncate(stderr.String(), 512),
			Err:    err,
		}
		return call
	}

	if resp.Status != protocol.StatusSuccess && resp.Status != protocol.StatusError {
		call.State = StateFailed
		call.Err = &TransportError{
			Stage: "validate",
			Err:   fmt.Errorf("invalid response status: %q", resp.Status),
		}
		return call
	}

	call.State = StateCompleted
	call.Response = resp
	return call
}

// truncate trims s to at most n bytes for error messages.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
