package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/platewire/sizzle/internal/suite"
)

// DefaultTimeout bounds each individual request. The original scripts
// configured no timeout and inherited whatever their HTTP client applied;
// here the bound is explicit and overridable.
const DefaultTimeout = 30 * time.Second

// Options configures a Runner.
type Options struct {
	// BaseURL overrides the suite's base URL when non-empty.
	BaseURL string

	// EchoJSON pretty-prints the response body of successful steps that
	// are marked echo in the suite.
	EchoJSON bool

	// KeepGoing runs every step and collects failures instead of
	// aborting on the first one. The run still reports failure overall.
	KeepGoing bool

	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Client overrides the HTTP client, mainly for tests. When set,
	// Timeout is ignored in favor of the client's own.
	Client *http.Client

	// Out receives per-step progress lines and echo output.
	// Defaults to io.Discard.
	Out io.Writer

	// Logger receives structured diagnostics (transport errors, timing).
	// Defaults to a discarding logger.
	Logger *slog.Logger
}

// Runner executes suites: one request per step, strictly in order, each
// response fully consumed and judged before the next step begins.
type Runner struct {
	client *http.Client
	opts   Options
	out    io.Writer
	logger *slog.Logger
}

// New creates a Runner from options, applying defaults.
func New(opts Options) *Runner {
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Runner{client: client, opts: opts, out: out, logger: logger}
}

// Run executes every step of the suite against the resolved base URL.
//
// In fail-fast mode (the default) the first failing step terminates the
// run; the remaining steps are recorded as skipped and never sent. With
// KeepGoing every step executes exactly once regardless of earlier
// failures. There are no retries in either mode.
//
// An error return means the run could not be attempted at all (no base
// URL, unserializable body). Step failures are reported via the Result,
// not the error.
func (r *Runner) Run(ctx context.Context, s *suite.Suite) (*Result, error) {
	baseURL := r.opts.BaseURL
	if baseURL == "" {
		baseURL = s.BaseURL
	}
	if baseURL == "" {
		return nil, fmt.Errorf("suite %q declares no base_url and none was supplied", s.Name)
	}

	result := NewResult(s.Name, baseURL)
	aborted := false

	for _, step := range s.Steps {
		if aborted {
			result.Add(StepResult{
				Name:    step.Name,
				Method:  step.Method,
				Path:    step.Path,
				Skipped: true,
			})
			continue
		}

		sr := r.runStep(ctx, baseURL, step)
		result.Add(sr)

		if sr.Pass {
			fmt.Fprintf(r.out, "✓ %s\n", step.Name)
			if r.opts.EchoJSON && step.Echo {
				r.echoBody(sr.Body)
			}
		} else {
			fmt.Fprintf(r.out, "✗ %s\n", step.Name)
			for _, line := range splitLines(sr.Detail) {
				fmt.Fprintf(r.out, "  %s\n", line)
			}
			if !r.opts.KeepGoing {
				aborted = true
			}
		}
	}

	return result, nil
}

// runStep issues one request and judges the response.
//
// A transport-level failure (connection refused, timeout) is folded into
// the same outcome as an application failure: the step's body stays empty
// and the expectation fails on it. The underlying error is only surfaced
// through the structured log.
func (r *Runner) runStep(ctx context.Context, baseURL string, step suite.Step) StepResult {
	sr := StepResult{Name: step.Name, Method: step.Method, Path: step.Path}

	started := time.Now()
	status, body, err := r.send(ctx, baseURL, step)
	if err != nil {
		r.logger.Debug("request failed",
			"step", step.Name,
			"method", step.Method,
			"path", step.Path,
			"error", err,
		)
	}
	sr.Status = status
	sr.Body = string(body)

	if expectErr := evaluate(step, status, body); expectErr != nil {
		sr.Detail = expectErr.Error()
		return sr
	}

	sr.Pass = true
	r.logger.Debug("step passed",
		"step", step.Name,
		"status", status,
		"elapsed", time.Since(started),
	)
	return sr
}

// send builds and issues the request for a step, returning the status
// code and the raw body text.
func (r *Runner) send(ctx context.Context, baseURL string, step suite.Step) (int, []byte, error) {
	var reqBody io.Reader
	if len(step.Body) > 0 {
		payload, err := json.Marshal(step.Body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to encode body: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, step.Method, baseURL+step.Path, reqBody)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to build request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		// Keep whatever was read; the expectation judges the partial text.
		return resp.StatusCode, body, err
	}

	return resp.StatusCode, body, nil
}

// echoBody pretty-prints a response body as indented JSON. Bodies that are
// not valid JSON are printed as-is.
func (r *Runner) echoBody(body string) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(body), "", "  "); err != nil {
		fmt.Fprintln(r.out, body)
		return
	}
	fmt.Fprintln(r.out, buf.String())
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, line := range bytes.Split([]byte(s), []byte("\n")) {
		lines = append(lines, string(line))
	}
	return lines
}
