package probe

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewire/sizzle/internal/suite"
)

func testSuite(steps ...suite.Step) *suite.Suite {
	return &suite.Suite{Name: "test", Steps: steps}
}

func step(name, method, path string) suite.Step {
	return suite.Step{Name: name, Method: method, Path: path}
}

func TestRun_AllPass(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	runner := New(Options{BaseURL: srv.URL, Out: &out})

	result, err := runner.Run(context.Background(), testSuite(
		step("first", "GET", "/a"),
		step("second", "POST", "/b"),
	))
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 2, result.Total())
	assert.Equal(t, "✓ first\n✓ second\n", out.String())
}

func TestRun_FailFastSkipsRemainder(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/bad" {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"status": "error", "message": "boom"}`))
			return
		}
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	runner := New(Options{BaseURL: srv.URL})
	result, err := runner.Run(context.Background(), testSuite(
		step("ok", "GET", "/ok"),
		step("bad", "GET", "/bad"),
		step("never-sent", "GET", "/ok"),
		step("also-never-sent", "DELETE", "/ok"),
	))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Skipped)
	assert.Equal(t, int32(2), requests.Load(), "skipped steps must not be sent")

	require.Len(t, result.Steps, 4)
	assert.True(t, result.Steps[2].Skipped)
	assert.True(t, result.Steps[3].Skipped)
	assert.Zero(t, result.Steps[3].Status)
	assert.Contains(t, result.Steps[1].Detail, "Expected:")
	assert.Contains(t, result.Steps[1].Detail, "Actual:")
}

func TestRun_KeepGoingExecutesAll(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path == "/bad" {
			w.Write([]byte(`{"status": "error"}`))
			return
		}
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	runner := New(Options{BaseURL: srv.URL, KeepGoing: true})
	result, err := runner.Run(context.Background(), testSuite(
		step("ok", "GET", "/ok"),
		step("bad", "GET", "/bad"),
		step("after", "GET", "/ok"),
	))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, int32(3), requests.Load())
}

func TestRun_TransportFailure(t *testing.T) {
	// A server that is immediately closed leaves a port nothing listens on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	runner := New(Options{BaseURL: url})
	result, err := runner.Run(context.Background(), testSuite(step("unreachable", "GET", "/health")))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Steps, 1)
	assert.Zero(t, result.Steps[0].Status)
	assert.Empty(t, result.Steps[0].Body)
	assert.Contains(t, result.Steps[0].Detail, "empty response body")
}

func TestRun_BaseURLResolution(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	s := testSuite(step("only", "GET", "/x"))
	s.BaseURL = "http://localhost:1/unused"

	// The option overrides the suite's own base URL.
	runner := New(Options{BaseURL: srv.URL})
	result, err := runner.Run(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, result.Pass)
	assert.Equal(t, srv.URL, result.BaseURL)
}

func TestRun_NoBaseURL(t *testing.T) {
	runner := New(Options{})
	_, err := runner.Run(context.Background(), testSuite(step("only", "GET", "/x")))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no base_url")
}

func TestRun_RequestBodyAndHeaders(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"status": "success"}`))
	}))
	defer srv.Close()

	runner := New(Options{BaseURL: srv.URL})
	result, err := runner.Run(context.Background(), testSuite(suite.Step{
		Name:   "create",
		Method: "POST",
		Path:   "/create-item",
		Body:   map[string]any{"name": "Wisk"},
	}))
	require.NoError(t, err)

	assert.True(t, result.Pass)
	assert.Equal(t, "application/json", gotContentType)
	assert.JSONEq(t, `{"name": "Wisk"}`, string(gotBody))
}

func TestRun_EchoJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [1], "status": "success"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	runner := New(Options{BaseURL: srv.URL, EchoJSON: true, Out: &out})

	read := step("list-items", "GET", "/get-all-items-from-inventory")
	read.Echo = true
	result, err := runner.Run(context.Background(), testSuite(
		read,
		step("quiet", "GET", "/other"),
	))
	require.NoError(t, err)
	require.True(t, result.Pass)

	text := out.String()
	assert.Contains(t, text, "✓ list-items\n")
	assert.Contains(t, text, "\"items\": [\n    1\n  ]")

	// The non-echo step prints its progress line only.
	assert.Contains(t, text, "✓ quiet\n")
	assert.Equal(t, 1, bytes.Count(out.Bytes(), []byte(`"items"`)))
}

func TestRun_EchoDisabledByDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"items": [], "status": "success"}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	runner := New(Options{BaseURL: srv.URL, Out: &out})

	read := step("list-items", "GET", "/get-all-items-from-inventory")
	read.Echo = true
	_, err := runner.Run(context.Background(), testSuite(read))
	require.NoError(t, err)

	assert.Equal(t, "✓ list-items\n", out.String())
}
