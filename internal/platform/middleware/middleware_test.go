package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinistra/pkg/attrs"
	"sinistra/pkg/requestcontext"
	"sinistra/pkg/testutil"
)

// capturingHandler records each log line as a flat [key, value, ...] slice so
// assertions can use attrs.ExtractString.
type capturingHandler struct {
	mu    sync.Mutex
	lines [][]any
}

func (h *capturingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *capturingHandler) Handle(_ context.Context, r slog.Record) error {
	line := []any{"msg", r.Message}
	r.Attrs(func(a slog.Attr) bool {
		line = append(line, a.Key, a.Value.Any())
		return true
	})
	h.mu.Lock()
	h.lines = append(h.lines, line)
	h.mu.Unlock()
	return nil
}

func (h *capturingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *capturingHandler) WithGroup(string) slog.Handler      { return h }

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
	})

	t.Run("assigns one when missing", func(t *testing.T) {
		rr := testutil.DoRequest(RequestID(next), testutil.NewRequest(t, http.MethodGet, "/claims"))
		assert.NotEmpty(t, seen)
		assert.Equal(t, seen, rr.Header().Get(RequestIDHeader))
	})

	t.Run("honors the upstream header", func(t *testing.T) {
		req := testutil.NewRequest(t, http.MethodGet, "/claims")
		req.Header.Set(RequestIDHeader, "proxy-abc-123")
		rr := testutil.DoRequest(RequestID(next), req)
		assert.Equal(t, "proxy-abc-123", seen)
		assert.Equal(t, "proxy-abc-123", rr.Header().Get(RequestIDHeader))
	})
}

func TestRequestTimePinsOneNow(t *testing.T) {
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		first := requestcontext.Now(r.Context())
		second := requestcontext.Now(r.Context())
		assert.False(t, first.IsZero())
		assert.Equal(t, first, second)
	})
	testutil.DoRequest(RequestTime(next), testutil.NewRequest(t, http.MethodGet, "/claims"))
}

func TestLoggerWritesOneAccessLine(t *testing.T) {
	capture := &capturingHandler{}
	logger := slog.New(capture)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	chain := RequestID(Logger(logger)(next))
	testutil.DoRequest(chain, testutil.NewRequest(t, http.MethodPost, "/claims"))

	require.Len(t, capture.lines, 1)
	line := capture.lines[0]
	assert.Equal(t, "http request", attrs.ExtractString(line, "msg"))
	assert.Equal(t, http.MethodPost, attrs.ExtractString(line, "method"))
	assert.Equal(t, "/claims", attrs.ExtractString(line, "path"))
	assert.NotEmpty(t, attrs.ExtractString(line, "request_id"))
}

func TestRecoveryTurnsPanicsInto500s(t *testing.T) {
	capture := &capturingHandler{}
	logger := slog.New(capture)
	next := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	rr := testutil.DoRequest(Recovery(logger)(next), testutil.NewRequest(t, http.MethodGet, "/claims"))

	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
	require.Len(t, capture.lines, 1)
	assert.Equal(t, "panic recovered", attrs.ExtractString(capture.lines[0], "msg"))
}
