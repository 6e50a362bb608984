package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	maxLoggedBody = 2048
	redacted      = "[FILTERED]"
)

// redactedKeys are JSON keys and header names whose values never reach the log. Matching is
// case-insensitive and exact.
var redactedKeys = map[string]struct{}{
	"password":      {},
	"token":         {},
	"authorization": {},
	"cookie":        {},
	"set-cookie":    {},
	"jwt_secret":    {},
	"secret":        {},
}

func isRedacted(name string) bool {
	_, ok := redactedKeys[strings.ToLower(name)]
	return ok
}

// LoggingMiddleware writes one access line per request. Write bodies are added at debug level
// and error response bodies at warn/error, both with credentials redacted.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()
			lg := logger.With("trace_id", TraceIDFromContext(ctx))

			if r.Body != nil && r.Method != http.MethodGet && lg.Enabled(ctx, slog.LevelDebug) {
				head, _ := io.ReadAll(io.LimitReader(r.Body, maxLoggedBody))
				r.Body = io.NopCloser(io.MultiReader(bytes.NewReader(head), r.Body))
				lg.DebugContext(ctx, "request body",
					"method", r.Method,
					"path", r.URL.Path,
					"headers", redactHeaders(r.Header),
					"body", redactBody(head))
			}

			rw := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rw, r)

			status := rw.status()
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", rw.size,
				"remote_addr", r.RemoteAddr,
			}

			level := slog.LevelInfo
			switch {
			case status >= http.StatusInternalServerError:
				level = slog.LevelError
			case status >= http.StatusBadRequest:
				level = slog.LevelWarn
			}
			if level > slog.LevelInfo {
				attrs = append(attrs, "error_body", redactBody(rw.errBody.Bytes()))
			}

			lg.Log(ctx, level, "http request", attrs...)
		})
	}
}

// statusRecorder keeps the first status written, the byte count and, for error statuses,
// the head of the body.
type statusRecorder struct {
	http.ResponseWriter
	code    int
	size    int
	errBody bytes.Buffer
}

func (rw *statusRecorder) WriteHeader(code int) {
	if rw.code == 0 {
		rw.code = code
	}
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	if rw.code == 0 {
		rw.code = http.StatusOK
	}
	if rw.code >= http.StatusBadRequest && rw.errBody.Len() < maxLoggedBody {
		rw.errBody.Write(b[:min(len(b), maxLoggedBody-rw.errBody.Len())])
	}
	rw.size += len(b)
	return rw.ResponseWriter.Write(b)
}

func (rw *statusRecorder) status() int {
	if rw.code == 0 {
		return http.StatusOK
	}
	return rw.code
}

func redactHeaders(headers http.Header) map[string]string {
	out := make(map[string]string, len(headers))
	for name, values := range headers {
		if isRedacted(name) {
			out[name] = redacted
			continue
		}
		out[name] = strings.Join(values, ", ")
	}
	return out
}

// redactBody masks redacted keys at any depth. Non-JSON or truncated bodies are logged by length only.
func redactBody(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return "[non-json body, " + strconv.Itoa(len(body)) + " bytes]"
	}
	out, err := json.Marshal(redactValue(doc))
	if err != nil {
		return redacted
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		for key, value := range t {
			if isRedacted(key) {
				t[key] = redacted
				continue
			}
			t[key] = redactValue(value)
		}
		return t
	case []interface{}:
		for i := range t {
			t[i] = redactValue(t[i])
		}
		return t
	default:
		return v
	}
}
