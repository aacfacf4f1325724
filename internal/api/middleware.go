package api

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

// Event streams stay open for the life of a dashboard and /metrics is
// scraped every few seconds; neither is worth an info line per request.
var quietPaths = map[string]bool{
	"/api/events": true,
	"/metrics":    true,
}

// requestLevel picks the log level of a finished request.
func requestLevel(method, path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case method == http.MethodOptions, quietPaths[path]:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// redactQuery hides the credentials carried by ?auth= for SSE clients.
func redactQuery(raw string) string {
	if raw == "" {
		return ""
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return "<unparsable>"
	}
	if q.Has("auth") {
		q.Set("auth", "REDACTED")
	}
	return q.Encode()
}

func (s *Server) logRequest(ctx context.Context, r requestInfo) {
	attrs := []slog.Attr{
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.String("remote_addr", r.remoteAddr),
		slog.Int("status", r.status),
		slog.Duration("duration", r.duration),
	}
	if q := redactQuery(r.query); q != "" {
		attrs = append(attrs, slog.String("query", q))
	}
	s.httpLogger.LogAttrs(ctx, requestLevel(r.method, r.path, r.status), "HTTP request completed", attrs...)
}

type requestInfo struct {
	method     string
	path       string
	query      string
	remoteAddr string
	status     int
	duration   time.Duration
}

// loggingMiddleware logs every huma operation once it has completed.
func (s *Server) loggingMiddleware(ctx huma.Context, next func(huma.Context)) {
	start := time.Now()
	next(ctx)

	u := ctx.URL()
	s.logRequest(ctx.Context(), requestInfo{
		method:     ctx.Method(),
		path:       u.Path,
		query:      u.RawQuery,
		remoteAddr: ctx.RemoteAddr(),
		status:     ctx.Status(),
		duration:   time.Since(start),
	})
}

// statusRecorder captures the status written by a plain handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// logHandler gives handlers mounted outside huma, such as /metrics, the
// same request log.
func (s *Server) logHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		s.logRequest(r.Context(), requestInfo{
			method:     r.Method,
			path:       r.URL.Path,
			query:      r.URL.RawQuery,
			remoteAddr: r.RemoteAddr,
			status:     rec.status,
			duration:   time.Since(start),
		})
	})
}
