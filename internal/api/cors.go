package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2"
)

const corsMaxAge = 24 * 60 * 60

// The API reads status and changes log levels; nothing else is offered
// cross-origin. Last-Event-ID and Cache-Control are sent by EventSource
// clients of /api/events.
var (
	corsMethods = []string{http.MethodGet, http.MethodPut, http.MethodOptions}
	corsHeaders = []string{"Authorization", "Content-Type", "Accept", "Cache-Control", "Last-Event-ID"}
)

// corsPolicy holds the precomputed CORS response headers.
type corsPolicy struct {
	origin  string
	methods string
	headers string
	maxAge  string
}

// newCORSPolicy allows origin ("*" when empty) to call the API.
func newCORSPolicy(origin string) corsPolicy {
	if origin == "" {
		origin = "*"
	}
	return corsPolicy{
		origin:  origin,
		methods: strings.Join(corsMethods, ", "),
		headers: strings.Join(corsHeaders, ", "),
		maxAge:  strconv.Itoa(corsMaxAge),
	}
}

func (p corsPolicy) apply(set func(name, value string)) {
	set("Access-Control-Allow-Origin", p.origin)
	set("Access-Control-Allow-Methods", p.methods)
	set("Access-Control-Allow-Headers", p.headers)
	set("Access-Control-Max-Age", p.maxAge)
	if p.origin != "*" {
		set("Vary", "Origin")
	}
}

// middleware adds the CORS headers to every registered operation.
func (p corsPolicy) middleware(ctx huma.Context, next func(huma.Context)) {
	p.apply(ctx.SetHeader)
	next(ctx)
}

// preflight answers OPTIONS for any path. Huma middleware only runs for
// matched operations, so preflights are handled on the mux.
func (p corsPolicy) preflight(w http.ResponseWriter, _ *http.Request) {
	p.apply(w.Header().Set)
	w.WriteHeader(http.StatusNoContent)
}

func (p corsPolicy) register(mux *http.ServeMux) {
	mux.HandleFunc("OPTIONS /", p.preflight)
}
