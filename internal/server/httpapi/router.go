// Package httpapi serves the sheet contract over HTTP:
//
//	GET  /?sheet=<name>              -> {"success":true,"data":[...]}
//	POST /  {"sheet":..,"data":..}   -> {"success":true}
//	GET  /health
//
// Any path is accepted for reads and writes so the client can point at a
// deployment url such as /exec. Errors are reported as
// {"success":false,"error":"..."} with a matching status code.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dmitrijs2005/oskolki/internal/logging"
)

type Sheets interface {
	Read(ctx context.Context, sheet string) ([]json.RawMessage, error)
	Write(ctx context.Context, sheet string, data json.RawMessage) error
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterDependencies struct {
	Sheets         Sheets
	DB             Pinger
	Logger         logging.Logger
	AllowOrigin    string
	RequestTimeout time.Duration
}

type Router struct {
	deps    RouterDependencies
	handler http.Handler
}

const maxBodyBytes = 1 << 20

func NewRouter(deps RouterDependencies) http.Handler {
	r := &Router{deps: deps}
	r.handler = Chain(r.baseHandler(),
		CORS(deps.AllowOrigin),
		Logging(deps.Logger),
		BodyLimit(maxBodyBytes),
		Recover(deps.Logger),
		Timeout(deps.RequestTimeout),
	)
	return r
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.handler.ServeHTTP(w, req)
}

func (r *Router) baseHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		switch {
		case req.Method == http.MethodGet && req.URL.Path == "/health":
			r.health(w, req)
		case req.Method == http.MethodGet:
			r.read(w, req)
		case req.Method == http.MethodPost:
			r.write(w, req)
		default:
			w.Header().Set("Allow", "GET, POST, OPTIONS")
			writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		}
	})
}
