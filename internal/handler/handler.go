// Package handler exposes the clan engine over the game's XML wire format
// and a small JSON admin surface. Handlers are thin: decode the request the
// middleware stashed, call one engine operation, render the result.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/revival/clans/internal/metrics"
	"github.com/revival/clans/internal/middleware"
	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/internal/service"
)

// defaultPageSize applies when a list request sends max of zero.
const defaultPageSize = 20

// maxPageSize is the hard ceiling on any list page.
const maxPageSize = 100

// Clan handles every clan manager endpoint.
type Clan struct {
	engine *service.Engine
}

// NewClan creates the clan handler.
func NewClan(engine *service.Engine) *Clan {
	return &Clan{engine: engine}
}

// respond renders the envelope, records metrics and logs failures. Every
// handler terminates here.
func respond(w http.ResponseWriter, r *http.Request, op string, start time.Time, inner string, err error) {
	code := MapServiceError(err)
	if err != nil {
		inner = ""
		slog.Info("operation failed",
			slog.String("operation", op),
			slog.String("result", code.String()),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	metrics.Operations.WithLabelValues(op, code.String()).Inc()
	metrics.OperationDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())

	protocol.Write(w, code, inner)
}

// identity pulls the authenticated caller out of the context. Routes behind
// the ticket middleware always have one; the zero claim only reaches
// handlers in misconfigured routing, which the engine rejects as a
// non-member.
func identity(r *http.Request) *model.IdentityClaim {
	claim, _ := middleware.Identity(r.Context())
	return &claim
}

// page applies start/max windowing to n items, returning the half-open
// index range to render.
func page(start, max, n int) (int, int) {
	if start >= n {
		return n, n
	}
	end := start + max
	if end > n {
		end = n
	}
	return start, end
}
