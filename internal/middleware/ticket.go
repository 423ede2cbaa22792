package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/pkg/ticket"
)

const (
	identityKey contextKey = "identity"
	requestKey  contextKey = "clanRequest"
)

// maxBodySize bounds request bodies; tickets plus payload fit well under it.
const maxBodySize = 64 << 10

// TicketVerifier validates a parsed ticket's signature.
type TicketVerifier interface {
	Verify(t *ticket.Ticket) error
}

// Ticket authenticates game requests. The body is parsed once here; the
// decoded request and the caller's identity are stashed in the context for
// the handler.
func Ticket(verifier TicketVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
			if err != nil {
				protocol.WriteResult(w, protocol.CodeBadRequest)
				return
			}

			req, err := protocol.Parse(body)
			if err != nil {
				protocol.WriteResult(w, protocol.CodeBadRequest)
				return
			}
			if req.Ticket == "" {
				protocol.WriteResult(w, protocol.CodeInvalidTicket)
				return
			}

			tk, err := ticket.ParseBase64(req.Ticket)
			if err != nil {
				protocol.WriteResult(w, protocol.CodeInvalidTicket)
				return
			}
			if err := tk.Valid(time.Now()); err != nil {
				protocol.WriteResult(w, protocol.CodeTicketExpired)
				return
			}
			if err := verifier.Verify(tk); err != nil {
				if errors.Is(err, ticket.ErrBadSignature) {
					protocol.WriteResult(w, protocol.CodeInvalidSignature)
					return
				}
				protocol.WriteResult(w, protocol.CodeInvalidTicket)
				return
			}
			if tk.Username == "" {
				protocol.WriteResult(w, protocol.CodeInvalidNPID)
				return
			}

			claim := model.IdentityClaim{
				AccountID: tk.AccountID,
				Username:  tk.Username,
				JID:       model.NewJID(tk.Username, tk.Domain, tk.Region),
				IssuedAt:  tk.IssuedAt,
			}

			slog.Debug("ticket accepted",
				slog.String("jid", string(claim.JID)),
				slog.String("request_id", GetRequestID(r.Context())),
			)

			ctx := context.WithValue(r.Context(), identityKey, claim)
			ctx = context.WithValue(ctx, requestKey, req)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Identity extracts the authenticated caller from context. The bool is
// false on routes that skip the ticket middleware.
func Identity(ctx context.Context) (model.IdentityClaim, bool) {
	claim, ok := ctx.Value(identityKey).(model.IdentityClaim)
	return claim, ok
}

// ClanRequest extracts the decoded request body from context.
func ClanRequest(ctx context.Context) *protocol.Request {
	if req, ok := ctx.Value(requestKey).(*protocol.Request); ok {
		return req
	}
	return &protocol.Request{}
}
