// Package helpers provides common test utilities for acceptance testing:
// a full router factory, wire ticket minting, and envelope assertions.
package helpers

import (
	"encoding/base64"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/handler"
	"github.com/revival/clans/internal/repository"
	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/pkg/jwt"
	"github.com/revival/clans/pkg/ticket"
)

type passVerifier struct{}

func (passVerifier) Verify(*ticket.Ticket) error { return nil }

// Env is a fully wired service under test.
type Env struct {
	Router http.Handler
	Engine *service.Engine
	Store  database.Store
	Tokens *jwt.Service
}

// NewEnv wires the engine and router over the given store. Console tickets
// pass signature verification unchecked, same as production.
func NewEnv(t *testing.T, store database.Store) *Env {
	t.Helper()

	clans := repository.NewClanRepository(store)
	membership := repository.NewMembershipRepository(store)
	blacklist := repository.NewBlacklistRepository(store)
	announcements := repository.NewAnnouncementRepository(store)

	registry := service.NewRegistry(clans, membership, 0)
	engine := service.NewEngine(service.EngineConfig{
		Registry:      registry,
		Membership:    service.NewMembership(membership, clans, blacklist, registry),
		Blacklist:     service.NewBlacklist(blacklist),
		Announcements: service.NewAnnouncements(announcements, clans),
		Clans:         clans,
	})

	tokens := jwt.NewService([]byte("acceptance-secret"), "clans", time.Hour)
	router := handler.NewRouter(handler.RouterConfig{
		Engine:         engine,
		Store:          store,
		Verifier:       passVerifier{},
		Tokens:         tokens,
		AdminRateRPS:   1000,
		AdminRateBurst: 1000,
	})

	return &Env{Router: router, Engine: engine, Store: store, Tokens: tokens}
}

// Ticket mints a base64 console ticket for the given username.
func Ticket(username string) string {
	raw := make([]byte, 212)
	binary.BigEndian.PutUint16(raw[0:2], 0x2100)
	now := time.Now().UnixMilli()
	binary.BigEndian.PutUint64(raw[0x30:0x38], uint64(now-1000))
	binary.BigEndian.PutUint64(raw[0x3C:0x44], uint64(now+3600_000))
	binary.BigEndian.PutUint64(raw[0x48:0x50], 1)
	copy(raw[0x54:0x74], username)
	copy(raw[0xB8:0xBC], "PSN\x00")
	return base64.StdEncoding.EncodeToString(raw)
}

// JID is the full network id a plain username maps to.
func JID(username string) string {
	return username + "@un.br.np.playstation.net"
}

// Post sends a clan request as the given player and returns the recorder.
func (e *Env) Post(t *testing.T, path, username, inner string) *httptest.ResponseRecorder {
	t.Helper()
	body := "<r><ticket>" + Ticket(username) + "</ticket>" + inner + "</r>"
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	e.Router.ServeHTTP(rec, req)
	return rec
}

var resultRe = regexp.MustCompile(`<clan result="(\d\d)">`)

// Result extracts the two-digit result code from a response body.
func Result(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	m := resultRe.FindStringSubmatch(rec.Body.String())
	if m == nil {
		t.Fatalf("helpers: no clan envelope in response: %s", rec.Body.String())
	}
	return m[1]
}

// RequireOK fails the test unless the response carries the success code.
func (e *Env) RequireOK(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	if code := Result(t, rec); code != "00" {
		t.Fatalf("helpers: expected result 00, got %s: %s", code, rec.Body.String())
	}
	return rec.Body.String()
}
