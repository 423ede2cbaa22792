// Package teststore provides the store backend for tests: in-memory by
// default, a real Redis when TEST_REDIS_ADDR is set.
package teststore

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/revival/clans/internal/database"
)

// New returns a connected store for the test. With TEST_REDIS_ADDR set it
// runs against logical DB 15 of that Redis and clears the keyspace when the
// test finishes.
func New(t *testing.T) database.Store {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		return connect(t, database.NewMemory())
	}

	store := database.NewRedis(database.Config{Addr: addr, DB: 15})
	s := connect(t, store)
	t.Cleanup(func() {
		_ = s.DeletePrefix(context.Background(), "")
	})
	return s
}

func connect(t *testing.T, s database.Store) database.Store {
	t.Helper()
	if err := s.Connect(context.Background()); err != nil {
		t.Fatalf("teststore: connect: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// ID returns a unique suffix for names that must not collide across tests
// sharing a backend.
func ID() string {
	return uuid.New().String()[:8]
}
