// Package service implements the clan domain engine.
//
// Engine is the orchestrator the transport layer talks to; Registry,
// Membership, Blacklist and Announcements own their respective records
// and are only reached through it. Role decisions live in Authorizer as
// a declarative table plus the two relational rules (kicks and role
// assignment).
//
// Concurrency: one mutex per clan (clanLocks), held for the entire
// check-then-commit span of every operation that touches that clan.
// The one-clan-per-player invariant crosses clan boundaries, so it is
// enforced by an atomic claim in the store rather than by holding two
// locks; no operation ever takes more than one clan lock.
package service
