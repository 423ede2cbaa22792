package model

import "time"

// IdentityClaim is the decoded, verified payload of a session ticket: the
// caller's identity for exactly one request. It is produced by the ticket
// collaborator and trusted by the domain engine; the engine never sees raw
// ticket bytes.
type IdentityClaim struct {
	AccountID uint64
	Username  string
	JID       JID
	IssuedAt  time.Time
}
