package model

import "time"

// RecordStatus is the lifecycle state of an invitation or membership request.
// Pending is the only non-terminal state; terminal records are retained so a
// retried accept can be answered idempotently.
type RecordStatus string

const (
	RecordPending   RecordStatus = "pending"
	RecordAccepted  RecordStatus = "accepted"
	RecordDeclined  RecordStatus = "declined"
	RecordCancelled RecordStatus = "cancelled"
)

// Terminal reports whether s admits no further transitions.
func (s RecordStatus) Terminal() bool {
	return s == RecordAccepted || s == RecordDeclined || s == RecordCancelled
}

// Invitation is a clan-initiated offer of membership. At most one Pending
// invitation exists per (clan, invitee); re-inviting after a terminal outcome
// replaces the old record.
type Invitation struct {
	ClanID    ClanID       `json:"clan_id"`
	Inviter   JID          `json:"inviter"`
	Invitee   JID          `json:"invitee"`
	Status    RecordStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	DecidedAt *time.Time   `json:"decided_at,omitempty"`
}

// MembershipRequest is a player-initiated ask to join a clan, symmetric to
// Invitation in direction of initiation.
type MembershipRequest struct {
	ClanID    ClanID       `json:"clan_id"`
	Requester JID          `json:"requester"`
	Status    RecordStatus `json:"status"`
	CreatedAt time.Time    `json:"created_at"`
	DecidedAt *time.Time   `json:"decided_at,omitempty"`
}
