package model

import "time"

// BlacklistEntry is a clan-scoped ban. It blocks future invitations, join
// requests and direct joins for the banned player; it does not remove an
// existing membership (kick is a separate operation).
type BlacklistEntry struct {
	ClanID     ClanID    `json:"clan_id"`
	JID        JID       `json:"jid"`
	Reason     string    `json:"reason,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
	RecordedBy JID       `json:"recorded_by"`
}

// MaxBlacklistEntries bounds the blacklist per clan.
const MaxBlacklistEntries = 250

// MaxBlacklistReasonLength bounds the free-text reason.
const MaxBlacklistReasonLength = 256
