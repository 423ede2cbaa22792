package model

import "time"

// Announcement is one entry of a clan's append-only announcement log.
// Sequence numbers are assigned from the clan's counter, strictly increasing
// and never reused; deletion leaves a tombstone so later entries keep their
// numbering.
type Announcement struct {
	ClanID    ClanID    `json:"clan_id"`
	Seq       uint64    `json:"seq"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	Author    JID       `json:"author"`
	PostedAt  time.Time `json:"posted_at"`
	ExpiresAt time.Time `json:"expires_at"`
	Deleted   bool      `json:"deleted,omitempty"`

	// Opaque client fields, round-tripped verbatim.
	BinData string `json:"bin_data,omitempty"`
	FromID  uint32 `json:"from_id"`
}

// Live reports whether the announcement should appear in retrievals at t:
// not tombstoned and not past its expiry.
func (a *Announcement) Live(t time.Time) bool {
	return !a.Deleted && t.Before(a.ExpiresAt)
}

const (
	MaxAnnouncementSubjectLength = 128
	MaxAnnouncementBodyLength    = 1024

	// MaxAnnouncementsPerClan is the retention cap: posting beyond it
	// evicts the oldest live entries, keeping the highest sequences.
	MaxAnnouncementsPerClan = 10

	// DefaultAnnouncementTTL applies when a post carries no expiry.
	DefaultAnnouncementTTL = 30 * 24 * time.Hour
)
