package model

import "time"

// ClanID identifies a clan. The game rejects ids above MaxClanCount, so ids
// are assigned from a monotonic counter and never reused.
type ClanID uint32

// Clan represents a clan and the counters scoped to it. Members, invitations,
// requests, blacklist entries and announcements are separate records keyed
// under the clan id; Clan itself only carries the data every view needs.
type Clan struct {
	ID          ClanID    `json:"id"`
	Name        string    `json:"name"`
	Tag         string    `json:"tag"`
	Description string    `json:"description,omitempty"`
	Capacity    int       `json:"capacity"`
	AutoAccept  bool      `json:"auto_accept"`
	OwnerJID    JID       `json:"owner_jid"`
	DateCreated time.Time `json:"date_created"`
	LastUpdated time.Time `json:"last_updated"`

	// Platform the clan was registered for. Set by the admin surface;
	// never rendered on the game wire.
	Platform string `json:"platform,omitempty"`

	// Opaque attributes the client round-trips; their use is unknown.
	IntAttr1 uint32 `json:"int_attr1"`
	IntAttr2 uint32 `json:"int_attr2"`
	IntAttr3 uint32 `json:"int_attr3"`

	// Per-clan counters. All mutations happen under the clan's lock, so
	// plain fields are race-free.
	MemberSeq       uint64 `json:"member_seq"`
	AnnouncementSeq uint64 `json:"announcement_seq"`
}

// Business constraints
const (
	MaxClanCount = 999_999

	MaxClanNameLength = 64
	MaxClanTagLength  = 5
	MaxClanDescLength = 1024

	DefaultClanCapacity = 100
	MaxClanCapacity     = 100

	// MaxClanOwnership bounds clans created through the admin surface by a
	// single player. The game-facing invariant (one clan per player) is
	// stricter; this guards the forged-JID admin path.
	MaxClanOwnership = 1
)

// ClanMembershipView is a clan seen from one player's perspective, as
// get_clan_list reports it: the clan plus the player's role and standing.
type ClanMembershipView struct {
	Clan        Clan
	Role        Role
	Status      MemberStatus
	OnlineName  string
	AllowMsg    bool
	MemberCount int
}

// ClanInfoView is a clan plus its live member count, for get_clan_info.
type ClanInfoView struct {
	Clan        Clan
	MemberCount int
}
