package model

import (
	"fmt"
	"strings"
	"time"
)

// JID is a player's network identity: a username qualified by the domain and
// region of the account's home server.
//
// Example: username@a1.us.np.playstation.net
type JID string

// DefaultDomain and DefaultRegion are what the emulator network sets for
// players whose tickets omit them.
const (
	DefaultDomain = "un"
	DefaultRegion = "br"
)

// NewJID builds a JID from its parts, falling back to the emulator defaults
// when domain or region are empty.
func NewJID(username, domain, region string) JID {
	if domain == "" {
		domain = DefaultDomain
	}
	if region == "" {
		region = DefaultRegion
	}
	return JID(fmt.Sprintf("%s@%s.%s.np.playstation.net", username, domain, region))
}

// Username returns the local part of the JID.
func (j JID) Username() string {
	if i := strings.IndexByte(string(j), '@'); i >= 0 {
		return string(j)[:i]
	}
	return string(j)
}

// Role is a member's ranked permission level. The numeric values are the wire
// values the game client expects.
type Role int

const (
	RoleUnknown   Role = 0 // hides the player from member lists; never persisted
	RoleNonMember Role = 1
	RoleMember    Role = 2
	RoleSubLeader Role = 3 // officer rank: can manage members and content
	RoleLeader    Role = 4 // owner rank: exactly one per clan
)

// AtLeast reports whether r ranks at or above the required role.
func (r Role) AtLeast(required Role) bool {
	return r >= required
}

// Outranks reports whether r ranks strictly above other.
func (r Role) Outranks(other Role) bool {
	return r > other
}

// IsValid reports whether r is a role a persisted member may hold.
func (r Role) IsValid() bool {
	switch r {
	case RoleMember, RoleSubLeader, RoleLeader:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	switch r {
	case RoleNonMember:
		return "non-member"
	case RoleMember:
		return "member"
	case RoleSubLeader:
		return "sub-leader"
	case RoleLeader:
		return "leader"
	default:
		return "unknown"
	}
}

// MemberStatus is a player's standing toward a clan on the wire: an actual
// member, an invitee who has not answered, or a requester awaiting approval.
type MemberStatus int

const (
	StatusUnknown MemberStatus = 0
	StatusMember  MemberStatus = 1
	StatusInvited MemberStatus = 2
	StatusPending MemberStatus = 3
)

// Member links a player to the one clan they belong to. Destroyed on kick,
// leave, or disband; a player has at most one Member record at a time.
type Member struct {
	ClanID      ClanID    `json:"clan_id"`
	JID         JID       `json:"jid"`
	Role        Role      `json:"role"`
	JoinSeq     uint64    `json:"join_seq"` // insertion order = join order
	JoinedAt    time.Time `json:"joined_at"`
	OnlineName  string    `json:"online_name,omitempty"`
	Description string    `json:"description,omitempty"`
	AllowMsg    bool      `json:"allow_msg"`
}

// MemberListEntry is one row of get_member_list: actual members plus players
// with a pending invitation or membership request, distinguished by status.
type MemberListEntry struct {
	JID         JID
	Role        Role
	Status      MemberStatus
	OnlineName  string
	Description string
	AllowMsg    bool
}
