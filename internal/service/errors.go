package service

import "errors"

// Centralized service layer errors.
// All errors returned by service methods are defined here so the handler
// layer can map them to wire result codes in one place.

// ===== Lookup Errors =====
var (
	ErrClanNotFound           = errors.New("clan not found")
	ErrMemberNotFound         = errors.New("clan member not found")
	ErrNotAMember             = errors.New("not a member of this clan")
	ErrInvitationNotFound     = errors.New("invitation not found")
	ErrRequestNotFound        = errors.New("membership request not found")
	ErrAnnouncementNotFound   = errors.New("announcement not found")
	ErrBlacklistEntryNotFound = errors.New("blacklist entry not found")
)

// ===== Authorization Errors =====
var (
	ErrPermissionDenied      = errors.New("insufficient role for this action")
	ErrInvalidRolePriority   = errors.New("requested role exceeds what the actor may assign")
	ErrLeaderCannotLeave     = errors.New("the clan leader cannot leave the clan")
	ErrOwnershipLimitReached = errors.New("player already leads the maximum number of clans")
)

// ===== Membership Errors =====
var (
	ErrAlreadyInClan     = errors.New("player already belongs to a clan")
	ErrAlreadyInvited    = errors.New("player already has a pending invitation")
	ErrAlreadyRequested  = errors.New("player already has a pending membership request")
	ErrClanFull          = errors.New("clan has reached its member capacity")
	ErrBlacklisted       = errors.New("player is blacklisted by this clan")
	ErrInvalidTransition = errors.New("record is not in a state that allows this transition")
)

// ===== Clan Lifecycle Errors =====
var (
	ErrClanNameTaken     = errors.New("a clan with this name already exists")
	ErrClanTagTaken      = errors.New("a clan with this tag already exists")
	ErrClanLimitReached  = errors.New("global clan limit reached")
	ErrCreateRateLimited = errors.New("clan creation attempted too frequently")
)

// ===== Validation Errors =====
var (
	ErrInvalidName     = errors.New("clan name is empty or too long")
	ErrInvalidTag      = errors.New("clan tag is empty or too long")
	ErrInvalidCapacity = errors.New("capacity is out of range")
	ErrInvalidBody     = errors.New("text field is empty or too long")
)

// ===== Blacklist Errors =====
var (
	ErrAlreadyBlacklisted = errors.New("player is already on the blacklist")
	ErrBlacklistFull      = errors.New("blacklist has reached its maximum size")
)

// ===== Infrastructure Errors =====
var (
	ErrStorageUnavailable = errors.New("storage unavailable")
)
