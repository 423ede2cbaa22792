package handler

import (
	"errors"

	"github.com/revival/clans/internal/protocol"
	"github.com/revival/clans/internal/service"
)

// MapServiceError converts a service error to the wire result code. This
// centralizes error handling for all handlers, ensuring the client sees
// consistent codes across operations.
func MapServiceError(err error) protocol.ResultCode {
	if err == nil {
		return protocol.CodeSuccess
	}

	switch {
	// ===== Lookup Errors =====
	case errors.Is(err, service.ErrClanNotFound):
		return protocol.CodeNoSuchClan
	case errors.Is(err, service.ErrNotAMember),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrInvitationNotFound),
		errors.Is(err, service.ErrRequestNotFound):
		return protocol.CodeNoSuchClanMember
	case errors.Is(err, service.ErrAnnouncementNotFound):
		return protocol.CodeNoSuchAnnouncement
	case errors.Is(err, service.ErrBlacklistEntryNotFound):
		return protocol.CodeNoSuchBlacklistEntry

	// ===== Authorization Errors =====
	case errors.Is(err, service.ErrPermissionDenied):
		return protocol.CodePermissionDenied
	case errors.Is(err, service.ErrInvalidRolePriority):
		return protocol.CodeInvalidRolePriority
	case errors.Is(err, service.ErrLeaderCannotLeave):
		return protocol.CodeLeaderCannotLeave
	case errors.Is(err, service.ErrOwnershipLimitReached):
		return protocol.CodeLeaderLimitReached

	// ===== Membership Errors =====
	case errors.Is(err, service.ErrAlreadyInClan):
		return protocol.CodeJoinedLimitReached
	case errors.Is(err, service.ErrAlreadyInvited),
		errors.Is(err, service.ErrAlreadyRequested),
		errors.Is(err, service.ErrInvalidTransition):
		return protocol.CodeMemberStatusInvalid
	case errors.Is(err, service.ErrClanFull):
		return protocol.CodeMemberLimitReached
	case errors.Is(err, service.ErrBlacklisted):
		return protocol.CodeBlacklisted

	// ===== Clan Lifecycle Errors =====
	case errors.Is(err, service.ErrClanNameTaken):
		return protocol.CodeDuplicatedClanName
	case errors.Is(err, service.ErrClanTagTaken):
		return protocol.CodeDuplicatedClanTag
	case errors.Is(err, service.ErrClanLimitReached):
		return protocol.CodeClanLimitReached
	case errors.Is(err, service.ErrCreateRateLimited):
		return protocol.CodeCreateClanFrequency

	// ===== Validation Errors =====
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidTag),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidBody):
		return protocol.CodeBadRequest

	// ===== Blacklist Errors =====
	case errors.Is(err, service.ErrAlreadyBlacklisted):
		return protocol.CodeCannotRecordEntry
	case errors.Is(err, service.ErrBlacklistFull):
		return protocol.CodeBlacklistLimit

	// ===== Infrastructure Errors =====
	default:
		return protocol.CodeInternalServerError
	}
}
