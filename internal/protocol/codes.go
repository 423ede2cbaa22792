// Package protocol implements the fixed wire format the PS3 clan manager
// client speaks: XML request bodies carrying a base64 ticket, and
// `<clan result="NN">` responses where NN is the two-digit decimal
// rendering of the service result byte.
package protocol

import (
	"fmt"
	"net/http"
)

// ResultCode is a service result byte (SCE_NP_CLANS_SERVER_ERROR_* family).
// The success code is zero.
type ResultCode uint8

const (
	CodeSuccess ResultCode = 0x00

	CodeBadRequest           ResultCode = 0x01
	CodeInvalidTicket        ResultCode = 0x02
	CodeInvalidSignature     ResultCode = 0x03
	CodeTicketExpired        ResultCode = 0x04
	CodeInvalidNPID          ResultCode = 0x05
	CodeForbidden            ResultCode = 0x06
	CodeInternalServerError  ResultCode = 0x07
	CodeBanned               ResultCode = 0x0a
	CodeBlacklisted          ResultCode = 0x11
	CodeInvalidEnvironment   ResultCode = 0x1d
	CodeNoSuchClanService    ResultCode = 0x2f
	CodeNoSuchClan           ResultCode = 0x30
	CodeNoSuchClanMember     ResultCode = 0x31
	CodeBeforeHours          ResultCode = 0x32
	CodeClosedService        ResultCode = 0x33
	CodePermissionDenied     ResultCode = 0x34
	CodeClanLimitReached     ResultCode = 0x35
	CodeLeaderLimitReached   ResultCode = 0x36
	CodeMemberLimitReached   ResultCode = 0x37
	CodeJoinedLimitReached   ResultCode = 0x38
	CodeMemberStatusInvalid  ResultCode = 0x39
	CodeDuplicatedClanName   ResultCode = 0x3a
	CodeLeaderCannotLeave    ResultCode = 0x3b
	CodeInvalidRolePriority  ResultCode = 0x3c
	CodeAnnouncementLimit    ResultCode = 0x3d
	CodeConfigMasterMissing  ResultCode = 0x3e
	CodeDuplicatedClanTag    ResultCode = 0x3f
	CodeCreateClanFrequency  ResultCode = 0x40
	CodeWrongPassphrase      ResultCode = 0x41
	CodeCannotRecordEntry    ResultCode = 0x42
	CodeNoSuchAnnouncement   ResultCode = 0x43
	CodeVulgarWordsPosted    ResultCode = 0x44
	CodeBlacklistLimit       ResultCode = 0x45
	CodeNoSuchBlacklistEntry ResultCode = 0x46
	CodeInvalidMessageFormat ResultCode = 0x4b
	CodeFailedToSendMessage  ResultCode = 0x4c
)

// String renders the code the way the client reads it: the byte value as
// decimal, zero-padded to two digits.
func (c ResultCode) String() string {
	return fmt.Sprintf("%02d", uint8(c))
}

// HTTPStatus maps the result code to the HTTP status the original service
// paired it with.
func (c ResultCode) HTTPStatus() int {
	switch c {
	case CodeSuccess:
		return http.StatusOK
	case CodeBadRequest, CodeInvalidNPID, CodeMemberStatusInvalid,
		CodeInvalidRolePriority, CodeInvalidMessageFormat:
		return http.StatusBadRequest
	case CodeInvalidTicket, CodeInvalidSignature, CodeTicketExpired:
		return http.StatusUnauthorized
	case CodeNoSuchClanService, CodeNoSuchClan, CodeNoSuchClanMember,
		CodeConfigMasterMissing, CodeNoSuchAnnouncement, CodeNoSuchBlacklistEntry:
		return http.StatusNotFound
	case CodeDuplicatedClanName, CodeDuplicatedClanTag:
		return http.StatusConflict
	case CodeInternalServerError, CodeInvalidEnvironment, CodeFailedToSendMessage:
		return http.StatusInternalServerError
	default:
		// The remaining family (banned, blacklisted, closed service,
		// limits, permission) all answer 403.
		return http.StatusForbidden
	}
}
