package service

import (
	"fmt"

	"github.com/revival/clans/internal/model"
)

// Action identifies an operation subject to role authorization.
type Action string

const (
	ActionUpdateClanInfo     Action = "update_clan_info"
	ActionRenameClan         Action = "rename_clan"
	ActionDisbandClan        Action = "disband_clan"
	ActionSendInvitation     Action = "send_invitation"
	ActionCancelInvitation   Action = "cancel_invitation"
	ActionDecideRequest      Action = "decide_membership_request"
	ActionKickMember         Action = "kick_member"
	ActionChangeMemberRole   Action = "change_member_role"
	ActionViewBlacklist      Action = "view_blacklist"
	ActionRecordBlacklist    Action = "record_blacklist_entry"
	ActionDeleteBlacklist    Action = "delete_blacklist_entry"
	ActionPostAnnouncement   Action = "post_announcement"
	ActionDeleteAnnouncement Action = "delete_announcement"
)

// permissionTable maps each action to the minimum role that may perform it.
// Renaming and disbanding are reserved to the leader; everything else that
// mutates clan state needs sub-leader rank. Viewing the blacklist only
// needs membership.
var permissionTable = map[Action]model.Role{
	ActionUpdateClanInfo:     model.RoleSubLeader,
	ActionRenameClan:         model.RoleLeader,
	ActionDisbandClan:        model.RoleLeader,
	ActionSendInvitation:     model.RoleSubLeader,
	ActionCancelInvitation:   model.RoleSubLeader,
	ActionDecideRequest:      model.RoleSubLeader,
	ActionKickMember:         model.RoleSubLeader,
	ActionChangeMemberRole:   model.RoleSubLeader,
	ActionViewBlacklist:      model.RoleMember,
	ActionRecordBlacklist:    model.RoleSubLeader,
	ActionDeleteBlacklist:    model.RoleSubLeader,
	ActionPostAnnouncement:   model.RoleSubLeader,
	ActionDeleteAnnouncement: model.RoleSubLeader,
}

// PermissionError is the typed denial carrying the required and actual
// roles. It unwraps to ErrPermissionDenied.
type PermissionError struct {
	Action   Action
	Required model.Role
	Actual   model.Role
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s requires %s, actor is %s", e.Action, e.Required, e.Actual)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermissionDenied
}

// Authorizer is the stateless role decision component. All decisions come
// from the permission table plus the two relational rules for kicks and
// role changes.
type Authorizer struct{}

// NewAuthorizer creates a new authorizer.
func NewAuthorizer() *Authorizer {
	return &Authorizer{}
}

// Can checks the actor's role against the table entry for action.
func (a *Authorizer) Can(actor model.Role, action Action) error {
	required, ok := permissionTable[action]
	if !ok {
		return &PermissionError{Action: action, Required: model.RoleLeader, Actual: actor}
	}
	if !actor.AtLeast(required) {
		return &PermissionError{Action: action, Required: required, Actual: actor}
	}
	return nil
}

// CanKick checks the kick rule: the target must rank strictly below the
// actor, on top of the table check for the kick action itself.
func (a *Authorizer) CanKick(actor, target model.Role) error {
	if err := a.Can(actor, ActionKickMember); err != nil {
		return err
	}
	if !actor.Outranks(target) {
		return &PermissionError{Action: ActionKickMember, Required: target + 1, Actual: actor}
	}
	return nil
}

// CanAssignRole checks the role-change rule. The resulting role must stay
// at least one rank below the actor's own, and the actor must outrank the
// target's current role. The one exception is the leader assigning Leader,
// which is ownership transfer.
func (a *Authorizer) CanAssignRole(actor, targetCurrent, targetNew model.Role) error {
	if err := a.Can(actor, ActionChangeMemberRole); err != nil {
		return err
	}
	if targetNew != model.RoleMember && targetNew != model.RoleSubLeader && targetNew != model.RoleLeader {
		return ErrInvalidRolePriority
	}
	if !actor.Outranks(targetCurrent) {
		return &PermissionError{Action: ActionChangeMemberRole, Required: targetCurrent + 1, Actual: actor}
	}
	if targetNew == model.RoleLeader {
		if actor != model.RoleLeader {
			return ErrInvalidRolePriority
		}
		return nil
	}
	if !actor.Outranks(targetNew) {
		return ErrInvalidRolePriority
	}
	return nil
}
