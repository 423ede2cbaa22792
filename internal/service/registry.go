package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/model"
)

// ClanStore defines the clan data access the registry needs.
type ClanStore interface {
	NextID(ctx context.Context) (model.ClanID, error)
	ClaimName(ctx context.Context, name string, id model.ClanID) (bool, error)
	ClaimTag(ctx context.Context, tag string, id model.ClanID) (bool, error)
	ReleaseName(ctx context.Context, name string) error
	ReleaseTag(ctx context.Context, tag string) error
	Save(ctx context.Context, clan *model.Clan) error
	GetByID(ctx context.Context, id model.ClanID) (*model.Clan, error)
	Delete(ctx context.Context, clan *model.Clan) error
	ListAll(ctx context.Context) ([]*model.Clan, error)
	SaveMember(ctx context.Context, m *model.Member) error
	GetMember(ctx context.Context, id model.ClanID, jid model.JID) (*model.Member, error)
	DeleteMember(ctx context.Context, id model.ClanID, jid model.JID) error
	ListMembers(ctx context.Context, id model.ClanID) ([]*model.Member, error)
	CountMembers(ctx context.Context, id model.ClanID) (int, error)
	ClaimPlayer(ctx context.Context, jid model.JID, id model.ClanID) (bool, error)
	ReleasePlayer(ctx context.Context, jid model.JID) error
	PlayerClan(ctx context.Context, jid model.JID) (model.ClanID, error)
}

// RegistryMembershipStore is the slice of membership data access the
// registry touches during disband cascades and player-perspective listings.
type RegistryMembershipStore interface {
	ListInvitations(ctx context.Context, id model.ClanID) ([]*model.Invitation, error)
	ListRequests(ctx context.Context, id model.ClanID) ([]*model.MembershipRequest, error)
	DeleteInvitation(ctx context.Context, id model.ClanID, jid model.JID) error
	DeleteRequest(ctx context.Context, id model.ClanID, jid model.JID) error
	PlayerInvitedClans(ctx context.Context, jid model.JID) ([]model.ClanID, error)
	PlayerRequestedClans(ctx context.Context, jid model.JID) ([]model.ClanID, error)
	ClearPlayerMarkers(ctx context.Context, jid model.JID) error
}

// CreateClanParams are the caller-supplied fields of a new clan.
type CreateClanParams struct {
	Name        string
	Tag         string
	Description string
	Capacity    int
	AutoAccept  bool
	Platform    string
	IntAttr1    uint32
	IntAttr2    uint32
	IntAttr3    uint32
}

// UpdateClanInfoParams carries partial clan updates; nil fields are left
// untouched.
type UpdateClanInfoParams struct {
	Name        *string
	Tag         *string
	Description *string
	AutoAccept  *bool
	IntAttr1    *uint32
	IntAttr2    *uint32
	IntAttr3    *uint32
}

// Registry owns clan lifecycle: creation with its uniqueness and
// one-clan-per-player invariants, info updates, disband cascades, and the
// player-perspective clan listing.
type Registry struct {
	clans      ClanStore
	membership RegistryMembershipStore

	// create_clan frequency limiting, per creating player.
	createEvery time.Duration
	mu          sync.Mutex
	limiters    map[model.JID]*rate.Limiter
}

// NewRegistry creates a new clan registry. createEvery bounds how often a
// single player may create a clan; zero disables the limit.
func NewRegistry(clans ClanStore, membership RegistryMembershipStore, createEvery time.Duration) *Registry {
	return &Registry{
		clans:       clans,
		membership:  membership,
		createEvery: createEvery,
		limiters:    make(map[model.JID]*rate.Limiter),
	}
}

func (r *Registry) allowCreate(jid model.JID) bool {
	if r.createEvery <= 0 {
		return true
	}
	r.mu.Lock()
	lim, ok := r.limiters[jid]
	if !ok {
		lim = rate.NewLimiter(rate.Every(r.createEvery), 1)
		r.limiters[jid] = lim
	}
	r.mu.Unlock()
	return lim.Allow()
}

func validateClanName(name string) error {
	if name == "" || len(name) > model.MaxClanNameLength {
		return ErrInvalidName
	}
	return nil
}

func validateClanTag(tag string) error {
	if tag == "" || len(tag) > model.MaxClanTagLength {
		return ErrInvalidTag
	}
	return nil
}

// Create builds a new clan with owner as its sole leader. The
// one-clan-per-player claim is taken atomically through the store before
// any record is written, so no clan lock is needed here.
func (r *Registry) Create(ctx context.Context, owner model.JID, ownerName string, p CreateClanParams) (*model.Clan, error) {
	if err := validateClanName(p.Name); err != nil {
		return nil, err
	}
	if err := validateClanTag(p.Tag); err != nil {
		return nil, err
	}
	if len(p.Description) > model.MaxClanDescLength {
		return nil, ErrInvalidBody
	}
	if p.Capacity == 0 {
		p.Capacity = model.DefaultClanCapacity
	}
	if p.Capacity < 1 || p.Capacity > model.MaxClanCapacity {
		return nil, ErrInvalidCapacity
	}
	if !r.allowCreate(owner) {
		return nil, ErrCreateRateLimited
	}

	id, err := r.clans.NextID(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	if id > model.MaxClanCount {
		return nil, ErrClanLimitReached
	}

	claimed, err := r.clans.ClaimPlayer(ctx, owner, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if !claimed {
		return nil, ErrAlreadyInClan
	}

	ok, err := r.clans.ClaimName(ctx, p.Name, id)
	if err == nil && !ok {
		err = ErrClanNameTaken
	}
	if err != nil {
		r.rollbackClaims(ctx, owner, "")
		return nil, storeErr(err)
	}

	ok, err = r.clans.ClaimTag(ctx, p.Tag, id)
	if err == nil && !ok {
		err = ErrClanTagTaken
	}
	if err != nil {
		r.rollbackClaims(ctx, owner, p.Name)
		return nil, storeErr(err)
	}

	now := time.Now().UTC()
	clan := &model.Clan{
		ID:          id,
		Name:        p.Name,
		Tag:         p.Tag,
		Description: p.Description,
		Capacity:    p.Capacity,
		AutoAccept:  p.AutoAccept,
		OwnerJID:    owner,
		DateCreated: now,
		LastUpdated: now,
		Platform:    p.Platform,
		IntAttr1:    p.IntAttr1,
		IntAttr2:    p.IntAttr2,
		IntAttr3:    p.IntAttr3,
		MemberSeq:   1,
	}
	if err := r.clans.Save(ctx, clan); err != nil {
		return nil, storeErr(err)
	}
	leader := &model.Member{
		ClanID:     id,
		JID:        owner,
		Role:       model.RoleLeader,
		JoinSeq:    1,
		JoinedAt:   now,
		OnlineName: ownerName,
		AllowMsg:   true,
	}
	if err := r.clans.SaveMember(ctx, leader); err != nil {
		return nil, storeErr(err)
	}

	// The new leader's stale invite/request markers elsewhere no longer
	// belong in their clan list.
	if err := r.membership.ClearPlayerMarkers(ctx, owner); err != nil {
		return nil, storeErr(err)
	}
	return clan, nil
}

// rollbackClaims releases the claims taken so far by a failed Create. A
// release that fails leaves a stuck claim behind, so it is logged rather
// than silently dropped.
func (r *Registry) rollbackClaims(ctx context.Context, owner model.JID, name string) {
	if name != "" {
		if err := r.clans.ReleaseName(ctx, name); err != nil {
			slog.Error("rollback failed to release clan name claim",
				slog.String("name", name), slog.Any("error", err))
		}
	}
	if err := r.clans.ReleasePlayer(ctx, owner); err != nil {
		slog.Error("rollback failed to release player claim",
			slog.String("jid", string(owner)), slog.Any("error", err))
	}
}

// Get loads a clan, mapping absence to ErrClanNotFound.
func (r *Registry) Get(ctx context.Context, id model.ClanID) (*model.Clan, error) {
	clan, err := r.clans.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrClanNotFound
		}
		return nil, storeErr(err)
	}
	return clan, nil
}

// Info returns the clan with its live member count.
func (r *Registry) Info(ctx context.Context, id model.ClanID) (*model.ClanInfoView, error) {
	clan, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	n, err := r.clans.CountMembers(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return &model.ClanInfoView{Clan: *clan, MemberCount: n}, nil
}

// UpdateInfo applies partial updates to a loaded clan. Name and tag changes
// re-claim their uniqueness indexes. Caller holds the clan lock.
func (r *Registry) UpdateInfo(ctx context.Context, clan *model.Clan, p UpdateClanInfoParams) error {
	if p.Name != nil && !strings.EqualFold(*p.Name, clan.Name) {
		if err := validateClanName(*p.Name); err != nil {
			return err
		}
		ok, err := r.clans.ClaimName(ctx, *p.Name, clan.ID)
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrClanNameTaken
		}
		if err := r.clans.ReleaseName(ctx, clan.Name); err != nil {
			return storeErr(err)
		}
		clan.Name = *p.Name
	} else if p.Name != nil {
		// Case-only rename keeps the same index key.
		if err := validateClanName(*p.Name); err != nil {
			return err
		}
		clan.Name = *p.Name
	}

	if p.Tag != nil && !strings.EqualFold(*p.Tag, clan.Tag) {
		if err := validateClanTag(*p.Tag); err != nil {
			return err
		}
		ok, err := r.clans.ClaimTag(ctx, *p.Tag, clan.ID)
		if err != nil {
			return storeErr(err)
		}
		if !ok {
			return ErrClanTagTaken
		}
		if err := r.clans.ReleaseTag(ctx, clan.Tag); err != nil {
			return storeErr(err)
		}
		clan.Tag = *p.Tag
	} else if p.Tag != nil {
		if err := validateClanTag(*p.Tag); err != nil {
			return err
		}
		clan.Tag = *p.Tag
	}

	if p.Description != nil {
		if len(*p.Description) > model.MaxClanDescLength {
			return ErrInvalidBody
		}
		clan.Description = *p.Description
	}
	if p.AutoAccept != nil {
		clan.AutoAccept = *p.AutoAccept
	}
	if p.IntAttr1 != nil {
		clan.IntAttr1 = *p.IntAttr1
	}
	if p.IntAttr2 != nil {
		clan.IntAttr2 = *p.IntAttr2
	}
	if p.IntAttr3 != nil {
		clan.IntAttr3 = *p.IntAttr3
	}

	clan.LastUpdated = time.Now().UTC()
	if err := r.clans.Save(ctx, clan); err != nil {
		return storeErr(err)
	}
	return nil
}

// Disband removes the clan and every dependent record: members (their
// player claims released), invitation and request records with their
// player-side markers, blacklist entries, announcements, and the
// uniqueness indexes. Caller holds the clan lock.
func (r *Registry) Disband(ctx context.Context, clan *model.Clan) error {
	members, err := r.clans.ListMembers(ctx, clan.ID)
	if err != nil {
		return storeErr(err)
	}
	for _, m := range members {
		if err := r.clans.ReleasePlayer(ctx, m.JID); err != nil {
			return storeErr(err)
		}
	}

	invs, err := r.membership.ListInvitations(ctx, clan.ID)
	if err != nil {
		return storeErr(err)
	}
	for _, inv := range invs {
		if err := r.membership.DeleteInvitation(ctx, clan.ID, inv.Invitee); err != nil {
			return storeErr(err)
		}
	}
	reqs, err := r.membership.ListRequests(ctx, clan.ID)
	if err != nil {
		return storeErr(err)
	}
	for _, req := range reqs {
		if err := r.membership.DeleteRequest(ctx, clan.ID, req.Requester); err != nil {
			return storeErr(err)
		}
	}

	if err := r.clans.Delete(ctx, clan); err != nil {
		return storeErr(err)
	}
	return nil
}

// AddMember admits jid into the clan, enforcing capacity and the
// one-clan-per-player claim. Caller holds the clan lock.
func (r *Registry) AddMember(ctx context.Context, clan *model.Clan, jid model.JID, onlineName string) (*model.Member, error) {
	n, err := r.clans.CountMembers(ctx, clan.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if n >= clan.Capacity {
		return nil, ErrClanFull
	}

	claimed, err := r.clans.ClaimPlayer(ctx, jid, clan.ID)
	if err != nil {
		return nil, storeErr(err)
	}
	if !claimed {
		return nil, ErrAlreadyInClan
	}

	clan.MemberSeq++
	if err := r.clans.Save(ctx, clan); err != nil {
		return nil, storeErr(err)
	}
	m := &model.Member{
		ClanID:     clan.ID,
		JID:        jid,
		Role:       model.RoleMember,
		JoinSeq:    clan.MemberSeq,
		JoinedAt:   time.Now().UTC(),
		OnlineName: onlineName,
		AllowMsg:   true,
	}
	if err := r.clans.SaveMember(ctx, m); err != nil {
		return nil, storeErr(err)
	}
	if err := r.membership.ClearPlayerMarkers(ctx, jid); err != nil {
		return nil, storeErr(err)
	}
	return m, nil
}

// RemoveMember drops a member record and releases the player claim.
// Caller holds the clan lock and has already applied the role rules.
func (r *Registry) RemoveMember(ctx context.Context, m *model.Member) error {
	if err := r.clans.DeleteMember(ctx, m.ClanID, m.JID); err != nil {
		return storeErr(err)
	}
	if err := r.clans.ReleasePlayer(ctx, m.JID); err != nil {
		return storeErr(err)
	}
	return nil
}

// ClanListFor reports every clan jid has a standing toward: the clan they
// belong to, clans with a pending invitation, and clans they have
// requested to join.
func (r *Registry) ClanListFor(ctx context.Context, jid model.JID) ([]*model.ClanMembershipView, error) {
	var views []*model.ClanMembershipView

	id, err := r.clans.PlayerClan(ctx, jid)
	switch {
	case err == nil:
		clan, err := r.clans.GetByID(ctx, id)
		if err != nil {
			return nil, storeErr(err)
		}
		m, err := r.clans.GetMember(ctx, id, jid)
		if err != nil {
			return nil, storeErr(err)
		}
		n, err := r.clans.CountMembers(ctx, id)
		if err != nil {
			return nil, storeErr(err)
		}
		views = append(views, &model.ClanMembershipView{
			Clan:        *clan,
			Role:        m.Role,
			Status:      model.StatusMember,
			OnlineName:  m.OnlineName,
			AllowMsg:    m.AllowMsg,
			MemberCount: n,
		})
	case errors.Is(err, database.ErrNotFound):
		// Not in a clan.
	default:
		return nil, storeErr(err)
	}

	invited, err := r.membership.PlayerInvitedClans(ctx, jid)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, cid := range invited {
		v, err := r.standingView(ctx, cid, model.StatusInvited)
		if err != nil {
			return nil, err
		}
		if v != nil {
			views = append(views, v)
		}
	}

	requested, err := r.membership.PlayerRequestedClans(ctx, jid)
	if err != nil {
		return nil, storeErr(err)
	}
	for _, cid := range requested {
		v, err := r.standingView(ctx, cid, model.StatusPending)
		if err != nil {
			return nil, err
		}
		if v != nil {
			views = append(views, v)
		}
	}
	return views, nil
}

func (r *Registry) standingView(ctx context.Context, id model.ClanID, status model.MemberStatus) (*model.ClanMembershipView, error) {
	clan, err := r.clans.GetByID(ctx, id)
	if err != nil {
		// A marker can outlive its clan briefly around disband; skip it.
		if errors.Is(err, database.ErrNotFound) {
			return nil, nil
		}
		return nil, storeErr(err)
	}
	n, err := r.clans.CountMembers(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	return &model.ClanMembershipView{
		Clan:        *clan,
		Role:        model.RoleNonMember,
		Status:      status,
		MemberCount: n,
	}, nil
}

// storeErr wraps unexpected store failures as ErrStorageUnavailable while
// letting service sentinels pass through unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrClanNameTaken),
		errors.Is(err, ErrClanTagTaken),
		errors.Is(err, ErrAlreadyInClan),
		errors.Is(err, ErrClanFull):
		return err
	case errors.Is(err, database.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
}
