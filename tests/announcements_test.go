package tests

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revival/clans/internal/model"
	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/internal/testing/fixtures"
	"github.com/revival/clans/internal/testing/helpers"
	"github.com/revival/clans/internal/testing/teststore"
)

/*
FEATURE: Clan Announcements
DOMAIN: Announcements

ACCEPTANCE CRITERIA:
===================

AC-ANN-001: Post And Retrieve
  GIVEN an officer
  WHEN they post an announcement
  THEN members retrieve it newest first

AC-ANN-002: Posting Is Officers Only
  GIVEN a plain member
  WHEN they post an announcement
  THEN the request fails with the permission-denied code

AC-ANN-003: Sequence Cursor Paging
  GIVEN several announcements
  WHEN a member pages with a start cursor and max
  THEN each page picks up below the previous one

AC-ANN-004: Delete Announcement
  GIVEN a posted announcement
  WHEN an officer deletes it by sequence
  THEN it no longer appears
  AND sequence numbers are never reused

AC-ANN-005: Retention Cap
  GIVEN a clan at the announcement cap
  WHEN an officer posts one more
  THEN the oldest live announcement is evicted

AC-ANN-006: Expiry Sweep
  GIVEN an announcement with a short TTL
  WHEN the sweeper runs after it lapses
  THEN the announcement is purged
*/

func TestPostAndRetrieveAnnouncements(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "pollux")
	id := itoa(clan.ID)

	// AC-ANN-001
	rec := env.Post(t, "/clan_manager_update/sec/post_announcement", "castor",
		"<id>"+id+"</id><subject>war council</subject><msg>gather at dawn</msg>")
	env.RequireOK(t, rec)
	rec = env.Post(t, "/clan_manager_update/sec/post_announcement", "castor",
		"<id>"+id+"</id><subject>victory</subject><msg>feast tonight</msg>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "pollux",
		"<clan_id>"+id+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "<subject>victory</subject>")
	assert.Contains(t, body, "<subject>war council</subject>")
	assert.Less(t, strings.Index(body, "victory"), strings.Index(body, "war council"))

	// AC-ANN-002
	rec = env.Post(t, "/clan_manager_update/sec/post_announcement", "pollux",
		"<id>"+id+"</id><subject>coup</subject><msg>nope</msg>")
	assert.Equal(t, "52", helpers.Result(t, rec))
}

func TestAnnouncementCursorPaging(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	id := itoa(clan.ID)

	for i := 1; i <= 5; i++ {
		f.PostAnnouncement(t, clan.ID, "castor", fmt.Sprintf("note-%d", i))
	}

	// AC-ANN-003: first page, newest first.
	rec := env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>"+id+"</clan_id><max>2</max>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "note-5")
	assert.Contains(t, body, "note-4")
	assert.NotContains(t, body, "note-3")

	// Resume strictly below the previous page's lowest sequence.
	rec = env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>"+id+"</clan_id><start>4</start><max>2</max>")
	body = env.RequireOK(t, rec)
	assert.Contains(t, body, "note-3")
	assert.Contains(t, body, "note-2")
	assert.NotContains(t, body, "note-5")
}

func TestDeleteAnnouncement(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	id := itoa(clan.ID)

	first := f.PostAnnouncement(t, clan.ID, "castor", "short lived")

	// AC-ANN-004
	rec := env.Post(t, "/clan_manager_update/sec/delete_announcement", "castor",
		"<clan_id>"+id+"</clan_id><id>"+fmt.Sprintf("%d", first.Seq)+"</id>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>"+id+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.NotContains(t, body, "short lived")

	// Deleting it twice is an error.
	rec = env.Post(t, "/clan_manager_update/sec/delete_announcement", "castor",
		"<clan_id>"+id+"</clan_id><id>"+fmt.Sprintf("%d", first.Seq)+"</id>")
	assert.Equal(t, "67", helpers.Result(t, rec))

	// The freed sequence number is not handed out again.
	next := f.PostAnnouncement(t, clan.ID, "castor", "successor")
	assert.Greater(t, next.Seq, first.Seq)
}

func TestAnnouncementRetentionCap(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	id := itoa(clan.ID)

	for i := 1; i <= model.MaxAnnouncementsPerClan; i++ {
		f.PostAnnouncement(t, clan.ID, "castor", fmt.Sprintf("bulk-%d", i))
	}

	// AC-ANN-005
	f.PostAnnouncement(t, clan.ID, "castor", "overflow")

	rec := env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>"+id+"</clan_id><max>100</max>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "overflow")
	assert.Contains(t, body, "bulk-2")
	assert.NotContains(t, body, ">bulk-1<")
}

func TestAnnouncementExpirySweep(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	ctx := context.Background()

	_, err := env.Engine.PostAnnouncement(ctx, fixtures.Claim("castor"), clan.ID,
		service.PostAnnouncementParams{Subject: "fleeting", Body: "gone soon", TTL: time.Nanosecond})
	require.NoError(t, err)
	f.PostAnnouncement(t, clan.ID, "castor", "lasting")

	// AC-ANN-006
	purged, err := env.Engine.SweepExpiredAnnouncements(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	rec := env.Post(t, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.NotContains(t, body, "fleeting")
	assert.Contains(t, body, "lasting")
}
