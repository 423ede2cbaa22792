package tests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/revival/clans/internal/testing/fixtures"
	"github.com/revival/clans/internal/testing/helpers"
	"github.com/revival/clans/internal/testing/teststore"
)

/*
FEATURE: Clan Blacklist
DOMAIN: Blacklist

ACCEPTANCE CRITERIA:
===================

AC-BL-001: Record Entry
  GIVEN an officer
  WHEN they blacklist a player
  THEN the player appears on the blacklist

AC-BL-002: Duplicate Entry Rejected
  GIVEN a blacklisted player
  WHEN an officer blacklists them again
  THEN the request fails with the cannot-record code

AC-BL-003: Blacklist Blocks Admission
  GIVEN a blacklisted player
  WHEN they request membership or an officer invites them
  THEN both fail with the blacklisted code

AC-BL-004: Recording Does Not Kick
  GIVEN a current member
  WHEN an officer blacklists them
  THEN the member stays on the roster until kicked
  AND they cannot re-enter once kicked

AC-BL-005: Delete Entry Restores Admission
  GIVEN a blacklisted player
  WHEN an officer deletes the entry
  THEN the player can be invited again

AC-BL-006: Blacklist Visibility Is Members Only
  GIVEN a clan with a blacklist
  WHEN an outsider fetches it
  THEN the request fails with the no-such-member code
  AND a plain member can read it

AC-BL-007: Plain Members Cannot Record
  GIVEN a plain member
  WHEN they blacklist anyone
  THEN the request fails with the permission-denied code
*/

func TestBlacklistRecordAndList(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	id := itoa(clan.ID)

	// AC-BL-001
	rec := env.Post(t, "/clan_manager_update/sec/record_blacklist_entry", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid><reason>stole helen</reason>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/sec/get_blacklist", "castor",
		"<clan_id>"+id+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "<jid>"+helpers.JID("paris")+"</jid>")
	assert.Contains(t, body, `<list results="1" total="1">`)

	// AC-BL-002
	rec = env.Post(t, "/clan_manager_update/sec/record_blacklist_entry", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	assert.Equal(t, "66", helpers.Result(t, rec))
}

func TestBlacklistBlocksAdmission(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.Blacklist(t, clan.ID, "castor", "paris")
	id := itoa(clan.ID)

	// AC-BL-003
	rec := env.Post(t, "/clan_manager_update/sec/request_membership", "paris",
		"<clan_id>"+id+"</clan_id>")
	assert.Equal(t, "17", helpers.Result(t, rec))

	rec = env.Post(t, "/clan_manager_update/sec/send_invitation", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	assert.Equal(t, "17", helpers.Result(t, rec))
}

func TestBlacklistCurrentMember(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "paris")
	id := itoa(clan.ID)

	// AC-BL-004: recording alone leaves the roster untouched.
	rec := env.Post(t, "/clan_manager_update/sec/record_blacklist_entry", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/sec/get_member_list", "castor",
		"<clan_id>"+id+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, helpers.JID("paris"))

	rec = env.Post(t, "/clan_manager_update/sec/kick_member", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_update/sec/request_membership", "paris",
		"<clan_id>"+id+"</clan_id>")
	assert.Equal(t, "17", helpers.Result(t, rec))
}

func TestBlacklistDeleteRestoresAdmission(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.Blacklist(t, clan.ID, "castor", "paris")
	id := itoa(clan.ID)

	// Deleting an entry that never existed is its own error.
	rec := env.Post(t, "/clan_manager_update/sec/delete_blacklist_entry", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("nobody")+"</jid>")
	assert.Equal(t, "70", helpers.Result(t, rec))

	// AC-BL-005
	rec = env.Post(t, "/clan_manager_update/sec/delete_blacklist_entry", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_update/sec/send_invitation", "castor",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("paris")+"</jid>")
	env.RequireOK(t, rec)
}

func TestBlacklistVisibility(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "pollux")
	f.Blacklist(t, clan.ID, "castor", "paris")
	id := itoa(clan.ID)

	// AC-BL-006
	rec := env.Post(t, "/clan_manager_view/sec/get_blacklist", "outsider",
		"<clan_id>"+id+"</clan_id>")
	assert.Equal(t, "49", helpers.Result(t, rec))

	rec = env.Post(t, "/clan_manager_view/sec/get_blacklist", "pollux",
		"<clan_id>"+id+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, helpers.JID("paris"))

	// AC-BL-007
	rec = env.Post(t, "/clan_manager_update/sec/record_blacklist_entry", "pollux",
		"<clan_id>"+id+"</clan_id><jid>"+helpers.JID("menelaus")+"</jid>")
	assert.Equal(t, "52", helpers.Result(t, rec))
}
