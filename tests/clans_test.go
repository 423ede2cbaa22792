package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/internal/testing/fixtures"
	"github.com/revival/clans/internal/testing/helpers"
	"github.com/revival/clans/internal/testing/teststore"
)

/*
FEATURE: Clan Lifecycle
DOMAIN: Clans

ACCEPTANCE CRITERIA:
===================

AC-CLAN-001: Create Clan
  GIVEN a player with no clan
  WHEN they create a clan with a fresh name and tag
  THEN the response carries the new clan id
  AND the creator is the clan's leader

AC-CLAN-002: Duplicate Name Rejected
  GIVEN an existing clan
  WHEN anyone creates a clan with the same name
  THEN the request fails with the duplicated-name code

AC-CLAN-003: Duplicate Tag Rejected
  GIVEN an existing clan
  WHEN anyone creates a clan with the same tag
  THEN the request fails with the duplicated-tag code

AC-CLAN-004: One Clan Per Player
  GIVEN a player who already belongs to a clan
  WHEN they create another clan
  THEN the request fails with the joined-limit code

AC-CLAN-005: Public Clan Info
  GIVEN an existing clan
  WHEN anyone fetches its info without a ticket
  THEN name, tag and member count come back

AC-CLAN-006: Update Info Is Leader Only
  GIVEN a clan with a leader and a plain member
  WHEN the member renames the clan
  THEN the request fails with the permission-denied code
  AND the leader can rename it

AC-CLAN-007: Disband Cascade
  GIVEN a clan with members
  WHEN the leader disbands it
  THEN the clan is gone
  AND former members can found a new clan immediately
*/

func TestCreateClan(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))

	// AC-CLAN-001
	rec := env.Post(t, "/clan_manager_view/sec/create_clan", "castor",
		"<name>Dioscuri</name><tag>GEM</tag>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "<id>")

	rec = env.Post(t, "/clan_manager_view/sec/get_clan_list", "castor", "")
	body = env.RequireOK(t, rec)
	assert.Contains(t, body, "<name>Dioscuri</name>")
	assert.Contains(t, body, "<role>4</role>")

	// AC-CLAN-002
	rec = env.Post(t, "/clan_manager_view/sec/create_clan", "pollux",
		"<name>Dioscuri</name><tag>TWIN</tag>")
	assert.Equal(t, "58", helpers.Result(t, rec))

	// AC-CLAN-003
	rec = env.Post(t, "/clan_manager_view/sec/create_clan", "pollux",
		"<name>Tyndaridae</name><tag>GEM</tag>")
	assert.Equal(t, "63", helpers.Result(t, rec))

	// AC-CLAN-004
	rec = env.Post(t, "/clan_manager_view/sec/create_clan", "castor",
		"<name>Second Try</name><tag>TWO</tag>")
	assert.Equal(t, "56", helpers.Result(t, rec))
}

func TestGetClanInfo(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "pollux")

	// AC-CLAN-005: no ticket needed on the public view.
	rec := env.Post(t, "/clan_manager_view/func/get_clan_info", "",
		"<id>"+itoa(clan.ID)+"</id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "<name>"+clan.Name+"</name>")
	assert.Contains(t, body, "<tag>"+clan.Tag+"</tag>")
	assert.Contains(t, body, "<members>2</members>")

	rec = env.Post(t, "/clan_manager_view/func/get_clan_info", "", "<id>999</id>")
	assert.Equal(t, "48", helpers.Result(t, rec))
}

func TestUpdateClanInfo(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "pollux")

	// AC-CLAN-006
	rec := env.Post(t, "/clan_manager_update/sec/update_clan_info", "pollux",
		"<clan_id>"+itoa(clan.ID)+"</clan_id><name>Hijacked</name>")
	assert.Equal(t, "52", helpers.Result(t, rec))

	rec = env.Post(t, "/clan_manager_update/sec/update_clan_info", "castor",
		"<clan_id>"+itoa(clan.ID)+"</clan_id><name>Renamed</name><description>new home</description>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/func/get_clan_info", "",
		"<id>"+itoa(clan.ID)+"</id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, "<name>Renamed</name>")
	assert.Contains(t, body, "<description>new home</description>")
}

func TestDisbandClan(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")
	f.AddMember(t, clan.ID, "castor", "pollux")

	// Only the leader may disband.
	rec := env.Post(t, "/clan_manager_update/sec/disband_clan", "pollux",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	assert.Equal(t, "52", helpers.Result(t, rec))

	// AC-CLAN-007
	rec = env.Post(t, "/clan_manager_update/sec/disband_clan", "castor",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/func/get_clan_info", "",
		"<id>"+itoa(clan.ID)+"</id>")
	assert.Equal(t, "48", helpers.Result(t, rec))

	// Former members are free agents again.
	rec = env.Post(t, "/clan_manager_view/sec/create_clan", "pollux",
		"<name>Phoenix</name><tag>ASH</tag>")
	env.RequireOK(t, rec)
}

func TestClanSearchClosed(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))

	rec := env.Post(t, "/clan_manager_view/sec/clan_search", "castor", "<name>any</name>")
	assert.Equal(t, "51", helpers.Result(t, rec))
}

func TestJoinAutoAcceptClan(t *testing.T) {
	env := helpers.NewEnv(t, teststore.New(t))
	f := fixtures.New(env.Engine)

	clan := f.CreateClan(t, "castor")

	// Direct join is refused until the clan opts into auto-accept.
	rec := env.Post(t, "/clan_manager_update/sec/join_clan", "pollux",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	assert.Equal(t, "52", helpers.Result(t, rec))

	open := true
	err := env.Engine.UpdateClanInfo(context.Background(), fixtures.Claim("castor"),
		clan.ID, service.UpdateClanInfoParams{AutoAccept: &open})
	require.NoError(t, err)

	rec = env.Post(t, "/clan_manager_update/sec/join_clan", "pollux",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	env.RequireOK(t, rec)

	rec = env.Post(t, "/clan_manager_view/sec/get_member_list", "pollux",
		"<clan_id>"+itoa(clan.ID)+"</clan_id>")
	body := env.RequireOK(t, rec)
	assert.Contains(t, body, helpers.JID("pollux"))
}
