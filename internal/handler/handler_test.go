package handler_test

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revival/clans/internal/database"
	"github.com/revival/clans/internal/handler"
	"github.com/revival/clans/internal/repository"
	"github.com/revival/clans/internal/service"
	"github.com/revival/clans/pkg/jwt"
	"github.com/revival/clans/pkg/ticket"
)

type passVerifier struct{}

func (passVerifier) Verify(*ticket.Ticket) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *jwt.Service) {
	t.Helper()
	store := database.NewMemory()
	clans := repository.NewClanRepository(store)
	membership := repository.NewMembershipRepository(store)
	blacklist := repository.NewBlacklistRepository(store)
	announcements := repository.NewAnnouncementRepository(store)

	registry := service.NewRegistry(clans, membership, 0)
	engine := service.NewEngine(service.EngineConfig{
		Registry:      registry,
		Membership:    service.NewMembership(membership, clans, blacklist, registry),
		Blacklist:     service.NewBlacklist(blacklist),
		Announcements: service.NewAnnouncements(announcements, clans),
		Clans:         clans,
	})

	tokens := jwt.NewService([]byte("test-secret"), "clans", time.Hour)
	router := handler.NewRouter(handler.RouterConfig{
		Engine:         engine,
		Store:          store,
		Verifier:       passVerifier{},
		Tokens:         tokens,
		AdminRateRPS:   100,
		AdminRateBurst: 100,
	})
	return router, tokens
}

// wireTicket builds a base64 console ticket for the given username.
func wireTicket(username string) string {
	raw := make([]byte, 212)
	binary.BigEndian.PutUint16(raw[0:2], 0x2100)
	now := time.Now().UnixMilli()
	binary.BigEndian.PutUint64(raw[0x30:0x38], uint64(now-1000))
	binary.BigEndian.PutUint64(raw[0x3C:0x44], uint64(now+3600_000))
	binary.BigEndian.PutUint64(raw[0x48:0x50], 7)
	copy(raw[0x54:0x74], username)
	copy(raw[0xB8:0xBC], "PSN\x00")
	return base64.StdEncoding.EncodeToString(raw)
}

// call posts a clan request as the given player; inner is the XML payload
// after the ticket element.
func call(router http.Handler, path, username, inner string) *httptest.ResponseRecorder {
	body := "<r><ticket>" + wireTicket(username) + "</ticket>" + inner + "</r>"
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createClan(t *testing.T, router http.Handler, owner, name, tag string) {
	t.Helper()
	rec := call(router, "/clan_manager_view/sec/create_clan", owner,
		"<name>"+name+"</name><tag>"+tag+"</tag>")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `result="00"`)
}

func TestCreateClanReturnsID(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := call(router, "/clan_manager_view/sec/create_clan", "castor",
		"<name>Red Team</name><tag>RED</tag>")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/x-ps3-clan", rec.Header().Get("Content-Type"))
	assert.Equal(t, "x-ps3-clan", rec.Header().Get("Message-Type"))
	assert.Contains(t, rec.Body.String(), `<clan result="00"><id>1</id></clan>`)

	// Creation lives under the view prefix only; the update prefix has no
	// such route.
	rec = call(router, "/clan_manager_update/sec/create_clan", "pollux",
		"<name>Blue Team</name><tag>BLU</tag>")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<clan")
}

func TestCreateClanDuplicateName(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	rec := call(router, "/clan_manager_view/sec/create_clan", "pollux",
		"<name>red team</name><tag>RD2</tag>")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="58"`)
}

func TestGetClanInfoNoTicket(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	req := httptest.NewRequest(http.MethodPost, "/clan_manager_view/func/get_clan_info",
		strings.NewReader("<r><id>1</id></r>"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<name>Red Team</name>")
	assert.Contains(t, rec.Body.String(), "<members>1</members>")
}

func TestGetClanInfoMissingClan(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/clan_manager_view/func/get_clan_info",
		strings.NewReader("<r><id>99</id></r>"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="48"`)
}

func TestSecEndpointsRejectMissingTicket(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/clan_manager_view/sec/get_clan_list",
		strings.NewReader("<r></r>"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="02"`)
}

func TestClanSearchAnswersClosedService(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := call(router, "/clan_manager_view/sec/clan_search", "castor", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="51"`)
}

func TestInvitationFlowOverWire(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	inviteeJID := "pollux@un.br.np.playstation.net"
	rec := call(router, "/clan_manager_update/sec/send_invitation", "castor",
		"<clan_id>1</clan_id><jid>"+inviteeJID+"</jid>")
	require.Contains(t, rec.Body.String(), `result="00"`)

	// The invitee sees the clan with invited standing.
	rec = call(router, "/clan_manager_view/sec/get_clan_list", "pollux", "")
	require.Contains(t, rec.Body.String(), `result="00"`)
	assert.Contains(t, rec.Body.String(), `<status>2</status>`)

	rec = call(router, "/clan_manager_update/sec/accept_invitation", "pollux",
		"<clan_id>1</clan_id>")
	require.Contains(t, rec.Body.String(), `result="00"`)

	// Roster now lists both members in join order.
	rec = call(router, "/clan_manager_view/sec/get_member_list", "castor",
		"<clan_id>1</clan_id>")
	body := rec.Body.String()
	require.Contains(t, body, `results="2" total="2"`)
	castorAt := strings.Index(body, "castor@")
	polluxAt := strings.Index(body, "pollux@")
	assert.Greater(t, polluxAt, castorAt)
}

func TestMemberListRequiresMembership(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	rec := call(router, "/clan_manager_view/sec/get_member_list", "stranger",
		"<clan_id>1</clan_id>")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="49"`)
}

func TestKickRequiresOutrank(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	// pollux joins via invitation, then tries to kick the leader.
	call(router, "/clan_manager_update/sec/send_invitation", "castor",
		"<clan_id>1</clan_id><jid>pollux@un.br.np.playstation.net</jid>")
	call(router, "/clan_manager_update/sec/accept_invitation", "pollux", "<clan_id>1</clan_id>")

	rec := call(router, "/clan_manager_update/sec/kick_member", "pollux",
		"<clan_id>1</clan_id><jid>castor@un.br.np.playstation.net</jid>")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="52"`)
}

func TestLeaderCannotLeave(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	rec := call(router, "/clan_manager_update/sec/leave_clan", "castor", "<clan_id>1</clan_id>")
	assert.Contains(t, rec.Body.String(), `result="59"`)
}

func TestAnnouncementOverWire(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	rec := call(router, "/clan_manager_update/sec/post_announcement", "castor",
		"<id>1</id><subject>Hello</subject><msg>First post</msg><expire_date>3600</expire_date>")
	require.Contains(t, rec.Body.String(), `result="00"`)
	assert.Contains(t, rec.Body.String(), `<msg-info id="1">`)

	rec = call(router, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>1</clan_id>")
	require.Contains(t, rec.Body.String(), `result="00"`)
	assert.Contains(t, rec.Body.String(), "<subject>Hello</subject>")

	rec = call(router, "/clan_manager_update/sec/delete_announcement", "castor",
		"<clan_id>1</clan_id><id>1</id>")
	require.Contains(t, rec.Body.String(), `result="00"`)

	rec = call(router, "/clan_manager_view/sec/retrieve_announcements", "castor",
		"<clan_id>1</clan_id>")
	assert.Contains(t, rec.Body.String(), `results="0"`)
}

func TestBlacklistOverWire(t *testing.T) {
	router, _ := newTestRouter(t)
	createClan(t, router, "castor", "Red Team", "RED")

	banned := "smith@un.br.np.playstation.net"
	rec := call(router, "/clan_manager_update/sec/record_blacklist_entry", "castor",
		"<clan_id>1</clan_id><jid>"+banned+"</jid>")
	require.Contains(t, rec.Body.String(), `result="00"`)

	rec = call(router, "/clan_manager_view/sec/get_blacklist", "castor", "<clan_id>1</clan_id>")
	assert.Contains(t, rec.Body.String(), "<entry><jid>"+banned+"</jid></entry>")

	// The banned player cannot request membership.
	rec = call(router, "/clan_manager_update/sec/request_membership", "smith", "<clan_id>1</clan_id>")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), `result="17"`)
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAdminCreateClan(t *testing.T) {
	router, tokens := newTestRouter(t)

	payload := `{"username":"castor","clanName":"Red Team","clanTag":"RED","clanPlatform":"ps3"}`

	// No token.
	req := httptest.NewRequest(http.MethodPut, "/admin/clan/create", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Admin token.
	token, err := tokens.Sign("ops", "admin")
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodPut, "/admin/clan/create", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"clanId":1}`, rec.Body.String())

	// Second clan for the same player conflicts.
	req = httptest.NewRequest(http.MethodPut, "/admin/clan/create",
		strings.NewReader(`{"username":"castor","clanName":"Blue Team","clanTag":"BLU"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWireResultCodesRenderTwoDigitDecimal(t *testing.T) {
	router, _ := newTestRouter(t)

	// 0x30 NO_SUCH_CLAN renders "48" on a missing clan.
	rec := call(router, "/clan_manager_update/sec/join_clan", "castor", "<clan_id>42</clan_id>")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), fmt.Sprintf(`result="%02d"`, 0x30))
}
