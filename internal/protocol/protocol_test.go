package protocol

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/revival/clans/internal/model"
)

func TestResultCodeString(t *testing.T) {
	assert.Equal(t, "00", CodeSuccess.String())
	assert.Equal(t, "07", CodeInternalServerError.String())
	// Codes render as decimal, not hex: NO_SUCH_CLAN is 0x30.
	assert.Equal(t, "48", CodeNoSuchClan.String())
	assert.Equal(t, "52", CodePermissionDenied.String())
}

func TestResultCodeHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusOK, CodeSuccess.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, CodeMemberStatusInvalid.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, CodeTicketExpired.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, CodeBlacklisted.HTTPStatus())
	assert.Equal(t, http.StatusNotFound, CodeNoSuchAnnouncement.HTTPStatus())
	assert.Equal(t, http.StatusConflict, CodeDuplicatedClanName.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, CodeInvalidEnvironment.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, CodeCreateClanFrequency.HTTPStatus())
}

func TestWriteEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	Write(rec, CodeSuccess, "<id>7</id>")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "x-ps3-clan", rec.Header().Get("Message-Type"))
	assert.Equal(t, "1.00", rec.Header().Get("Version"))
	assert.Equal(t, "application/x-ps3-clan", rec.Header().Get("Content-Type"))
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><clan result="00"><id>7</id></clan>`,
		rec.Body.String())
}

func TestWriteResultError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteResult(rec, CodeNoSuchClan)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t,
		`<?xml version="1.0" encoding="UTF-8"?><clan result="48"></clan>`,
		rec.Body.String())
}

func TestList(t *testing.T) {
	assert.Equal(t, `<list results="0" total="0"></list>`, List(nil, 0))
	assert.Equal(t,
		`<list results="2" total="5"><id>1</id><id>2</id></list>`,
		List([]string{"<id>1</id>", "<id>2</id>"}, 5))
}

func TestClanInfoView(t *testing.T) {
	v := model.ClanInfoView{
		Clan: model.Clan{
			ID:          42,
			Name:        "Night Watch",
			Tag:         "NW",
			Description: "guarding <the wall>",
			Capacity:    100,
			AutoAccept:  true,
			DateCreated: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
			IntAttr1:    1,
		},
		MemberCount: 3,
	}

	assert.Equal(t,
		`<info id="42"><name>Night Watch</name><tag>NW</tag><members>3</members>`+
			`<date-created>2026-03-14T09:26:53Z</date-created>`+
			`<description>guarding &lt;the wall&gt;</description>`+
			`<auto-accept>1</auto-accept>`+
			`<int-attr1>1</int-attr1><int-attr2>0</int-attr2><int-attr3>0</int-attr3>`+
			`<size>100</size></info>`,
		ClanInfo(v))
}

func TestClanSearchInfoView(t *testing.T) {
	v := model.ClanInfoView{
		Clan:        model.Clan{ID: 9, Name: "Seekers", Tag: "SK"},
		MemberCount: 12,
	}
	assert.Equal(t,
		`<info id="9"><name>Seekers</name><tag>SK</tag><members>12</members></info>`,
		ClanSearchInfo(v))
}

func TestClanPlayerInfoView(t *testing.T) {
	v := model.ClanMembershipView{
		Clan:        model.Clan{ID: 5, Name: "Alpha", Tag: "A"},
		Role:        model.RoleSubLeader,
		Status:      model.StatusMember,
		OnlineName:  "neo",
		AllowMsg:    true,
		MemberCount: 8,
	}
	assert.Equal(t,
		`<info id="5"><name>Alpha</name><tag>A</tag><role>3</role><status>1</status>`+
			`<onlinename>neo</onlinename><allowmsg>1</allowmsg><members>8</members></info>`,
		ClanPlayerInfo(v))
}

func TestPlayerInfoView(t *testing.T) {
	m := model.Member{
		JID:        model.NewJID("trinity", "", ""),
		Role:       model.RoleLeader,
		OnlineName: "trin",
		AllowMsg:   false,
	}
	got := PlayerInfo(m, []byte{0x01, 0x02})
	assert.Equal(t,
		`<info jid="trinity@un.br.np.playstation.net">`+
			`<role>4</role><status>1</status><onlinename>trin</onlinename>`+
			`<description></description><allowmsg>0</allowmsg>`+
			`<bin-atrr1>AQI=</bin-atrr1><size>2</size></info>`,
		got)
}

func TestPlayerBasicInfoView(t *testing.T) {
	e := model.MemberListEntry{
		JID:    model.NewJID("morpheus", "", ""),
		Role:   model.RoleNonMember,
		Status: model.StatusInvited,
	}
	assert.Equal(t,
		`<info jid="morpheus@un.br.np.playstation.net">`+
			`<role>1</role><status>2</status><description></description></info>`,
		PlayerBasicInfo(e))
}

func TestBlacklistEntryView(t *testing.T) {
	e := model.BlacklistEntry{JID: model.NewJID("smith", "", "")}
	assert.Equal(t,
		`<entry><jid>smith@un.br.np.playstation.net</jid></entry>`,
		BlacklistEntry(e))
}

func TestAnnouncementInfoView(t *testing.T) {
	a := model.Announcement{
		Seq:      3,
		Subject:  "Patch day",
		Body:     "Servers down 09:00 & 10:00",
		Author:   model.NewJID("oracle", "", ""),
		PostedAt: time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC),
		FromID:   42,
	}
	assert.Equal(t,
		`<msg-info id="3"><subject>Patch day</subject>`+
			`<msg>Servers down 09:00 &amp; 10:00</msg>`+
			`<jid>oracle@un.br.np.playstation.net</jid>`+
			`<msg-date>2026-01-02T15:04:05Z</msg-date>`+
			`<bin-data></bin-data><from-id>42</from-id></msg-info>`,
		AnnouncementInfo(a))
}

func TestParseRequest(t *testing.T) {
	body := []byte(`<clan_request>` +
		`<ticket>dGlja2V0</ticket>` +
		`<clan_id>17</clan_id>` +
		`<start>10</start><max>25</max>` +
		`</clan_request>`)

	req, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, "dGlja2V0", req.Ticket)
	assert.Equal(t, model.ClanID(17), req.TargetClan())
	assert.Equal(t, 10, req.Start)
	assert.Equal(t, 25, req.Max)
	assert.Nil(t, req.Description)
}

func TestParseRequestAnnouncementShape(t *testing.T) {
	body := []byte(`<r><ticket>t</ticket><id>4</id>` +
		`<subject>hi</subject><msg>there</msg><expire_date>3600</expire_date></r>`)

	req, err := Parse(body)
	require.NoError(t, err)
	assert.Equal(t, model.ClanID(4), req.TargetClan())
	assert.Equal(t, "hi", req.Subject)
	assert.Equal(t, "there", req.Msg)
	assert.Equal(t, int64(3600), req.ExpireDate)
}

func TestParseRequestOptionalPresence(t *testing.T) {
	req, err := Parse([]byte(`<r><description></description><allowmsg>0</allowmsg></r>`))
	require.NoError(t, err)
	require.NotNil(t, req.Description)
	assert.Equal(t, "", *req.Description)
	require.NotNil(t, req.AllowMsg)
	assert.Equal(t, 0, *req.AllowMsg)
	assert.Nil(t, req.OnlineName)
}

func TestParseRequestEmptyAndMalformed(t *testing.T) {
	req, err := Parse(nil)
	require.NoError(t, err)
	assert.Empty(t, req.Ticket)

	_, err = Parse([]byte(`<unclosed`))
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestPageClamping(t *testing.T) {
	r := &Request{Start: -3, Max: 0}
	start, max := r.Page(20, 100)
	assert.Equal(t, 0, start)
	assert.Equal(t, 20, max)

	r = &Request{Start: 5, Max: 500}
	start, max = r.Page(20, 100)
	assert.Equal(t, 5, start)
	assert.Equal(t, 100, max)
}
