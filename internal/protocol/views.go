package protocol

import (
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/revival/clans/internal/model"
)

// timeFormat is the iso8601 shape the client parses. Timestamps are always
// rendered in UTC.
const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func boolFlag(b bool) int {
	if b {
		return 1
	}
	return 0
}

func escape(s string) string {
	var b strings.Builder
	xml.EscapeText(&b, []byte(s))
	return b.String()
}

func elem(b *strings.Builder, name, value string) {
	b.WriteByte('<')
	b.WriteString(name)
	b.WriteByte('>')
	b.WriteString(escape(value))
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

// ClanInfo renders the full clan record for get_clan_info.
func ClanInfo(v model.ClanInfoView) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<info id="%d">`, v.Clan.ID)
	elem(&b, "name", v.Clan.Name)
	elem(&b, "tag", v.Clan.Tag)
	elem(&b, "members", fmt.Sprint(v.MemberCount))
	elem(&b, "date-created", formatTime(v.Clan.DateCreated))
	elem(&b, "description", v.Clan.Description)
	elem(&b, "auto-accept", fmt.Sprint(boolFlag(v.Clan.AutoAccept)))
	elem(&b, "int-attr1", fmt.Sprint(v.Clan.IntAttr1))
	elem(&b, "int-attr2", fmt.Sprint(v.Clan.IntAttr2))
	elem(&b, "int-attr3", fmt.Sprint(v.Clan.IntAttr3))
	elem(&b, "size", fmt.Sprint(v.Clan.Capacity))
	b.WriteString("</info>")
	return b.String()
}

// ClanSearchInfo renders the short clan row used by clan_search results.
func ClanSearchInfo(v model.ClanInfoView) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<info id="%d">`, v.Clan.ID)
	elem(&b, "name", v.Clan.Name)
	elem(&b, "tag", v.Clan.Tag)
	elem(&b, "members", fmt.Sprint(v.MemberCount))
	b.WriteString("</info>")
	return b.String()
}

// ClanPlayerInfo renders a clan from one player's perspective, one row of
// get_clan_list.
func ClanPlayerInfo(v model.ClanMembershipView) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<info id="%d">`, v.Clan.ID)
	elem(&b, "name", v.Clan.Name)
	elem(&b, "tag", v.Clan.Tag)
	elem(&b, "role", fmt.Sprint(int(v.Role)))
	elem(&b, "status", fmt.Sprint(int(v.Status)))
	elem(&b, "onlinename", v.OnlineName)
	elem(&b, "allowmsg", fmt.Sprint(boolFlag(v.AllowMsg)))
	elem(&b, "members", fmt.Sprint(v.MemberCount))
	b.WriteString("</info>")
	return b.String()
}

// PlayerInfo renders the full member record for get_member_info. The bin
// attribute element name carries the client's historical spelling.
func PlayerInfo(m model.Member, binData []byte) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<info jid="%s">`, escape(string(m.JID)))
	elem(&b, "role", fmt.Sprint(int(m.Role)))
	elem(&b, "status", fmt.Sprint(int(model.StatusMember)))
	elem(&b, "onlinename", m.OnlineName)
	elem(&b, "description", m.Description)
	elem(&b, "allowmsg", fmt.Sprint(boolFlag(m.AllowMsg)))
	elem(&b, "bin-atrr1", base64.StdEncoding.EncodeToString(binData))
	elem(&b, "size", fmt.Sprint(len(binData)))
	b.WriteString("</info>")
	return b.String()
}

// PlayerBasicInfo renders one row of get_member_list.
func PlayerBasicInfo(e model.MemberListEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<info jid="%s">`, escape(string(e.JID)))
	elem(&b, "role", fmt.Sprint(int(e.Role)))
	elem(&b, "status", fmt.Sprint(int(e.Status)))
	elem(&b, "description", e.Description)
	b.WriteString("</info>")
	return b.String()
}

// BlacklistEntry renders one row of get_blacklist.
func BlacklistEntry(e model.BlacklistEntry) string {
	var b strings.Builder
	b.WriteString("<entry>")
	elem(&b, "jid", string(e.JID))
	b.WriteString("</entry>")
	return b.String()
}

// ID renders the bare id element create_clan answers with.
func ID(id model.ClanID) string {
	return fmt.Sprintf("<id>%d</id>", id)
}

// AnnouncementInfo renders one row of retrieve_announcements.
func AnnouncementInfo(a model.Announcement) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<msg-info id="%d">`, a.Seq)
	elem(&b, "subject", a.Subject)
	elem(&b, "msg", a.Body)
	elem(&b, "jid", string(a.Author))
	elem(&b, "msg-date", formatTime(a.PostedAt))
	elem(&b, "bin-data", a.BinData)
	elem(&b, "from-id", fmt.Sprint(a.FromID))
	b.WriteString("</msg-info>")
	return b.String()
}
