package protocol

import (
	"encoding/xml"
	"errors"

	"github.com/revival/clans/internal/model"
)

// ErrMalformedRequest reports a body that is not the XML shape the client
// sends.
var ErrMalformedRequest = errors.New("protocol: malformed request body")

// Request is the superset of fields clan manager request bodies carry. Each
// operation reads only the fields it defines; the root element name is not
// significant and is ignored. Optional fields that distinguish "absent" from
// "empty" are pointers.
type Request struct {
	Ticket string `xml:"ticket"`

	// The clan id travels as <clan_id> on viewer operations and as <id> on
	// announcement posting. TargetClan resolves whichever is present.
	ID      uint32 `xml:"id"`
	RawClan uint32 `xml:"clan_id"`

	Name        string  `xml:"name"`
	Tag         string  `xml:"tag"`
	Description *string `xml:"description"`

	JID  string `xml:"jid"`
	Role *int   `xml:"role"`

	OnlineName *string `xml:"onlinename"`
	AllowMsg   *int    `xml:"allowmsg"`

	Start int `xml:"start"`
	Max   int `xml:"max"`

	Subject    string `xml:"subject"`
	Msg        string `xml:"msg"`
	ExpireDate int64  `xml:"expire_date"` // seconds from now

	Reason string `xml:"reason"`
}

// Parse decodes a request body. An empty body yields an empty Request, since
// several operations send no payload beyond the ticket.
func Parse(body []byte) (*Request, error) {
	req := &Request{}
	if len(body) == 0 {
		return req, nil
	}
	if err := xml.Unmarshal(body, req); err != nil {
		return nil, ErrMalformedRequest
	}
	return req, nil
}

// TargetClan returns the clan id the request addresses, whichever element it
// arrived in.
func (r *Request) TargetClan() model.ClanID {
	if r.RawClan != 0 {
		return model.ClanID(r.RawClan)
	}
	return model.ClanID(r.ID)
}

// Page clamps start/max into a usable window. max of zero means the caller
// wants the server default.
func (r *Request) Page(defaultMax, ceiling int) (start, max int) {
	start = r.Start
	if start < 0 {
		start = 0
	}
	max = r.Max
	if max <= 0 {
		max = defaultMax
	}
	if max > ceiling {
		max = ceiling
	}
	return start, max
}
