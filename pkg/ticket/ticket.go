// Package ticket parses and verifies binary PSN authentication tickets.
//
// A ticket is a fixed-layout binary blob, base64 encoded on the wire,
// carrying the player's account id, username, region and domain, plus an
// ECDSA signature. Tickets minted by the RPCN emulator network are signed
// with a known key and are verified; tickets from real consoles use
// per-title keys that are not public, so they are accepted on parse alone.
package ticket

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Version is the ticket format version, as encoded in the first two bytes.
type Version uint16

const (
	V2  Version = 0x2100
	V21 Version = 0x2101
	V3  Version = 0x3100
	V4  Version = 0x4100
)

func versionFrom(v uint16) (Version, bool) {
	switch Version(v) {
	case V2, V21, V3, V4:
		return Version(v), true
	default:
		return 0, false
	}
}

// ticketLength is the nominal blob size for the version.
func (v Version) ticketLength() int {
	switch v {
	case V4:
		return 320
	case V3:
		return 220
	default:
		return 212
	}
}

// consoleSignatureLength is the trailing signature size consoles append.
func (v Version) consoleSignatureLength() int {
	if v == V4 {
		return 32
	}
	return 16
}

// Issuer distinguishes who minted and signed the ticket.
type Issuer int

const (
	// IssuerConsole is a real PS3 on PSN. Signed with an unknown per-title
	// key; cannot be verified.
	IssuerConsole Issuer = iota

	// IssuerEmulator is RPCN (RPCS3). Signed with a published key.
	IssuerEmulator
)

// Parse errors.
var (
	ErrMalformed          = errors.New("ticket: malformed blob")
	ErrUnsupportedVersion = errors.New("ticket: unsupported version")
	ErrBadDates           = errors.New("ticket: implausible issue or expiry date")
	ErrExpired            = errors.New("ticket: expired")
)

// Ticket is a decoded PSN ticket.
type Ticket struct {
	Version   Version
	Serial    string
	IssuerID  uint32
	IssuedAt  time.Time
	ExpiresAt time.Time
	AccountID uint64
	Username  string
	Region    string
	Domain    string
	ServiceID string
	Status    uint32
	Issuer    Issuer

	// signedData and signature feed Verifier; layouts differ per issuer.
	signedData []byte
	signature  []byte
}

// emulator network defaults for tickets that omit domain or region
const (
	defaultDomain = "un"
	defaultRegion = "br"
)

const rpcnSignerID = "RPCN"

// ParseBase64 decodes and parses a base64 wire ticket.
func ParseBase64(s string) (*Ticket, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Parse(raw)
}

// Parse decodes a binary ticket and validates its dates. Signature
// verification is a separate step; see Verifier.
func Parse(raw []byte) (*Ticket, error) {
	if len(raw) < 2 {
		return nil, ErrMalformed
	}
	version, ok := versionFrom(binary.BigEndian.Uint16(raw[0:2]))
	if !ok {
		return nil, ErrUnsupportedVersion
	}
	if len(raw) < 212 || len(raw) > 400 {
		return nil, ErrMalformed
	}

	// Field offsets shift by 4 bytes in version 4.
	t := &Ticket{Version: version}
	var signerOff int
	switch version {
	case V4:
		t.Serial = decodeString(raw[0x14:0x28])
		t.IssuerID = binary.BigEndian.Uint32(raw[0x2C:0x30])
		issued, expires, err := parseTimestamps(raw, 0x34, 0x40)
		if err != nil {
			return nil, err
		}
		t.IssuedAt, t.ExpiresAt = issued, expires
		t.AccountID = binary.BigEndian.Uint64(raw[0x4C:0x54])
		t.Username = decodeString(raw[0x58:0x78])
		t.Region = decodeString(raw[0x7C:0x7E])
		t.Domain = decodeString(raw[0x84:0x86])
		t.ServiceID = decodeString(raw[0x8C:0x9F])
		signerOff = 0xC0
	default:
		t.Serial = decodeString(raw[0x10:0x24])
		t.IssuerID = binary.BigEndian.Uint32(raw[0x28:0x2C])
		issued, expires, err := parseTimestamps(raw, 0x30, 0x3C)
		if err != nil {
			return nil, err
		}
		t.IssuedAt, t.ExpiresAt = issued, expires
		t.AccountID = binary.BigEndian.Uint64(raw[0x48:0x50])
		t.Username = decodeString(raw[0x54:0x74])
		t.Region = decodeString(raw[0x78:0x7A])
		t.Domain = decodeString(raw[0x80:0x82])
		t.ServiceID = decodeString(raw[0x88:0x9B])
		t.Status = binary.BigEndian.Uint32(raw[0xA4:0xA8])
		signerOff = 0xB8
	}

	if t.Domain == "" {
		t.Domain = defaultDomain
	}
	if t.Region == "" {
		t.Region = defaultRegion
	}

	if len(raw) < signerOff+4 {
		return nil, ErrMalformed
	}
	if string(raw[signerOff:signerOff+4]) == rpcnSignerID {
		t.Issuer = IssuerEmulator
	} else {
		t.Issuer = IssuerConsole
	}

	switch t.Issuer {
	case IssuerEmulator:
		if version == V4 {
			return nil, fmt.Errorf("%w: emulator does not mint version 4", ErrUnsupportedVersion)
		}
		// The emulator signs the user data section only, 0x08 to 0xB0,
		// and appends an ASN.1 signature from 0xC0.
		if len(raw) <= 0xC0 {
			return nil, ErrMalformed
		}
		t.signedData = raw[0x08:0xB0]
		t.signature = raw[0xC0:]
	default:
		sigLen := version.consoleSignatureLength()
		end := version.ticketLength() - sigLen - 16
		if end > len(raw) || len(raw) < sigLen {
			return nil, ErrMalformed
		}
		t.signedData = raw[0x08:end]
		t.signature = raw[len(raw)-sigLen:]
	}

	return t, nil
}

// Valid reports whether the ticket covers the given instant.
func (t *Ticket) Valid(now time.Time) error {
	if now.After(t.ExpiresAt) {
		return ErrExpired
	}
	return nil
}

func decodeString(b []byte) string {
	return strings.TrimRight(string(b), "\x00")
}

// parseTimestamps reads the two 8-byte millisecond timestamps. Some ticket
// producers emit them little-endian, so if the big-endian reading is
// implausible the reversed reading is tried before giving up.
func parseTimestamps(raw []byte, issuedOff, expiresOff int) (time.Time, time.Time, error) {
	read := func(reverse bool) (uint64, uint64) {
		issued := make([]byte, 8)
		expires := make([]byte, 8)
		copy(issued, raw[issuedOff:issuedOff+8])
		copy(expires, raw[expiresOff:expiresOff+8])
		if reverse {
			reverseBytes(issued)
			reverseBytes(expires)
		}
		return binary.BigEndian.Uint64(issued), binary.BigEndian.Uint64(expires)
	}

	issued, expires := read(false)
	if err := validateDates(issued, expires); err != nil {
		issued, expires = read(true)
		if err := validateDates(issued, expires); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return time.UnixMilli(int64(issued)).UTC(), time.UnixMilli(int64(expires)).UTC(), nil
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

// validateDates sanity-checks millisecond timestamps: non-zero, ordered,
// not issued in the future beyond five minutes of clock skew, and not
// expiring more than a year out.
func validateDates(issuedMs, expiresMs uint64) error {
	if issuedMs == 0 || expiresMs == 0 {
		return ErrBadDates
	}
	if expiresMs <= issuedMs {
		return ErrBadDates
	}
	nowMs := uint64(time.Now().UnixMilli())
	if issuedMs > nowMs+5*60*1000 {
		return ErrBadDates
	}
	if expiresMs > nowMs+365*24*3600*1000 {
		return ErrBadDates
	}
	return nil
}
