package ticket

import (
	"crypto/ecdsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
)

// Verification errors.
var (
	ErrBadSignature = errors.New("ticket: signature verification failed")
	ErrBadKey       = errors.New("ticket: invalid public key")
)

// Verifier checks ticket signatures. Only emulator tickets carry a
// verifiable signature; console tickets pass through unverified because
// their per-title signing keys are not public.
type Verifier struct {
	rpcn *ecdsa.PublicKey
}

// NewVerifier loads the emulator network's ECDSA public key from PEM.
func NewVerifier(rpcnPEM []byte) (*Verifier, error) {
	key, err := parseECPublicKey(rpcnPEM)
	if err != nil {
		return nil, err
	}
	return &Verifier{rpcn: key}, nil
}

// Verify checks the ticket's signature against its signed data. Emulator
// tickets use ECDSA over SHA-224.
func (v *Verifier) Verify(t *Ticket) error {
	if t.Issuer != IssuerEmulator {
		return nil
	}
	digest := sha256.Sum224(t.signedData)
	if !ecdsa.VerifyASN1(v.rpcn, digest[:], t.signature) {
		return ErrBadSignature
	}
	return nil
}

func parseECPublicKey(pemBytes []byte) (*ecdsa.PublicKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("%w: no PEM block", ErrBadKey)
	}
	pub, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadKey, err)
	}
	key, ok := pub.(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an EC key", ErrBadKey)
	}
	return key, nil
}
