// Package wire implements the hex-string persisted proof envelope format.
// This is a persistence concern at the boundary of the core, not part of
// the cryptographic contract itself, but proof envelopes need a canonical
// text encoding to cross a process boundary and the field layout here is
// what downstream consumers parse.
package wire

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/cancelkeys/selftally/ballot"
	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/pairing"
)

// HexBytes is a byte string that marshals to/from JSON as a "0x"-prefixed
// hex string.
type HexBytes []byte

// String returns the bare (unprefixed) hex encoding.
func (b HexBytes) String() string { return hex.EncodeToString(b) }

// MarshalJSON implements json.Marshaler.
func (b HexBytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + hexutil.Encode(b) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *HexBytes) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("wire: invalid hex string %s: %w", data, voteerr.ErrSerialization)
	}
	decoded, err := hexutil.Decode(string(data[1 : len(data)-1]))
	if err != nil {
		return fmt.Errorf("wire: decode hex: %w: %w", err, voteerr.ErrSerialization)
	}
	*b = decoded
	return nil
}

// SchnorrWire is the persisted form of a SchnorrProof.
type SchnorrWire struct {
	AHex           HexBytes `json:"a_hex"`
	SHex           HexBytes `json:"s_hex"`
	PairingBaseHex HexBytes `json:"pairing_base_hex"`
	VotePartHex    HexBytes `json:"vote_part_hex"`
}

// EncodeSchnorr converts a SchnorrProof to its wire form.
func EncodeSchnorr(p *ballot.SchnorrProof) SchnorrWire {
	a := p.A.Bytes()
	s := p.S.Bytes()
	base := p.PairingBase.Bytes()
	vp := p.VotePart.Bytes()
	return SchnorrWire{
		AHex:           a[:],
		SHex:           s[:],
		PairingBaseHex: base[:],
		VotePartHex:    vp[:],
	}
}

// DecodeSchnorr parses a SchnorrWire back into a SchnorrProof. Fails with
// voteerr.ErrSerialization on bad length or malformed field encodings.
func DecodeSchnorr(w SchnorrWire) (*ballot.SchnorrProof, error) {
	a, err := pairing.GTFromBytes(w.AHex)
	if err != nil {
		return nil, fmt.Errorf("wire: decode schnorr a: %w", err)
	}
	s, err := pairing.FrFromBytes(w.SHex)
	if err != nil {
		return nil, fmt.Errorf("wire: decode schnorr s: %w", err)
	}
	base, err := pairing.GTFromBytes(w.PairingBaseHex)
	if err != nil {
		return nil, fmt.Errorf("wire: decode schnorr pairing_base: %w", err)
	}
	vp, err := pairing.GTFromBytes(w.VotePartHex)
	if err != nil {
		return nil, fmt.Errorf("wire: decode schnorr vote_part: %w", err)
	}
	return &ballot.SchnorrProof{A: a, S: s, PairingBase: base, VotePart: vp}, nil
}

// OrWire is the persisted form of an OrProof together with its
// per-election base and vote part.
type OrWire struct {
	A0Hex          HexBytes `json:"a0_hex"`
	A1Hex          HexBytes `json:"a1_hex"`
	C0Hex          HexBytes `json:"c0_hex"`
	C1Hex          HexBytes `json:"c1_hex"`
	S0Hex          HexBytes `json:"s0_hex"`
	S1Hex          HexBytes `json:"s1_hex"`
	PairingBaseHex HexBytes `json:"pairing_base_hex"`
	VotePartHex    HexBytes `json:"vote_part_hex"`
}

// EncodeOr converts an OrProof, its per-election base, and vote_part to
// their wire form.
func EncodeOr(p *ballot.OrProof, base, votePart pairing.GTElement) OrWire {
	a0 := p.A0.Bytes()
	a1 := p.A1.Bytes()
	c0 := p.C0.Bytes()
	c1 := p.C1.Bytes()
	s0 := p.S0.Bytes()
	s1 := p.S1.Bytes()
	baseB := base.Bytes()
	vp := votePart.Bytes()
	return OrWire{
		A0Hex:          a0[:],
		A1Hex:          a1[:],
		C0Hex:          c0[:],
		C1Hex:          c1[:],
		S0Hex:          s0[:],
		S1Hex:          s1[:],
		PairingBaseHex: baseB[:],
		VotePartHex:    vp[:],
	}
}

// DecodeOr parses an OrWire back into an OrProof, its per-election base, and
// vote_part.
func DecodeOr(w OrWire) (p *ballot.OrProof, base, votePart pairing.GTElement, err error) {
	a0, err := pairing.GTFromBytes(w.A0Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or a0: %w", err)
	}
	a1, err := pairing.GTFromBytes(w.A1Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or a1: %w", err)
	}
	c0, err := pairing.FrFromBytes(w.C0Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or c0: %w", err)
	}
	c1, err := pairing.FrFromBytes(w.C1Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or c1: %w", err)
	}
	s0, err := pairing.FrFromBytes(w.S0Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or s0: %w", err)
	}
	s1, err := pairing.FrFromBytes(w.S1Hex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or s1: %w", err)
	}
	base, err = pairing.GTFromBytes(w.PairingBaseHex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or pairing_base: %w", err)
	}
	votePart, err = pairing.GTFromBytes(w.VotePartHex)
	if err != nil {
		return nil, pairing.GTElement{}, pairing.GTElement{}, fmt.Errorf("wire: decode or vote_part: %w", err)
	}
	return &ballot.OrProof{A0: a0, A1: a1, C0: c0, C1: c1, S0: s0, S1: s1}, base, votePart, nil
}
