// Package transcript implements the Fiat-Shamir transform: a deterministic
// mapping from an ordered list of group/scalar/byte items to a challenge
// scalar in Fr, via SHA-256 over canonical serializations.
//
// Item is a closed sum over the hashable kinds; a value can be built only
// via the constructors, so an unsupported type fails at compile time rather
// than as an InvalidInput error at runtime.
package transcript

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/pairing"
)

type kind int

const (
	kindGT kind = iota
	kindG1
	kindG2
	kindFr
	kindBytes
	kindStr
)

// Item is one element of a Fiat-Shamir transcript: a GT element, a G1 or G2
// point, an Fr scalar, a raw byte string, or a UTF-8 string.
type Item struct {
	kind  kind
	gt    pairing.GTElement
	g1    pairing.G1Point
	g2    pairing.G2Point
	fr    pairing.Fr
	bytes []byte
	str   string
}

// FromGT wraps a GT element as a transcript item.
func FromGT(x pairing.GTElement) Item { return Item{kind: kindGT, gt: x} }

// FromG1 wraps a G1 point as a transcript item.
func FromG1(x pairing.G1Point) Item { return Item{kind: kindG1, g1: x} }

// FromG2 wraps a G2 point as a transcript item.
func FromG2(x pairing.G2Point) Item { return Item{kind: kindG2, g2: x} }

// FromFr wraps an Fr scalar as a transcript item.
func FromFr(x pairing.Fr) Item { return Item{kind: kindFr, fr: x} }

// FromBytes wraps a raw byte string, absorbed verbatim.
func FromBytes(b []byte) Item { return Item{kind: kindBytes, bytes: b} }

// FromStr wraps a string, absorbed as its UTF-8 encoding.
func FromStr(s string) Item { return Item{kind: kindStr, str: s} }

// canonicalBytes returns the item's canonical serialization.
func (it Item) canonicalBytes() ([]byte, error) {
	switch it.kind {
	case kindGT:
		b := it.gt.Bytes()
		return b[:], nil
	case kindG1:
		b := it.g1.Bytes()
		return b[:], nil
	case kindG2:
		b := it.g2.Bytes()
		return b[:], nil
	case kindFr:
		b := it.fr.Bytes()
		return b[:], nil
	case kindBytes:
		return it.bytes, nil
	case kindStr:
		return []byte(it.str), nil
	default:
		return nil, voteerr.ErrInvalidInput
	}
}

// Challenge computes challenge = Fr_from_hash(SHA256(concat(len-prefixed
// canonical_serialize(item_i)))) over the ordered items.
//
// Each item is preceded by a big-endian uint32 length. Group and scalar
// serializations are fixed-width, so framing matters only for the
// variable-width byte and string kinds, but it is applied uniformly: two
// sequences that split their bytes at different item boundaries never
// absorb to the same byte stream. Items are not tagged by kind, so a byte
// item and a string item holding the same bytes absorb identically.
func Challenge(items ...Item) (pairing.Fr, error) {
	h := sha256.New()
	var lenPrefix [4]byte
	for _, it := range items {
		b, err := it.canonicalBytes()
		if err != nil {
			return pairing.Fr{}, fmt.Errorf("transcript: %w", err)
		}
		binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(b)))
		h.Write(lenPrefix[:])
		h.Write(b)
	}
	return pairing.FrFromHash(h.Sum(nil)), nil
}
