// Package pairing wraps a BLS12-381 pairing-friendly curve implementation
// behind the fixed vocabulary the rest of the voting core is written
// against: the scalar field Fr, the source groups G1 and G2, the target
// group GT, the bilinear pairing e: G1 x G2 -> GT, CSPRNG-backed scalar
// sampling, and canonical fixed-width serialization.
package pairing

import (
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"

	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/internal/voteslog"
)

// Domain separation tags for hash-to-curve, following the IETF
// _XMD:SHA-256_SSWU_RO_ suite naming.
const (
	g1DST = "SELFTALLY-V1_BLS12381G1_XMD:SHA-256_SSWU_RO_"
	g2DST = "SELFTALLY-V1_BLS12381G2_XMD:SHA-256_SSWU_RO_"

	// generatorDomain is hashed to G1 once per process to derive the
	// shared generator g. Every participant in an election must derive
	// the same g, so this string must never change.
	generatorDomain = "generator"
)

// FrBytes, G1Bytes, G2Bytes and GTBytes are the canonical, fixed-width
// serialization lengths for each element type.
const (
	FrBytes = fr.Bytes
	G1Bytes = bls12381.SizeOfG1AffineCompressed
	G2Bytes = bls12381.SizeOfG2AffineCompressed
	GTBytes = bls12381.SizeOfGT
)

// Fr is an element of the BLS12-381 scalar field.
type Fr struct{ v fr.Element }

// FrRandom samples a uniformly random scalar via the process CSPRNG.
// gnark-crypto's Element.SetRandom reads from crypto/rand, the sole
// source of secret randomness in this module.
func FrRandom() (Fr, error) {
	var z Fr
	if _, err := z.v.SetRandom(); err != nil {
		return Fr{}, fmt.Errorf("pairing: sample random scalar: %w", err)
	}
	return z, nil
}

// FrFromUint64 constructs a scalar from a small non-negative integer.
func FrFromUint64(u uint64) Fr {
	var z Fr
	z.v.SetUint64(u)
	return z
}

// FrFromHash reduces an arbitrary-length hash digest uniformly into Fr.
// The digest is interpreted as a big-endian integer and reduced modulo the
// scalar field's modulus, rather than relying on Element.SetBytes, whose
// truncation behavior is undocumented for inputs wider than the modulus.
func FrFromHash(digest []byte) Fr {
	var z Fr
	x := new(big.Int).SetBytes(digest)
	x.Mod(x, fr.Modulus())
	z.v.SetBigInt(x)
	return z
}

// FrFromBytes decodes a canonical 32-byte big-endian scalar encoding.
func FrFromBytes(b []byte) (Fr, error) {
	if len(b) != FrBytes {
		return Fr{}, fmt.Errorf("pairing: scalar must be %d bytes, got %d: %w", FrBytes, len(b), voteerr.ErrSerialization)
	}
	var z Fr
	z.v.SetBytes(b)
	return z, nil
}

// Add returns a+b.
func (a Fr) Add(b Fr) Fr { var z Fr; z.v.Add(&a.v, &b.v); return z }

// Sub returns a-b.
func (a Fr) Sub(b Fr) Fr { var z Fr; z.v.Sub(&a.v, &b.v); return z }

// Mul returns a*b.
func (a Fr) Mul(b Fr) Fr { var z Fr; z.v.Mul(&a.v, &b.v); return z }

// Neg returns -a.
func (a Fr) Neg() Fr { var z Fr; z.v.Neg(&a.v); return z }

// Equal reports whether a and b represent the same field element.
func (a Fr) Equal(b Fr) bool { return a.v.Equal(&b.v) }

// Bytes returns the canonical big-endian encoding.
func (a Fr) Bytes() [FrBytes]byte { return a.v.Bytes() }

// bigInt converts to the big.Int representation gnark-crypto's scalar
// multiplication and GT exponentiation APIs expect.
func (a Fr) bigInt() *big.Int {
	var out big.Int
	a.v.BigInt(&out)
	return &out
}

// G1Point is a point in G1, the group carrying the generator and voter keys.
type G1Point struct{ v bls12381.G1Affine }

// G1Identity returns the identity element of G1.
func G1Identity() G1Point {
	var z G1Point
	z.v.SetInfinity()
	return z
}

// g1GeneratorFromHash derives a G1 point deterministically from a domain
// separation string via hash-to-curve.
func g1GeneratorFromHash(domain string) (G1Point, error) {
	aff, err := bls12381.HashToG1([]byte(domain), []byte(g1DST))
	if err != nil {
		return G1Point{}, fmt.Errorf("pairing: hash-to-G1(%q): %w", domain, err)
	}
	return G1Point{v: aff}, nil
}

// Add returns p+q.
func (p G1Point) Add(q G1Point) G1Point { var z G1Point; z.v.Add(&p.v, &q.v); return z }

// Sub returns p-q.
func (p G1Point) Sub(q G1Point) G1Point {
	var neg bls12381.G1Affine
	neg.Neg(&q.v)
	var z G1Point
	z.v.Add(&p.v, &neg)
	return z
}

// Neg returns -p.
func (p G1Point) Neg() G1Point { var z G1Point; z.v.Neg(&p.v); return z }

// MulScalar returns s*p.
func (p G1Point) MulScalar(s Fr) G1Point {
	var z G1Point
	z.v.ScalarMultiplication(&p.v, s.bigInt())
	return z
}

// Equal reports whether p and q are the same point.
func (p G1Point) Equal(q G1Point) bool { return p.v.Equal(&q.v) }

// Bytes returns the canonical compressed encoding.
func (p G1Point) Bytes() [G1Bytes]byte {
	return p.v.Bytes()
}

// G1FromBytes decodes a canonical compressed G1 encoding.
func G1FromBytes(b []byte) (G1Point, error) {
	var z G1Point
	if _, err := z.v.SetBytes(b); err != nil {
		return G1Point{}, fmt.Errorf("pairing: decode G1: %w: %w", err, voteerr.ErrSerialization)
	}
	return z, nil
}

// G2Point is a point in G2, carrying the per-election hash-to-curve base H.
type G2Point struct{ v bls12381.G2Affine }

// G2HashToCurve hashes an arbitrary message (the electionId) to a point in
// G2 via gnark-crypto's HashToG2, which implements the IETF
// _XMD:SHA-256_SSWU_RO_ suite.
func G2HashToCurve(msg []byte) (G2Point, error) {
	aff, err := bls12381.HashToG2(msg, []byte(g2DST))
	if err != nil {
		return G2Point{}, fmt.Errorf("pairing: hash-to-G2: %w", err)
	}
	return G2Point{v: aff}, nil
}

// Equal reports whether p and q are the same point.
func (p G2Point) Equal(q G2Point) bool { return p.v.Equal(&q.v) }

// Bytes returns the canonical compressed encoding.
func (p G2Point) Bytes() [G2Bytes]byte {
	return p.v.Bytes()
}

// G2FromBytes decodes a canonical compressed G2 encoding.
func G2FromBytes(b []byte) (G2Point, error) {
	var z G2Point
	if _, err := z.v.SetBytes(b); err != nil {
		return G2Point{}, fmt.Errorf("pairing: decode G2: %w: %w", err, voteerr.ErrSerialization)
	}
	return z, nil
}

// GTElement is an element of the pairing target group, the multiplicative
// group ballots, proof commitments, and tally products live in.
type GTElement struct{ v bls12381.GT }

// GTIdentity returns the multiplicative identity of GT.
func GTIdentity() GTElement {
	var z GTElement
	z.v.SetOne()
	return z
}

// Pairing computes e(p, q).
func Pairing(p G1Point, q G2Point) (GTElement, error) {
	gt, err := bls12381.Pair([]bls12381.G1Affine{p.v}, []bls12381.G2Affine{q.v})
	if err != nil {
		return GTElement{}, fmt.Errorf("pairing: e(G1,G2): %w", err)
	}
	return GTElement{v: gt}, nil
}

// Mul returns a*b in GT.
func (a GTElement) Mul(b GTElement) GTElement { var z GTElement; z.v.Mul(&a.v, &b.v); return z }

// Pow returns a^s in GT.
func (a GTElement) Pow(s Fr) GTElement {
	var z GTElement
	z.v.Exp(a.v, s.bigInt())
	return z
}

// Equal reports whether a and b are the same GT element.
func (a GTElement) Equal(b GTElement) bool { return a.v.Equal(&b.v) }

// Bytes returns the canonical fixed-width encoding.
func (a GTElement) Bytes() [GTBytes]byte {
	return a.v.Bytes()
}

// GTFromBytes decodes a canonical GT encoding.
func GTFromBytes(b []byte) (GTElement, error) {
	if len(b) != GTBytes {
		return GTElement{}, fmt.Errorf("pairing: GT element must be %d bytes, got %d: %w", GTBytes, len(b), voteerr.ErrSerialization)
	}
	var z GTElement
	if err := z.v.SetBytes(b); err != nil {
		return GTElement{}, fmt.Errorf("pairing: decode GT: %w: %w", err, voteerr.ErrSerialization)
	}
	return z, nil
}

var (
	initOnce    sync.Once
	initialized atomic.Bool
	initErr     error
	generator   G1Point
)

// InitCrypto performs the one-shot process-wide pairing library
// initialization: deriving the shared generator g. It must run before any
// other operation in this module and has no teardown. It is idempotent and
// safe to call from multiple goroutines or test packages.
func InitCrypto() error {
	initOnce.Do(func() {
		g, err := g1GeneratorFromHash(generatorDomain)
		if err != nil {
			initErr = fmt.Errorf("%w: %w", voteerr.ErrCryptoInit, err)
			return
		}
		generator = g
		initialized.Store(true)
		voteslog.Logger().Info().Msg("pairing primitives initialized")
	})
	return initErr
}

// Generator returns the process-wide shared generator g. It panics if
// InitCrypto has not yet succeeded, since every other operation in the core
// depends on a correctly derived generator.
func Generator() G1Point {
	if !initialized.Load() {
		panic("pairing: InitCrypto must be called before Generator")
	}
	return generator
}
