// Package voting is the top-level entry point of the voting core: register
// voters, cast ballots, and encrypt/decrypt the tally.
package voting

import (
	"fmt"
	"time"

	"github.com/cancelkeys/selftally/ballot"
	"github.com/cancelkeys/selftally/pairing"
	"github.com/cancelkeys/selftally/roster"
	"github.com/cancelkeys/selftally/tally"
)

// Config holds the options that shape a VotingSystem. TlockDelays is an
// opaque pass-through for an external time-lock collaborator: the core
// only records it, never acts on it.
type Config struct {
	ProofMode   ballot.Mode
	TlockDelays map[string]time.Duration
}

// NewConfig returns a Config with the OR-proof mode as the default, since
// it is the variant that actually constrains votes to {0,1}.
func NewConfig() *Config {
	return &Config{
		ProofMode:   ballot.ModeOrProof,
		TlockDelays: make(map[string]time.Duration),
	}
}

// VotingSystem is the top-level entry point: a roster, a ballot engine over
// it, and a per-election ballot store.
type VotingSystem struct {
	cfg    *Config
	roster *roster.Roster
	engine *ballot.Engine
	store  map[string][]ballot.Envelope
}

// New constructs a VotingSystem, performing the one-shot pairing-library
// initialization if it has not already happened in this process.
func New(cfg *Config) (*VotingSystem, error) {
	if cfg == nil {
		cfg = NewConfig()
	}
	if err := pairing.InitCrypto(); err != nil {
		return nil, fmt.Errorf("voting: %w", err)
	}
	r := roster.New()
	return &VotingSystem{
		cfg:    cfg,
		roster: r,
		engine: ballot.NewEngine(r, cfg.ProofMode),
		store:  make(map[string][]ballot.Envelope),
	}, nil
}

// RegisterVoter appends voterID to the roster and returns its public key as
// a canonical hex string. Fails with voteerr.ErrDuplicateVoter.
func (vs *VotingSystem) RegisterVoter(voterID string) (string, error) {
	pk, err := vs.roster.Register(voterID)
	if err != nil {
		return "", fmt.Errorf("voting: register voter: %w", err)
	}
	b := pk.Bytes()
	return fmt.Sprintf("%x", b[:]), nil
}

// CastVote casts vote (0 or 1) for voterID in electionID and appends the
// resulting envelope to that election's ballot store. Fails with
// voteerr.ErrUnknownVoter, voteerr.ErrInvalidVote, or (OR-proof mode)
// voteerr.ErrAlreadyVoted; the ballot store is unchanged on failure.
func (vs *VotingSystem) CastVote(voterID string, vote int, electionID string) error {
	env, err := vs.engine.Cast(voterID, vote, electionID)
	if err != nil {
		return fmt.Errorf("voting: cast vote: %w", err)
	}
	vs.store[electionID] = append(vs.store[electionID], env)
	return nil
}

// EncryptTally verifies and aggregates every ballot cast for electionID.
// It never fails: an election with no ballots yields R = 1_GT.
func (vs *VotingSystem) EncryptTally(electionID string) (tally.Result, error) {
	result, err := tally.EncryptTally(vs.store[electionID], electionID)
	if err != nil {
		return tally.Result{}, fmt.Errorf("voting: encrypt tally: %w", err)
	}
	return result, nil
}

// DecryptTally recovers the integer sum of votes from an encrypted tally
// result, searching i in [0, maxVotes]. Returns voteerr.ErrTallyFailed if
// no matching exponent is found.
func (vs *VotingSystem) DecryptTally(electionID string, result tally.Result, maxVotes int) (int, error) {
	n, err := tally.DecryptTally(result, maxVotes)
	if err != nil {
		return 0, fmt.Errorf("voting: decrypt tally for %q: %w", electionID, err)
	}
	return n, nil
}

// RosterSize returns the number of registered voters, mostly useful for
// test fixtures and sanity checks before closing registration.
func (vs *VotingSystem) RosterSize() int { return vs.roster.Size() }
