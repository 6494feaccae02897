// Package tally implements the tally pipeline: per-ballot proof
// verification, homomorphic aggregation in GT, and discrete-log recovery
// of the small-magnitude result.
package tally

import (
	"fmt"

	"github.com/cancelkeys/selftally/ballot"
	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/internal/voteslog"
	"github.com/cancelkeys/selftally/pairing"
)

// Result is the encrypted tally: the aggregated product R and the vote
// base B used to recover it, both elements of GT.
type Result struct {
	R    pairing.GTElement
	Base pairing.GTElement
}

// EncryptTally verifies every envelope addressed to electionID, multiplies
// the valid ones together in GT, and returns the aggregate. A proof failure
// is logged and the ballot skipped, so a single malformed ballot cannot
// block an election; an empty or all-invalid envelope set yields R = 1_GT.
func EncryptTally(envelopes []ballot.Envelope, electionID string) (Result, error) {
	h, err := pairing.G2HashToCurve([]byte(electionID))
	if err != nil {
		return Result{}, fmt.Errorf("tally: election base for %q: %w", electionID, err)
	}
	b, err := pairing.Pairing(pairing.Generator(), h)
	if err != nil {
		return Result{}, fmt.Errorf("tally: election base for %q: %w", electionID, err)
	}

	r := pairing.GTIdentity()
	for _, env := range envelopes {
		if env.ElectionID != electionID {
			continue
		}
		if !ballot.VerifyEnvelope(env, b) {
			voteslog.Logger().Warn().
				Str("election_id", electionID).
				Str("reason", "proof verification failed").
				Msg("skipping invalid ballot")
			continue
		}
		r = r.Mul(env.Ballot)
	}

	return Result{R: r, Base: b}, nil
}

// DecryptTally recovers the integer sum of votes by brute-force discrete
// log: the smallest i in [0, maxVotes] such that Base^i == R. Returns
// voteerr.ErrTallyFailed if the search exhausts maxVotes without a match,
// which implies either a corrupted ballot that nonetheless verified (should
// be impossible) or an incorrect maxVotes; this is surfaced to the caller
// and is not retried automatically.
//
// Complexity is O(maxVotes) GT multiplications; a baby-step-giant-step
// search would be needed if maxVotes grew large, but it is bounded by the
// number of voters in practice.
func DecryptTally(result Result, maxVotes int) (int, error) {
	acc := pairing.GTIdentity() // Base^0
	for i := 0; i <= maxVotes; i++ {
		if acc.Equal(result.R) {
			return i, nil
		}
		acc = acc.Mul(result.Base)
	}
	return 0, fmt.Errorf("tally: no exponent in [0,%d] matches: %w", maxVotes, voteerr.ErrTallyFailed)
}
