// Package voteerr collects the sentinel errors shared across the voting
// core so callers can match on them with errors.Is instead of string
// comparison.
package voteerr

import "errors"

var (
	// ErrCryptoInit is returned when the pairing library failed to
	// initialize (generator derivation, curve setup).
	ErrCryptoInit = errors.New("voteerr: pairing primitives failed to initialize")

	// ErrUnknownVoter is returned when an operation references a voter_id
	// absent from the roster.
	ErrUnknownVoter = errors.New("voteerr: unknown voter")

	// ErrDuplicateVoter is returned on re-registration of a voter_id.
	ErrDuplicateVoter = errors.New("voteerr: voter already registered")

	// ErrInvalidVote is returned when a vote is not in {0,1}.
	ErrInvalidVote = errors.New("voteerr: vote must be 0 or 1")

	// ErrAlreadyVoted is returned by the OR-proof cast path when
	// (electionId, voter_id) has already been logged.
	ErrAlreadyVoted = errors.New("voteerr: voter already cast a ballot for this election")

	// ErrProofConstructionError covers failures while building a proof,
	// e.g. CSPRNG failure during challenge-response sampling.
	ErrProofConstructionError = errors.New("voteerr: proof construction failed")

	// ErrTallyFailed is the sentinel returned when discrete-log recovery
	// exhausts max_votes without finding a match.
	ErrTallyFailed = errors.New("voteerr: tally discrete-log search exhausted max_votes")

	// ErrSerialization is returned on malformed hex or wrong-length bytes
	// during deserialization of a group/field element.
	ErrSerialization = errors.New("voteerr: malformed serialization")

	// ErrInvalidInput is returned by the transcript builder when an item
	// has no defined canonical serialization.
	ErrInvalidInput = errors.New("voteerr: invalid transcript input")
)
