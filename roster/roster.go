// Package roster holds the ordered voter registry and computes the
// per-voter cancelling key that makes individual ballots self-cancelling at
// tally time.
package roster

import (
	"fmt"
	"sync"

	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/pairing"
)

// Record is one registered voter: an id, secret key, and public key.
type Record struct {
	VoterID string
	SK      pairing.Fr
	PK      pairing.G1Point
}

// Roster is the ordered, append-only sequence of registered voters.
// Registration order is part of the public protocol state: the cancelling
// keys depend on it, so no ballot may be cast until registration closes.
type Roster struct {
	mu      sync.Mutex
	byID    map[string]int
	records []Record
}

// New returns an empty roster.
func New() *Roster {
	return &Roster{byID: make(map[string]int)}
}

// Register appends a new voter with a freshly sampled key pair and returns
// its public key. Fails with voteerr.ErrDuplicateVoter if voterID is
// already present.
func (r *Roster) Register(voterID string) (pairing.G1Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[voterID]; exists {
		return pairing.G1Point{}, fmt.Errorf("roster: register %q: %w", voterID, voteerr.ErrDuplicateVoter)
	}

	sk, err := pairing.FrRandom()
	if err != nil {
		return pairing.G1Point{}, fmt.Errorf("roster: register %q: %w", voterID, err)
	}
	pk := pairing.Generator().MulScalar(sk)

	r.byID[voterID] = len(r.records)
	r.records = append(r.records, Record{VoterID: voterID, SK: sk, PK: pk})
	return pk, nil
}

// Size returns the number of registered voters.
func (r *Roster) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// IndexOf returns the registration-order index of voterID, and whether it
// is present.
func (r *Roster) IndexOf(voterID string) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[voterID]
	return idx, ok
}

// SecretKey returns the secret key for voterID.
func (r *Roster) SecretKey(voterID string) (pairing.Fr, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[voterID]
	if !ok {
		return pairing.Fr{}, false
	}
	return r.records[idx].SK, true
}

// PublicKey returns the public key for voterID.
func (r *Roster) PublicKey(voterID string) (pairing.G1Point, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[voterID]
	if !ok {
		return pairing.G1Point{}, false
	}
	return r.records[idx].PK, true
}

// VoterIDs returns the voter ids in registration order.
func (r *Roster) VoterIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, len(r.records))
	for i, rec := range r.records {
		ids[i] = rec.VoterID
	}
	return ids
}

// CancellingKey returns Y_j for the voter at voterID's registration index j:
//
//	Y_j = sum_{k<j} pk_k - sum_{k>j} pk_k
//
// Over the full roster the keys cancel once each is weighted by its owner's
// secret key: sum_j sk_j*Y_j = identity in G1, because every product
// sk_j*sk_k*g with k != j appears once with a plus sign (in sk_j*Y_j when
// k < j) and once with a minus sign (in sk_k*Y_k). The unweighted sum_j Y_j
// is not the identity once the roster has two or more voters.
func (r *Roster) CancellingKey(voterID string) (pairing.G1Point, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.byID[voterID]
	if !ok {
		return pairing.G1Point{}, fmt.Errorf("roster: cancelling key for %q: %w", voterID, voteerr.ErrUnknownVoter)
	}

	y := pairing.G1Identity()
	for k, rec := range r.records {
		switch {
		case k < j:
			y = y.Add(rec.PK)
		case k > j:
			y = y.Sub(rec.PK)
		}
	}
	return y, nil
}
