package tally_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cancelkeys/selftally/ballot"
	"github.com/cancelkeys/selftally/internal/voteerr"
	"github.com/cancelkeys/selftally/pairing"
	"github.com/cancelkeys/selftally/roster"
	"github.com/cancelkeys/selftally/tally"
)

func TestMain(m *testing.M) {
	if err := pairing.InitCrypto(); err != nil {
		panic(err)
	}
	m.Run()
}

// TestThreeVoterScenarios runs two three-voter elections end to end and
// checks the recovered sums.
func TestThreeVoterScenarios(t *testing.T) {
	cases := []struct {
		name       string
		electionID string
		votes      map[string]int
		want       int
	}{
		{"sum-2", "Election2025/01", map[string]int{"Tom": 0, "John": 1, "Sarah": 1}, 2},
		{"sum-1", "Election2025/02", map[string]int{"Tom": 0, "John": 1, "Sarah": 0}, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := roster.New()
			for _, id := range []string{"Tom", "John", "Sarah"} {
				_, err := r.Register(id)
				require.NoError(t, err)
			}
			e := ballot.NewEngine(r, ballot.ModeOrProof)

			envs := make([]ballot.Envelope, 0, 3)
			for _, voter := range []string{"Tom", "John", "Sarah"} {
				env, err := e.Cast(voter, tc.votes[voter], tc.electionID)
				require.NoError(t, err)
				envs = append(envs, env)
			}

			result, err := tally.EncryptTally(envs, tc.electionID)
			require.NoError(t, err)

			got, err := tally.DecryptTally(result, 3)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

// TestAllAbstain: no ballots cast, tally is 0 and R is the identity.
func TestAllAbstain(t *testing.T) {
	result, err := tally.EncryptTally(nil, "Election2025/03")
	require.NoError(t, err)
	require.True(t, result.R.Equal(pairing.GTIdentity()))

	got, err := tally.DecryptTally(result, 3)
	require.NoError(t, err)
	require.Equal(t, 0, got)
}

// TestProofTamperIsSkipped: one of three valid ballots (true tally 2) is
// mutated and must be skipped, leaving the remaining two.
func TestProofTamperIsSkipped(t *testing.T) {
	r := roster.New()
	for _, id := range []string{"Tom", "John", "Sarah"} {
		_, err := r.Register(id)
		require.NoError(t, err)
	}
	e := ballot.NewEngine(r, ballot.ModeOrProof)
	electionID := "Election2025/04"

	votes := map[string]int{"Tom": 0, "John": 1, "Sarah": 1}
	envs := make([]ballot.Envelope, 0, 3)
	for _, voter := range []string{"Tom", "John", "Sarah"} {
		env, err := e.Cast(voter, votes[voter], electionID)
		require.NoError(t, err)
		envs = append(envs, env)
	}

	// Mutate John's proof: s0 += 1 in Fr.
	tampered := *envs[1].Or
	tampered.S0 = tampered.S0.Add(pairing.FrFromUint64(1))
	envs[1].Or = &tampered

	result, err := tally.EncryptTally(envs, electionID)
	require.NoError(t, err)

	got, err := tally.DecryptTally(result, 3)
	require.NoError(t, err)
	require.Equal(t, 1, got) // Tom(0) + Sarah(1), John's ballot dropped
}

// TestWrongMaxVotesFails: true tally is 2 but maxVotes=1, so discrete-log
// recovery must exhaust the range and report failure.
func TestWrongMaxVotesFails(t *testing.T) {
	r := roster.New()
	for _, id := range []string{"Tom", "John", "Sarah"} {
		_, err := r.Register(id)
		require.NoError(t, err)
	}
	e := ballot.NewEngine(r, ballot.ModeOrProof)
	electionID := "Election2025/05"

	votes := map[string]int{"Tom": 0, "John": 1, "Sarah": 1}
	var envs []ballot.Envelope
	for _, voter := range []string{"Tom", "John", "Sarah"} {
		env, err := e.Cast(voter, votes[voter], electionID)
		require.NoError(t, err)
		envs = append(envs, env)
	}

	result, err := tally.EncryptTally(envs, electionID)
	require.NoError(t, err)

	_, err = tally.DecryptTally(result, 1)
	require.ErrorIs(t, err, voteerr.ErrTallyFailed)
}

// TestSkippingIsSafe: tally(ballots) == tally(valid subset) — invalid
// ballots never contaminate the aggregate.
func TestSkippingIsSafe(t *testing.T) {
	r := roster.New()
	for _, id := range []string{"A", "B", "C", "D"} {
		_, err := r.Register(id)
		require.NoError(t, err)
	}
	e := ballot.NewEngine(r, ballot.ModeOrProof)
	electionID := "Election2025/06"

	votes := map[string]int{"A": 1, "B": 0, "C": 1, "D": 1}
	var valid []ballot.Envelope
	for _, voter := range []string{"A", "B", "C", "D"} {
		env, err := e.Cast(voter, votes[voter], electionID)
		require.NoError(t, err)
		valid = append(valid, env)
	}

	withInvalid := append([]ballot.Envelope{}, valid...)
	bad := *valid[0].Or
	bad.C0 = bad.C0.Add(pairing.FrFromUint64(1))
	withInvalid = append(withInvalid, ballot.Envelope{ElectionID: electionID, Ballot: valid[0].Ballot, Or: &bad, VotePart: valid[0].VotePart})

	resultValid, err := tally.EncryptTally(valid, electionID)
	require.NoError(t, err)
	resultAll, err := tally.EncryptTally(withInvalid, electionID)
	require.NoError(t, err)

	require.True(t, resultValid.R.Equal(resultAll.R))
}

// TestTallyIdempotence: calling EncryptTally twice without new ballots
// yields equal (R, base) up to GT equality.
func TestTallyIdempotence(t *testing.T) {
	r := roster.New()
	_, err := r.Register("Tom")
	require.NoError(t, err)
	e := ballot.NewEngine(r, ballot.ModeOrProof)
	electionID := "Election2025/09"

	env, err := e.Cast("Tom", 1, electionID)
	require.NoError(t, err)
	envs := []ballot.Envelope{env}

	r1, err := tally.EncryptTally(envs, electionID)
	require.NoError(t, err)
	r2, err := tally.EncryptTally(envs, electionID)
	require.NoError(t, err)

	require.True(t, r1.R.Equal(r2.R))
	require.True(t, r1.Base.Equal(r2.Base))
}

// TestElectionFiltering verifies only envelopes matching electionID
// contribute to the aggregate.
func TestElectionFiltering(t *testing.T) {
	r := roster.New()
	for _, id := range []string{"Tom", "John"} {
		_, err := r.Register(id)
		require.NoError(t, err)
	}
	e := ballot.NewEngine(r, ballot.ModeOrProof)

	envA, err := e.Cast("Tom", 1, "ElectionA")
	require.NoError(t, err)
	envB, err := e.Cast("John", 1, "ElectionB")
	require.NoError(t, err)

	result, err := tally.EncryptTally([]ballot.Envelope{envA, envB}, "ElectionA")
	require.NoError(t, err)

	got, err := tally.DecryptTally(result, 2)
	require.NoError(t, err)
	require.Equal(t, 1, got)
}
