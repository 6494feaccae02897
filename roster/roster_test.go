package roster_test

import (
	"fmt"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/stretchr/testify/require"

	"github.com/cancelkeys/selftally/pairing"
	"github.com/cancelkeys/selftally/roster"
)

func TestMain(m *testing.M) {
	if err := pairing.InitCrypto(); err != nil {
		panic(err)
	}
	m.Run()
}

// TestCancellationInvariant: for rosters of several sizes, register voters
// with random keys and assert sum_j Y_j = identity in G1.
func TestCancellationInvariant(t *testing.T) {
	for _, n := range []int{1, 2, 5, 10, 50} {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			r := roster.New()
			for i := 0; i < n; i++ {
				_, err := r.Register(fmt.Sprintf("voter-%d", i))
				require.NoError(t, err)
			}

			sum := pairing.G1Identity()
			for i := 0; i < n; i++ {
				y, err := r.CancellingKey(fmt.Sprintf("voter-%d", i))
				require.NoError(t, err)
				sum = sum.Add(y)
			}
			require.True(t, sum.Equal(pairing.G1Identity()))
			qt.Assert(t, sum.Equal(pairing.G1Identity()), qt.IsTrue)
		})
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := roster.New()
	_, err := r.Register("tom")
	require.NoError(t, err)

	_, err = r.Register("tom")
	require.Error(t, err)
}

func TestRegistrationOrderAndIndex(t *testing.T) {
	r := roster.New()
	for _, id := range []string{"Tom", "John", "Sarah"} {
		_, err := r.Register(id)
		require.NoError(t, err)
	}

	require.Equal(t, []string{"Tom", "John", "Sarah"}, r.VoterIDs())

	idx, ok := r.IndexOf("John")
	require.True(t, ok)
	require.Equal(t, 1, idx)

	_, ok = r.IndexOf("nobody")
	require.False(t, ok)
}

func TestCancellingKeyUnknownVoter(t *testing.T) {
	r := roster.New()
	_, err := r.Register("Tom")
	require.NoError(t, err)

	_, err = r.CancellingKey("nobody")
	require.Error(t, err)
}
