package transcript_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cancelkeys/selftally/pairing"
	"github.com/cancelkeys/selftally/transcript"
)

func TestMain(m *testing.M) {
	if err := pairing.InitCrypto(); err != nil {
		panic(err)
	}
	m.Run()
}

func TestChallengeIsDeterministic(t *testing.T) {
	h, err := pairing.G2HashToCurve([]byte("transcript-test"))
	require.NoError(t, err)
	base, err := pairing.Pairing(pairing.Generator(), h)
	require.NoError(t, err)

	c1, err := transcript.Challenge(transcript.FromGT(base), transcript.FromStr("Election2025/01"))
	require.NoError(t, err)
	c2, err := transcript.Challenge(transcript.FromGT(base), transcript.FromStr("Election2025/01"))
	require.NoError(t, err)
	require.True(t, c1.Equal(c2))
}

func TestChallengeDistinguishesItemBoundaries(t *testing.T) {
	// Without length framing, ("ab","c") and ("a","bc") would absorb to the
	// same bytes; explicit length prefixes must keep them distinct.
	c1, err := transcript.Challenge(transcript.FromStr("ab"), transcript.FromStr("c"))
	require.NoError(t, err)
	c2, err := transcript.Challenge(transcript.FromStr("a"), transcript.FromStr("bc"))
	require.NoError(t, err)
	require.False(t, c1.Equal(c2))
}

func TestChallengeDistinguishesItemOrder(t *testing.T) {
	h, err := pairing.G2HashToCurve([]byte("order-test"))
	require.NoError(t, err)
	base, err := pairing.Pairing(pairing.Generator(), h)
	require.NoError(t, err)

	c1, err := transcript.Challenge(transcript.FromGT(base), transcript.FromStr("x"))
	require.NoError(t, err)
	c2, err := transcript.Challenge(transcript.FromStr("x"), transcript.FromGT(base))
	require.NoError(t, err)
	require.False(t, c1.Equal(c2))
}

func TestChallengeAbsorbsRawBytesVerbatim(t *testing.T) {
	c1, err := transcript.Challenge(transcript.FromBytes([]byte("hello")))
	require.NoError(t, err)
	c2, err := transcript.Challenge(transcript.FromStr("hello"))
	require.NoError(t, err)
	require.True(t, c1.Equal(c2))
}
