package preorder

import (
	"bytes"
	"crypto/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refPattern = regexp.MustCompile(`^[ABCDEGHJKLNRSTWXYZ][ABCDEGHJKLNRSTWXYZ0-9]{4}-[1-9][0-9]$`)

func TestGenerateRef_Format(t *testing.T) {
	suffixes := make(map[uint8]struct{})
	firstSymbols := make(map[byte]struct{})
	otherSymbols := make(map[byte]struct{})

	for i := 0; i < 100_000; i++ {
		ref, err := GenerateRef(rand.Reader)
		require.NoError(t, err)

		encoded := ref.String()
		require.Regexp(t, refPattern, encoded)
		require.True(t, ref.Suffix >= 10 && ref.Suffix <= 99)

		suffixes[ref.Suffix] = struct{}{}
		firstSymbols[ref.Prefix[0]] = struct{}{}
		for j := 1; j < len(ref.Prefix); j++ {
			otherSymbols[ref.Prefix[j]] = struct{}{}
		}
	}

	assert.Len(t, suffixes, 90)
	assert.Len(t, firstSymbols, refFirstSymbols)
	assert.Len(t, otherSymbols, refOtherSymbols)
}

func TestGenerateRef_NoCollisionsInSmallSample(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		ref, err := GenerateRef(rand.Reader)
		require.NoError(t, err)

		_, ok := seen[ref.Prefix]
		require.False(t, ok)
		seen[ref.Prefix] = struct{}{}
	}
}

func TestGenerateRef_Deterministic(t *testing.T) {
	ref, err := GenerateRef(bytes.NewReader([]byte{0, 0, 0, 0, 0}))
	require.NoError(t, err)
	assert.Equal(t, "AAAAA-10", ref.String())

	ref, err = GenerateRef(bytes.NewReader([]byte{1, 2, 3, 4, 5}))
	require.NoError(t, err)
	assert.Equal(t, "BCDEG-50", ref.String())

	// 252 and above are rejected to keep the reduction unbiased
	ref, err = GenerateRef(bytes.NewReader([]byte{255, 252, 17, 27, 27, 27, 27}))
	require.NoError(t, err)
	assert.Equal(t, "Z9999", ref.Prefix)
}

func TestGenerateRef_ReaderFailure(t *testing.T) {
	_, err := GenerateRef(bytes.NewReader([]byte{0, 0}))
	assert.Error(t, err)
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("KGTWB-42")
	require.NoError(t, err)
	assert.Equal(t, Ref{Prefix: "KGTWB", Suffix: 42}, ref)
	assert.Equal(t, "KGTWB-42", ref.String())

	ref, err = ParseRef("Z0000-10")
	require.NoError(t, err)
	assert.Equal(t, Ref{Prefix: "Z0000", Suffix: 10}, ref)

	for _, invalid := range []string{
		"",
		"KGTWB",
		"KGTWB42",
		"KGTWB-4",
		"KGTWB-420",
		"KGTWB_42",
		"KGTWB-09",
		"KGTWB-4A",
		"kgtwb-42",
		"0GTUB-42",
		"FGTUB-42",
		"KGTWM-42",
		"KGTWO-42",
		"KGTUB-42",
	} {
		_, err := ParseRef(invalid)
		assert.Equal(t, ErrInvalidRef, err, invalid)
	}
}

func TestGenerateAndParseRef(t *testing.T) {
	for i := 0; i < 1000; i++ {
		generated, err := GenerateRef(rand.Reader)
		require.NoError(t, err)

		parsed, err := ParseRef(generated.String())
		require.NoError(t, err)
		assert.Equal(t, generated, parsed)
	}
}
