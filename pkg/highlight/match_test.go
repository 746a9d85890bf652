package highlight

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatches(t *testing.T) {
	tests := []struct {
		name          string
		text          string
		keyword       string
		caseSensitive bool
		expected      []Match
	}{
		{
			name:          "single match across the text",
			text:          "The core tensor is here",
			keyword:       "core tensor",
			caseSensitive: true,
			expected:      []Match{{Start: 4, End: 15}},
		},
		{
			name:          "no match",
			text:          "no match text",
			keyword:       "core tensor",
			caseSensitive: true,
			expected:      nil,
		},
		{
			name:          "two matches resume at previous end",
			text:          "core tensor core tensor",
			keyword:       "core tensor",
			caseSensitive: true,
			expected:      []Match{{Start: 0, End: 11}, {Start: 12, End: 23}},
		},
		{
			name:          "self overlapping needle is not overlapped",
			text:          "aaaa",
			keyword:       "aa",
			caseSensitive: true,
			expected:      []Match{{Start: 0, End: 2}, {Start: 2, End: 4}},
		},
		{
			name:          "odd run leaves a tail",
			text:          "aaa",
			keyword:       "aa",
			caseSensitive: true,
			expected:      []Match{{Start: 0, End: 2}},
		},
		{
			name:          "case sensitive misses different case",
			text:          "Core Tensor",
			keyword:       "core tensor",
			caseSensitive: true,
			expected:      nil,
		},
		{
			name:          "case insensitive folds both sides",
			text:          "The Core TENSOR",
			keyword:       "core Tensor",
			caseSensitive: false,
			expected:      []Match{{Start: 4, End: 15}},
		},
		{
			name:          "multibyte offsets are byte offsets",
			text:          "ÀBC core tensor",
			keyword:       "àbc",
			caseSensitive: false,
			expected:      []Match{{Start: 0, End: 4}},
		},
		{
			name:          "empty keyword",
			text:          "anything",
			keyword:       "",
			caseSensitive: true,
			expected:      nil,
		},
		{
			name:          "keyword longer than text",
			text:          "core",
			keyword:       "core tensor",
			caseSensitive: true,
			expected:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindMatches(tt.text, tt.keyword, tt.caseSensitive)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFindMatches_FoldKeepsOffsetsForLengthChangingRunes(t *testing.T) {
	// Given: the Kelvin sign, whose lower-case form is one byte shorter
	text := "K core tensor"

	// When: searching case-insensitively
	got := FindMatches(text, "CORE", false)

	// Then: the offset still points into the original text
	require.Len(t, got, 1)
	assert.Equal(t, "core", text[got[0].Start:got[0].End])
}

func TestFindMatches_InvalidUTF8FallsBackToASCIIFold(t *testing.T) {
	text := "\xff\xfeCORE"

	got := FindMatches(text, "core", false)

	require.Len(t, got, 1)
	assert.Equal(t, Match{Start: 2, End: 6}, got[0])
}

func TestFindMatches_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []byte("ab ")

	for iter := 0; iter < 500; iter++ {
		text := randomString(rng, alphabet, rng.Intn(40))
		keyword := randomString(rng, alphabet, 1+rng.Intn(3))

		matches := FindMatches(text, keyword, true)

		for i, m := range matches {
			// Every match is the keyword.
			require.Equal(t, keyword, text[m.Start:m.End], "text=%q keyword=%q", text, keyword)
			// Matches are strictly increasing and disjoint.
			if i > 0 {
				require.LessOrEqual(t, matches[i-1].End, m.Start)
			}
		}

		// No occurrence lies entirely outside the reported matches.
		for p := 0; p+len(keyword) <= len(text); p++ {
			if !strings.HasPrefix(text[p:], keyword) {
				continue
			}
			covered := false
			for _, m := range matches {
				if m.Overlaps(p, p+len(keyword)) {
					covered = true
					break
				}
			}
			require.True(t, covered, "occurrence at %d of %q in %q not covered", p, keyword, text)
		}
	}
}

func randomString(rng *rand.Rand, alphabet []byte, n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[rng.Intn(len(alphabet))]
	}
	return string(b)
}

func TestMatch_Overlaps(t *testing.T) {
	m := Match{Start: 4, End: 15}

	assert.True(t, m.Overlaps(4, 12))
	assert.True(t, m.Overlaps(12, 23))
	assert.True(t, m.Overlaps(0, 5))
	assert.False(t, m.Overlaps(0, 4))
	assert.False(t, m.Overlaps(15, 20))
	assert.Equal(t, 11, m.Len())
}
