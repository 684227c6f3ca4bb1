package otp

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_AlwaysSixDigitsInRange(t *testing.T) {
	for i := 0; i < 10000; i++ {
		code, err := Generate()
		require.NoError(t, err)
		require.Len(t, code, 6)
		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, Min)
		require.LessOrEqual(t, n, Max)
	}
}

func TestGenerate_LeadingDigitRoughlyUniform(t *testing.T) {
	const samples = 90000
	counts := make(map[byte]int)
	for i := 0; i < samples; i++ {
		code, err := Generate()
		require.NoError(t, err)
		counts[code[0]]++
	}
	// Leading digits 1..9 each cover 100000 values of the 900000 range.
	require.Len(t, counts, 9)
	expected := samples / 9
	for d, c := range counts {
		assert.InDeltaf(t, expected, c, float64(expected)*0.1, "leading digit %c", d)
	}
}

func TestMatches(t *testing.T) {
	cases := []struct {
		name      string
		stored    string
		submitted string
		want      bool
	}{
		{"equal", "482913", "482913", true},
		{"different", "482913", "482914", false},
		{"stored with whitespace", " 482913\n", "482913", true},
		{"submitted with leading zero", "482913", "0482913", false},
		{"stored garbage", "abc", "abc", false},
		{"empty submitted", "482913", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Matches(tc.stored, tc.submitted))
		})
	}
}
