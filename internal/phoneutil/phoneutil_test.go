package phoneutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeBrazilianFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+55 11 99999-0001", "+5511999990001"},
		{"(11) 99999-0001", "+5511999990001"},
		{"11999990001", "+5511999990001"},
		{"+5511999990001", "+5511999990001"},
	}
	for _, tc := range cases {
		got, err := Normalize(tc.in, "BR")
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "abc", "123"} {
		_, err := Normalize(in, "BR")
		assert.Error(t, err, "input %q", in)
	}
}

func TestNormalizeDefaultsRegion(t *testing.T) {
	got, err := Normalize("11 99999-0001", "")
	require.NoError(t, err)
	assert.Equal(t, "+5511999990001", got)
}

func TestSame(t *testing.T) {
	assert.True(t, Same("+55 11 99999-0001", "(11) 99999-0001", "BR"))
	assert.False(t, Same("+5511999990001", "+5511999990002", "BR"))

	// Digits-only fallback when neither side parses
	assert.True(t, Same("ext 123", "x123", "BR"))
	assert.False(t, Same("abc", "def", "BR"))
}
