package surface

import (
	"testing"

	"ddsearch/internal/rule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyFact(t *testing.T) {
	r, err := rule.ParseRule("----\n(unary human socrates)\n")
	require.NoError(t, err)
	assert.Equal(t, "(unary human socrates)", Pretty(r))
}

func TestPrettyRule(t *testing.T) {
	r, err := rule.ParseRule("(unary human `x)\n----\n(unary mortal `x)\n")
	require.NoError(t, err)
	assert.Equal(t, "(unary human `x) => (unary mortal `x)", Pretty(r))
}

func TestPrettyMultiPremise(t *testing.T) {
	r, err := rule.ParseRule("(unary p `x)\n(unary q `x)\n----\n(unary r `x)\n")
	require.NoError(t, err)
	assert.Equal(t, "(unary p `x) & (unary q `x) => (unary r `x)", Pretty(r))
}

func TestParsePrettyRoundTrip(t *testing.T) {
	cases := []string{
		"(unary human socrates)",
		"(unary human `x) => (unary mortal `x)",
		"(unary p `x) & (unary q `x) => (unary r `x)",
	}
	for _, c := range cases {
		r, err := ParsePretty(c)
		require.NoError(t, err, c)
		assert.Equal(t, c, Pretty(r))
	}
}

func TestParsePrettyError(t *testing.T) {
	_, err := ParsePretty("(unary")
	assert.Error(t, err)
}
