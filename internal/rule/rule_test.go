package rule

import (
	"errors"
	"testing"

	"ddsearch/internal/term"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRuleFact(t *testing.T) {
	r, err := ParseRule("----\n(unary human socrates)\n")
	require.NoError(t, err)
	assert.True(t, r.IsFact())
	assert.Equal(t, 0, len(r.Premises))
	assert.Equal(t, "(unary human socrates)", r.Conclusion.String())
}

func TestParseRuleWithPremises(t *testing.T) {
	data := "(unary human `x)\n----\n(unary mortal `x)\n"
	r, err := ParseRule(data)
	require.NoError(t, err)
	assert.False(t, r.IsFact())
	require.Len(t, r.Premises, 1)
	assert.Equal(t, "(unary human `x)", r.Premises[0].String())
	assert.Equal(t, data, r.String())
}

func TestParseRuleMultiPremise(t *testing.T) {
	data := "(unary p `x)\n(unary q `x)\n----\n(unary r `x)\n"
	r, err := ParseRule(data)
	require.NoError(t, err)
	assert.Len(t, r.Premises, 2)
	assert.Equal(t, data, r.String())
}

func TestParseRuleErrors(t *testing.T) {
	cases := []string{
		"",
		"(unary a b)\n",                    // no separator
		"----\n",                           // missing conclusion
		"----\nconcl\nextra\n",             // extra line after conclusion
		"----\nconcl",                      // no trailing newline
		"bad(\n----\n(unary a b)\n",        // bad premise term
	}
	for _, c := range cases {
		_, err := ParseRule(c)
		assert.Error(t, err, "expected error for %q", c)
		assert.True(t, errors.Is(err, ErrParse), "error for %q should wrap ErrParse", c)
	}
}

func TestIsEquality(t *testing.T) {
	r, err := ParseRule("----\n(binary == a b)\n")
	require.NoError(t, err)
	assert.True(t, r.IsEquality())

	lhs, rhs, ok := r.EqualitySides()
	require.True(t, ok)
	assert.Equal(t, "a", lhs.String())
	assert.Equal(t, "b", rhs.String())
}

func TestIsEqualityFalseForLookalike(t *testing.T) {
	// An atom that merely contains "binary ==" as a substring must not be
	// mistaken for an equality rule: structure is checked, not the string.
	r, err := ParseRule("----\n(unary binary==a)\n")
	require.NoError(t, err)
	assert.False(t, r.IsEquality())

	r2, err := ParseRule("----\n(ternary binary == a)\n")
	require.NoError(t, err)
	assert.False(t, r2.IsEquality())
}

func TestIsEqualityRequiresFact(t *testing.T) {
	r, err := ParseRule("(unary p `x)\n----\n(binary == a b)\n")
	require.NoError(t, err)
	assert.False(t, r.IsEquality())
}

func TestIdea(t *testing.T) {
	r, err := ParseRule("(unary p `x)\n(unary q `x)\n----\n(unary r `x)\n")
	require.NoError(t, err)

	idea, ok := r.Idea()
	require.True(t, ok)
	assert.True(t, idea.IsFact())
	assert.Equal(t, "(unary p `x)", idea.Conclusion.String())
	assert.Equal(t, "----\n(unary p `x)\n", idea.String())
}

func TestIdeaOfFactHasNone(t *testing.T) {
	r, err := ParseRule("----\n(unary human socrates)\n")
	require.NoError(t, err)
	_, ok := r.Idea()
	assert.False(t, ok)
}

func TestNewFact(t *testing.T) {
	f := NewFact(term.MustParse("(unary p a)"))
	assert.True(t, f.IsFact())
	assert.Equal(t, "----\n(unary p a)\n", f.String())
}
