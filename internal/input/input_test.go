package input

import (
	"context"
	"strings"
	"testing"
	"time"

	"ddsearch/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunFromInsertsFactAndIdea(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)
	defer st.Close()

	in := strings.NewReader("(unary p `x) & (unary q `x) => (unary r `x)\n")
	var errBuf strings.Builder

	err = RunFrom(context.Background(), st, zap.NewNop(), in, &errBuf)
	require.NoError(t, err)

	rows, err := st.ReadNewFacts(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	ideaRows, err := st.ReadNewIdeas(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, ideaRows, 1)
	assert.Equal(t, "----\n(unary p `x)\n", ideaRows[0].Data)
}

func TestRunFromReportsParseErrors(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)
	defer st.Close()

	in := strings.NewReader("not a valid term(\n")
	var errBuf strings.Builder

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	RunFrom(ctx, st, zap.NewNop(), in, &errBuf)

	assert.Contains(t, errBuf.String(), "error:")
}
