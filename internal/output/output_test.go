package output

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

func TestRunToPrintsNewRows(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	_, err = st.InsertOrIgnore(ctx, "facts", "----\n(unary p a)\n")
	require.NoError(t, err)
	_, err = st.InsertOrIgnore(ctx, "ideas", "----\n(unary q a)\n")
	require.NoError(t, err)

	var out strings.Builder
	runCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	RunTo(runCtx, st, zap.NewNop(), &out, 0)

	assert.Contains(t, out.String(), "fact: (unary p a)")
	assert.Contains(t, out.String(), "idea: (unary q a)")
}

func TestRunToDoesNotRepeatRows(t *testing.T) {
	st, err := store.Open("")
	require.NoError(t, err)
	defer st.Close()

	ctx := context.Background()
	_, err = st.InsertOrIgnore(ctx, "facts", "----\n(unary p a)\n")
	require.NoError(t, err)

	var out strings.Builder
	runCtx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()
	RunTo(runCtx, st, zap.NewNop(), &out, 0)

	count := strings.Count(out.String(), "fact: (unary p a)")
	assert.Equal(t, 1, count)
}
