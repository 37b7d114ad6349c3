package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestBins(t *testing.T) *BinStore {
	t.Helper()
	s, err := OpenBins(context.Background(), filepath.Join(t.TempDir(), "bidders.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAssignBinsMonotonically(t *testing.T) {
	s := openTestBins(t)
	ctx := context.Background()

	first, err := s.Assign(ctx, "alice")
	require.NoError(t, err)
	second, err := s.Assign(ctx, "bob")
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 2, second)
}

func TestAssignIsIdempotentPerUsername(t *testing.T) {
	s := openTestBins(t)
	ctx := context.Background()

	first, err := s.Assign(ctx, "alice")
	require.NoError(t, err)

	// Same buyer in different casing keeps their bin.
	again, err := s.Assign(ctx, "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAssignRejectsEmptyUsername(t *testing.T) {
	s := openTestBins(t)

	_, err := s.Assign(context.Background(), "   ")
	assert.Error(t, err)
}

func TestBinMapNormalizesKeys(t *testing.T) {
	s := openTestBins(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "CoolBuyer99")
	require.NoError(t, err)

	binMap, err := s.BinMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, binMap["coolbuyer99"])
}

func TestClearBins(t *testing.T) {
	s := openTestBins(t)
	ctx := context.Background()

	_, err := s.Assign(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, s.Clear(ctx))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// Bin numbering restarts after a clear.
	bin, err := s.Assign(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, bin)
}
