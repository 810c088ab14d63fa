package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordMergeAndStats(t *testing.T) {
	d, err := NewDatabase(":memory:")
	require.NoError(t, err)

	require.NoError(t, d.RecordMerge(3, 5000, 4000))
	require.NoError(t, d.RecordMerge(2, 1000, 900))

	stats, err := d.Stats()
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.MergesCompleted)
	assert.Equal(t, int64(5), stats.FilesMerged)
	assert.Equal(t, int64(6000), stats.BytesIn)
	assert.Equal(t, int64(4900), stats.BytesOut)
	assert.Equal(t, int64(1100), stats.BytesSaved())
}

func TestStatsEmptySession(t *testing.T) {
	d, err := NewDatabase(":memory:")
	require.NoError(t, err)

	stats, err := d.Stats()
	require.NoError(t, err)

	assert.Zero(t, stats.MergesCompleted)
	assert.Zero(t, stats.BytesSaved())
}
