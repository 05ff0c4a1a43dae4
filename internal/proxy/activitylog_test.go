package proxy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityLogRecordFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	log, err := OpenActivityLog(path)
	require.NoError(t, err)

	require.NoError(t, log.Record(1690000000, 0.5, 800, 750, 900, "10.0.0.5", "900Seg1-Frag2"))
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "1690000000 0.500000 800 750 900 10.0.0.5 900Seg1-Frag2\n", string(data))
}

func TestOpenActivityLogTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity.log")
	require.NoError(t, os.WriteFile(path, []byte("stale content\n"), 0o644))

	log, err := OpenActivityLog(path)
	require.NoError(t, err)
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)
}
