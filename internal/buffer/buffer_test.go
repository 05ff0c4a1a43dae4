package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendConsumeRoundTrip(t *testing.T) {
	b := New()
	parts := [][]byte{[]byte("hello "), []byte("world"), []byte("!")}
	var total int
	for _, p := range parts {
		require.NoError(t, b.Append(p, len(p)))
		total += len(p)
	}
	require.Equal(t, total, b.Len())
	b.Consume(total)
	assert.Equal(t, 0, b.Len())
	assert.False(t, b.HasContent())
}

func TestAppendConsumeAppendPreservesTail(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("abcdef"), 6))
	b.Consume(2)
	require.NoError(t, b.Append([]byte("XY"), 2))
	assert.Equal(t, "cdefXY", string(b.Bytes()))
}

func TestConsumeMoreThanLenIsNoop(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("ab"), 2))
	b.Consume(100)
	assert.Equal(t, "ab", string(b.Bytes()))
}

func TestFreeSpaceAndClear(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("abc"), 3))
	assert.Equal(t, 0, b.FreeSpace())
	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 3, b.Cap())
}

func TestDestroyResetsCapacity(t *testing.T) {
	b := New()
	require.NoError(t, b.Append([]byte("abc"), 3))
	b.Destroy()
	assert.Equal(t, 0, b.Cap())
	assert.Equal(t, 0, b.Len())
}
