package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderContentLength(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"present", "GET / HTTP/1.0\r\nContent-Length: 42\r\n\r\n", 42},
		{"absent", "GET / HTTP/1.0\r\n\r\n", 0},
		{"malformed", "GET / HTTP/1.0\r\nContent-Length: abc\r\n\r\n", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, headerContentLength([]byte(tc.header)))
		})
	}
}

func TestMessageLengthIncompleteHeader(t *testing.T) {
	_, ok := messageLength([]byte("GET / HTTP/1.0\r\nContent-Leng"))
	assert.False(t, ok)
}

func TestMessageLengthNoBody(t *testing.T) {
	buf := []byte("GET / HTTP/1.0\r\n\r\n")
	n, ok := messageLength(buf)
	require.True(t, ok)
	assert.Equal(t, len(buf), n)
}

func TestMessageLengthWaitsForFullBody(t *testing.T) {
	header := "HTTP/1.0 200 OK\r\nContent-Length: 10\r\n\r\n"
	_, ok := messageLength([]byte(header + "12345"))
	assert.False(t, ok, "only 5 of 10 declared body bytes present")

	n, ok := messageLength([]byte(header + "1234567890"))
	require.True(t, ok)
	assert.Equal(t, len(header)+10, n)
}

func TestFrameOneExtractsExactlyOneMessage(t *testing.T) {
	sb := newStreamBuffer()
	first := "GET /a HTTP/1.0\r\n\r\n"
	second := "GET /b HTTP/1.0\r\n\r\n"
	require.NoError(t, sb.recv.Append([]byte(first+second), len(first+second)))

	msg, ok := frameOne(&sb)
	require.True(t, ok)
	assert.Equal(t, first, string(msg))
	assert.Equal(t, len(second), sb.recv.Len(), "second message stays buffered for the next call")

	msg2, ok := frameOne(&sb)
	require.True(t, ok)
	assert.Equal(t, second, string(msg2))
	assert.False(t, sb.recv.HasContent())
}

func TestFrameOneReturnsFalseOnPartialMessage(t *testing.T) {
	sb := newStreamBuffer()
	require.NoError(t, sb.recv.Append([]byte("GET /a HTTP/1.0\r\n"), 17))
	_, ok := frameOne(&sb)
	assert.False(t, ok)
}
