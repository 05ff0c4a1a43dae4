package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/sys/unix"
)

func TestFdSetRoundTrip(t *testing.T) {
	var set unix.FdSet
	fdZero(&set)

	assert.False(t, fdIsSet(&set, 3))
	fdSet(&set, 3)
	assert.True(t, fdIsSet(&set, 3))
	assert.False(t, fdIsSet(&set, 4))
}

func TestFdSetHandlesFdsAcrossWords(t *testing.T) {
	var set unix.FdSet
	fdZero(&set)

	fdSet(&set, 0)
	fdSet(&set, 70)
	fdSet(&set, 200)

	assert.True(t, fdIsSet(&set, 0))
	assert.True(t, fdIsSet(&set, 70))
	assert.True(t, fdIsSet(&set, 200))
	assert.False(t, fdIsSet(&set, 71))
}
