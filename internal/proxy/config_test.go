package proxy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgsValid(t *testing.T) {
	args := []string{"proxy.log", "0.2", "8000", "10.0.0.1", "10.0.0.2", "5300"}
	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, "proxy.log", cfg.LogFilename)
	assert.Equal(t, 0.2, cfg.Alpha)
	assert.Equal(t, "8000", cfg.ListenPort)
	assert.Equal(t, "", cfg.WWWIP)
}

func TestParseArgsWithWWWIP(t *testing.T) {
	args := []string{"proxy.log", "0.2", "8000", "10.0.0.1", "10.0.0.2", "5300", "172.16.0.9"}
	cfg, err := ParseArgs(args)
	require.NoError(t, err)
	assert.Equal(t, "172.16.0.9", cfg.WWWIP)
}

func TestParseArgsTooFew(t *testing.T) {
	_, err := ParseArgs([]string{"proxy.log", "0.2"})
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseArgsAlphaOutOfRange(t *testing.T) {
	args := []string{"proxy.log", "0", "8000", "10.0.0.1", "10.0.0.2", "5300"}
	_, err := ParseArgs(args)
	assert.ErrorIs(t, err, ErrConfig)

	args[1] = "1.5"
	_, err = ParseArgs(args)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseArgsInvalidListenPort(t *testing.T) {
	args := []string{"proxy.log", "0.2", "not-a-port", "10.0.0.1", "10.0.0.2", "5300"}
	_, err := ParseArgs(args)
	assert.ErrorIs(t, err, ErrConfig)
}
