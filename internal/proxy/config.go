package proxy

import (
	"fmt"
	"strconv"
)

// ApachePort is the fixed origin port every upstream connection targets,
// per APACHE_PORT in original_source/src/proxy/config.c.
const ApachePort = "8080"

// Backlog is the listen() backlog depth, per BACKLOG in
// original_source/src/proxy/config.c.
const Backlog = 20

// Config holds the proxy's command-line configuration:
//
//	proxy <log> <alpha> <listen-port> <fake-ip> <dns-ip> <dns-port> [<www-ip>]
//
// matching parseConfig in original_source/src/proxy/config.c. WWWIP is the
// empty string when not supplied, meaning the proxy resolves the origin via
// DNS (spec.md §4.6) rather than bypassing it.
type Config struct {
	LogFilename string
	Alpha       float64
	ListenPort  string
	FakeIP      string
	DNSIP       string
	DNSPort     string
	WWWIP       string
}

// ParseArgs parses the proxy's positional CLI arguments (excluding argv[0]).
// alpha must lie in (0, 1], per spec.md §6.
func ParseArgs(args []string) (Config, error) {
	if len(args) < 6 {
		return Config{}, fmt.Errorf("%w: not enough arguments (got %d, want at least 6)", ErrConfig, len(args))
	}

	alpha, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Config{}, fmt.Errorf("%w: parse alpha %q: %v", ErrConfig, args[1], err)
	}
	if alpha <= 0 || alpha > 1 {
		return Config{}, fmt.Errorf("%w: alpha %v out of range (0, 1]", ErrConfig, alpha)
	}

	if _, err := strconv.Atoi(args[2]); err != nil {
		return Config{}, fmt.Errorf("%w: parse listen port %q: %v", ErrConfig, args[2], err)
	}

	cfg := Config{
		LogFilename: args[0],
		Alpha:       alpha,
		ListenPort:  args[2],
		FakeIP:      args[3],
		DNSIP:       args[4],
		DNSPort:     args[5],
	}
	if len(args) > 6 {
		cfg.WWWIP = args[6]
	}
	return cfg, nil
}
