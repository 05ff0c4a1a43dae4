package proxy

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kestrelnet/vcdn/internal/dnswire"
)

// dnsQueryTimeout bounds how long the proxy waits for the nameserver to
// answer its startup/per-connection query, per spec.md §4.6.
const dnsQueryTimeout = 5 * time.Second

const dnsRecvBufSize = 512

// resolveOriginIP returns the origin server's IPv4 address: the configured
// www-ip literal if one was supplied (bypassing DNS entirely, per spec.md
// Testable Property 15), otherwise the result of querying the proxy's
// configured nameserver, per createServerSock's two branches in
// original_source/src/proxy/proxy-core.c.
func (svc *Service) resolveOriginIP() (string, error) {
	if svc.cfg.WWWIP != "" {
		return svc.cfg.WWWIP, nil
	}
	return svc.queryNameserver()
}

// queryNameserver implements resolve in original_source/src/proxy/mydns.c:
// bind an ephemeral UDP socket to the configured fake client IP, send a
// Query for the fixed domain with message_id 0, wait up to
// dnsQueryTimeout for a reply, and use its IPv4 answer as the origin
// address.
func (svc *Service) queryNameserver() (string, error) {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return "", fmt.Errorf("proxy: dns socket: %w", err)
	}
	defer unix.Close(sock)

	localAddr, err := sockaddrInet4(svc.cfg.FakeIP, 0)
	if err != nil {
		return "", fmt.Errorf("proxy: %w", err)
	}
	if err := unix.Bind(sock, localAddr); err != nil {
		return "", fmt.Errorf("proxy: dns bind to fake-ip %s: %w", svc.cfg.FakeIP, err)
	}

	dnsPort, err := strconv.Atoi(svc.cfg.DNSPort)
	if err != nil {
		return "", fmt.Errorf("%w: invalid dns port %q", ErrConfig, svc.cfg.DNSPort)
	}
	dnsAddr, err := sockaddrInet4(svc.cfg.DNSIP, dnsPort)
	if err != nil {
		return "", fmt.Errorf("proxy: %w", err)
	}

	query := dnswire.NewQuery(0)
	wire, err := query.Marshal()
	if err != nil {
		return "", fmt.Errorf("proxy: marshal dns query: %w", err)
	}
	if err := unix.Sendto(sock, wire, 0, dnsAddr); err != nil {
		return "", fmt.Errorf("proxy: dns sendto: %w", err)
	}

	ready, err := waitReadable(sock, dnsQueryTimeout)
	if err != nil {
		return "", fmt.Errorf("proxy: %w", err)
	}
	if !ready {
		return "", fmt.Errorf("%w: dns query to %s:%d timed out", ErrTimeout, svc.cfg.DNSIP, dnsPort)
	}

	buf := make([]byte, dnsRecvBufSize)
	n, _, err := unix.Recvfrom(sock, buf, 0)
	if err != nil {
		return "", fmt.Errorf("proxy: dns recvfrom: %w", err)
	}

	resp, err := dnswire.Parse(buf[:n])
	if err != nil {
		return "", fmt.Errorf("proxy: parse dns response: %w", err)
	}
	if resp.Invalid {
		return "", fmt.Errorf("%w: nameserver returned an invalid response", ErrProtocol)
	}
	return resp.ResponseIP, nil
}

// waitReadable blocks until fd is readable or timeout elapses, retrying on
// EINTR, the Go analogue of resolve's single-fd select-with-timeout in
// original_source/src/proxy/mydns.c.
func waitReadable(fd int, timeout time.Duration) (bool, error) {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, nil
		}
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return false, fmt.Errorf("poll: %w", err)
		}
		return n > 0, nil
	}
}

func sockaddrInet4(ip string, port int) (*unix.SockaddrInet4, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("invalid IPv4 address %q", ip)
	}
	v4 := parsed.To4()
	if v4 == nil {
		return nil, fmt.Errorf("only IPv4 addresses are supported, got %q", ip)
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], v4)
	return sa, nil
}

// connectOrigin opens a TCP socket toward originIP:ApachePort, bound to the
// proxy's fake client IP on an ephemeral local port, per bindLocalPort +
// the connect loop in createServerSock (original_source/src/proxy/proxy-core.c).
// It returns the connected socket and the stringified peer address for
// logging (spec.md §4.6).
func (svc *Service) connectOrigin(originIP string) (int, string, error) {
	sock, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, "", fmt.Errorf("proxy: origin socket: %w", err)
	}

	localAddr, err := sockaddrInet4(svc.cfg.FakeIP, 0)
	if err != nil {
		_ = unix.Close(sock)
		return -1, "", fmt.Errorf("proxy: %w", err)
	}
	if err := unix.Bind(sock, localAddr); err != nil {
		_ = unix.Close(sock)
		return -1, "", fmt.Errorf("proxy: bind origin socket to fake-ip %s: %w", svc.cfg.FakeIP, err)
	}

	port, err := strconv.Atoi(ApachePort)
	if err != nil {
		_ = unix.Close(sock)
		return -1, "", fmt.Errorf("proxy: invalid apache port %q: %w", ApachePort, err)
	}
	remoteAddr, err := sockaddrInet4(originIP, port)
	if err != nil {
		_ = unix.Close(sock)
		return -1, "", fmt.Errorf("proxy: %w", err)
	}

	if err := unix.Connect(sock, remoteAddr); err != nil {
		_ = unix.Close(sock)
		return -1, "", fmt.Errorf("proxy: connect to origin %s:%s: %w", originIP, ApachePort, err)
	}

	return sock, net.JoinHostPort(originIP, ApachePort), nil
}
