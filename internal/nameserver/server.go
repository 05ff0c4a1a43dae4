package nameserver

import (
	"fmt"
	"log/slog"
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// recvBufSize is the UDP datagram scratch buffer size, matching BUF_SIZE
// in original_source/src/nameserver/nameserver.c.
const recvBufSize = 4096

// Server owns the nameserver's single UDP listening socket and runs its
// receive loop. original_source/src/nameserver/nameserver.c's dns_Start
// wraps one fd in select() before every recvfrom(); with exactly one fd
// registered, select only ever reports that same fd readable, so this
// implementation calls the blocking unix.Recvfrom directly instead of
// reproducing a single-element select set.
type Server struct {
	fd     int
	svc    *Service
	logger *slog.Logger
}

// Listen opens and binds the nameserver's UDP socket using the raw
// golang.org/x/sys/unix socket calls, the same primitives the teacher
// repository's SO_REUSEPORT setup (internal/server/udp_server.go) reaches
// for, in place of original_source's getaddrinfo/socket/bind.
func Listen(ip, port string) (int, error) {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		return -1, fmt.Errorf("nameserver: invalid port %q: %w", port, err)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_DGRAM, 0)
	if err != nil {
		return -1, fmt.Errorf("nameserver: socket: %w", err)
	}

	sa, err := sockaddrInet4(ip, portNum)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}

	if err := unix.Bind(fd, sa); err != nil {
		_ = unix.Close(fd)
		return -1, fmt.Errorf("nameserver: bind %s:%d: %w", ip, portNum, err)
	}

	return fd, nil
}

func sockaddrInet4(ip string, port int) (*unix.SockaddrInet4, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, fmt.Errorf("nameserver: invalid listen address %q", ip)
	}
	v4 := parsed.To4()
	if v4 == nil {
		return nil, fmt.Errorf("nameserver: only IPv4 listen addresses are supported, got %q", ip)
	}
	sa := &unix.SockaddrInet4{Port: port}
	copy(sa.Addr[:], v4)
	return sa, nil
}

// NewServer wraps an already-bound socket fd and the Service that answers
// queries received on it.
func NewServer(fd int, svc *Service, logger *slog.Logger) *Server {
	return &Server{fd: fd, svc: svc, logger: logger}
}

// Run blocks, servicing one datagram at a time: receive, hand off to
// Service.HandleQuery, send the reply. It never spawns a goroutine per
// packet, matching the single-threaded event model spec.md mandates for
// this system as a whole and dns_Start's literal single-fd loop in
// original_source/src/nameserver/nameserver.c.
func (s *Server) Run() error {
	buf := make([]byte, recvBufSize)
	for {
		n, from, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("nameserver: recvfrom: %w", err)
		}

		clientIP := peerIP(from)
		resp, err := s.svc.HandleQuery(buf[:n], clientIP)
		if err != nil {
			s.logger.Warn("failed to handle query", "client", clientIP, "error", err)
			continue
		}
		if resp == nil {
			continue
		}

		if err := unix.Sendto(s.fd, resp, 0, from); err != nil {
			s.logger.Warn("failed to send response", "client", clientIP, "error", err)
		}
	}
}

// Close closes the listening socket.
func (s *Server) Close() error {
	return unix.Close(s.fd)
}

func peerIP(sa unix.Sockaddr) string {
	switch addr := sa.(type) {
	case *unix.SockaddrInet4:
		ip := net.IP(addr.Addr[:])
		return ip.String()
	case *unix.SockaddrInet6:
		ip := net.IP(addr.Addr[:])
		return ip.String()
	default:
		return ""
	}
}
