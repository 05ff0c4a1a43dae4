// Package nameserver implements the video.cs.cmu.edu nameserver: it
// ingests link-state advertisements describing the network, and answers
// DNS queries for the fixed domain by picking a server IP either by round
// robin or by shortest path to the querying client. It is grounded on
// original_source/src/nameserver/{nameserver,nameserver-core,graph}.c,
// with internal/topology standing in for graph.c/nameserver-core.c's LSA
// and Dijkstra routines and dnswire standing in for mydnsparse.c.
package nameserver

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kestrelnet/vcdn/internal/topology"
)

// LoadBalanceMode selects how the nameserver picks a server IP to answer
// with, per enum load_balance_t in original_source/src/nameserver/nameserver.h.
type LoadBalanceMode int

const (
	// ModeGeo answers with the server closest (by hop count) to the
	// querying client, the default mode.
	ModeGeo LoadBalanceMode = iota
	// ModeRoundRobin answers by cycling through the server list in order.
	ModeRoundRobin
)

// MaxServers is the maximum number of servers the servers file may list,
// per MAX_SERVERS in original_source/src/nameserver/nameserver.h.
const MaxServers = 100

// Config holds the nameserver's command-line configuration:
//
//	nameserver [-r] <log> <ip> <port> <servers-file> <lsa-file>
//
// matching dns_ParseConfig in original_source/src/nameserver/nameserver-core.c.
type Config struct {
	Mode        LoadBalanceMode
	LogFilename string
	ListenIP    string
	ListenPort  string
	ServersFile string
	LSAFile     string
}

// ParseArgs parses the nameserver's positional CLI arguments (excluding
// argv[0]), mirroring dns_ParseConfig's handling of the optional -r flag.
// Both modes take the same five positional arguments in the same order.
func ParseArgs(args []string) (Config, error) {
	mode := ModeGeo
	if len(args) > 0 && args[0] == "-r" {
		mode = ModeRoundRobin
		args = args[1:]
	}

	if mode == ModeRoundRobin && len(args) < 5 {
		return Config{}, fmt.Errorf("nameserver: not enough arguments for -r mode")
	}
	if mode == ModeGeo && len(args) < 5 {
		return Config{}, fmt.Errorf("nameserver: not enough arguments")
	}

	return Config{
		Mode:        mode,
		LogFilename: args[0],
		ListenIP:    args[1],
		ListenPort:  args[2],
		ServersFile: args[3],
		LSAFile:     args[4],
	}, nil
}

// LoadServers reads the newline-delimited server IP list, one IP per line,
// per dns_ParseServers in original_source/src/nameserver/nameserver-core.c.
// It rejects a file listing more than MaxServers entries.
func LoadServers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("nameserver: open servers file: %w", err)
	}
	defer f.Close()

	var servers []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if len(servers) >= MaxServers {
			return nil, fmt.Errorf("nameserver: servers file exceeds limit of %d", MaxServers)
		}
		servers = append(servers, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("nameserver: read servers file: %w", err)
	}
	return servers, nil
}

// LoadLSAs reads an LSA file line by line and ingests each into store,
// per dns_ConstructGraph in original_source/src/nameserver/nameserver-core.c.
func LoadLSAs(path string, store *topology.Store) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("nameserver: open LSA file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lsa, err := topology.ParseLSALine(line)
		if err != nil {
			return fmt.Errorf("nameserver: %w", err)
		}
		store.Ingest(lsa)
	}
	return scanner.Err()
}
