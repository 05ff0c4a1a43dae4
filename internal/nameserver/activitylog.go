package nameserver

import (
	"fmt"
	"os"
)

// ActivityLog appends one fixed-format line per answered query:
//
//	<epoch-seconds>.<frac> <client-ip> <query-name> <response-ip>
//
// matching FMT ("%f %s %s %s\n") in original_source/src/nameserver/nameserver.c.
// It is distinct from the ambient slog-based operational logging in
// internal/logging.
type ActivityLog struct {
	f *os.File
}

// OpenActivityLog truncates and opens path for activity logging, the same
// "w+" semantics logSetup uses in original_source/src/common/log.c.
func OpenActivityLog(path string) (*ActivityLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("nameserver: open activity log: %w", err)
	}
	return &ActivityLog{f: f}, nil
}

// Record writes one activity line and flushes immediately, mirroring
// log_printf's fflush after every call in
// original_source/src/common/log.c.
func (a *ActivityLog) Record(epochSeconds float64, clientIP, queryName, responseIP string) error {
	if _, err := fmt.Fprintf(a.f, "%f %s %s %s\n", epochSeconds, clientIP, queryName, responseIP); err != nil {
		return fmt.Errorf("nameserver: write activity log: %w", err)
	}
	return a.f.Sync()
}

// Close closes the underlying log file.
func (a *ActivityLog) Close() error {
	return a.f.Close()
}
