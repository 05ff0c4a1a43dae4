package proxy

import (
	"fmt"
	"os"
	"time"
)

// ActivityLog appends one fixed-format line per forwarded fragment
// response:
//
//	<epoch_s> <duration_s> <inst_Kbps> <avg_Kbps> <bitrate> <origin_ip> <chunk_name>
//
// matching LOG_FMT ("%lu %f %d %d %d %s %s\n") in
// original_source/src/proxy/config.h. It is distinct from the ambient
// slog-based operational logging in internal/logging.
type ActivityLog struct {
	f *os.File
}

// OpenActivityLog truncates and opens path for activity logging, the same
// "w+" semantics logSetup uses in original_source/src/common/log.c.
func OpenActivityLog(path string) (*ActivityLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("proxy: open activity log: %w", err)
	}
	return &ActivityLog{f: f}, nil
}

// Record writes one activity line and flushes immediately, mirroring
// log_printf's fflush after every call in original_source/src/common/log.c.
func (a *ActivityLog) Record(epochSeconds uint64, durationSeconds float64, instKbps, avgKbps int64, bitrate int, originIP, chunkName string) error {
	if _, err := fmt.Fprintf(a.f, "%d %f %d %d %d %s %s\n", epochSeconds, durationSeconds, instKbps, avgKbps, bitrate, originIP, chunkName); err != nil {
		return fmt.Errorf("proxy: write activity log: %w", err)
	}
	return a.f.Sync()
}

// Close closes the underlying log file.
func (a *ActivityLog) Close() error {
	return a.f.Close()
}

// epochSeconds returns the current time as whole seconds since the Unix
// epoch, per microtime(NULL) / 1000000 in
// original_source/src/proxy/parse.c's log_activity call.
func epochSeconds() uint64 {
	return uint64(time.Now().Unix())
}

// nowMicros returns the current time in microseconds since the Unix epoch,
// the Go analogue of original_source/src/common/mytime.c's microtime.
func nowMicros() int64 {
	return time.Now().UnixMicro()
}
