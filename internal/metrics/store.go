// Package metrics persists one row per forwarded video fragment so the
// admin API can serve a queryable history, supplementing the fixed-format
// activity log spec.md §6 already writes (internal/proxy/activitylog.go).
// It is grounded on the teacher's internal/database package: the same
// modernc.org/sqlite driver, the same golang-migrate/migrate/v4 +
// embedded-migrations pattern, re-pointed at a single narrow table instead
// of HydraDNS's full configuration schema.
package metrics

import (
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// FragmentMetric is one recorded fragment delivery, the same fields the
// proxy's activity log line carries (internal/proxy/activitylog.go),
// plus a server-assigned timestamp and ID for history queries.
type FragmentMetric struct {
	ID         int64     `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`
	DurationS  float64   `json:"duration_s"`
	InstKbps   int64     `json:"inst_kbps"`
	AvgKbps    int64     `json:"avg_kbps"`
	Bitrate    int       `json:"bitrate"`
	OriginIP   string    `json:"origin_ip"`
	ChunkName  string    `json:"chunk_name"`
}

// Store wraps a SQLite connection holding the fragment_metrics table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at path and runs
// migrations, mirroring database.Open in the teacher repository.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", path)

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("metrics: open database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(time.Hour)

	store := &Store{db: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("metrics: migration source: %w", err)
	}
	dbDriver, err := sqlite.WithInstance(s.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("metrics: migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite", dbDriver)
	if err != nil {
		return fmt.Errorf("metrics: migrator: %w", err)
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("metrics: run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordFragment inserts one fragment delivery row, called alongside (not
// instead of) the plain-text activity log every time
// internal/proxy.Service.recordFragment fires.
func (s *Store) RecordFragment(m FragmentMetric) error {
	_, err := s.db.Exec(
		`INSERT INTO fragment_metrics (recorded_at, duration_s, inst_kbps, avg_kbps, bitrate, origin_ip, chunk_name)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.RecordedAt.Unix(), m.DurationS, m.InstKbps, m.AvgKbps, m.Bitrate, m.OriginIP, m.ChunkName,
	)
	if err != nil {
		return fmt.Errorf("metrics: insert fragment: %w", err)
	}
	return nil
}

// History returns the most recent limit fragment rows, newest first.
func (s *Store) History(limit int) ([]FragmentMetric, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT id, recorded_at, duration_s, inst_kbps, avg_kbps, bitrate, origin_ip, chunk_name
		 FROM fragment_metrics ORDER BY recorded_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("metrics: query history: %w", err)
	}
	defer rows.Close()

	var out []FragmentMetric
	for rows.Next() {
		var m FragmentMetric
		var recordedAt int64
		if err := rows.Scan(&m.ID, &recordedAt, &m.DurationS, &m.InstKbps, &m.AvgKbps, &m.Bitrate, &m.OriginIP, &m.ChunkName); err != nil {
			return nil, fmt.Errorf("metrics: scan history row: %w", err)
		}
		m.RecordedAt = time.Unix(recordedAt, 0).UTC()
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("metrics: iterate history: %w", err)
	}
	return out, nil
}
