package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/worldforge/pkg/state"
	"github.com/jwebster45206/worldforge/pkg/storage"
	"github.com/jwebster45206/worldforge/pkg/world"
)

// SQLiteStorage keeps sessions in a local SQLite file.
type SQLiteStorage struct {
	conn   *sqlx.DB
	logger *slog.Logger
	now    func() time.Time
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

type sessionRow struct {
	ID          string `db:"id"`
	EraID       string `db:"era_id"`
	Atmosphere  string `db:"atmosphere"`
	ChoiceCount int    `db:"choice_count"`
	UpdatedAt   int64  `db:"updated_at"`
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string, logger *slog.Logger) (*SQLiteStorage, error) {
	conn, err := sqlx.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStorage{conn: conn, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

const sqlitePragmas = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"

// sqliteDSN appends the connection pragmas to path, which may already
// carry query parameters.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path + "&" + sqlitePragmas
	}
	return path + "?" + sqlitePragmas
}

func (s *SQLiteStorage) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		era_id TEXT NOT NULL,
		atmosphere TEXT NOT NULL,
		choice_count INTEGER NOT NULL,
		snapshot TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated_at);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.conn.Close()
}

func (s *SQLiteStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, snap state.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO sessions (id, era_id, atmosphere, choice_count, snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			era_id = excluded.era_id,
			atmosphere = excluded.atmosphere,
			choice_count = excluded.choice_count,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		id.String(), snap.EraID(), string(snap.Atmosphere), len(snap.Choices), string(data), s.now().UnixMilli(),
	)
	if err != nil {
		s.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*state.Snapshot, error) {
	var data string
	err := s.conn.GetContext(ctx, &data, "SELECT snapshot FROM sessions WHERE id = ?", id.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Snapshot not found", "uuid", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap state.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if _, err := s.conn.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id.String()); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListSessions(ctx context.Context) ([]storage.SessionSummary, error) {
	var rows []sessionRow
	err := s.conn.SelectContext(ctx, &rows,
		"SELECT id, era_id, atmosphere, choice_count, updated_at FROM sessions ORDER BY updated_at DESC, id",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	out := make([]storage.SessionSummary, 0, len(rows))
	for _, r := range rows {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			s.logger.Warn("Skipping malformed session id", "id", r.ID)
			continue
		}
		out = append(out, storage.SessionSummary{
			ID:          id,
			EraID:       r.EraID,
			Atmosphere:  world.Atmosphere(r.Atmosphere),
			ChoiceCount: r.ChoiceCount,
			UpdatedAt:   time.UnixMilli(r.UpdatedAt),
		})
	}
	return out, nil
}
