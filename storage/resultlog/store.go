// Package resultlog persists the result log every finished session submits.
package resultlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"snake-arena/models"
	"snake-arena/storage/resultlog/migrations"
	"snake-arena/storage/sqlitemigrate"
)

var (
	ErrDuplicateSession = errors.New("result already submitted for session")
	ErrNotFound         = errors.New("result not found")
)

// Store keeps result logs in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

// Open opens the database at path and applies the embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("storage path is required")
	}
	dsn := "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Submit stores one session's log. A session can only be submitted once.
func (s *Store) Submit(ctx context.Context, rl models.ResultLog) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(rl.SessionID) == "" {
		return errors.New("session id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin submit: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO results (session_id, log_type, submitted_at) VALUES (?, ?, ?)`,
		rl.SessionID, rl.Type, s.now().UTC().UnixMilli(),
	); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("submit %s: %w", rl.SessionID, ErrDuplicateSession)
		}
		return fmt.Errorf("insert result: %w", err)
	}

	for i, e := range rl.Data {
		p := e.Params
		if _, err := tx.ExecContext(ctx, `
INSERT INTO result_rows (
    session_id, position, user_id, rank, score, user_name, is_premium,
    length_count, length_rank, words, kill_count, kill_rank, have_jewel
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rl.SessionID, i, e.UserID, e.Rank, e.Score, p.UserName, p.IsPremium,
			p.LengthCount, p.LengthRank, p.Words, p.KillCount, p.KillRank, p.HaveJewel,
		); err != nil {
			return fmt.Errorf("insert result row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit submit: %w", err)
	}
	return nil
}

// Get loads the log of one session with rows in submitted order.
func (s *Store) Get(ctx context.Context, sessionID string) (models.ResultLog, error) {
	rl := models.ResultLog{SessionID: sessionID}
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT log_type FROM results WHERE session_id = ?`, sessionID,
	).Scan(&rl.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ResultLog{}, fmt.Errorf("get %s: %w", sessionID, ErrNotFound)
	}
	if err != nil {
		return models.ResultLog{}, fmt.Errorf("get result: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT user_id, rank, score, user_name, is_premium,
       length_count, length_rank, words, kill_count, kill_rank, have_jewel
FROM result_rows WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return models.ResultLog{}, fmt.Errorf("query result rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ResultEntry
		p := &e.Params
		if err := rows.Scan(&e.UserID, &e.Rank, &e.Score, &p.UserName, &p.IsPremium,
			&p.LengthCount, &p.LengthRank, &p.Words, &p.KillCount, &p.KillRank, &p.HaveJewel); err != nil {
			return models.ResultLog{}, fmt.Errorf("scan result row: %w", err)
		}
		p.UserID = e.UserID
		rl.Data = append(rl.Data, e)
	}
	if err := rows.Err(); err != nil {
		return models.ResultLog{}, fmt.Errorf("iterate result rows: %w", err)
	}
	return rl, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
