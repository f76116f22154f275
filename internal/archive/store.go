// Package archive keeps imported chat exports in a SQLite database so
// corpora can be rebuilt without the original JSON files.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"convosim/internal/domain"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store implements domain.MessageSource over the archive database.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// ImportResult summarizes one Import call.
type ImportResult struct {
	ID       string
	Inserted int
	Skipped  int // duplicates of already archived messages
}

// ImportRecord is one row of the imports table.
type ImportRecord struct {
	ID         string
	Source     string
	Files      int
	Messages   int
	ImportedAt time.Time
}

// SenderStat is the per-sender message count of the archive.
type SenderStat struct {
	Name     string
	Messages int
	Text     int
}

func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create database directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	// Single connection for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := RunMigrations(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	return &Store{db: db, path: dbPath, logger: logger}, nil
}

func (s *Store) Path() string { return s.path }

// Import stores msgs as one import batch. Messages with a timestamp that are
// already archived are skipped.
func (s *Store) Import(ctx context.Context, source string, files int, msgs []domain.MessageRecord) (*ImportResult, error) {
	res := &ImportResult{ID: uuid.NewString()}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO imports (id, source, files, imported_at) VALUES (?, ?, ?, ?)`,
		res.ID, source, files, time.Now(),
	); err != nil {
		return nil, fmt.Errorf("record import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO messages (import_id, sender_name, content, timestamp_ms, type)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, m := range msgs {
		r, err := stmt.ExecContext(ctx, res.ID, m.SenderName, m.Content, m.TimestampMs, m.Type)
		if err != nil {
			return nil, fmt.Errorf("insert message: %w", err)
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.Inserted++
		} else {
			res.Skipped++
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE imports SET messages = ? WHERE id = ?`, res.Inserted, res.ID,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.logger.Info("archive import", "id", res.ID, "source", source,
		"inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}

// LoadMessages returns every archived message in insertion order.
func (s *Store) LoadMessages(ctx context.Context) ([]domain.MessageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sender_name, content, timestamp_ms, type FROM messages ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []domain.MessageRecord
	for rows.Next() {
		var m domain.MessageRecord
		var content sql.NullString
		if err := rows.Scan(&m.SenderName, &content, &m.TimestampMs, &m.Type); err != nil {
			return nil, err
		}
		if content.Valid {
			m.Content = &content.String
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// SenderStats counts archived messages per sender, busiest first.
func (s *Store) SenderStats(ctx context.Context) ([]SenderStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT sender_name, COUNT(*), COUNT(content)
		 FROM messages GROUP BY sender_name
		 ORDER BY COUNT(*) DESC, sender_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []SenderStat
	for rows.Next() {
		var st SenderStat
		if err := rows.Scan(&st.Name, &st.Messages, &st.Text); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

// Imports lists import batches, newest first.
func (s *Store) Imports(ctx context.Context, limit int) ([]ImportRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, files, messages, imported_at
		 FROM imports ORDER BY imported_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		if err := rows.Scan(&r.ID, &r.Source, &r.Files, &r.Messages, &r.ImportedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
