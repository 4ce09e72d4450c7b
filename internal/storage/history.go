/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"lumina/internal/greeting"
	"lumina/internal/idgen"
	applog "lumina/internal/log"
	"lumina/internal/version"

	// PostgreSQL via database/sql
	_ "github.com/jackc/pgx/v5/stdlib"
	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	HistoryFileName = "history.sqlite"

	// schemaVersion tracks the history schema. Bump it with a migration step.
	schemaVersion = 1

	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// dialect hides the placeholder style of the two drivers.
type dialect struct {
	driver   string
	postgres bool
}

func (d dialect) bind(q string) string {
	if !d.postgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// History is the greeting history store. It implements greeting.Recorder.
type History struct {
	db      *sql.DB
	dialect dialect
	ids     idgen.Generator
	log     *slog.Logger
}

var _ greeting.Recorder = (*History)(nil)

// DefaultHistoryPath is the history file under the user config dir.
func DefaultHistoryPath() string {
	dir, err := os.UserConfigDir()
	if err != nil || dir == "" {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lumina", HistoryFileName)
}

func isPostgres(dsn string) bool {
	d := strings.ToLower(dsn)
	return strings.HasPrefix(d, "postgres://") || strings.HasPrefix(d, "postgresql://")
}

// OpenHistory opens (and creates) the history. An empty dsn means the
// default SQLite file.
func OpenHistory(ctx context.Context, dsn string) (*History, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "history_open")
	if strings.TrimSpace(dsn) == "" {
		dsn = DefaultHistoryPath()
	}
	var (
		db  *sql.DB
		err error
		d   dialect
	)
	if isPostgres(dsn) {
		d = dialect{driver: "pgx", postgres: true}
		db, err = sql.Open("pgx", dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
	} else {
		d = dialect{driver: "sqlite"}
		db, err = openSQLite(ctx, dsn)
		if err != nil {
			l.Error("sqlite open failed", applog.Err(err))
			return nil, err
		}
	}
	h := &History{db: db, dialect: d, ids: idgen.UUIDv7(), log: l}
	if err := h.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", applog.Err(err))
		return nil, err
	}
	l.Debug("history ready", slog.String("driver", d.driver))
	return h, nil
}

func openSQLite(ctx context.Context, path string) (*sql.DB, error) {
	path = strings.TrimPrefix(path, "file:")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	return db, nil
}

func (h *History) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS greetings (
			id         TEXT PRIMARY KEY,
			prompt     TEXT NOT NULL,
			text       TEXT NOT NULL,
			outcome    TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_greetings_created ON greetings(created_at)`,
	}
	for _, q := range ddl {
		if _, err := h.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	var cur string
	err := h.db.QueryRowContext(ctx, h.dialect.bind(`SELECT value FROM meta WHERE key=?`), "schema").Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := h.db.ExecContext(ctx, h.dialect.bind(`INSERT INTO meta (key, value) VALUES (?, ?), (?, ?)`),
			"schema", fmt.Sprint(schemaVersion), "app", version.String()); err != nil {
			return fmt.Errorf("seed meta: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	default:
		if _, err := h.db.ExecContext(ctx, h.dialect.bind(`UPDATE meta SET value=? WHERE key=?`), version.String(), "app"); err != nil {
			return fmt.Errorf("update meta: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the stored schema version.
func (h *History) SchemaVersion(ctx context.Context) (string, error) {
	var v string
	if err := h.db.QueryRowContext(ctx, h.dialect.bind(`SELECT value FROM meta WHERE key=?`), "schema").Scan(&v); err != nil {
		return "", fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Record stores one attempt.
func (h *History) Record(ctx context.Context, e greeting.Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := h.db.ExecContext(ctx,
		h.dialect.bind(`INSERT INTO greetings (id, prompt, text, outcome, created_at) VALUES (?, ?, ?, ?, ?)`),
		h.ids(), e.Prompt, e.Text, string(e.Outcome), e.CreatedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record greeting: %w", err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 means 20.
func (h *History) Recent(ctx context.Context, n int) ([]greeting.Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := h.db.QueryContext(ctx,
		h.dialect.bind(`SELECT prompt, text, outcome, created_at FROM greetings ORDER BY created_at DESC, id DESC LIMIT ?`), n)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var out []greeting.Entry
	for rows.Next() {
		var (
			e           greeting.Entry
			outcome, ts string
		)
		if err := rows.Scan(&e.Prompt, &e.Text, &outcome, &ts); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.Outcome = greeting.Outcome(outcome)
		if t, err := time.Parse(timeLayout, ts); err == nil {
			e.CreatedAt = t
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Close releases the database.
func (h *History) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}
