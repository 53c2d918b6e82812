package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		login TEXT UNIQUE NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	`CREATE INDEX IF NOT EXISTS idx_users_score ON users(score DESC);`,
}

// SQLiteStore keeps users and scores in a single sqlite file.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Warnf("couldn't enable WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		log.Warnf("couldn't set busy timeout: %v", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("create schema: %w", err)
		}
	}

	log.WithField("path", path).Info("database initialized")
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Lookup(ctx context.Context, login string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, login, email, password_hash, score FROM users WHERE login = ?`, login).
		Scan(&u.ID, &u.Login, &u.Email, &u.PasswordHash, &u.Score)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup %s: %w", login, err)
	}
	return u, nil
}

func (s *SQLiteStore) Register(ctx context.Context, u User) (User, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (login, email, password_hash, score) VALUES (?, ?, ?, ?)`,
		u.Login, u.Email, u.PasswordHash, u.Score)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return User{}, fmt.Errorf("%w: %s", ErrDuplicate, u.Login)
		}
		return User{}, fmt.Errorf("register %s: %w", u.Login, err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return User{}, fmt.Errorf("register %s: %w", u.Login, err)
	}
	return u, nil
}

func (s *SQLiteStore) PersistScores(ctx context.Context, users ...User) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, u := range users {
		res, err := tx.ExecContext(ctx, `UPDATE users SET score = ? WHERE login = ?`, u.Score, u.Login)
		if err != nil {
			return fmt.Errorf("persist score of %s: %w", u.Login, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, u.Login)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, login, email, score FROM users ORDER BY score DESC, login ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Login, &u.Email, &u.Score); err != nil {
			return nil, fmt.Errorf("leaderboard scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
