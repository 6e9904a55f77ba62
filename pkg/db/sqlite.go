// Package db adapts the functions.Store interface onto sqlite via
// database/sql and the pure cgo mattn/go-sqlite3 driver.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DeBrosOfficial/wasmfaas/pkg/functions"
	"github.com/DeBrosOfficial/wasmfaas/pkg/wasmsig"
)

// SQLiteStore implements functions.Store against a sqlite database file.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if absent) the sqlite database at dbURL and applies
// the schema. dbURL is a sqlite DSN, e.g. "file:./faas.db?_foreign_keys=on".
func Open(dbURL string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbURL)
	if err != nil {
		return nil, fmt.Errorf("db: open: %w", err)
	}
	// sqlite serializes writers; a single connection avoids SQLITE_BUSY
	// under concurrent invoke-audit inserts.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("db: apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ functions.Store = (*SQLiteStore)(nil)

func (s *SQLiteStore) CreateFunction(ctx context.Context, rec *functions.Record) (int64, error) {
	sigJSON, err := json.Marshal(rec.Signature)
	if err != nil {
		return 0, fmt.Errorf("db: marshal signature: %w", err)
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO functions (created_at, updated_at, arity, name, uri, user_uri, signature)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		now, now, rec.Arity, rec.Name, rec.URI, rec.UserURI, string(sigJSON))
	if err != nil {
		return 0, fmt.Errorf("db: insert function: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetFunction(ctx context.Context, id int64) (*functions.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, arity, name, uri, user_uri, signature
		 FROM functions WHERE id = ?`, id)
	return scanFunction(row)
}

func (s *SQLiteStore) ListFunctions(ctx context.Context) ([]*functions.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, arity, name, uri, user_uri, signature
		 FROM functions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db: list functions: %w", err)
	}
	defer rows.Close()

	var out []*functions.Record
	for rows.Next() {
		rec, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFunction(row rowScanner) (*functions.Record, error) {
	var rec functions.Record
	var sigJSON string
	if err := row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt, &rec.Arity, &rec.Name, &rec.URI, &rec.UserURI, &sigJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, functions.ErrNotFound
		}
		return nil, fmt.Errorf("db: scan function: %w", err)
	}

	var sig wasmsig.FunctionSignature
	if err := json.Unmarshal([]byte(sigJSON), &sig); err != nil {
		return nil, fmt.Errorf("db: unmarshal signature: %w", err)
	}
	rec.Signature = &sig
	return &rec, nil
}

func (s *SQLiteStore) RecordInvoke(ctx context.Context, rec *functions.InvokeRequestRecord) (int64, error) {
	var payload any
	if rec.Payload != nil {
		payload = string(rec.Payload)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO invoke_requests (created_at, function_id, user_addr, payload) VALUES (?, ?, ?, ?)`,
		time.Now().UTC(), rec.FunctionID, rec.UserAddr, payload)
	if err != nil {
		return 0, fmt.Errorf("db: insert invoke request: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) SetEnv(ctx context.Context, functionID int64, env map[string]string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM function_env WHERE function_id = ?`, functionID); err != nil {
		return fmt.Errorf("db: clear env: %w", err)
	}
	for k, v := range env {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO function_env (function_id, key, value) VALUES (?, ?, ?)`, functionID, k, v); err != nil {
			return fmt.Errorf("db: insert env: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) GetEnv(ctx context.Context, functionID int64) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM function_env WHERE function_id = ?`, functionID)
	if err != nil {
		return nil, fmt.Errorf("db: get env: %w", err)
	}
	defer rows.Close()

	env := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("db: scan env: %w", err)
		}
		env[k] = v
	}
	return env, rows.Err()
}
