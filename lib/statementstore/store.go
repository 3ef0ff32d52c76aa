// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statementstore

import (
	"context"
	"fmt"
	"log/slog"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/sqlfrag/lib/codec"
	"github.com/bureau-foundation/sqlfrag/lib/digest"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
)

// Config holds the parameters for opening a Store.
type Config struct {
	// Path is the database file. Its directory must exist; the file
	// is created if missing.
	Path string

	// Logger receives open, close and save summaries. Nil discards.
	Logger *slog.Logger
}

// Record is one stored statement.
type Record struct {
	ID         string        `json:"id"`
	Kind       string        `json:"kind"`
	DatabaseID string        `json:"database_id,omitempty"`
	Source     string        `json:"source"`
	Digest     digest.Digest `json:"digest"`
	Body       string        `json:"body"`
	Text       string        `json:"text"`

	// Tree is the CBOR-encoded statement element (see
	// codec.EncodeTree).
	Tree []byte `json:"-"`
}

// SaveOptions modify [Store.Save].
type SaveOptions struct {
	// Prune deletes rows whose id is not among the saved statements.
	Prune bool
}

// SaveResult counts what [Store.Save] changed.
type SaveResult struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
}

// Store is a SQLite table of expanded statements. It is safe for
// concurrent use.
type Store struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	path   string
}

// Open opens or creates the store at cfg.Path.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("statement store: Path is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	pool, err := openPool(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("statement store: %w", err)
	}
	store := &Store{pool: pool, logger: logger, path: cfg.Path}

	conn, err := pool.Take(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("statement store: %w", err)
	}
	err = sqlitex.ExecuteScript(conn, schema, nil)
	pool.Put(conn)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("statement store: creating schema: %w", err)
	}

	logger.Debug("statement store opened", "path", cfg.Path)
	return store, nil
}

// Close closes the store. It blocks until borrowed connections are
// returned.
func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		return fmt.Errorf("statement store: closing %s: %w", s.path, err)
	}
	s.logger.Debug("statement store closed", "path", s.path)
	return nil
}

// Save upserts statements in one IMMEDIATE transaction.
func (s *Store) Save(ctx context.Context, statements []*mapper.Statement, options SaveOptions) (result SaveResult, err error) {
	records := make([]Record, 0, len(statements))
	for _, statement := range statements {
		tree, err := codec.EncodeTree(statement.Node)
		if err != nil {
			return result, fmt.Errorf("statement store: encoding %s: %w", statement.ID, err)
		}
		records = append(records, Record{
			ID:         statement.ID,
			Kind:       string(statement.Kind),
			DatabaseID: statement.DatabaseID,
			Source:     statement.Source,
			Digest:     statement.Digest(),
			Body:       statement.Body(),
			Text:       statement.Text(),
			Tree:       tree,
		})
	}

	conn, err := s.pool.Take(ctx)
	if err != nil {
		return result, fmt.Errorf("statement store: save: %w", err)
	}
	defer s.pool.Put(conn)

	endTransaction, err := sqlitex.ImmediateTransaction(conn)
	if err != nil {
		return result, fmt.Errorf("statement store: begin transaction: %w", err)
	}
	defer endTransaction(&err)

	if options.Prune {
		if err = sqlitex.ExecuteTransient(conn, "CREATE TEMP TABLE IF NOT EXISTS saved_ids (id TEXT PRIMARY KEY)", nil); err != nil {
			return result, fmt.Errorf("statement store: %w", err)
		}
		if err = sqlitex.ExecuteTransient(conn, "DELETE FROM saved_ids", nil); err != nil {
			return result, fmt.Errorf("statement store: %w", err)
		}
	}

	for i := range records {
		record := &records[i]
		var changed, existed bool
		changed, existed, err = upsert(conn, record)
		if err != nil {
			return result, fmt.Errorf("statement store: saving %s: %w", record.ID, err)
		}
		switch {
		case !existed:
			result.Inserted++
		case changed:
			result.Updated++
		default:
			result.Unchanged++
		}
		if options.Prune {
			err = sqlitex.Execute(conn, "INSERT OR IGNORE INTO saved_ids (id) VALUES (?)", &sqlitex.ExecOptions{
				Args: []any{record.ID},
			})
			if err != nil {
				return result, fmt.Errorf("statement store: %w", err)
			}
		}
	}

	if options.Prune {
		err = sqlitex.Execute(conn, "DELETE FROM statements WHERE id NOT IN (SELECT id FROM saved_ids)", nil)
		if err != nil {
			return result, fmt.Errorf("statement store: pruning: %w", err)
		}
		result.Deleted = conn.Changes()
	}

	s.logger.Info("statements saved",
		"path", s.path,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"deleted", result.Deleted,
	)
	return result, nil
}

// upsert writes record unless a row with the same digest exists.
func upsert(conn *sqlite.Conn, record *Record) (changed, existed bool, err error) {
	var stored string
	err = sqlitex.Execute(conn, "SELECT digest FROM statements WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{record.ID},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			existed = true
			stored = stmt.ColumnText(0)
			return nil
		},
	})
	if err != nil {
		return false, false, err
	}
	if existed && stored == record.Digest.String() {
		return false, true, nil
	}

	err = sqlitex.Execute(conn, `
		INSERT INTO statements (id, kind, database_id, source, digest, body, text, tree)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			kind = excluded.kind,
			database_id = excluded.database_id,
			source = excluded.source,
			digest = excluded.digest,
			body = excluded.body,
			text = excluded.text,
			tree = excluded.tree`,
		&sqlitex.ExecOptions{
			Args: []any{
				record.ID, record.Kind, record.DatabaseID, record.Source,
				record.Digest.String(), record.Body, record.Text, record.Tree,
			},
		})
	if err != nil {
		return false, existed, err
	}
	return true, existed, nil
}

const selectColumns = "SELECT id, kind, database_id, source, digest, body, text, tree FROM statements"

// List returns every stored statement ordered by id.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, fmt.Errorf("statement store: list: %w", err)
	}
	defer s.pool.Put(conn)

	var records []Record
	err = sqlitex.Execute(conn, selectColumns+" ORDER BY id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			record, err := scanRecord(stmt)
			if err != nil {
				return err
			}
			records = append(records, record)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("statement store: list: %w", err)
	}
	return records, nil
}

// Get returns the statement stored under id.
func (s *Store) Get(ctx context.Context, id string) (Record, bool, error) {
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return Record{}, false, fmt.Errorf("statement store: get: %w", err)
	}
	defer s.pool.Put(conn)

	var record Record
	found := false
	err = sqlitex.Execute(conn, selectColumns+" WHERE id = ?", &sqlitex.ExecOptions{
		Args: []any{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			var err error
			record, err = scanRecord(stmt)
			found = err == nil
			return err
		},
	})
	if err != nil {
		return Record{}, false, fmt.Errorf("statement store: get %s: %w", id, err)
	}
	return record, found, nil
}

func scanRecord(stmt *sqlite.Stmt) (Record, error) {
	parsed, err := digest.Parse(stmt.ColumnText(4))
	if err != nil {
		return Record{}, fmt.Errorf("row %s: %w", stmt.ColumnText(0), err)
	}
	tree := make([]byte, stmt.ColumnLen(7))
	stmt.ColumnBytes(7, tree)
	return Record{
		ID:         stmt.ColumnText(0),
		Kind:       stmt.ColumnText(1),
		DatabaseID: stmt.ColumnText(2),
		Source:     stmt.ColumnText(3),
		Digest:     parsed,
		Body:       stmt.ColumnText(5),
		Text:       stmt.ColumnText(6),
		Tree:       tree,
	}, nil
}
