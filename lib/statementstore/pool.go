// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package statementstore

import (
	"fmt"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

// poolSize is small: exports are a single writer and reads are
// short-lived CLI queries.
const poolSize = 2

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

const schema = `
CREATE TABLE IF NOT EXISTS statements (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	database_id TEXT NOT NULL DEFAULT '',
	source      TEXT NOT NULL,
	digest      TEXT NOT NULL,
	body        TEXT NOT NULL,
	text        TEXT NOT NULL,
	tree        BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS statements_by_source ON statements (source);
`

func openPool(path string) (*sqlitex.Pool, error) {
	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return pool, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}
