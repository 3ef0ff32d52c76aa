// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package statementstore persists expanded statements in a SQLite
// database so that other tools can query SQL by statement id without
// loading mapper XML.
//
// The database holds one table, statements, keyed by qualified id.
// [Store.Save] writes a whole build in one IMMEDIATE transaction:
// new ids are inserted, ids whose digest changed are updated, and ids
// whose digest is unchanged are left alone, so repeated exports of an
// unchanged tree do not rewrite the file. With [SaveOptions.Prune]
// rows for statements missing from the build are deleted in the same
// transaction.
//
// Connections come from a zombiezen sqlitex pool with WAL journaling,
// NORMAL synchronous and a busy timeout, so readers never block an
// export in progress.
package statementstore
