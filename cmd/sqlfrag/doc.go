// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Sqlfrag expands <include refid="..."/> directives in MyBatis-style
// mapper XML files.
//
// Usage:
//
//	sqlfrag expand [flags] PATH...        print expanded statements
//	sqlfrag fragments [flags] PATH...     list selected fragments
//	sqlfrag check [flags] PATH...         report every expansion problem
//	sqlfrag export --db FILE PATH...      write statements to SQLite
//	sqlfrag show --db FILE [ID]           read exported statements
//	sqlfrag inspect [--raw] BUNDLE        print a cbor bundle
//	sqlfrag version
//
// Configuration is read from the file named by --config or
// SQLFRAG_CONFIG. It supplies the database id, base variables,
// interpolation options and default mapper paths:
//
//	database_id: mysql
//	mappers: [mappers/]
//	variables:
//	  schema: app
//	databases:
//	  mysql:
//	    variables:
//	      limit_clause: LIMIT ${limit}
//
// --var name=value overrides any configured variable.
package main
