// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fragment stores named, reusable SQL fragments and resolves
// include references against them.
//
// [Registry] maps namespace-qualified ids to [Fragment] values. It is
// safe for concurrent use: registration takes a write lock, lookups a
// read lock, so any number of expansions can resolve fragments while
// mappers are still being registered. A registered fragment's node is
// never handed out directly.
//
// [Resolver] turns a raw refid into a private deep copy of the
// fragment it names: the refid is interpolated against the caller's
// scope, qualified with the referencing namespace, looked up, and
// cloned. A missing id is reported as a [*NotFoundError] (matching
// [ErrNotFound]) carrying both the requested and the qualified id, so
// callers can tell "not registered yet" apart from real failures and
// defer the work.
package fragment
