// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package bundle reads and writes statement bundles: a single file
// holding every expanded statement of a build, for tools that consume
// SQL without parsing mapper XML.
//
// A bundle file is a fixed header followed by a payload:
//
//	offset  size  field
//	0       8     magic "SQLFRAGB"
//	8       1     format version (1)
//	9       1     compression tag (0 none, 1 lz4, 2 zstd)
//	10      2     reserved, zero
//	12      8     uncompressed payload length, big-endian
//	20      32    digest of the uncompressed payload
//	52      ...   payload, compressed as tagged
//
// The payload is the CBOR encoding (Core Deterministic Encoding, see
// lib/codec) of a [Bundle], so identical builds produce identical
// files. When compression would not shrink the payload it is stored
// uncompressed and tagged none.
package bundle
