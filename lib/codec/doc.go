// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec is the CBOR encoding used for sqlfrag's binary
// outputs: statement bundles and the `--format cbor` stream of the
// expand command.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same statements therefore always produce identical bundle bytes,
// which keeps bundle digests stable across runs.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Expanded trees travel as [WireNode] values. [EncodeTree] flattens a
// dom subtree into CBOR; [DecodeTree] rebuilds it as a detached subtree
// owned by a caller-supplied document.
//
// Types that are only ever CBOR carry `cbor` struct tags. Types that
// are also printed as JSON by the CLI carry `json` tags, which
// fxamacker/cbor reads as a fallback. Never both on one field.
package codec
