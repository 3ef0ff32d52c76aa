// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package digest computes content digests of expanded SQL statements.
//
// A [Digest] is a BLAKE3 keyed hash of a statement's rendered body.
// The fixed domain key separates statement digests from any other
// BLAKE3 hash of the same bytes. Digests are stored by the statement
// store, written into bundles, and printed by the CLI; all of those use
// the lowercase hex form produced by [Digest.String].
package digest

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// Size is the length of a digest in bytes.
const Size = 32

// Digest is a 32-byte BLAKE3 keyed hash.
type Digest [Size]byte

// statementKey is the ASCII name of the statement domain, zero-padded
// to the 32 bytes BLAKE3 keyed mode requires. Changing it changes
// every digest.
var statementKey = [32]byte{
	's', 'q', 'l', 'f', 'r', 'a', 'g', '.', 's', 't', 'a', 't', 'e', 'm', 'e', 'n',
	't', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Of returns the statement-domain digest of data.
func Of(data []byte) Digest {
	hasher, err := blake3.NewKeyed(statementKey[:])
	if err != nil {
		panic("digest: BLAKE3 keyed hash initialization failed: " + err.Error())
	}
	hasher.Write(data)
	var digest Digest
	copy(digest[:], hasher.Sum(nil))
	return digest
}

// OfString returns the statement-domain digest of text.
func OfString(text string) Digest {
	return Of([]byte(text))
}

// String returns the lowercase hex encoding.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 12 hex characters, for tables and logs.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:6])
}

// IsZero reports whether d is the zero digest.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// MarshalText implements encoding.TextMarshaler, so digests encode as
// hex strings in JSON, YAML and CBOR.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse parses a 64-character hex digest.
func Parse(text string) (Digest, error) {
	var digest Digest
	decoded, err := hex.DecodeString(text)
	if err != nil {
		return digest, fmt.Errorf("parsing digest: %w", err)
	}
	if len(decoded) != Size {
		return digest, fmt.Errorf("digest is %d bytes, want %d", len(decoded), Size)
	}
	copy(digest[:], decoded)
	return digest, nil
}
