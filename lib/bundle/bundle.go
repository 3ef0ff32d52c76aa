// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/sqlfrag/lib/codec"
	"github.com/bureau-foundation/sqlfrag/lib/digest"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
)

// Version is the bundle format version written by [Write].
const Version = 1

// MaxPayloadSize bounds the uncompressed payload accepted by [Read].
const MaxPayloadSize = 1 << 30

const headerSize = 52

var magic = [8]byte{'S', 'Q', 'L', 'F', 'R', 'A', 'G', 'B'}

// ErrNotBundle is returned when a file does not start with the bundle
// magic.
var ErrNotBundle = errors.New("not a statement bundle")

// Bundle is the payload of a bundle file.
type Bundle struct {
	DatabaseID string  `cbor:"database_id,omitempty"`
	Statements []Entry `cbor:"statements"`
}

// Entry is one expanded statement.
type Entry struct {
	ID         string         `cbor:"id"`
	Kind       string         `cbor:"kind"`
	DatabaseID string         `cbor:"database_id,omitempty"`
	Source     string         `cbor:"source"`
	Digest     digest.Digest  `cbor:"digest"`
	Body       string         `cbor:"body"`
	Tree       codec.WireNode `cbor:"tree"`
}

// Header describes a bundle file.
type Header struct {
	Version     uint8
	Compression Compression
	Size        uint64
	Digest      digest.Digest
}

// FromStatements builds a bundle for statements in order.
func FromStatements(databaseID string, statements []*mapper.Statement) *Bundle {
	bundle := &Bundle{DatabaseID: databaseID, Statements: make([]Entry, 0, len(statements))}
	for _, statement := range statements {
		bundle.Statements = append(bundle.Statements, Entry{
			ID:         statement.ID,
			Kind:       string(statement.Kind),
			DatabaseID: statement.DatabaseID,
			Source:     statement.Source,
			Digest:     statement.Digest(),
			Body:       statement.Body(),
			Tree:       codec.ToWire(statement.Node),
		})
	}
	return bundle
}

// Write encodes bundle to w. compression is a preference: payloads it
// would not shrink are stored uncompressed.
func Write(w io.Writer, bundle *Bundle, compression Compression) (Header, error) {
	payload, err := codec.Marshal(bundle)
	if err != nil {
		return Header{}, fmt.Errorf("encoding bundle: %w", err)
	}

	header := Header{
		Version:     Version,
		Compression: compression,
		Size:        uint64(len(payload)),
		Digest:      digest.Of(payload),
	}
	body, err := compress(payload, compression)
	if errors.Is(err, errIncompressible) {
		header.Compression = CompressionNone
		body = payload
	} else if err != nil {
		return Header{}, err
	}

	var raw [headerSize]byte
	copy(raw[0:8], magic[:])
	raw[8] = header.Version
	raw[9] = byte(header.Compression)
	binary.BigEndian.PutUint64(raw[12:20], header.Size)
	copy(raw[20:52], header.Digest[:])

	if _, err := w.Write(raw[:]); err != nil {
		return Header{}, fmt.Errorf("writing bundle header: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return Header{}, fmt.Errorf("writing bundle payload: %w", err)
	}
	return header, nil
}

// WriteFile writes bundle to path, replacing any existing file.
func WriteFile(path string, bundle *Bundle, compression Compression) (Header, error) {
	var buffer bytes.Buffer
	header, err := Write(&buffer, bundle, compression)
	if err != nil {
		return Header{}, err
	}
	if err := os.WriteFile(path, buffer.Bytes(), 0o644); err != nil {
		return Header{}, fmt.Errorf("writing bundle: %w", err)
	}
	return header, nil
}

// ReadPayload reads a bundle file, verifies its digest, and returns the
// header and the uncompressed CBOR payload.
func ReadPayload(r io.Reader) (Header, []byte, error) {
	var raw [headerSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, nil, fmt.Errorf("%w: file shorter than header", ErrNotBundle)
		}
		return Header{}, nil, fmt.Errorf("reading bundle header: %w", err)
	}
	if !bytes.Equal(raw[0:8], magic[:]) {
		return Header{}, nil, ErrNotBundle
	}

	header := Header{
		Version:     raw[8],
		Compression: Compression(raw[9]),
		Size:        binary.BigEndian.Uint64(raw[12:20]),
	}
	copy(header.Digest[:], raw[20:52])
	if header.Version != Version {
		return header, nil, fmt.Errorf("unsupported bundle version %d", header.Version)
	}
	if header.Size > MaxPayloadSize {
		return header, nil, fmt.Errorf("bundle payload of %d bytes exceeds limit", header.Size)
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return header, nil, fmt.Errorf("reading bundle payload: %w", err)
	}
	payload, err := decompress(body, header.Compression, int(header.Size))
	if err != nil {
		return header, nil, err
	}
	if actual := digest.Of(payload); actual != header.Digest {
		return header, nil, fmt.Errorf("bundle payload digest %s does not match header %s", actual.Short(), header.Digest.Short())
	}
	return header, payload, nil
}

// Read decodes a bundle written by [Write].
func Read(r io.Reader) (*Bundle, Header, error) {
	header, payload, err := ReadPayload(r)
	if err != nil {
		return nil, header, err
	}
	var bundle Bundle
	if err := codec.Unmarshal(payload, &bundle); err != nil {
		return nil, header, fmt.Errorf("decoding bundle: %w", err)
	}
	return &bundle, header, nil
}

// ReadFile reads the bundle at path.
func ReadFile(path string) (*Bundle, Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, Header{}, fmt.Errorf("opening bundle: %w", err)
	}
	defer file.Close()
	return Read(file)
}
