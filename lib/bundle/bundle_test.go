// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bundle

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bureau-foundation/sqlfrag/lib/codec"
	"github.com/bureau-foundation/sqlfrag/lib/digest"
	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/mapper"
	"github.com/bureau-foundation/sqlfrag/lib/testutil"
)

// buildStatements builds a mapper with count statements that all
// include the same column list, which compresses well.
func buildStatements(t *testing.T, count int) []*mapper.Statement {
	t.Helper()
	var source strings.Builder
	source.WriteString(`<mapper namespace="app.Wide"><sql id="columns">`)
	for i := range 40 {
		fmt.Fprintf(&source, "column_%02d, ", i)
	}
	source.WriteString(`id</sql>`)
	for i := range count {
		fmt.Fprintf(&source, `<select id="s%d">SELECT <include refid="columns"/> FROM table_%d</select>`, i, i)
	}
	source.WriteString(`</mapper>`)

	parsed, err := mapper.FromDocument(testutil.MustParse(t, "wide.xml", source.String()))
	if err != nil {
		t.Fatalf("FromDocument: %v", err)
	}
	builder := mapper.NewBuilder(mapper.BuilderConfig{})
	if err := builder.AddMapper(parsed); err != nil {
		t.Fatalf("AddMapper: %v", err)
	}
	statements, err := builder.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return statements
}

func TestWriteRead_RoundTrip(t *testing.T) {
	t.Parallel()

	statements := buildStatements(t, 20)
	original := FromStatements("mysql", statements)

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			t.Parallel()

			var buffer bytes.Buffer
			written, err := Write(&buffer, original, compression)
			if err != nil {
				t.Fatalf("Write: %v", err)
			}
			if written.Compression != compression {
				t.Errorf("header compression = %v, want %v", written.Compression, compression)
			}
			if compression != CompressionNone && uint64(buffer.Len()) >= written.Size {
				t.Errorf("compressed file %d bytes is not smaller than payload %d", buffer.Len(), written.Size)
			}

			decoded, header, err := Read(&buffer)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			if header != written {
				t.Errorf("read header %+v, wrote %+v", header, written)
			}
			if decoded.DatabaseID != "mysql" || len(decoded.Statements) != len(statements) {
				t.Fatalf("decoded bundle has %d statements for %q", len(decoded.Statements), decoded.DatabaseID)
			}
			for i, entry := range decoded.Statements {
				want := statements[i]
				if entry.ID != want.ID || entry.Body != want.Body() || entry.Digest != want.Digest() {
					t.Errorf("entry %d = %s/%s, want %s", i, entry.ID, entry.Digest.Short(), want.ID)
				}
				if entry.Kind != "select" || entry.Source != "wide.xml" {
					t.Errorf("entry %d kind/source = %s/%s", i, entry.Kind, entry.Source)
				}
			}
		})
	}
}

func TestWrite_IsDeterministic(t *testing.T) {
	t.Parallel()

	original := FromStatements("", buildStatements(t, 3))
	var first, second bytes.Buffer
	if _, err := Write(&first, original, CompressionZstd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := Write(&second, original, CompressionZstd); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical bundles produced different bytes")
	}
}

// randomBytes returns size bytes from crypto/rand.
func randomBytes(t *testing.T, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatalf("rand.Read: %v", err)
	}
	return data
}

func TestCompress_RejectsIncompressibleData(t *testing.T) {
	t.Parallel()

	data := randomBytes(t, 4096)
	for _, compression := range []Compression{CompressionLZ4, CompressionZstd} {
		if _, err := compress(data, compression); !errors.Is(err, errIncompressible) {
			t.Errorf("compress(random, %v) error = %v, want errIncompressible", compression, err)
		}
	}
}

func TestWrite_FallsBackWhenIncompressible(t *testing.T) {
	t.Parallel()

	// Base64 keeps the body a valid text string while leaving lz4 no
	// repeated four-byte sequences to match.
	body := base64.StdEncoding.EncodeToString(randomBytes(t, 4096))
	original := &Bundle{Statements: []Entry{{ID: "a", Body: body, Digest: digest.OfString(body)}}}

	var buffer bytes.Buffer
	header, err := Write(&buffer, original, CompressionLZ4)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if header.Compression != CompressionNone {
		t.Errorf("random payload stored as %v, want none", header.Compression)
	}
	if got := uint64(buffer.Len()); got != headerSize+header.Size {
		t.Errorf("file is %d bytes, want header plus %d byte payload", got, header.Size)
	}

	decoded, readHeader, err := Read(&buffer)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if readHeader != header {
		t.Errorf("read header %+v, wrote %+v", readHeader, header)
	}
	entry := decoded.Statements[0]
	if entry.Body != body || entry.Digest != digest.OfString(body) {
		t.Errorf("decoded entry %s/%s does not match the original", entry.ID, entry.Digest.Short())
	}
}

func TestEntryTree_RebuildsStatement(t *testing.T) {
	t.Parallel()

	statements := buildStatements(t, 1)
	entry := FromStatements("", statements).Statements[0]

	node, err := codec.FromWire(entry.Tree, dom.NewDocument("rebuilt"))
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if node.InnerXML() != entry.Body {
		t.Errorf("rebuilt body = %q, want %q", node.InnerXML(), entry.Body)
	}
}

func TestRead_Rejects(t *testing.T) {
	t.Parallel()

	var valid bytes.Buffer
	if _, err := Write(&valid, FromStatements("", buildStatements(t, 2)), CompressionNone); err != nil {
		t.Fatalf("Write: %v", err)
	}

	corrupt := bytes.Clone(valid.Bytes())
	corrupt[len(corrupt)-3] ^= 0xFF

	wrongVersion := bytes.Clone(valid.Bytes())
	wrongVersion[8] = 99

	wrongSize := bytes.Clone(valid.Bytes())
	wrongSize[19]++

	tests := []struct {
		name      string
		data      []byte
		notBundle bool
	}{
		{"empty", nil, true},
		{"short", []byte("SQLFRAG"), true},
		{"bad magic", append([]byte("NOTABUND"), valid.Bytes()[8:]...), true},
		{"corrupt payload", corrupt, false},
		{"wrong version", wrongVersion, false},
		{"wrong size", wrongSize, false},
	}
	for _, test := range tests {
		_, _, err := Read(bytes.NewReader(test.data))
		if err == nil {
			t.Errorf("%s: Read succeeded", test.name)
			continue
		}
		if errors.Is(err, ErrNotBundle) != test.notBundle {
			t.Errorf("%s: error %v, want ErrNotBundle match %v", test.name, err, test.notBundle)
		}
	}
}

func TestWriteFileReadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "statements.sqlb")
	original := FromStatements("pg", buildStatements(t, 2))
	if _, err := WriteFile(path, original, CompressionZstd); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	decoded, header, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if header.Version != Version || decoded.DatabaseID != "pg" || len(decoded.Statements) != 2 {
		t.Errorf("ReadFile = %+v, %+v", decoded, header)
	}
	if _, _, err := ReadFile(path + ".missing"); err == nil {
		t.Error("ReadFile accepted a missing file")
	}
}

func TestParseCompression(t *testing.T) {
	t.Parallel()

	for _, compression := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		parsed, err := ParseCompression(compression.String())
		if err != nil || parsed != compression {
			t.Errorf("ParseCompression(%q) = %v, %v", compression.String(), parsed, err)
		}
	}
	if _, err := ParseCompression("gzip"); err == nil {
		t.Error("ParseCompression accepted gzip")
	}
}
