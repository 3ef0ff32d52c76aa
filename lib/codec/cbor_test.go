// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bureau-foundation/sqlfrag/lib/digest"
	"github.com/bureau-foundation/sqlfrag/lib/dom"
	"github.com/bureau-foundation/sqlfrag/lib/testutil"
)

type sampleRecord struct {
	ID     string        `cbor:"id"`
	Source string        `cbor:"source,omitempty"`
	Digest digest.Digest `cbor:"digest"`
}

func TestMarshalUnmarshalRoundtrip(t *testing.T) {
	original := sampleRecord{ID: "app.User.find", Source: "user.xml", Digest: digest.OfString("x")}

	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded sampleRecord
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded != original {
		t.Errorf("roundtrip mismatch: got %+v, want %+v", decoded, original)
	}
}

func TestMarshal_DigestIsTextString(t *testing.T) {
	data, err := Marshal(sampleRecord{ID: "a", Digest: digest.OfString("x")})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	notation, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(notation, `"`+digest.OfString("x").String()+`"`) {
		t.Errorf("digest not encoded as hex text: %s", notation)
	}
}

func TestMarshalDeterministic(t *testing.T) {
	value := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("first Marshal: %v", err)
	}
	second, err := Marshal(value)
	if err != nil {
		t.Fatalf("second Marshal: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Errorf("deterministic encoding violated: %x != %x", first, second)
	}
}

func TestEncoderDecoderStreamRoundtrip(t *testing.T) {
	records := []sampleRecord{{ID: "a"}, {ID: "b", Source: "b.xml"}}

	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	for _, record := range records {
		if err := encoder.Encode(record); err != nil {
			t.Fatalf("Encode: %v", err)
		}
	}
	decoder := NewDecoder(&buffer)
	for i, want := range records {
		var got sampleRecord
		if err := decoder.Decode(&got); err != nil {
			t.Fatalf("Decode record %d: %v", i, err)
		}
		if got != want {
			t.Errorf("record %d: got %+v, want %+v", i, got, want)
		}
	}
}

func TestUnmarshalInvalidCBOR(t *testing.T) {
	var record sampleRecord
	if err := Unmarshal([]byte{0xFF, 0xFE, 0xFD}, &record); err == nil {
		t.Error("Unmarshal should reject invalid CBOR")
	}
}

func TestTreeRoundtrip(t *testing.T) {
	source := testutil.MustParse(t, "user.xml",
		`<select id="find"><!-- note -->SELECT <?hint fast?>id FROM user <![CDATA[WHERE a < 1]]> <if test="a &lt; b">WHERE x</if></select>`)

	data, err := EncodeTree(source.Root())
	if err != nil {
		t.Fatalf("EncodeTree: %v", err)
	}

	target := dom.NewDocument("decoded")
	node, err := DecodeTree(data, target)
	if err != nil {
		t.Fatalf("DecodeTree: %v", err)
	}
	if node.String() != source.Root().String() {
		t.Errorf("decoded = %s\nwant %s", node, source.Root())
	}
	if node.Owner() != target || node.Parent() != nil {
		t.Error("decoded tree should be detached and owned by the target document")
	}

	again, err := EncodeTree(node)
	if err != nil {
		t.Fatalf("EncodeTree again: %v", err)
	}
	if !bytes.Equal(data, again) {
		t.Error("re-encoding a decoded tree changed its bytes")
	}
}

func TestFromWire_Rejects(t *testing.T) {
	document := dom.NewDocument("x")
	tests := []struct {
		name string
		wire WireNode
	}{
		{"unknown kind", WireNode{Kind: 99}},
		{"unnamed element", WireNode{Kind: dom.ElementNode}},
		{"text with children", WireNode{Kind: dom.TextNode, Children: []WireNode{{Kind: dom.TextNode}}}},
		{"bad grandchild", WireNode{Kind: dom.ElementNode, Name: "a", Children: []WireNode{{Kind: 0}}}},
	}
	for _, test := range tests {
		if _, err := FromWire(test.wire, document); err == nil {
			t.Errorf("%s: FromWire succeeded", test.name)
		}
	}
}

func BenchmarkEncodeTree(b *testing.B) {
	source := testutil.MustParse(b, "bench.xml",
		`<select>SELECT a, b, c FROM t <where><if test="a">a = 1</if><if test="b">AND b = 2</if></where></select>`)
	b.ReportAllocs()
	for b.Loop() {
		EncodeTree(source.Root())
	}
}
