package json

import (
	"bytes"
	stdjson "encoding/json"
	"strings"
	"testing"
)

type testEntry struct {
	File      string `json:"file"`
	Status    string `json:"status" default:"ok"`
	Extension string `json:"extension" default:"webp"`
	Size      int    `json:"size"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	entry := &testEntry{File: "a.png", Size: 10}

	data, err := Marshal(entry)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if entry.Status != "ok" || entry.Extension != "webp" {
		t.Fatalf("expected defaults on the original struct, got %+v", entry)
	}

	var decoded testEntry
	if err := stdjson.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("encoded JSON should be valid, got error: %v", err)
	}
	if decoded != *entry {
		t.Fatalf("expected %+v, got %+v", *entry, decoded)
	}
}

func TestMarshalKeepsExplicitValues(t *testing.T) {
	entry := &testEntry{File: "a.png", Status: "failed", Extension: "jpeg"}
	if _, err := Marshal(entry); err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if entry.Status != "failed" || entry.Extension != "jpeg" {
		t.Fatalf("explicit values overwritten: %+v", entry)
	}
}

func TestMarshalNonStruct(t *testing.T) {
	data, err := Marshal([]string{"a", "b"})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `["a","b"]` {
		t.Fatalf("unexpected output %s", data)
	}

	m := map[string]int{"n": 1}
	if _, err := Marshal(&m); err != nil {
		t.Fatalf("Marshal of map pointer returned error: %v", err)
	}
}

func TestUnmarshalAppliesDefaultsForMissingFields(t *testing.T) {
	var entry testEntry
	if err := Unmarshal([]byte(`{"file":"b.jpg","extension":"jpeg"}`), &entry); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if entry.Status != "ok" {
		t.Fatalf("expected default Status, got %q", entry.Status)
	}
	if entry.Extension != "jpeg" {
		t.Fatalf("expected Extension from JSON, got %q", entry.Extension)
	}
}

func TestMarshalIndent(t *testing.T) {
	data, err := MarshalIndent(&testEntry{File: "c.gif"}, "", "  ")
	if err != nil {
		t.Fatalf("MarshalIndent returned error: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"file\": \"c.gif\"") {
		t.Fatalf("expected indented output, got: %s", data)
	}
}

func TestEncoderDecoder(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	if err := enc.Encode(&testEntry{File: "<b>.png"}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<b>.png") {
		t.Fatalf("expected unescaped HTML, got: %s", buf.String())
	}

	var got testEntry
	if err := NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got.File != "<b>.png" || got.Status != "ok" {
		t.Fatalf("unexpected decode result %+v", got)
	}
}
