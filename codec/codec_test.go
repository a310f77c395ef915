package codec_test

import (
	"bytes"
	"testing"

	"github.com/nuln/pathio/codec"
)

func TestLookup(t *testing.T) {
	for _, name := range []string{"raw", "json", "csv", "gob"} {
		if _, ok := codec.Lookup(name); !ok {
			t.Errorf("Lookup(%q) should find a builtin codec", name)
		}
	}
	if _, ok := codec.Lookup("nope"); ok {
		t.Error("Lookup(nope) should miss")
	}
}

func TestInfer(t *testing.T) {
	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"data/file.txt", "raw", true},
		{"data/file.json", "json", true},
		{"s3://bucket/key/rows.csv", "csv", true},
		{"state.gob", "gob", true},
		{"noextension", "", false},
		{"trailing.", "", false},
		{"file.unknown", "", false},
	}
	for _, tt := range tests {
		got, ok := codec.Infer(tt.path)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Infer(%q) = (%q, %v), want (%q, %v)", tt.path, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFormats(t *testing.T) {
	formats := codec.Formats()
	seen := make(map[string]bool, len(formats))
	for _, f := range formats {
		seen[f] = true
	}
	for _, want := range []string{"raw", "json", "csv", "gob"} {
		if !seen[want] {
			t.Errorf("Formats() missing %q: %v", want, formats)
		}
	}
}

func TestRawRoundTrip(t *testing.T) {
	c, _ := codec.Lookup("raw")

	var buf bytes.Buffer
	if err := c.Encode(&buf, "some payload"); err != nil {
		t.Fatalf("Encode string: %v", err)
	}
	got, err := c.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(got.([]byte)) != "some payload" {
		t.Errorf("round trip = %q", got)
	}

	if err := c.Encode(&buf, 42); err == nil {
		t.Error("raw Encode should reject non-byte non-string values")
	}
}

func TestCSVRejectsWrongType(t *testing.T) {
	c, _ := codec.Lookup("csv")
	var buf bytes.Buffer
	if err := c.Encode(&buf, "not records"); err == nil {
		t.Error("csv Encode should reject non-[][]string values")
	}
}
