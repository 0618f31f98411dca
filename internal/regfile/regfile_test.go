package regfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Names []string `json:"names" yaml:"names"`
}

func TestDecodeByExtension(t *testing.T) {
	got, err := Decode[sample]([]byte("names: [a, b]\n"), ".YML")
	if err != nil {
		t.Fatalf("Decode yaml: %v", err)
	}
	if len(got.Names) != 2 || got.Names[1] != "b" {
		t.Fatalf("unexpected yaml result %#v", got)
	}

	got, err = Decode[sample]([]byte(`{"names":["c"]}`), ".json")
	if err != nil {
		t.Fatalf("Decode json: %v", err)
	}
	if len(got.Names) != 1 || got.Names[0] != "c" {
		t.Fatalf("unexpected json result %#v", got)
	}
}

func TestDecodeWithoutExtensionFallsBack(t *testing.T) {
	got, err := Decode[sample]([]byte(`{"names":["x"]}`), "")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got.Names) != 1 {
		t.Fatalf("unexpected result %#v", got)
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	if _, err := Decode[sample]([]byte("names: [a]"), ".toml"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Decode[sample]([]byte("{not json"), ".json"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat for broken json, got %v", err)
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "names.yaml")
	if err := os.WriteFile(path, []byte("names: [one]\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := Load[sample](path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Names) != 1 || got.Names[0] != "one" {
		t.Fatalf("unexpected result %#v", got)
	}

	if _, err := Load[sample](" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
