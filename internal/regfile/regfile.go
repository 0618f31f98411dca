// Package regfile decodes the YAML/JSON registry files the service is configured with.
package regfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned when no decoder accepts the content.
var ErrUnknownFormat = errors.New("format not recognized (expected YAML or JSON)")

type decoder struct {
	name string
	exts []string
	fn   func([]byte, any) error
}

var decoders = []decoder{
	{name: "yaml", exts: []string{".yaml", ".yml"}, fn: yaml.Unmarshal},
	{name: "json", exts: []string{".json"}, fn: json.Unmarshal},
}

// Load reads path and decodes it into a T.
func Load[T any](path string) (T, error) {
	var zero T
	path = strings.TrimSpace(path)
	if path == "" {
		return zero, errors.New("file path is empty")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode[T](raw, filepath.Ext(path))
}

// Decode picks the decoder from ext. An empty ext tries YAML, then JSON.
func Decode[T any](data []byte, ext string) (T, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	var errs []error
	for _, d := range decoders {
		if ext != "" && !slices.Contains(d.exts, ext) {
			continue
		}
		var out T
		if err := d.fn(data, &out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", d.name, err))
			continue
		}
		return out, nil
	}

	var zero T
	if len(errs) == 0 {
		return zero, fmt.Errorf("%w: extension %q", ErrUnknownFormat, ext)
	}
	return zero, errors.Join(append([]error{ErrUnknownFormat}, errs...)...)
}
