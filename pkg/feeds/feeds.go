// Package feeds loads the list of remote feeds to poll from YAML/JSON.
package feeds

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/samvad-hq/feed-loader/internal/regfile"
)

// Feed describes one remote JSON feed. Config carries per-feed request options.
type Feed struct {
	ID     string         `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	URL    string         `json:"url" yaml:"url"`
	Config map[string]any `json:"config" yaml:"config"`
}

type registryFile struct {
	Feeds []Feed `json:"feeds" yaml:"feeds"`
}

// Registry holds validated feed definitions.
type Registry struct {
	mu    sync.RWMutex
	feeds []Feed
	idx   map[string]Feed
}

// LoadRegistry loads feed definitions from a YAML or JSON file.
func LoadRegistry(path string) (*Registry, error) {
	file, err := regfile.Load[registryFile](path)
	if err != nil {
		return nil, fmt.Errorf("load feeds file: %w", err)
	}
	return NewRegistry(file.Feeds)
}

// NewRegistry validates feeds and builds a registry from them.
func NewRegistry(list []Feed) (*Registry, error) {
	if len(list) == 0 {
		return nil, errors.New("feeds file contains no feeds entries")
	}

	reg := &Registry{
		feeds: make([]Feed, len(list)),
		idx:   make(map[string]Feed, len(list)),
	}
	for i := range list {
		f := sanitizeFeed(list[i])
		if err := validateFeed(f); err != nil {
			return nil, fmt.Errorf("feeds[%d]: %w", i, err)
		}
		if _, exists := reg.idx[f.ID]; exists {
			return nil, fmt.Errorf("duplicate feed id %q", f.ID)
		}
		reg.feeds[i] = f
		reg.idx[f.ID] = f
	}
	return reg, nil
}

func sanitizeFeed(f Feed) Feed {
	f.ID = strings.TrimSpace(f.ID)
	f.Name = strings.TrimSpace(f.Name)
	f.URL = strings.TrimSpace(f.URL)
	if f.Config == nil {
		f.Config = map[string]any{}
	}
	return f
}

func validateFeed(f Feed) error {
	if f.ID == "" {
		return errors.New("id is required")
	}
	if f.Name == "" {
		return fmt.Errorf("name is required for feed %q", f.ID)
	}
	if f.URL == "" {
		return fmt.Errorf("url is required for feed %q", f.ID)
	}
	u, err := url.Parse(f.URL)
	if err != nil {
		return fmt.Errorf("parse url for feed %q: %w", f.ID, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("url for feed %q must be an absolute http(s) url", f.ID)
	}
	return nil
}

// All returns a copy of every configured feed in file order.
func (r *Registry) All() []Feed {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Feed, len(r.feeds))
	copy(out, r.feeds)
	return out
}

// ByID returns the feed with the given id, if loaded.
func (r *Registry) ByID(id string) (Feed, bool) {
	if r == nil {
		return Feed{}, false
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Feed{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.idx[id]
	return f, ok
}
