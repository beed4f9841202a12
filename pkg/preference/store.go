// Package preference persists small user preferences, such as the selected
// code generation target, across builder sessions. Stores are keyed
// string-to-string maps; the last write for a key wins.
package preference

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Load when no value is stored for the key.
var ErrNotFound = errors.New("preference: not found")

// Store loads and saves preference values.
type Store interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config selects and configures a backend.
type Config struct {
	Backend string `yaml:"backend" json:"backend"`
	// Path is the YAML file for the file backend and the database file (or
	// DSN) for the sqlite backend.
	Path string `yaml:"path" json:"path"`
}

// Open returns the store described by cfg. An empty backend selects the
// in-memory store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendFile:
		return NewFile(cfg.Path)
	case BackendSQLite:
		return OpenSQLite(ctx, cfg.Path)
	default:
		return nil, fmt.Errorf("preference: unknown backend %q", cfg.Backend)
	}
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("preference: key is required")
	}
	return nil
}
