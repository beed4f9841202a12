package preference_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formbuilder/pkg/preference"
)

func backends(t *testing.T) map[string]preference.Store {
	t.Helper()
	dir := t.TempDir()

	file, err := preference.Open(context.Background(), preference.Config{
		Backend: preference.BackendFile,
		Path:    filepath.Join(dir, "prefs", "preferences.yaml"),
	})
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqlite, err := preference.Open(context.Background(), preference.Config{
		Backend: preference.BackendSQLite,
		Path:    filepath.Join(dir, "preferences.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	memory, err := preference.Open(context.Background(), preference.Config{})
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}

	stores := map[string]preference.Store{"memory": memory, "file": file, "sqlite": sqlite}
	t.Cleanup(func() {
		for _, store := range stores {
			store.Close()
		}
	})
	return stores
}

func TestStores_Contract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			if _, err := store.Load(ctx, "formLibrary"); !errors.Is(err, preference.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			if err := store.Save(ctx, "formLibrary", "tanstack-form"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, "theme", "dark"); err != nil {
				t.Fatalf("save: %v", err)
			}
			if err := store.Save(ctx, "formLibrary", "bring-your-own"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}

			got, err := store.Load(ctx, "formLibrary")
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if got != "bring-your-own" {
				t.Fatalf("expected last write to win, got %q", got)
			}
			if got, _ := store.Load(ctx, "theme"); got != "dark" {
				t.Fatalf("other keys must survive, got %q", got)
			}

			if err := store.Save(ctx, " ", "x"); err == nil {
				t.Fatalf("expected empty key to be rejected")
			}
		})
	}
}

func TestFile_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	ctx := context.Background()

	first, err := preference.NewFile(path)
	if err != nil {
		t.Fatalf("new file: %v", err)
	}
	if err := first.Save(ctx, "formLibrary", "tanstack-form"); err != nil {
		t.Fatalf("save: %v", err)
	}

	second, _ := preference.NewFile(path)
	got, err := second.Load(ctx, "formLibrary")
	if err != nil || got != "tanstack-form" {
		t.Fatalf("expected persisted value, got %q, %v", got, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "formLibrary: tanstack-form") {
		t.Fatalf("unexpected yaml:\n%s", data)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestFile_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	if err := os.WriteFile(path, []byte("formLibrary: [unterminated"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, _ := preference.NewFile(path)

	_, err := store.Load(context.Background(), "formLibrary")
	if err == nil || errors.Is(err, preference.ErrNotFound) {
		t.Fatalf("expected decode error, got %v", err)
	}
}

func TestSQLite_PersistsAcrossConnections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.db")
	ctx := context.Background()

	first, err := preference.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := first.Save(ctx, "formLibrary", "tanstack-form"); err != nil {
		t.Fatalf("save: %v", err)
	}
	first.Close()

	second, err := preference.OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer second.Close()
	if got, err := second.Load(ctx, "formLibrary"); err != nil || got != "tanstack-form" {
		t.Fatalf("expected persisted value, got %q, %v", got, err)
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	if _, err := preference.Open(context.Background(), preference.Config{Backend: "redis"}); err == nil {
		t.Fatalf("expected unknown backend error")
	}
	if _, err := preference.Open(context.Background(), preference.Config{Backend: "file"}); err == nil {
		t.Fatalf("expected missing path error")
	}
}

func TestMemory_HonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := preference.NewMemory().Save(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
