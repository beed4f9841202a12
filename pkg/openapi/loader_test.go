package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

func TestLoader_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.yaml")
	if err := os.WriteFile(path, []byte(petstore), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	src, err := ParseSource(path)
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	doc, err := NewLoader().Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Location() != path || string(doc.Raw()) != petstore {
		t.Fatalf("unexpected document from %s", doc.Location())
	}

	if _, err := NewLoader().Load(context.Background(), SourceFromFile(path+".missing")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestLoader_FS(t *testing.T) {
	files := fstest.MapFS{"specs/pets.yaml": {Data: []byte(petstore)}}
	doc, err := NewLoader(WithFileSystem(files)).Load(context.Background(), SourceFromFS("specs/pets.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if doc.Source().Kind() != SourceKindFS {
		t.Fatalf("unexpected kind %q", doc.Source().Kind())
	}
	if _, err := NewLoader().Load(context.Background(), SourceFromFS("specs/pets.yaml")); err == nil {
		t.Fatalf("expected error without a file system")
	}
}

func TestLoader_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openapi.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(petstore))
	}))
	defer srv.Close()

	src, err := ParseSource(srv.URL + "/openapi.yaml")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	if src.Kind() != SourceKindURL {
		t.Fatalf("expected URL source, got %q", src.Kind())
	}

	if _, err := NewLoader().Load(context.Background(), src); !errors.Is(err, ErrHTTPDisabled) {
		t.Fatalf("expected ErrHTTPDisabled, got %v", err)
	}

	loader := NewLoader(WithHTTPClient(srv.Client()))
	doc, err := loader.Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if string(doc.Raw()) != petstore {
		t.Fatalf("unexpected payload")
	}

	missing, _ := SourceFromURL(srv.URL + "/missing.yaml")
	if _, err := loader.Load(context.Background(), missing); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestSourceFromURL_RejectsSchemes(t *testing.T) {
	if _, err := SourceFromURL("ftp://example.com/spec.yaml"); err == nil {
		t.Fatalf("expected scheme error")
	}
	if _, err := ParseSource("  "); err == nil {
		t.Fatalf("expected empty location error")
	}
}
