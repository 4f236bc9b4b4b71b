package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wuwenhuang/bethel-rsvp/internal/model"
)

func writeRoster(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "host.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	return path
}

func TestLoadReadsEntries(t *testing.T) {
	path := writeRoster(t, `[{"name":"Ann","email":"ann@x.com"},{"name":"Bob","email":"bob@x.com"}]`)
	src := NewSource(path, "")

	entries, err := src.Load(model.CategoryHost)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Name != "Ann" || entries[0].Email != "ann@x.com" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
}

func TestLoadReadsFreshOnEveryCall(t *testing.T) {
	path := writeRoster(t, `[{"name":"Ann","email":"ann@x.com"}]`)
	src := NewSource(path, "")

	if _, err := src.Load(model.CategoryHost); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if err := os.WriteFile(path, []byte(`[]`), 0644); err != nil {
		t.Fatal(err)
	}

	entries, err := src.Load(model.CategoryHost)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected updated roster to be re-read, got %d entries", len(entries))
	}
}

func TestLoadMissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "absent.json"), "")

	if _, err := src.Load(model.CategoryHost); err == nil {
		t.Fatal("expected error for missing roster file")
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeRoster(t, `{"not":"an array"}`)
	src := NewSource(path, "")

	if _, err := src.Load(model.CategoryHost); err == nil {
		t.Fatal("expected error for malformed roster file")
	}
}
