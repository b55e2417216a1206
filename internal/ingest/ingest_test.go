package ingest

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadCorpus(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "slayer.txt", "The slayer awakens at level fifty.")
	writeFile(t, dir, "epics.md", "Epic weapons drop in hell mode.")
	writeFile(t, dir, "banner.png", "not a document")

	docs, err := LoadCorpus(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("documents got %d, want 2 (png skipped)", len(docs))
	}
	for _, doc := range docs {
		if doc.ID == "" {
			t.Errorf("document %q is missing an id", doc.Name)
		}
		if doc.Text == "" {
			t.Errorf("document %q has no text", doc.Name)
		}
	}
}

func TestLoadCorpus_NestedDirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "guides")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "fatigue.txt", "Fatigue points reset daily.")

	docs, err := LoadCorpus(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("documents got %d, want 1", len(docs))
	}
	if docs[0].Name != "fatigue.txt" {
		t.Errorf("name got %q, want %q", docs[0].Name, "fatigue.txt")
	}
}

func TestPrepareChunks(t *testing.T) {
	docs := []Document{
		{
			ID:   "doc-1",
			Name: "slayer.txt",
			Text: "The Slayer is a melee class. Awakening unlocks at level fifty. " +
				"Epic weapons drop in hell mode dungeons. Fatigue points reset every day.",
		},
	}

	chunks := PrepareChunks(docs, 5)
	if len(chunks) == 0 {
		t.Fatal("no chunks produced")
	}
	for i, c := range chunks {
		if c.DocID != "doc-1" || c.DocName != "slayer.txt" {
			t.Errorf("chunk %d has wrong provenance: %+v", i, c)
		}
		if c.Order != i {
			t.Errorf("chunk order got %d, want %d", c.Order, i)
		}
		if c.TokenCount > 5 {
			t.Errorf("chunk %d has %d tokens, want <= 5", i, c.TokenCount)
		}
		if c.Text != strings.ToLower(c.Text) {
			t.Errorf("chunk %d is not normalized: %q", i, c.Text)
		}
		if c.ID == "" {
			t.Errorf("chunk %d is missing an id", i)
		}
	}
}

// Loggers are created per call, so output goes through whatever handler is
// installed when the pipeline runs, not the one present at package init.
func TestPrepareChunks_LogsThroughInstalledHandler(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	defer slog.SetDefault(prev)
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))

	PrepareChunks([]Document{{ID: "d", Name: "a.txt", Text: "slayer awakening quest"}}, 10)

	if !strings.Contains(buf.String(), "component=Ingest") {
		t.Errorf("log output missing component tag: %q", buf.String())
	}
}

func TestPrepareChunks_EmptyDocument(t *testing.T) {
	chunks := PrepareChunks([]Document{{ID: "d", Name: "empty.txt", Text: "   "}}, 10)
	if len(chunks) != 0 {
		t.Errorf("chunks got %d, want 0", len(chunks))
	}
}
