// Package ingest turns a directory of source documents into index-ready
// chunks: extract text, normalize, split under the token limit.
package ingest

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/jordieb/landy/internal/chunker"
	"github.com/jordieb/landy/internal/textnorm"
	"github.com/jordieb/landy/internal/vectordb"
	"github.com/jordieb/landy/pkg/logging"
)

// Document is one extracted source file.
type Document struct {
	ID   string
	Name string
	Text string
}

// LoadCorpus walks dir and extracts text from every supported file.
// Unsupported extensions are skipped with a log line, not an error; a corpus
// directory usually has a README in it.
func LoadCorpus(dir string) ([]Document, error) {
	logger := logging.NewLogger("Ingest")
	var docs []Document

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		t := detectType(path)
		if t == typeErr {
			logger.Debug("Skipping unsupported file", "path", path)
			return nil
		}

		text, err := extractText(path, t)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", path, err)
		}
		docs = append(docs, Document{
			ID:   uuid.New().String(),
			Name: d.Name(),
			Text: text,
		})
		logger.Debug("Extracted document", "name", d.Name(), "bytes", len(text))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// PrepareChunks normalizes each document and splits it into chunks of at
// most maxTokens tokens.
func PrepareChunks(docs []Document, maxTokens int) []vectordb.Chunk {
	logger := logging.NewLogger("Ingest")
	c := chunker.New(maxTokens, chunker.WordCount)

	var all []vectordb.Chunk
	for _, doc := range docs {
		normalized := textnorm.Normalize(doc.Text)
		for i, text := range c.Chunk(normalized) {
			all = append(all, vectordb.Chunk{
				ID:         uuid.New().String(),
				DocID:      doc.ID,
				DocName:    doc.Name,
				Order:      i,
				Text:       text,
				TokenCount: chunker.WordCount(text),
			})
		}
	}
	logger.Info("Prepared chunks", "documents", len(docs), "chunks", len(all))
	return all
}
