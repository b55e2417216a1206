package ingest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"

	"github.com/jordieb/landy/pkg/logging"
)

type docType string

const (
	typePDF   docType = "PDF"
	typeRich  docType = "RICH" // docx, rtf, odt
	typePlain docType = "PLAIN"
	typeErr   docType = "ERROR"
)

func detectType(path string) docType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return typePDF
	case ".docx", ".rtf", ".odt":
		return typeRich
	case ".txt", ".md", ".html", ".htm":
		return typePlain
	default:
		return typeErr
	}
}

func extractText(path string, t docType) (string, error) {
	switch t {
	case typePDF:
		return extractPDF(path)
	case typeRich:
		text, err := cat.File(path)
		if err != nil {
			return "", fmt.Errorf("failed to extract %s: %w", filepath.Base(path), err)
		}
		return text, nil
	case typePlain:
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	default:
		return "", fmt.Errorf("unsupported document type for %s", filepath.Base(path))
	}
}

func extractPDF(path string) (string, error) {
	logger := logging.NewLogger("Ingest")
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		b.WriteString(content)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// protectExtract guards against pdf pages whose text extraction never
// returns.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(10 * time.Second):
		return "", errors.New("page extraction timeout")
	}
}
