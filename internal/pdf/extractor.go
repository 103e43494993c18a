// Package pdf turns PDF files into page-ordered text with best-effort
// metadata, DOI, and reference extraction.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	"paperagent/internal/paper"
)

// Page is one page of extracted text, 1-indexed.
type Page struct {
	Number int
	Text   string
}

// Metadata is the best-effort bibliographic guess for a paper.
type Metadata struct {
	Title    string
	Authors  []string
	Year     int
	Abstract string
}

// Document is the extraction result for one PDF.
type Document struct {
	Pages []Page
	Meta  Metadata
	DOI   string
}

// Text returns the concatenated page text.
func (d *Document) Text() string {
	parts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// Extractor extracts text and metadata from PDF files. The language model
// is only an assist for parsing layout-varying front matter; extraction
// succeeds on raw-text heuristics when the assist fails.
type Extractor struct {
	llm llm
	log zerolog.Logger
}

// llm is the completion capability the metadata assist needs.
type llm interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// NewExtractor creates an Extractor using the given completion provider.
func NewExtractor(provider llm, log zerolog.Logger) *Extractor {
	return &Extractor{llm: provider, log: log}
}

// Extract reads the PDF at path. An unreadable or corrupt file fails with
// ErrExtraction; a failed metadata guess does not.
func (e *Extractor) Extract(ctx context.Context, path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", paper.ErrExtraction, path, err)
	}
	defer f.Close()

	doc := &Document{}
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn().Err(err).Int("page", i).Str("path", path).Msg("skipping unreadable page")
			continue
		}
		doc.Pages = append(doc.Pages, Page{Number: i, Text: text})
	}

	if len(doc.Pages) == 0 {
		return nil, fmt.Errorf("%w: no text extracted from %s", paper.ErrExtraction, path)
	}

	doc.DOI = findDOI(doc.Pages)
	doc.Meta = e.inferMetadata(ctx, doc.Pages[0].Text, path)

	return doc, nil
}
