// Package manager coordinates ingestion, retrieval, summarization, and
// library maintenance. It owns no storage itself.
package manager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"paperagent/internal/chunk"
	"paperagent/internal/config"
	"paperagent/internal/embedding"
	"paperagent/internal/llm"
	"paperagent/internal/paper"
	"paperagent/internal/pdf"
	"paperagent/internal/rag"
	"paperagent/internal/storage"
)

// Extractor turns a PDF path into a page-ordered document.
// *pdf.Extractor satisfies it.
type Extractor interface {
	Extract(ctx context.Context, path string) (*pdf.Document, error)
}

// Manager is the facade over the ingestion pipeline and the answer engine.
type Manager struct {
	store     *storage.DB
	extractor Extractor
	chunker   *chunk.Chunker
	embedder  embedding.Provider
	retriever *rag.Retriever
	generator *rag.Generator
	topK      int
	log       zerolog.Logger
}

// New wires a Manager from its collaborators. cfg must already be validated.
func New(store *storage.DB, extractor Extractor, chunker *chunk.Chunker,
	embedder embedding.Provider, completer llm.Provider, cfg config.Config, log zerolog.Logger) *Manager {
	return &Manager{
		store:     store,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		retriever: rag.NewRetriever(store, embedder),
		generator: rag.NewGenerator(completer, cfg.MaxContextChars, cfg.MaxAnswerTokens),
		topK:      cfg.TopK,
		log:       log,
	}
}

// Ingest adds the PDF at path to the library: extract, chunk, embed, and
// commit paper plus sections in one atomic unit. On any failure nothing is
// written. Reference extraction is best-effort and never fails ingestion.
func (m *Manager) Ingest(ctx context.Context, path string) (*paper.Paper, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %v", paper.ErrExtraction, err)
	}

	// Fail fast on duplicates and on a mismatched embedding model before
	// any expensive work.
	if existing, err := m.store.PaperByFilePath(abs); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, fmt.Errorf("%w: %s is already paper %d", paper.ErrDuplicate, abs, existing.ID)
	}
	if err := m.checkEmbeddingMeta(); err != nil {
		return nil, err
	}

	doc, err := m.extractor.Extract(ctx, abs)
	if err != nil {
		return nil, err
	}

	if doc.DOI != "" {
		if existing, err := m.store.PaperByDOI(doc.DOI); err != nil {
			return nil, err
		} else if existing != nil {
			return nil, fmt.Errorf("%w: DOI %s is already paper %d", paper.ErrDuplicate, doc.DOI, existing.ID)
		}
	}

	pages := make([]chunk.Page, len(doc.Pages))
	for i, p := range doc.Pages {
		pages[i] = chunk.Page{Number: p.Number, Text: p.Text}
	}
	chunks := m.chunker.Split(pages)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("%w: %s contains no usable text", paper.ErrExtraction, abs)
	}

	// Stage every section in memory; the paper is committed only after the
	// last embedding succeeded.
	sections := make([]paper.Section, len(chunks))
	for i, c := range chunks {
		vec, err := m.embedder.Embed(ctx, c.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding section %d of %d: %w", i+1, len(chunks), err)
		}
		sections[i] = paper.Section{Title: c.Title, Content: c.Content, Page: c.Page, Embedding: vec}
	}

	refs := m.extractReferences(doc)

	p := &paper.Paper{
		Title:    doc.Meta.Title,
		Authors:  doc.Meta.Authors,
		Year:     doc.Meta.Year,
		Abstract: doc.Meta.Abstract,
		FilePath: abs,
		DOI:      doc.DOI,
	}

	if err := m.store.InsertPaperWithSections(p, sections, refs, m.embedder.ModelName(), m.embedder.Dimensions()); err != nil {
		return nil, err
	}

	// Older papers may cite the one that just arrived.
	if n, err := m.store.ResolveReferencesTo(p); err != nil {
		m.log.Warn().Err(err).Int64("paper", p.ID).Msg("resolving inbound references")
	} else if n > 0 {
		m.log.Info().Int64("paper", p.ID).Int64("references", n).Msg("marked inbound references in-library")
	}

	m.log.Info().Int64("paper", p.ID).Str("title", p.Title).Int("sections", len(sections)).Msg("ingested")
	return p, nil
}

// extractReferences parses the trailing reference list and resolves which
// cited works are already in the library. Failures degrade to an empty or
// unresolved list and are only logged.
func (m *Manager) extractReferences(doc *pdf.Document) []paper.Reference {
	refs := pdf.ParseReferences(doc.Text())
	for i := range refs {
		inLibrary, err := m.referenceInLibrary(refs[i])
		if err != nil {
			m.log.Warn().Err(err).Msg("resolving reference against library")
			continue
		}
		refs[i].InLibrary = inLibrary
	}
	return refs
}

// referenceInLibrary matches a cited work against the library by DOI,
// then by normalized title.
func (m *Manager) referenceInLibrary(ref paper.Reference) (bool, error) {
	if ref.DOI != "" {
		p, err := m.store.PaperByDOI(ref.DOI)
		if err != nil {
			return false, err
		}
		if p != nil {
			return true, nil
		}
	}
	if title := strings.TrimSpace(ref.Title); title != "" {
		p, err := m.store.PaperByTitle(title)
		if err != nil {
			return false, err
		}
		if p != nil {
			return true, nil
		}
	}
	return false, nil
}

// checkEmbeddingMeta rejects ingestion when the library was built with a
// different embedding model; mixing models is a configuration error.
func (m *Manager) checkEmbeddingMeta() error {
	model, dims, err := m.store.EmbeddingMeta()
	if err != nil {
		return err
	}
	if dims == 0 {
		return nil // empty library, first ingestion records the meta
	}
	if dims != m.embedder.Dimensions() || model != m.embedder.ModelName() {
		return fmt.Errorf("%w: library was embedded with %s (%d dims), active provider is %s (%d dims); re-ingest to switch models",
			paper.ErrConfiguration, model, dims, m.embedder.ModelName(), m.embedder.Dimensions())
	}
	return nil
}

// QueryResult is the answer envelope: the synthesized answer plus the
// sections it was grounded on.
type QueryResult struct {
	Query   string       `json:"query"`
	Answer  string       `json:"answer"`
	Sources []rag.Result `json:"sources"`
}

// Query answers a natural-language question from the library. A positive
// paperID scopes retrieval to that paper. topK <= 0 uses the configured
// default.
func (m *Manager) Query(ctx context.Context, query string, topK int, paperID int64) (*QueryResult, error) {
	if topK <= 0 {
		topK = m.topK
	}

	retrieved, err := m.retriever.Retrieve(ctx, query, topK, paperID)
	if err != nil {
		return nil, err
	}

	answer, err := m.generator.Answer(ctx, query, retrieved)
	if err != nil {
		return nil, err
	}

	return &QueryResult{Query: query, Answer: answer, Sources: retrieved}, nil
}

// Summarize returns a paper's summary, generating and storing it on first
// call. Later calls return the stored text without a provider call.
func (m *Manager) Summarize(ctx context.Context, id int64) (string, error) {
	p, err := m.store.PaperByID(id)
	if err != nil {
		return "", err
	}
	if p.Summarized && p.Summary != "" {
		return p.Summary, nil
	}

	sections, err := m.store.SectionsForPaper(id)
	if err != nil {
		return "", err
	}

	summary, err := m.generator.Summarize(ctx, p, sections)
	if err != nil {
		return "", err
	}

	if err := m.store.UpdateSummary(id, summary); err != nil {
		return "", err
	}
	return summary, nil
}

// List returns the library, optionally filtered by tag name.
func (m *Manager) List(tag string) ([]paper.Paper, error) {
	return m.store.ListPapers(tag)
}

// Details returns a paper with its tags and references.
func (m *Manager) Details(id int64) (*paper.Details, error) {
	p, err := m.store.PaperByID(id)
	if err != nil {
		return nil, err
	}
	tags, err := m.store.TagsForPaper(id)
	if err != nil {
		return nil, err
	}
	refs, err := m.store.ReferencesForPaper(id)
	if err != nil {
		return nil, err
	}
	return &paper.Details{Paper: *p, Tags: tags, References: refs}, nil
}

// Tag attaches a tag to a paper, creating the tag on first use.
func (m *Manager) Tag(id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag name must not be empty", paper.ErrConfiguration)
	}
	t, err := m.store.EnsureTag(name)
	if err != nil {
		return err
	}
	return m.store.TagPaper(id, t.ID)
}

// Untag removes a tag from a paper. Orphaned tags survive.
func (m *Manager) Untag(id int64, name string) error {
	return m.store.UntagPaper(id, name)
}

// Delete removes a paper; its sections, tag links, and references cascade.
func (m *Manager) Delete(id int64) error {
	if err := m.store.DeletePaper(id); err != nil {
		return err
	}
	m.log.Info().Int64("paper", id).Msg("deleted")
	return nil
}
