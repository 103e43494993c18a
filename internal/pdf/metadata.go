package pdf

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// maxFrontMatterChars bounds the first-page excerpt sent to the model.
	maxFrontMatterChars = 4000

	// maxMetadataTokens bounds the model's metadata answer.
	maxMetadataTokens = 300

	// maxHeuristicAbstractChars bounds the abstract taken by raw-text scan.
	maxHeuristicAbstractChars = 1500

	// minTitleLineLen is the shortest line accepted as a heuristic title.
	minTitleLineLen = 20
)

const metadataPrompt = `Extract the bibliographic metadata from the first page of this research paper.
Respond with a single JSON object and nothing else, using exactly these keys:
{"title": string, "authors": [string], "year": number, "abstract": string}
Use an empty string, empty array, or 0 for anything not present on the page.

First page:
---
%s
---
JSON:`

// inferMetadata guesses title/authors/year/abstract from the first page.
// It asks the language model first and falls back to raw-text heuristics,
// then to a filename-derived title. It never fails.
func (e *Extractor) inferMetadata(ctx context.Context, firstPage, path string) Metadata {
	meta, err := e.metadataFromLLM(ctx, firstPage)
	if err != nil {
		e.log.Warn().Err(err).Str("path", path).Msg("metadata assist failed, using heuristics")
	}

	if meta.Title == "" {
		meta.Title = heuristicTitle(firstPage)
	}
	if meta.Title == "" {
		meta.Title = titleFromFilename(path)
	}
	if meta.Abstract == "" {
		meta.Abstract = heuristicAbstract(firstPage)
	}
	if meta.Year == 0 {
		meta.Year = time.Now().Year()
	}
	return meta
}

// metadataFromLLM asks the completion provider for structured metadata.
func (e *Extractor) metadataFromLLM(ctx context.Context, firstPage string) (Metadata, error) {
	excerpt := firstPage
	if len(excerpt) > maxFrontMatterChars {
		excerpt = excerpt[:maxFrontMatterChars]
	}

	answer, err := e.llm.Complete(ctx, fmt.Sprintf(metadataPrompt, excerpt), maxMetadataTokens)
	if err != nil {
		return Metadata{}, fmt.Errorf("completing metadata prompt: %w", err)
	}

	return parseMetadataJSON(answer)
}

// llmMetadata tolerates the shapes models actually return: authors as an
// array or a comma-joined string, year as a number or a string.
type llmMetadata struct {
	Title    string          `json:"title"`
	Authors  json.RawMessage `json:"authors"`
	Year     json.RawMessage `json:"year"`
	Abstract string          `json:"abstract"`
}

// parseMetadataJSON extracts the first JSON object from a model answer.
func parseMetadataJSON(answer string) (Metadata, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end <= start {
		return Metadata{}, fmt.Errorf("no JSON object in model answer")
	}

	var raw llmMetadata
	if err := json.Unmarshal([]byte(answer[start:end+1]), &raw); err != nil {
		return Metadata{}, fmt.Errorf("parsing model answer: %w", err)
	}

	return Metadata{
		Title:    strings.TrimSpace(raw.Title),
		Authors:  parseAuthors(raw.Authors),
		Year:     parseYear(raw.Year),
		Abstract: strings.TrimSpace(raw.Abstract),
	}, nil
}

func parseAuthors(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return trimNonEmpty(list)
	}
	var joined string
	if err := json.Unmarshal(raw, &joined); err == nil {
		return trimNonEmpty(strings.Split(joined, ","))
	}
	return nil
}

func parseYear(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && plausibleYear(n) {
		return n
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && plausibleYear(n) {
			return n
		}
	}
	return 0
}

func plausibleYear(n int) bool { return n >= 1900 && n <= time.Now().Year()+1 }

func trimNonEmpty(list []string) []string {
	var out []string
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// heuristicTitle returns the first substantial non-header line of the page.
func heuristicTitle(firstPage string) string {
	for _, line := range strings.Split(firstPage, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= minTitleLineLen && !isHeaderLine(line) {
			return line
		}
	}
	return ""
}

// heuristicAbstract returns the text following an "Abstract" heading, up to
// the next blank line or the length cap.
func heuristicAbstract(firstPage string) string {
	lower := strings.ToLower(firstPage)
	idx := strings.Index(lower, "abstract")
	if idx < 0 {
		return ""
	}

	rest := firstPage[idx+len("abstract"):]
	rest = strings.TrimLeft(rest, ":.-— \t\n")
	if cut := strings.Index(rest, "\n\n"); cut > 0 {
		rest = rest[:cut]
	}
	if len(rest) > maxHeuristicAbstractChars {
		rest = rest[:maxHeuristicAbstractChars]
	}
	return strings.TrimSpace(rest)
}

// titleFromFilename derives a readable title from the file name.
func titleFromFilename(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// isHeaderLine checks if a line is likely a running header or footer.
func isHeaderLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "journal") {
		return true
	}
	if strings.Contains(lower, "volume") && strings.Contains(lower, "issue") {
		return true
	}
	if strings.Contains(lower, "copyright") {
		return true
	}
	if strings.Contains(lower, "preprint") || strings.Contains(lower, "arxiv:") {
		return true
	}
	return false
}
