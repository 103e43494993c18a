// Package chunk splits page-ordered text into overlapping, size-bounded
// sections suitable for embedding and retrieval.
package chunk

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"paperagent/internal/paper"
)

// Page is one page of extracted text, 1-indexed.
type Page struct {
	Number int
	Text   string
}

// Chunk is one emitted section: an exact slice of the concatenated text,
// attributed to the page its first character came from.
type Chunk struct {
	Content string
	Page    int
	Title   string
}

// pageSeparator joins page texts when concatenating. Kept to a single
// newline so character offsets stay close to the source layout.
const pageSeparator = "\n"

// Chunker produces deterministic overlapping chunks. Identical input and
// parameters always yield identical boundaries.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. The overlap must be smaller than the chunk size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", paper.ErrConfiguration, size)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: chunk overlap must not be negative, got %d", paper.ErrConfiguration, overlap)
	}
	if overlap >= size {
		return nil, fmt.Errorf("%w: chunk overlap (%d) must be smaller than chunk size (%d)",
			paper.ErrConfiguration, overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks the given pages. Each chunk after the first starts `overlap`
// characters before the previous chunk's end, so concatenating every chunk's
// leading non-overlapping portion reconstructs the full text exactly.
func (c *Chunker) Split(pages []Page) []Chunk {
	text, starts := concatenate(pages)
	if len(strings.TrimSpace(text)) == 0 {
		return nil
	}

	var chunks []Chunk
	start := 0
	for {
		if len(text)-start <= c.size {
			chunks = append(chunks, c.emit(text[start:], start, pages, starts, len(chunks)))
			return chunks
		}

		end := start + c.size
		// Snap the cut to a whitespace boundary when one falls in the last
		// quarter of the window, so words are not split mid-way. The cut
		// never lands at or before start+overlap: the next start is
		// end-overlap, and it must move forward.
		if snapped := snapToWhitespace(text, start, end, c.size); snapped > start+c.overlap {
			end = snapped
		} else {
			end = runeCut(text, start+c.overlap, end)
		}

		chunks = append(chunks, c.emit(text[start:end], start, pages, starts, len(chunks)))
		if end == len(text) {
			return chunks
		}
		start = end - c.overlap
	}
}

// emit builds a Chunk for the slice beginning at offset.
func (c *Chunker) emit(content string, offset int, pages []Page, starts []int, index int) Chunk {
	page := pageAt(pages, starts, offset)
	return Chunk{
		Content: content,
		Page:    page,
		Title:   fmt.Sprintf("Page %d, chunk %d", page, index+1),
	}
}

// runeCut moves end onto a UTF-8 rune boundary, backing up while staying
// past floor, and scanning forward over continuation bytes otherwise.
func runeCut(text string, floor, end int) int {
	cut := end
	for cut > floor+1 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if utf8.RuneStart(text[cut]) {
		return cut
	}
	for end < len(text) && !utf8.RuneStart(text[end]) {
		end++
	}
	return end
}

// snapToWhitespace returns the position just past the last whitespace rune
// in (start+3*size/4, end], or 0 if none is found there. The 3/4 threshold
// keeps chunks from shrinking far below the target size.
func snapToWhitespace(text string, start, end, size int) int {
	min := start + size*3/4
	for i := end - 1; i > min; i-- {
		if unicode.IsSpace(rune(text[i])) && text[i] < 0x80 {
			return i + 1
		}
	}
	return 0
}

// concatenate joins page texts and records each page's starting offset.
func concatenate(pages []Page) (string, []int) {
	var b strings.Builder
	starts := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString(pageSeparator)
		}
		starts[i] = b.Len()
		b.WriteString(p.Text)
	}
	return b.String(), starts
}

// pageAt returns the number of the page containing the given offset.
func pageAt(pages []Page, starts []int, offset int) int {
	if len(pages) == 0 {
		return 0
	}
	page := pages[0].Number
	for i, s := range starts {
		if s > offset {
			break
		}
		page = pages[i].Number
	}
	return page
}
