// Package paper defines the core domain types for the paper library.
package paper

import "time"

// Paper represents an ingested research paper.
type Paper struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Authors    []string  `json:"authors"`
	Year       int       `json:"year,omitempty"`
	Abstract   string    `json:"abstract,omitempty"`
	FilePath   string    `json:"file_path"`
	AddedAt    time.Time `json:"added_at"`
	Summarized bool      `json:"summarized"`
	Summary    string    `json:"summary,omitempty"`
	DOI        string    `json:"doi,omitempty"`
	URL        string    `json:"url,omitempty"`
}

// Tag is a user-assigned label. Names are unique and case-sensitive.
type Tag struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Section is a bounded, page-attributed chunk of a paper's text.
// It is the atomic retrieval unit; sections are immutable after ingestion.
type Section struct {
	ID        int64     `json:"id"`
	PaperID   int64     `json:"paper_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content"`
	Page      int       `json:"page,omitempty"`
	Embedding []float32 `json:"-"`
}

// Reference is a work cited by a paper. All bibliographic fields are
// best-effort; InLibrary marks whether the cited work is itself ingested.
type Reference struct {
	ID        int64  `json:"id"`
	PaperID   int64  `json:"paper_id"`
	Title     string `json:"title,omitempty"`
	Authors   string `json:"authors,omitempty"`
	Year      int    `json:"year,omitempty"`
	DOI       string `json:"doi,omitempty"`
	URL       string `json:"url,omitempty"`
	InLibrary bool   `json:"in_library"`
}

// Details is a paper together with its tags and references.
type Details struct {
	Paper
	Tags       []Tag       `json:"tags"`
	References []Reference `json:"references"`
}
