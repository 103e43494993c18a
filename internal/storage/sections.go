package storage

import (
	"database/sql"
	"fmt"

	"paperagent/internal/paper"
)

// SectionRecord is a section joined with its paper's title, the shape the
// retriever and generator consume.
type SectionRecord struct {
	paper.Section
	PaperTitle string `json:"paper_title"`
}

// SectionsForPaper returns a paper's sections in reading order (page, then
// id), with embeddings decoded and validated against the recorded
// dimensionality.
func (d *DB) SectionsForPaper(paperID int64) ([]paper.Section, error) {
	if _, err := d.PaperByID(paperID); err != nil {
		return nil, err
	}
	_, dims, err := d.EmbeddingMeta()
	if err != nil {
		return nil, err
	}

	rows, err := d.db.Query(`
		SELECT id, paper_id, title, content, page, embedding
		FROM sections WHERE paper_id = ?
		ORDER BY page ASC, id ASC
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying sections for paper %d: %w", paperID, err)
	}
	defer rows.Close()

	var sections []paper.Section
	for rows.Next() {
		s, err := scanSection(rows, dims)
		if err != nil {
			return nil, err
		}
		sections = append(sections, s)
	}
	return sections, rows.Err()
}

// SectionsForRetrieval returns retrieval candidates ordered by section id.
// A positive paperID scopes the candidates to that paper; zero means the
// whole library. This is the full-scan path behind similarity search; an
// index structure could replace it behind the same signature.
func (d *DB) SectionsForRetrieval(paperID int64) ([]SectionRecord, error) {
	_, dims, err := d.EmbeddingMeta()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT s.id, s.paper_id, s.title, s.content, s.page, s.embedding, p.title
		FROM sections s
		JOIN papers p ON p.id = s.paper_id
		ORDER BY s.id ASC`
	args := []any{}
	if paperID > 0 {
		if _, err := d.PaperByID(paperID); err != nil {
			return nil, err
		}
		query = `
			SELECT s.id, s.paper_id, s.title, s.content, s.page, s.embedding, p.title
			FROM sections s
			JOIN papers p ON p.id = s.paper_id
			WHERE s.paper_id = ?
			ORDER BY s.id ASC`
		args = append(args, paperID)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying retrieval candidates: %w", err)
	}
	defer rows.Close()

	var records []SectionRecord
	for rows.Next() {
		var (
			rec   SectionRecord
			title sql.NullString
			page  sql.NullInt64
			blob  []byte
		)
		if err := rows.Scan(&rec.ID, &rec.PaperID, &title, &rec.Content, &page, &blob, &rec.PaperTitle); err != nil {
			return nil, err
		}
		rec.Title = title.String
		rec.Page = int(page.Int64)
		if rec.Embedding, err = decodeVector(blob, dims); err != nil {
			return nil, fmt.Errorf("section %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanSection(rows *sql.Rows, dims int) (paper.Section, error) {
	var (
		s     paper.Section
		title sql.NullString
		page  sql.NullInt64
		blob  []byte
	)
	if err := rows.Scan(&s.ID, &s.PaperID, &title, &s.Content, &page, &blob); err != nil {
		return s, err
	}
	s.Title = title.String
	s.Page = int(page.Int64)

	var err error
	if s.Embedding, err = decodeVector(blob, dims); err != nil {
		return s, fmt.Errorf("section %d: %w", s.ID, err)
	}
	return s, nil
}
