package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"paperagent/internal/paper"
)

// selectPaperFields is the standard field list for paper SELECT queries.
const selectPaperFields = `id, title, authors_json, pub_year, abstract,
	file_path, added_at, summarized, summary, doi, url`

// InsertPaperWithSections commits a paper, its embedded sections, and its
// references in one transaction. Either every row lands or none do. The
// embedding model identity is recorded on first insert.
func (d *DB) InsertPaperWithSections(p *paper.Paper, sections []paper.Section, refs []paper.Reference, model string, dims int) error {
	authorsJSON, err := json.Marshal(p.Authors)
	if err != nil {
		return fmt.Errorf("marshaling authors: %w", err)
	}
	if p.AddedAt.IsZero() {
		p.AddedAt = time.Now()
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`
		INSERT INTO papers (title, authors_json, pub_year, abstract, file_path, added_at, summarized, summary, doi, url)
		VALUES (?, ?, ?, ?, ?, ?, 0, '', ?, ?)
	`, p.Title, string(authorsJSON), p.Year, p.Abstract, p.FilePath,
		p.AddedAt.Format(time.RFC3339), p.DOI, p.URL)
	if err != nil {
		return wrapConstraint(err, fmt.Sprintf("inserting paper %q", p.Title))
	}

	paperID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("reading paper id: %w", err)
	}

	sectionStmt, err := tx.Prepare(`
		INSERT INTO sections (paper_id, title, content, page, embedding) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing section insert: %w", err)
	}
	defer sectionStmt.Close()

	for i := range sections {
		res, err := sectionStmt.Exec(paperID, sections[i].Title, sections[i].Content,
			sections[i].Page, encodeVector(sections[i].Embedding))
		if err != nil {
			return fmt.Errorf("inserting section %d: %w", i, err)
		}
		sections[i].PaperID = paperID
		sections[i].ID, _ = res.LastInsertId()
	}

	if len(refs) > 0 {
		refStmt, err := tx.Prepare(`
			INSERT INTO cited_refs (paper_id, title, authors, year, doi, url, in_library)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("preparing reference insert: %w", err)
		}
		defer refStmt.Close()

		for i := range refs {
			if _, err := refStmt.Exec(paperID, refs[i].Title, refs[i].Authors,
				refs[i].Year, refs[i].DOI, refs[i].URL, boolToInt(refs[i].InLibrary)); err != nil {
				return fmt.Errorf("inserting reference %d: %w", i, err)
			}
			refs[i].PaperID = paperID
		}
	}

	if err := setEmbeddingMeta(tx, model, dims); err != nil {
		return fmt.Errorf("recording embedding meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing paper: %w", err)
	}

	p.ID = paperID
	return nil
}

// PaperByID retrieves a paper by id.
func (d *DB) PaperByID(id int64) (*paper.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE id = ?`, id)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: paper %d", paper.ErrNotFound, id)
	}
	return p, err
}

// PaperByFilePath retrieves a paper by its unique file path.
// Returns (nil, nil) when no paper has that path.
func (d *DB) PaperByFilePath(path string) (*paper.Paper, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE file_path = ?`, path)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// PaperByDOI retrieves a paper by DOI. Returns (nil, nil) when absent.
func (d *DB) PaperByDOI(doi string) (*paper.Paper, error) {
	if doi == "" {
		return nil, nil
	}
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE doi = ?`, doi)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// PaperByTitle retrieves a paper by case-insensitive exact title match.
// Returns (nil, nil) when absent.
func (d *DB) PaperByTitle(title string) (*paper.Paper, error) {
	if title == "" {
		return nil, nil
	}
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE lower(title) = lower(?)`, title)
	p, err := scanPaper(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListPapers returns all papers, newest first. A non-empty tag restricts
// the list to papers carrying that tag (exact, case-sensitive name).
func (d *DB) ListPapers(tag string) ([]paper.Paper, error) {
	query := `SELECT ` + selectPaperFields + ` FROM papers ORDER BY added_at DESC, id DESC`
	args := []any{}
	if tag != "" {
		query = `
			SELECT ` + selectPaperFields + ` FROM papers
			WHERE id IN (
				SELECT pt.paper_id FROM paper_tags pt
				JOIN tags t ON t.id = pt.tag_id
				WHERE t.name = ?
			)
			ORDER BY added_at DESC, id DESC`
		args = append(args, tag)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var papers []paper.Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

// UpdateSummary stores a summary and sets the summarized flag.
func (d *DB) UpdateSummary(id int64, summary string) error {
	res, err := d.db.Exec(`UPDATE papers SET summary = ?, summarized = 1 WHERE id = ?`, summary, id)
	if err != nil {
		return fmt.Errorf("updating summary: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: paper %d", paper.ErrNotFound, id)
	}
	return nil
}

// DeletePaper removes a paper; sections, tag links, and references cascade.
func (d *DB) DeletePaper(id int64) error {
	res, err := d.db.Exec(`DELETE FROM papers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting paper: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: paper %d", paper.ErrNotFound, id)
	}
	return nil
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanPaper(s scanner) (*paper.Paper, error) {
	var (
		p           paper.Paper
		authorsJSON string
		addedAt     string
		year        sql.NullInt64
		abstract    sql.NullString
		summarized  int
		summary     sql.NullString
		doi         sql.NullString
		url         sql.NullString
	)
	err := s.Scan(&p.ID, &p.Title, &authorsJSON, &year, &abstract,
		&p.FilePath, &addedAt, &summarized, &summary, &doi, &url)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
		return nil, fmt.Errorf("unmarshaling authors for paper %d: %w", p.ID, err)
	}
	if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
		p.AddedAt = t
	}
	p.Year = int(year.Int64)
	p.Abstract = abstract.String
	p.Summarized = summarized != 0
	p.Summary = summary.String
	p.DOI = doi.String
	p.URL = url.String
	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
