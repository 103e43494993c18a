package storage

import (
	"database/sql"
	"fmt"

	"paperagent/internal/paper"
)

// ReferencesForPaper returns the works cited by a paper, ordered by id.
func (d *DB) ReferencesForPaper(paperID int64) ([]paper.Reference, error) {
	rows, err := d.db.Query(`
		SELECT id, paper_id, title, authors, year, doi, url, in_library
		FROM cited_refs WHERE paper_id = ?
		ORDER BY id ASC
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying references for paper %d: %w", paperID, err)
	}
	defer rows.Close()

	var refs []paper.Reference
	for rows.Next() {
		var (
			r       paper.Reference
			title   sql.NullString
			authors sql.NullString
			year    sql.NullInt64
			doi     sql.NullString
			url     sql.NullString
			inLib   int
		)
		if err := rows.Scan(&r.ID, &r.PaperID, &title, &authors, &year, &doi, &url, &inLib); err != nil {
			return nil, err
		}
		r.Title = title.String
		r.Authors = authors.String
		r.Year = int(year.Int64)
		r.DOI = doi.String
		r.URL = url.String
		r.InLibrary = inLib != 0
		refs = append(refs, r)
	}
	return refs, rows.Err()
}

// ResolveReferencesTo flips in_library on existing references across the
// whole library that match the given paper by DOI or by normalized title.
// Returns the number of references updated.
func (d *DB) ResolveReferencesTo(p *paper.Paper) (int64, error) {
	res, err := d.db.Exec(`
		UPDATE cited_refs SET in_library = 1
		WHERE in_library = 0
		  AND ((doi != '' AND doi = ?) OR (title != '' AND lower(trim(title)) = lower(trim(?))))
	`, p.DOI, p.Title)
	if err != nil {
		return 0, fmt.Errorf("resolving references to paper %d: %w", p.ID, err)
	}
	return res.RowsAffected()
}
