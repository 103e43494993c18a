package storage

import (
	"database/sql"
	"fmt"

	"paperagent/internal/paper"
)

// EnsureTag returns the tag with the given name, creating it on first use.
func (d *DB) EnsureTag(name string) (paper.Tag, error) {
	var t paper.Tag
	err := d.db.QueryRow(`SELECT id, name FROM tags WHERE name = ?`, name).Scan(&t.ID, &t.Name)
	if err == nil {
		return t, nil
	}
	if err != sql.ErrNoRows {
		return t, fmt.Errorf("querying tag %q: %w", name, err)
	}

	res, err := d.db.Exec(`INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		return t, wrapConstraint(err, fmt.Sprintf("creating tag %q", name))
	}
	t.ID, err = res.LastInsertId()
	t.Name = name
	return t, err
}

// TagPaper associates a tag with a paper. Tagging twice is a no-op.
func (d *DB) TagPaper(paperID, tagID int64) error {
	if _, err := d.PaperByID(paperID); err != nil {
		return err
	}
	_, err := d.db.Exec(`INSERT OR IGNORE INTO paper_tags (paper_id, tag_id) VALUES (?, ?)`, paperID, tagID)
	if err != nil {
		return fmt.Errorf("tagging paper %d: %w", paperID, err)
	}
	return nil
}

// UntagPaper removes a tag association. The tag itself survives even when
// orphaned; there is no garbage collection.
func (d *DB) UntagPaper(paperID int64, name string) error {
	if _, err := d.PaperByID(paperID); err != nil {
		return err
	}

	var tagID int64
	err := d.db.QueryRow(`SELECT id FROM tags WHERE name = ?`, name).Scan(&tagID)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: tag %q", paper.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("querying tag %q: %w", name, err)
	}

	res, err := d.db.Exec(`DELETE FROM paper_tags WHERE paper_id = ? AND tag_id = ?`, paperID, tagID)
	if err != nil {
		return fmt.Errorf("untagging paper %d: %w", paperID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: paper %d is not tagged %q", paper.ErrNotFound, paperID, name)
	}
	return nil
}

// TagsForPaper returns a paper's tags ordered by name.
func (d *DB) TagsForPaper(paperID int64) ([]paper.Tag, error) {
	rows, err := d.db.Query(`
		SELECT t.id, t.name FROM tags t
		JOIN paper_tags pt ON t.id = pt.tag_id
		WHERE pt.paper_id = ?
		ORDER BY t.name ASC
	`, paperID)
	if err != nil {
		return nil, fmt.Errorf("querying tags for paper %d: %w", paperID, err)
	}
	defer rows.Close()

	var tags []paper.Tag
	for rows.Next() {
		var t paper.Tag
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
