package storage

import (
	"path/filepath"
	"testing"
	"time"

	"paperagent/internal/paper"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "library.db"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testPaper(filePath string) *paper.Paper {
	return &paper.Paper{
		Title:    "A Test Paper",
		Authors:  []string{"Ada Lovelace", "Alan Turing"},
		Year:     2023,
		Abstract: "An abstract.",
		FilePath: filePath,
		AddedAt:  time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testSections(n int) []paper.Section {
	sections := make([]paper.Section, n)
	for i := range sections {
		sections[i] = paper.Section{
			Title:     "chunk",
			Content:   "section content",
			Page:      i + 1,
			Embedding: []float32{float32(i), 1, 2},
		}
	}
	return sections
}

func insertTestPaper(t *testing.T, db *DB, filePath string) *paper.Paper {
	t.Helper()
	p := testPaper(filePath)
	if err := db.InsertPaperWithSections(p, testSections(2), nil, "test-model", 3); err != nil {
		t.Fatalf("inserting paper: %v", err)
	}
	return p
}

func TestInsertAndFetchPaper(t *testing.T) {
	db := openTestDB(t)
	p := insertTestPaper(t, db, "/papers/a.pdf")
	if p.ID == 0 {
		t.Fatal("insert did not assign an id")
	}

	got, err := db.PaperByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != p.Title || got.FilePath != p.FilePath || got.Year != p.Year {
		t.Errorf("fetched paper = %+v, want %+v", got, p)
	}
	if len(got.Authors) != 2 || got.Authors[0] != "Ada Lovelace" {
		t.Errorf("authors = %v", got.Authors)
	}
	if !got.AddedAt.Equal(p.AddedAt) {
		t.Errorf("added_at = %v, want %v", got.AddedAt, p.AddedAt)
	}
}

func TestPaperByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	_, err := db.PaperByID(42)
	if !paper.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestDuplicateFilePath(t *testing.T) {
	db := openTestDB(t)
	insertTestPaper(t, db, "/papers/a.pdf")

	dup := testPaper("/papers/a.pdf")
	err := db.InsertPaperWithSections(dup, testSections(1), nil, "test-model", 3)
	if !paper.IsDuplicate(err) {
		t.Errorf("error = %v, want duplicate", err)
	}
}

func TestDuplicateDOI(t *testing.T) {
	db := openTestDB(t)

	first := testPaper("/papers/a.pdf")
	first.DOI = "10.1000/xyz123"
	if err := db.InsertPaperWithSections(first, testSections(1), nil, "test-model", 3); err != nil {
		t.Fatal(err)
	}

	second := testPaper("/papers/b.pdf")
	second.DOI = "10.1000/xyz123"
	err := db.InsertPaperWithSections(second, testSections(1), nil, "test-model", 3)
	if !paper.IsDuplicate(err) {
		t.Errorf("error = %v, want duplicate", err)
	}

	// An empty DOI never collides.
	third := testPaper("/papers/c.pdf")
	fourth := testPaper("/papers/d.pdf")
	if err := db.InsertPaperWithSections(third, testSections(1), nil, "test-model", 3); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertPaperWithSections(fourth, testSections(1), nil, "test-model", 3); err != nil {
		t.Errorf("second paper without DOI rejected: %v", err)
	}
}

func TestInsertRecordsEmbeddingMeta(t *testing.T) {
	db := openTestDB(t)

	model, dims, err := db.EmbeddingMeta()
	if err != nil {
		t.Fatal(err)
	}
	if model != "" || dims != 0 {
		t.Errorf("empty library meta = %q/%d, want empty", model, dims)
	}

	insertTestPaper(t, db, "/papers/a.pdf")
	model, dims, err = db.EmbeddingMeta()
	if err != nil {
		t.Fatal(err)
	}
	if model != "test-model" || dims != 3 {
		t.Errorf("meta = %q/%d, want test-model/3", model, dims)
	}
}

func TestSectionsRoundTrip(t *testing.T) {
	db := openTestDB(t)
	p := testPaper("/papers/a.pdf")
	sections := []paper.Section{
		{Title: "Page 1, chunk 1", Content: "first", Page: 1, Embedding: []float32{0.5, -1.25, 3}},
		{Title: "Page 2, chunk 2", Content: "second", Page: 2, Embedding: []float32{1, 2, -0.001}},
	}
	if err := db.InsertPaperWithSections(p, sections, nil, "test-model", 3); err != nil {
		t.Fatal(err)
	}

	got, err := db.SectionsForPaper(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d sections, want 2", len(got))
	}
	for i, s := range got {
		if s.Content != sections[i].Content || s.Page != sections[i].Page {
			t.Errorf("section %d = %+v", i, s)
		}
		for j, v := range s.Embedding {
			if v != sections[i].Embedding[j] {
				t.Errorf("section %d embedding[%d] = %f, want %f", i, j, v, sections[i].Embedding[j])
			}
		}
	}
}

func TestSectionsForRetrievalScoping(t *testing.T) {
	db := openTestDB(t)
	a := insertTestPaper(t, db, "/papers/a.pdf")
	insertTestPaper(t, db, "/papers/b.pdf")

	all, err := db.SectionsForRetrieval(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("library-wide candidates = %d, want 4", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].ID <= all[i-1].ID {
			t.Error("candidates are not ordered by id")
		}
	}
	if all[0].PaperTitle != "A Test Paper" {
		t.Errorf("paper title = %q", all[0].PaperTitle)
	}

	scoped, err := db.SectionsForRetrieval(a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(scoped) != 2 {
		t.Errorf("scoped candidates = %d, want 2", len(scoped))
	}
	for _, s := range scoped {
		if s.PaperID != a.ID {
			t.Errorf("candidate from paper %d leaked into scope %d", s.PaperID, a.ID)
		}
	}

	if _, err := db.SectionsForRetrieval(999); !paper.IsNotFound(err) {
		t.Errorf("unknown scope error = %v, want not found", err)
	}
}

func TestListPapersNewestFirst(t *testing.T) {
	db := openTestDB(t)

	old := testPaper("/papers/old.pdf")
	old.AddedAt = time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := db.InsertPaperWithSections(old, testSections(1), nil, "m", 3); err != nil {
		t.Fatal(err)
	}
	recent := testPaper("/papers/new.pdf")
	recent.AddedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := db.InsertPaperWithSections(recent, testSections(1), nil, "m", 3); err != nil {
		t.Fatal(err)
	}

	papers, err := db.ListPapers("")
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 2 {
		t.Fatalf("got %d papers, want 2", len(papers))
	}
	if papers[0].FilePath != "/papers/new.pdf" {
		t.Errorf("first listed = %s, want the newest", papers[0].FilePath)
	}
}

func TestTagging(t *testing.T) {
	db := openTestDB(t)
	p := insertTestPaper(t, db, "/papers/a.pdf")

	tag, err := db.EnsureTag("ml")
	if err != nil {
		t.Fatal(err)
	}
	again, err := db.EnsureTag("ml")
	if err != nil {
		t.Fatal(err)
	}
	if again.ID != tag.ID {
		t.Errorf("EnsureTag created a second row: %d vs %d", again.ID, tag.ID)
	}

	if err := db.TagPaper(p.ID, tag.ID); err != nil {
		t.Fatal(err)
	}
	// Tagging twice is a no-op.
	if err := db.TagPaper(p.ID, tag.ID); err != nil {
		t.Errorf("repeat tagging failed: %v", err)
	}

	tags, err := db.TagsForPaper(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Name != "ml" {
		t.Errorf("tags = %+v", tags)
	}
}

func TestTagUnknownPaper(t *testing.T) {
	db := openTestDB(t)
	tag, err := db.EnsureTag("ml")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.TagPaper(42, tag.ID); !paper.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestUntag(t *testing.T) {
	db := openTestDB(t)
	p := insertTestPaper(t, db, "/papers/a.pdf")
	tag, err := db.EnsureTag("ml")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.TagPaper(p.ID, tag.ID); err != nil {
		t.Fatal(err)
	}

	if err := db.UntagPaper(p.ID, "ml"); err != nil {
		t.Fatal(err)
	}
	tags, err := db.TagsForPaper(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 0 {
		t.Errorf("tags after untag = %+v", tags)
	}

	// Removing again, or removing an unknown tag, is not found.
	if err := db.UntagPaper(p.ID, "ml"); !paper.IsNotFound(err) {
		t.Errorf("repeat untag error = %v, want not found", err)
	}
	if err := db.UntagPaper(p.ID, "nope"); !paper.IsNotFound(err) {
		t.Errorf("unknown tag error = %v, want not found", err)
	}
}

func TestListPapersByTag(t *testing.T) {
	db := openTestDB(t)
	a := insertTestPaper(t, db, "/papers/a.pdf")
	insertTestPaper(t, db, "/papers/b.pdf")

	tag, err := db.EnsureTag("ml")
	if err != nil {
		t.Fatal(err)
	}
	if err := db.TagPaper(a.ID, tag.ID); err != nil {
		t.Fatal(err)
	}

	tagged, err := db.ListPapers("ml")
	if err != nil {
		t.Fatal(err)
	}
	if len(tagged) != 1 || tagged[0].ID != a.ID {
		t.Errorf("tagged list = %+v, want only paper %d", tagged, a.ID)
	}

	none, err := db.ListPapers("unknown")
	if err != nil {
		t.Fatal(err)
	}
	if len(none) != 0 {
		t.Errorf("unknown tag list = %+v, want empty", none)
	}
}

func TestDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	a := insertTestPaper(t, db, "/papers/a.pdf")
	b := insertTestPaper(t, db, "/papers/b.pdf")

	tag, err := db.EnsureTag("shared")
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []int64{a.ID, b.ID} {
		if err := db.TagPaper(id, tag.ID); err != nil {
			t.Fatal(err)
		}
	}

	refs := []paper.Reference{{Title: "Cited Work", Year: 2020}}
	c := testPaper("/papers/c.pdf")
	if err := db.InsertPaperWithSections(c, testSections(1), refs, "test-model", 3); err != nil {
		t.Fatal(err)
	}

	if err := db.DeletePaper(a.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := db.PaperByID(a.ID); !paper.IsNotFound(err) {
		t.Errorf("deleted paper still fetchable: %v", err)
	}
	candidates, err := db.SectionsForRetrieval(0)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range candidates {
		if s.PaperID == a.ID {
			t.Error("sections of the deleted paper survive")
		}
	}

	// The shared tag survives on the remaining paper.
	tags, err := db.TagsForPaper(b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(tags) != 1 || tags[0].Name != "shared" {
		t.Errorf("surviving paper tags = %+v", tags)
	}

	if err := db.DeletePaper(c.ID); err != nil {
		t.Fatal(err)
	}
	remaining, err := db.ReferencesForPaper(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(remaining) != 0 {
		t.Errorf("references of the deleted paper survive: %+v", remaining)
	}
}

func TestDeleteUnknownPaper(t *testing.T) {
	db := openTestDB(t)
	if err := db.DeletePaper(42); !paper.IsNotFound(err) {
		t.Errorf("error = %v, want not found", err)
	}
}

func TestUpdateSummary(t *testing.T) {
	db := openTestDB(t)
	p := insertTestPaper(t, db, "/papers/a.pdf")

	if err := db.UpdateSummary(p.ID, "the summary"); err != nil {
		t.Fatal(err)
	}
	got, err := db.PaperByID(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Summarized || got.Summary != "the summary" {
		t.Errorf("paper after summary = %+v", got)
	}

	if err := db.UpdateSummary(42, "x"); !paper.IsNotFound(err) {
		t.Errorf("unknown paper error = %v, want not found", err)
	}
}

func TestResolveReferences(t *testing.T) {
	db := openTestDB(t)

	refs := []paper.Reference{
		{Title: "  Attention Is All You Need ", Year: 2017},
		{Title: "Unrelated Work", DOI: "10.1/other", Year: 2019},
		{Title: "Another", DOI: "10.1234/abc", Year: 2018},
	}
	citing := testPaper("/papers/citing.pdf")
	if err := db.InsertPaperWithSections(citing, testSections(1), refs, "m", 3); err != nil {
		t.Fatal(err)
	}

	// Title match, case-insensitive and trimmed.
	byTitle := testPaper("/papers/attention.pdf")
	byTitle.Title = "attention is all you need"
	if err := db.InsertPaperWithSections(byTitle, testSections(1), nil, "m", 3); err != nil {
		t.Fatal(err)
	}
	n, err := db.ResolveReferencesTo(byTitle)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("resolved %d references by title, want 1", n)
	}

	// DOI match.
	byDOI := testPaper("/papers/another.pdf")
	byDOI.Title = "Completely Different Title"
	byDOI.DOI = "10.1234/abc"
	if err := db.InsertPaperWithSections(byDOI, testSections(1), nil, "m", 3); err != nil {
		t.Fatal(err)
	}
	n, err = db.ResolveReferencesTo(byDOI)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("resolved %d references by DOI, want 1", n)
	}

	got, err := db.ReferencesForPaper(citing.ID)
	if err != nil {
		t.Fatal(err)
	}
	inLibrary := 0
	for _, r := range got {
		if r.InLibrary {
			inLibrary++
		}
	}
	if inLibrary != 2 {
		t.Errorf("%d references marked in library, want 2", inLibrary)
	}
}

func TestSectionsDimensionGuard(t *testing.T) {
	// A stored row whose blob disagrees with the recorded dimensionality is
	// rejected at read time.
	db := openTestDB(t)
	p := testPaper("/papers/a.pdf")
	sections := []paper.Section{{Content: "x", Page: 1, Embedding: []float32{1, 2}}}
	if err := db.InsertPaperWithSections(p, sections, nil, "test-model", 3); err != nil {
		t.Fatal(err)
	}

	if _, err := db.SectionsForPaper(p.ID); !paper.IsConfiguration(err) {
		t.Errorf("SectionsForPaper error = %v, want configuration error", err)
	}
	if _, err := db.SectionsForRetrieval(0); !paper.IsConfiguration(err) {
		t.Errorf("SectionsForRetrieval error = %v, want configuration error", err)
	}
}

func TestEmbeddingMetaRejectsCorruptDims(t *testing.T) {
	db := openTestDB(t)
	insertTestPaper(t, db, "/papers/a.pdf")

	if _, err := db.db.Exec(`UPDATE library_meta SET value = 'garbage' WHERE key = 'embedding_dims'`); err != nil {
		t.Fatal(err)
	}
	if _, _, err := db.EmbeddingMeta(); !paper.IsConfiguration(err) {
		t.Errorf("error = %v, want configuration error", err)
	}
}

func TestVectorRoundTrip(t *testing.T) {
	vec := []float32{0, 1.5, -2.25, 3.0e-4}
	got, err := decodeVector(encodeVector(vec), 4)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range got {
		if v != vec[i] {
			t.Errorf("decoded[%d] = %f, want %f", i, v, vec[i])
		}
	}
}

func TestDecodeVectorErrors(t *testing.T) {
	if _, err := decodeVector([]byte{1, 2, 3}, 0); !paper.IsConfiguration(err) {
		t.Errorf("ragged blob error = %v, want configuration", err)
	}
	if _, err := decodeVector(make([]byte, 8), 3); !paper.IsConfiguration(err) {
		t.Errorf("dimension mismatch error = %v, want configuration", err)
	}
}
