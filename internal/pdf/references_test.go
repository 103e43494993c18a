package pdf

import (
	"strings"
	"testing"
)

func TestParseReferencesBracketStyle(t *testing.T) {
	text := `Introduction and body text.

References

[1] Vaswani, A., Shazeer, N. Attention Is All You Need. NeurIPS (2017)
[2] Devlin, J., Chang, M. BERT: Pre-training of Deep Bidirectional Transformers. NAACL (2019). doi:10.18653/v1/N19-1423
[3] Brown, T., et al. Language Models are Few-Shot Learners. (2020) https://arxiv.org/abs/2005.14165
`
	refs := ParseReferences(text)
	if len(refs) != 3 {
		t.Fatalf("got %d references, want 3", len(refs))
	}

	if refs[0].Title != "Attention Is All You Need" {
		t.Errorf("title = %q", refs[0].Title)
	}
	if refs[0].Authors != "Vaswani, A., Shazeer, N" {
		t.Errorf("authors = %q", refs[0].Authors)
	}
	if refs[0].Year != 2017 {
		t.Errorf("year = %d", refs[0].Year)
	}
	if refs[1].DOI != "10.18653/v1/N19-1423" {
		t.Errorf("doi = %q", refs[1].DOI)
	}
	if refs[2].URL != "https://arxiv.org/abs/2005.14165" {
		t.Errorf("url = %q", refs[2].URL)
	}
}

func TestParseReferencesNumberedStyle(t *testing.T) {
	text := `Body.

Bibliography

1. Smith, J., Jones, K. A Study of Things. Journal of Studies (2001)
2. Doe, J., Roe, R. Another Study Entirely. Proceedings (2005)
`
	refs := ParseReferences(text)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if refs[0].Title != "A Study of Things" {
		t.Errorf("title = %q", refs[0].Title)
	}
	if refs[1].Year != 2005 {
		t.Errorf("year = %d", refs[1].Year)
	}
}

func TestParseReferencesBlankLineFallback(t *testing.T) {
	text := `Body.

References

Vaswani, A., Shazeer, N. Attention Is All You Need. NeurIPS (2017)

Devlin, J., Chang, M. BERT and its many friends. NAACL (2019)
`
	refs := ParseReferences(text)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
}

func TestParseReferencesNoSection(t *testing.T) {
	if refs := ParseReferences("a paper that never cites anything"); refs != nil {
		t.Errorf("refs = %+v, want nil", refs)
	}
}

func TestParseReferencesUsesLastHeading(t *testing.T) {
	// "References" in the body must not trigger parsing of body text.
	text := `We list our contributions in Section 5.
References
to prior work are made throughout.

References

[1] Smith, J., Jones, K. The Actual Citation Entry. (2010)
[2] Doe, J., Roe, R. The Second Citation Entry. (2011)
`
	refs := ParseReferences(text)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if refs[0].Title != "The Actual Citation Entry" {
		t.Errorf("title = %q", refs[0].Title)
	}
}

func TestParseReferencesDropsFragments(t *testing.T) {
	text := `Body.

References

[1] short
[2] Smith, J., Jones, K. A Sufficiently Long Citation Entry. (2010)
`
	refs := ParseReferences(text)
	if len(refs) != 1 {
		t.Fatalf("got %d references, want 1", len(refs))
	}
}

func TestParseReferencesCapped(t *testing.T) {
	var b strings.Builder
	b.WriteString("Body.\n\nReferences\n\n")
	for i := 0; i < 300; i++ {
		b.WriteString("[1] Smith, J., Jones, K. Citation Entry Number Something. (2010)\n")
	}
	refs := ParseReferences(b.String())
	if len(refs) != maxReferences {
		t.Errorf("got %d references, want the %d cap", len(refs), maxReferences)
	}
}

func TestParseReferencesUnstructuredEntry(t *testing.T) {
	// No recognizable authors segment: the whole entry becomes the title.
	text := `Body.

References

[1] Proceedings of the 1999 Workshop on Nothing in Particular
[2] Smith, J., Jones, K. A Normal Citation Entry Here. (2010)
`
	refs := ParseReferences(text)
	if len(refs) != 2 {
		t.Fatalf("got %d references, want 2", len(refs))
	}
	if refs[0].Authors != "" {
		t.Errorf("authors = %q, want empty", refs[0].Authors)
	}
	if !strings.Contains(refs[0].Title, "Workshop on Nothing") {
		t.Errorf("title = %q", refs[0].Title)
	}
}
