package pdf

import (
	"regexp"
	"strings"

	"paperagent/internal/paper"
)

const (
	// maxReferences caps parsed entries per paper.
	maxReferences = 200

	// minEntryLen drops fragments too short to be a citation.
	minEntryLen = 20

	// maxTitleLen truncates runaway title guesses.
	maxTitleLen = 250
)

var (
	headingPattern    = regexp.MustCompile(`(?im)^\s*(?:\d+\.?\s+)?(references|bibliography|literature cited)\s*$`)
	bracketMarker     = regexp.MustCompile(`(?m)^\s*\[\d+\]`)
	numberedMarker    = regexp.MustCompile(`(?m)^\s*\d{1,3}\.\s`)
	parenYearPattern  = regexp.MustCompile(`\((19|20)\d{2}[a-z]?\)`)
	bareYearPattern   = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	urlPattern        = regexp.MustCompile(`https?://[^\s<>"]+`)
	whitespaceCollaps = regexp.MustCompile(`\s+`)
)

// ParseReferences extracts the cited works from a paper's full text by
// locating a trailing references section. Everything is best-effort: a text
// without a recognizable section yields nil, and individual fields are left
// empty when they cannot be parsed.
func ParseReferences(text string) []paper.Reference {
	tail := referencesTail(text)
	if tail == "" {
		return nil
	}

	var refs []paper.Reference
	for _, entry := range splitEntries(tail) {
		entry = whitespaceCollaps.ReplaceAllString(strings.TrimSpace(entry), " ")
		if len(entry) < minEntryLen {
			continue
		}
		refs = append(refs, parseEntry(entry))
		if len(refs) >= maxReferences {
			break
		}
	}
	return refs
}

// referencesTail returns the text after the last references heading.
func referencesTail(text string) string {
	locs := headingPattern.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return ""
	}
	return text[locs[len(locs)-1][1]:]
}

// splitEntries cuts the references block into per-citation strings, keyed
// off whichever entry marker style the paper uses.
func splitEntries(tail string) []string {
	for _, marker := range []*regexp.Regexp{bracketMarker, numberedMarker} {
		locs := marker.FindAllStringIndex(tail, -1)
		if len(locs) < 2 {
			continue
		}
		var entries []string
		for i, loc := range locs {
			end := len(tail)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			entries = append(entries, tail[loc[1]:end])
		}
		return entries
	}
	// No markers: fall back to blank-line separation.
	return strings.Split(tail, "\n\n")
}

// parseEntry pulls year, DOI, URL, and an authors/title guess out of one
// citation string.
func parseEntry(entry string) paper.Reference {
	ref := paper.Reference{
		DOI: doiInText(entry),
		URL: urlInText(entry),
	}

	if m := parenYearPattern.FindString(entry); m != "" {
		ref.Year = atoiYear(m[1:5])
	} else if m := bareYearPattern.FindString(entry); m != "" {
		ref.Year = atoiYear(m)
	}

	// Common citation layout: "Authors. Title. Venue ..." — take the first
	// sentence-ish segment as authors and the second as title.
	segments := strings.SplitN(entry, ". ", 3)
	if len(segments) >= 2 && looksLikeAuthors(segments[0]) {
		ref.Authors = strings.TrimSpace(segments[0])
		ref.Title = truncate(strings.TrimSpace(segments[1]), maxTitleLen)
	} else {
		ref.Title = truncate(entry, maxTitleLen)
	}

	return ref
}

// looksLikeAuthors checks for the comma/and shape of an author list.
func looksLikeAuthors(s string) bool {
	if len(s) > 200 {
		return false
	}
	return strings.Contains(s, ",") || strings.Contains(s, " and ") || strings.Contains(s, "&")
}

func urlInText(s string) string {
	u := urlPattern.FindString(s)
	return strings.TrimRight(u, ".,;)")
}

func atoiYear(s string) int {
	year := 0
	for _, r := range s {
		year = year*10 + int(r-'0')
	}
	return year
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
