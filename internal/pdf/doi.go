package pdf

import (
	"regexp"
	"strings"
)

// DOI pattern: 10.XXXX/... where XXXX is 4+ digits.
var doiPattern = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// doiSearchPages limits the DOI scan; a DOI is usually on the first page.
const doiSearchPages = 3

// findDOI searches the first pages of a document for a DOI.
// Returns "" when none is found; that is not an error.
func findDOI(pages []Page) string {
	for i, p := range pages {
		if i >= doiSearchPages {
			break
		}
		if doi := doiInText(p.Text); doi != "" {
			return doi
		}
	}
	return ""
}

// doiInText returns the first valid DOI in text.
func doiInText(text string) string {
	for _, match := range doiPattern.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if isValidDOI(match) {
			return match
		}
	}
	return ""
}

// isValidDOI performs basic validation on a DOI.
func isValidDOI(doi string) bool {
	if len(doi) < 10 {
		return false
	}
	if !strings.HasPrefix(doi, "10.") {
		return false
	}
	slashIdx := strings.Index(doi, "/")
	return slashIdx != -1 && slashIdx < len(doi)-1
}
