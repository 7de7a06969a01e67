// Package templates holds the HTML fragments returned to HTMX requests.
// The *_templ.go files are generated from the .templ sources with
// templ generate.
package templates

import "github.com/JonMunkholm/flashcards/internal/cardcsv"

// previewLimit caps how many records ImportPreview renders.
const previewLimit = 20

func previewRecords(records []cardcsv.CardRecord) []cardcsv.CardRecord {
	if len(records) > previewLimit {
		return records[:previewLimit]
	}
	return records
}

// hidden is the number of records past previewLimit.
func hidden(records []cardcsv.CardRecord) int {
	return max(len(records)-previewLimit, 0)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func extraText(e *cardcsv.Extra) string {
	if e == nil {
		return ""
	}
	if e.Kind == cardcsv.ExtraNote {
		return e.Note
	}
	return string(e.JSON)
}
