package cardcsv

import "strings"

// Recognized header names. Matching is done on lowercased header cells.
const (
	colFront = "front"
	colBack  = "back"
	colHint  = "hint"
	colExtra = "extra"
)

// CardRecord is one importable flashcard. Hint and Extra are nil when the
// source cell was empty or absent.
type CardRecord struct {
	Front string  `json:"front"`
	Back  string  `json:"back"`
	Hint  *string `json:"hint"`
	Extra *Extra  `json:"extra"`
}

// Report describes the outcome of normalizing a row set.
type Report struct {
	Records        []CardRecord `json:"records"`
	HeaderDetected bool         `json:"headerDetected"`
	DataRows       int          `json:"dataRows"` // rows considered as cards
	Dropped        int          `json:"dropped"`  // rows missing front or back
}

// Normalize maps rows to card records. See NormalizeReport.
func Normalize(rows []Row) []CardRecord {
	return NormalizeReport(rows).Records
}

// NormalizeReport maps rows to card records and reports how many rows were
// dropped for lacking a front or back. The first row is treated as a header
// when it names a front or back column. Cells past the known columns are
// ignored.
func NormalizeReport(rows []Row) Report {
	report := Report{Records: []CardRecord{}}
	if len(rows) == 0 {
		return report
	}

	header := make([]string, len(rows[0]))
	for i, name := range rows[0] {
		header[i] = strings.ToLower(name)
	}
	report.HeaderDetected = hasHeader(header)

	data := rows
	if report.HeaderDetected {
		data = rows[1:]
	}
	report.DataRows = len(data)

	for _, cells := range data {
		var rec CardRecord
		if report.HeaderDetected {
			rec = recordFromHeader(header, cells)
		} else {
			rec = recordFromPosition(cells)
		}

		if rec.Front == "" || rec.Back == "" {
			report.Dropped++
			continue
		}
		report.Records = append(report.Records, rec)
	}

	return report
}

func hasHeader(header []string) bool {
	for _, name := range header {
		if name == colFront || name == colBack {
			return true
		}
	}
	return false
}

// recordFromHeader resolves columns by header name. Duplicate header names
// resolve to the rightmost column.
func recordFromHeader(header []string, cells Row) CardRecord {
	values := make(map[string]string, len(header))
	for i, name := range header {
		values[name] = cellAt(cells, i)
	}
	return buildRecord(values[colFront], values[colBack], values[colHint], values[colExtra])
}

func recordFromPosition(cells Row) CardRecord {
	return buildRecord(cellAt(cells, 0), cellAt(cells, 1), cellAt(cells, 2), cellAt(cells, 3))
}

func buildRecord(front, back, hint, extra string) CardRecord {
	rec := CardRecord{Front: front, Back: back}
	if hint != "" {
		rec.Hint = &hint
	}
	if extra != "" {
		decoded := DecodeExtra(extra)
		rec.Extra = &decoded
	}
	return rec
}

// cellAt returns the cell at i, or "" when the row is too short.
func cellAt(cells Row, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}
