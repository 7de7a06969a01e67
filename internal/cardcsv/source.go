package cardcsv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrInvalidWorkbook is returned when .xlsx contents cannot be opened.
	ErrInvalidWorkbook = errors.New("open workbook: not a readable xlsx file")
	// ErrNoSheets is returned when a workbook has no readable worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// PrepareText strips a leading UTF-8 BOM, drops NUL bytes and replaces
// invalid UTF-8 bytes with U+FFFD so the tokenizer always sees well-formed
// text that PostgreSQL can store.
func PrepareText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if bytes.IndexByte(data, 0) >= 0 {
		data = bytes.ReplaceAll(data, []byte{0}, nil)
	}
	if utf8.Valid(data) {
		return string(data)
	}

	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

// ReadXLSX reads the first worksheet of an .xlsx workbook into rows.
// Cells are trimmed like tokenizer output and rows without cells are skipped.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ErrNoSheets
	}

	raw, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	rows := make([]Row, 0, len(raw))
	for _, cells := range raw {
		if len(cells) == 0 {
			continue
		}
		row := make(Row, len(cells))
		for i, cell := range cells {
			row[i] = strings.TrimSpace(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// RowsFromFile reads rows from file contents, choosing the reader by the
// file name's extension. Anything that is not .xlsx is treated as CSV text.
func RowsFromFile(name string, data []byte) ([]Row, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ReadXLSX(bytes.NewReader(data))
	}
	return Parse(PrepareText(data)), nil
}
