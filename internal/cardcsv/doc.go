// Package cardcsv turns delimited text into flashcard records.
//
// The package has two stages that compose through a plain data contract:
//
//   - [Parse] tokenizes comma-delimited text into rows of trimmed cells.
//   - [Normalize] maps those rows onto [CardRecord] values, detecting an
//     optional header row and decoding the auxiliary extra column.
//
// # Accepted Format
//
// The tokenizer accepts a lenient CSV dialect: comma delimiter, double-quote
// quoting, doubled quotes as an escaped literal quote, and LF, CR or CRLF line
// endings. Malformed input never produces an error. An unterminated quote
// swallows the rest of the input into the current cell, and ragged rows are
// passed through unchanged.
//
// # Column Mapping
//
// When the first row contains "front" or "back" (case-insensitive), it is a
// header and columns are resolved by name (front, back, hint, extra).
// Otherwise columns are positional:
//
//	0 = front, 1 = back, 2 = hint, 3 = extra
//
// Records missing a front or back are dropped. [NormalizeReport] exposes how
// many rows were dropped so callers can report it.
//
// # Other Sources
//
// [ReadXLSX] reads the first worksheet of an .xlsx workbook into the same row
// shape, and [RowsFromFile] picks a reader by file extension.
package cardcsv
