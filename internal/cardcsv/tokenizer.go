package cardcsv

import (
	"strings"
	"unicode/utf8"
)

// Row is one logical record of delimited input.
type Row []string

// state is the tokenizer's quoting mode.
type state int

const (
	stateDefault state = iota
	stateInQuotes
)

// action is what the tokenizer does with the rune that triggered a transition.
type action int

const (
	actAppend      action = iota // append the rune to the current cell
	actAppendQuote               // append a literal quote (escaped pair)
	actToggle                    // quote boundary, nothing appended
	actEndCell
	actEndRow
)

// noRune marks the lookahead position past the end of input.
const noRune rune = -1

// transition is the result of feeding one rune to the state machine.
type transition struct {
	next        state
	act         action
	consumeNext bool // lookahead rune belongs to this transition
}

// step is the tokenizer's transition function. lookahead is the rune after r,
// or noRune at end of input.
func step(s state, r, lookahead rune) transition {
	if s == stateInQuotes {
		switch {
		case r == '"' && lookahead == '"':
			return transition{next: stateInQuotes, act: actAppendQuote, consumeNext: true}
		case r == '"':
			return transition{next: stateDefault, act: actToggle}
		default:
			return transition{next: stateInQuotes, act: actAppend}
		}
	}

	switch r {
	case '"':
		return transition{next: stateInQuotes, act: actToggle}
	case ',':
		return transition{next: stateDefault, act: actEndCell}
	case '\n':
		return transition{next: stateDefault, act: actEndRow}
	case '\r':
		return transition{next: stateDefault, act: actEndRow, consumeNext: lookahead == '\n'}
	default:
		return transition{next: stateDefault, act: actAppend}
	}
}

// tokenizer accumulates rows while the state machine runs.
type tokenizer struct {
	rows []Row
	row  Row
	cell strings.Builder
}

func (t *tokenizer) endCell() {
	t.row = append(t.row, t.cell.String())
	t.cell.Reset()
}

// endRow flushes the current row, but only if something was opened on it.
// Blank lines therefore never become rows.
func (t *tokenizer) endRow() {
	if len(t.row) == 0 && t.cell.Len() == 0 {
		return
	}
	t.endCell()
	t.rows = append(t.rows, t.row)
	t.row = nil
}

// Parse splits text into rows of cells. Cells are trimmed of surrounding
// whitespace. Parse never fails: unterminated quotes flush whatever was
// collected, and empty input yields an empty slice.
func Parse(text string) []Row {
	t := &tokenizer{rows: []Row{}}
	s := stateDefault

	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		i += size

		lookahead, lookSize := noRune, 0
		if i < len(text) {
			lookahead, lookSize = utf8.DecodeRuneInString(text[i:])
		}

		tr := step(s, r, lookahead)
		s = tr.next
		if tr.consumeNext {
			i += lookSize
		}

		switch tr.act {
		case actAppend:
			t.cell.WriteRune(r)
		case actAppendQuote:
			t.cell.WriteByte('"')
		case actEndCell:
			t.endCell()
		case actEndRow:
			t.endRow()
		}
	}
	t.endRow()

	for _, row := range t.rows {
		for j, cell := range row {
			row[j] = strings.TrimSpace(cell)
		}
	}
	return t.rows
}
