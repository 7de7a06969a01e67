package cardcsv

import (
	"reflect"
	"strings"
	"testing"
)

func TestStep(t *testing.T) {
	tests := []struct {
		name      string
		state     state
		r         rune
		lookahead rune
		want      transition
	}{
		{"quote opens", stateDefault, '"', 'a', transition{next: stateInQuotes, act: actToggle}},
		{"double quote outside quotes only opens", stateDefault, '"', '"', transition{next: stateInQuotes, act: actToggle}},
		{"comma ends cell", stateDefault, ',', 'a', transition{next: stateDefault, act: actEndCell}},
		{"LF ends row", stateDefault, '\n', 'a', transition{next: stateDefault, act: actEndRow}},
		{"CR ends row", stateDefault, '\r', 'a', transition{next: stateDefault, act: actEndRow}},
		{"CRLF consumes LF", stateDefault, '\r', '\n', transition{next: stateDefault, act: actEndRow, consumeNext: true}},
		{"CR at end of input", stateDefault, '\r', noRune, transition{next: stateDefault, act: actEndRow}},
		{"plain rune appends", stateDefault, 'x', noRune, transition{next: stateDefault, act: actAppend}},
		{"escaped quote", stateInQuotes, '"', '"', transition{next: stateInQuotes, act: actAppendQuote, consumeNext: true}},
		{"closing quote", stateInQuotes, '"', ',', transition{next: stateDefault, act: actToggle}},
		{"closing quote at end of input", stateInQuotes, '"', noRune, transition{next: stateDefault, act: actToggle}},
		{"comma inside quotes", stateInQuotes, ',', 'a', transition{next: stateInQuotes, act: actAppend}},
		{"LF inside quotes", stateInQuotes, '\n', 'a', transition{next: stateInQuotes, act: actAppend}},
		{"CR inside quotes keeps LF", stateInQuotes, '\r', '\n', transition{next: stateInQuotes, act: actAppend}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := step(tt.state, tt.r, tt.lookahead)
			if got != tt.want {
				t.Errorf("step(%v, %q, %q) = %+v, want %+v", tt.state, tt.r, tt.lookahead, got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Row
	}{
		{
			name:  "empty input",
			input: "",
			want:  []Row{},
		},
		{
			name:  "quoted comma and escaped quote",
			input: `"a,b","c""d"`,
			want:  []Row{{"a,b", `c"d`}},
		},
		{
			name:  "trailing newline adds no row",
			input: "a,b\n",
			want:  []Row{{"a", "b"}},
		},
		{
			name:  "blank lines are skipped",
			input: "a\r\n\r\n\nb",
			want:  []Row{{"a"}, {"b"}},
		},
		{
			name:  "only line terminators",
			input: "\n\r\n\r",
			want:  []Row{},
		},
		{
			name:  "trailing comma keeps empty cell",
			input: "a,",
			want:  []Row{{"a", ""}},
		},
		{
			name:  "whitespace-only line opens a row",
			input: "   \nx",
			want:  []Row{{""}, {"x"}},
		},
		{
			name:  "cells are trimmed",
			input: " Q1 ,\tA1  ",
			want:  []Row{{"Q1", "A1"}},
		},
		{
			name:  "quoted newline stays in cell",
			input: "\"line1\nline2\",b",
			want:  []Row{{"line1\nline2", "b"}},
		},
		{
			name:  "quoted CRLF stays in cell",
			input: "\"x\r\ny\"",
			want:  []Row{{"x\r\ny"}},
		},
		{
			name:  "unterminated quote flushes the rest",
			input: "\"abc,def\nghi",
			want:  []Row{{"abc,def\nghi"}},
		},
		{
			name:  "quotes in the middle of a cell",
			input: `a"b,c"d`,
			want:  []Row{{"ab,cd"}},
		},
		{
			name:  "empty quoted cell alone adds no row",
			input: `""`,
			want:  []Row{},
		},
		{
			name:  "empty quoted cell before a delimiter",
			input: `"",x`,
			want:  []Row{{"", "x"}},
		},
		{
			name:  "ragged rows pass through",
			input: "a,b,c\nd\ne,f",
			want:  []Row{{"a", "b", "c"}, {"d"}, {"e", "f"}},
		},
		{
			name:  "multibyte runes",
			input: "héllo,日本語\n\"ñ,ü\",🙂",
			want:  []Row{{"héllo", "日本語"}, {"ñ,ü", "🙂"}},
		},
		{
			name:  "whitespace inside quotes is trimmed too",
			input: `"  padded  ",x`,
			want:  []Row{{"padded", "x"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_LineEndingEquivalence(t *testing.T) {
	want := []Row{{"a", "b"}, {"c", "d"}}
	for _, input := range []string{"a,b\r\nc,d", "a,b\nc,d", "a,b\rc,d"} {
		if got := Parse(input); !reflect.DeepEqual(got, want) {
			t.Errorf("Parse(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestParse_RoundTrip(t *testing.T) {
	rows := []Row{
		{"What is Go?", "A programming language", "golang.org"},
		{"Capital of France", "Paris"},
		{"", "blank front", ""},
		{"x"},
	}

	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = strings.Join(row, ",")
	}

	for _, sep := range []string{"\n", "\r\n", "\r"} {
		got := Parse(strings.Join(lines, sep))
		if !reflect.DeepEqual(got, rows) {
			t.Errorf("round trip with %q: got %q, want %q", sep, got, rows)
		}
	}
}

func TestParse_TrimIsAppliedOnce(t *testing.T) {
	got := Parse(` Q1 ,"  A1 "`)
	want := []Row{{"Q1", "A1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Parse = %q, want %q", got, want)
	}

	again := Parse(strings.Join(got[0], ","))
	if !reflect.DeepEqual(again, want) {
		t.Errorf("reparse = %q, want %q", again, want)
	}
}
