package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/JonMunkholm/flashcards/internal/core"
)

func TestErrorAlert_Escapes(t *testing.T) {
	var buf bytes.Buffer
	if err := ErrorAlert("<b>bad</b>", "retry & wait", "IMP001").Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<b>") {
		t.Errorf("message not escaped: %s", out)
	}
	for _, want := range []string{"&lt;b&gt;bad&lt;/b&gt;", "retry &amp; wait", "Code: IMP001"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestImportSummary(t *testing.T) {
	tests := []struct {
		name    string
		result  core.ImportResult
		want    []string
		notWant []string
	}{
		{
			name:    "single card no drops",
			result:  core.ImportResult{FileName: "a.csv", Imported: 1},
			want:    []string{"<strong>1</strong> card from a.csv"},
			notWant: []string{"Skipped", "column headers"},
		},
		{
			name:   "drops and header",
			result: core.ImportResult{FileName: "b.xlsx", Imported: 3, Dropped: 2, HeaderDetected: true},
			want:   []string{"<strong>3</strong> cards", "Skipped 2 rows", "column headers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := ImportSummary(&tt.result).Render(context.Background(), &buf); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q: %s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output should not contain %q: %s", nw, out)
				}
			}
		})
	}
}

func TestImportPreview_LimitsRows(t *testing.T) {
	rows := []cardcsv.Row{{"front", "back", "hint", "extra"}}
	for i := 0; i < previewLimit+5; i++ {
		rows = append(rows, cardcsv.Row{"q", "a", "", "note <x>"})
	}
	preview := &core.ImportPreview{FileName: "big.csv", Rows: len(rows), Report: cardcsv.NormalizeReport(rows)}

	var buf bytes.Buffer
	if err := ImportPreview(preview).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if got := strings.Count(out, "<tr><td>"); got != previewLimit {
		t.Errorf("rendered %d rows, want %d", got, previewLimit)
	}
	if !strings.Contains(out, "and 5 more") {
		t.Errorf("missing overflow note: %s", out)
	}
	if !strings.Contains(out, "note &lt;x&gt;") {
		t.Errorf("note extra not escaped: %s", out)
	}
}

func TestPreviewRecords(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		wantShown  int
		wantHidden int
	}{
		{"empty", 0, 0, 0},
		{"under limit", 3, 3, 0},
		{"at limit", previewLimit, previewLimit, 0},
		{"over limit", previewLimit + 7, previewLimit, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := make([]cardcsv.CardRecord, tt.n)
			if got := len(previewRecords(records)); got != tt.wantShown {
				t.Errorf("previewRecords() len = %d, want %d", got, tt.wantShown)
			}
			if got := hidden(records); got != tt.wantHidden {
				t.Errorf("hidden() = %d, want %d", got, tt.wantHidden)
			}
		})
	}
}

func TestErrorAlert_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	if err := ErrorAlert("m", "", "").Render(ctx, &buf); err == nil {
		t.Error("Render() with canceled context should fail")
	}
	if buf.Len() != 0 {
		t.Errorf("wrote %q with canceled context", buf.String())
	}
}
