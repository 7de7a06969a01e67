package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("output missing %q:\n%s", want, out)
	}
}

const sampleCSV = "Front,Back,Hint,Extra\nhola,hello,greeting,\"{\"\"level\"\":1}\"\nadios,,,\ngato,cat,,meow\n"

func TestPreview_JSONWhenPiped(t *testing.T) {
	path := writeFile(t, "spanish.csv", sampleCSV)

	out, _, err := runCLI(t, "preview", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}

	var got previewOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.File != "spanish.csv" || got.Rows != 4 {
		t.Errorf("file/rows = %q/%d", got.File, got.Rows)
	}
	if len(got.Report.Records) != 2 || got.Report.Dropped != 1 || !got.Report.HeaderDetected {
		t.Errorf("report = %+v", got.Report)
	}
}

func TestPreview_Table(t *testing.T) {
	path := writeFile(t, "spanish.csv", sampleCSV)

	out, _, err := runCLI(t, "preview", "--format", "table", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	for _, want := range []string{"FRONT", "hola", "greeting", `{"level":1}`, "note: meow", "2 cards, 1 dropped, header row detected"} {
		requireContains(t, out, want)
	}
	if strings.Contains(out, "adios") {
		t.Errorf("dropped row rendered:\n%s", out)
	}
}

func TestPreview_XLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range [][]any{{"front", "back"}, {"uno", "one"}, {"dos", "two"}} {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "numbers.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	out, _, err := runCLI(t, "preview", "--format", "json", path)
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	var got previewOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Report.Records) != 2 || got.Report.Records[1].Front != "dos" {
		t.Errorf("records = %+v", got.Report.Records)
	}
}

func TestPreview_Errors(t *testing.T) {
	good := writeFile(t, "ok.csv", "a,b\n")
	notXLSX := writeFile(t, "broken.xlsx", "this is not a zip")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing file", args: []string{"preview", filepath.Join(t.TempDir(), "nope.csv")}, want: "nope.csv"},
		{name: "bad format", args: []string{"preview", "--format", "yaml", good}, want: "unknown --format"},
		{name: "no args", args: []string{"preview"}, want: "accepts 1 arg"},
		{name: "broken workbook", args: []string{"preview", notXLSX}, want: "open workbook"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}

func TestPush_ValidatesFlagsBeforeConnecting(t *testing.T) {
	path := writeFile(t, "ok.csv", "a,b\n")
	id := uuid.NewString()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing flags", args: []string{"push", path}, want: "required flag"},
		{name: "bad deck", args: []string{"push", path, "--deck", "x", "--owner", id}, want: "invalid --deck"},
		{name: "bad owner", args: []string{"push", path, "--deck", id, "--owner", "y"}, want: "invalid --owner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCLI(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			requireContains(t, err.Error(), tt.want)
		})
	}
}

func TestPush_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_URL", "")
	t.Setenv("LOG_LEVEL", "")
	path := writeFile(t, "ok.csv", "a,b\n")
	envFile := writeFile(t, "test.env", "LOG_LEVEL=debug\n")
	id := uuid.NewString()

	_, _, err := runCLI(t, "push", path, "--deck", id, "--owner", id, "--env-file", envFile)
	if err == nil {
		t.Fatal("expected config error")
	}
	requireContains(t, err.Error(), "DATABASE_URL")
}

func TestRenderTable(t *testing.T) {
	if got := renderTable(nil, nil, nil); got != "" {
		t.Errorf("renderTable with no headers = %q, want empty", got)
	}

	out := renderTable([]string{"#", "Front"}, [][]string{{"1"}}, []columnAlignment{alignRight})
	requireContains(t, out, "FRONT")
	requireContains(t, out, "1")
	if lines := strings.Count(out, "\n"); lines < 4 {
		t.Errorf("expected a bordered table, got:\n%s", out)
	}
}
