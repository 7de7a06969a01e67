package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/JonMunkholm/flashcards/internal/cardcsv"
	"github.com/spf13/cobra"
)

type previewOutput struct {
	File   string         `json:"file"`
	Rows   int            `json:"rows"`
	Report cardcsv.Report `json:"report"`
}

func newPreviewCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the cards a CSV or XLSX file would create",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asTable, err := wantsTable(cmd, format)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			rows, err := cardcsv.RowsFromFile(filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			out := previewOutput{
				File:   filepath.Base(path),
				Rows:   len(rows),
				Report: cardcsv.NormalizeReport(rows),
			}
			if !asTable {
				return writeJSON(cmd, out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintln(w, renderTable(
				[]string{"#", "Front", "Back", "Hint", "Extra"},
				recordRows(out.Report.Records),
				[]columnAlignment{alignRight},
			))
			fmt.Fprintln(w, summaryLine(out))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or json")
	return cmd
}

func recordRows(records []cardcsv.CardRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for i, rec := range records {
		hint := ""
		if rec.Hint != nil {
			hint = *rec.Hint
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), rec.Front, rec.Back, hint, extraText(rec.Extra)})
	}
	return rows
}

func extraText(e *cardcsv.Extra) string {
	switch {
	case e == nil:
		return ""
	case e.Kind == cardcsv.ExtraNote:
		return "note: " + e.Note
	default:
		return string(e.JSON)
	}
}

func summaryLine(out previewOutput) string {
	header := "no header row"
	if out.Report.HeaderDetected {
		header = "header row detected"
	}
	return fmt.Sprintf("%s: %d rows read, %d cards, %d dropped, %s",
		out.File, out.Rows, len(out.Report.Records), out.Report.Dropped, header)
}
