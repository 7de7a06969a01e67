package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/JonMunkholm/flashcards/internal/core"
	"github.com/JonMunkholm/flashcards/internal/store"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newPushCommand(ctx *commandContext) *cobra.Command {
	var deckFlag, ownerFlag, format string

	cmd := &cobra.Command{
		Use:   "push <file>",
		Short: "Import a CSV or XLSX file into a deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := uuid.Parse(deckFlag)
			if err != nil {
				return fmt.Errorf("invalid --deck %q: %w", deckFlag, err)
			}
			ownerID, err := uuid.Parse(ownerFlag)
			if err != nil {
				return fmt.Errorf("invalid --owner %q: %w", ownerFlag, err)
			}
			asTable, err := wantsTable(cmd, format)
			if err != nil {
				return err
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			pool, err := store.Connect(cmd.Context(), cfg.Database)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := core.NewService(store.New(pool), cfg)
			result, err := svc.ImportCards(cmd.Context(), ownerID, deckID, filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("%s: %w", core.FormatUserError(err), err)
			}

			if !asTable {
				result.Cards = nil
				return writeJSON(cmd, result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"File", "Rows", "Imported", "Dropped", "Header", "Duration"},
				[][]string{{
					result.FileName,
					strconv.Itoa(result.Rows),
					strconv.Itoa(result.Imported),
					strconv.Itoa(result.Dropped),
					strconv.FormatBool(result.HeaderDetected),
					result.Duration.Round(time.Millisecond).String(),
				}},
				[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&deckFlag, "deck", "", "Deck ID to append cards to")
	cmd.Flags().StringVar(&ownerFlag, "owner", "", "User ID owning the deck")
	cmd.Flags().StringVar(&format, "format", formatAuto, "Output format: auto, table or json")
	cmd.MarkFlagRequired("deck")
	cmd.MarkFlagRequired("owner")
	return cmd
}
