package cmd

import (
	"github.com/example/emojiscrub/internal/history"
	"github.com/example/emojiscrub/pkg/ui"
	"github.com/spf13/cobra"
)

var historyArchived bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List the renames emojiscrub made",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		journal, err := openJournal(store)
		if err != nil {
			return err
		}

		var entries []history.Entry
		if historyArchived {
			archived, err := journal.Archived()
			if err != nil {
				return err
			}
			entries = append(entries, archived...)
		}
		// Archived entries are oldest first; the journal is newest first.
		recent := journal.List()
		for i := len(recent) - 1; i >= 0; i-- {
			entries = append(entries, recent[i])
		}

		if len(entries) == 0 {
			ui.Info("No renames recorded")
			return nil
		}
		for _, h := range entries {
			ui.Info("%s  %s -> %s", h.Timestamp, h.OldPath, h.NewPath)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().BoolVar(&historyArchived, "archived", false, "include archived entries")
	rootCmd.AddCommand(historyCmd)
}
