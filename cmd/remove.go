package cmd

import (
	"fmt"
	"sync"

	"github.com/example/emojiscrub/internal/watch"
	"github.com/example/emojiscrub/pkg/ui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var dryRun bool

var removeAllCmd = &cobra.Command{
	Use:   "remove-all",
	Short: "Remove emojis from all filenames",
	Long: `Remove emojis from the name of every file in the vault. Hidden folders are skipped.
Names made only of emojis get a random emoji-only-name-NNNN placeholder, so --dry-run may
show a different number than the real run.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var (
			barOnce sync.Once
			bar     *progressbar.ProgressBar
		)
		e, err := openEnv(watch.Options{
			Notifier: ui.Notifier{},
			OnProgress: func(done, total int) {
				barOnce.Do(func() {
					bar = progressbar.Default(int64(total), "scanning")
				})
				_ = bar.Add(1)
			},
		})
		if err != nil {
			return err
		}

		if dryRun {
			planned, err := e.ctrl.Plan(ctx)
			if err != nil {
				return err
			}
			if len(planned) == 0 {
				ui.Info("No file names contain emojis")
				return nil
			}
			for _, r := range planned {
				ui.Info("%s -> %s", r.File.Path, r.NewPath)
			}
			ui.Info("%d files would be renamed", len(planned))
			return nil
		}

		ui.Info("Removing emojis from file names in %s...", e.vault.Root())
		results, err := e.ctrl.ProcessAll(ctx)
		if bar != nil {
			_ = bar.Finish()
		}

		renamed, failed := 0, 0
		for _, r := range results {
			if r.Renamed {
				renamed++
			}
			if r.Err != nil {
				failed++
				ui.Error("%s: %v", r.File.Path, r.Err)
			}
		}
		ui.Info("Renamed %d of %d files", renamed, len(results))
		if err != nil {
			return fmt.Errorf("%d of %d renames failed", failed, len(results))
		}
		return nil
	},
}

func init() {
	removeAllCmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "only print the renames that would be made")
	rootCmd.AddCommand(removeAllCmd)
}
