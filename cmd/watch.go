package cmd

import (
	"time"

	"github.com/example/emojiscrub/internal/vault"
	"github.com/example/emojiscrub/internal/watch"
	"github.com/example/emojiscrub/pkg/ui"
	"github.com/spf13/cobra"
)

var (
	watchInterval time.Duration
	watchPoll     bool
	watchOnCreate bool
	watchOnRename bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the vault and remove emojis from new or renamed files",
	Long: `Watch follows the vault and applies the auto-remove settings: files that are created or renamed
get the emojis removed from their names. --on-create and --on-rename override the saved
settings for this session only.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(watch.Options{Notifier: ui.Notifier{}})
		if err != nil {
			return err
		}
		s, err := e.store.Load()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("on-create") {
			s.AutoRemoveOnCreate = watchOnCreate
		}
		if cmd.Flags().Changed("on-rename") {
			s.AutoRemoveOnRename = watchOnRename
		}

		if !s.AutoRemoveOnCreate && !s.AutoRemoveOnRename {
			ui.Warn("Auto-remove is off for new and renamed files; enable it with --on-create, --on-rename or `emojiscrub settings`")
			return nil
		}

		e.ctrl.Apply(s)
		defer e.ctrl.Close()

		ui.PrintBanner()
		ui.Info("Watching %s (new files: %v, renamed files: %v)... (Press Ctrl+C to stop)",
			e.vault.Root(), s.AutoRemoveOnCreate, s.AutoRemoveOnRename)
		return e.vault.Watch(cmd.Context(), vault.WatchOptions{
			Poll:     watchPoll,
			Interval: watchInterval,
			OnError: func(err error) {
				ui.Error("%v", err)
			},
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", vault.DefaultInterval, "time between two scans of the vault when polling")
	watchCmd.Flags().BoolVar(&watchPoll, "poll", false, "poll the vault instead of using filesystem notifications")
	watchCmd.Flags().BoolVar(&watchOnCreate, "on-create", false, "remove emojis from new files")
	watchCmd.Flags().BoolVar(&watchOnRename, "on-rename", false, "remove emojis from renamed files")
	rootCmd.AddCommand(watchCmd)
}
