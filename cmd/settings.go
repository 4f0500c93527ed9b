package cmd

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	localUI "github.com/example/emojiscrub/internal/ui"
	"github.com/example/emojiscrub/internal/settings"
	"github.com/example/emojiscrub/internal/vault"
	"github.com/example/emojiscrub/internal/watch"
	"github.com/example/emojiscrub/pkg/ui"
	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Open the settings panel",
	Long: `Open an interactive panel to remove emojis from every file name and to switch auto-remove
for new and renamed files. Changes are saved immediately and apply to the vault while the panel
is open.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		notifier := &localUI.Notifier{}
		e, err := openEnv(watch.Options{Notifier: notifier})
		if err != nil {
			return err
		}
		s, err := e.store.Load()
		if err != nil {
			return err
		}
		e.ctrl.Apply(s)
		defer e.ctrl.Close()

		p := tea.NewProgram(localUI.NewSettingsModel(e.ctrl, e.store, s))
		notifier.Program = p

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			err := e.vault.Watch(ctx, vault.WatchOptions{
				OnError: func(err error) { p.Send(localUI.WatchErrMsg{Err: err}) },
			})
			if err != nil {
				p.Send(localUI.WatchErrMsg{Err: err})
			}
		}()

		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running settings panel: %w", err)
		}
		return nil
	},
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the saved settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		s, err := store.Load()
		if err != nil {
			return err
		}
		ui.Info("Settings file: %s", store.Path())
		ui.Info("autoRemoveOnCreate: %v", s.AutoRemoveOnCreate)
		ui.Info("autoRemoveOnRename: %v", s.AutoRemoveOnRename)
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:       "set <autoRemoveOnCreate|autoRemoveOnRename> <true|false>",
	Short:     "Change one setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"autoRemoveOnCreate", "autoRemoveOnRename"},
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseBool(args[1])
		if err != nil {
			return fmt.Errorf("invalid value %q: %w", args[1], err)
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		s, err := store.Load()
		if err != nil {
			return err
		}
		if err := setKey(&s, args[0], value); err != nil {
			return err
		}
		if err := store.Save(s); err != nil {
			return err
		}
		ui.Info("%s set to %v", args[0], value)
		return nil
	},
}

func setKey(s *settings.Settings, key string, value bool) error {
	switch key {
	case "autoRemoveOnCreate", "on-create":
		s.AutoRemoveOnCreate = value
	case "autoRemoveOnRename", "on-rename":
		s.AutoRemoveOnRename = value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}
