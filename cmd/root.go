package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/example/emojiscrub/internal/history"
	"github.com/example/emojiscrub/internal/settings"
	"github.com/example/emojiscrub/internal/vault"
	"github.com/example/emojiscrub/internal/watch"
	"github.com/example/emojiscrub/pkg/ui"
	"github.com/spf13/cobra"
)

var (
	vaultPath  string
	configPath string
	noColor    bool
)

var rootCmd = &cobra.Command{
	Use:   "emojiscrub",
	Short: "emojiscrub removes emojis from file names in a notes vault",
	Long: `emojiscrub strips emoji sequences from the names of the files in a vault (a directory of notes),
either on demand for every file or automatically when files are created or renamed.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.SetColor(!noColor)
	},
}

// Execute runs the CLI until it finishes or is interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		ui.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", ".", "vault directory")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "settings file (default ~/.config/emojiscrub/config.json)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// env is what every command works with.
type env struct {
	vault   *vault.Vault
	store   *settings.FileStore
	journal *history.Journal
	ctrl    *watch.Controller
}

func openEnv(opts watch.Options) (*env, error) {
	v, err := vault.Open(vaultPath)
	if err != nil {
		return nil, err
	}
	store, err := settings.NewFileStore(configPath)
	if err != nil {
		return nil, err
	}
	journal, err := openJournal(store)
	if err != nil {
		return nil, err
	}

	opts.Journal = journal
	opts.Vault = v.Root()
	return &env{
		vault:   v,
		store:   store,
		journal: journal,
		ctrl:    watch.New(v, opts),
	}, nil
}

func openStore() (*settings.FileStore, error) {
	return settings.NewFileStore(configPath)
}

// openJournal keeps the rename history next to the settings file.
func openJournal(store *settings.FileStore) (*history.Journal, error) {
	return history.Open(filepath.Dir(store.Path()), history.DefaultLimit)
}
