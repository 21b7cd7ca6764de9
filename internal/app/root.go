package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/blackwell-systems/storyshelf/internal/cache"
	"github.com/blackwell-systems/storyshelf/internal/config"
	"github.com/blackwell-systems/storyshelf/internal/cover"
	"github.com/blackwell-systems/storyshelf/internal/importer"
	"github.com/blackwell-systems/storyshelf/internal/logging"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/store"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	cfg      *config.Config
	docs     *store.Store
	state    *session.State
	lib      *operations.Library
	covers   *cover.Extractor
	raster   *pdfrender.Poppler
	cacheMgr *cache.Manager

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
	flagLogLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "storyshelf",
	Short: "A personal library of PDF stories",
	Long: `storyshelf keeps a library of PDF stories in a local SQLite database.

Visitors browse, read, like and comment. The owner uploads stories,
manages categories and sees the dashboard.

Run 'storyshelf' with no arguments to browse interactively.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runBrowse(cmd.Context(), browseOptions{})
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	err := rootCmd.ExecuteContext(context.Background())
	closeLibrary()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), userMessage(err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/storyshelf/config.yml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Override log.level (debug, info, warn, error)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)
		if flagConfig != "" {
			if err := os.Setenv("STORYSHELF_CONFIG", flagConfig); err != nil {
				return err
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		logging.Init(os.Stderr, cfg.Log.Level, cfg.Log.Format)

		if skipsLibrary(cmd) {
			return nil
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		return openLibrary(cmd.Context())
	}

	rootCmd.AddCommand(
		newUploadCmd(),
		newListCmd(),
		newBrowseCmd(),
		newInfoCmd(),
		newReadCmd(),
		newOpenCmd(),
		newDownloadCmd(),
		newLikeCmd(),
		newDislikeCmd(),
		newCommentCmd(),
		newCommentsCmd(),
		newShareCmd(),
		newCoverCmd(),
		newDeleteCmd(),
		newCategoriesCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newProfileCmd(),
		newStatsCmd(),
		newImportCmd(),
		newExportCmd(),
		newRestoreCmd(),
		newGalleryCmd(),
		newCacheCmd(),
		newConfigCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}

// skipsLibrary reports whether cmd runs without opening the database.
func skipsLibrary(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "version", "completion", "config", "help":
			return true
		}
	}
	return false
}

// openLibrary wires the store, session, cover extractor and cache into the
// operations layer.
func openLibrary(ctx context.Context) error {
	var err error
	docs, err = store.Open(ctx, cfg.Library.DBPath)
	if err != nil {
		return err
	}

	state = session.New(
		session.FileBlob{Path: cfg.Library.SessionPath},
		session.NewStaticSecret(cfg.Owner.Email, cfg.Owner.Secret),
		docs,
		session.Profile{Name: cfg.Owner.Name, Email: cfg.Owner.Email},
	)

	raster = pdfrender.NewPoppler(cfg.Render.Pdftoppm)
	covers = cover.New(raster,
		cover.WithScale(cfg.Render.Scale),
		cover.WithQuality(cfg.Render.Quality),
	)

	cacheMgr = cache.New(cfg.Library.CacheDir)
	ledger, err := importer.OpenLedger(cfg.Library.ImportLedger)
	if err != nil {
		return err
	}

	lib = operations.New(docs, covers, state,
		operations.WithCache(cacheMgr),
		operations.WithLedger(ledger),
		operations.WithWorkers(cfg.Render.Workers),
	)
	return nil
}

func closeLibrary() {
	if docs == nil {
		return
	}
	if err := docs.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		warn("closing library: %v", err)
	}
	docs = nil
}
