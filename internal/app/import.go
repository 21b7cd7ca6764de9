package app

import (
	"context"
	"fmt"
	"os"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/importer"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		opts   operations.ImportOptions
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Upload every PDF under a directory (owner only)",
		Long: `Walks a directory and uploads every PDF found. Titles come from the
PDF metadata or the file name. Files already imported (by sha256) are
skipped, so the command can be re-run safely.

Examples:
  storyshelf import ~/stories --author "كاتب1" --category روايات
  storyshelf import ~/stories --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			files, err := importer.Scan(dir, []string{"pdf"})
			if err != nil {
				return err
			}
			if len(files) == 0 {
				warn("No PDFs under %s", dir)
				return nil
			}

			if dryRun {
				header("Would import %d files", len(files))
				for _, f := range files {
					fmt.Printf("  %s  %s\n", f.Rel, color.HiBlackString(importer.TitleFromName(f.Rel)))
				}
				return nil
			}

			report, err := runImport(cmd, dir, len(files), opts)
			if err != nil {
				return err
			}
			printImportReport(report)
			if len(report.Failed) > 0 {
				return fmt.Errorf("%d files failed to import", len(report.Failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Author, "author", "", "Author for files without PDF metadata")
	cmd.Flags().StringVar(&opts.Category, "category", "", "Category for every imported story")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Description for every imported story")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the files that would be imported")
	return cmd
}

// runImport shows a progress bar on a terminal. Cancelling the bar
// cancels the import; stories already uploaded stay.
func runImport(cmd *cobra.Command, dir string, total int, opts operations.ImportOptions) (*operations.ImportReport, error) {
	if !tui.ShouldUseTUI(cmd) {
		fmt.Printf("Importing %d files from %s …\n", total, dir)
		return lib.ImportDir(cmd.Context(), dir, opts)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	progressCh := make(chan int64, 50)
	type result struct {
		report *operations.ImportReport
		err    error
	}
	resCh := make(chan result, 1)

	opts.Progress = tui.ProgressFunc(progressCh)
	go func() {
		report, err := lib.ImportDir(ctx, dir, opts)
		close(progressCh)
		resCh <- result{report, err}
	}()

	if err := tui.ShowProgress(fmt.Sprintf("Importing %s", dir), "files", int64(total), progressCh); err != nil {
		cancel()
		res := <-resCh
		if res.report != nil {
			printImportReport(res.report)
		}
		return nil, err
	}
	res := <-resCh
	return res.report, res.err
}

func printImportReport(r *operations.ImportReport) {
	for _, it := range r.Imported {
		fmt.Printf("%s %s → %s\n", color.GreenString("✓"), it.Path, it.StoryID)
	}
	for _, it := range r.Skipped {
		fmt.Printf("%s %s (already imported as %s)\n", color.HiBlackString("·"), it.Path, it.StoryID)
	}
	for _, it := range r.Failed {
		fmt.Printf("%s %s: %s\n", color.RedString("✗"), it.Path, userMessage(it.Err))
	}
	fmt.Println()
	ok("Imported %d, skipped %d, failed %d", len(r.Imported), len(r.Skipped), len(r.Failed))
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a YAML backup of the whole library (owner only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := lib.ExportCatalog(cmd.Context())
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				data, err := catalog.Marshal(snap)
				if err != nil {
					return err
				}
				_, err = os.Stdout.Write(data)
				return err
			}
			if err := catalog.Save(output, snap); err != nil {
				return err
			}
			ok("Exported %d stories and %d categories to %s", len(snap.Stories), len(snap.Categories), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Backup file (default: stdout)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <backup.yml>",
		Short: "Merge a backup into the library (owner only)",
		Long: `Adds the backup's categories and upserts its stories by id. Stories
that fail validation are skipped and listed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			res, err := lib.ImportCatalog(cmd.Context(), snap)
			if err != nil {
				return err
			}
			for _, s := range res.Skipped {
				warn("skipped %s", s)
			}
			ok("Restored %d stories and %d categories", res.Stories, res.Categories)
			return nil
		},
	}
}
