package app

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/blackwell-systems/storyshelf/internal/viewer"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var (
		page     int
		textOnly bool
	)

	cmd := &cobra.Command{
		Use:   "read <id>",
		Short: "Read a story in the terminal",
		Long: `Read a story page by page. On a terminal with kitty or iTerm2 image
support pages are drawn as images; otherwise the page text is shown.

Without a terminal (or with --text) one page of text is printed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.OpenStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := operations.Content(st)
			if err != nil {
				return err
			}

			if textOnly || !tui.ShouldUseTUI(cmd) {
				return printPageText(data, page)
			}
			return readStory(cmd.Context(), st, data)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to print in text mode")
	cmd.Flags().BoolVar(&textOnly, "text", false, "Print the page text instead of opening the reader")
	return cmd
}

func readStory(ctx context.Context, st *catalog.Story, data []byte) error {
	v := viewer.New(raster, cfg.Viewer.DefaultZoom)
	return tui.RunReader(ctx, v, tui.ReaderOptions{
		Title:    st.Title,
		Data:     data,
		Protocol: tui.ParseProtocol(cfg.Viewer.Images),
	})
}

func printPageText(data []byte, page int) error {
	doc, err := pdfrender.Parse(data)
	if err != nil {
		return err
	}
	page = viewer.ClampPage(page, doc.PageCount())
	text, err := pdfrender.PageText(data, page)
	if err != nil {
		return err
	}
	header("Page %d/%d", page, doc.PageCount())
	fmt.Println(pdfrender.SanitizeForTerminal(text))
	return nil
}

func newOpenCmd() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:               "open <id>",
		Short:             "Open a story in the system PDF viewer",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.OpenStory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := operations.Content(st)
			if err != nil {
				return err
			}
			path, err := cacheMgr.Ensure(st.ID, data, util.SHA256Bytes(data))
			if err != nil {
				return fmt.Errorf("cache: %w", err)
			}
			return openFile(path, app)
		},
	}

	cmd.Flags().StringVar(&app, "app", "", "Application to open the file with")
	return cmd
}

func openFile(path, app string) error {
	var cmdName string
	var args []string

	if app != "" {
		cmdName = app
		args = []string{path}
	} else {
		switch runtime.GOOS {
		case "darwin":
			cmdName = "open"
			args = []string{path}
		case "windows":
			cmdName = "cmd"
			args = []string{"/c", "start", "", path}
		default:
			cmdName = "xdg-open"
			args = []string{path}
		}
	}

	c := exec.Command(cmdName, args...)
	if err := c.Start(); err != nil {
		return fmt.Errorf("opening file with %q: %w", cmdName, err)
	}
	return nil
}

func newDownloadCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "download <id>",
		Short:             "Save a story's PDF",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := downloadStory(cmd.Context(), args[0], output)
			if err != nil {
				return err
			}
			ok("Saved %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Destination file or directory (default: current directory)")
	return cmd
}

// downloadStory writes the story's PDF to output. A directory (or an empty
// output) receives the suggested file name.
func downloadStory(ctx context.Context, id, output string) (string, error) {
	d, err := lib.Download(ctx, id)
	if err != nil {
		return "", err
	}
	path := output
	if path == "" {
		path = d.FileName
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, d.FileName)
	}
	if err := util.WriteFileAtomic(path, d.Data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}

func newCoverCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:               "cover <id>",
		Short:             "Save a story's cover image",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if st.CoverImage == "" {
				return fmt.Errorf("story %s has no cover", st.ID)
			}
			if output == "" {
				path, err := cacheMgr.StoreCover(st.ID, st.CoverImage)
				if err != nil {
					return err
				}
				ok("Cover cached at %s", path)
				return nil
			}
			_, data, err := catalog.DecodeDataURI(st.CoverImage)
			if err != nil {
				return err
			}
			if err := util.WriteFileAtomic(output, data, 0644); err != nil {
				return err
			}
			ok("Saved %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the JPEG here instead of the cache")
	return cmd
}
