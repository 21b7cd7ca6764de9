package app

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local file cache",
		Long:  "Manage the decoded PDFs and covers kept on disk for 'open' and the browser. The library itself is not touched.",
	}

	cmd.AddCommand(
		newCacheInfoCmd(),
		newCacheClearCmd(),
	)
	return cmd
}

func newCacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stories, err := lib.Browse(cmd.Context(), catalog.Filter{})
			if err != nil {
				return err
			}

			cached, covered := 0, 0
			var uncached []catalog.Story
			for _, st := range stories {
				if cacheMgr.Exists(st.ID) {
					cached++
				} else {
					uncached = append(uncached, st)
				}
				if cacheMgr.HasCover(st.ID) {
					covered++
				}
			}
			size, files := calculateDirSize(cacheMgr.Dir())

			header("Cache Statistics")
			printField("stories", fmt.Sprintf("%d", len(stories)))
			printField("cached_pdfs", fmt.Sprintf("%d", cached))
			printField("cached_covers", fmt.Sprintf("%d", covered))
			printField("files", fmt.Sprintf("%d", files))
			printField("cache_size", util.HumanBytes(size))
			printField("cache_dir", cacheMgr.Dir())

			if len(uncached) > 0 && len(uncached) < len(stories) {
				fmt.Println()
				fmt.Printf("%s %d stories not cached:\n", color.YellowString("⚠"), len(uncached))
				for _, st := range uncached {
					fmt.Printf("  - %s (%s)\n", st.ID, st.Title)
				}
			}
			return nil
		},
	}
}

func newCacheClearCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clear [story-id...]",
		Short: "Remove cached files",
		Long: `Remove cached PDFs and covers. They are written again the next time a
story is opened or browsed.

Examples:
  storyshelf cache clear <id> <id>    Remove specific stories
  storyshelf cache clear --all        Remove the whole cache`,
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				return clearAllCache()
			}
			if len(args) == 0 {
				return fmt.Errorf("name stories to remove or pass --all")
			}
			removed := 0
			for _, id := range args {
				if !cacheMgr.Exists(id) && !cacheMgr.HasCover(id) {
					fmt.Printf("%s: not cached\n", id)
					continue
				}
				if err := cacheMgr.Remove(id); err != nil {
					warn("Failed to remove %s: %v", id, err)
					continue
				}
				removed++
			}
			ok("Removed %d stories from cache", removed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Clear the entire cache")
	return cmd
}

func clearAllCache() error {
	if _, err := os.Stat(cacheMgr.Dir()); os.IsNotExist(err) {
		ok("Cache is already empty")
		return nil
	}
	size, count := calculateDirSize(cacheMgr.Dir())
	fmt.Printf("This will remove %d cached files (%s)\n", count, util.HumanBytes(size))
	if !confirm("Clear the cache?") {
		return fmt.Errorf("cancelled")
	}
	if err := cacheMgr.Clear(); err != nil {
		return fmt.Errorf("removing cache: %w", err)
	}
	ok("Cleared %d files (%s)", count, util.HumanBytes(size))
	return nil
}

// calculateDirSize returns the total size and count of files under path.
func calculateDirSize(path string) (int64, int) {
	var size int64
	count := 0
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	return size, count
}

func newGalleryCmd() *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Write an offline HTML page of every story",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stories, err := lib.Browse(cmd.Context(), catalog.Filter{})
			if err != nil {
				return err
			}
			cats, err := lib.Categories(cmd.Context())
			if err != nil {
				return err
			}
			path, err := cacheMgr.GenerateGallery(stories, cats)
			if err != nil {
				return err
			}
			ok("Gallery written to %s", path)
			if open {
				return openFile(path, "")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Open the page in the default browser")
	return cmd
}
