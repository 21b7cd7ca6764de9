package app

import (
	"context"
	"fmt"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type browseOptions struct {
	Category string
	Search   string
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse the library interactively",
		Long: `Browse stories in a full-screen list. Enter reads the selected story,
tab shows its details, L and D like or dislike it and d downloads it.

Without a terminal this falls back to 'storyshelf list'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !tui.ShouldUseTUI(cmd) {
				list := newListCmd()
				list.SetContext(cmd.Context())
				_ = list.Flags().Set("category", opts.Category)
				_ = list.Flags().Set("search", opts.Search)
				return list.RunE(list, nil)
			}
			return runBrowse(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Category, "category", "", "Only stories in this category")
	cmd.Flags().StringVar(&opts.Search, "search", "", "Match title, author or description")
	return cmd
}

// runBrowse reopens the browser after every action until the user quits,
// keeping the cursor where it was.
func runBrowse(ctx context.Context, opts browseOptions) error {
	protocol := tui.ParseProtocol(cfg.Viewer.Images)
	title := "Stories"
	if s := state.Current(); s.Role != session.Anonymous {
		title = fmt.Sprintf("Stories · %s", s.Name)
	}

	index := 0
	for {
		items, err := browseItems(ctx, opts)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			warn("No stories found.")
			return nil
		}

		result, err := tui.RunStoryBrowser(title, items, index, protocol)
		if err != nil {
			return err
		}
		if result.Action == tui.ActionNone || result.Item == nil {
			return nil
		}
		index = result.Index

		if err := browserAction(ctx, result); err != nil {
			warn("%s", userMessage(err))
		}
	}
}

func browserAction(ctx context.Context, result *tui.BrowserResult) error {
	id := result.Item.Story.ID
	switch result.Action {
	case tui.ActionRead:
		st, err := lib.OpenStory(ctx, id)
		if err != nil {
			return err
		}
		data, err := operations.Content(st)
		if err != nil {
			return err
		}
		return readStory(ctx, st, data)
	case tui.ActionLike:
		_, err := lib.Like(ctx, id)
		return err
	case tui.ActionDislike:
		_, err := lib.Dislike(ctx, id)
		return err
	case tui.ActionDownload:
		path, err := downloadStory(ctx, id, "")
		if err != nil {
			return err
		}
		ok("Saved %s", path)
	}
	return nil
}

// browseItems loads the filtered stories and makes sure every cover is in
// the cache so the details pane can draw it.
func browseItems(ctx context.Context, opts browseOptions) ([]tui.StoryItem, error) {
	stories, err := lib.Browse(ctx, catalog.Filter{Category: opts.Category, Search: opts.Search})
	if err != nil {
		return nil, err
	}
	cats, err := lib.Categories(ctx)
	if err != nil {
		return nil, err
	}

	log := logrus.WithField("component", "browse")
	items := make([]tui.StoryItem, len(stories))
	for i, st := range stories {
		item := tui.StoryItem{
			Story:    st,
			Category: catalog.CategoryLabel(st.Category, cats),
		}
		if st.CoverImage != "" && !cacheMgr.HasCover(st.ID) {
			if _, err := cacheMgr.StoreCover(st.ID, st.CoverImage); err != nil {
				log.WithError(err).WithField("story", st.ID).Debug("cover not cached")
			}
		}
		if cacheMgr.HasCover(st.ID) {
			item.HasCover = true
			item.CoverPath = cacheMgr.CoverPath(st.ID)
		}
		items[i] = item
	}
	return items, nil
}
