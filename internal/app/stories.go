package app

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/operations"
	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newUploadCmd() *cobra.Command {
	var (
		title       string
		author      string
		description string
		category    string
		coverPath   string
	)

	cmd := &cobra.Command{
		Use:   "upload <file.pdf|->",
		Short: "Add a story to the library (owner only)",
		Long: `Add a PDF story. The cover is rendered from the first page unless
--cover points at an image. A blank description is taken from the text of
the first page.

Examples:
  storyshelf upload tale.pdf --title "قصة1" --author "كاتب1" --category عام
  cat tale.pdf | storyshelf upload - --title Tale --author Ann`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPDF(args[0])
			if err != nil {
				return err
			}

			req := operations.UploadRequest{
				Title:       title,
				Author:      author,
				Description: description,
				Category:    category,
				Data:        payload.Data,
			}
			if coverPath != "" {
				f, err := os.Open(coverPath)
				if err != nil {
					return fmt.Errorf("opening cover: %w", err)
				}
				defer func() { _ = f.Close() }()
				if req.Cover, err = covers.FromImage(f); err != nil {
					return err
				}
			}

			st, err := lib.Upload(cmd.Context(), req)
			if err != nil {
				return err
			}
			ok("Added %q (%s, %s)", st.Title, st.ID, util.HumanBytes(int64(len(payload.Data))))
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Story title (required)")
	cmd.Flags().StringVar(&author, "author", "", "Author name (required)")
	cmd.Flags().StringVar(&description, "description", "", "Short description (default: first page excerpt)")
	cmd.Flags().StringVar(&category, "category", "", "Category (default: "+catalog.FallbackCategory+")")
	cmd.Flags().StringVar(&coverPath, "cover", "", "Cover image instead of the rendered first page")
	return cmd
}

// storyRow is the scripting view of a story: everything but the document
// and cover payloads.
type storyRow struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Author    string `json:"author" yaml:"author"`
	Category  string `json:"category" yaml:"category"`
	Views     int64  `json:"views" yaml:"views"`
	Likes     int64  `json:"likes" yaml:"likes"`
	Dislikes  int64  `json:"dislikes" yaml:"dislikes"`
	Downloads int64  `json:"downloads" yaml:"downloads"`
	Comments  int    `json:"comments" yaml:"comments"`
	CreatedAt string `json:"created_at" yaml:"created_at"`
}

func newListCmd() *cobra.Command {
	var (
		category string
		search   string
		format   string
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stories, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stories, err := lib.Browse(cmd.Context(), catalog.Filter{Category: category, Search: search})
			if err != nil {
				return err
			}
			cats, err := lib.Categories(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([]storyRow, len(stories))
			for i, st := range stories {
				rows[i] = storyRow{
					ID:        st.ID,
					Title:     st.Title,
					Author:    st.Author,
					Category:  catalog.CategoryLabel(st.Category, cats),
					Views:     st.Views,
					Likes:     st.Likes,
					Dislikes:  st.Dislikes,
					Downloads: st.Downloads,
					Comments:  len(st.Comments),
					CreatedAt: st.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
				}
			}

			switch format {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			case "yaml":
				return yaml.NewEncoder(os.Stdout).Encode(rows)
			case "", "table":
			default:
				return fmt.Errorf("unknown format %q (use table, json or yaml)", format)
			}

			if len(rows) == 0 {
				fmt.Println("No stories found.")
				return nil
			}
			for _, r := range rows {
				fmt.Printf("%s  %s  %s  %s  %s\n",
					color.WhiteString("%-36s", r.ID),
					r.Title,
					color.HiBlackString("— %s", r.Author),
					color.CyanString("[%s]", r.Category),
					color.GreenString("♥%d ↓%d", r.Likes, r.Downloads),
				)
			}
			fmt.Printf("\n%d stories\n", len(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "Only stories in this category")
	cmd.Flags().StringVar(&search, "search", "", "Match title, author or description")
	cmd.Flags().StringVar(&format, "format", "", "Output format: table, json or yaml")
	return cmd
}

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "info <id>",
		Short:             "Show a story's details",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cats, err := lib.Categories(cmd.Context())
			if err != nil {
				return err
			}

			header("Story: %s", st.ID)
			printField("title", st.Title)
			printField("author", st.Author)
			printField("category", catalog.CategoryLabel(st.Category, cats))
			printField("added", st.CreatedAt.Local().Format("2006-01-02 15:04"))
			printField("views", fmt.Sprintf("%d", st.Views))
			printField("likes", fmt.Sprintf("%d", st.Likes))
			printField("dislikes", fmt.Sprintf("%d", st.Dislikes))
			printField("downloads", fmt.Sprintf("%d", st.Downloads))
			printField("comments", fmt.Sprintf("%d", len(st.Comments)))
			if data, err := operations.Content(st); err == nil {
				printField("size", util.HumanBytes(int64(len(data))))
			}
			printField("link", catalog.StoryURL(cfg.Library.BaseURL, st.ID))
			if st.Description != "" {
				fmt.Println()
				fmt.Println(st.Description)
			}
			return nil
		},
	}
}

func newLikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "like <id>",
		Short:             "Like a story",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Like(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok("Liked %q (%d likes)", st.Title, st.Likes)
			return nil
		},
	}
}

func newDislikeCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "dislike <id>",
		Short:             "Dislike a story",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Dislike(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ok("Disliked %q (%d dislikes)", st.Title, st.Dislikes)
			return nil
		},
	}
}

func newCommentCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "comment <id> <text...>",
		Short:             "Leave an anonymous comment on a story",
		Args:              cobra.MinimumNArgs(2),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := lib.Comment(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			ok("Comment added as %s", c.User)
			return nil
		},
	}
}

func newCommentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "comments <id>",
		Short:             "Show a story's comments, newest first",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			header("Comments on %q (%d)", st.Title, len(st.Comments))
			if len(st.Comments) == 0 {
				fmt.Println("  No comments yet.")
				return nil
			}
			for _, c := range st.CommentsNewestFirst() {
				fmt.Printf("  %s %s\n    %s\n",
					color.YellowString(c.User),
					color.HiBlackString(c.CreatedAt.Local().Format("2006-01-02 15:04")),
					c.Text,
				)
			}
			return nil
		},
	}
}

func newShareCmd() *cobra.Command {
	var platform string

	cmd := &cobra.Command{
		Use:               "share <id>",
		Short:             "Print share links for a story",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := lib.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			links := catalog.ShareLinks(cfg.Library.BaseURL, *st)

			if platform != "" {
				link, found := links[catalog.SharePlatform(platform)]
				if !found {
					return fmt.Errorf("unknown platform %q", platform)
				}
				fmt.Println(link)
				return nil
			}

			names := make([]string, 0, len(links))
			for p := range links {
				names = append(names, string(p))
			}
			sort.Strings(names)
			header("Share %q", st.Title)
			for _, p := range names {
				printField(p, links[catalog.SharePlatform(p)])
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&platform, "platform", "", "Print one link: whatsapp, twitter, email or copy")
	return cmd
}

func newDeleteCmd() *cobra.Command {
	var skipConfirm bool

	cmd := &cobra.Command{
		Use:               "delete <id>",
		Short:             "Delete a story and its comments (owner only)",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeStoryIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			st, err := lib.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			if !skipConfirm {
				fmt.Println(color.YellowString("⚠ This permanently removes %q with its %d comments.", st.Title, len(st.Comments)))
				if !confirm("Delete it?") {
					return fmt.Errorf("aborted")
				}
			}

			if err := lib.DeleteStory(cmd.Context(), id); err != nil {
				return err
			}
			ok("Deleted %q", st.Title)
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipConfirm, "yes", false, "Skip confirmation prompt")
	return cmd
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the owner dashboard totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lib.Dashboard(cmd.Context())
			if err != nil {
				return err
			}
			header("Library")
			printField("stories", fmt.Sprintf("%d", d.Stats.Stories))
			printField("views", fmt.Sprintf("%d", d.Stats.Views))
			printField("likes", fmt.Sprintf("%d", d.Stats.Likes))
			printField("dislikes", fmt.Sprintf("%d", d.Stats.Dislikes))
			printField("downloads", fmt.Sprintf("%d", d.Stats.Downloads))
			printField("comments", fmt.Sprintf("%d", d.Stats.Comments))

			counts := map[string]int{}
			for _, st := range d.Stories {
				counts[catalog.CategoryLabel(st.Category, d.Categories)]++
			}
			fmt.Println()
			header("Categories")
			for _, c := range d.Categories {
				printField(c, fmt.Sprintf("%d", counts[c]))
			}
			return nil
		},
	}
}
