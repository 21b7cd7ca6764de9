package app

import (
	"fmt"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/spf13/cobra"
)

func newCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "categories",
		Aliases: []string{"cats"},
		Short:   "List and manage categories",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cats, err := lib.Categories(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range cats {
				fmt.Println(c)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add a category (owner only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := lib.AddCategory(cmd.Context(), args[0]); err != nil {
					return err
				}
				ok("Added category %q", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a category; its stories move to " + catalog.FallbackCategory + " (owner only)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := lib.DeleteCategory(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				ok("Deleted category %q (%d stories moved to %s)", args[0], n, catalog.FallbackCategory)
				return nil
			},
		},
		&cobra.Command{
			Use:   "rename <old> <new>",
			Short: "Rename a category and retag its stories (owner only)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				n, err := lib.RenameCategory(cmd.Context(), args[0], args[1])
				if err != nil {
					return err
				}
				ok("Renamed %q to %q (%d stories)", args[0], args[1], n)
				return nil
			},
		},
	)
	return cmd
}
