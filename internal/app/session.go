package app

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/util"
	"github.com/spf13/cobra"
)

func newLoginCmd() *cobra.Command {
	var (
		asOwner bool
		email   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as a visitor, or as the owner with --owner",
		Long: `Visitors can browse, read, like, download and comment. The owner can
also upload and delete stories, manage categories and see the dashboard.

The owner secret is read from a prompt, or from one line of stdin when
not on a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !asOwner {
				sess, err := state.LoginVisitor()
				if err != nil {
					return err
				}
				ok("Logged in as %s", sess.Name)
				return nil
			}

			if !cfg.OwnerConfigured() {
				return fmt.Errorf("no owner secret is set; export %s first", cfg.Owner.SecretEnv)
			}
			if email == "" {
				email = cfg.Owner.Email
			}
			secret, err := readSecret(cmd, "Secret for "+email)
			if err != nil {
				return err
			}
			sess, err := state.LoginOwner(cmd.Context(), session.Credentials{Email: email, Secret: secret})
			if err != nil {
				return err
			}
			ok("Logged in as %s (owner)", sess.Name)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asOwner, "owner", false, "Log in as the library owner")
	cmd.Flags().StringVar(&email, "email", "", "Owner email (default: owner.email from config)")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := state.Logout(); err != nil {
				return err
			}
			ok("Logged out")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := state.Current()
			if sess.Role == session.Anonymous {
				fmt.Println("Not logged in. Run 'storyshelf login'.")
				return nil
			}
			printField("name", sess.Name)
			printField("email", sess.Email)
			printField("role", sess.Role.String())
			return nil
		},
	}
}

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Show the owner profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := state.ProfileImage(cmd.Context())
			if err != nil {
				return err
			}
			header("Owner")
			printField("name", cfg.Owner.Name)
			printField("email", cfg.Owner.Email)
			if len(img) > 80 {
				img = img[:77] + "..."
			}
			printField("photo", img)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set-image <image>",
		Short: "Replace the owner photo (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = f.Close() }()

			events, unsubscribe := state.Subscribe(1)
			defer unsubscribe()
			if _, err := lib.SetProfileImage(cmd.Context(), f); err != nil {
				return err
			}
			if ev, found := lastEvent(events, session.EventProfileImage); found {
				ok("Profile photo updated for %s (%s)", ev.Session.Name, util.HumanBytes(int64(len(ev.ProfileImage))))
				return nil
			}
			ok("Profile photo updated")
			return nil
		},
	})
	return cmd
}

// lastEvent drains events without blocking and returns the newest one of
// the given kind.
func lastEvent(events <-chan session.Event, kind session.EventKind) (session.Event, bool) {
	var (
		last  session.Event
		found bool
	)
	for {
		select {
		case ev, open := <-events:
			if !open {
				return last, found
			}
			if ev.Kind == kind {
				last, found = ev, true
			}
		default:
			return last, found
		}
	}
}
