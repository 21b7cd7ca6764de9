package app

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/cover"
	"github.com/blackwell-systems/storyshelf/internal/ingest"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/store"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/blackwell-systems/storyshelf/internal/viewer"
)

func TestUserMessage(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"validation", &catalog.ValidationError{Fields: []string{"title", "author"}}, "please fill in: [title author]"},
		{"bad text", &catalog.ValidationError{Fields: []string{"title"}, Reason: catalog.ReasonInvalidUTF8}, "please fix [title]: not valid UTF-8"},
		{"renderer", fmt.Errorf("cover: %w", pdfrender.ErrRendererUnavailable), "cannot render PDF pages"},
		{"parse", &cover.ParseError{Err: errors.New("bad xref")}, "could not be read as a PDF"},
		{"viewer", fmt.Errorf("%w: truncated", viewer.ErrOpen), "could not be opened"},
		{"not found", fmt.Errorf("story abc: %w", store.ErrNotFound), "no such story"},
		{"credentials", session.ErrCredentials, "credentials incorrect"},
		{"owner", session.ErrOwnerRequired, "login --owner"},
		{"too large", ingest.ErrTooLarge, "64 MiB"},
		{"storage", &store.StorageError{Op: "put story", Err: errors.New("disk I/O error")}, "failed during put story"},
		{"cancelled", tui.ErrCancelled, "cancelled"},
		{"other", errors.New("something odd"), "something odd"},
	}
	for _, c := range cases {
		got := userMessage(c.err)
		if !strings.Contains(got, c.want) {
			t.Errorf("%s: userMessage() = %q, want it to contain %q", c.name, got, c.want)
		}
	}
}

func TestUserMessage_RendererIncludesInstallHint(t *testing.T) {
	got := userMessage(pdfrender.ErrRendererUnavailable)
	if !strings.Contains(got, pdfrender.GetPopplerInstallHint()) {
		t.Errorf("userMessage() = %q, want the install hint", got)
	}
}
