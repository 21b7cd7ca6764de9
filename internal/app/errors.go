package app

import (
	"errors"
	"fmt"

	"github.com/blackwell-systems/storyshelf/internal/catalog"
	"github.com/blackwell-systems/storyshelf/internal/cover"
	"github.com/blackwell-systems/storyshelf/internal/ingest"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/blackwell-systems/storyshelf/internal/session"
	"github.com/blackwell-systems/storyshelf/internal/store"
	"github.com/blackwell-systems/storyshelf/internal/tui"
	"github.com/blackwell-systems/storyshelf/internal/viewer"
)

// userMessage turns an error into something the person at the terminal can
// act on. Unknown errors are shown as they are.
func userMessage(err error) string {
	var (
		parseErr *cover.ParseError
		valErr   *catalog.ValidationError
		storeErr *store.StorageError
	)
	switch {
	case errors.As(err, &valErr) && valErr.Reason != "":
		return fmt.Sprintf("please fix %v: %s", valErr.Fields, valErr.Reason)
	case errors.As(err, &valErr):
		return fmt.Sprintf("please fill in: %v", valErr.Fields)
	case errors.Is(err, pdfrender.ErrRendererUnavailable):
		return "cannot render PDF pages on this machine\n" + pdfrender.GetPopplerInstallHint()
	case errors.As(err, &parseErr):
		return "the file could not be read as a PDF; check that it is a valid, unencrypted PDF"
	case errors.Is(err, viewer.ErrOpen):
		return "this story's document could not be opened"
	case errors.Is(err, store.ErrNotFound):
		return "no such story; run 'storyshelf list' to see story ids"
	case errors.Is(err, session.ErrCredentials):
		return "credentials incorrect"
	case errors.Is(err, session.ErrOwnerRequired):
		return "this needs the library owner; run 'storyshelf login --owner' first"
	case errors.Is(err, ingest.ErrTooLarge):
		return fmt.Sprintf("the file is larger than the %d MiB limit", ingest.MaxSize>>20)
	case errors.As(err, &storeErr):
		return fmt.Sprintf("the library database failed during %s; nothing was changed (%v)", storeErr.Op, storeErr.Err)
	case errors.Is(err, tui.ErrCancelled):
		return "cancelled"
	}
	return err.Error()
}
