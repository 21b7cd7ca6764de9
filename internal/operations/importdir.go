package operations

import (
	"context"
	"errors"
	"sync"

	"github.com/blackwell-systems/storyshelf/internal/importer"
	"github.com/blackwell-systems/storyshelf/internal/ingest"
	"github.com/blackwell-systems/storyshelf/internal/pdfrender"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ImportOptions fill fields a PDF's own metadata leaves blank.
type ImportOptions struct {
	Author      string
	Category    string
	Description string

	// Progress, when set, is called after each file with the number of
	// files finished so far. Calls may come from several goroutines.
	Progress func(done, total int)
}

// ImportItem is one file ImportDir looked at.
type ImportItem struct {
	Path    string
	StoryID string
	Title   string
	Err     error
}

// ImportReport groups the outcome of ImportDir per file.
type ImportReport struct {
	Imported []ImportItem
	Skipped  []ImportItem // already imported, by content hash
	Failed   []ImportItem
}

// ImportDir uploads every PDF under dir. Files whose content hash is in the
// import ledger, or that duplicate a file already imported in the same run,
// are skipped and carry the existing story id. When an upload fails, the
// next file with the same content is tried in its place. A failing file is reported and does not stop the others; only
// a cancelled context aborts the run.
func (l *Library) ImportDir(ctx context.Context, dir string, opts ImportOptions) (*ImportReport, error) {
	if err := l.requireOwner(); err != nil {
		return nil, err
	}
	files, err := importer.Scan(dir, []string{"pdf"})
	if err != nil {
		return nil, err
	}

	seen := map[string]importer.LedgerEntry{}
	if l.ledger != nil {
		if seen, err = l.ledger.Index(); err != nil {
			return nil, err
		}
	}

	var (
		mu     sync.Mutex
		report ImportReport
	)
	done := 0
	record := func(list *[]ImportItem, it ImportItem) {
		mu.Lock()
		*list = append(*list, it)
		done++
		n := done
		mu.Unlock()
		if opts.Progress != nil {
			opts.Progress(n, len(files))
		}
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)

	// A hash being uploaded is pending until its upload finishes. Files with
	// the same content wait for it, and take over when it fails.
	pending := map[string]chan struct{}{}
	claim := func(sha string) (importer.LedgerEntry, bool, error) {
		for {
			mu.Lock()
			if prev, ok := seen[sha]; ok {
				mu.Unlock()
				return prev, false, nil
			}
			wait, busy := pending[sha]
			if !busy {
				pending[sha] = make(chan struct{})
				mu.Unlock()
				return importer.LedgerEntry{}, true, nil
			}
			mu.Unlock()
			select {
			case <-wait:
			case <-gctx.Done():
				return importer.LedgerEntry{}, false, gctx.Err()
			}
		}
	}
	release := func(sha string, entry *importer.LedgerEntry) {
		mu.Lock()
		if entry != nil {
			seen[sha] = *entry
		}
		wait := pending[sha]
		delete(pending, sha)
		mu.Unlock()
		close(wait)
	}

	for _, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item := ImportItem{Path: f.Path}

			src, err := ingest.Resolve(f.Path)
			if err != nil {
				item.Err = err
				record(&report.Failed, item)
				return nil
			}
			payload, err := src.Load(0)
			if err != nil {
				item.Err = err
				record(&report.Failed, item)
				return nil
			}
			prev, fresh, err := claim(payload.SHA256)
			if err != nil {
				return err
			}
			if !fresh {
				item.StoryID = prev.StoryID
				record(&report.Skipped, item)
				return nil
			}

			req := importRequest(f, payload.Data, opts)
			item.Title = req.Title
			st, err := l.Upload(gctx, req)
			if err != nil {
				release(payload.SHA256, nil)
				if gctx.Err() != nil && errors.Is(err, gctx.Err()) {
					return err
				}
				item.Err = err
				record(&report.Failed, item)
				return nil
			}
			item.StoryID = st.ID
			entry := importer.LedgerEntry{SHA256: payload.SHA256, Source: f.Path, StoryID: st.ID}
			release(payload.SHA256, &entry)

			if l.ledger != nil {
				if err := l.ledger.Append(entry); err != nil {
					l.log.WithError(err).WithField("file", f.Rel).Warn("could not record import")
				}
			}
			record(&report.Imported, item)
			return nil
		})
	}

	err = g.Wait()
	l.log.WithFields(logrus.Fields{
		"dir":      dir,
		"imported": len(report.Imported),
		"skipped":  len(report.Skipped),
		"failed":   len(report.Failed),
	}).Info("directory import finished")
	return &report, err
}

func importRequest(f importer.FileEntry, data []byte, opts ImportOptions) UploadRequest {
	meta := pdfrender.ExtractMetadata(data)
	req := UploadRequest{
		Title:       meta.Title,
		Author:      meta.Author,
		Description: meta.Subject,
		Category:    opts.Category,
		Data:        data,
	}
	if req.Title == "" {
		req.Title = importer.TitleFromName(f.Rel)
	}
	if req.Author == "" {
		req.Author = opts.Author
	}
	if req.Description == "" {
		req.Description = opts.Description
	}
	return req
}
