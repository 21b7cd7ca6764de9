package operations

import (
	"context"
	"io"
)

// SetProfileImage re-encodes an image as the owner's profile photo and
// notifies every session subscriber.
func (l *Library) SetProfileImage(ctx context.Context, r io.Reader) (string, error) {
	if err := l.requireOwner(); err != nil {
		return "", err
	}
	uri, err := l.covers.FromImage(r)
	if err != nil {
		return "", err
	}
	if err := l.session.SetProfileImage(ctx, uri); err != nil {
		return "", err
	}
	return uri, nil
}
