package operations

import "context"

// Categories lists category names in display order.
func (l *Library) Categories(ctx context.Context) ([]string, error) {
	return l.docs.ListCategories(ctx)
}

// AddCategory creates a category. Adding an existing name is a no-op.
func (l *Library) AddCategory(ctx context.Context, name string) error {
	if err := l.requireOwner(); err != nil {
		return err
	}
	// Seed defaults first so the new name lands after them.
	if _, err := l.docs.ListCategories(ctx); err != nil {
		return err
	}
	return l.docs.PutCategory(ctx, name)
}

// DeleteCategory removes a category and moves its stories to the fallback.
// It returns how many stories moved.
func (l *Library) DeleteCategory(ctx context.Context, name string) (int, error) {
	if err := l.requireOwner(); err != nil {
		return 0, err
	}
	return l.docs.DeleteCategory(ctx, name)
}

// RenameCategory renames a category and re-tags its stories.
func (l *Library) RenameCategory(ctx context.Context, oldName, newName string) (int, error) {
	if err := l.requireOwner(); err != nil {
		return 0, err
	}
	return l.docs.RenameCategory(ctx, oldName, newName)
}
