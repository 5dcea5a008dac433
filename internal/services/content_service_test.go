package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalleryService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewGalleryService(env.repo, env.db, env.logger, env.validator)
	ctx := context.Background()

	_, err := svc.Add(ctx, &GalleryItemRequest{ImageURL: "https://cdn.test/a.png", Description: "Campus"}, outsider)
	assertPermissionError(t, err)

	item, err := svc.Add(ctx, &GalleryItemRequest{ImageURL: "https://cdn.test/a.png", Description: "  Campus "}, helperAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Campus", item.Description)

	_, err = svc.Add(ctx, &GalleryItemRequest{ImageURL: "https://cdn.test/b.png", Description: "Campus"}, helperAdmin)
	assert.ErrorIs(t, err, ErrGalleryItemExists)

	_, err = svc.Add(ctx, &GalleryItemRequest{ImageURL: "not-a-url", Description: "Bad"}, helperAdmin)
	var ve ValidationErrors
	assert.ErrorAs(t, err, &ve)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, svc.Delete(ctx, "Campus", helperAdmin))
	assert.ErrorIs(t, svc.Delete(ctx, "Campus", helperAdmin), ErrGalleryItemNotFound)
}

func TestNewsService(t *testing.T) {
	env := newTestEnv(t)
	svc := NewNewsService(env.repo, env.db, env.logger, env.validator)
	ctx := context.Background()

	fixed := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	svc.(*newsService).now = func() time.Time { return fixed }

	created, err := svc.Create(ctx, &NewsCreateRequest{Title: "Admissions open", Content: "Apply now"}, helperAdmin)
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(fixed))

	backdated := fixed.Add(-72 * time.Hour)
	_, err = svc.Create(ctx, &NewsCreateRequest{Title: "Old notice", Content: "Archived", CreatedAt: &backdated}, helperAdmin)
	require.NoError(t, err)

	_, err = svc.Create(ctx, &NewsCreateRequest{Title: "Admissions open", Content: "dup"}, helperAdmin)
	assert.ErrorIs(t, err, ErrNewsItemExists)

	_, err = svc.Create(ctx, &NewsCreateRequest{Title: "x", Content: "y"}, outsider)
	assertPermissionError(t, err)

	edited, err := svc.Edit(ctx, "Admissions open", &NewsEditRequest{Content: "Apply before March"}, helperAdmin)
	require.NoError(t, err)
	assert.Equal(t, "Apply before March", edited.Content)

	_, err = svc.Edit(ctx, "Missing", &NewsEditRequest{Content: "x"}, helperAdmin)
	assert.ErrorIs(t, err, ErrNewsItemNotFound)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Admissions open", items[0].Title)
	assert.Equal(t, "Old notice", items[1].Title)

	require.NoError(t, svc.Delete(ctx, "Old notice", helperAdmin))
	assert.ErrorIs(t, svc.Delete(ctx, "Old notice", helperAdmin), ErrNewsItemNotFound)
}

func TestNewsService_EditRefreshesCachedList(t *testing.T) {
	env, mr := newCachedTestEnv(t)
	svc := NewNewsService(env.repo, env.db, env.logger, env.validator)
	ctx := context.Background()

	_, err := svc.Create(ctx, &NewsCreateRequest{Title: "Fees 2025/26", Content: "Draft"}, helperAdmin)
	require.NoError(t, err)

	items, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, mr.Exists("content:news:all"))

	_, err = svc.Edit(ctx, "Fees 2025/26", &NewsEditRequest{Content: "Final"}, helperAdmin)
	require.NoError(t, err)
	assert.False(t, mr.Exists("content:news:all"))

	items, err = svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Final", items[0].Content)

	require.NoError(t, svc.Delete(ctx, "Fees 2025/26", helperAdmin))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
