package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/models"
)

func monetizedArticle(id string) models.Article {
	return models.Article{
		ArticleID:        id,
		URL:              "https://news.example.com/" + id,
		Title:            "Markets rally on rate cut hopes",
		Topic:            "finance",
		Status:           models.StatusMonetized,
		ContentMonetized: "## Overview\n\nMarkets rallied.\n\n[Discover](https://hop.clickbank.net/?cc&tid=a1)",
	}
}

func TestPublisher_PublishesAndCaches(t *testing.T) {
	store := newFakeStore(monetizedArticle("a1"))
	cache := newFakePublicationStore()
	images := &fakeImageGenerator{data: map[string][]byte{"image-model": []byte("jpegdata")}}
	target := &fakePublishTarget{}

	svc := NewPublisherService(store, cache, images, []string{"image-model"}, target, zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.Equal(t, 42, got.WPPostID)
	assert.NotEmpty(t, got.WPPermalink)
	assert.Equal(t, 1, target.mediaUploads)

	entry, err := cache.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, 42, entry.WPPostID)
}

func TestPublisher_CacheHitRepairsStatusWithoutRepublishing(t *testing.T) {
	store := newFakeStore(monetizedArticle("a1"))
	cache := newFakePublicationStore()
	require.NoError(t, cache.Put(context.Background(), models.PublicationEntry{
		ArticleID: "a1",
		WPPostID:  7,
		Permalink: "https://blog.example.com/already-there",
	}))
	target := &fakePublishTarget{}

	svc := NewPublisherService(store, cache, &fakeImageGenerator{}, nil, target, zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.Equal(t, 7, got.WPPostID)
	assert.Equal(t, "https://blog.example.com/already-there", got.WPPermalink)
	assert.Empty(t, target.posts, "a cached publication must never create a second post")
}

func TestPublisher_ImageFailurePublishesWithoutOne(t *testing.T) {
	store := newFakeStore(monetizedArticle("a1"))
	cache := newFakePublicationStore()
	images := &fakeImageGenerator{} // every model fails
	target := &fakePublishTarget{}

	svc := NewPublisherService(store, cache, images, []string{"image-model"}, target, zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusPublished, got.Status)
	assert.Zero(t, target.mediaUploads)
	assert.Len(t, target.posts, 1)
}

func TestPublisher_PostFailureLeavesArticleForRetry(t *testing.T) {
	store := newFakeStore(monetizedArticle("a1"))
	cache := newFakePublicationStore()
	target := &fakePublishTarget{postErr: assert.AnError}

	svc := NewPublisherService(store, cache, &fakeImageGenerator{}, nil, target, zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusMonetized, got.Status)

	entry, err := cache.Get(context.Background(), "a1")
	require.NoError(t, err)
	assert.Nil(t, entry, "a failed post must not poison the publication cache")
}
