package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

func affiliateTestConfig() *config.AffiliateConfig {
	return &config.AffiliateConfig{
		Categories: map[string]string{
			"finance": "business-and-investing",
			"health":  "health-and-fitness",
		},
		DefaultCategory: "self-help",
	}
}

func rewrittenArticle(id, topic, content string) models.Article {
	return models.Article{
		ArticleID:        id,
		URL:              "https://news.example.com/" + id,
		Title:            "Crypto strategies for a volatile market",
		Topic:            topic,
		Status:           models.StatusRewritten,
		ContentRewritten: content,
	}
}

func TestLinker_InsertsRelevantProducts(t *testing.T) {
	content := "Crypto markets move fast.\n\nBitcoin dominates headlines.\n\nInvesting requires discipline.\n\nDiversify your portfolio."
	store := newFakeStore(rewrittenArticle("a1", "finance", content))
	catalog := &fakeCatalog{products: map[string][]affiliate.Product{
		"business-and-investing": {
			{Name: "Crypto Course", ReferralLink: "https://hop.clickbank.net/?cc&tid={article_id}", Keywords: []string{"crypto", "bitcoin"}},
			{Name: "Yoga Mat", ReferralLink: "https://hop.clickbank.net/?ym&tid={article_id}", Keywords: []string{"yoga"}},
		},
	}}

	svc := NewLinkerService(store, catalog, affiliate.NewSeededInserter(1), affiliateTestConfig(), zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusMonetized, got.Status)
	assert.Equal(t, []string{"Crypto Course"}, []string(got.ProductsLinked))
	assert.Contains(t, got.ContentMonetized, "Crypto Course")
	assert.Contains(t, got.ContentMonetized, "tid=a1")
	assert.NotContains(t, got.ContentMonetized, "Yoga Mat")
	assert.Equal(t, []string{"business-and-investing"}, catalog.categories)
}

func TestLinker_UnknownTopicUsesDefaultCategory(t *testing.T) {
	store := newFakeStore(rewrittenArticle("a1", "gardening", "Plant care basics."))
	catalog := &fakeCatalog{products: map[string][]affiliate.Product{}}

	svc := NewLinkerService(store, catalog, affiliate.NewSeededInserter(1), affiliateTestConfig(), zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	assert.Equal(t, []string{"self-help"}, catalog.categories)
}

func TestLinker_NoRelevantProductsStillAdvances(t *testing.T) {
	content := "Quarterly earnings beat expectations across the board."
	store := newFakeStore(rewrittenArticle("a1", "finance", content))
	catalog := &fakeCatalog{products: map[string][]affiliate.Product{
		"business-and-investing": {
			{Name: "Yoga Mat", ReferralLink: "https://example.com/{article_id}", Keywords: []string{"yoga"}},
		},
	}}

	svc := NewLinkerService(store, catalog, affiliate.NewSeededInserter(1), affiliateTestConfig(), zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusMonetized, got.Status, "zero links is a degraded success, not a failure")
	assert.Equal(t, content, got.ContentMonetized)
	assert.Empty(t, got.ProductsLinked)
}

func TestLinker_CatalogErrorLeavesArticleForRetry(t *testing.T) {
	store := newFakeStore(rewrittenArticle("a1", "finance", "Some content."))
	catalog := &fakeCatalog{err: assert.AnError}

	svc := NewLinkerService(store, catalog, affiliate.NewSeededInserter(1), affiliateTestConfig(), zap.NewNop())
	require.NoError(t, svc.Run(context.Background()))

	got := store.get("a1")
	assert.Equal(t, models.StatusRewritten, got.Status)
}
