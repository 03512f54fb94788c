package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/config"
	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

// LinkerService is the monetization stage: it matches catalog products to
// the rewritten article by keyword relevance and weaves referral passages
// into the text. Finding no relevant product is a degraded success, the
// article still advances.
type LinkerService struct {
	store    ContentStore
	catalog  Catalog
	inserter *affiliate.Inserter
	config   *config.AffiliateConfig
	logger   *zap.Logger
}

func NewLinkerService(store ContentStore, catalog Catalog, inserter *affiliate.Inserter, cfg *config.AffiliateConfig, logger *zap.Logger) *LinkerService {
	return &LinkerService{
		store:    store,
		catalog:  catalog,
		inserter: inserter,
		config:   cfg,
		logger:   logger,
	}
}

func (s *LinkerService) Name() string { return "monetize" }

func (s *LinkerService) Run(ctx context.Context) error {
	articles, err := s.store.ArticlesByStatus(ctx, models.StatusRewritten)
	if err != nil {
		return err
	}

	s.logger.Info("Articles pending monetization", zap.Int("count", len(articles)))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processArticle(ctx, article); err != nil {
			s.logger.Error("Failed to monetize article",
				zap.String("article_id", article.ArticleID),
				zap.String("title", article.Title),
				zap.Error(err))
		}
	}

	return nil
}

func (s *LinkerService) processArticle(ctx context.Context, article models.Article) error {
	category := s.categoryFor(article.Topic)

	products, err := s.catalog.ListProducts(ctx, category)
	if err != nil {
		// Catalog unavailable: leave the article rewritten for retry.
		return err
	}

	selected := affiliate.SelectRelevant(article.ContentRewritten, article.Title, products)
	monetized := s.inserter.InsertLinks(article.ContentRewritten, selected, article.ArticleID)

	names := make([]string, len(selected))
	for i, product := range selected {
		names[i] = product.Name
	}

	s.logger.Info("Article monetized",
		zap.String("article_id", article.ArticleID),
		zap.String("category", category),
		zap.Int("links", len(selected)))

	return s.store.MarkMonetized(ctx, article.ArticleID, monetized, names)
}

func (s *LinkerService) categoryFor(topic string) string {
	if category, ok := s.config.Categories[strings.ToLower(strings.TrimSpace(topic))]; ok {
		return category
	}
	return s.config.DefaultCategory
}
