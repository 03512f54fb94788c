package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/pkg/fallback"
	"github.com/mlefebvre/plume/pkg/util"
)

const rewriteSystemPrompt = "You are an expert SEO copywriter."

// minRewriteLength: anything shorter than this is a refusal or a stub, not
// a usable article.
const minRewriteLength = 200

// RewriterService is the rewrite stage: it turns raw snippets into full
// articles through the model fallback chain, with a durable per-input
// cache in front so identical input never pays for a second generation.
type RewriterService struct {
	store     ContentStore
	cache     RewriteStore
	generator TextGenerator
	models    []string
	logger    *zap.Logger
}

func NewRewriterService(store ContentStore, cache RewriteStore, generator TextGenerator, models []string, logger *zap.Logger) *RewriterService {
	return &RewriterService{
		store:     store,
		cache:     cache,
		generator: generator,
		models:    models,
		logger:    logger,
	}
}

func (s *RewriterService) Name() string { return "rewrite" }

func (s *RewriterService) Run(ctx context.Context) error {
	articles, err := s.store.ArticlesByStatus(ctx, models.StatusCollected)
	if err != nil {
		return err
	}

	s.logger.Info("Articles pending rewrite", zap.Int("count", len(articles)))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processArticle(ctx, article); err != nil {
			s.logger.Error("Failed to rewrite article",
				zap.String("article_id", article.ArticleID),
				zap.String("title", article.Title),
				zap.Error(err))
		}
	}

	return nil
}

func (s *RewriterService) processArticle(ctx context.Context, article models.Article) error {
	hash := util.ContentHash(article.ContentRaw, article.Title, article.Topic)

	entry, err := s.cache.Get(ctx, hash)
	if err != nil {
		return err
	}
	if entry != nil {
		if entry.Success {
			s.logger.Info("Rewrite cache hit",
				zap.String("article_id", article.ArticleID),
				zap.String("model", entry.ModelUsed))
			return s.store.MarkRewritten(ctx, article.ArticleID, entry.RewrittenText)
		}
		// A cached failure means every model already refused this input;
		// do not retry until the entry is invalidated.
		s.logger.Warn("Cached rewrite failure, not retrying",
			zap.String("article_id", article.ArticleID))
		return s.store.MarkRewriteFailed(ctx, article.ArticleID,
			fmt.Sprintf("cached rewrite failure (%s)", entry.ModelUsed))
	}

	chain := fallback.New(s.logger, s.providers(article), func(text string) bool {
		return len(strings.TrimSpace(text)) > minRewriteLength
	})

	result, err := chain.Execute(ctx)
	if errors.Is(err, fallback.ErrExhausted) {
		if cacheErr := s.cache.Put(ctx, models.RewriteEntry{
			ContentHash: hash,
			ModelUsed:   "all_failed",
			Success:     false,
		}); cacheErr != nil {
			s.logger.Error("Failed to cache rewrite failure", zap.Error(cacheErr))
		}
		return s.store.MarkRewriteFailed(ctx, article.ArticleID, "all rewrite models failed")
	}
	if err != nil {
		// Cancellation or another non-terminal error: leave the article
		// collected so the next cycle retries.
		return err
	}

	if err := s.cache.Put(ctx, models.RewriteEntry{
		ContentHash:   hash,
		RewrittenText: result.Value,
		ModelUsed:     result.Provider,
		Success:       true,
	}); err != nil {
		return err
	}

	s.logger.Info("Article rewritten",
		zap.String("article_id", article.ArticleID),
		zap.String("model", result.Provider))
	return s.store.MarkRewritten(ctx, article.ArticleID, result.Value)
}

func (s *RewriterService) providers(article models.Article) []fallback.Provider[string] {
	prompt := buildRewritePrompt(article)

	providers := make([]fallback.Provider[string], len(s.models))
	for i, model := range s.models {
		providers[i] = fallback.Provider[string]{
			Name: model,
			Call: func(ctx context.Context) (string, error) {
				return s.generator.GenerateText(ctx, model, rewriteSystemPrompt, prompt)
			},
		}
	}
	return providers
}

func buildRewritePrompt(article models.Article) string {
	return fmt.Sprintf(`Completely rewrite this article about %s. Make it unique, informative and SEO-optimized.

Original title: %s
Original content to rewrite: %s

Key instructions:
- Style: professional but engaging.
- Structure: an introduction, several H2 subheadings, and a conclusion.
- Do not merely paraphrase; bring a fresh perspective.`,
		article.Topic, article.Title, article.ContentRaw)
}
