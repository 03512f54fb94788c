package service

import (
	"context"
	"fmt"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/pkg/fallback"
	"github.com/mlefebvre/plume/pkg/util"
)

const maxTweetRunes = 280

// PromoterService is the promotion stage: it composes a short post for
// each freshly published article and pushes it to the social channel. A
// stage-scoped rate limiter spaces successive posts out; articles the
// limiter defers simply stay unpromoted until the next cycle, so the delay
// never blocks the rest of the pipeline.
type PromoterService struct {
	store      ContentStore
	generator  TextGenerator
	textModels []string
	social     SocialTarget
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewPromoterService(store ContentStore, generator TextGenerator, textModels []string, social SocialTarget, limiter *rate.Limiter, logger *zap.Logger) *PromoterService {
	return &PromoterService{
		store:      store,
		generator:  generator,
		textModels: textModels,
		social:     social,
		limiter:    limiter,
		logger:     logger,
	}
}

func (s *PromoterService) Name() string { return "promote" }

func (s *PromoterService) Run(ctx context.Context) error {
	articles, err := s.store.ArticlesAwaitingPromotion(ctx)
	if err != nil {
		return err
	}

	s.logger.Info("Articles awaiting promotion", zap.Int("count", len(articles)))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}

		if article.WPPermalink == "" {
			s.logger.Warn("Skipping promotion, article has no permalink",
				zap.String("article_id", article.ArticleID),
				zap.String("title", article.Title),
				zap.Error(ErrMissingPermalink))
			continue
		}

		if !s.limiter.Allow() {
			s.logger.Info("Promotion rate limit reached, deferring remaining articles",
				zap.Int("deferred", remaining(articles, article)))
			return nil
		}

		if err := s.promoteArticle(ctx, article); err != nil {
			s.logger.Error("Failed to promote article",
				zap.String("article_id", article.ArticleID),
				zap.Error(err))
		}
	}

	return nil
}

func (s *PromoterService) promoteArticle(ctx context.Context, article models.Article) error {
	text, err := s.composeTweet(ctx, article)
	if err != nil {
		return err
	}

	// The permalink must survive intact, so the generated text absorbs
	// the whole truncation.
	suffix := fmt.Sprintf("\n\nRead the full article here: %s", article.WPPermalink)
	budget := maxTweetRunes - utf8.RuneCountInString(suffix)
	if budget < 0 {
		budget = 0
	}
	message := util.TruncateRunes(text, budget) + suffix

	if _, err := s.social.PostMessage(ctx, message); err != nil {
		// External write failure: promotion_status stays null for retry.
		return err
	}

	s.logger.Info("Article promoted",
		zap.String("article_id", article.ArticleID),
		zap.String("permalink", article.WPPermalink))

	return s.store.MarkPromoted(ctx, article.ArticleID)
}

func (s *PromoterService) composeTweet(ctx context.Context, article models.Article) (string, error) {
	prompt := fmt.Sprintf(
		"Write a short, punchy tweet (280 characters max) for a blog article. Include 2-3 relevant hashtags.\nTitle: %q\nTopic: %s",
		article.Title, article.Topic)

	providers := make([]fallback.Provider[string], len(s.textModels))
	for i, model := range s.textModels {
		providers[i] = fallback.Provider[string]{
			Name: model,
			Call: func(ctx context.Context) (string, error) {
				return s.generator.GenerateText(ctx, model, "", prompt)
			},
		}
	}

	chain := fallback.New(s.logger, providers, func(text string) bool {
		return util.TrimQuotes(text) != ""
	})

	result, err := chain.Execute(ctx)
	if err != nil {
		return "", err
	}
	return util.TrimQuotes(result.Value), nil
}

func remaining(articles []models.Article, current models.Article) int {
	for i, a := range articles {
		if a.ArticleID == current.ArticleID {
			return len(articles) - i
		}
	}
	return 0
}
