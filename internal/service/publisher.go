package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/pkg/fallback"
)

// PublisherService is the publication stage: featured image through the
// image fallback chain, markdown rendering, and the WordPress post. The
// publication cache makes the external write idempotent: a crash between
// post creation and the status write is repaired from the cache on the
// next cycle instead of publishing twice.
type PublisherService struct {
	store       ContentStore
	cache       PublicationStore
	images      ImageGenerator
	imageModels []string
	target      PublishTarget
	logger      *zap.Logger
}

func NewPublisherService(store ContentStore, cache PublicationStore, images ImageGenerator, imageModels []string, target PublishTarget, logger *zap.Logger) *PublisherService {
	return &PublisherService{
		store:       store,
		cache:       cache,
		images:      images,
		imageModels: imageModels,
		target:      target,
		logger:      logger,
	}
}

func (s *PublisherService) Name() string { return "publish" }

func (s *PublisherService) Run(ctx context.Context) error {
	articles, err := s.store.ArticlesByStatus(ctx, models.StatusMonetized)
	if err != nil {
		return err
	}

	s.logger.Info("Articles pending publication", zap.Int("count", len(articles)))

	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.processArticle(ctx, article); err != nil {
			s.logger.Error("Failed to publish article",
				zap.String("article_id", article.ArticleID),
				zap.String("title", article.Title),
				zap.Error(err))
		}
	}

	return nil
}

func (s *PublisherService) processArticle(ctx context.Context, article models.Article) error {
	entry, err := s.cache.Get(ctx, article.ArticleID)
	if err != nil {
		return err
	}
	if entry != nil {
		// The post already exists; only the status write was lost.
		s.logger.Info("Publication cache hit, repairing status",
			zap.String("article_id", article.ArticleID),
			zap.String("permalink", entry.Permalink))
		return s.store.MarkPublished(ctx, article.ArticleID, entry.WPPostID, entry.Permalink)
	}

	mediaID := s.featuredImage(ctx, article)

	html, err := RenderHTML(article.ContentMonetized)
	if err != nil {
		return err
	}

	postID, permalink, err := s.target.CreatePost(ctx, article.Title, html, mediaID)
	if err != nil {
		// External write failure: status unchanged, retried next cycle.
		return err
	}

	if err := s.cache.Put(ctx, models.PublicationEntry{
		ArticleID: article.ArticleID,
		WPPostID:  postID,
		Permalink: permalink,
	}); err != nil {
		s.logger.Error("Failed to record publication cache entry",
			zap.String("article_id", article.ArticleID),
			zap.Error(err))
	}

	s.logger.Info("Article published",
		zap.String("article_id", article.ArticleID),
		zap.String("permalink", permalink))

	return s.store.MarkPublished(ctx, article.ArticleID, postID, permalink)
}

// featuredImage tries the image model chain and uploads the result.
// Returns 0 when no image could be produced or uploaded; the post is
// published without one.
func (s *PublisherService) featuredImage(ctx context.Context, article models.Article) int {
	if len(s.imageModels) == 0 {
		return 0
	}

	prompt := fmt.Sprintf(
		"A professional, relevant image for a blog article about %q titled %q. Style: high-quality photography.",
		article.Topic, article.Title)

	providers := make([]fallback.Provider[[]byte], len(s.imageModels))
	for i, model := range s.imageModels {
		providers[i] = fallback.Provider[[]byte]{
			Name: model,
			Call: func(ctx context.Context) ([]byte, error) {
				return s.images.GenerateImage(ctx, model, prompt)
			},
		}
	}

	chain := fallback.New(s.logger, providers, func(data []byte) bool {
		return len(data) > 0
	})

	result, err := chain.Execute(ctx)
	if err != nil {
		s.logger.Warn("No featured image generated, publishing without one",
			zap.String("article_id", article.ArticleID),
			zap.Error(err))
		return 0
	}

	filename := fmt.Sprintf("featured_%d.jpg", time.Now().Unix())
	mediaID, err := s.target.UploadMedia(ctx, result.Value, filename)
	if err != nil {
		s.logger.Warn("Failed to upload featured image, publishing without one",
			zap.String("article_id", article.ArticleID),
			zap.Error(err))
		return 0
	}

	return mediaID
}
