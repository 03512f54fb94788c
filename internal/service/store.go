package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlefebvre/plume/internal/models"
)

// GormStore is the Postgres-backed content store. It also persists the
// optimizer's topic priorities, which share the same database.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) ArticlesByStatus(ctx context.Context, status models.ArticleStatus) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id").
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to query articles by status %s: %w", status, err)
	}
	return articles, nil
}

func (s *GormStore) ArticlesAwaitingPromotion(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).
		Where("status = ? AND promotion_status IS NULL", models.StatusPublished).
		Order("id").
		Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to query articles awaiting promotion: %w", err)
	}
	return articles, nil
}

// CreateArticle mints the external identifier and inserts the row. A URL
// collision is a no-op so repeated collection cycles stay idempotent.
func (s *GormStore) CreateArticle(ctx context.Context, article *models.Article) error {
	if article.ArticleID == "" {
		article.ArticleID = uuid.NewString()
	}
	if article.Status == "" {
		article.Status = models.StatusCollected
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "url"}}, DoNothing: true}).
		Create(article).Error; err != nil {
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

func (s *GormStore) MarkRewritten(ctx context.Context, articleID, content string) error {
	return s.transition(ctx, articleID, models.StatusRewritten, map[string]interface{}{
		"content_rewritten": content,
		"last_error":        "",
	})
}

func (s *GormStore) MarkRewriteFailed(ctx context.Context, articleID, reason string) error {
	return s.transition(ctx, articleID, models.StatusErrorRewrite, map[string]interface{}{
		"last_error": reason,
	})
}

func (s *GormStore) MarkMonetized(ctx context.Context, articleID, content string, products []string) error {
	return s.transition(ctx, articleID, models.StatusMonetized, map[string]interface{}{
		"content_monetized": content,
		"products_linked":   models.StringArray(products),
	})
}

func (s *GormStore) MarkPublished(ctx context.Context, articleID string, postID int, permalink string) error {
	return s.transition(ctx, articleID, models.StatusPublished, map[string]interface{}{
		"wp_post_id":   postID,
		"wp_permalink": permalink,
	})
}

// MarkPromoted flips the promotion marker. It is not a status transition;
// published stays the article's terminal status.
func (s *GormStore) MarkPromoted(ctx context.Context, articleID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("article_id = ? AND status = ? AND promotion_status IS NULL", articleID, models.StatusPublished).
		Update("promotion_status", models.PromotionDone)
	if result.Error != nil {
		return fmt.Errorf("failed to mark article %s promoted: %w", articleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("article %s is not awaiting promotion", articleID)
	}
	return nil
}

// transition validates the edge against the state machine and performs the
// guarded update. The status predicate in the WHERE clause keeps the write
// atomic even if another process touched the row in between.
func (s *GormStore) transition(ctx context.Context, articleID string, next models.ArticleStatus, fields map[string]interface{}) error {
	var article models.Article
	if err := s.db.WithContext(ctx).
		Where("article_id = ?", articleID).
		First(&article).Error; err != nil {
		return fmt.Errorf("article %s not found: %w", articleID, err)
	}

	if !article.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s (article %s)", ErrInvalidTransition, article.Status, next, articleID)
	}

	fields["status"] = next
	result := s.db.WithContext(ctx).
		Model(&models.Article{}).
		Where("article_id = ? AND status = ?", articleID, article.Status).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("failed to update article %s: %w", articleID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("article %s changed concurrently, transition %s -> %s not applied",
			articleID, article.Status, next)
	}
	return nil
}

// AllArticles backs the read API; not part of the pipeline contract.
func (s *GormStore) AllArticles(ctx context.Context) ([]models.Article, error) {
	var articles []models.Article
	if err := s.db.WithContext(ctx).Order("id DESC").Find(&articles).Error; err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (s *GormStore) ArticleByID(ctx context.Context, articleID string) (*models.Article, error) {
	var article models.Article
	if err := s.db.WithContext(ctx).Where("article_id = ?", articleID).First(&article).Error; err != nil {
		return nil, fmt.Errorf("article %s not found: %w", articleID, err)
	}
	return &article, nil
}

// ReplacePriorities overwrites the topic priority table with a fresh
// ranking from the optimizer.
func (s *GormStore) ReplacePriorities(ctx context.Context, priorities []models.TopicPriority) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.TopicPriority{}).Error; err != nil {
			return fmt.Errorf("failed to clear topic priorities: %w", err)
		}
		if len(priorities) == 0 {
			return nil
		}
		if err := tx.Create(&priorities).Error; err != nil {
			return fmt.Errorf("failed to store topic priorities: %w", err)
		}
		return nil
	})
}

// OrderedTopics implements TopicPrioritizer from the stored ranking.
func (s *GormStore) OrderedTopics(ctx context.Context) ([]string, error) {
	var priorities []models.TopicPriority
	if err := s.db.WithContext(ctx).Order("rank").Find(&priorities).Error; err != nil {
		return nil, fmt.Errorf("failed to load topic priorities: %w", err)
	}
	topics := make([]string, len(priorities))
	for i, p := range priorities {
		topics[i] = p.Topic
	}
	return topics, nil
}
