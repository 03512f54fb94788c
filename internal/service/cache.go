package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlefebvre/plume/internal/models"
)

// Gorm-backed idempotency caches. All three are durable tables so cached
// outcomes survive restarts; their guarantees are what make the pipeline's
// at-least-once status writes safe.

// GormSeenCache implements SeenCache.
type GormSeenCache struct {
	db *gorm.DB
}

func NewGormSeenCache(db *gorm.DB) *GormSeenCache {
	return &GormSeenCache{db: db}
}

func (c *GormSeenCache) Has(ctx context.Context, url string) (bool, error) {
	var entry models.SeenURL
	err := c.db.WithContext(ctx).Where("url = ?", url).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check seen cache: %w", err)
	}
	return true, nil
}

// Add is append-only; inserting an already-seen URL is a no-op.
func (c *GormSeenCache) Add(ctx context.Context, url, title string) error {
	entry := models.SeenURL{URL: url, Title: title, FirstSeen: time.Now()}
	if err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to add url to seen cache: %w", err)
	}
	return nil
}

// GormRewriteCache implements RewriteStore.
type GormRewriteCache struct {
	db *gorm.DB
}

func NewGormRewriteCache(db *gorm.DB) *GormRewriteCache {
	return &GormRewriteCache{db: db}
}

// Get returns the cached entry, successful or failed, or (nil, nil) on a
// miss. Failed entries are real cache hits: the caller must not retry the
// rewrite automatically.
func (c *GormRewriteCache) Get(ctx context.Context, hash string) (*models.RewriteEntry, error) {
	var entry models.RewriteEntry
	err := c.db.WithContext(ctx).Where("content_hash = ?", hash).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read rewrite cache: %w", err)
	}
	return &entry, nil
}

func (c *GormRewriteCache) Put(ctx context.Context, entry models.RewriteEntry) error {
	if err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "content_hash"}},
			UpdateAll: true,
		}).
		Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write rewrite cache: %w", err)
	}
	return nil
}

// GormPublicationCache implements PublicationStore.
type GormPublicationCache struct {
	db *gorm.DB
}

func NewGormPublicationCache(db *gorm.DB) *GormPublicationCache {
	return &GormPublicationCache{db: db}
}

func (c *GormPublicationCache) Get(ctx context.Context, articleID string) (*models.PublicationEntry, error) {
	var entry models.PublicationEntry
	err := c.db.WithContext(ctx).Where("article_id = ?", articleID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read publication cache: %w", err)
	}
	return &entry, nil
}

// Put overwrites any previous mapping so a republished article records its
// latest post.
func (c *GormPublicationCache) Put(ctx context.Context, entry models.PublicationEntry) error {
	if err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "article_id"}},
			UpdateAll: true,
		}).
		Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to write publication cache: %w", err)
	}
	return nil
}
