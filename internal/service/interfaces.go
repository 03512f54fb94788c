package service

import (
	"context"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

// The pipeline core talks to every external collaborator through the
// narrow interfaces below so stages can be exercised with in-memory fakes.

// ContentStore is the record-oriented datastore holding one row per
// article. Status writes happen through the Mark* methods, which validate
// the transition against the article's current status.
type ContentStore interface {
	ArticlesByStatus(ctx context.Context, status models.ArticleStatus) ([]models.Article, error)
	ArticlesAwaitingPromotion(ctx context.Context) ([]models.Article, error)
	CreateArticle(ctx context.Context, article *models.Article) error

	MarkRewritten(ctx context.Context, articleID, content string) error
	MarkRewriteFailed(ctx context.Context, articleID, reason string) error
	MarkMonetized(ctx context.Context, articleID, content string, products []string) error
	MarkPublished(ctx context.Context, articleID string, postID int, permalink string) error
	MarkPromoted(ctx context.Context, articleID string) error
}

// SeenCache remembers URLs the collector has already ingested.
type SeenCache interface {
	Has(ctx context.Context, url string) (bool, error)
	Add(ctx context.Context, url, title string) error
}

// RewriteStore caches rewrite outcomes by content hash, including failures.
// Get returns (nil, nil) on a miss.
type RewriteStore interface {
	Get(ctx context.Context, hash string) (*models.RewriteEntry, error)
	Put(ctx context.Context, entry models.RewriteEntry) error
}

// PublicationStore maps article IDs to their published posts. Get returns
// (nil, nil) on a miss; Put overwrites (last write wins).
type PublicationStore interface {
	Get(ctx context.Context, articleID string) (*models.PublicationEntry, error)
	Put(ctx context.Context, entry models.PublicationEntry) error
}

// Catalog lists affiliate candidates for a marketplace category, best
// ranked first.
type Catalog interface {
	ListProducts(ctx context.Context, category string) ([]affiliate.Product, error)
}

// TextGenerator produces text from a prompt with one specific backend
// model. The fallback chain decides which models to try and in what order.
type TextGenerator interface {
	GenerateText(ctx context.Context, model, system, prompt string) (string, error)
}

// ImageGenerator produces raw image bytes with one specific backend model.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, model, prompt string) ([]byte, error)
}

// PublishTarget is the blog platform the pipeline publishes to.
type PublishTarget interface {
	UploadMedia(ctx context.Context, data []byte, filename string) (int, error)
	CreatePost(ctx context.Context, title, htmlBody string, featuredMediaID int) (postID int, permalink string, err error)
}

// SocialTarget is the promotion channel.
type SocialTarget interface {
	PostMessage(ctx context.Context, text string) (string, error)
}

// TopicPrioritizer reports topics in descending performance order. The
// collector merges this ordering with the configured topic list.
type TopicPrioritizer interface {
	OrderedTopics(ctx context.Context) ([]string, error)
}

// PerformanceSample is one article's measured traffic and earnings.
type PerformanceSample struct {
	Views       int
	Commissions float64
}

// AnalyticsSource reports per-article performance figures for the
// optimizer. The shipped implementation is simulated; see SimulatedAnalytics.
type AnalyticsSource interface {
	ArticleStats(ctx context.Context, article models.Article) (PerformanceSample, error)
}
