package models

import "time"

// The three idempotency caches. Each is a durable key-value table that
// survives restarts so a repeated pipeline cycle never repeats an external
// side effect for an already-cached key.

// SeenURL records every news URL the collector has ingested. Existence is
// the whole signal; inserting a duplicate is a no-op, not an error.
type SeenURL struct {
	URL       string    `gorm:"primaryKey;size:2048" json:"url"`
	Title     string    `gorm:"size:500" json:"title"`
	FirstSeen time.Time `gorm:"autoCreateTime" json:"first_seen"`
}

func (SeenURL) TableName() string { return "seen_urls" }

// RewriteEntry caches the outcome of one rewrite request, keyed by a hash
// of (original content, title, topic). Failed outcomes are cached too and
// honored as "do not retry automatically" until explicitly invalidated.
type RewriteEntry struct {
	ContentHash   string    `gorm:"primaryKey;size:32" json:"content_hash"`
	RewrittenText string    `gorm:"type:text" json:"rewritten_text"`
	ModelUsed     string    `gorm:"size:200" json:"model_used"`
	Success       bool      `json:"success"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (RewriteEntry) TableName() string { return "rewrite_cache" }

// PublicationEntry maps an article to the external post it became. One row
// per article, last write wins, so a republish can overwrite the mapping.
type PublicationEntry struct {
	ArticleID string    `gorm:"primaryKey;size:64" json:"article_id"`
	WPPostID  int       `json:"wp_post_id"`
	Permalink string    `gorm:"size:2048" json:"permalink"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PublicationEntry) TableName() string { return "publication_cache" }
