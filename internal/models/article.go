package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// StringArray represents a PostgreSQL text[] column.
type StringArray []string

// Scan implements the sql.Scanner interface
func (s *StringArray) Scan(value interface{}) error {
	if value == nil {
		*s = StringArray{}
		return nil
	}

	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("cannot scan %T into StringArray", value)
	}

	// PostgreSQL array format: {value1,value2,value3}
	trimmed := strings.Trim(raw, "{}")
	if trimmed == "" {
		*s = StringArray{}
		return nil
	}

	parts := strings.Split(trimmed, ",")
	result := make([]string, len(parts))
	for i, part := range parts {
		result[i] = strings.Trim(strings.TrimSpace(part), "\"")
	}
	*s = result
	return nil
}

// Value implements the driver.Valuer interface
func (s StringArray) Value() (driver.Value, error) {
	if len(s) == 0 {
		return "{}", nil
	}

	quoted := make([]string, len(s))
	for i, v := range s {
		escaped := strings.ReplaceAll(v, "\"", "\\\"")
		quoted[i] = fmt.Sprintf("\"%s\"", escaped)
	}

	return fmt.Sprintf("{%s}", strings.Join(quoted, ",")), nil
}

// ArticleStatus is the closed set of pipeline states an article moves
// through. The zero-valued article starts at StatusCollected and only ever
// advances along the transition table below.
type ArticleStatus string

const (
	StatusCollected    ArticleStatus = "collected"
	StatusRewritten    ArticleStatus = "rewritten"
	StatusMonetized    ArticleStatus = "monetized"
	StatusPublished    ArticleStatus = "published"
	StatusErrorRewrite ArticleStatus = "error_rewrite"
)

// PromotionDone marks an article whose permalink has been pushed to the
// social channel. A nil PromotionStatus means "not yet promoted" and is a
// distinct, queryable state.
const PromotionDone = "done"

var statusTransitions = map[ArticleStatus][]ArticleStatus{
	StatusCollected:    {StatusRewritten, StatusErrorRewrite},
	StatusRewritten:    {StatusMonetized},
	StatusMonetized:    {StatusPublished},
	StatusPublished:    {},
	StatusErrorRewrite: {},
}

// ParseStatus validates a raw status string against the closed enumeration.
func ParseStatus(raw string) (ArticleStatus, error) {
	status := ArticleStatus(raw)
	if _, ok := statusTransitions[status]; !ok {
		return "", fmt.Errorf("unknown article status %q", raw)
	}
	return status, nil
}

// CanTransitionTo reports whether next is a legal successor of s. Statuses
// never regress and terminal statuses have no successors.
func (s ArticleStatus) CanTransitionTo(next ArticleStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no stage can move the article further. Promotion
// is tracked separately on PromotionStatus, so published is terminal here.
func (s ArticleStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Article is the unit of work flowing through the pipeline. Each stage
// writes exactly one content payload and never mutates earlier ones.
type Article struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	ArticleID        string         `gorm:"uniqueIndex;not null;size:64" json:"article_id"`
	URL              string         `gorm:"uniqueIndex;not null;size:2048" json:"url"`
	Title            string         `gorm:"not null;size:500" json:"title"`
	Topic            string         `gorm:"size:100" json:"topic"`
	Status           ArticleStatus  `gorm:"size:50;default:'collected';index" json:"status"`
	ContentRaw       string         `gorm:"type:text" json:"content_raw"`
	ContentRewritten string         `gorm:"type:text" json:"content_rewritten"`
	ContentMonetized string         `gorm:"type:text" json:"content_monetized"`
	ProductsLinked   StringArray    `gorm:"type:text[]" json:"products_linked"`
	WPPostID         int            `json:"wp_post_id"`
	WPPermalink      string         `gorm:"size:2048" json:"wp_permalink"`
	PromotionStatus  *string        `gorm:"size:50;index" json:"promotion_status"`
	LastError        string         `gorm:"type:text" json:"last_error"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Promoted reports whether the article has already been pushed to the
// social channel.
func (a *Article) Promoted() bool {
	return a.PromotionStatus != nil && *a.PromotionStatus == PromotionDone
}
