package models

import "time"

// CatalogProduct is one affiliate candidate in the local marketplace
// catalog, loaded through the admin API and refreshed out of band.
type CatalogProduct struct {
	ProductID   string      `gorm:"primaryKey;size:100" json:"product_id"`
	Name        string      `gorm:"not null;size:300" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Category    string      `gorm:"index;size:100" json:"category"`
	Gravity     float64     `json:"gravity"`
	Hoplink     string      `gorm:"size:2048" json:"hoplink"`
	Keywords    StringArray `gorm:"type:text[]" json:"keywords"`
	ScrapedAt   time.Time   `json:"scraped_at"`
}

func (CatalogProduct) TableName() string { return "catalog_products" }

// TopicPriority is the optimizer's output: configured topics reordered by
// measured (currently simulated) performance. The collector consults it to
// decide which topics to scrape first.
type TopicPriority struct {
	Topic     string    `gorm:"primaryKey;size:100" json:"topic"`
	Score     float64   `json:"score"`
	Rank      int       `json:"rank"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (TopicPriority) TableName() string { return "topic_priorities" }
