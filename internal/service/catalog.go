package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mlefebvre/plume/internal/models"
	"github.com/mlefebvre/plume/internal/service/affiliate"
)

// catalogLimit caps how many candidates one category hands to the
// relevance engine.
const catalogLimit = 10

// CatalogService serves affiliate candidates from the local marketplace
// catalog. Rows are loaded through the admin API; scraping the marketplace
// directly proved too brittle to automate. Hoplinks are stored as templates
// with an {affiliate} slot so the catalog stays portable across accounts.
type CatalogService struct {
	db      *gorm.DB
	account string
	logger  *zap.Logger
}

func NewCatalogService(db *gorm.DB, account string, logger *zap.Logger) *CatalogService {
	return &CatalogService{db: db, account: account, logger: logger}
}

// resolveHoplink fills the account slot of a stored hoplink template.
// Hoplinks without the slot pass through unchanged.
func resolveHoplink(hoplink, account string) string {
	return strings.ReplaceAll(hoplink, "{affiliate}", account)
}

// ListProducts returns the category's best candidates by gravity
// descending. An empty category is a valid, empty result.
func (s *CatalogService) ListProducts(ctx context.Context, category string) ([]affiliate.Product, error) {
	var rows []models.CatalogProduct
	if err := s.db.WithContext(ctx).
		Where("category = ?", category).
		Order("gravity DESC").
		Limit(catalogLimit).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list products for category %s: %w", category, err)
	}

	products := make([]affiliate.Product, len(rows))
	for i, row := range rows {
		products[i] = affiliate.Product{
			Name:         row.Name,
			ReferralLink: resolveHoplink(row.Hoplink, s.account),
			Keywords:     row.Keywords,
			Gravity:      row.Gravity,
		}
	}
	return products, nil
}

// UpsertProducts loads or refreshes catalog rows, keyed by product ID.
func (s *CatalogService) UpsertProducts(ctx context.Context, products []models.CatalogProduct) error {
	if len(products) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "product_id"}},
			UpdateAll: true,
		}).
		Create(&products).Error; err != nil {
		return fmt.Errorf("failed to upsert catalog products: %w", err)
	}
	s.logger.Info("Catalog products upserted", zap.Int("count", len(products)))
	return nil
}

// CatalogByCategory backs the admin read API.
func (s *CatalogService) CatalogByCategory(ctx context.Context, category string) ([]models.CatalogProduct, error) {
	var rows []models.CatalogProduct
	query := s.db.WithContext(ctx).Order("gravity DESC")
	if category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return rows, nil
}
