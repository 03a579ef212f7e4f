package repository

import (
	"context"

	"gorm.io/gorm"

	"stockflow/internal/domain"
)

// stockRepository reads the inventory tables owned by the surrounding order
// subsystem. Both queries run fresh on every workflow run; nothing here is
// cached.
type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new instance of a combined
// StockSource/ListingSource backed by the platform's inventory tables.
func NewStockRepository(db *gorm.DB) *stockRepository {
	return &stockRepository{db: db}
}

type inventoryRow struct {
	SKU          string `gorm:"column:sku"`
	CurrentStock int    `gorm:"column:current_stock"`
}

func (r *stockRepository) WarehouseStock(ctx context.Context) (map[string]int, error) {
	var rows []inventoryRow
	err := r.db.WithContext(ctx).
		Table("inventory_summary").
		Select("sku, current_stock").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	stock := make(map[string]int, len(rows))
	for _, row := range rows {
		stock[row.SKU] = row.CurrentStock
	}
	return stock, nil
}

type listingOptionRow struct {
	OriginProductNo     int64  `gorm:"column:origin_product_no"`
	OptionCombinationID int64  `gorm:"column:option_combination_id"`
	SKU                 string `gorm:"column:sku"`
	StockQuantity       int    `gorm:"column:stock_quantity"`
}

func (r *stockRepository) ListingOptions(ctx context.Context) ([]domain.ListingOption, error) {
	var rows []listingOptionRow
	// internal_sku wins over the seller management code when both are set.
	err := r.db.WithContext(ctx).
		Table("naver_product_options").
		Select("origin_product_no, option_combination_id, COALESCE(NULLIF(internal_sku, ''), seller_management_code) AS sku, stock_quantity").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	options := make([]domain.ListingOption, 0, len(rows))
	for _, row := range rows {
		options = append(options, domain.ListingOption{
			ListingID: row.OriginProductNo,
			OptionID:  row.OptionCombinationID,
			SKU:       row.SKU,
			Quantity:  row.StockQuantity,
		})
	}
	return options, nil
}
