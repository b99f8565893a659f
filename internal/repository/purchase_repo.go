package repository

import (
	"context"
	"strings"

	"repairdesk/internal/apperror"
	"repairdesk/internal/model"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type PurchaseFilter struct {
	Search  string
	Status  model.PurchaseStatus
	Store   string
	OrderID snowflake.ID
	// OrphansOnly keeps purchases that are not linked to any order.
	OrphansOnly bool
	ListParams
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	Update(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id snowflake.ID) (*model.Purchase, error)
	List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error)
	Delete(ctx context.Context, id snowflake.ID) error
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	err := GetDB(ctx, r.db).Omit("Order").Create(purchase).Error
	return translate(err, "purchase", purchase.ID, "")
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	res := GetDB(ctx, r.db).Model(purchase).
		Select("OrderID", "Store", "Detail", "Cost", "Status", "UpdatedAt").
		Updates(purchase)
	if res.Error != nil {
		return translate(res.Error, "purchase", purchase.ID, "")
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("purchase", purchase.ID)
	}
	return nil
}

func (r *purchaseRepository) FindByID(ctx context.Context, id snowflake.ID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).Preload("Order").First(&purchase, "id = ?", id).Error; err != nil {
		return nil, translate(err, "purchase", id, "")
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, filter PurchaseFilter) ([]model.Purchase, int64, error) {
	query := func() *gorm.DB {
		db := GetDB(ctx, r.db).Model(&model.Purchase{})
		if filter.Search != "" {
			db = db.Joins("LEFT JOIN orders ON orders.id = purchases.order_id")
		}
		if filter.Status != "" {
			db = db.Where("purchases.status = ?", filter.Status)
		}
		if filter.Store != "" {
			db = db.Where("LOWER(purchases.store) = ?", strings.ToLower(strings.TrimSpace(filter.Store)))
		}
		switch {
		case filter.OrphansOnly:
			db = db.Where("purchases.order_id IS NULL")
		case filter.OrderID != 0:
			db = db.Where("purchases.order_id = ?", filter.OrderID)
		}
		return textSearch{columns: []string{"purchases.detail"}, numberCol: "orders.number"}.apply(db, filter.Search)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var purchases []model.Purchase
	err := filter.apply(query().Preload("Order").Order("purchases.id desc")).Find(&purchases).Error
	if err != nil {
		return nil, 0, err
	}
	return purchases, total, nil
}

func (r *purchaseRepository) Delete(ctx context.Context, id snowflake.ID) error {
	res := GetDB(ctx, r.db).Delete(&model.Purchase{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.NotFound("purchase", id)
	}
	return nil
}
