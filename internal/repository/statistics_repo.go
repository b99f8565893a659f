package repository

import (
	"context"
	"fmt"

	"repairdesk/internal/model"

	"gorm.io/gorm"
)

// Bucket is one group of a GROUP BY count.
type Bucket struct {
	Key   string `gorm:"column:bucket"`
	Count int64  `gorm:"column:total"`
}

type StatisticsRepository interface {
	CountOrders(ctx context.Context) (int64, error)
	CountClients(ctx context.Context) (int64, error)
	CountActiveOrders(ctx context.Context) (int64, error)
	CountOrphanPurchases(ctx context.Context) (int64, error)
	OrdersByStatus(ctx context.Context) ([]Bucket, error)
	OrdersByLegalKind(ctx context.Context) ([]Bucket, error)
	RecentOrders(ctx context.Context, limit int) ([]model.Order, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountOrders(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Order{}).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountClients(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountActiveOrders(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("status NOT IN ?", model.ClosedOrderStatuses).
		Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountOrphanPurchases(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Purchase{}).Where("order_id IS NULL").Count(&n).Error
	return n, err
}

func (r *statisticsRepository) OrdersByStatus(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("status AS bucket, COUNT(*) AS total").
		Group("status").
		Order("status").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}
	return buckets, nil
}

func (r *statisticsRepository) OrdersByLegalKind(ctx context.Context) ([]Bucket, error) {
	var buckets []Bucket
	err := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("clients.legal_kind AS bucket, COUNT(*) AS total").
		Joins("JOIN clients ON clients.id = orders.client_id").
		Group("clients.legal_kind").
		Order("clients.legal_kind").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by legal kind: %w", err)
	}
	return buckets, nil
}

func (r *statisticsRepository) RecentOrders(ctx context.Context, limit int) ([]model.Order, error) {
	var orders []model.Order
	err := GetDB(ctx, r.db).
		Preload("Client").
		Preload("ServiceLines").
		Preload("Purchases").
		Order("id desc").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}
