package repository

import (
	"context"

	"repairdesk/internal/model"

	"gorm.io/gorm"
)

type AuditFilter struct {
	EntityType string
	EntityID   string
	ListParams
}

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) List(ctx context.Context, filter AuditFilter) ([]model.AuditLog, int64, error) {
	query := func() *gorm.DB {
		db := GetDB(ctx, r.db).Model(&model.AuditLog{})
		if filter.EntityType != "" {
			db = db.Where("entity_type = ?", filter.EntityType)
		}
		if filter.EntityID != "" {
			db = db.Where("entity_id = ?", filter.EntityID)
		}
		return db
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.AuditLog
	if err := filter.apply(query().Order("created_at desc")).Find(&logs).Error; err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
