package repository

import (
	"context"
	"fmt"

	"repairdesk/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SequenceRepository interface {
	// Next draws the next value of the named counter. It must run inside a
	// transaction: the counter row stays locked until that transaction ends. A
	// rolled back draw is handed out again, a committed one never is.
	Next(ctx context.Context, name string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, name string) (int64, error) {
	db := GetDB(ctx, r.db)

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&model.Sequence{Name: name}).Error; err != nil {
		return 0, fmt.Errorf("ensure sequence %s: %w", name, err)
	}

	var seq model.Sequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&seq, "name = ?", name).Error; err != nil {
		return 0, fmt.Errorf("lock sequence %s: %w", name, err)
	}

	next := seq.LastValue + 1
	if err := db.Model(&model.Sequence{}).Where("name = ?", name).Update("last_value", next).Error; err != nil {
		return 0, fmt.Errorf("advance sequence %s: %w", name, err)
	}
	return next, nil
}
