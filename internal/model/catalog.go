package model

import (
	"regexp"
	"strings"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/money"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:[-_][a-z0-9]+)*$`)

// Category groups catalog services (diagnostics, cleaning, ...).
type Category struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string       `gorm:"type:varchar(255);not null" json:"title"`
	Slug      string       `gorm:"type:varchar(64);uniqueIndex;not null" json:"slug"`
	CreatedAt time.Time    `json:"created_at"`
}

func (c *Category) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return apperror.Validation("title", "required", "is required")
	}
	if !slugPattern.MatchString(c.Slug) {
		return apperror.Validation("slug", "invalid_slug", "must contain lowercase letters, digits, '-' or '_'")
	}
	return nil
}

// Service is a catalog entry. Its Price is the current base price; order lines
// keep their own captured copy.
type Service struct {
	ID         snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CategoryID snowflake.ID    `gorm:"not null;index" json:"category_id"`
	Category   *Category       `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name       string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Price      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"price"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

func (s *Service) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return apperror.Validation("name", "required", "is required")
	}
	if s.CategoryID == 0 {
		return apperror.Validation("category_id", "required", "is required")
	}
	return money.Validate("price", s.Price)
}
