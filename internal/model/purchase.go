package model

import (
	"strings"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/money"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// PurchaseStatus enum
type PurchaseStatus string

const (
	PurchaseStatusAwaitingDelivery PurchaseStatus = "awaiting_delivery"
	PurchaseStatusReceived         PurchaseStatus = "received"
	PurchaseStatusInstalled        PurchaseStatus = "installed"
)

func (s PurchaseStatus) Valid() bool {
	switch s {
	case PurchaseStatusAwaitingDelivery, PurchaseStatusReceived, PurchaseStatusInstalled:
		return true
	}
	return false
}

// Purchase is a parts purchase. OrderID is nullable: purchases outlive their order.
type Purchase struct {
	ID        snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OrderID   *snowflake.ID   `gorm:"index" json:"order_id"`
	Order     *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	Store     string          `gorm:"type:varchar(255);not null;index" json:"store"`
	Detail    string          `gorm:"type:text;not null" json:"detail"`
	Cost      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"cost"`
	Status    PurchaseStatus  `gorm:"type:varchar(32);not null;default:'awaiting_delivery';index" json:"status"`
	CreatedAt time.Time       `gorm:"<-:create" json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (p *Purchase) Validate() error {
	if strings.TrimSpace(p.Store) == "" {
		return apperror.Validation("store", "required", "is required")
	}
	if strings.TrimSpace(p.Detail) == "" {
		return apperror.Validation("detail", "required", "is required")
	}
	if err := money.Validate("cost", p.Cost); err != nil {
		return err
	}
	if !p.Status.Valid() {
		return apperror.Validation("status", "invalid_status", "unknown purchase status")
	}
	return nil
}
