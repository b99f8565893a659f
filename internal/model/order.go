package model

import (
	"fmt"
	"strings"
	"time"

	"repairdesk/internal/apperror"
	"repairdesk/internal/money"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// OrderStatus is a flat lifecycle enum; any status may follow any other.
type OrderStatus string

const (
	OrderStatusInProgress    OrderStatus = "in_progress"
	OrderStatusUnderApproval OrderStatus = "under_approval"
	OrderStatusWaitingPart   OrderStatus = "waiting_part"
	OrderStatusInService     OrderStatus = "in_service"
	OrderStatusReadyPickup   OrderStatus = "ready_pickup"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusNotRelevant   OrderStatus = "not_relevant"
)

// OrderStatuses lists every status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusInProgress,
	OrderStatusUnderApproval,
	OrderStatusWaitingPart,
	OrderStatusInService,
	OrderStatusReadyPickup,
	OrderStatusCompleted,
	OrderStatusNotRelevant,
}

// ClosedOrderStatuses are excluded from the active-orders count.
var ClosedOrderStatuses = []OrderStatus{OrderStatusCompleted, OrderStatusNotRelevant}

func (s OrderStatus) Valid() bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// SequenceOrderNumber names the counter that issues order numbers.
const SequenceOrderNumber = "order_number"

// Order is a repair order. Money totals are derived by the ledger package and never stored.
type Order struct {
	ID                    snowflake.ID       `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Number                int64              `gorm:"not null;uniqueIndex" json:"number"`
	ClientID              snowflake.ID       `gorm:"not null;index" json:"client_id"`
	Client                *Client            `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	AcceptedEquipment     string             `gorm:"type:varchar(255);not null" json:"accepted_equipment"`
	Detail                string             `gorm:"type:text;not null" json:"detail"`
	ServicesTotalOverride *decimal.Decimal   `gorm:"type:decimal(12,2)" json:"services_total_override"`
	Advance               decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"advance"`
	Paid                  decimal.Decimal    `gorm:"type:decimal(12,2);not null;default:0" json:"paid"`
	Status                OrderStatus        `gorm:"type:varchar(32);not null;default:'in_progress';index" json:"status"`
	ServiceLines          []OrderServiceLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"service_lines,omitempty"`
	Purchases             []Purchase         `gorm:"foreignKey:OrderID;constraint:OnDelete:SET NULL" json:"purchases,omitempty"`
	CreatedAt             time.Time          `gorm:"index;<-:create" json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// Code renders the human readable order code, e.g. RO-000042.
func (o *Order) Code(prefix string, pad int) string {
	if prefix == "" {
		return fmt.Sprintf("%0*d", pad, o.Number)
	}
	return fmt.Sprintf("%s-%0*d", prefix, pad, o.Number)
}

// Validate checks the writable fields of an order.
func (o *Order) Validate() error {
	if o.ClientID == 0 {
		return apperror.Validation("client_id", "required", "is required")
	}
	if strings.TrimSpace(o.AcceptedEquipment) == "" {
		return apperror.Validation("accepted_equipment", "required", "is required")
	}
	if strings.TrimSpace(o.Detail) == "" {
		return apperror.Validation("detail", "required", "is required")
	}
	if o.ServicesTotalOverride != nil {
		if err := money.Validate("services_total_override", *o.ServicesTotalOverride); err != nil {
			return err
		}
	}
	if err := money.Validate("advance", o.Advance); err != nil {
		return err
	}
	if err := money.Validate("paid", o.Paid); err != nil {
		return err
	}
	if !o.Status.Valid() {
		return apperror.Validation("status", "invalid_status", "unknown order status")
	}
	return nil
}

// OrderServiceLine joins an order to a catalog service and freezes the price at attach time.
type OrderServiceLine struct {
	ID            snowflake.ID    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OrderID       snowflake.ID    `gorm:"not null;uniqueIndex:ux_order_service_lines_order_service,priority:1" json:"order_id"`
	ServiceID     snowflake.ID    `gorm:"not null;index;uniqueIndex:ux_order_service_lines_order_service,priority:2" json:"service_id"`
	Service       *Service        `gorm:"foreignKey:ServiceID;constraint:OnDelete:RESTRICT" json:"service,omitempty"`
	CapturedPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"captured_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Sequence is a named monotonic counter. Rows are locked while a value is drawn.
type Sequence struct {
	Name      string `gorm:"type:varchar(64);primaryKey"`
	LastValue int64  `gorm:"not null;default:0"`
}
