package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreateClient   = "CREATE_CLIENT"
	ActionUpdateClient   = "UPDATE_CLIENT"
	ActionDeleteClient   = "DELETE_CLIENT"
	ActionCreateCategory = "CREATE_CATEGORY"
	ActionCreateService  = "CREATE_SERVICE"
	ActionUpdateService  = "UPDATE_SERVICE"
	ActionDeleteService  = "DELETE_SERVICE"
	ActionCreateOrder    = "CREATE_ORDER"
	ActionUpdateOrder    = "UPDATE_ORDER"
	ActionDeleteOrder    = "DELETE_ORDER"

	// Ledger line actions
	ActionAttachServices = "ATTACH_SERVICES"
	ActionDetachService  = "DETACH_SERVICE"

	ActionCreatePurchase = "CREATE_PURCHASE"
	ActionUpdatePurchase = "UPDATE_PURCHASE"
	ActionDeletePurchase = "DELETE_PURCHASE"
)

// AuditLog tracks Who, What, and When for every mutating command
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID    string         `gorm:"type:varchar(64);index" json:"actor_id"` // subject of the verified token, empty for system jobs
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string         `gorm:"type:varchar(50);not null" json:"entity_type"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
