package model

import (
	"regexp"
	"strings"
	"time"

	"repairdesk/internal/apperror"

	"github.com/bwmarrin/snowflake"
)

// LegalKind enum
type LegalKind string

const (
	LegalKindIndividual   LegalKind = "individual"
	LegalKindOrganization LegalKind = "organization"
)

// Valid reports whether k is one of the known legal kinds.
func (k LegalKind) Valid() bool {
	return k == LegalKindIndividual || k == LegalKindOrganization
}

// PhonePattern is the accepted contact phone format: +7 followed by 10 digits.
var PhonePattern = regexp.MustCompile(`^\+7\d{10}$`)

// Client owns repair orders. Phone is the natural key used by the front desk.
type Client struct {
	ID        snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Phone     string       `gorm:"type:varchar(16);uniqueIndex;not null" json:"phone"`
	LegalKind LegalKind    `gorm:"type:varchar(20);not null;default:'organization';index" json:"legal_kind"`
	Company   string       `gorm:"type:varchar(255);not null;default:''" json:"company"`
	Address   string       `gorm:"type:varchar(255);not null;default:''" json:"address"`
	Orders    []Order      `gorm:"foreignKey:ClientID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Validate checks the single-row invariants. Phone uniqueness is enforced by the store.
func (c *Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return apperror.Validation("name", "required", "is required")
	}
	if !PhonePattern.MatchString(c.Phone) {
		return apperror.Validation("phone", "invalid_phone", "must start with +7 and contain 11 digits")
	}
	if !c.LegalKind.Valid() {
		return apperror.Validation("legal_kind", "invalid_legal_kind", "must be individual or organization")
	}
	if c.LegalKind == LegalKindOrganization && strings.TrimSpace(c.Company) == "" {
		return apperror.Validation("company", "company_required_for_organization", "is required for organizations")
	}
	return nil
}
