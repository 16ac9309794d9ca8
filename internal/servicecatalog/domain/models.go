package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Service is a billable unit of work (pick & pack, shipping, packaging).
type Service struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	Code        string       `gorm:"type:text;not null;uniqueIndex" json:"code"`
	Name        string       `gorm:"type:text;not null" json:"name"`
	ChargeType  string       `gorm:"type:text;not null" json:"charge_type"`
	Description string       `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Service) TableName() string { return "services" }

// CustomerService binds a Service to a Customer with its price and the
// optional tier table, excluded SKUs and rule group gating it.
//
// TierConfig, ExcludedSKUs and RuleGroup are stored as raw JSON and only
// interpreted when a rating plan is compiled.
type CustomerService struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	ServiceID     snowflake.ID    `gorm:"not null;index" json:"service_id"`
	UnitPrice     decimal.Decimal `gorm:"type:numeric;not null" json:"unit_price"`
	TierConfig    datatypes.JSON  `gorm:"type:jsonb" json:"tier_config,omitempty"`
	ExcludedSKUs  datatypes.JSON  `gorm:"column:excluded_skus;type:jsonb" json:"excluded_skus,omitempty"`
	RuleGroup     datatypes.JSON  `gorm:"type:jsonb" json:"rule_group,omitempty"`
	QuantityField string          `gorm:"type:text" json:"quantity_field,omitempty"`
	Position      int             `gorm:"not null;default:0" json:"position"`
	Active        bool            `gorm:"not null;default:true" json:"active"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (CustomerService) TableName() string { return "customer_services" }

// Assignment is a CustomerService joined with its Service.
type Assignment struct {
	CustomerService
	ServiceCode string `json:"service_code"`
	ServiceName string `json:"service_name"`
	ChargeType  string `json:"charge_type"`
}
