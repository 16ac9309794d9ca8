// Package domain holds billing reports and their per-order breakdown.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// BillingReport is the outcome of one calculation run for a customer over
// an inclusive date range. A stored report is never updated; regeneration
// stores a new one.
type BillingReport struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	CustomerID    snowflake.ID    `gorm:"not null;index" json:"customer_id"`
	StartDate     time.Time       `gorm:"not null" json:"start_date"`
	EndDate       time.Time       `gorm:"not null" json:"end_date"`
	GeneratedAt   time.Time       `gorm:"not null" json:"generated_at"`
	ConfigVersion string          `gorm:"type:text;not null" json:"config_version"`
	Currency      string          `gorm:"type:text" json:"currency,omitempty"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	OrderCount    int             `gorm:"not null;default:0" json:"order_count"`
	ServiceTotals []ServiceTotal  `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"service_totals"`
	Orders        []OrderCost     `gorm:"foreignKey:ReportID;constraint:OnDelete:CASCADE" json:"orders"`
}

func (BillingReport) TableName() string { return "billing_reports" }

// ServiceTotal is the amount one service contributed across every order.
type ServiceTotal struct {
	ID         snowflake.ID    `gorm:"primaryKey" json:"id"`
	ReportID   snowflake.ID    `gorm:"not null;index" json:"report_id"`
	ServiceID  snowflake.ID    `gorm:"not null" json:"service_id"`
	Code       string          `gorm:"type:text" json:"code"`
	Name       string          `gorm:"type:text;not null" json:"name"`
	ChargeType string          `gorm:"type:text;not null" json:"charge_type"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Position   int             `gorm:"not null" json:"position"`
}

func (ServiceTotal) TableName() string { return "billing_report_service_totals" }

// OrderCost is the breakdown of one order. Services holds every evaluated
// service, including the ones that did not apply.
type OrderCost struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	ReportID    snowflake.ID    `gorm:"not null;index" json:"report_id"`
	OrderID     snowflake.ID    `gorm:"not null" json:"order_id"`
	OrderNumber string          `gorm:"type:text" json:"order_number"`
	OrderDate   time.Time       `gorm:"not null" json:"order_date"`
	TotalAmount decimal.Decimal `gorm:"type:numeric;not null" json:"total_amount"`
	Position    int             `gorm:"not null" json:"position"`
	Services    []ServiceCost   `gorm:"foreignKey:OrderCostID;constraint:OnDelete:CASCADE" json:"services"`
}

func (OrderCost) TableName() string { return "billing_report_orders" }

// ServiceCost is what one configured service cost for one order.
type ServiceCost struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	OrderCostID       snowflake.ID    `gorm:"not null;index" json:"order_cost_id"`
	ReportID          snowflake.ID    `gorm:"not null;index" json:"report_id"`
	CustomerServiceID snowflake.ID    `gorm:"not null" json:"customer_service_id"`
	ServiceID         snowflake.ID    `gorm:"not null" json:"service_id"`
	Name              string          `gorm:"type:text;not null" json:"name"`
	ChargeType        string          `gorm:"type:text;not null" json:"charge_type"`
	Applied           bool            `gorm:"not null" json:"applied"`
	Reason            string          `gorm:"type:text;not null" json:"reason"`
	Quantity          decimal.Decimal `gorm:"type:numeric;not null" json:"quantity"`
	Amount            decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Position          int             `gorm:"not null" json:"position"`
}

func (ServiceCost) TableName() string { return "billing_report_service_costs" }

// GenerateRequest asks for a report. StartDate and EndDate are truncated to
// UTC days and EndDate is inclusive. Persist overrides the configured
// persist_reports setting when set.
type GenerateRequest struct {
	CustomerID  snowflake.ID
	StartDate   time.Time
	EndDate     time.Time
	Persist     *bool
	BypassCache bool
}
