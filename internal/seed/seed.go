package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	customerdomain "github.com/smallbiznis/fulfillment-billing/internal/customer/domain"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	servicecatalogdomain "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DemoCustomerCode = "DEMO"
	demoCustomerName = "Demo Fulfillment Customer"
	demoEmail        = "billing@demo.example"
)

type demoService struct {
	code       string
	name       string
	chargeType string
	unitPrice  string
	tiers      string
	excluded   string
	rule       string
	quantity   string
}

var demoServices = []demoService{
	{code: "pick_pack", name: "Pick & Pack", chargeType: "per_quantity", unitPrice: "0.35"},
	{
		code:       "case_handling",
		name:       "Case Handling",
		chargeType: "tiered_case_based",
		unitPrice:  "4.00",
		tiers:      `[{"min":1,"max":5,"rate":1.0},{"min":6,"max":15,"rate":0.8},{"min":16,"rate":0.6}]`,
		excluded:   `["PROMO-INSERT"]`,
	},
	{
		code:       "intl_surcharge",
		name:       "International Surcharge",
		chargeType: "flat",
		unitPrice:  "7.50",
		rule:       `{"field":"ship_to_country","operator":"ne","value":"US"}`,
	},
	{
		code:       "priority_handling",
		name:       "Priority Handling",
		chargeType: "flat",
		unitPrice:  "3.00",
		rule: `{"AND":[{"field":"status","op":"eq","value":"shipped"},` +
			`{"OR":[{"field":"priority","op":"eq","value":"high"},{"field":"weight","op":"gt","value":50}]}]}`,
	},
	{code: "freight", name: "Freight", chargeType: "per_weight", unitPrice: "0.12"},
	{code: "pallet_storage", name: "Pallet Storage", chargeType: "custom", unitPrice: "9.00", quantity: "pallets"},
}

// EnsureDemoData seeds a demo customer with one service of every charge
// type and a month of orders. It is a no-op when the demo customer exists.
// It returns the demo customer's id.
func EnsureDemoData(ctx context.Context, db *gorm.DB, node *snowflake.Node, month time.Time) (snowflake.ID, error) {
	if db == nil {
		return 0, errors.New("seed database handle is required")
	}
	if node == nil {
		return 0, errors.New("seed id generator is required")
	}

	var customerID snowflake.ID
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing customerdomain.Customer
		err := tx.Where("code = ?", DemoCustomerCode).First(&existing).Error
		if err == nil {
			customerID = existing.ID
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		now := time.Now().UTC()
		customer := customerdomain.Customer{
			ID:        node.Generate(),
			Code:      DemoCustomerCode,
			Name:      demoCustomerName,
			Email:     demoEmail,
			Currency:  "USD",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Create(&customer).Error; err != nil {
			return err
		}
		customerID = customer.ID

		if err := ensureServicesTx(tx, node, customer.ID, now); err != nil {
			return err
		}
		return createOrdersTx(tx, node, customer.ID, month, now)
	})
	if err != nil {
		return 0, err
	}
	return customerID, nil
}

func ensureServicesTx(tx *gorm.DB, node *snowflake.Node, customerID snowflake.ID, now time.Time) error {
	for position, def := range demoServices {
		var svc servicecatalogdomain.Service
		err := tx.Where("code = ?", def.code).First(&svc).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			svc = servicecatalogdomain.Service{
				ID:         node.Generate(),
				Code:       def.code,
				Name:       def.name,
				ChargeType: def.chargeType,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			err = tx.Create(&svc).Error
		}
		if err != nil {
			return err
		}

		cs := servicecatalogdomain.CustomerService{
			ID:            node.Generate(),
			CustomerID:    customerID,
			ServiceID:     svc.ID,
			UnitPrice:     decimal.RequireFromString(def.unitPrice),
			QuantityField: def.quantity,
			Position:      position,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if def.tiers != "" {
			cs.TierConfig = datatypes.JSON(def.tiers)
		}
		if def.excluded != "" {
			cs.ExcludedSKUs = datatypes.JSON(def.excluded)
		}
		if def.rule != "" {
			cs.RuleGroup = datatypes.JSON(def.rule)
		}
		if err := tx.Create(&cs).Error; err != nil {
			return err
		}
	}
	return nil
}

func createOrdersTx(tx *gorm.DB, node *snowflake.Node, customerID snowflake.ID, month time.Time, now time.Time) error {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	countries := []string{"US", "CA", "US", "DE", "US", "GB"}
	priorities := []string{"normal", "high", "normal", "normal"}

	orders := make([]orderdomain.Order, 0, 24)
	for i := 0; i < 24; i++ {
		day := first.AddDate(0, 0, i)
		if day.Month() != first.Month() {
			break
		}
		status := "shipped"
		if i%7 == 6 {
			status = "cancelled"
		}
		weight := decimal.NewFromInt(int64(5 + (i*13)%70))
		orders = append(orders, orderdomain.Order{
			ID:          node.Generate(),
			CustomerID:  customerID,
			OrderNumber: fmt.Sprintf("SO-%s-%03d", first.Format("200601"), i+1),
			Status:      status,
			OrderDate:   day.Add(time.Duration(9+i%8) * time.Hour),
			Weight:      decimal.NewNullDecimal(weight),
			SKUQuantity: datatypes.JSONMap{
				"ABC-001":      1 + i%6,
				"XYZ-999":      i % 4,
				"PROMO-INSERT": 1,
			},
			Fields: datatypes.JSONMap{
				"ship_to_country": countries[i%len(countries)],
				"priority":        priorities[i%len(priorities)],
				"pallets":         i % 3,
			},
			CreatedAt: now,
		})
	}
	return tx.CreateInBatches(orders, 100).Error
}
