package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToViewShape(t *testing.T) {
	report := &BillingReport{
		CustomerID:  10,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		TotalAmount: decimal.RequireFromString("12.5"),
		ServiceTotals: []ServiceTotal{
			{ServiceID: 7, Name: "Pick & Pack", Amount: decimal.RequireFromString("12.5")},
		},
		Orders: []OrderCost{
			{
				OrderID:     100,
				TotalAmount: decimal.RequireFromString("12.5"),
				Services: []ServiceCost{
					{ServiceID: 7, Name: "Pick & Pack", Amount: decimal.RequireFromString("12.5")},
				},
			},
		},
	}

	raw, err := json.Marshal(report.ToView(2))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"customer_id": "10",
		"start_date": "2024-01-01",
		"end_date": "2024-01-31",
		"total_amount": "12.50",
		"service_totals": {"7": {"name": "Pick & Pack", "amount": "12.50"}},
		"orders": [
			{"order_id": "100", "total_amount": "12.50", "services": [
				{"service_id": "7", "name": "Pick & Pack", "amount": "12.50"}
			]}
		]
	}`, string(raw))
}

func TestToViewEmptyReport(t *testing.T) {
	report := &BillingReport{TotalAmount: decimal.Zero}

	raw, err := json.Marshal(report.ToView(2))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "0.00", decoded["total_amount"])
	assert.Equal(t, map[string]any{}, decoded["service_totals"])
	assert.Equal(t, []any{}, decoded["orders"])
}
