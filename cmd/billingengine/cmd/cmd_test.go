package cmd

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	billingreportdomain "github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *billingreportdomain.BillingReport {
	return &billingreportdomain.BillingReport{
		ID:          1,
		CustomerID:  2,
		StartDate:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Currency:    "USD",
		TotalAmount: decimal.RequireFromString("4"),
		OrderCount:  1,
		ServiceTotals: []billingreportdomain.ServiceTotal{
			{ServiceID: 3, Name: "Case handling", ChargeType: "tiered_case_based", Amount: decimal.RequireFromString("4")},
		},
		Orders: []billingreportdomain.OrderCost{
			{
				OrderID:     4,
				OrderNumber: "SO-1",
				TotalAmount: decimal.RequireFromString("4"),
				Services: []billingreportdomain.ServiceCost{
					{ServiceID: 3, Name: "Case handling", Reason: "applied", Quantity: decimal.NewFromInt(5), Amount: decimal.RequireFromString("4")},
				},
			},
		},
	}
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, formatJSON, sampleReport(), 2))

	var view map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &view))
	assert.Equal(t, "4.00", view["total_amount"])
	assert.Equal(t, "2024-01-31", view["end_date"])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, formatTable, sampleReport(), 2))

	out := buf.String()
	assert.Contains(t, out, "4.00 USD")
	assert.Contains(t, out, "Case handling")
	assert.Contains(t, out, "SO-1")
	assert.Contains(t, out, "subtotal")
}

func TestCheckFormat(t *testing.T) {
	assert.NoError(t, checkFormat("json"))
	assert.NoError(t, checkFormat("table"))
	assert.Error(t, checkFormat("pdf"))
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("from", "2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)

	_, err = parseDate("from", "29/02/2024")
	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindValidation))
}

func TestParseReportID(t *testing.T) {
	id, err := parseReportID(" 42 ")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = parseReportID("abc")
	assert.ErrorIs(t, err, billingreportdomain.ErrInvalidReportID)
	_, err = parseReportID("0")
	assert.ErrorIs(t, err, billingreportdomain.ErrInvalidReportID)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, Execute())
	assert.Equal(t, "billingengine version "+Version+"\n", buf.String())
}
