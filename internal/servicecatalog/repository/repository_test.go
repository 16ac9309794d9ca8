package repository

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func TestListActiveByCustomer(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:servicecatalog_repo?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Service{}, &domain.CustomerService{}))

	ctx := context.Background()
	repo := Provide()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for _, svc := range []domain.Service{
		{ID: 1, Code: "pick", Name: "Pick", ChargeType: "flat", CreatedAt: now, UpdatedAt: now},
		{ID: 2, Code: "case", Name: "Case", ChargeType: "tiered", CreatedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, repo.InsertService(ctx, db, &svc))
	}

	rows := []domain.CustomerService{
		{ID: 10, CustomerID: 5, ServiceID: 2, UnitPrice: decimal.RequireFromString("4"), Position: 1, Active: true,
			TierConfig: datatypes.JSON(`[{"min":1,"max":5,"rate":1}]`), ExcludedSKUs: datatypes.JSON(`["X-1"]`)},
		{ID: 11, CustomerID: 5, ServiceID: 1, UnitPrice: decimal.RequireFromString("1.5"), Position: 0, Active: true},
		{ID: 12, CustomerID: 5, ServiceID: 1, UnitPrice: decimal.RequireFromString("2"), Position: 2, Active: false},
		{ID: 13, CustomerID: 6, ServiceID: 1, UnitPrice: decimal.RequireFromString("3"), Position: 0, Active: true},
	}
	for i := range rows {
		rows[i].CreatedAt = now
		rows[i].UpdatedAt = now
		require.NoError(t, repo.InsertCustomerService(ctx, db, &rows[i]))
	}

	got, err := repo.ListActiveByCustomer(ctx, db, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.EqualValues(t, 11, got[0].ID)
	assert.Equal(t, "pick", got[0].ServiceCode)
	assert.Equal(t, "flat", got[0].ChargeType)
	assert.True(t, got[0].UnitPrice.Equal(decimal.RequireFromString("1.5")))

	assert.EqualValues(t, 10, got[1].ID)
	assert.Equal(t, "Case", got[1].ServiceName)
	assert.JSONEq(t, `[{"min":1,"max":5,"rate":1}]`, string(got[1].TierConfig))
	assert.JSONEq(t, `["X-1"]`, string(got[1].ExcludedSKUs))

	none, err := repo.ListActiveByCustomer(ctx, db, 99)
	require.NoError(t, err)
	assert.Empty(t, none)
}
