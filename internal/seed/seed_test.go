package seed

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/fulfillment-billing/internal/migration"
	servicecatalogrepository "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestEnsureDemoDataIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:seed?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := context.Background()
	month := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	first, err := EnsureDemoData(ctx, db, node, month)
	require.NoError(t, err)
	second, err := EnsureDemoData(ctx, db, node, month)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	var orders int64
	require.NoError(t, db.Raw(`SELECT COUNT(*) FROM orders WHERE customer_id = ?`, first).Scan(&orders).Error)
	assert.Equal(t, int64(24), orders)

	assignments, err := servicecatalogrepository.Provide().ListActiveByCustomer(ctx, db, first)
	require.NoError(t, err)
	require.Len(t, assignments, len(demoServices))
	assert.Equal(t, "pick_pack", assignments[0].ServiceCode)
	assert.Equal(t, "pallets", assignments[len(assignments)-1].QuantityField)
}

func TestEnsureDemoDataRequiresHandles(t *testing.T) {
	_, err := EnsureDemoData(context.Background(), nil, nil, time.Now())
	assert.Error(t, err)
}
