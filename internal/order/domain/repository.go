package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the read side of the external order store.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	// ListByCustomerInRange returns orders with from <= order_date < to,
	// ordered by order_date then id.
	ListByCustomerInRange(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to time.Time) ([]Order, error)
}
