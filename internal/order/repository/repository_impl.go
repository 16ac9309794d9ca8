package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *domain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, customer_id, order_number, status, order_date, weight, sku_quantity, fields, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.CustomerID,
		order.OrderNumber,
		order.Status,
		order.OrderDate,
		order.Weight,
		order.SKUQuantity,
		order.Fields,
		order.CreatedAt,
	).Error
}

func (r *repo) ListByCustomerInRange(ctx context.Context, db *gorm.DB, customerID snowflake.ID, from, to time.Time) ([]domain.Order, error) {
	var items []domain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, order_number, status, order_date, weight, sku_quantity, fields, created_at
		 FROM orders
		 WHERE customer_id = ? AND order_date >= ? AND order_date < ?
		 ORDER BY order_date ASC, id ASC`,
		customerID,
		from,
		to,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
