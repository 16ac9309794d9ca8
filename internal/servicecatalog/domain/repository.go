package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertService(ctx context.Context, db *gorm.DB, service *Service) error
	InsertCustomerService(ctx context.Context, db *gorm.DB, cs *CustomerService) error
	// ListActiveByCustomer returns the customer's active assignments in
	// evaluation order (position, then id).
	ListActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]Assignment, error)
}
