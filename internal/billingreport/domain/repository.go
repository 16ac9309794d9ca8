package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, report *BillingReport) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*BillingReport, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
}
