package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertService(ctx context.Context, db *gorm.DB, service *domain.Service) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO services (id, code, name, charge_type, description, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		service.ID,
		service.Code,
		service.Name,
		service.ChargeType,
		service.Description,
		service.CreatedAt,
		service.UpdatedAt,
	).Error
}

func (r *repo) InsertCustomerService(ctx context.Context, db *gorm.DB, cs *domain.CustomerService) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customer_services (
			id, customer_id, service_id, unit_price, tier_config, excluded_skus, rule_group,
			quantity_field, position, active, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cs.ID,
		cs.CustomerID,
		cs.ServiceID,
		cs.UnitPrice,
		cs.TierConfig,
		cs.ExcludedSKUs,
		cs.RuleGroup,
		cs.QuantityField,
		cs.Position,
		cs.Active,
		cs.CreatedAt,
		cs.UpdatedAt,
	).Error
}

func (r *repo) ListActiveByCustomer(ctx context.Context, db *gorm.DB, customerID snowflake.ID) ([]domain.Assignment, error) {
	var items []domain.Assignment
	err := db.WithContext(ctx).Raw(
		`SELECT cs.id, cs.customer_id, cs.service_id, cs.unit_price, cs.tier_config, cs.excluded_skus,
		 cs.rule_group, cs.quantity_field, cs.position, cs.active, cs.created_at, cs.updated_at,
		 s.code AS service_code, s.name AS service_name, s.charge_type AS charge_type
		 FROM customer_services cs
		 JOIN services s ON s.id = cs.service_id
		 WHERE cs.customer_id = ? AND cs.active = ?
		 ORDER BY cs.position ASC, cs.id ASC`,
		customerID,
		true,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
