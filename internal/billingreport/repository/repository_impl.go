package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const insertBatchSize = 500

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// Insert stores the report and its breakdown in one transaction.
func (r *repo) Insert(ctx context.Context, db *gorm.DB, report *domain.BillingReport) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO billing_reports (
				id, customer_id, start_date, end_date, generated_at, config_version, currency, total_amount, order_count
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID,
			report.CustomerID,
			report.StartDate,
			report.EndDate,
			report.GeneratedAt,
			report.ConfigVersion,
			report.Currency,
			report.TotalAmount,
			report.OrderCount,
		).Error; err != nil {
			return err
		}

		if len(report.ServiceTotals) > 0 {
			if err := tx.Omit(clause.Associations).CreateInBatches(report.ServiceTotals, insertBatchSize).Error; err != nil {
				return err
			}
		}

		if len(report.Orders) == 0 {
			return nil
		}
		if err := tx.Omit(clause.Associations).CreateInBatches(report.Orders, insertBatchSize).Error; err != nil {
			return err
		}

		costs := make([]domain.ServiceCost, 0, len(report.Orders)*len(report.ServiceTotals))
		for _, order := range report.Orders {
			costs = append(costs, order.Services...)
		}
		if len(costs) == 0 {
			return nil
		}
		return tx.CreateInBatches(costs, insertBatchSize).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.BillingReport, error) {
	db = db.WithContext(ctx)

	var report domain.BillingReport
	err := db.Raw(
		`SELECT id, customer_id, start_date, end_date, generated_at, config_version, currency, total_amount, order_count
		 FROM billing_reports WHERE id = ?`,
		id,
	).Scan(&report).Error
	if err != nil {
		return nil, err
	}
	if report.ID == 0 {
		return nil, nil
	}

	if err := db.Raw(
		`SELECT id, report_id, service_id, code, name, charge_type, amount, position
		 FROM billing_report_service_totals
		 WHERE report_id = ?
		 ORDER BY position ASC`,
		id,
	).Scan(&report.ServiceTotals).Error; err != nil {
		return nil, err
	}

	if err := db.Raw(
		`SELECT id, report_id, order_id, order_number, order_date, total_amount, position
		 FROM billing_report_orders
		 WHERE report_id = ?
		 ORDER BY position ASC`,
		id,
	).Scan(&report.Orders).Error; err != nil {
		return nil, err
	}

	var costs []domain.ServiceCost
	if err := db.Raw(
		`SELECT id, order_cost_id, report_id, customer_service_id, service_id, name, charge_type,
			applied, reason, quantity, amount, position
		 FROM billing_report_service_costs
		 WHERE report_id = ?
		 ORDER BY order_cost_id ASC, position ASC`,
		id,
	).Scan(&costs).Error; err != nil {
		return nil, err
	}

	byOrder := make(map[snowflake.ID]int, len(report.Orders))
	for i := range report.Orders {
		byOrder[report.Orders[i].ID] = i
		report.Orders[i].Services = []domain.ServiceCost{}
	}
	for _, cost := range costs {
		if i, ok := byOrder[cost.OrderCostID]; ok {
			report.Orders[i].Services = append(report.Orders[i].Services, cost)
		}
	}
	if report.ServiceTotals == nil {
		report.ServiceTotals = []domain.ServiceTotal{}
	}
	if report.Orders == nil {
		report.Orders = []domain.OrderCost{}
	}

	return &report, nil
}

// Delete removes the report and its breakdown. Children are deleted
// explicitly so engines without enforced foreign keys behave the same.
func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	var deleted int64
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range []string{
			`DELETE FROM billing_report_service_costs WHERE report_id = ?`,
			`DELETE FROM billing_report_orders WHERE report_id = ?`,
			`DELETE FROM billing_report_service_totals WHERE report_id = ?`,
		} {
			if err := tx.Exec(stmt, id).Error; err != nil {
				return err
			}
		}
		res := tx.Exec(`DELETE FROM billing_reports WHERE id = ?`, id)
		if res.Error != nil {
			return res.Error
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}
