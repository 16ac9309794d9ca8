package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	billingreportdomain "github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	customerdomain "github.com/smallbiznis/fulfillment-billing/internal/customer/domain"
	orderdomain "github.com/smallbiznis/fulfillment-billing/internal/order/domain"
	servicecatalogdomain "github.com/smallbiznis/fulfillment-billing/internal/servicecatalog/domain"
	"gorm.io/gorm"
)

// RunMigrations applies the embedded postgres schema.
func RunMigrations(db *sql.DB) error {
	if db == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", upErr)
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}

// Models lists every table owned by the engine, parents first.
func Models() []any {
	return []any{
		&customerdomain.Customer{},
		&orderdomain.Order{},
		&servicecatalogdomain.Service{},
		&servicecatalogdomain.CustomerService{},
		&billingreportdomain.BillingReport{},
		&billingreportdomain.ServiceTotal{},
		&billingreportdomain.OrderCost{},
		&billingreportdomain.ServiceCost{},
	}
}

// AutoMigrate creates the schema from the gorm models. Used for sqlite and
// mysql, which the embedded migrations do not target.
func AutoMigrate(conn *gorm.DB) error {
	return conn.AutoMigrate(Models()...)
}
