package cmd

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/fulfillment-billing/internal/billingreport"
	billingreportdomain "github.com/smallbiznis/fulfillment-billing/internal/billingreport/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/clock"
	"github.com/smallbiznis/fulfillment-billing/internal/config"
	"github.com/smallbiznis/fulfillment-billing/internal/customer"
	customerdomain "github.com/smallbiznis/fulfillment-billing/internal/customer/domain"
	"github.com/smallbiznis/fulfillment-billing/internal/migration"
	"github.com/smallbiznis/fulfillment-billing/internal/observability"
	"github.com/smallbiznis/fulfillment-billing/internal/order"
	"github.com/smallbiznis/fulfillment-billing/internal/rating"
	"github.com/smallbiznis/fulfillment-billing/internal/rule"
	"github.com/smallbiznis/fulfillment-billing/internal/servicecatalog"
	"github.com/smallbiznis/fulfillment-billing/pkg/db"
	"github.com/smallbiznis/fulfillment-billing/pkg/errs"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// engine is what the commands need from the running application.
type engine struct {
	Reports   billingreportdomain.Service
	Customers customerdomain.Repository
	DB        *gorm.DB
	Config    *config.EngineConfigHolder
	IDs       *snowflake.Node
}

func provideSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}

func modules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(provideSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		customer.Module,
		order.Module,
		servicecatalog.Module,
		rule.Module,
		rating.Module,
		billingreport.Module,

		fx.Decorate(func(cfg config.Config) config.Config {
			if engineConfigFile != "" {
				cfg.EngineConfigFile = engineConfigFile
			}
			return cfg
		}),
		fx.Decorate(func(cfg observability.Config) observability.Config {
			// stdout carries the command output.
			cfg.LogOutput = "stderr"
			if verbose {
				cfg.LogLevel = "debug"
			}
			return cfg
		}),
	)
}

// withEngine starts the application, runs fn and stops it again.
func withEngine(ctx context.Context, fn func(ctx context.Context, e engine) error) error {
	var e engine
	app := fx.New(
		fx.NopLogger,
		modules(),
		fx.Populate(&e.Reports, &e.Customers, &e.DB, &e.Config, &e.IDs),
	)
	if err := app.Err(); err != nil {
		return err
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		_ = app.Stop(stopCtx)
	}()

	return fn(ctx, e)
}

// resolveCustomer accepts a numeric customer id or a customer code.
func resolveCustomer(ctx context.Context, e engine, ref string) (snowflake.ID, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return 0, errs.Validation("customer is required", billingreportdomain.ErrInvalidCustomer)
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return snowflake.ID(id), nil
	}

	c, err := e.Customers.FindByCode(ctx, e.DB, ref)
	if err != nil {
		return 0, errs.Internal("load customer", err).With("customer", ref)
	}
	if c == nil {
		return 0, errs.Validation("customer not found", billingreportdomain.ErrCustomerNotFound).With("customer", ref)
	}
	return c.ID, nil
}

func parseReportID(raw string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(raw))
	if err != nil || id <= 0 {
		return 0, errs.Validation("invalid report id", billingreportdomain.ErrInvalidReportID).With("report_id", raw)
	}
	return id, nil
}
