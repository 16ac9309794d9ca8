package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	GenerateReport(ctx context.Context, req GenerateRequest) (*BillingReport, error)
	GetReport(ctx context.Context, id snowflake.ID) (*BillingReport, error)
	DeleteReport(ctx context.Context, id snowflake.ID) error
	ValidateConfiguration(ctx context.Context, customerID snowflake.ID) error
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer")
	ErrCustomerNotFound = errors.New("customer_not_found")
	ErrInvalidDateRange = errors.New("invalid_date_range")
	ErrMissingDates     = errors.New("missing_dates")
	ErrInvalidReportID  = errors.New("invalid_report_id")
	ErrReportNotFound   = errors.New("report_not_found")
)
