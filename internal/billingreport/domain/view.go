package domain

import (
	"github.com/bwmarrin/snowflake"
)

const dateLayout = "2006-01-02"

// View is the exported JSON form of a report.
type View struct {
	CustomerID    snowflake.ID                `json:"customer_id"`
	StartDate     string                      `json:"start_date"`
	EndDate       string                      `json:"end_date"`
	TotalAmount   string                      `json:"total_amount"`
	ServiceTotals map[string]ServiceTotalView `json:"service_totals"`
	Orders        []OrderView                 `json:"orders"`
}

type ServiceTotalView struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

type OrderView struct {
	OrderID     snowflake.ID      `json:"order_id"`
	TotalAmount string            `json:"total_amount"`
	Services    []ServiceCostView `json:"services"`
}

type ServiceCostView struct {
	ServiceID snowflake.ID `json:"service_id"`
	Name      string       `json:"name"`
	Amount    string       `json:"amount"`
}

// ToView renders r with amounts fixed to places fractional digits.
func (r *BillingReport) ToView(places int32) View {
	view := View{
		CustomerID:    r.CustomerID,
		StartDate:     r.StartDate.UTC().Format(dateLayout),
		EndDate:       r.EndDate.UTC().Format(dateLayout),
		TotalAmount:   r.TotalAmount.StringFixed(places),
		ServiceTotals: make(map[string]ServiceTotalView, len(r.ServiceTotals)),
		Orders:        make([]OrderView, 0, len(r.Orders)),
	}

	for _, total := range r.ServiceTotals {
		view.ServiceTotals[total.ServiceID.String()] = ServiceTotalView{
			Name:   total.Name,
			Amount: total.Amount.StringFixed(places),
		}
	}

	for _, order := range r.Orders {
		item := OrderView{
			OrderID:     order.OrderID,
			TotalAmount: order.TotalAmount.StringFixed(places),
			Services:    make([]ServiceCostView, 0, len(order.Services)),
		}
		for _, svc := range order.Services {
			item.Services = append(item.Services, ServiceCostView{
				ServiceID: svc.ServiceID,
				Name:      svc.Name,
				Amount:    svc.Amount.StringFixed(places),
			})
		}
		view.Orders = append(view.Orders, item)
	}

	return view
}
