package domain

import (
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Order is an imported fulfillment order. The engine only reads it.
type Order struct {
	ID          snowflake.ID        `gorm:"primaryKey" json:"id"`
	CustomerID  snowflake.ID        `gorm:"not null;index" json:"customer_id"`
	OrderNumber string              `gorm:"type:text;not null" json:"order_number"`
	Status      string              `gorm:"type:text;not null" json:"status"`
	OrderDate   time.Time           `gorm:"not null;index" json:"order_date"`
	Weight      decimal.NullDecimal `gorm:"type:numeric" json:"weight"`
	SKUQuantity datatypes.JSONMap   `gorm:"column:sku_quantity;type:jsonb" json:"sku_quantity,omitempty"`
	Fields      datatypes.JSONMap   `gorm:"type:jsonb" json:"fields,omitempty"`
	CreatedAt   time.Time           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// SKUQuantities returns the normalized SKU-quantity map.
func (o Order) SKUQuantities() map[string]int64 {
	quantities, _ := NormalizeQuantities(o.SKUQuantity)
	return quantities
}

// TotalQuantity sums every normalized SKU quantity on the order. The sum
// saturates at MaxInt64; the overflow is reported by Anomalies.
func (o Order) TotalQuantity() int64 {
	var total int64
	for _, qty := range o.SKUQuantities() {
		total, _ = addQuantity(total, qty)
	}
	return total
}

// Anomalies lists the malformed data found on the order. Each anomaly was
// already replaced by a safe default.
func (o Order) Anomalies() []Anomaly {
	quantities, anomalies := NormalizeQuantities(o.SKUQuantity)
	var total int64
	keys := make([]string, 0, len(quantities))
	for key := range quantities {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		var overflow bool
		if total, overflow = addQuantity(total, quantities[key]); overflow {
			anomalies = append(anomalies, Anomaly{Field: "total_quantity", Key: key, Reason: AnomalyQuantityOverflow})
			break
		}
	}
	for i := range anomalies {
		anomalies[i].OrderID = o.ID
	}
	return anomalies
}

// Field returns a named scalar attribute from Fields. An exact key match
// wins over a case-insensitive one.
func (o Order) Field(name string) (any, bool) {
	if o.Fields == nil {
		return nil, false
	}
	if v, ok := o.Fields[name]; ok {
		return v, v != nil
	}
	keys := make([]string, 0, len(o.Fields))
	for key := range o.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if equalFold(key, name) {
			v := o.Fields[key]
			return v, v != nil
		}
	}
	return nil, false
}
