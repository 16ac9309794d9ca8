package domain

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Built-in logical field names.
const (
	FieldID            = "id"
	FieldOrderNumber   = "order_number"
	FieldStatus        = "status"
	FieldOrderDate     = "order_date"
	FieldWeight        = "weight"
	FieldTotalQuantity = "total_quantity"
	FieldSKUQuantity   = "sku_quantity"
)

var skuFieldAliases = map[string]struct{}{
	FieldSKUQuantity: {},
	"sku":            {},
	"skus":           {},
	"sku_quantities": {},
}

// CanonicalField lowercases and trims a field name and folds the SKU
// aliases into FieldSKUQuantity.
func CanonicalField(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := skuFieldAliases[name]; ok {
		return FieldSKUQuantity
	}
	return name
}

// IsSKUField reports whether name refers to the SKU-quantity map.
func IsSKUField(name string) bool {
	return CanonicalField(name) == FieldSKUQuantity
}

// Node is either a Rule or a Group.
type Node interface {
	isNode()
}

// Rule is a single (field, operator, value) condition.
type Rule struct {
	Field    string
	Operator Operator
	Value    any
}

// Group combines child nodes with a logic operator.
type Group struct {
	Logic    Logic
	Children []Node
}

func (Rule) isNode()  {}
func (Group) isNode() {}

func (r Rule) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Field    string   `json:"field"`
		Operator Operator `json:"operator"`
		Value    any      `json:"value"`
	}{r.Field, r.Operator, r.Value})
}

func (g Group) MarshalJSON() ([]byte, error) {
	children := g.Children
	if children == nil {
		children = []Node{}
	}
	return json.Marshal(struct {
		Logic    Logic  `json:"logic_operator"`
		Children []Node `json:"children"`
	}{g.Logic, children})
}

// ValueKind tells what a field resolved to.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindScalar
	KindSKUMap
)

// Value is a resolved order field.
//
// A scalar always carries its string form in Str. Num is set, and IsNum
// true, only when that form parses as a decimal.
type Value struct {
	Kind  ValueKind
	Str   string
	Num   decimal.Decimal
	IsNum bool
	SKUs  map[string]int64
}

// Missing is the value of a field the order does not carry.
func Missing() Value {
	return Value{Kind: KindMissing}
}

// Number builds a numeric scalar.
func Number(d decimal.Decimal) Value {
	return Value{Kind: KindScalar, Str: d.String(), Num: d, IsNum: true}
}

// Text builds a string scalar, parsing it as a number when possible.
func Text(s string) Value {
	v := Value{Kind: KindScalar, Str: s}
	if d, err := decimal.NewFromString(strings.TrimSpace(s)); err == nil {
		v.Num = d
		v.IsNum = true
	}
	return v
}

// SKUMap wraps a normalized SKU-quantity map.
func SKUMap(skus map[string]int64) Value {
	if skus == nil {
		skus = map[string]int64{}
	}
	return Value{Kind: KindSKUMap, SKUs: skus}
}

// IsMissing reports whether the field could not be resolved.
func (v Value) IsMissing() bool {
	return v.Kind == KindMissing
}
