package types

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// ProductSize is one size variant, carrying its own price override.
type ProductSize struct {
	Label string          `json:"label"`
	Price decimal.Decimal `json:"price"`
}

// ProductSizes is the variant list stored as JSONB on a product document.
type ProductSizes []ProductSize

// Value serializes the size list to JSON.
func (p ProductSizes) Value() (driver.Value, error) {
	if p == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(p)
}

// Scan decodes JSONB into the size list.
func (p *ProductSizes) Scan(value interface{}) error {
	if value == nil {
		*p = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded ProductSizes
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*p = decoded
	return nil
}

// ByLabel returns the variant matching the label, if any.
func (p ProductSizes) ByLabel(label string) (ProductSize, bool) {
	for _, size := range p {
		if size.Label == label {
			return size, true
		}
	}
	return ProductSize{}, false
}
