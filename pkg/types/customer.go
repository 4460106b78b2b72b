package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Customer is the delivery-details block embedded in an order document.
type Customer struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Address1  string  `json:"address1"`
	Address2  *string `json:"address2,omitempty"`
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Notes     *string `json:"notes,omitempty"`
	Subscribe bool    `json:"subscribe"`
}

// FullName joins the first and last name for display.
func (c Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Value serializes the customer block to JSON for JSONB storage.
func (c Customer) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan decodes a JSONB value into the customer block.
func (c *Customer) Scan(value interface{}) error {
	if value == nil {
		*c = Customer{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported jsonb scan type %T", value)
	}
}
