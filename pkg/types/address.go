package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// Address is a shipping destination. Stored as JSONB.
type Address struct {
	Recipient  string `json:"recipient" validate:"required,min=2,max=128"`
	Line1      string `json:"line1" validate:"required,min=3,max=256"`
	Line2      string `json:"line2,omitempty" validate:"omitempty,max=256"`
	City       string `json:"city" validate:"required,min=2,max=128"`
	Region     string `json:"region,omitempty" validate:"omitempty,max=128"`
	PostalCode string `json:"postal_code" validate:"required,min=3,max=16"`
	Country    string `json:"country" validate:"required,len=2"`
	Phone      string `json:"phone,omitempty" validate:"omitempty,e164"`
}

// IsZero reports whether no address has been entered yet.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.Line1) == "" && strings.TrimSpace(a.City) == ""
}

func (a Address) Value() (driver.Value, error) {
	if a.IsZero() {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Address) Scan(value any) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("address: unsupported scan type %T", value)
	}
}
