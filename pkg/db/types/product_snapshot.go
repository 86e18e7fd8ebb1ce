package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ProductSnapshot freezes the catalog data a line item was added with.
// Prices and titles shown at checkout come from here, never from a re-fetch.
type ProductSnapshot struct {
	Title       string   `json:"title"`
	Images      []string `json:"images,omitempty"`
	SellerLabel string   `json:"seller_label,omitempty"`
	AgeRange    string   `json:"age_range,omitempty"`
}

func (s ProductSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

func (s *ProductSnapshot) Scan(value any) error {
	if value == nil {
		*s = ProductSnapshot{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("product snapshot: unsupported scan type %T", value)
	}
}
