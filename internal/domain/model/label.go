package model

import (
	"strings"
	"time"
)

// LabelRequest carries the query parameters accepted by the label endpoints.
type LabelRequest struct {
	ProductID   string `json:"productId"   schema:"productId"   validate:"omitempty,uuid"`
	ProductName string `json:"productName" schema:"productName" validate:"max=255"`
	ExpiryDate  string `json:"expiryDate"  schema:"expiryDate"`
}

// Validate requires either a product id or a product name and checks the expiry date format.
func (r *LabelRequest) Validate() error {
	r.ProductID = strings.TrimSpace(r.ProductID)
	r.ProductName = strings.TrimSpace(r.ProductName)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	if r.ProductID == "" && r.ProductName == "" {
		verr.add("productName", "is required when productId is not given")
	}
	if _, err := parseDate(r.ExpiryDate); err != nil {
		verr.add("expiryDate", "must be a date in YYYY-MM-DD format")
	}
	return verr.orNil()
}

// Label is a printable product label.
type Label struct {
	ProductID   string            `json:"productId,omitempty"`
	ProductName string            `json:"productName"`
	ExpiryDate  string            `json:"expiryDate,omitempty"`
	Fields      map[string]string `json:"fields,omitempty"`
	Lines       []string          `json:"lines"`
	GeneratedAt time.Time         `json:"generatedAt"`
}
