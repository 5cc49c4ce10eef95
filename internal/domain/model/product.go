// Package model defines the catalog, look, calendar and label types used by the wardrobe application.
package model

import (
	"path"
	"strings"
	"time"
)

// Product is an item in a user's catalog.
type Product struct {
	ID          string     `json:"id"                    db:"id"`
	OwnerID     string     `json:"owner_id"              db:"owner_id"`
	Name        string     `json:"name"                  db:"name"`
	Description string     `json:"description"           db:"description"`
	Category    string     `json:"category"              db:"category"`
	PriceCents  int64      `json:"price_cents"           db:"price_cents"`
	ImagePath   string     `json:"image_path,omitempty"  db:"image_path"`
	ExpiryDate  *time.Time `json:"expiry_date,omitempty" db:"expiry_date"`
	CreatedAt   time.Time  `json:"created_at"            db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"            db:"updated_at"`
}

// ImageURL returns the public URL of the product image, or "" when there is none.
func (p Product) ImageURL() string {
	if p.ImagePath == "" {
		return ""
	}
	return path.Join("/uploads", p.ImagePath)
}

// CreateProductRequest represents a request to create a new product.
type CreateProductRequest struct {
	Name        string `json:"name"        schema:"name"        validate:"required,max=255"`
	Description string `json:"description" schema:"description" validate:"max=2000"`
	Category    string `json:"category"    schema:"category"    validate:"max=100"`
	PriceCents  int64  `json:"price_cents" schema:"price_cents" validate:"min=0"`
	ExpiryDate  string `json:"expiry_date" schema:"expiry_date"`
}

// Normalize trims whitespace from string fields.
func (r *CreateProductRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Category = strings.TrimSpace(r.Category)
	r.ExpiryDate = strings.TrimSpace(r.ExpiryDate)
}

// Validate validates the CreateProductRequest fields.
func (r *CreateProductRequest) Validate() error {
	r.Normalize()
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	if _, err := parseDate(r.ExpiryDate); err != nil {
		verr.add("expiry_date", "must be a date in YYYY-MM-DD format")
	}
	return verr.orNil()
}

// Expiry returns the parsed expiry date, or nil when unset or malformed.
func (r *CreateProductRequest) Expiry() *time.Time {
	t, _ := parseDate(r.ExpiryDate)
	return t
}

// UpdateProductRequest represents a partial update to an existing product.
type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty"        validate:"omitempty,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    *string `json:"category,omitempty"    validate:"omitempty,max=100"`
	PriceCents  *int64  `json:"price_cents,omitempty" validate:"omitempty,min=0"`
	ExpiryDate  *string `json:"expiry_date,omitempty"`
}

// Validate validates the UpdateProductRequest fields.
func (r *UpdateProductRequest) Validate() error {
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	if r.Name != nil {
		trimmed := strings.TrimSpace(*r.Name)
		r.Name = &trimmed
		if trimmed == "" {
			verr.add("name", "is required")
		}
	}
	if r.ExpiryDate != nil {
		if _, err := parseDate(*r.ExpiryDate); err != nil {
			verr.add("expiry_date", "must be a date in YYYY-MM-DD format")
		}
	}
	return verr.orNil()
}

// HasChanges reports whether any field is set.
func (r *UpdateProductRequest) HasChanges() bool {
	return r.Name != nil || r.Description != nil || r.Category != nil || r.PriceCents != nil || r.ExpiryDate != nil
}

// ProductListOptions controls paging and filtering for listing products.
// Q matches name via ILIKE substring.
type ProductListOptions struct {
	OwnerID  string
	Q        string
	Category string
	Limit    int
	Offset   int
}

// Normalize clamps paging values.
func (o *ProductListOptions) Normalize() {
	if o.Limit <= 0 || o.Limit > 200 {
		o.Limit = 50
	}
	if o.Offset < 0 {
		o.Offset = 0
	}
	o.Q = strings.TrimSpace(o.Q)
	o.Category = strings.TrimSpace(o.Category)
}
