package model

import (
	"strings"
	"time"
)

// Look is a named outfit assembled from products.
type Look struct {
	ID         string    `json:"id"          db:"id"`
	OwnerID    string    `json:"owner_id"    db:"owner_id"`
	Name       string    `json:"name"        db:"name"`
	Notes      string    `json:"notes"       db:"notes"`
	ProductIDs []string  `json:"product_ids"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}

// CreateLookRequest represents a request to create a look.
type CreateLookRequest struct {
	Name       string   `json:"name"        schema:"name"        validate:"required,max=120"`
	Notes      string   `json:"notes"       schema:"notes"       validate:"max=1000"`
	ProductIDs []string `json:"product_ids" schema:"product_ids" validate:"max=50,dive,uuid"`
}

// Validate validates the CreateLookRequest fields and removes duplicate product ids.
func (r *CreateLookRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = strings.TrimSpace(r.Notes)
	r.ProductIDs = dedupe(r.ProductIDs)
	verr, err := validateStruct(r)
	if err != nil {
		return err
	}
	return verr.orNil()
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
