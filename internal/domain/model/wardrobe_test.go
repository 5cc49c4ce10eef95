package model

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.FieldMap()
}

func TestCreateProductRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		req := &CreateProductRequest{Name: "  Wool coat ", PriceCents: 12900, ExpiryDate: "2026-12-01"}
		require.NoError(t, req.Validate())
		assert.Equal(t, "Wool coat", req.Name)
		require.NotNil(t, req.Expiry())
		assert.Equal(t, time.December, req.Expiry().Month())
	})

	t.Run("missing name and bad date", func(t *testing.T) {
		req := &CreateProductRequest{Name: " ", PriceCents: -1, ExpiryDate: "01/12/2026"}
		fields := requireFieldErrors(t, req.Validate())
		assert.Equal(t, "is required", fields["name"])
		assert.Contains(t, fields, "price_cents")
		assert.Contains(t, fields, "expiry_date")
	})

	t.Run("name too long", func(t *testing.T) {
		req := &CreateProductRequest{Name: strings.Repeat("a", 256)}
		fields := requireFieldErrors(t, req.Validate())
		assert.Equal(t, "must be at most 255 characters", fields["name"])
	})
}

func TestUpdateProductRequest_Validate(t *testing.T) {
	empty := "   "
	req := &UpdateProductRequest{Name: &empty}
	fields := requireFieldErrors(t, req.Validate())
	assert.Equal(t, "is required", fields["name"])

	name := " Scarf "
	req = &UpdateProductRequest{Name: &name}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Scarf", *req.Name)
	assert.True(t, req.HasChanges())
	assert.False(t, (&UpdateProductRequest{}).HasChanges())
}

func TestCreateLookRequest_Validate(t *testing.T) {
	id := "0b9c7a38-7d55-4c1e-9a53-55f0f3d4a2b1"
	req := &CreateLookRequest{Name: "Weekend", ProductIDs: []string{id, id, " "}}
	require.NoError(t, req.Validate())
	assert.Equal(t, []string{id}, req.ProductIDs)

	req = &CreateLookRequest{Name: "Weekend", ProductIDs: []string{"not-a-uuid"}}
	fields := requireFieldErrors(t, req.Validate())
	assert.Equal(t, "must be a valid id", fields["product_ids[0]"])
}

func TestCreateEventRequest_Validate(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	req := &CreateEventRequest{Title: "Dinner", StartsAt: start, EndsAt: start.Add(2 * time.Hour)}
	require.NoError(t, req.Validate())

	req = &CreateEventRequest{Title: "Dinner", StartsAt: start, EndsAt: start.Add(-time.Hour)}
	fields := requireFieldErrors(t, req.Validate())
	assert.Contains(t, fields, "ends_at")

	req = &CreateEventRequest{}
	fields = requireFieldErrors(t, req.Validate())
	assert.Contains(t, fields, "title")
	assert.Contains(t, fields, "starts_at")
}

func TestDefaultEventRange(t *testing.T) {
	now := time.Date(2026, 2, 17, 15, 4, 5, 0, time.UTC)
	r := DefaultEventRange("u1", now)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), r.To)
}

func TestLabelRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       LabelRequest
		wantField string
	}{
		{name: "name only", req: LabelRequest{ProductName: "Milk"}},
		{name: "id only", req: LabelRequest{ProductID: "0b9c7a38-7d55-4c1e-9a53-55f0f3d4a2b1"}},
		{name: "neither", req: LabelRequest{}, wantField: "productName"},
		{name: "bad id", req: LabelRequest{ProductID: "42"}, wantField: "productId"},
		{name: "bad date", req: LabelRequest{ProductName: "Milk", ExpiryDate: "tomorrow"}, wantField: "expiryDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			assert.Contains(t, requireFieldErrors(t, err), tt.wantField)
		})
	}
}

func TestProduct_ImageURL(t *testing.T) {
	assert.Empty(t, Product{}.ImageURL())
	assert.Equal(t, "/uploads/abc.png", Product{ImagePath: "abc.png"}.ImageURL())
}
