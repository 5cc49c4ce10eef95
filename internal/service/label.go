package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	jmespath "github.com/jmespath-community/go-jmespath"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
	"github.com/target/wardrobe/internal/ports"
)

// LabelField names one printed label line and the JMESPath expression that extracts its value
// from the label document.
type LabelField struct {
	Name  string
	Title string
	Expr  string
}

// DefaultLabelFields are printed when no custom fields are configured.
//
//nolint:gochecknoglobals // read-only defaults
var DefaultLabelFields = []LabelField{
	{Name: "category", Title: "Category", Expr: "category"},
	{Name: "price", Title: "Price", Expr: "price"},
	{Name: "expires", Title: "Use by", Expr: "expiry_date"},
}

// LabelService builds printable product labels.
type LabelService struct {
	products ports.ProductRepository
	fields   []LabelField
	now      func() time.Time
}

// LabelServiceOptions groups dependencies for LabelService.
type LabelServiceOptions struct {
	Products ports.ProductRepository // Optional: required to build labels from a product id
	Fields   []LabelField
	Now      func() time.Time
}

// NewLabelService constructs a LabelService, compiling every field expression up front.
func NewLabelService(opts LabelServiceOptions) (*LabelService, error) {
	fields := opts.Fields
	if len(fields) == 0 {
		fields = DefaultLabelFields
	}
	for _, f := range fields {
		if strings.TrimSpace(f.Name) == "" {
			return nil, errors.New("label field name is required")
		}
		if _, err := jmespath.Compile(f.Expr); err != nil {
			return nil, fmt.Errorf("label field %s: invalid expression: %w", f.Name, err)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &LabelService{products: opts.Products, fields: fields, now: now}, nil
}

// Build produces a label for ownerID. When req names a product id the product is loaded and
// its values fill anything the request leaves empty.
func (s *LabelService) Build(ctx context.Context, ownerID string, req *model.LabelRequest) (*model.Label, error) {
	if req == nil {
		return nil, apperrors.Validation("label request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc := map[string]any{
		"name":        req.ProductName,
		"expiry_date": req.ExpiryDate,
	}
	if req.ProductID != "" {
		p, err := s.lookupProduct(ctx, req.ProductID, ownerID)
		if err != nil {
			return nil, err
		}
		mergeProduct(doc, p)
	}

	label := &model.Label{
		ProductID:   req.ProductID,
		ProductName: asString(doc["name"]),
		ExpiryDate:  asString(doc["expiry_date"]),
		Fields:      make(map[string]string, len(s.fields)),
		Lines:       []string{asString(doc["name"])},
		GeneratedAt: s.now().UTC(),
	}
	for _, f := range s.fields {
		v, err := jmespath.Search(f.Expr, doc)
		if err != nil {
			return nil, fmt.Errorf("evaluate label field %s: %w", f.Name, err)
		}
		text := formatLabelValue(v)
		if text == "" {
			continue
		}
		label.Fields[f.Name] = text
		title := f.Title
		if title == "" {
			title = f.Name
		}
		label.Lines = append(label.Lines, title+": "+text)
	}
	return label, nil
}

func (s *LabelService) lookupProduct(ctx context.Context, id, ownerID string) (*model.Product, error) {
	if s.products == nil {
		return nil, apperrors.Validation("product lookup is not available")
	}
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ownerID == "" || p.OwnerID != ownerID {
		return nil, apperrors.NotFound("product not found")
	}
	return p, nil
}

// mergeProduct fills doc from p without overriding values given on the request.
func mergeProduct(doc map[string]any, p *model.Product) {
	if asString(doc["name"]) == "" {
		doc["name"] = p.Name
	}
	if asString(doc["expiry_date"]) == "" && p.ExpiryDate != nil {
		doc["expiry_date"] = p.ExpiryDate.Format(model.DateLayout)
	}
	doc["id"] = p.ID
	doc["description"] = p.Description
	doc["category"] = p.Category
	doc["price_cents"] = float64(p.PriceCents)
	doc["price"] = formatPrice(p.PriceCents)
	doc["image_url"] = p.ImageURL()
}

// formatPrice renders cents as dollars. Rows are constrained to non-negative prices, but a
// negative value still prints as -$0.50 rather than $0.-50.
func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func formatLabelValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			if s := formatLabelValue(e); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}
