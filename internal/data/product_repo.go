package data

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/target/wardrobe/internal/data/database"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

// ProductRepo provides database operations for catalog products.
type ProductRepo struct {
	DB *sql.DB
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(db *sql.DB) *ProductRepo {
	return &ProductRepo{DB: db}
}

var productColumnList = []string{
	"id", "owner_id", "name", "description", "category",
	"price_cents", "image_path", "expiry_date", "created_at", "updated_at",
}

var productColumns = strings.Join(productColumnList, ", ")

const productInsertQuery = `
	INSERT INTO products (id, owner_id, name, description, category, price_cents, expiry_date)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING id, owner_id, name, description, category, price_cents, image_path, expiry_date, created_at, updated_at`

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		p      model.Product
		expiry sql.NullTime
	)
	if err := row.Scan(
		&p.ID, &p.OwnerID, &p.Name, &p.Description, &p.Category,
		&p.PriceCents, &p.ImagePath, &expiry, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if expiry.Valid {
		t := expiry.Time
		p.ExpiryDate = &t
	}
	return &p, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

// Create inserts a product owned by ownerID.
func (r *ProductRepo) Create(
	ctx context.Context,
	ownerID string,
	req *model.CreateProductRequest,
) (*model.Product, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	p, err := scanProduct(r.DB.QueryRowContext(ctx, productInsertQuery,
		uuid.NewString(), ownerID, req.Name, req.Description, req.Category,
		req.PriceCents, nullableTime(req.Expiry()),
	))
	if err != nil {
		return nil, wrapDBErr("create product", err)
	}
	return p, nil
}

// GetByID retrieves a product by ID.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	p, err := scanProduct(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapDBErr("get product", err)
	}
	return p, nil
}

// List returns products matching opts, newest first.
func (r *ProductRepo) List(ctx context.Context, opts model.ProductListOptions) ([]*model.Product, error) {
	opts.Normalize()
	qopts := []database.ListQueryOption{
		database.WithColumns(productColumnList...),
		database.WithOrderBy("created_at", "DESC"),
		database.WithLimit(opts.Limit),
		database.WithOffset(opts.Offset),
	}
	if opts.OwnerID != "" {
		qopts = append(qopts, database.WithCondition(database.WhereCond("owner_id", database.Equal, opts.OwnerID)))
	}
	if opts.Category != "" {
		qopts = append(qopts, database.WithCondition(database.WhereCond("category", database.Equal, opts.Category)))
	}
	if opts.Q != "" {
		qopts = append(qopts, database.WithCondition(database.WhereCond("name", database.ILike, "%"+escapeLike(opts.Q)+"%")))
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("products", qopts...))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErr("list products", err)
	}
	defer rows.Close()

	out := make([]*model.Product, 0, opts.Limit)
	for rows.Next() {
		p, scanErr := scanProduct(rows)
		if scanErr != nil {
			return nil, wrapDBErr("scan product", scanErr)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("iterate products", err)
	}
	return out, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Update applies the non-nil fields of req to a product owned by ownerID.
// An empty ExpiryDate clears the stored date.
func (r *ProductRepo) Update(
	ctx context.Context,
	id, ownerID string,
	req *model.UpdateProductRequest,
) (*model.Product, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.HasChanges() {
		p, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p.OwnerID != ownerID {
			return nil, apperrors.NotFound("product not found")
		}
		return p, nil
	}

	sets, args := buildProductSets(req)
	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE products SET %s, updated_at = now() WHERE id = $%d AND owner_id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), productColumns,
	)
	p, err := scanProduct(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, wrapDBErr("update product", err)
	}
	return p, nil
}

func buildProductSets(req *model.UpdateProductRequest) ([]string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.Description != nil {
		add("description", strings.TrimSpace(*req.Description))
	}
	if req.Category != nil {
		add("category", strings.TrimSpace(*req.Category))
	}
	if req.PriceCents != nil {
		add("price_cents", *req.PriceCents)
	}
	if req.ExpiryDate != nil {
		expiry := (&model.CreateProductRequest{ExpiryDate: *req.ExpiryDate}).Expiry()
		add("expiry_date", nullableTime(expiry))
	}
	return sets, args
}

// SetImage records the uploaded image path for a product owned by ownerID.
func (r *ProductRepo) SetImage(ctx context.Context, id, ownerID, imagePath string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE products SET image_path = $1, updated_at = now() WHERE id = $2 AND owner_id = $3`,
		imagePath, id, ownerID,
	)
	if err != nil {
		return wrapDBErr("set product image", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrapDBErr("set product image rows affected", err)
	}
	if n == 0 {
		return apperrors.NotFound("product not found")
	}
	return nil
}

// Delete removes a product owned by ownerID and reports whether a row was deleted.
// Products still referenced by a look surface as a foreign key error.
func (r *ProductRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}
	res, err := r.DB.ExecContext(ctx, `DELETE FROM products WHERE id = $1 AND owner_id = $2`, id, ownerID)
	if err != nil {
		return false, wrapDBErr("delete product", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBErr("delete product rows affected", err)
	}
	return n > 0, nil
}
