package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/target/wardrobe/internal/data/pgxutil"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

// LookRepo persists looks and their ordered product membership.
type LookRepo struct {
	DB *sql.DB
}

// NewLookRepo creates a new LookRepo.
func NewLookRepo(db *sql.DB) *LookRepo {
	return &LookRepo{DB: db}
}

const (
	lookInsertQuery = `
		INSERT INTO looks (id, owner_id, name, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, name, notes, created_at`
	// Only products owned by the same user may join a look.
	lookItemInsertQuery = `
		INSERT INTO look_items (look_id, product_id, position)
		SELECT $1, p.id, $2 FROM products p WHERE p.id = $3 AND p.owner_id = $4`
	lookListQuery = `
		SELECT l.id, l.owner_id, l.name, l.notes, l.created_at,
		       COALESCE(string_agg(li.product_id::text, ',' ORDER BY li.position), '')
		FROM looks l
		LEFT JOIN look_items li ON li.look_id = l.id
		WHERE l.owner_id = $1
		GROUP BY l.id
		ORDER BY l.created_at DESC`
	lookDeleteQuery = `DELETE FROM looks WHERE id = $1 AND owner_id = $2`
)

// Create inserts a look and its items in one transaction.
// A product id that does not exist or belongs to someone else aborts the whole look.
func (r *LookRepo) Create(ctx context.Context, ownerID string, req *model.CreateLookRequest) (*model.Look, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var look model.Look
	err := pgxutil.WithSQLTx(ctx, r.DB, pgxutil.SQLTxConfig{Fn: func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, lookInsertQuery, uuid.NewString(), ownerID, req.Name, req.Notes).
			Scan(&look.ID, &look.OwnerID, &look.Name, &look.Notes, &look.CreatedAt); err != nil {
			return wrapDBErr("create look", err)
		}
		for i, pid := range req.ProductIDs {
			res, err := tx.ExecContext(ctx, lookItemInsertQuery, look.ID, i, pid, ownerID)
			if err != nil {
				return wrapDBErr("add look item", err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return wrapDBErr("add look item rows affected", err)
			}
			if n == 0 {
				return apperrors.ValidationField("product_ids", "unknown product "+pid)
			}
		}
		return nil
	}})
	if err != nil {
		return nil, err
	}
	look.ProductIDs = append([]string{}, req.ProductIDs...)
	return &look, nil
}

// ListByOwner returns the owner's looks, newest first, with product ids in position order.
func (r *LookRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Look, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	rows, err := r.DB.QueryContext(ctx, lookListQuery, ownerID)
	if err != nil {
		return nil, wrapDBErr("list looks", err)
	}
	defer rows.Close()

	var out []*model.Look
	for rows.Next() {
		var (
			l   model.Look
			ids string
		)
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Notes, &l.CreatedAt, &ids); err != nil {
			return nil, wrapDBErr("scan look", err)
		}
		l.ProductIDs = splitIDs(ids)
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("iterate looks", err)
	}
	return out, nil
}

func splitIDs(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// Delete removes a look owned by ownerID. Its items cascade.
func (r *LookRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if id == "" {
		return false, ErrIDRequired
	}
	res, err := r.DB.ExecContext(ctx, lookDeleteQuery, id, ownerID)
	if err != nil {
		return false, wrapDBErr("delete look", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBErr("delete look rows affected", err)
	}
	return n > 0, nil
}
