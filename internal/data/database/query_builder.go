// Package database builds parameterized list queries with sanitized identifiers.
package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

type ConditionType string

const (
	Equal              ConditionType = "="
	NotEqual           ConditionType = "!="
	GreaterThan        ConditionType = ">"
	LessThan           ConditionType = "<"
	LessThanOrEqual    ConditionType = "<="
	GreaterThanOrEqual ConditionType = ">="
	ILike              ConditionType = "ILIKE"
	Custom             ConditionType = "CUSTOM"
	defaultLimit                     = -1
	defaultOffset                    = -1
)

// Condition is a single WHERE predicate. Custom conditions carry raw SQL
// whose placeholders are written as "?" and renumbered at build time.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery string
	rawArgs  []any
}

func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond adds a raw predicate such as "(a = ? OR b = ?)".
func WhereRawCond(rawQuery string, params ...any) Condition {
	return Condition{Type: Custom, rawQuery: rawQuery, rawArgs: params}
}

type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

type ListQueryOption func(*ListQueryOptions)

func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  defaultLimit,
		Offset: defaultOffset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition adds a single condition.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Accepts 0.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Accepts 0.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly sets the query to count only.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

// sanitizeQualifiedIdentifier quotes identifiers like "table.column" part by part.
func sanitizeQualifiedIdentifier(ident string) string {
	return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
}

func buildSelectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*)"
	}
	if len(options.Columns) == 0 {
		return "SELECT *"
	}
	cols := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		cols[i] = sanitizeQualifiedIdentifier(col)
	}
	return "SELECT " + strings.Join(cols, ", ")
}

func buildWhereClause(conds []Condition, args []any) (string, []any) {
	if len(conds) == 0 {
		return "", args
	}
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		if c.Type == Custom {
			raw := c.rawQuery
			for _, a := range c.rawArgs {
				args = append(args, a)
				raw = strings.Replace(raw, "?", fmt.Sprintf("$%d", len(args)), 1)
			}
			parts = append(parts, raw)
			continue
		}
		args = append(args, c.Value)
		parts = append(parts, fmt.Sprintf("%s %s $%d", sanitizeQualifiedIdentifier(c.Field), c.Type, len(args)))
	}
	return " WHERE " + strings.Join(parts, " AND "), args
}

func buildPaginationAndOrderClause(options *ListQueryOptions, args []any) (string, []any) {
	var clause strings.Builder
	if options.OrderBy != "" && !options.CountOnly {
		clause.WriteString(" ORDER BY ")
		clause.WriteString(sanitizeQualifiedIdentifier(options.OrderBy))
		dir := strings.ToUpper(options.OrderDir)
		if dir == "ASC" || dir == "DESC" {
			clause.WriteString(" " + dir)
		}
	}
	if options.Limit != defaultLimit && !options.CountOnly {
		args = append(args, options.Limit)
		fmt.Fprintf(&clause, " LIMIT $%d", len(args))
	}
	if options.Offset != defaultOffset && !options.CountOnly {
		args = append(args, options.Offset)
		fmt.Fprintf(&clause, " OFFSET $%d", len(args))
	}
	return clause.String(), args
}

// BuildListQuery constructs a SQL query string and arguments from options.
//
//	query, args := BuildListQuery(NewListQueryOptions("products",
//		WithColumns("id", "name"),
//		WithCondition(WhereCond("owner_id", Equal, owner)),
//		WithOrderBy("created_at", "DESC"),
//		WithLimit(10),
//	))
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}
	var args []any
	var q strings.Builder
	q.WriteString(buildSelectClause(options))
	q.WriteString(" FROM ")
	q.WriteString(sanitizeQualifiedIdentifier(options.Table))
	where, args := buildWhereClause(options.Conditions, args)
	q.WriteString(where)
	tail, args := buildPaginationAndOrderClause(options, args)
	q.WriteString(tail)
	return q.String(), args
}
