package data

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/target/wardrobe/internal/data/database"
	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

// EventRepo persists calendar events.
type EventRepo struct {
	DB *sql.DB
}

// NewEventRepo creates a new EventRepo.
func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{DB: db}
}

var eventColumnList = []string{"id", "owner_id", "title", "notes", "starts_at", "ends_at", "look_id", "created_at"}

const (
	eventInsertQuery = `
		INSERT INTO calendar_events (id, owner_id, title, notes, starts_at, ends_at, look_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, owner_id, title, notes, starts_at, ends_at, look_id, created_at`
	eventLookOwnedQuery = `SELECT EXISTS (SELECT 1 FROM looks WHERE id = $1 AND owner_id = $2)`
	eventDeleteQuery    = `DELETE FROM calendar_events WHERE id = $1 AND owner_id = $2`
)

func scanEvent(row rowScanner) (*model.CalendarEvent, error) {
	var (
		e      model.CalendarEvent
		lookID sql.NullString
	)
	if err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Notes, &e.StartsAt, &e.EndsAt, &lookID, &e.CreatedAt); err != nil {
		return nil, err
	}
	if lookID.Valid {
		id := lookID.String
		e.LookID = &id
	}
	return &e, nil
}

// Create schedules an event. A referenced look must belong to the same owner.
func (r *EventRepo) Create(
	ctx context.Context,
	ownerID string,
	req *model.CreateEventRequest,
) (*model.CalendarEvent, error) {
	if req == nil {
		return nil, ErrRequestRequired
	}
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var lookID sql.NullString
	if req.LookID != "" {
		var owned bool
		if err := r.DB.QueryRowContext(ctx, eventLookOwnedQuery, req.LookID, ownerID).Scan(&owned); err != nil {
			return nil, wrapDBErr("check look owner", err)
		}
		if !owned {
			return nil, apperrors.ValidationField("look_id", "unknown look")
		}
		lookID = sql.NullString{String: req.LookID, Valid: true}
	}

	e, err := scanEvent(r.DB.QueryRowContext(ctx, eventInsertQuery,
		uuid.NewString(), ownerID, req.Title, req.Notes, req.StartsAt.UTC(), req.EndsAt.UTC(), lookID,
	))
	if err != nil {
		return nil, wrapDBErr("create event", err)
	}
	return e, nil
}

// ListRange returns events that overlap [From, To), ordered by start time.
func (r *EventRepo) ListRange(ctx context.Context, rng model.EventRange) ([]*model.CalendarEvent, error) {
	if rng.OwnerID == "" {
		return nil, ErrOwnerRequired
	}
	if !rng.To.After(rng.From) {
		return []*model.CalendarEvent{}, nil
	}
	query, args := database.BuildListQuery(database.NewListQueryOptions("calendar_events",
		database.WithColumns(eventColumnList...),
		database.WithCondition(database.WhereCond("owner_id", database.Equal, rng.OwnerID)),
		database.WithCondition(database.WhereRawCond("(starts_at < ? AND ends_at > ?)", rng.To.UTC(), rng.From.UTC())),
		database.WithOrderBy("starts_at", "ASC"),
	))
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapDBErr("list events", err)
	}
	defer rows.Close()

	out := []*model.CalendarEvent{}
	for rows.Next() {
		e, scanErr := scanEvent(rows)
		if scanErr != nil {
			return nil, wrapDBErr("scan event", scanErr)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapDBErr("iterate events", err)
	}
	return out, nil
}

// Delete removes an event owned by ownerID.
func (r *EventRepo) Delete(ctx context.Context, id, ownerID string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, ErrIDRequired
	}
	res, err := r.DB.ExecContext(ctx, eventDeleteQuery, id, ownerID)
	if err != nil {
		return false, wrapDBErr("delete event", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, wrapDBErr("delete event rows affected", err)
	}
	return n > 0, nil
}
