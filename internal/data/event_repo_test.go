package data

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/wardrobe/internal/domain/model"
	apperrors "github.com/target/wardrobe/internal/errors"
)

func TestEventRepo_Create_RejectsForeignLook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lookID := uuid.NewString()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS")).
		WithArgs(lookID, "owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	_, err = NewEventRepo(db).Create(context.Background(), "owner-1", &model.CreateEventRequest{
		Title: "Dinner", StartsAt: start, EndsAt: start.Add(2 * time.Hour), LookID: lookID,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_Create_WithoutLook(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	start := time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("INSERT INTO calendar_events").
		WillReturnRows(sqlmock.NewRows(eventColumnList).
			AddRow("e1", "owner-1", "Dinner", "", start, start.Add(time.Hour), nil, start))

	e, err := NewEventRepo(db).Create(context.Background(), "owner-1", &model.CreateEventRequest{
		Title: "Dinner", StartsAt: start, EndsAt: start.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Nil(t, e.LookID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListRange_OverlapQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rng := model.DefaultEventRange("owner-1", time.Date(2025, 5, 17, 0, 0, 0, 0, time.UTC))
	mock.ExpectQuery(regexp.QuoteMeta(
		`FROM "calendar_events" WHERE "owner_id" = $1 AND (starts_at < $2 AND ends_at > $3) ORDER BY "starts_at" ASC`,
	)).
		WithArgs("owner-1", rng.To, rng.From).
		WillReturnRows(sqlmock.NewRows(eventColumnList))

	out, err := NewEventRepo(db).ListRange(context.Background(), rng)
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_ListRange_EmptyWindow(t *testing.T) {
	now := time.Now()
	out, err := NewEventRepo(nil).ListRange(context.Background(), model.EventRange{OwnerID: "o", From: now, To: now})
	require.NoError(t, err)
	assert.Empty(t, out)
}
