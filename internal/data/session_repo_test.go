package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

func TestSessionRepo_Save_Upserts(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	exp := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions (sid, data, expires_at)")).
		WithArgs("sid-1", []byte("payload"), exp).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewSessionRepo(db)
	require.NoError(t, repo.Save(context.Background(), domainauth.SessionRecord{
		ID: "sid-1", Data: []byte("payload"), ExpiresAt: exp,
	}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Save_RequiresID(t *testing.T) {
	repo := NewSessionRepo(nil)
	assert.ErrorIs(t, repo.Save(context.Background(), domainauth.SessionRecord{}), ErrIDRequired)
}

func TestSessionRepo_Get(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("live record", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery(regexp.QuoteMeta("SELECT sid, data, expires_at FROM sessions WHERE sid = $1 AND expires_at > $2")).
			WithArgs("sid-1", now).
			WillReturnRows(sqlmock.NewRows([]string{"sid", "data", "expires_at"}).
				AddRow("sid-1", []byte("payload"), now.Add(time.Hour)))

		repo := NewSessionRepoWithTimeProvider(db, NewFixedTimeProvider(now))
		rec, err := repo.Get(context.Background(), "sid-1")
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), rec.Data)
		assert.Equal(t, now.Add(time.Hour), rec.ExpiresAt)
	})

	t.Run("missing or expired", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT sid").WillReturnRows(sqlmock.NewRows([]string{"sid", "data", "expires_at"}))

		repo := NewSessionRepoWithTimeProvider(db, NewFixedTimeProvider(now))
		_, err = repo.Get(context.Background(), "gone")
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := NewSessionRepo(nil).Get(context.Background(), "")
		assert.ErrorIs(t, err, ports.ErrSessionNotFound)
	})

	t.Run("driver failure is not masked", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectQuery("SELECT sid").WillReturnError(errors.New("connection refused"))
		_, err = NewSessionRepo(db).Get(context.Background(), "sid-1")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ports.ErrSessionNotFound)
	})
}

func TestSessionRepo_PurgeExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at <= $1")).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := NewSessionRepo(db).PurgeExpired(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE sid = $1")).
		WithArgs("sid-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewSessionRepo(db)
	require.NoError(t, repo.Delete(context.Background(), "sid-1"))
	require.NoError(t, repo.Delete(context.Background(), ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}
