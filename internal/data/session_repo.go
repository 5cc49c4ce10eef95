package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domainauth "github.com/target/wardrobe/internal/domain/auth"
	"github.com/target/wardrobe/internal/ports"
)

// SessionRepo stores session records in the sessions table.
// Rows past expires_at are invisible to Get and removed by PurgeExpired.
type SessionRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSessionRepo creates a new SessionRepo with real time provider.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: RealTimeProvider{}}
}

// NewSessionRepoWithTimeProvider creates a new SessionRepo with a custom time provider (useful for tests).
func NewSessionRepoWithTimeProvider(db *sql.DB, tp TimeProvider) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: tp}
}

const (
	sessionUpsertQuery = `
		INSERT INTO sessions (sid, data, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (sid) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at, updated_at = now()`
	sessionGetQuery    = `SELECT sid, data, expires_at FROM sessions WHERE sid = $1 AND expires_at > $2`
	sessionDeleteQuery = `DELETE FROM sessions WHERE sid = $1`
	sessionPurgeQuery  = `DELETE FROM sessions WHERE expires_at <= $1`
)

// Save inserts or replaces a session record.
func (r *SessionRepo) Save(ctx context.Context, rec domainauth.SessionRecord) error {
	if rec.ID == "" {
		return ErrIDRequired
	}
	data := rec.Data
	if data == nil {
		data = []byte{}
	}
	if _, err := r.DB.ExecContext(ctx, sessionUpsertQuery, rec.ID, data, rec.ExpiresAt.UTC()); err != nil {
		return wrapDBErr("save session", err)
	}
	return nil
}

// Get returns the live session record for id, or ports.ErrSessionNotFound.
func (r *SessionRepo) Get(ctx context.Context, id string) (domainauth.SessionRecord, error) {
	if id == "" {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	var rec domainauth.SessionRecord
	err := r.DB.QueryRowContext(ctx, sessionGetQuery, id, r.timeProvider.Now().UTC()).
		Scan(&rec.ID, &rec.Data, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	if err != nil {
		return domainauth.SessionRecord{}, wrapDBErr("get session", err)
	}
	return rec, nil
}

// Delete removes the session record for id. Missing records are not an error.
func (r *SessionRepo) Delete(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx, sessionDeleteQuery, id); err != nil {
		return wrapDBErr("delete session", err)
	}
	return nil
}

// PurgeExpired deletes all records that expired at or before now.
func (r *SessionRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, sessionPurgeQuery, now.UTC())
	if err != nil {
		return 0, wrapDBErr("purge sessions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, wrapDBErr("purge sessions rows affected", err)
	}
	return n, nil
}
