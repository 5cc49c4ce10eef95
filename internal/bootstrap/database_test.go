package bootstrap

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var migrationExistsQuery = regexp.QuoteMeta(`SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`)

func existsRow(v bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(v)
}

func TestRunMigrations_LogsAppliedVersions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(migrationExistsQuery).WithArgs("0001_users").WillReturnRows(existsRow(true))
	mock.ExpectQuery(migrationExistsQuery).WithArgs("0002_sessions").WillReturnRows(existsRow(true))
	mock.ExpectQuery(migrationExistsQuery).WithArgs("0003_catalog").WillReturnRows(existsRow(false))
	mock.ExpectBegin()
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO schema_migrations").WithArgs("0003_catalog").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, RunMigrations(context.Background(), db, logger))
	assert.Contains(t, buf.String(), "database migrations completed")
	assert.Contains(t, buf.String(), "count=1")
	assert.Contains(t, buf.String(), "0003_catalog")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_UpToDate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnResult(sqlmock.NewResult(0, 0))
	for _, v := range []string{"0001_users", "0002_sessions", "0003_catalog"} {
		mock.ExpectQuery(migrationExistsQuery).WithArgs(v).WillReturnRows(existsRow(true))
	}

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	require.NoError(t, RunMigrations(context.Background(), db, logger))
	assert.Contains(t, buf.String(), "database schema up to date")
	assert.NotContains(t, buf.String(), "database migrations completed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_WrapsLedgerError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").WillReturnError(errors.New("permission denied"))

	err = RunMigrations(context.Background(), db, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run migrations")
	assert.Contains(t, err.Error(), "permission denied")
}
