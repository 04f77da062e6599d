package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"expense-tracker/pkg/config"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildDSN(t *testing.T) {
	dsn, err := BuildDSN(&config.DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "p@ss", DBName: "expenses", SSLMode: "disable",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:p%40ss@db:5432/expenses?sslmode=disable", dsn)

	_, err = BuildDSN(&config.DatabaseConfig{Host: "db"})
	assert.Error(t, err)
}

func TestNewDB_PingFailure(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectClose()

	orig := sqlOpen
	sqlOpen = func(driverName, dsn string) (*sql.DB, error) { return db, nil }
	defer func() { sqlOpen = orig }()

	_, err = NewDB(context.Background(), &config.DatabaseConfig{
		Host: "db", Port: "5432", User: "app", DBName: "expenses",
	}, zap.NewNop())
	assert.ErrorContains(t, err, "failed to ping database")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS expenses").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS idx_expenses_user_date").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, Migrate(context.Background(), db, zap.NewNop()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StepFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS expenses").WillReturnError(errors.New("permission denied"))

	err = Migrate(context.Background(), db, zap.NewNop())
	assert.ErrorContains(t, err, "create_table_expenses")
}
