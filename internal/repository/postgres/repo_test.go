package postgres_test

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"packslip/internal/domain"
	"packslip/internal/repository/postgres"
)

var errRowsAffected = errors.New("rows affected unavailable")

// execOnlyDriver accepts every statement and reports a result whose
// RowsAffected fails.
type execOnlyDriver struct{}

func (execOnlyDriver) Open(string) (driver.Conn, error) { return execOnlyConn{}, nil }

type execOnlyConn struct{}

func (execOnlyConn) Prepare(string) (driver.Stmt, error) { return execOnlyStmt{}, nil }
func (execOnlyConn) Close() error                        { return nil }
func (execOnlyConn) Begin() (driver.Tx, error)           { return nil, errors.New("transactions not supported") }

type execOnlyStmt struct{}

func (execOnlyStmt) Close() error  { return nil }
func (execOnlyStmt) NumInput() int { return -1 }
func (execOnlyStmt) Exec([]driver.Value) (driver.Result, error) {
	return brokenResult{}, nil
}
func (execOnlyStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries not supported")
}

type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 0, errRowsAffected }
func (brokenResult) RowsAffected() (int64, error) { return 0, errRowsAffected }

var registerOnce sync.Once

func execOnlyDB(t *testing.T) *sqlx.DB {
	t.Helper()
	registerOnce.Do(func() { sql.Register("packslip-exec-only", execOnlyDriver{}) })
	db, err := sql.Open("packslip-exec-only", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "pgx")
}

func TestOrderQueueRepo_InsertIfAbsentReportsRowsAffectedError(t *testing.T) {
	repo := postgres.NewOrderQueueRepo(execOnlyDB(t))

	inserted, err := repo.InsertIfAbsent(context.Background(), &domain.OrderQueueEntry{
		ID:                    uuid.New(),
		Platform:              "flipkart",
		OrderID:               "OD100001",
		MarketplaceIdentifier: "FK-SKU-1",
		Quantity:              1,
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, errRowsAffected)
	assert.False(t, inserted)
}

func TestOrderQueueRepo_SetResolutionReportsRowsAffectedError(t *testing.T) {
	repo := postgres.NewOrderQueueRepo(execOnlyDB(t))

	ok, err := repo.SetResolution(context.Background(), uuid.New(), "SKU-1", uuid.New())

	assert.ErrorIs(t, err, errRowsAffected)
	assert.False(t, ok)
}

func TestDocumentRepo_UpdateParseResultReportsRowsAffectedError(t *testing.T) {
	repo := postgres.NewDocumentRepo(execOnlyDB(t))

	err := repo.UpdateParseResult(context.Background(), &domain.ShipmentDocument{
		ID:          uuid.New(),
		ParseStatus: domain.ParseStatusCompleted,
	})

	assert.ErrorIs(t, err, errRowsAffected)
	assert.NotErrorIs(t, err, domain.ErrDocumentNotFound)
}
