package repository

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"staff_orders/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/DATA-DOG/go-sqlmock.v1"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var orderColumns = []string{"id", "name", "phone", "table_number", "item", "total", "status", "created_at"}

// dbMock for unit test usage
func dbMock(t *testing.T) (*sql.DB, OrderRepository, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	gormdb, err := gorm.Open(postgres.New(postgres.Config{
		Conn: sqldb,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatal(err)
	}
	return sqldb, NewOrderRepository(gormdb), mock
}

func orderRow(id int, status string, item string) *sqlmock.Rows {
	return sqlmock.NewRows(orderColumns).
		AddRow(id, "Alice", "555-0100", "4", []byte(item), 5.0, status, time.Now())
}

func TestCreateAssignsID(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders" .+`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	order := models.Order{
		Name:   "Alice",
		Phone:  "555-0100",
		Item:   []byte(`[{"name":"soup","price":5}]`),
		Total:  5,
		Status: string(models.OrderPending),
	}
	err := repo.Create(&order)

	require.NoError(t, err)
	assert.Equal(t, uint(7), order.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestActiveFiltersCompletedAscendingID(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE status <> .+ ORDER BY id ASC`).
		WillReturnRows(orderRow(1, "pending", `[{"name":"soup","price":5}]`))

	orders, err := repo.Active()

	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, uint(1), orders[0].ID)
	assert.Equal(t, "pending", orders[0].Status)
	require.Len(t, orders[0].Items(), 1)
	assert.Equal(t, 5.0, orders[0].Items()[0]["price"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteByID(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	assert.NoError(t, repo.CompleteByID(3))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteByIDUnknownIDIsNoOp(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	assert.NoError(t, repo.CompleteByID(9999))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAll(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "orders" SET .+ WHERE status <> .+`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	assert.NoError(t, repo.CompleteAll())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithLockAppliesMutationInTransaction(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE .+ FOR UPDATE`).
		WillReturnRows(orderRow(1, "pending", `[{"name":"soup","price":5}]`))
	mock.ExpectExec(`UPDATE "orders" SET .+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateWithLock(1, func(order *models.Order) error {
		order.Status = string(models.OrderCompleted)
		order.Total = 0
		return nil
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithLockUnknownOrder(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(orderColumns))
	mock.ExpectRollback()

	err := repo.UpdateWithLock(42, func(order *models.Order) error {
		t.Fatal("apply must not run for a missing order")
		return nil
	})

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWithLockRollsBackOnApplyError(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	applyErr := errors.New("index out of range")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE .+ FOR UPDATE`).
		WillReturnRows(orderRow(1, "pending", `[]`))
	mock.ExpectRollback()

	err := repo.UpdateWithLock(1, func(order *models.Order) error {
		return applyErr
	})

	assert.ErrorIs(t, err, applyErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusByPhoneMostRecentFirst(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE phone = .+ ORDER BY id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("pending"))

	status, err := repo.StatusByPhone("555-0100")

	require.NoError(t, err)
	assert.Equal(t, "pending", status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusByPhoneNoMatch(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE phone = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.StatusByPhone("555-0000")

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusByPhoneAndID(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE id = .+ AND phone = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("completed"))

	status, err := repo.StatusByPhoneAndID("555-0100", 3)

	require.NoError(t, err)
	assert.Equal(t, "completed", status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStatusByPhoneAndIDWrongPhone(t *testing.T) {
	sqldb, repo, mock := dbMock(t)
	defer sqldb.Close()

	mock.ExpectQuery(`SELECT .+ FROM "orders" WHERE id = .+ AND phone = .+`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}))

	_, err := repo.StatusByPhoneAndID("555-9999", 3)

	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
