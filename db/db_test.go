package db

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/medbridge/backend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()

	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	sx := sqlx.NewDb(conn, "mysql")
	return &DB{sx, &transactorImpl{sx}}, mock
}

func TestConfirmAppointmentPaymentCommits(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`UPDATE\s+appointment`).
		ExpectExec().
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT\s+payment`).
		ExpectExec().
		WithArgs("order_1", "pay_1", 7, 50000).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectCommit()

	payment := &models.Payment{OrderID: "order_1", PaymentID: "pay_1", AppointmentID: 7, Amount: 50000}
	confirmed, err := storage.ConfirmAppointmentPayment(payment)

	require.NoError(t, err)
	assert.True(t, confirmed)
	assert.Equal(t, 3, payment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmAppointmentPaymentAlreadyConfirmed(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`UPDATE\s+appointment`).
		ExpectExec().
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	confirmed, err := storage.ConfirmAppointmentPayment(&models.Payment{OrderID: "order_1", PaymentID: "pay_1", AppointmentID: 7})

	require.NoError(t, err)
	assert.False(t, confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmAppointmentPaymentRollsBackOnInsertFailure(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`UPDATE\s+appointment`).
		ExpectExec().
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`INSERT\s+payment`).
		ExpectExec().
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	confirmed, err := storage.ConfirmAppointmentPayment(&models.Payment{OrderID: "order_1", PaymentID: "pay_1", AppointmentID: 7})

	assert.Error(t, err)
	assert.False(t, confirmed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPaymentByPaymentIDNotFound(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectPrepare(`SELECT`).
		ExpectQuery().
		WithArgs("pay_x").
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "payment_id", "appointment_id", "amount", "created"}))

	payment, err := storage.GetPaymentByPaymentID("pay_x")

	require.NoError(t, err)
	assert.Nil(t, payment)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAppointmentByID(t *testing.T) {
	storage, mock := newMockDB(t)

	now := time.Now()
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "patient_id", "doctor_id", "appointment_date", "problem", "status", "price",
		"prescription", "created", "updated", "patient_name", "doctor_name",
	}).AddRow(1, 2, 3, date, "fever", "PENDING", 500.0, "", now, now, "Asha Rao", "Vikram Shah")

	mock.ExpectPrepare(`SELECT`).
		ExpectQuery().
		WithArgs(1).
		WillReturnRows(rows)

	appointment, err := storage.GetAppointmentByID(1)

	require.NoError(t, err)
	require.NotNil(t, appointment)
	assert.Equal(t, "2024-05-01", appointment.Date)
	assert.Equal(t, models.AppointmentPending, appointment.Status)
	assert.Equal(t, 500.0, appointment.Price)
	assert.Equal(t, "Vikram Shah", appointment.DoctorName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertDoctorUser(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectPrepare(`INSERT\s+user`).
		ExpectExec().
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectPrepare(`INSERT\s+doctor`).
		ExpectExec().
		WithArgs(11, "Cardiologist", 5, 800, "img.png").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	id, err := storage.InsertUser(&models.User{
		Firstname: "Vikram",
		Email:     "vikram@example.com",
		Role:      models.ConstRoles.Doctor,
		Status:    models.ConstUserStatuses.Pending,
		Doctor: &models.DoctorProfile{
			Speciality: "Cardiologist",
			Experience: 5,
			Fees:       800,
			ImageName:  "img.png",
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 11, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUsersByRoleBindsStatusTwice(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectPrepare(`SELECT`).
		ExpectQuery().
		WithArgs("DOCTOR", "PENDING", "PENDING").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	users, err := storage.GetUsersByRole(models.ConstRoles.Doctor, models.ConstUserStatuses.Pending)

	require.NoError(t, err)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClaimAmbulance(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectPrepare(`UPDATE\s+ambulance`).
		ExpectExec().
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare(`UPDATE\s+ambulance`).
		ExpectExec().
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	claimed, err := storage.ClaimAmbulance(5)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = storage.ClaimAmbulance(5)
	require.NoError(t, err)
	assert.False(t, claimed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAmbulanceBookingReleasesAmbulance(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE\s+ambulance_booking`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE\s+ambulance\s+INNER JOIN`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	completed, err := storage.CompleteAmbulanceBooking(4)

	require.NoError(t, err)
	assert.True(t, completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCompleteAmbulanceBookingAlreadyCompleted(t *testing.T) {
	storage, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE\s+ambulance_booking`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	completed, err := storage.CompleteAmbulanceBooking(4)

	require.NoError(t, err)
	assert.False(t, completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewRetriesUntilPingSucceeds(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	storage, err := New(sqlx.NewDb(conn, "mysql"), 3, time.Millisecond)

	require.NoError(t, err)
	assert.NotNil(t, storage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewGivesUpAfterRetries(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	for i := 0; i < 3; i++ {
		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	}

	storage, err := New(sqlx.NewDb(conn, "mysql"), 2, time.Millisecond)

	require.Error(t, err)
	assert.Nil(t, storage)
	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.NoError(t, mock.ExpectationsWereMet())
}
