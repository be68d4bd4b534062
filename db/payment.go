package db

import (
	"database/sql"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
)

type PaymentStorage interface {
	GetPaymentByPaymentID(paymentID string) (*models.Payment, error)
	ConfirmAppointmentPayment(*models.Payment) (bool, error)
}

const (
	insertPayment = `
	INSERT
		payment
	SET
		order_id = :order_id,
		payment_id = :payment_id,
		appointment_id = :appointment_id,
		amount = :amount
	`

	getPaymentByPaymentID = `
	SELECT
		payment.id,
		payment.order_id,
		payment.payment_id,
		payment.appointment_id,
		payment.amount,
		payment.created
	FROM
		payment
	WHERE
		payment.payment_id = :payment_id
	`

	confirmAppointment = `
	UPDATE
		appointment
	SET
		status = 'CONFIRMED',
		updated = current_timestamp()
	WHERE
		id = :appointment_id AND
		status IN ('PENDING', 'NOT_ASSIGNED_TO_DOCTOR')
	`
)

func (db *DB) GetPaymentByPaymentID(paymentID string) (*models.Payment, error) {
	stmt, err := db.PrepareNamed(getPaymentByPaymentID)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var payment models.Payment

	row := stmt.QueryRow(map[string]interface{}{
		"payment_id": paymentID,
	})
	if err := row.Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.PaymentID,
		&payment.AppointmentID,
		&payment.Amount,
		&payment.Created,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}

		return nil, err
	}

	return &payment, nil
}

// ConfirmAppointmentPayment moves the appointment to CONFIRMED and records the payment
// in one transaction. It returns false, writing nothing, when the appointment is not
// in a payable status anymore.
func (db *DB) ConfirmAppointmentPayment(payment *models.Payment) (confirmed bool, err error) {
	tx, err := db.NewTx()
	if err != nil {
		return false, errors.Wrap(err, "failed to start transaction")
	}
	defer func() {
		if err != nil || !confirmed {
			tx.Rollback()
			return
		}

		if err = tx.Commit(); err != nil {
			confirmed = false
			err = errors.Wrap(err, "failed to commit payment")
		}
	}()

	confirmed, err = db.confirmAppointmentTx(tx, payment.AppointmentID)
	if err != nil || !confirmed {
		return confirmed, err
	}

	if err = db.insertPaymentTx(tx, payment); err != nil {
		return false, err
	}

	return true, nil
}

func (db *DB) confirmAppointmentTx(tx Tx, appointmentID int) (bool, error) {
	stmt, err := tx.PrepareNamed(confirmAppointment)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.Exec(map[string]interface{}{
		"appointment_id": appointmentID,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed confirming appointment")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func (db *DB) insertPaymentTx(tx Tx, payment *models.Payment) error {
	stmt, err := tx.PrepareNamed(insertPayment)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"order_id":       payment.OrderID,
		"payment_id":     payment.PaymentID,
		"appointment_id": payment.AppointmentID,
		"amount":         payment.Amount,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return errors.Wrap(err, "failed inserting payment")
	}

	if err := expectOneRow(result, "inserted"); err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = int(id)

	return nil
}
