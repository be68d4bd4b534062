package db

import (
	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
)

type NotificationStorage interface {
	InsertNotification(*models.Notification) (int, error)
	UpdateNotification(*models.Notification) error
	GetNotificationsByStatus(status models.NotificationStatus) ([]models.Notification, error)
}

const (
	insertNotification = `
	INSERT
		notification
	SET
		kind = :kind,
		appointment_id = :appointment_id,
		payment_id = :payment_id,
		amount = :amount,
		attempts = :attempts,
		status = :status,
		last_error = :last_error
	`

	updateNotification = `
	UPDATE
		notification
	SET
		attempts = :attempts,
		status = :status,
		last_error = :last_error,
		updated = current_timestamp()
	WHERE
		id = :notification_id
	`

	getNotificationsByStatus = `
	SELECT
		notification.id,
		notification.kind,
		notification.appointment_id,
		notification.payment_id,
		notification.amount,
		notification.attempts,
		notification.status,
		notification.last_error,
		notification.created,
		notification.updated
	FROM
		notification
	WHERE
		notification.status = :status
	ORDER BY
		notification.id ASC
	`
)

func notificationArgs(notification *models.Notification) map[string]interface{} {
	return map[string]interface{}{
		"notification_id": notification.ID,
		"kind":            notification.Kind,
		"appointment_id":  notification.AppointmentID,
		"payment_id":      notification.PaymentID,
		"amount":          notification.Amount,
		"attempts":        notification.Attempts,
		"status":          notification.Status,
		"last_error":      notification.LastError,
	}
}

func (db *DB) InsertNotification(notification *models.Notification) (int, error) {
	stmt, err := db.PrepareNamed(insertNotification)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	result, err := stmt.Exec(notificationArgs(notification))
	if err != nil {
		return 0, errors.Wrap(err, "failed inserting notification")
	}

	if err := expectOneRow(result, "inserted"); err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	return int(id), nil
}

func (db *DB) UpdateNotification(notification *models.Notification) error {
	stmt, err := db.PrepareNamed(updateNotification)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(notificationArgs(notification)); err != nil {
		return errors.Wrap(err, "failed updating notification")
	}

	return nil
}

func (db *DB) GetNotificationsByStatus(status models.NotificationStatus) ([]models.Notification, error) {
	stmt, err := db.PrepareNamed(getNotificationsByStatus)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(map[string]interface{}{
		"status": status,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(
			&notification.ID,
			&notification.Kind,
			&notification.AppointmentID,
			&notification.PaymentID,
			&notification.Amount,
			&notification.Attempts,
			&notification.Status,
			&notification.LastError,
			&notification.Created,
			&notification.Updated,
		); err != nil {
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	return notifications, rows.Err()
}
