package db

import (
	"database/sql"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
)

type AmbulanceStorage interface {
	GetAvailableAmbulances() ([]models.Ambulance, error)
	InsertAmbulance(*models.Ambulance) (int, error)
	ClaimAmbulance(ambulanceID int) (bool, error)
	ReleaseAmbulance(ambulanceID int) error
	InsertAmbulanceBooking(*models.AmbulanceBooking) (int, error)
	GetAmbulanceBookings() ([]models.AmbulanceBooking, error)
	GetAmbulanceBookingByID(bookingID int) (*models.AmbulanceBooking, error)
	CompleteAmbulanceBooking(bookingID int) (bool, error)
}

const (
	getAvailableAmbulances = `
	SELECT
		ambulance.id,
		ambulance.driver_name,
		ambulance.plate_number,
		ambulance.latitude,
		ambulance.longitude,
		ambulance.available
	FROM
		ambulance
	WHERE
		ambulance.available = 1
	ORDER BY
		ambulance.id ASC
	`

	insertAmbulance = `
	INSERT
		ambulance
	SET
		driver_name = :driver_name,
		plate_number = :plate_number,
		latitude = :latitude,
		longitude = :longitude,
		available = :available
	`

	claimAmbulance = `
	UPDATE
		ambulance
	SET
		available = 0
	WHERE
		id = :ambulance_id AND
		available = 1
	`

	releaseAmbulance = `
	UPDATE
		ambulance
	SET
		available = 1
	WHERE
		id = :ambulance_id
	`

	insertAmbulanceBooking = `
	INSERT
		ambulance_booking
	SET
		patient_name = :patient_name,
		contact_number = :contact_number,
		pickup_location = :pickup_location,
		drop_location = :drop_location,
		booking_time = :booking_time,
		status = :status,
		ambulance_id = :ambulance_id
	`

	selectAmbulanceBooking = `
	SELECT
		ambulance_booking.id,
		ambulance_booking.patient_name,
		ambulance_booking.contact_number,
		ambulance_booking.pickup_location,
		ambulance_booking.drop_location,
		ambulance_booking.booking_time,
		ambulance_booking.status,
		ambulance.id,
		ambulance.driver_name,
		ambulance.plate_number,
		ambulance.latitude,
		ambulance.longitude,
		ambulance.available
	FROM
		ambulance_booking
	INNER JOIN
		ambulance ON (ambulance.id = ambulance_booking.ambulance_id)
	`

	getAmbulanceBookings = selectAmbulanceBooking + `
	ORDER BY
		ambulance_booking.booking_time DESC
	`

	getAmbulanceBookingByID = selectAmbulanceBooking + `
	WHERE
		ambulance_booking.id = :booking_id
	`

	completeAmbulanceBooking = `
	UPDATE
		ambulance_booking
	SET
		status = 'COMPLETED'
	WHERE
		id = :booking_id AND
		status = 'ASSIGNED'
	`

	releaseBookingAmbulance = `
	UPDATE
		ambulance
	INNER JOIN
		ambulance_booking ON (ambulance_booking.ambulance_id = ambulance.id)
	SET
		ambulance.available = 1
	WHERE
		ambulance_booking.id = :booking_id
	`
)

func scanAmbulance(row rowScanner) (*models.Ambulance, error) {
	var ambulance models.Ambulance
	if err := row.Scan(
		&ambulance.ID,
		&ambulance.DriverName,
		&ambulance.PlateNumber,
		&ambulance.Latitude,
		&ambulance.Longitude,
		&ambulance.Available,
	); err != nil {
		return nil, err
	}
	return &ambulance, nil
}

func scanAmbulanceBooking(row rowScanner) (*models.AmbulanceBooking, error) {
	booking := models.AmbulanceBooking{Ambulance: &models.Ambulance{}}
	if err := row.Scan(
		&booking.ID,
		&booking.PatientName,
		&booking.ContactNumber,
		&booking.PickupLocation,
		&booking.DropLocation,
		&booking.BookingTime,
		&booking.Status,
		&booking.Ambulance.ID,
		&booking.Ambulance.DriverName,
		&booking.Ambulance.PlateNumber,
		&booking.Ambulance.Latitude,
		&booking.Ambulance.Longitude,
		&booking.Ambulance.Available,
	); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (db *DB) GetAvailableAmbulances() ([]models.Ambulance, error) {
	rows, err := db.Query(getAvailableAmbulances)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ambulances []models.Ambulance
	for rows.Next() {
		ambulance, err := scanAmbulance(rows)
		if err != nil {
			return nil, err
		}
		ambulances = append(ambulances, *ambulance)
	}

	return ambulances, rows.Err()
}

func (db *DB) InsertAmbulance(ambulance *models.Ambulance) (int, error) {
	stmt, err := db.PrepareNamed(insertAmbulance)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"driver_name":  ambulance.DriverName,
		"plate_number": ambulance.PlateNumber,
		"latitude":     ambulance.Latitude,
		"longitude":    ambulance.Longitude,
		"available":    ambulance.Available,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, errors.Wrap(err, "failed inserting ambulance")
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

// ClaimAmbulance marks the ambulance as taken. It reports false when another
// booking took it first.
func (db *DB) ClaimAmbulance(ambulanceID int) (bool, error) {
	stmt, err := db.PrepareNamed(claimAmbulance)
	if err != nil {
		return false, err
	}
	defer stmt.Close()

	result, err := stmt.Exec(map[string]interface{}{
		"ambulance_id": ambulanceID,
	})
	if err != nil {
		return false, errors.Wrap(err, "failed claiming ambulance")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected == 1, nil
}

func (db *DB) ReleaseAmbulance(ambulanceID int) error {
	stmt, err := db.PrepareNamed(releaseAmbulance)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if _, err := stmt.Exec(map[string]interface{}{
		"ambulance_id": ambulanceID,
	}); err != nil {
		return errors.Wrap(err, "failed releasing ambulance")
	}

	return nil
}

func (db *DB) InsertAmbulanceBooking(booking *models.AmbulanceBooking) (int, error) {
	if booking.Ambulance == nil {
		return 0, errors.Errorf("booking without ambulance")
	}

	stmt, err := db.PrepareNamed(insertAmbulanceBooking)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"patient_name":    booking.PatientName,
		"contact_number":  booking.ContactNumber,
		"pickup_location": booking.PickupLocation,
		"drop_location":   booking.DropLocation,
		"booking_time":    booking.BookingTime,
		"status":          booking.Status,
		"ambulance_id":    booking.Ambulance.ID,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, errors.Wrap(err, "failed inserting ambulance booking")
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

func (db *DB) GetAmbulanceBookings() ([]models.AmbulanceBooking, error) {
	rows, err := db.Query(getAmbulanceBookings)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.AmbulanceBooking
	for rows.Next() {
		booking, err := scanAmbulanceBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *booking)
	}

	return bookings, rows.Err()
}

func (db *DB) GetAmbulanceBookingByID(bookingID int) (*models.AmbulanceBooking, error) {
	stmt, err := db.PrepareNamed(getAmbulanceBookingByID)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	booking, err := scanAmbulanceBooking(stmt.QueryRow(map[string]interface{}{
		"booking_id": bookingID,
	}))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return booking, nil
}

// CompleteAmbulanceBooking closes an ASSIGNED booking and frees its ambulance.
// It reports false when the booking is missing or already completed.
func (db *DB) CompleteAmbulanceBooking(bookingID int) (completed bool, err error) {
	tx, err := db.NewTx()
	if err != nil {
		return false, errors.Wrap(err, "failed to start transaction")
	}
	defer func() {
		if err != nil || !completed {
			tx.Rollback()
			return
		}

		if err = tx.Commit(); err != nil {
			completed = false
			err = errors.Wrap(err, "failed to commit booking")
		}
	}()

	args := map[string]interface{}{
		"booking_id": bookingID,
	}

	result, err := tx.NamedExec(completeAmbulanceBooking, args)
	if err != nil {
		return false, errors.Wrap(err, "failed completing booking")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected != 1 {
		return false, nil
	}

	if _, err = tx.NamedExec(releaseBookingAmbulance, args); err != nil {
		return false, errors.Wrap(err, "failed releasing ambulance")
	}

	return true, nil
}
