package db

import (
	"database/sql"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
)

type AppointmentStorage interface {
	InsertAppointment(*models.Appointment) (int, error)
	GetAppointmentByID(appointmentID int) (*models.Appointment, error)
	GetAppointmentsByDoctorID(doctorID int) ([]models.Appointment, error)
	GetAppointmentsByPatientID(patientID int) ([]models.Appointment, error)
	AssignAppointmentDoctor(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error
	UpdateAppointmentTreatment(appointmentID int, opts *models.UpdateTreatmentOpts) error
}

const (
	insertAppointment = `
	INSERT
		appointment
	SET
		patient_id = :patient_id,
		doctor_id = :doctor_id,
		appointment_date = :appointment_date,
		problem = :problem,
		status = :status,
		price = :price
	`

	selectAppointment = `
	SELECT
		appointment.id,
		appointment.patient_id,
		appointment.doctor_id,
		appointment.appointment_date,
		appointment.problem,
		appointment.status,
		appointment.price,
		COALESCE(appointment.prescription, ''),
		appointment.created,
		appointment.updated,
		COALESCE(CONCAT(patient.firstname, ' ', patient.lastname), ''),
		COALESCE(CONCAT(doctor.firstname, ' ', doctor.lastname), '')
	FROM
		appointment
	LEFT JOIN
		user patient ON (patient.id = appointment.patient_id)
	LEFT JOIN
		user doctor ON (doctor.id = appointment.doctor_id)
	`

	getAppointmentByID = selectAppointment + `
	WHERE
		appointment.id = :appointment_id
	`

	getAppointmentsByDoctorID = selectAppointment + `
	WHERE
		appointment.doctor_id = :doctor_id
	ORDER BY
		appointment.appointment_date DESC, appointment.id DESC
	`

	getAppointmentsByPatientID = selectAppointment + `
	WHERE
		appointment.patient_id = :patient_id
	ORDER BY
		appointment.appointment_date DESC, appointment.id DESC
	`

	assignAppointmentDoctor = `
	UPDATE
		appointment
	SET
		doctor_id = :doctor_id,
		price = :price,
		status = :status,
		updated = current_timestamp()
	WHERE
		id = :appointment_id
	`

	updateAppointmentTreatment = `
	UPDATE
		appointment
	SET
		prescription = :prescription,
		price = :price,
		status = :status,
		updated = current_timestamp()
	WHERE
		id = :appointment_id
	`
)

func scanAppointment(row rowScanner) (*models.Appointment, error) {
	var (
		appointment models.Appointment
		date        sql.NullTime
	)

	if err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&date,
		&appointment.Problem,
		&appointment.Status,
		&appointment.Price,
		&appointment.Prescription,
		&appointment.Created,
		&appointment.Updated,
		&appointment.PatientName,
		&appointment.DoctorName,
	); err != nil {
		return nil, err
	}
	appointment.Date = formatDate(date)

	return &appointment, nil
}

func (db *DB) InsertAppointment(appointment *models.Appointment) (int, error) {
	date, err := parseDate(appointment.Date)
	if err != nil {
		return 0, err
	}

	stmt, err := db.PrepareNamed(insertAppointment)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"patient_id":       appointment.PatientID,
		"doctor_id":        appointment.DoctorID,
		"appointment_date": date,
		"problem":          appointment.Problem,
		"status":           appointment.Status,
		"price":            appointment.Price,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return 0, errors.Wrap(err, "failed inserting appointment")
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

func (db *DB) GetAppointmentByID(appointmentID int) (*models.Appointment, error) {
	stmt, err := db.PrepareNamed(getAppointmentByID)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	appointment, err := scanAppointment(stmt.QueryRow(map[string]interface{}{
		"appointment_id": appointmentID,
	}))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return appointment, nil
}

func (db *DB) GetAppointmentsByDoctorID(doctorID int) ([]models.Appointment, error) {
	return db.getAppointments(getAppointmentsByDoctorID, map[string]interface{}{
		"doctor_id": doctorID,
	})
}

func (db *DB) GetAppointmentsByPatientID(patientID int) ([]models.Appointment, error) {
	return db.getAppointments(getAppointmentsByPatientID, map[string]interface{}{
		"patient_id": patientID,
	})
}

func (db *DB) getAppointments(query string, args map[string]interface{}) ([]models.Appointment, error) {
	stmt, err := db.PrepareNamed(query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	rows, err := stmt.Query(args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		appointments = append(appointments, *appointment)
	}

	return appointments, rows.Err()
}

func (db *DB) AssignAppointmentDoctor(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error {
	stmt, err := db.PrepareNamed(assignAppointmentDoctor)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"appointment_id": appointmentID,
		"doctor_id":      doctorID,
		"price":          price,
		"status":         status,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return errors.Wrap(err, "failed assigning doctor")
	}

	return expectOneRow(result, "updated")
}

func (db *DB) UpdateAppointmentTreatment(appointmentID int, opts *models.UpdateTreatmentOpts) error {
	stmt, err := db.PrepareNamed(updateAppointmentTreatment)
	if err != nil {
		return err
	}
	defer stmt.Close()

	args := map[string]interface{}{
		"appointment_id": appointmentID,
		"prescription":   opts.Prescription,
		"price":          opts.Price,
		"status":         opts.Status,
	}

	result, err := stmt.Exec(args)
	if err != nil {
		return errors.Wrap(err, "failed updating treatment")
	}

	return expectOneRow(result, "updated")
}
