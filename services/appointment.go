package services

import (
	"context"
	"fmt"

	"github.com/medbridge/backend/models"
	"github.com/medbridge/backend/notifications"
	log "github.com/sirupsen/logrus"
)

// Placeholders shown to doctors in place of hidden or missing values.
var (
	treatmentPending = string(models.AppointmentTreatmentPending)
	notAssigned      = string(models.AppointmentNotAssignedToDoctor)
)

type AppointmentStore interface {
	InsertAppointment(appointment *models.Appointment) (int, error)
	GetAppointmentByID(appointmentID int) (*models.Appointment, error)
	GetAppointmentsByDoctorID(doctorID int) ([]models.Appointment, error)
	GetAppointmentsByPatientID(patientID int) ([]models.Appointment, error)
	AssignAppointmentDoctor(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error
	UpdateAppointmentTreatment(appointmentID int, opts *models.UpdateTreatmentOpts) error
	GetUserByID(userID int) (*models.User, error)
}

type AppointmentService struct {
	store    AppointmentStore
	notifier Notifier
	logger   *log.Entry
}

func NewAppointmentService(store AppointmentStore, notifier Notifier, logger *log.Entry) *AppointmentService {
	return &AppointmentService{
		store:    store,
		notifier: notifier,
		logger:   logger.WithField("component", "appointments"),
	}
}

// Create books an appointment for the patient. Without a doctor it waits
// in NOT_ASSIGNED_TO_DOCTOR until an admin assigns one.
func (s *AppointmentService) Create(ctx context.Context, patientID int, opts models.InsertAppointmentOpts) (*models.Appointment, error) {
	if err := checkPrice(opts.Price); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		PatientID: patientID,
		Date:      opts.Date,
		Problem:   opts.Problem,
		Status:    models.AppointmentNotAssignedToDoctor,
		Price:     opts.Price,
	}

	if opts.DoctorID != 0 {
		doctor, err := s.activeDoctor(opts.DoctorID)
		if err != nil {
			return nil, err
		}
		appointment.DoctorID = doctor.ID
		appointment.DoctorName = doctor.FullName()
		appointment.Status = models.AppointmentPending
		if appointment.Price == 0 && doctor.Doctor != nil {
			appointment.Price = float64(doctor.Doctor.Fees)
		}
	}

	id, err := s.store.InsertAppointment(appointment)
	if err != nil {
		return nil, err
	}
	appointment.ID = id

	s.logger.WithFields(log.Fields{"appointment_id": id, "patient_id": patientID, "status": appointment.Status}).Info("appointment created")
	return appointment, nil
}

func (s *AppointmentService) Get(ctx context.Context, appointmentID int) (*models.Appointment, error) {
	appointment, err := s.store.GetAppointmentByID(appointmentID)
	if err != nil {
		return nil, err
	}
	if appointment == nil {
		return nil, newError(ErrNotFound, "appointment %d not found", appointmentID)
	}
	return appointment, nil
}

func (s *AppointmentService) ListByPatient(ctx context.Context, patientID int) ([]models.Appointment, error) {
	return s.store.GetAppointmentsByPatientID(patientID)
}

// ListByDoctor returns the doctor's appointments as the doctor sees them.
// The price stays hidden until the treatment is done. Doctor id 0 lists the
// appointments nobody was assigned to.
func (s *AppointmentService) ListByDoctor(ctx context.Context, doctorID int) ([]models.DoctorAppointment, error) {
	appointments, err := s.store.GetAppointmentsByDoctorID(doctorID)
	if err != nil {
		return nil, err
	}

	users := map[int]*models.User{}
	user := func(id int) (*models.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		u, err := s.store.GetUserByID(id)
		if err != nil {
			return nil, err
		}
		if u == nil {
			u = &models.User{ID: id}
		}
		users[id] = u
		return u, nil
	}

	views := make([]models.DoctorAppointment, 0, len(appointments))
	for _, appointment := range appointments {
		patient, err := user(appointment.PatientID)
		if err != nil {
			return nil, err
		}

		var doctor *models.User
		if appointment.DoctorID != 0 {
			if doctor, err = user(appointment.DoctorID); err != nil {
				return nil, err
			}
		}

		views = append(views, doctorAppointmentView(appointment, patient, doctor))
	}

	return views, nil
}

func doctorAppointmentView(appointment models.Appointment, patient, doctor *models.User) models.DoctorAppointment {
	view := models.DoctorAppointment{
		ID:             appointment.ID,
		PatientID:      appointment.PatientID,
		PatientName:    patient.FullName(),
		PatientContact: patient.Contact,
		DoctorID:       appointment.DoctorID,
		Problem:        appointment.Problem,
		Date:           appointment.Date,
		Status:         appointment.Status,
	}

	if doctor == nil {
		view.DoctorName = notAssigned
		view.DoctorContact = notAssigned
		view.Price = notAssigned
		view.Prescription = notAssigned
		return view
	}

	view.DoctorName = doctor.FullName()
	view.DoctorContact = doctor.Contact
	view.Prescription = appointment.Prescription
	view.Price = treatmentPending
	if appointment.Status == models.AppointmentTreatmentDone {
		view.Price = fmt.Sprintf("%.2f", appointment.Price)
	}
	return view
}

// AssignDoctor gives an unassigned appointment to a doctor, moving it to PENDING.
func (s *AppointmentService) AssignDoctor(ctx context.Context, appointmentID int, opts models.AssignDoctorOpts) (*models.Appointment, error) {
	if err := checkPrice(opts.Price); err != nil {
		return nil, err
	}

	appointment, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(appointment.Status, models.AppointmentPending) {
		return nil, newError(ErrConflict, "appointment %d is %s", appointmentID, appointment.Status)
	}

	doctor, err := s.activeDoctor(opts.DoctorID)
	if err != nil {
		return nil, err
	}

	price := opts.Price
	if price == 0 && doctor.Doctor != nil {
		price = float64(doctor.Doctor.Fees)
	}

	if err := s.store.AssignAppointmentDoctor(appointmentID, doctor.ID, price, models.AppointmentPending); err != nil {
		return nil, err
	}

	appointment.DoctorID = doctor.ID
	appointment.DoctorName = doctor.FullName()
	appointment.Price = price
	appointment.Status = models.AppointmentPending

	s.logger.WithFields(log.Fields{"appointment_id": appointmentID, "doctor_id": doctor.ID}).Info("doctor assigned")
	return appointment, nil
}

// UpdateTreatment records the prescription of the appointment's doctor and
// tells the patient about it. doctorID 0 skips the ownership check.
func (s *AppointmentService) UpdateTreatment(ctx context.Context, appointmentID int, doctorID int, opts models.UpdateTreatmentOpts) (*models.Appointment, error) {
	appointment, err := s.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if doctorID != 0 && appointment.DoctorID != doctorID {
		return nil, newError(ErrForbidden, "appointment %d belongs to another doctor", appointmentID)
	}
	if opts.Status != models.AppointmentTreatmentPending && opts.Status != models.AppointmentTreatmentDone {
		return nil, newError(ErrValidation, "invalid treatment status %s", opts.Status)
	}
	if err := checkPrice(opts.Price); err != nil {
		return nil, err
	}
	if opts.Status != appointment.Status && !models.CanTransition(appointment.Status, opts.Status) {
		return nil, newError(ErrConflict, "appointment %d cannot move from %s to %s", appointmentID, appointment.Status, opts.Status)
	}

	if opts.Price == 0 {
		opts.Price = appointment.Price
	}

	if err := s.store.UpdateAppointmentTreatment(appointmentID, &opts); err != nil {
		return nil, err
	}

	appointment.Prescription = opts.Prescription
	appointment.Price = opts.Price
	appointment.Status = opts.Status

	logger := s.logger.WithFields(log.Fields{"appointment_id": appointmentID, "status": opts.Status})
	logger.Info("treatment updated")

	if err := s.notifier.Enqueue(notifications.Task{
		Kind:          models.NotificationPrescription,
		AppointmentID: appointmentID,
	}); err != nil {
		logger.WithError(err).Error("failed queueing prescription notification")
	}

	return appointment, nil
}

func (s *AppointmentService) activeDoctor(doctorID int) (*models.User, error) {
	doctor, err := s.store.GetUserByID(doctorID)
	if err != nil {
		return nil, err
	}
	if doctor == nil || doctor.Role != models.ConstRoles.Doctor {
		return nil, newError(ErrNotFound, "doctor %d not found", doctorID)
	}
	if !doctor.IsActive() {
		return nil, newError(ErrValidation, "doctor %d is not verified yet", doctorID)
	}
	return doctor, nil
}

func checkPrice(price float64) error {
	if price < 0 {
		return newError(ErrValidation, "price must not be negative, got %.2f", price)
	}
	return nil
}
