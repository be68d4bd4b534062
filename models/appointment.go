package models

import (
	"time"

	"github.com/thedevsaddam/govalidator"
)

type AppointmentStatus string

const (
	AppointmentPending             AppointmentStatus = "PENDING"
	AppointmentConfirmed           AppointmentStatus = "CONFIRMED"
	AppointmentTreatmentPending    AppointmentStatus = "TREATMENT_PENDING"
	AppointmentTreatmentDone       AppointmentStatus = "TREATMENT_DONE"
	AppointmentNotAssignedToDoctor AppointmentStatus = "NOT_ASSIGNED_TO_DOCTOR"
)

// appointmentTransitions lists, for every status, the statuses it may move to.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentNotAssignedToDoctor: {AppointmentPending, AppointmentConfirmed},
	AppointmentPending:             {AppointmentConfirmed},
	AppointmentConfirmed:           {AppointmentTreatmentPending, AppointmentTreatmentDone},
	AppointmentTreatmentPending:    {AppointmentTreatmentDone},
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentTreatmentPending,
		AppointmentTreatmentDone, AppointmentNotAssignedToDoctor:
		return true
	}
	return false
}

// CanTransition reports whether an appointment in status from may be moved to status to.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Appointment struct {
	ID           int               `json:"id"`
	PatientID    int               `json:"patient_id"`
	DoctorID     int               `json:"doctor_id"`
	Date         string            `json:"appointment_date"`
	Problem      string            `json:"problem,omitempty"`
	Status       AppointmentStatus `json:"status"`
	Price        float64           `json:"price"`
	Prescription string            `json:"prescription,omitempty"`
	PatientName  string            `json:"patient_name,omitempty"`
	DoctorName   string            `json:"doctor_name,omitempty"`
	Created      time.Time         `json:"created"`
	Updated      time.Time         `json:"updated"`
}

// DoctorAppointment is the appointment as listed to a doctor.
type DoctorAppointment struct {
	ID             int               `json:"id"`
	PatientID      int               `json:"patient_id"`
	PatientName    string            `json:"patient_name"`
	PatientContact string            `json:"patient_contact"`
	DoctorID       int               `json:"doctor_id"`
	DoctorName     string            `json:"doctor_name"`
	DoctorContact  string            `json:"doctor_contact"`
	Problem        string            `json:"problem"`
	Date           string            `json:"appointment_date"`
	Status         AppointmentStatus `json:"status"`
	Price          string            `json:"price"`
	Prescription   string            `json:"prescription"`
}

type InsertAppointmentOpts struct {
	DoctorID int     `json:"doctor_id"`
	Date     string  `json:"appointment_date"`
	Problem  string  `json:"problem"`
	Price    float64 `json:"price"`
}

var InsertAppointmentRules = govalidator.MapData{
	"doctor_id":        []string{"numeric"},
	"appointment_date": []string{"required", "date_ISO8601"},
	"problem":          []string{"required", "max:1000"},
	"price":            []string{"float", "non_negative"},
}

type AssignDoctorOpts struct {
	DoctorID int     `json:"doctor_id"`
	Price    float64 `json:"price"`
}

var AssignDoctorRules = govalidator.MapData{
	"doctor_id": []string{"required", "positive_int"},
	"price":     []string{"float", "non_negative"},
}

type UpdateTreatmentOpts struct {
	Prescription string            `json:"prescription"`
	Price        float64           `json:"price"`
	Status       AppointmentStatus `json:"status"`
}

var UpdateTreatmentRules = govalidator.MapData{
	"prescription": []string{"required"},
	"price":        []string{"float", "non_negative"},
	"status":       []string{"required", "in:TREATMENT_PENDING,TREATMENT_DONE"},
}

type GetDoctorAppointmentsOpts struct {
	DoctorID int `schema:"doctorId"`
}

var GetDoctorAppointmentsRules = govalidator.MapData{
	"doctorId": []string{"required", "numeric"},
}
