package models

import (
	"time"

	"github.com/thedevsaddam/govalidator"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingAssigned  BookingStatus = "ASSIGNED"
	BookingCompleted BookingStatus = "COMPLETED"
)

type Ambulance struct {
	ID          int     `json:"id"`
	DriverName  string  `json:"driverName"`
	PlateNumber string  `json:"plateNumber"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Available   bool    `json:"available"`
}

type AmbulanceBooking struct {
	ID             int           `json:"id"`
	PatientName    string        `json:"patientName"`
	ContactNumber  string        `json:"contactNumber"`
	PickupLocation string        `json:"pickupLocation"`
	DropLocation   string        `json:"dropLocation"`
	BookingTime    time.Time     `json:"bookingTime"`
	Status         BookingStatus `json:"status"`
	Ambulance      *Ambulance    `json:"ambulance"`
}

type BookAmbulanceOpts struct {
	PatientName    string `json:"patientName"`
	ContactNumber  string `json:"contactNumber"`
	PickupLocation string `json:"pickupLocation"`
	DropLocation   string `json:"dropLocation"`
}

var BookAmbulanceRules = govalidator.MapData{
	"patientName":    []string{"required"},
	"contactNumber":  []string{"required"},
	"pickupLocation": []string{"required"},
	"dropLocation":   []string{"required"},
}
