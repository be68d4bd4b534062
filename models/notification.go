package models

import "time"

type NotificationKind string

const (
	NotificationPaymentReceipt      NotificationKind = "PAYMENT_RECEIPT"
	NotificationDoctorConfirmation  NotificationKind = "DOCTOR_CONFIRMATION"
	NotificationPatientConfirmation NotificationKind = "PATIENT_CONFIRMATION"
	NotificationPrescription        NotificationKind = "PRESCRIPTION"
)

type NotificationStatus string

const (
	NotificationFailed   NotificationStatus = "FAILED"
	NotificationRetrying NotificationStatus = "RETRYING"
	NotificationSent     NotificationStatus = "SENT"
)

// Notification is a mail that exhausted its attempts and was stored for a later retry.
type Notification struct {
	ID            int                `json:"id"`
	Kind          NotificationKind   `json:"kind"`
	AppointmentID int                `json:"appointment_id"`
	PaymentID     string             `json:"payment_id,omitempty"`
	Amount        int                `json:"amount,omitempty"`
	Attempts      int                `json:"attempts"`
	Status        NotificationStatus `json:"status"`
	LastError     string             `json:"last_error,omitempty"`
	Created       time.Time          `json:"created"`
	Updated       time.Time          `json:"updated"`
}

type NotificationsStruct struct {
	Notifications []Notification `json:"notifications"`
	Total         int            `json:"total"`
}
