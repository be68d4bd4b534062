package models

import (
	"html/template"
	"math"
	"time"

	"github.com/thedevsaddam/govalidator"
)

// minorUnitsPerMajor converts rupees to paise.
const minorUnitsPerMajor = 100

// ToMinorUnits converts an amount in major currency units to minor units.
func ToMinorUnits(amount float64) int {
	return int(math.Round(amount * minorUnitsPerMajor))
}

// FromMinorUnits converts an amount in minor currency units to major units.
func FromMinorUnits(amount int) float64 {
	return float64(amount) / minorUnitsPerMajor
}

// PaymentOrder is the order handle issued by the gateway.
type PaymentOrder struct {
	ID       string `json:"id"`
	Amount   int    `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"-"`
}

// Payment is a verified gateway payment applied to an appointment.
type Payment struct {
	ID            int       `json:"id,omitempty"`
	OrderID       string    `json:"order_id"`
	PaymentID     string    `json:"payment_id"`
	AppointmentID int       `json:"appointment_id"`
	Amount        int       `json:"amount"`
	Created       time.Time `json:"created"`
}

type CreateOrderOpts struct {
	Amount int `schema:"amount"`
}

var CreateOrderRules = govalidator.MapData{
	"amount": []string{"required", "numeric"},
}

type VerifyPaymentOpts struct {
	OrderID       string `json:"order_id"`
	PaymentID     string `json:"razorpay_payment_id"`
	Signature     string `json:"razorpay_signature"`
	AppointmentID string `json:"appointment_id"`
}

var VerifyPaymentRules = govalidator.MapData{
	"order_id":            []string{"required"},
	"razorpay_payment_id": []string{"required"},
	"razorpay_signature":  []string{"required"},
	"appointment_id":      []string{"required"},
}

type RefundOpts struct {
	PaymentID string  `json:"paymentId"`
	Amount    float64 `json:"amount"`
}

var RefundRules = govalidator.MapData{
	"paymentId": []string{"required"},
	"amount":    []string{"required", "float"},
}

type ReceiptPDFHTML struct {
	AppointmentID int
	PatientName   string
	DoctorName    string
	Date          string
	Amount        string
	PaymentID     string
	OrderID       string
	Image         template.URL
}
