package api

import (
	"net/http"

	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/server"
)

// HealthcheckHandler indicates the service's healthy
func HealthcheckHandler(_ *config.AppContext, w *middlewares.ResponseWriter, _ *http.Request) {
	w.String(http.StatusOK, "OK")
}

// GetRoutes ...
func GetRoutes() []*server.Route {
	return []*server.Route{
		{Path: "/healthcheck", Methods: []string{"GET", "HEAD"}, Handler: HealthcheckHandler, IsProtected: false},

		// Payment
		{Path: "/api/payment/createOrder", Methods: []string{"POST"}, Handler: CreateOrder, IsProtected: false},
		{Path: "/api/payment/verify", Methods: []string{"POST"}, Handler: VerifyPayment, IsProtected: false},
		{Path: "/api/payment/refund", Methods: []string{"POST"}, Handler: RefundPayment, IsProtected: false},

		// Ambulance
		{Path: "/api/ambulance/book", Methods: []string{"POST"}, Handler: BookAmbulance, IsProtected: false},
		{Path: "/api/ambulance/patient/bookings", Methods: []string{"GET", "HEAD"}, Handler: GetAmbulanceBookings, IsProtected: false},
		{Path: "/api/ambulance/booking/{bookingId:[0-9]+}", Methods: []string{"GET", "HEAD"}, Handler: GetAmbulanceBooking, IsProtected: false},
		{Path: "/api/ambulance/booking/{bookingId:[0-9]+}/complete", Methods: []string{"POST"}, Handler: CompleteAmbulanceBooking, IsProtected: false},

		// User
		{Path: "/api/user/register", Methods: []string{"POST"}, Handler: RegisterPatient, IsProtected: false},
		{Path: "/api/user/login", Methods: []string{"POST"}, Handler: Login, IsProtected: false},

		// Doctor
		{Path: "/api/doctor/register", Methods: []string{"POST"}, Handler: RegisterDoctor, IsProtected: false},
		{Path: "/api/doctor/login", Methods: []string{"POST"}, Handler: Login, IsProtected: false},
		{Path: "/api/doctor/all", Methods: []string{"GET", "HEAD"}, Handler: GetDoctors, IsProtected: false},
		{Path: "/api/doctor/pending", Methods: []string{"GET", "HEAD"}, Handler: GetPendingDoctors, IsProtected: false},
		{Path: "/api/doctor/specialist/all", Methods: []string{"GET", "HEAD"}, Handler: GetSpecialists, IsProtected: false},
		{Path: "/api/doctor/by-speciality/{speciality}", Methods: []string{"GET", "HEAD"}, Handler: GetDoctorsBySpeciality, IsProtected: false},
		{Path: "/api/doctor/image/{imageName}", Methods: []string{"GET", "HEAD"}, Handler: GetDoctorImage, IsProtected: false},
		{Path: "/api/doctor/id", Methods: []string{"GET", "HEAD"}, Handler: GetDoctorAppointments, IsProtected: false},
		{Path: "/api/doctor/verify/{doctorId:[0-9]+}", Methods: []string{"POST"}, Handler: VerifyDoctor, IsProtected: true},

		// Appointment
		{Path: "/api/appointment", Methods: []string{"POST"}, Handler: InsertAppointment, IsProtected: true},
		{Path: "/api/appointment/patient", Methods: []string{"GET", "HEAD"}, Handler: GetPatientAppointments, IsProtected: true},
		{Path: "/api/appointment/doctor", Methods: []string{"GET", "HEAD"}, Handler: GetMyDoctorAppointments, IsProtected: true},
		{Path: "/api/appointment/{appointmentId:[0-9]+}", Methods: []string{"GET", "HEAD"}, Handler: GetAppointment, IsProtected: true},
		{Path: "/api/appointment/{appointmentId:[0-9]+}/assign", Methods: []string{"PUT"}, Handler: AssignAppointmentDoctor, IsProtected: true},
		{Path: "/api/appointment/{appointmentId:[0-9]+}/treatment", Methods: []string{"PUT"}, Handler: UpdateAppointmentTreatment, IsProtected: true},

		// Notifications
		{Path: "/api/notifications/failed", Methods: []string{"GET", "HEAD"}, Handler: GetFailedNotifications, IsProtected: true},
		{Path: "/api/notifications/retry", Methods: []string{"POST"}, Handler: RetryFailedNotifications, IsProtected: true},
		{Path: "/api/notifications/stats", Methods: []string{"GET", "HEAD"}, Handler: GetNotificationStats, IsProtected: true},
	}
}
