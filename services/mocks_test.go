package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/medbridge/backend/models"
	"github.com/medbridge/backend/notifications"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func nullLogger() *log.Entry {
	logger, _ := test.NewNullLogger()
	return log.NewEntry(logger)
}

var _ Gateway = (*MockGateway)(nil)

type MockGateway struct {
	CreateOrderFunc func(amount int, receipt string) (*models.PaymentOrder, error)
	RefundFunc      func(paymentID string, amount int) (map[string]interface{}, error)
	FetchOrderFunc  func(orderID string) (*models.PaymentOrder, error)

	CreateOrderCallCount int32
	RefundCallCount      int32
	FetchOrderCallCount  int32
}

func (m *MockGateway) CreateOrder(amount int, receipt string) (*models.PaymentOrder, error) {
	atomic.AddInt32(&m.CreateOrderCallCount, 1)
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(amount, receipt)
	}
	return nil, errors.New("CreateOrderFunc not implemented in mock")
}

func (m *MockGateway) Refund(paymentID string, amount int) (map[string]interface{}, error) {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundFunc != nil {
		return m.RefundFunc(paymentID, amount)
	}
	return nil, errors.New("RefundFunc not implemented in mock")
}

func (m *MockGateway) FetchOrder(orderID string) (*models.PaymentOrder, error) {
	atomic.AddInt32(&m.FetchOrderCallCount, 1)
	if m.FetchOrderFunc != nil {
		return m.FetchOrderFunc(orderID)
	}
	return nil, errors.New("FetchOrderFunc not implemented in mock")
}

var _ Notifier = (*MockNotifier)(nil)

type MockNotifier struct {
	EnqueueFunc func(task notifications.Task) error

	mu    sync.Mutex
	Tasks []notifications.Task
}

func (m *MockNotifier) Enqueue(task notifications.Task) error {
	m.mu.Lock()
	m.Tasks = append(m.Tasks, task)
	m.mu.Unlock()
	if m.EnqueueFunc != nil {
		return m.EnqueueFunc(task)
	}
	return nil
}

var _ Locker = (*MockLocker)(nil)

type MockLocker struct {
	TryLockFunc func(ctx context.Context, key string, ttl time.Duration) (bool, string, error)

	mu              sync.Mutex
	held            map[string]string
	UnlockCallCount int32
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, string, error) {
	if m.TryLockFunc != nil {
		return m.TryLockFunc(ctx, key, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held == nil {
		m.held = map[string]string{}
	}
	if _, ok := m.held[key]; ok {
		return false, "", nil
	}
	m.held[key] = "owner"
	return true, "owner", nil
}

func (m *MockLocker) Unlock(ctx context.Context, key, value string) error {
	atomic.AddInt32(&m.UnlockCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key)
	return nil
}

var _ PaymentStore = (*MockPaymentStore)(nil)

type MockPaymentStore struct {
	GetAppointmentByIDFunc        func(appointmentID int) (*models.Appointment, error)
	GetPaymentByPaymentIDFunc     func(paymentID string) (*models.Payment, error)
	ConfirmAppointmentPaymentFunc func(payment *models.Payment) (bool, error)

	GetAppointmentByIDCallCount        int32
	ConfirmAppointmentPaymentCallCount int32
}

func (m *MockPaymentStore) GetAppointmentByID(appointmentID int) (*models.Appointment, error) {
	atomic.AddInt32(&m.GetAppointmentByIDCallCount, 1)
	if m.GetAppointmentByIDFunc != nil {
		return m.GetAppointmentByIDFunc(appointmentID)
	}
	return nil, nil
}

func (m *MockPaymentStore) GetPaymentByPaymentID(paymentID string) (*models.Payment, error) {
	if m.GetPaymentByPaymentIDFunc != nil {
		return m.GetPaymentByPaymentIDFunc(paymentID)
	}
	return nil, nil
}

func (m *MockPaymentStore) ConfirmAppointmentPayment(payment *models.Payment) (bool, error) {
	atomic.AddInt32(&m.ConfirmAppointmentPaymentCallCount, 1)
	if m.ConfirmAppointmentPaymentFunc != nil {
		return m.ConfirmAppointmentPaymentFunc(payment)
	}
	return true, nil
}

var _ AmbulanceStore = (*MockAmbulanceStore)(nil)

type MockAmbulanceStore struct {
	GetAvailableAmbulancesFunc   func() ([]models.Ambulance, error)
	InsertAmbulanceFunc          func(ambulance *models.Ambulance) (int, error)
	ClaimAmbulanceFunc           func(ambulanceID int) (bool, error)
	ReleaseAmbulanceFunc         func(ambulanceID int) error
	InsertAmbulanceBookingFunc   func(booking *models.AmbulanceBooking) (int, error)
	GetAmbulanceBookingsFunc     func() ([]models.AmbulanceBooking, error)
	GetAmbulanceBookingByIDFunc  func(bookingID int) (*models.AmbulanceBooking, error)
	CompleteAmbulanceBookingFunc func(bookingID int) (bool, error)

	InsertAmbulanceCallCount        int32
	InsertAmbulanceBookingCallCount int32
	ReleaseAmbulanceCallCount       int32
}

func (m *MockAmbulanceStore) GetAvailableAmbulances() ([]models.Ambulance, error) {
	if m.GetAvailableAmbulancesFunc != nil {
		return m.GetAvailableAmbulancesFunc()
	}
	return nil, nil
}

func (m *MockAmbulanceStore) InsertAmbulance(ambulance *models.Ambulance) (int, error) {
	atomic.AddInt32(&m.InsertAmbulanceCallCount, 1)
	if m.InsertAmbulanceFunc != nil {
		return m.InsertAmbulanceFunc(ambulance)
	}
	return 1, nil
}

func (m *MockAmbulanceStore) ClaimAmbulance(ambulanceID int) (bool, error) {
	if m.ClaimAmbulanceFunc != nil {
		return m.ClaimAmbulanceFunc(ambulanceID)
	}
	return true, nil
}

func (m *MockAmbulanceStore) ReleaseAmbulance(ambulanceID int) error {
	atomic.AddInt32(&m.ReleaseAmbulanceCallCount, 1)
	if m.ReleaseAmbulanceFunc != nil {
		return m.ReleaseAmbulanceFunc(ambulanceID)
	}
	return nil
}

func (m *MockAmbulanceStore) InsertAmbulanceBooking(booking *models.AmbulanceBooking) (int, error) {
	atomic.AddInt32(&m.InsertAmbulanceBookingCallCount, 1)
	if m.InsertAmbulanceBookingFunc != nil {
		return m.InsertAmbulanceBookingFunc(booking)
	}
	return 1, nil
}

func (m *MockAmbulanceStore) GetAmbulanceBookings() ([]models.AmbulanceBooking, error) {
	if m.GetAmbulanceBookingsFunc != nil {
		return m.GetAmbulanceBookingsFunc()
	}
	return nil, nil
}

func (m *MockAmbulanceStore) GetAmbulanceBookingByID(bookingID int) (*models.AmbulanceBooking, error) {
	if m.GetAmbulanceBookingByIDFunc != nil {
		return m.GetAmbulanceBookingByIDFunc(bookingID)
	}
	return nil, nil
}

func (m *MockAmbulanceStore) CompleteAmbulanceBooking(bookingID int) (bool, error) {
	if m.CompleteAmbulanceBookingFunc != nil {
		return m.CompleteAmbulanceBookingFunc(bookingID)
	}
	return false, nil
}

var _ AppointmentStore = (*MockAppointmentStore)(nil)

type MockAppointmentStore struct {
	InsertAppointmentFunc          func(appointment *models.Appointment) (int, error)
	GetAppointmentByIDFunc         func(appointmentID int) (*models.Appointment, error)
	GetAppointmentsByDoctorIDFunc  func(doctorID int) ([]models.Appointment, error)
	GetAppointmentsByPatientIDFunc func(patientID int) ([]models.Appointment, error)
	AssignAppointmentDoctorFunc    func(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error
	UpdateAppointmentTreatmentFunc func(appointmentID int, opts *models.UpdateTreatmentOpts) error
	GetUserByIDFunc                func(userID int) (*models.User, error)

	InsertAppointmentCallCount          int32
	AssignAppointmentDoctorCallCount    int32
	UpdateAppointmentTreatmentCallCount int32
	GetUserByIDCallCount                int32
}

func (m *MockAppointmentStore) InsertAppointment(appointment *models.Appointment) (int, error) {
	atomic.AddInt32(&m.InsertAppointmentCallCount, 1)
	if m.InsertAppointmentFunc != nil {
		return m.InsertAppointmentFunc(appointment)
	}
	return 1, nil
}

func (m *MockAppointmentStore) GetAppointmentByID(appointmentID int) (*models.Appointment, error) {
	if m.GetAppointmentByIDFunc != nil {
		return m.GetAppointmentByIDFunc(appointmentID)
	}
	return nil, nil
}

func (m *MockAppointmentStore) GetAppointmentsByDoctorID(doctorID int) ([]models.Appointment, error) {
	if m.GetAppointmentsByDoctorIDFunc != nil {
		return m.GetAppointmentsByDoctorIDFunc(doctorID)
	}
	return nil, nil
}

func (m *MockAppointmentStore) GetAppointmentsByPatientID(patientID int) ([]models.Appointment, error) {
	if m.GetAppointmentsByPatientIDFunc != nil {
		return m.GetAppointmentsByPatientIDFunc(patientID)
	}
	return nil, nil
}

func (m *MockAppointmentStore) AssignAppointmentDoctor(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error {
	atomic.AddInt32(&m.AssignAppointmentDoctorCallCount, 1)
	if m.AssignAppointmentDoctorFunc != nil {
		return m.AssignAppointmentDoctorFunc(appointmentID, doctorID, price, status)
	}
	return nil
}

func (m *MockAppointmentStore) UpdateAppointmentTreatment(appointmentID int, opts *models.UpdateTreatmentOpts) error {
	atomic.AddInt32(&m.UpdateAppointmentTreatmentCallCount, 1)
	if m.UpdateAppointmentTreatmentFunc != nil {
		return m.UpdateAppointmentTreatmentFunc(appointmentID, opts)
	}
	return nil
}

func (m *MockAppointmentStore) GetUserByID(userID int) (*models.User, error) {
	atomic.AddInt32(&m.GetUserByIDCallCount, 1)
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(userID)
	}
	return nil, nil
}
