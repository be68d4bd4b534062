package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/medbridge/backend/config"
	"github.com/medbridge/backend/db"
	"github.com/medbridge/backend/helpers"
	"github.com/medbridge/backend/middlewares"
	"github.com/medbridge/backend/models"
	"github.com/medbridge/backend/notifications"
	"github.com/medbridge/backend/server"
	"github.com/medbridge/backend/services"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"github.com/urfave/negroni"
)

const (
	testJWTSecret     = "jwt-test-secret"
	testGatewaySecret = "testsecret"
)

// fakeStorage keeps everything in memory. Calls it does not implement hit
// the nil embedded Storage and panic.
type fakeStorage struct {
	db.Storage

	mu            sync.Mutex
	users         map[int]*models.User
	appointments  map[int]*models.Appointment
	payments      map[string]*models.Payment
	ambulances    map[int]*models.Ambulance
	bookings      map[int]*models.AmbulanceBooking
	notifications map[int]*models.Notification
	nextID        int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{
		users:         map[int]*models.User{},
		appointments:  map[int]*models.Appointment{},
		payments:      map[string]*models.Payment{},
		ambulances:    map[int]*models.Ambulance{},
		bookings:      map[int]*models.AmbulanceBooking{},
		notifications: map[int]*models.Notification{},
	}
}

func (f *fakeStorage) id() int {
	f.nextID++
	return f.nextID
}

func (f *fakeStorage) InsertUser(user *models.User) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *user
	stored.ID = f.id()
	f.users[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStorage) GetUserByID(userID int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStorage) GetUserByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeStorage) CountUsersByEmail(email string) (int, error) {
	user, err := f.GetUserByEmail(email)
	if user == nil {
		return 0, err
	}
	return 1, err
}

func (f *fakeStorage) GetUsersByRole(role string, status string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var users []models.User
	for _, user := range f.users {
		if user.Role == role && (status == "" || user.Status == status) {
			users = append(users, *user)
		}
	}
	return users, nil
}

func (f *fakeStorage) GetDoctorsBySpeciality(speciality string) ([]models.User, error) {
	doctors, _ := f.GetUsersByRole(models.ConstRoles.Doctor, models.ConstUserStatuses.Active)
	var matched []models.User
	for _, doctor := range doctors {
		if doctor.Doctor != nil && doctor.Doctor.Speciality == speciality {
			matched = append(matched, doctor)
		}
	}
	return matched, nil
}

func (f *fakeStorage) UpdateUserStatus(userID int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user, ok := f.users[userID]; ok {
		user.Status = status
	}
	return nil
}

func (f *fakeStorage) InsertAppointment(appointment *models.Appointment) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *appointment
	stored.ID = f.id()
	f.appointments[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStorage) GetAppointmentByID(appointmentID int) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if appointment, ok := f.appointments[appointmentID]; ok {
		copied := *appointment
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStorage) GetAppointmentsByDoctorID(doctorID int) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var appointments []models.Appointment
	for _, appointment := range f.appointments {
		if appointment.DoctorID == doctorID {
			appointments = append(appointments, *appointment)
		}
	}
	return appointments, nil
}

func (f *fakeStorage) GetAppointmentsByPatientID(patientID int) ([]models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var appointments []models.Appointment
	for _, appointment := range f.appointments {
		if appointment.PatientID == patientID {
			appointments = append(appointments, *appointment)
		}
	}
	return appointments, nil
}

func (f *fakeStorage) AssignAppointmentDoctor(appointmentID int, doctorID int, price float64, status models.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	appointment := f.appointments[appointmentID]
	appointment.DoctorID = doctorID
	appointment.Price = price
	appointment.Status = status
	return nil
}

func (f *fakeStorage) UpdateAppointmentTreatment(appointmentID int, opts *models.UpdateTreatmentOpts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	appointment := f.appointments[appointmentID]
	appointment.Prescription = opts.Prescription
	appointment.Price = opts.Price
	appointment.Status = opts.Status
	return nil
}

func (f *fakeStorage) GetPaymentByPaymentID(paymentID string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.payments[paymentID], nil
}

func (f *fakeStorage) ConfirmAppointmentPayment(payment *models.Payment) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appointment, ok := f.appointments[payment.AppointmentID]
	if !ok || !models.CanTransition(appointment.Status, models.AppointmentConfirmed) {
		return false, nil
	}
	appointment.Status = models.AppointmentConfirmed
	f.payments[payment.PaymentID] = payment
	return true, nil
}

func (f *fakeStorage) GetAvailableAmbulances() ([]models.Ambulance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ambulances []models.Ambulance
	for _, ambulance := range f.ambulances {
		if ambulance.Available {
			ambulances = append(ambulances, *ambulance)
		}
	}
	return ambulances, nil
}

func (f *fakeStorage) InsertAmbulance(ambulance *models.Ambulance) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *ambulance
	stored.ID = f.id()
	f.ambulances[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStorage) ClaimAmbulance(ambulanceID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ambulance, ok := f.ambulances[ambulanceID]
	if !ok || !ambulance.Available {
		return false, nil
	}
	ambulance.Available = false
	return true, nil
}

func (f *fakeStorage) ReleaseAmbulance(ambulanceID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ambulance, ok := f.ambulances[ambulanceID]; ok {
		ambulance.Available = true
	}
	return nil
}

func (f *fakeStorage) InsertAmbulanceBooking(booking *models.AmbulanceBooking) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *booking
	stored.ID = f.id()
	f.bookings[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStorage) GetAmbulanceBookings() ([]models.AmbulanceBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var bookings []models.AmbulanceBooking
	for _, booking := range f.bookings {
		bookings = append(bookings, *booking)
	}
	return bookings, nil
}

func (f *fakeStorage) GetAmbulanceBookingByID(bookingID int) (*models.AmbulanceBooking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if booking, ok := f.bookings[bookingID]; ok {
		copied := *booking
		return &copied, nil
	}
	return nil, nil
}

func (f *fakeStorage) CompleteAmbulanceBooking(bookingID int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	booking, ok := f.bookings[bookingID]
	if !ok || booking.Status == models.BookingCompleted {
		return false, nil
	}
	booking.Status = models.BookingCompleted
	if booking.Ambulance != nil {
		if ambulance, ok := f.ambulances[booking.Ambulance.ID]; ok {
			ambulance.Available = true
		}
	}
	return true, nil
}

func (f *fakeStorage) InsertNotification(notification *models.Notification) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *notification
	stored.ID = f.id()
	f.notifications[stored.ID] = &stored
	return stored.ID, nil
}

func (f *fakeStorage) UpdateNotification(notification *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *notification
	f.notifications[stored.ID] = &stored
	return nil
}

func (f *fakeStorage) GetNotificationsByStatus(status models.NotificationStatus) ([]models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var notifications []models.Notification
	for _, notification := range f.notifications {
		if notification.Status == status {
			notifications = append(notifications, *notification)
		}
	}
	return notifications, nil
}

type fakeGateway struct {
	createOrder func(amount int, receipt string) (*models.PaymentOrder, error)
	refund      func(paymentID string, amount int) (map[string]interface{}, error)
	fetchOrder  func(orderID string) (*models.PaymentOrder, error)
}

func (g *fakeGateway) CreateOrder(amount int, receipt string) (*models.PaymentOrder, error) {
	return g.createOrder(amount, receipt)
}

func (g *fakeGateway) Refund(paymentID string, amount int) (map[string]interface{}, error) {
	return g.refund(paymentID, amount)
}

func (g *fakeGateway) FetchOrder(orderID string) (*models.PaymentOrder, error) {
	return g.fetchOrder(orderID)
}

type recordingNotifier struct {
	mu    sync.Mutex
	tasks []notifications.Task
}

func (n *recordingNotifier) Enqueue(task notifications.Task) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.tasks = append(n.tasks, task)
	return nil
}

func (n *recordingNotifier) Tasks() []notifications.Task {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notifications.Task(nil), n.tasks...)
}

type fakeImages struct {
	mu     sync.Mutex
	images map[string][]byte
}

func (f *fakeImages) Upload(name string, contentType string, body io.Reader) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[name] = data
	return nil
}

func (f *fakeImages) Download(name string) ([]byte, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.images[name]
	if !ok {
		return nil, "", helpers.ErrImageNotFound
	}
	return data, "image/png", nil
}

type handlerFunc func(ctx context.Context, task notifications.Task) error

func (f handlerFunc) Handle(ctx context.Context, task notifications.Task) error {
	return f(ctx, task)
}

type testApp struct {
	ctx      *config.AppContext
	store    *fakeStorage
	gateway  *fakeGateway
	notifier *recordingNotifier
	images   *fakeImages
	handler  http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	nullLogger, _ := test.NewNullLogger()
	logger := log.NewEntry(nullLogger)
	config.SetLogger(logger)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	app := &testApp{
		store: newFakeStorage(),
		gateway: &fakeGateway{
			createOrder: func(amount int, receipt string) (*models.PaymentOrder, error) {
				return &models.PaymentOrder{ID: "order_1", Amount: amount, Currency: "INR"}, nil
			},
			refund: func(paymentID string, amount int) (map[string]interface{}, error) {
				return map[string]interface{}{"id": "rfnd_1", "payment_id": paymentID, "amount": amount}, nil
			},
			fetchOrder: func(orderID string) (*models.PaymentOrder, error) {
				return &models.PaymentOrder{ID: orderID, Amount: 50000, Currency: "INR"}, nil
			},
		},
		notifier: &recordingNotifier{},
		images:   &fakeImages{images: map[string][]byte{}},
	}

	queue := notifications.NewQueue(handlerFunc(func(ctx context.Context, task notifications.Task) error {
		return nil
	}), app.store, logger, notifications.Options{RetryDelay: time.Millisecond})

	app.ctx = &config.AppContext{
		Config: config.Configuration{
			JWTSecret: testJWTSecret,
			TokenTTL:  time.Hour,
		},
		DB:            app.store,
		Images:        app.images,
		Redis:         client,
		Notifications: queue,
		Payments:      services.NewPaymentService(app.store, app.gateway, app.notifier, services.NewRedisLocker(client, "test:"), testGatewaySecret, time.Second, logger),
		Ambulances:    services.NewAmbulanceService(app.store, logger),
		Appointments:  services.NewAppointmentService(app.store, app.notifier, logger),
	}

	n := negroni.New()
	n.Use(negroni.HandlerFunc(middlewares.LoggerRequest))
	n.Use(middlewares.UserMiddleware())
	n.UseHandler(server.NewRouter(app.ctx, GetRoutes()))
	app.handler = n

	return app
}

func (app *testApp) do(t *testing.T, method, path string, body []byte, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.handler.ServeHTTP(rec, req)
	return rec
}

// user stores an active user with a hashed password and returns it with a signed token.
func (app *testApp) user(t *testing.T, role, email string) (*models.User, string) {
	t.Helper()
	password, err := helpers.HashPassword("secret123")
	require.NoError(t, err)

	user := &models.User{
		Firstname: "Test",
		Lastname:  role,
		Email:     email,
		Password:  password,
		Contact:   "9876543210",
		Role:      role,
		Status:    models.ConstUserStatuses.Active,
	}
	if role == models.ConstRoles.Doctor {
		user.Doctor = &models.DoctorProfile{Speciality: "Cardiologist", Fees: 700}
	}
	user.ID, err = app.store.InsertUser(user)
	require.NoError(t, err)

	token, err := helpers.GenerateToken(user, testJWTSecret, time.Hour)
	require.NoError(t, err)
	return user, token
}
