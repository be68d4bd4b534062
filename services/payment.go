package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medbridge/backend/models"
	"github.com/medbridge/backend/notifications"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const paymentLockPrefix = "payment:verify:"

type Gateway interface {
	CreateOrder(amount int, receipt string) (*models.PaymentOrder, error)
	Refund(paymentID string, amount int) (map[string]interface{}, error)
	FetchOrder(orderID string) (*models.PaymentOrder, error)
}

type Notifier interface {
	Enqueue(task notifications.Task) error
}

type PaymentStore interface {
	GetAppointmentByID(appointmentID int) (*models.Appointment, error)
	GetPaymentByPaymentID(paymentID string) (*models.Payment, error)
	ConfirmAppointmentPayment(payment *models.Payment) (bool, error)
}

type PaymentService struct {
	store    PaymentStore
	gateway  Gateway
	notifier Notifier
	locker   Locker
	secret   []byte
	lockTTL  time.Duration
	logger   *log.Entry
}

func NewPaymentService(store PaymentStore, gateway Gateway, notifier Notifier, locker Locker, secret string, lockTTL time.Duration, logger *log.Entry) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gateway,
		notifier: notifier,
		locker:   locker,
		secret:   []byte(secret),
		lockTTL:  lockTTL,
		logger:   logger.WithField("component", "payments"),
	}
}

// CreateOrder opens a gateway order for amount minor units with a fresh receipt.
func (s *PaymentService) CreateOrder(ctx context.Context, amount int) (*models.PaymentOrder, error) {
	if amount <= 0 {
		return nil, newError(ErrValidation, "amount must be a positive number of minor units, got %d", amount)
	}

	receipt := uuid.NewString()
	order, err := s.gateway.CreateOrder(amount, receipt)
	if err != nil {
		s.logger.WithError(err).WithField("amount", amount).Error("failed creating order")
		return nil, wrapError(ErrGateway, err)
	}
	order.Receipt = receipt

	s.logger.WithFields(log.Fields{"order_id": order.ID, "amount": order.Amount}).Info("order created")
	return order, nil
}

func (s *PaymentService) Refund(ctx context.Context, paymentID string, amount int) (map[string]interface{}, error) {
	if strings.TrimSpace(paymentID) == "" {
		return nil, newError(ErrValidation, "paymentId is required")
	}
	if amount <= 0 {
		return nil, newError(ErrValidation, "amount must be positive")
	}

	refund, err := s.gateway.Refund(paymentID, amount)
	if err != nil {
		s.logger.WithError(err).WithField("payment_id", paymentID).Error("refund failed")
		return nil, wrapError(ErrGateway, err)
	}

	s.logger.WithFields(log.Fields{"payment_id": paymentID, "amount": amount}).Info("refund created")
	return refund, nil
}

// Signature is the hex HMAC-SHA256 of "orderID|paymentID" the gateway signs callbacks with.
func (s *PaymentService) Signature(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) validSignature(orderID, paymentID, signature string) bool {
	return hmac.Equal([]byte(s.Signature(orderID, paymentID)), []byte(strings.ToLower(signature)))
}

// Verify checks a gateway callback and confirms the appointment it pays for.
// A bad signature returns false and writes nothing. Once the appointment is
// confirmed the call reports true whatever happens to the notifications.
func (s *PaymentService) Verify(ctx context.Context, opts models.VerifyPaymentOpts) (bool, error) {
	if opts.OrderID == "" || opts.PaymentID == "" || opts.Signature == "" || opts.AppointmentID == "" {
		return false, newError(ErrValidation, "Missing required parameters: order_id, razorpay_payment_id, razorpay_signature, appointment_id")
	}
	appointmentID, err := strconv.Atoi(strings.TrimSpace(opts.AppointmentID))
	if err != nil || appointmentID <= 0 {
		return false, newError(ErrValidation, "Invalid appointment_id format")
	}

	logger := s.logger.WithFields(log.Fields{
		"appointment_id": appointmentID,
		"order_id":       opts.OrderID,
		"payment_id":     opts.PaymentID,
	})

	if !s.validSignature(opts.OrderID, opts.PaymentID, opts.Signature) {
		logger.Warn("payment signature mismatch")
		return false, nil
	}

	key := paymentLockPrefix + opts.PaymentID
	locked, owner, err := s.locker.TryLock(ctx, key, s.lockTTL)
	if err != nil {
		return false, err
	}
	if !locked {
		return false, newError(ErrConflict, "payment %s is already being verified", opts.PaymentID)
	}
	defer func() {
		if err := s.locker.Unlock(ctx, key, owner); err != nil {
			logger.WithError(err).Warn("failed releasing payment lock")
		}
	}()

	applied, err := s.store.GetPaymentByPaymentID(opts.PaymentID)
	if err != nil {
		return false, err
	}
	if applied != nil {
		if applied.AppointmentID != appointmentID {
			logger.WithField("applied_to", applied.AppointmentID).Warn("payment replayed for another appointment")
			return false, newError(ErrConflict, "payment %s was already applied to appointment %d", opts.PaymentID, applied.AppointmentID)
		}
		logger.Info("payment already verified")
		return true, nil
	}

	appointment, err := s.store.GetAppointmentByID(appointmentID)
	if err != nil {
		return false, err
	}
	if appointment == nil {
		return false, newError(ErrNotFound, "appointment %d not found", appointmentID)
	}

	if !models.CanTransition(appointment.Status, models.AppointmentConfirmed) {
		logger.WithField("status", appointment.Status).Info("appointment already confirmed")
		return true, nil
	}

	// The payment row records what the gateway order charged.
	order, err := s.gateway.FetchOrder(opts.OrderID)
	if err != nil {
		logger.WithError(err).Error("failed fetching order")
		return false, wrapError(ErrGateway, err)
	}

	payment := &models.Payment{
		OrderID:       opts.OrderID,
		PaymentID:     opts.PaymentID,
		AppointmentID: appointmentID,
		Amount:        order.Amount,
	}
	confirmed, err := s.store.ConfirmAppointmentPayment(payment)
	if err != nil {
		return false, errors.Wrapf(err, "failed confirming appointment %d", appointmentID)
	}
	if !confirmed {
		logger.Info("appointment confirmed by a concurrent verification")
		return true, nil
	}

	logger.Info("appointment confirmed")
	s.notifyConfirmed(logger, appointment, payment)
	return true, nil
}

func (s *PaymentService) notifyConfirmed(logger *log.Entry, appointment *models.Appointment, payment *models.Payment) {
	kinds := []models.NotificationKind{models.NotificationPaymentReceipt}
	if appointment.DoctorID != 0 {
		kinds = append(kinds, models.NotificationDoctorConfirmation)
	}
	kinds = append(kinds, models.NotificationPatientConfirmation)

	for _, kind := range kinds {
		task := notifications.Task{
			Kind:          kind,
			AppointmentID: payment.AppointmentID,
			PaymentID:     payment.PaymentID,
			Amount:        payment.Amount,
		}
		if err := s.notifier.Enqueue(task); err != nil {
			logger.WithError(err).WithField("kind", kind).Error("failed queueing notification")
		}
	}
}
