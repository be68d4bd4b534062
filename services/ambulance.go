package services

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/medbridge/backend/models"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Coordinates given to ambulances created on demand.
const (
	defaultLatitude  = 28.6139
	defaultLongitude = 77.2090
)

type AmbulanceStore interface {
	GetAvailableAmbulances() ([]models.Ambulance, error)
	InsertAmbulance(ambulance *models.Ambulance) (int, error)
	ClaimAmbulance(ambulanceID int) (bool, error)
	ReleaseAmbulance(ambulanceID int) error
	InsertAmbulanceBooking(booking *models.AmbulanceBooking) (int, error)
	GetAmbulanceBookings() ([]models.AmbulanceBooking, error)
	GetAmbulanceBookingByID(bookingID int) (*models.AmbulanceBooking, error)
	CompleteAmbulanceBooking(bookingID int) (bool, error)
}

type AmbulanceService struct {
	store  AmbulanceStore
	logger *log.Entry
	now    func() time.Time
}

func NewAmbulanceService(store AmbulanceStore, logger *log.Entry) *AmbulanceService {
	return &AmbulanceService{
		store:  store,
		logger: logger.WithField("component", "ambulances"),
		now:    time.Now,
	}
}

// Book claims an available ambulance for the request. When every ambulance
// is taken a new one is registered already claimed for this booking.
func (s *AmbulanceService) Book(ctx context.Context, opts models.BookAmbulanceOpts) (*models.AmbulanceBooking, error) {
	ambulance, err := s.claim()
	if err != nil {
		return nil, err
	}
	if ambulance == nil {
		if ambulance, err = s.newAmbulance(); err != nil {
			return nil, err
		}
	}

	booking := &models.AmbulanceBooking{
		PatientName:    opts.PatientName,
		ContactNumber:  opts.ContactNumber,
		PickupLocation: opts.PickupLocation,
		DropLocation:   opts.DropLocation,
		BookingTime:    s.now(),
		Status:         models.BookingAssigned,
		Ambulance:      ambulance,
	}
	bookingID, err := s.store.InsertAmbulanceBooking(booking)
	if err != nil {
		if releaseErr := s.store.ReleaseAmbulance(ambulance.ID); releaseErr != nil {
			s.logger.WithError(releaseErr).WithField("ambulance_id", ambulance.ID).Error("failed releasing ambulance")
		}
		return nil, err
	}
	booking.ID = bookingID

	s.logger.WithFields(log.Fields{"booking_id": booking.ID, "ambulance_id": ambulance.ID}).Info("ambulance booked")
	return booking, nil
}

func (s *AmbulanceService) claim() (*models.Ambulance, error) {
	available, err := s.store.GetAvailableAmbulances()
	if err != nil {
		return nil, err
	}

	for i := range available {
		claimed, err := s.store.ClaimAmbulance(available[i].ID)
		if err != nil {
			return nil, err
		}
		if claimed {
			ambulance := available[i]
			ambulance.Available = false
			return &ambulance, nil
		}
	}
	return nil, nil
}

func (s *AmbulanceService) newAmbulance() (*models.Ambulance, error) {
	ambulance := &models.Ambulance{
		DriverName:  fmt.Sprintf("Driver %d", rand.Intn(100)),
		PlateNumber: fmt.Sprintf("AMB-%d", rand.Intn(10000)),
		Latitude:    defaultLatitude,
		Longitude:   defaultLongitude,
		Available:   false,
	}
	id, err := s.store.InsertAmbulance(ambulance)
	if err != nil {
		return nil, err
	}
	ambulance.ID = id

	s.logger.WithField("ambulance_id", ambulance.ID).Info("no ambulance available, registered a new one")
	return ambulance, nil
}

func (s *AmbulanceService) List(ctx context.Context) ([]models.AmbulanceBooking, error) {
	return s.store.GetAmbulanceBookings()
}

func (s *AmbulanceService) Get(ctx context.Context, bookingID int) (*models.AmbulanceBooking, error) {
	booking, err := s.store.GetAmbulanceBookingByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, newError(ErrNotFound, "ambulance booking %d not found", bookingID)
	}
	return booking, nil
}

// Complete closes an assigned booking and frees its ambulance.
func (s *AmbulanceService) Complete(ctx context.Context, bookingID int) (*models.AmbulanceBooking, error) {
	completed, err := s.store.CompleteAmbulanceBooking(bookingID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed completing booking %d", bookingID)
	}

	booking, err := s.Get(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !completed {
		return nil, newError(ErrConflict, "ambulance booking %d is %s", bookingID, booking.Status)
	}

	s.logger.WithField("booking_id", bookingID).Info("ambulance booking completed")
	return booking, nil
}
