package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

// BookingService validates and creates bookings: no past dates, one active
// booking per user per day, and the facility's daily cap enforced through an
// atomic slot claim.
type BookingService struct {
	db    *mongo.Database
	slots *storage.SlotStore
	log   zerolog.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewBookingService(db *mongo.Database, slots *storage.SlotStore, log zerolog.Logger, loc *time.Location) *BookingService {
	return &BookingService{db: db, slots: slots, log: log, loc: loc, now: time.Now}
}

type CreateBookingInput struct {
	UserID     primitive.ObjectID
	VaccineID  primitive.ObjectID
	FacilityID primitive.ObjectID
	Day        string // "2006-01-02"
	Time       string // "HH:MM"
	Notes      string
}

func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	day, err := ParseDay(in.Day, s.loc)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD")
	}
	at, err := CombineDayTime(day, in.Time)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "Invalid time format, use HH:MM")
	}
	if at.Before(s.now()) {
		return nil, ErrPastBooking
	}

	var facility models.Facility
	err = s.db.Collection(storage.FacilitiesCollection).FindOne(ctx, bson.M{"_id": in.FacilityID}).Decode(&facility)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(http.StatusNotFound, "Facility not found")
		}
		return nil, err
	}
	if facility.Status != "active" {
		return nil, newError(http.StatusBadRequest, "Facility is not accepting bookings")
	}

	var vaccine models.Vaccine
	err = s.db.Collection(storage.VaccinesCollection).FindOne(ctx, bson.M{"_id": in.VaccineID}).Decode(&vaccine)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, newError(http.StatusNotFound, "Vaccine not found")
		}
		return nil, err
	}
	if vaccine.Status != "active" || vaccine.Quantity <= 0 {
		return nil, ErrVaccineOutOfStock
	}

	bookings := s.db.Collection(storage.BookingsCollection)
	count, err := bookings.CountDocuments(ctx, bson.M{
		"userId": in.UserID,
		"day":    in.Day,
		"status": bson.M{"$in": []string{models.BookingPending, models.BookingConfirmed}},
	})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDailyConflict
	}

	slotID := storage.BookingSlotID(in.FacilityID.Hex(), in.Day)
	if err := s.slots.Claim(ctx, slotID, facility.MaxBookingsPerDay); err != nil {
		if errors.Is(err, storage.ErrSlotFull) {
			return nil, ErrFacilityFull
		}
		return nil, err
	}

	booking := models.Booking{
		ID:         primitive.NewObjectID(),
		UserID:     in.UserID,
		VaccineID:  in.VaccineID,
		FacilityID: in.FacilityID,
		Date:       day,
		Day:        in.Day,
		Time:       in.Time,
		Status:     models.BookingPending,
		Notes:      in.Notes,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := bookings.InsertOne(ctx, booking); err != nil {
		if releaseErr := s.slots.Release(ctx, slotID); releaseErr != nil {
			s.log.Error().Err(releaseErr).Str("slot", slotID).Msg("failed to release booking slot after insert error")
		}
		return nil, err
	}
	return &booking, nil
}

// Cancel moves a non-terminal booking to cancelled and frees its facility
// slot. Owners may only cancel future bookings; admins may cancel any
// non-terminal one.
func (s *BookingService) Cancel(ctx context.Context, booking *models.Booking, asAdmin bool) error {
	if booking.Terminal() {
		return newError(http.StatusBadRequest, "Booking is already completed or cancelled")
	}
	if !asAdmin {
		at, err := CombineDayTime(booking.Date.In(s.loc), booking.Time)
		if err == nil && at.Before(s.now()) {
			return newError(http.StatusBadRequest, "Cannot cancel a past booking")
		}
	}

	_, err := s.db.Collection(storage.BookingsCollection).UpdateOne(ctx,
		bson.M{"_id": booking.ID},
		bson.M{"$set": bson.M{"status": models.BookingCancelled}},
	)
	if err != nil {
		return err
	}
	if err := s.slots.Release(ctx, storage.BookingSlotID(booking.FacilityID.Hex(), booking.Day)); err != nil {
		s.log.Error().Err(err).Str("booking", booking.ID.Hex()).Msg("failed to release booking slot on cancel")
	}
	return nil
}

// ReleaseSlot frees the facility slot for a booking whose status was moved to
// cancelled outside of Cancel (status update endpoint).
func (s *BookingService) ReleaseSlot(ctx context.Context, booking *models.Booking) {
	if err := s.slots.Release(ctx, storage.BookingSlotID(booking.FacilityID.Hex(), booking.Day)); err != nil {
		s.log.Error().Err(err).Str("booking", booking.ID.Hex()).Msg("failed to release booking slot")
	}
}
