package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
	"github.com/vaxtrack/vaxtrack-api/internal/storage"
)

type shiftWindow struct {
	startHour, startMin int
	endHour, endMin     int
	endNextDay          bool
}

var shiftWindows = map[string]shiftWindow{
	models.ShiftMorning:   {6, 30, 11, 30, false},
	models.ShiftAfternoon: {13, 0, 17, 0, false},
	models.ShiftNight:     {17, 0, 6, 0, true},
}

// ShiftWindow derives the start/end instants of a shift type on the given
// day. The night shift ends at 06:00 the next day.
func ShiftWindow(day time.Time, shiftType string) (time.Time, time.Time, error) {
	w, ok := shiftWindows[shiftType]
	if !ok {
		return time.Time{}, time.Time{}, fmt.Errorf("unknown shift type %q", shiftType)
	}
	start := time.Date(day.Year(), day.Month(), day.Day(), w.startHour, w.startMin, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), w.endHour, w.endMin, 0, 0, day.Location())
	if w.endNextDay {
		end = end.AddDate(0, 0, 1)
	}
	return start, end, nil
}

// ParseDay parses a "2006-01-02" day string to midnight in loc.
func ParseDay(day string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", day, loc)
}

// CombineDayTime resolves a day plus a "HH:MM" clock time to an instant.
func CombineDayTime(day time.Time, clock string) (time.Time, error) {
	t, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}

// ShiftService validates doctor shift registration and cancellation, and
// decides whether a doctor's shift covers a booking (the completion gate).
type ShiftService struct {
	db    *mongo.Database
	slots *storage.SlotStore
	log   zerolog.Logger
	loc   *time.Location
	now   func() time.Time
}

func NewShiftService(db *mongo.Database, slots *storage.SlotStore, log zerolog.Logger, loc *time.Location) *ShiftService {
	return &ShiftService{db: db, slots: slots, log: log, loc: loc, now: time.Now}
}

// Register creates a shift for doctorID on day (format "2006-01-02").
func (s *ShiftService) Register(ctx context.Context, doctorID primitive.ObjectID, dayStr, shiftType string) (*models.DoctorShift, error) {
	day, err := ParseDay(dayStr, s.loc)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "Invalid date format, use YYYY-MM-DD")
	}
	start, end, err := ShiftWindow(day, shiftType)
	if err != nil {
		return nil, newError(http.StatusBadRequest, "Invalid shift type")
	}
	if end.Before(s.now()) {
		return nil, newError(http.StatusBadRequest, "Cannot register a shift in the past")
	}

	col := s.db.Collection(storage.ShiftsCollection)
	count, err := col.CountDocuments(ctx, bson.M{
		"doctorId":  doctorID,
		"day":       dayStr,
		"shiftType": shiftType,
		"status":    bson.M{"$ne": models.ShiftCancelled},
	})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateShift
	}

	slotID := storage.ShiftSlotID(dayStr, shiftType)
	if err := s.slots.Claim(ctx, slotID, models.MaxDoctorsPerShift); err != nil {
		if errors.Is(err, storage.ErrSlotFull) {
			return nil, ErrShiftFull
		}
		return nil, err
	}

	shift := models.DoctorShift{
		ID:        primitive.NewObjectID(),
		DoctorID:  doctorID,
		Date:      day,
		Day:       dayStr,
		ShiftType: shiftType,
		StartTime: start,
		EndTime:   end,
		Status:    models.ShiftScheduled,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := col.InsertOne(ctx, shift); err != nil {
		if releaseErr := s.slots.Release(ctx, slotID); releaseErr != nil {
			s.log.Error().Err(releaseErr).Str("slot", slotID).Msg("failed to release shift slot after insert error")
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateShift
		}
		return nil, err
	}
	return &shift, nil
}

// Cancel cancels a scheduled shift. Shifts that have started or finished
// cannot be cancelled.
func (s *ShiftService) Cancel(ctx context.Context, doctorID, shiftID primitive.ObjectID) error {
	col := s.db.Collection(storage.ShiftsCollection)

	var shift models.DoctorShift
	err := col.FindOne(ctx, bson.M{"_id": shiftID, "doctorId": doctorID}).Decode(&shift)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return newError(http.StatusNotFound, "Shift not found")
		}
		return err
	}
	if shift.Status == models.ShiftCancelled {
		return newError(http.StatusBadRequest, "Shift is already cancelled")
	}
	if !s.now().Before(shift.StartTime) {
		return ErrShiftStarted
	}

	_, err = col.UpdateOne(ctx, bson.M{"_id": shiftID}, bson.M{"$set": bson.M{"status": models.ShiftCancelled}})
	if err != nil {
		return err
	}
	if err := s.slots.Release(ctx, storage.ShiftSlotID(shift.Day, shift.ShiftType)); err != nil {
		s.log.Error().Err(err).Str("shift", shiftID.Hex()).Msg("failed to release shift slot on cancel")
	}
	return nil
}

// CoveringShift returns the doctor's non-cancelled shift whose window covers
// now, or an ErrOutsideShift validation error when there is none.
func (s *ShiftService) CoveringShift(ctx context.Context, doctorID primitive.ObjectID) (*models.DoctorShift, error) {
	now := s.now()
	col := s.db.Collection(storage.ShiftsCollection)

	cursor, err := col.Find(ctx, bson.M{
		"doctorId":  doctorID,
		"status":    bson.M{"$ne": models.ShiftCancelled},
		"startTime": bson.M{"$lte": now},
		"endTime":   bson.M{"$gt": now},
	})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var shifts []models.DoctorShift
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, ErrOutsideShift
	}
	return &shifts[0], nil
}

// DisplayStatus derives the status shown to clients from the clock; stored
// status only tracks cancellation.
func (s *ShiftService) DisplayStatus(shift *models.DoctorShift) string {
	if shift.Status == models.ShiftCancelled {
		return models.ShiftCancelled
	}
	now := s.now()
	switch {
	case now.Before(shift.StartTime):
		return models.ShiftScheduled
	case now.Before(shift.EndTime):
		return models.ShiftActive
	default:
		return models.ShiftCompleted
	}
}

// Location exposes the configured zone for handlers doing day arithmetic.
func (s *ShiftService) Location() *time.Location { return s.loc }
