package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vaxtrack/vaxtrack-api/internal/models"
)

// ErrSlotFull is returned when a capacity counter is already at its limit.
var ErrSlotFull = errors.New("slot capacity reached")

// SlotStore enforces capacity limits with conditional increments on counter
// documents, so two concurrent requests cannot both pass a nearly-full check.
type SlotStore struct {
	col *mongo.Collection
}

func NewSlotStore(db *mongo.Database) *SlotStore {
	return &SlotStore{col: db.Collection(SlotsCollection)}
}

func BookingSlotID(facilityID, day string) string {
	return fmt.Sprintf("booking:%s:%s", facilityID, day)
}

func ShiftSlotID(day, shiftType string) string {
	return fmt.Sprintf("shift:%s:%s", day, shiftType)
}

// Claim takes one slot from the counter identified by id, creating the
// counter on first use. Returns ErrSlotFull when count has reached max.
func (s *SlotStore) Claim(ctx context.Context, id string, max int) error {
	if max <= 0 {
		return ErrSlotFull
	}

	ok, err := s.tryIncrement(ctx, id, max)
	if err != nil || ok {
		return err
	}

	// No counter matched: either it does not exist yet, or it is full.
	doc := models.SlotCounter{ID: id, Count: 1, Max: max, UpdatedAt: time.Now().UTC()}
	_, err = s.col.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	// Lost the insert race to a concurrent request; one more conditional
	// increment settles whether there is room left.
	ok, err = s.tryIncrement(ctx, id, max)
	if err != nil {
		return err
	}
	if !ok {
		return ErrSlotFull
	}
	return nil
}

// Release gives a claimed slot back, e.g. when a booking is cancelled or the
// insert following a claim fails.
func (s *SlotStore) Release(ctx context.Context, id string) error {
	_, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"count": -1}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	return err
}

func (s *SlotStore) tryIncrement(ctx context.Context, id string, max int) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "count": bson.M{"$lt": max}},
		bson.M{
			"$inc": bson.M{"count": 1},
			"$set": bson.M{"max": max, "updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
