package storage

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection        = "users"
	VaccinesCollection     = "vaccines"
	FacilitiesCollection   = "facilities"
	BookingsCollection     = "bookings"
	ShiftsCollection       = "doctorShifts"
	VaccinationsCollection = "vaccinationHistory"
	SlotsCollection        = "slotCounters"
)

// EnsureIndexes creates the indexes the handlers rely on. Duplicate-key
// errors surfaced by inserts (duplicate email, duplicate shift) depend on the
// unique indexes here.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(UsersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(BookingsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "day", Value: 1}}},
		{Keys: bson.D{{Key: "facilityId", Value: 1}, {Key: "day", Value: 1}}},
		{Keys: bson.D{{Key: "day", Value: 1}, {Key: "status", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(ShiftsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Partial so a cancelled shift does not block re-registration.
			Keys: bson.D{{Key: "doctorId", Value: 1}, {Key: "day", Value: 1}, {Key: "shiftType", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "scheduled"}),
		},
		{Keys: bson.D{{Key: "day", Value: 1}, {Key: "shiftType", Value: 1}}},
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(VaccinationsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "vaccineId", Value: 1}}},
		{Keys: bson.D{{Key: "administeredAt", Value: 1}}},
	})
	return err
}
