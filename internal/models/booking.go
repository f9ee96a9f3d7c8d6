package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

type Booking struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID `bson:"userId" json:"userId"`
	VaccineID  primitive.ObjectID `bson:"vaccineId" json:"vaccineId"`
	FacilityID primitive.ObjectID `bson:"facilityId" json:"facilityId"`
	Date       time.Time          `bson:"date" json:"date"` // midnight of the booking day
	Day        string             `bson:"day" json:"day"`   // "2006-01-02", indexed for per-day queries
	Time       string             `bson:"time" json:"time"` // "HH:MM"
	Status     string             `bson:"status" json:"status"`
	Notes      string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// Terminal reports whether the booking is in a state that can no longer change.
func (b *Booking) Terminal() bool {
	return b.Status == BookingCompleted || b.Status == BookingCancelled
}
