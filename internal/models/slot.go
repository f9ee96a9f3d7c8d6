package models

import "time"

// SlotCounter guards a capacity limit (facility bookings per day, doctors per
// shift) with a conditional increment, so concurrent requests cannot race the
// count-then-insert check past the cap.
type SlotCounter struct {
	ID        string    `bson:"_id" json:"id"` // "booking:<facilityID>:<day>" or "shift:<day>:<type>"
	Count     int       `bson:"count" json:"count"`
	Max       int       `bson:"max" json:"max"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
