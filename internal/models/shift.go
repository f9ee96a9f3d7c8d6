package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftNight     = "night"
)

const (
	ShiftScheduled = "scheduled"
	ShiftActive    = "active"
	ShiftCompleted = "completed"
	ShiftCancelled = "cancelled"
)

// MaxDoctorsPerShift caps how many doctors may register the same day+type.
const MaxDoctorsPerShift = 10

type DoctorShift struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DoctorID  primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	Date      time.Time          `bson:"date" json:"date"` // midnight of the shift day
	Day       string             `bson:"day" json:"day"`   // "2006-01-02"
	ShiftType string             `bson:"shiftType" json:"shiftType"`
	StartTime time.Time          `bson:"startTime" json:"startTime"`
	EndTime   time.Time          `bson:"endTime" json:"endTime"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Covers reports whether t falls inside the shift window.
func (s *DoctorShift) Covers(t time.Time) bool {
	return !t.Before(s.StartTime) && t.Before(s.EndTime)
}
