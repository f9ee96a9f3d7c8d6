package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VaccinationHistory is the permanent record created when a booking is
// marked complete by a doctor.
type VaccinationHistory struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID         primitive.ObjectID `bson:"userId" json:"userId"`
	VaccineID      primitive.ObjectID `bson:"vaccineId" json:"vaccineId"`
	DoctorID       primitive.ObjectID `bson:"doctorId" json:"doctorId"`
	BookingID      primitive.ObjectID `bson:"bookingId" json:"bookingId"`
	FacilityID     primitive.ObjectID `bson:"facilityId" json:"facilityId"`
	BatchNumber    string             `bson:"batchNumber" json:"batchNumber"`
	AdministeredAt time.Time          `bson:"administeredAt" json:"administeredAt"`
	SideEffects    []string           `bson:"sideEffects,omitempty" json:"sideEffects,omitempty"`
	Notes          string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt" json:"createdAt"`
}
