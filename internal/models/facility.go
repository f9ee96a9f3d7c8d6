package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Facility struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name              string             `bson:"name" json:"name"`
	Address           string             `bson:"address" json:"address"`
	Phone             string             `bson:"phone" json:"phone"`
	OpenTime          string             `bson:"openTime" json:"openTime"`   // "HH:MM"
	CloseTime         string             `bson:"closeTime" json:"closeTime"` // "HH:MM"
	MaxBookingsPerDay int                `bson:"maxBookingsPerDay" json:"maxBookingsPerDay"`
	Status            string             `bson:"status" json:"status"` // "active", "inactive"
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
}
