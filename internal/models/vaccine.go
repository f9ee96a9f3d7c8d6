package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Vaccine struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Manufacturer  string             `bson:"manufacturer" json:"manufacturer"`
	Description   string             `bson:"description,omitempty" json:"description,omitempty"`
	Dosage        string             `bson:"dosage" json:"dosage"` // e.g. "0.5ml"
	DosesRequired int                `bson:"dosesRequired" json:"dosesRequired"`
	Quantity      int                `bson:"quantity" json:"quantity"` // doses in stock
	Price         float64            `bson:"price" json:"price"`
	SideEffects   []string           `bson:"sideEffects,omitempty" json:"sideEffects,omitempty"`
	Status        string             `bson:"status" json:"status"` // "active", "inactive"
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
}
