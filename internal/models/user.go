package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin  = "admin"
	RoleDoctor = "doctor"
	RoleUser   = "user"
)

type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName    string             `bson:"fullName" json:"fullName"`
	Email       string             `bson:"email" json:"email"`
	Password    string             `bson:"password" json:"-"` // Hide from JSON responses
	Role        string             `bson:"role" json:"role"`  // "admin", "doctor", "user"
	Phone       string             `bson:"phone" json:"phone"`
	DateOfBirth string             `bson:"dateOfBirth,omitempty" json:"dateOfBirth,omitempty"` // "2006-01-02"
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}
