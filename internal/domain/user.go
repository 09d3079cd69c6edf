package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// User represents a user document. PasswordHash holds the bcrypt hash of
// the user's password; the raw password is never persisted. The json tag
// is "-" so the hash can never serialize out of an API response.
type User struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Email        string             `json:"email" bson:"email"`
	PasswordHash string             `json:"-" bson:"passwordHash"`
	Phone        string             `json:"phone" bson:"phone"`
	IsAdmin      bool               `json:"isAdmin" bson:"isAdmin"`
	Street       string             `json:"street" bson:"street"`
	Apartment    string             `json:"apartment" bson:"apartment"`
	Zip          string             `json:"zip" bson:"zip"`
	City         string             `json:"city" bson:"city"`
	Country      string             `json:"country" bson:"country"`
}
