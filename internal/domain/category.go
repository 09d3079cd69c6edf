package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category represents a product category document
type Category struct {
	ID    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name  string             `json:"name" bson:"name"`
	Icon  string             `json:"icon" bson:"icon"`
	Color string             `json:"color" bson:"color"`
}
