package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product represents a product document in the catalog. The category
// field stores only the referenced category's identity; reads that need
// the full category go through the populated shape below.
type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	RichDescription string             `json:"richDescription" bson:"richDescription"`
	Image           string             `json:"image" bson:"image"`
	Images          []string           `json:"images" bson:"images"`
	Brand           string             `json:"brand" bson:"brand"`
	Price           float64            `json:"price" bson:"price"`
	CategoryID      primitive.ObjectID `json:"category" bson:"category"`
	Rating          float64            `json:"rating" bson:"rating"`
	NumReviews      int                `json:"numReviews" bson:"numReviews"`
	IsFeatured      bool               `json:"isFeatured" bson:"isFeatured"`
	CountInStock    int                `json:"countInStock" bson:"countInStock"`
	DateCreated     time.Time          `json:"dateCreated" bson:"dateCreated"`
}

// PopulatedProduct is a product with its category reference expanded to
// the full category document.
type PopulatedProduct struct {
	Product  `bson:",inline"`
	Category *Category `json:"categoryDetail,omitempty" bson:"categoryDetail,omitempty"`
}
