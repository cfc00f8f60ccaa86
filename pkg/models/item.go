package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Item is a marketplace offer listed by a seller.
type Item struct {
	ID          primitive.ObjectID  `bson:"_id" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description" json:"description"`
	Ingame      bool                `bson:"ingame" json:"ingame"`
	Category    *primitive.ObjectID `bson:"category" json:"category"`
	Game        *primitive.ObjectID `bson:"game" json:"game"`
	Price       int                 `bson:"price" json:"price"`
	Seller      primitive.ObjectID  `bson:"seller" json:"seller"`
	ImageURL    string              `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time           `bson:"created_at" json:"created_at"`
	ModifiedAt  time.Time           `bson:"modified_at" json:"modified_at"`
}

type ItemRequest struct {
	Name        string  `json:"name" validate:"required,max=50"`
	Description string  `json:"description"`
	Ingame      *bool   `json:"ingame" validate:"required"`
	Category    *string `json:"category" validate:"omitempty,mongodb"`
	Game        *string `json:"game" validate:"omitempty,mongodb"`
	Price       *int    `json:"price" validate:"required,min=0,max=32767"`
}

type ItemResponse struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Ingame      bool                    `json:"ingame"`
	Category    *string                 `json:"category"`
	Game        *string                 `json:"game"`
	Price       int                     `json:"price"`
	Seller      string                  `json:"seller"`
	ImageURL    string                  `json:"image_url,omitempty"`
	Attributes  []ItemAttributeResponse `json:"attributes"`
}

// ItemAttribute describes one property of an item, such as "level: 60".
type ItemAttribute struct {
	ID                   primitive.ObjectID  `bson:"_id" json:"id"`
	AttributeName        string              `bson:"attribute_name" json:"attribute_name"`
	AttributeValue       string              `bson:"attribute_value" json:"attribute_value"`
	AttributeDescription string              `bson:"attribute_description" json:"attribute_description"`
	Object               *primitive.ObjectID `bson:"object" json:"object"`
}

// CompleteAttribute joins the name and value as "name: value".
func (a ItemAttribute) CompleteAttribute() string {
	return a.AttributeName + ": " + a.AttributeValue
}

type ItemAttributeRequest struct {
	AttributeName        string  `json:"attribute_name" validate:"required,max=50"`
	AttributeValue       string  `json:"attribute_value" validate:"required,max=20"`
	AttributeDescription string  `json:"attribute_description"`
	Object               *string `json:"object" validate:"omitempty,mongodb"`
}

type ItemAttributeResponse struct {
	ID                   string  `json:"id"`
	AttributeName        string  `json:"attribute_name"`
	AttributeValue       string  `json:"attribute_value"`
	AttributeDescription string  `json:"attribute_description"`
	CompleteAttribute    string  `json:"complete_attribute"`
	Object               *string `json:"object"`
}
