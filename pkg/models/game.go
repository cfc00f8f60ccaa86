package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Genre string

const (
	GenreMMORPG  Genre = "MMORPG"
	GenreRPG     Genre = "RPG"
	GenreFPS     Genre = "FPS"
	GenreSandbox Genre = "SANDBOX"
)

type Game struct {
	ID                   primitive.ObjectID   `bson:"_id" json:"id"`
	GameName             string               `bson:"game_name" json:"game_name"`
	Genre                Genre                `bson:"genre" json:"genre"`
	ReleaseDate          time.Time            `bson:"release_date" json:"release_date"`
	AgeRestriction       int                  `bson:"age_restriction" json:"age_restriction"`
	ProductHierarchies   []primitive.ObjectID `bson:"product_hierarchies" json:"product_hierarchies"`
	AllProductCategories []primitive.ObjectID `bson:"all_product_categories" json:"all_product_categories"`
	Slug                 string               `bson:"slug" json:"slug"`
	CreatedBy            *primitive.ObjectID  `bson:"created_by" json:"created_by"`
	CreatedAt            time.Time            `bson:"created_at" json:"created_at"`
	ModifiedAt           time.Time            `bson:"modified_at" json:"modified_at"`
}

// GameRequest is the body of a create or full update. ProductHierarchies
// holds url slugs of top level categories.
type GameRequest struct {
	GameName           string    `json:"game_name" validate:"required,max=20"`
	Genre              Genre     `json:"genre" validate:"required,oneof=MMORPG RPG FPS SANDBOX"`
	ReleaseDate        Date      `json:"release_date"`
	AgeRestriction     int       `json:"age_restriction" validate:"required,min=3,max=18"`
	ProductHierarchies *[]string `json:"product_hierarchies"`
}

// AsPatch turns a full update into a patch touching every field.
func (r GameRequest) AsPatch() GamePatchRequest {
	return GamePatchRequest{
		GameName:           &r.GameName,
		Genre:              &r.Genre,
		ReleaseDate:        &r.ReleaseDate,
		AgeRestriction:     &r.AgeRestriction,
		ProductHierarchies: r.ProductHierarchies,
	}
}

// GamePatchRequest is a partial update; nil fields keep their value.
type GamePatchRequest struct {
	GameName           *string   `json:"game_name" validate:"omitempty,max=20"`
	Genre              *Genre    `json:"genre" validate:"omitempty,oneof=MMORPG RPG FPS SANDBOX"`
	ReleaseDate        *Date     `json:"release_date"`
	AgeRestriction     *int      `json:"age_restriction" validate:"omitempty,min=3,max=18"`
	ProductHierarchies *[]string `json:"product_hierarchies"`
}

type GameResponse struct {
	URL                  string   `json:"url"`
	GameName             string   `json:"game_name"`
	Genre                Genre    `json:"genre"`
	ReleaseDate          Date     `json:"release_date"`
	AgeRestriction       int      `json:"age_restriction"`
	CreatedBy            *string  `json:"created_by"`
	ProductHierarchies   []string `json:"product_hierarchies"`
	AllProductCategories []string `json:"all_product_categories"`
}
