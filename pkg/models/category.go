package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is a node of the product hierarchy. BaseHierarchy and
// HierarchyIdentifier form its materialized path.
type Category struct {
	ID                  primitive.ObjectID  `bson:"_id" json:"id"`
	CategoryName        string              `bson:"category_name" json:"category_name" validate:"required,max=40"`
	ParentCategory      *primitive.ObjectID `bson:"parent_category" json:"parent_category"`
	HierarchyIdentifier string              `bson:"hierarchy_identifier" json:"hierarchy_identifier" validate:"max=20"`
	BaseHierarchy       string              `bson:"base_hierarchy" json:"base_hierarchy"`
	URLSlug             string              `bson:"url_slug" json:"url_slug"`
	CreatedBy           *primitive.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt           time.Time           `bson:"created_at" json:"created_at"`
	ModifiedAt          time.Time           `bson:"modified_at" json:"modified_at"`
}

// CategoryRequest is the body of a create call. ParentCategory refers to the
// parent by its name.
type CategoryRequest struct {
	CategoryName        string  `json:"category_name" validate:"required,max=40"`
	ParentCategory      *string `json:"parent_category"`
	HierarchyIdentifier string  `json:"hierarchy_identifier" validate:"max=20"`
}

// CategoryUpdateRequest carries the fields a PUT or PATCH may change. Nil
// fields are left untouched.
type CategoryUpdateRequest struct {
	CategoryName        *string `json:"category_name" validate:"omitempty,max=40"`
	ParentCategory      *string `json:"parent_category"`
	HierarchyIdentifier *string `json:"hierarchy_identifier" validate:"omitempty,max=20"`
}

// CategoryListItem is the flat rendering used by the list endpoint: children
// are reduced to their names.
type CategoryListItem struct {
	URL                 string   `json:"url"`
	HierarchyIdentifier string   `json:"hierarchy_identifier"`
	BaseHierarchy       string   `json:"base_hierarchy"`
	CategoryName        string   `json:"category_name"`
	ParentCategory      *string  `json:"parent_category"`
	CreatedBy           *string  `json:"created_by"`
	ChildCategories     []string `json:"child_categories"`
}

// CategoryDetail renders a category with its whole subtree.
type CategoryDetail struct {
	URL                 string            `json:"url"`
	HierarchyIdentifier string            `json:"hierarchy_identifier"`
	BaseHierarchy       string            `json:"base_hierarchy"`
	CategoryName        string            `json:"category_name"`
	ParentCategory      *string           `json:"parent_category"`
	CreatedBy           *string           `json:"created_by"`
	ChildCategories     []*CategoryDetail `json:"child_categories"`
}
