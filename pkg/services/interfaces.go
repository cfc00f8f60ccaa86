package services

import (
	"context"
	"net/url"

	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/permissions"
	"gamemarket-api-io/api/pkg/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ListQuery carries the filtering, search, ordering and pagination
// parameters of a list request.
type ListQuery struct {
	Params     url.Values
	Search     string
	Ordering   string
	Pagination util.PaginationArgs
}

// CategoryService defines the interface for category-related operations
type CategoryService interface {
	ListCategories(ctx context.Context, query ListQuery) ([]models.CategoryListItem, int64, error)
	GetCategory(ctx context.Context, slug string) (*models.CategoryDetail, error)
	CreateCategory(ctx context.Context, actor permissions.Actor, req models.CategoryRequest) (*models.CategoryDetail, error)
	UpdateCategory(ctx context.Context, slug string, req models.CategoryUpdateRequest) (*models.CategoryDetail, error)
	DeleteCategory(ctx context.Context, slug string) error
}

// GameService defines the interface for game-related operations
type GameService interface {
	ListGames(ctx context.Context, query ListQuery) ([]models.GameResponse, int64, error)
	GetGame(ctx context.Context, slug string) (*models.GameResponse, error)
	CreateGame(ctx context.Context, actor permissions.Actor, req models.GameRequest) (*models.GameResponse, error)
	UpdateGame(ctx context.Context, slug string, req models.GamePatchRequest) (*models.GameResponse, error)
	DeleteGame(ctx context.Context, slug string) error
}

// ItemService defines the interface for item-related operations
type ItemService interface {
	ListItems(ctx context.Context, query ListQuery) ([]models.ItemResponse, int64, error)
	GetItem(ctx context.Context, id primitive.ObjectID) (*models.ItemResponse, error)
	CreateItem(ctx context.Context, sellerID primitive.ObjectID, req models.ItemRequest) (*models.ItemResponse, error)
	UpdateItem(ctx context.Context, id primitive.ObjectID, req models.ItemRequest) (*models.ItemResponse, error)
	DeleteItem(ctx context.Context, id primitive.ObjectID) error
	UpdateItemImage(ctx context.Context, id primitive.ObjectID, file models.File) (*models.ItemResponse, error)
}

// ItemAttributeService defines the interface for item attribute operations
type ItemAttributeService interface {
	ListItemAttributes(ctx context.Context, query ListQuery) ([]models.ItemAttributeResponse, int64, error)
	CreateItemAttribute(ctx context.Context, req models.ItemAttributeRequest) (*models.ItemAttributeResponse, error)
	DeleteItemAttribute(ctx context.Context, id primitive.ObjectID) error
}

// UserService defines the interface for account operations
type UserService interface {
	ListUsers(ctx context.Context, query ListQuery) ([]models.User, int64, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Register(ctx context.Context, req models.RegistrationRequest) (*models.User, error)
	CreateSuperuser(ctx context.Context, req models.SuperuserRequest) (*models.User, error)
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	AuthenticateGoogle(ctx context.Context, identity models.GoogleIdentity) (*models.User, error)
}

// SubscriptionService defines the interface for subscription operations
type SubscriptionService interface {
	GetSubscription(ctx context.Context, userID primitive.ObjectID) (*models.Subscription, error)
	UpgradeSubscription(ctx context.Context, userID primitive.ObjectID, req models.SubscriptionUpgradeRequest) (*models.Subscription, error)
}
