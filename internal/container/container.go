package container

import (
	"gamemarket-api-io/api/internal/auth"
	"gamemarket-api-io/api/pkg/controllers"
	"gamemarket-api-io/api/pkg/services"
	"gamemarket-api-io/api/pkg/util"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// Deps are the connections the container builds services on. Redis and
// Media may be nil.
type Deps struct {
	DB     *mongo.Database
	Redis  *redis.Client
	Media  util.MediaStore
	Config util.Config
}

type ServiceContainer struct {
	Links services.Links

	CategoryService      services.CategoryService
	GameService          services.GameService
	ItemService          services.ItemService
	ItemAttributeService services.ItemAttributeService
	UserService          services.UserService
	SubscriptionService  services.SubscriptionService

	JWT       *auth.JWTManager
	Blacklist auth.TokenBlacklist
	Sessions  auth.SessionStore

	CategoryController      *controllers.CategoryController
	GameController          *controllers.GameController
	ItemController          *controllers.ItemController
	ItemAttributeController *controllers.ItemAttributeController
	UserController          *controllers.UserController
	AuthController          *controllers.AuthController
}

func NewServiceContainer(deps Deps) *ServiceContainer {
	links := services.Links{Base: deps.Config.Server.BaseURL}

	categoryService := services.NewCategoryService(deps.DB, links)
	gameService := services.NewGameService(deps.DB, links)
	itemService := services.NewItemService(deps.DB, deps.Media)
	attributeService := services.NewItemAttributeService(deps.DB)
	userService := services.NewUserService(deps.DB)
	subscriptionService := services.NewSubscriptionService(deps.DB)

	jwt := auth.NewJWTManager(deps.Config.JWT)
	blacklist, sessions := tokenStores(deps.Redis)

	return &ServiceContainer{
		Links: links,

		CategoryService:      categoryService,
		GameService:          gameService,
		ItemService:          itemService,
		ItemAttributeService: attributeService,
		UserService:          userService,
		SubscriptionService:  subscriptionService,

		JWT:       jwt,
		Blacklist: blacklist,
		Sessions:  sessions,

		CategoryController:      controllers.InitCategoryController(categoryService),
		GameController:          controllers.InitGameController(gameService),
		ItemController:          controllers.InitItemController(itemService),
		ItemAttributeController: controllers.InitItemAttributeController(attributeService),
		UserController:          controllers.InitUserController(userService, subscriptionService),
		AuthController: controllers.InitAuthController(userService, controllers.AuthControllerOptions{
			JWT:          jwt,
			Blacklist:    blacklist,
			Sessions:     sessions,
			Google:       auth.NewGoogleVerifier(deps.Config.Google.ClientID),
			SessionLogin: deps.Config.Server.SessionLogin,
		}),
	}
}

// tokenStores keeps revoked tokens and sessions in redis, or in process
// memory when no redis is configured.
func tokenStores(client *redis.Client) (auth.TokenBlacklist, auth.SessionStore) {
	if client == nil {
		util.LogWarning("token blacklist and sessions are kept in memory")
		return auth.NewMemoryBlacklist(), auth.NewMemorySessionStore()
	}
	return auth.NewRedisBlacklist(client), auth.NewRedisSessionStore(client)
}
