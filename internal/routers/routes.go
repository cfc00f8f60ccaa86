package routers

import (
	"gamemarket-api-io/api/internal/container"
	"gamemarket-api-io/api/internal/middleware"
	"gamemarket-api-io/api/pkg/controllers"
	"gamemarket-api-io/api/pkg/permissions"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Options struct {
	CorsOrigins []string
	// RateLimit is the per client request budget per second.
	RateLimit uint
	// Redis backs the rate limiter when set.
	Redis *redis.Client
}

// InitRoute builds the gin engine with the marketplace API mounted.
func InitRoute(sc *container.ServiceContainer, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(opts.CorsOrigins),
		middleware.Authenticate(sc.JWT, sc.Blacklist, sc.Sessions, sc.UserService),
	)

	router.GET("/ping", controllers.Ping)
	router.GET("/metrics", middleware.MetricsHandler())

	limiter := middleware.RateLimiter(opts.Redis, opts.RateLimit)

	api := router.Group("/api", limiter)
	{
		tokenRoutes(api, sc)

		v1 := api.Group("/v1")
		v1.GET("", controllers.APIRoot(sc.Links))

		products := v1.Group("/products")
		categoryRoutes(products, sc.CategoryController)
		gameRoutes(products, sc.GameController)
		itemRoutes(products, sc.ItemController)
		itemAttributeRoutes(products, sc.ItemAttributeController)

		accountRoutes(v1.Group("/accounts"), sc.UserController)
	}

	authRoutes(router.Group("/auth", limiter), sc.AuthController)

	return router
}

func tokenRoutes(api *gin.RouterGroup, sc *container.ServiceContainer) {
	api.POST("/token", sc.AuthController.ObtainToken)
	api.POST("/token/refresh", sc.AuthController.RefreshToken)
	api.POST("/token/verify", sc.AuthController.VerifyToken)
}

func authRoutes(group *gin.RouterGroup, ac *controllers.AuthController) {
	group.POST("/registration", ac.Register)
	group.POST("/login", ac.Login)
	group.POST("/logout", ac.Logout)
	group.POST("/google", ac.GoogleLogin)
}

// adminGuards returns the create, update and delete checks for catalogue
// resources that only admins may change.
func adminGuards() (create, update, remove gin.HandlerFunc) {
	return middleware.Require(permissions.AdminOrReadOnly, permissions.Create),
		middleware.Require(permissions.AdminOrReadOnly, permissions.Update),
		middleware.Require(permissions.AdminOrReadOnly, permissions.Delete)
}

func categoryRoutes(products *gin.RouterGroup, cc *controllers.CategoryController) {
	categories := products.Group("/categories")
	categories.GET("", cc.ListCategories)
	categories.GET("/:slug", cc.GetCategory)

	create, update, remove := adminGuards()
	categories.POST("", create, cc.CreateCategory)
	categories.PUT("/:slug", update, cc.UpdateCategory)
	categories.PATCH("/:slug", update, cc.UpdateCategory)
	categories.DELETE("/:slug", remove, cc.DeleteCategory)
}

func gameRoutes(products *gin.RouterGroup, gc *controllers.GameController) {
	games := products.Group("/games")
	games.GET("", gc.ListGames)
	games.GET("/:slug", gc.GetGame)

	create, update, remove := adminGuards()
	games.POST("", create, gc.CreateGame)
	games.PUT("/:slug", update, gc.ReplaceGame)
	games.PATCH("/:slug", update, gc.PatchGame)
	games.DELETE("/:slug", remove, gc.DeleteGame)
}

// Ownership of an item is checked by the handlers once the item is loaded.
func itemRoutes(products *gin.RouterGroup, ic *controllers.ItemController) {
	items := products.Group("/items")
	items.GET("", ic.ListItems)
	items.GET("/:id", ic.GetItem)

	secured := items.Group("", middleware.RequireAuth())
	secured.POST("", ic.CreateItem)
	secured.PUT("/:id", ic.UpdateItem)
	secured.DELETE("/:id", ic.DeleteItem)
	secured.PUT("/:id/image", ic.UploadItemImage)
}

func itemAttributeRoutes(products *gin.RouterGroup, ac *controllers.ItemAttributeController) {
	attributes := products.Group("/item-attributes")
	attributes.GET("", ac.ListItemAttributes)

	create, _, remove := adminGuards()
	attributes.POST("", create, ac.CreateItemAttribute)
	attributes.DELETE("/:id", remove, ac.DeleteItemAttribute)
}

func accountRoutes(accounts *gin.RouterGroup, uc *controllers.UserController) {
	users := accounts.Group("/users")
	users.GET("", middleware.AdminOnly(), uc.ListUsers)

	secured := users.Group("", middleware.RequireAuth())
	secured.GET("/:id", uc.GetUser)
	secured.GET("/:id/subscription", uc.GetSubscription)
	secured.POST("/:id/subscription", uc.UpgradeSubscription)
}
