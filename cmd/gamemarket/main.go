package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gamemarket-api-io/api/internal/container"
	"gamemarket-api-io/api/internal/indexer"
	"gamemarket-api-io/api/internal/routers"
	"gamemarket-api-io/api/pkg/models"
	"gamemarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const usage = `usage: gamemarket <command> [flags]

commands:
  serve            run the HTTP API (default)
  migrate          create indexes and apply data migrations
  createsuperuser  create an admin account`

func main() {
	cfg := util.LoadConfig()

	logger, err := util.InitLogger(cfg.Logger.Mode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command, args := "serve", os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	ctx := context.Background()
	client, err := util.ConnectDB(ctx, cfg.Mongo)
	if err != nil {
		logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	defer client.Disconnect(ctx)
	db := client.Database(cfg.Mongo.Database)

	switch command {
	case "serve":
		err = serve(ctx, cfg, db, logger)
	case "migrate":
		err = migrate(ctx, db)
	case "createsuperuser":
		err = createSuperuser(ctx, cfg, db, args)
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal(command+" failed", zap.Error(err))
	}
}

func serve(ctx context.Context, cfg util.Config, db *mongo.Database, logger *zap.Logger) error {
	gin.SetMode(cfg.Server.GinMode)

	if err := migrate(ctx, db); err != nil {
		logger.Warn("startup migration incomplete", zap.Error(err))
	}

	redisClient, err := util.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	sc := container.NewServiceContainer(container.Deps{
		DB:     db,
		Redis:  redisClient,
		Media:  mediaStore(cfg, logger),
		Config: cfg,
	})
	router := routers.InitRoute(sc, routerOptions(cfg, redisClient))

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func routerOptions(cfg util.Config, redisClient *redis.Client) routers.Options {
	return routers.Options{
		CorsOrigins: cfg.Server.CorsOrigins,
		RateLimit:   cfg.Server.RateLimit,
		Redis:       redisClient,
	}
}

// mediaStore returns nil when cloudinary is not configured; image uploads
// then fail with a server error.
func mediaStore(cfg util.Config, logger *zap.Logger) util.MediaStore {
	if cfg.Cloudinary.CloudName == "" {
		logger.Warn("cloudinary is not configured, item image upload is disabled")
		return nil
	}
	store, err := util.NewCloudinaryStore(cfg.Cloudinary)
	if err != nil {
		logger.Warn("cloudinary init failed, item image upload is disabled", zap.Error(err))
		return nil
	}
	return store
}

func migrate(ctx context.Context, db *mongo.Database) error {
	result, err := indexer.Marketplace(db, indexer.DefaultOptions()).Create(ctx)
	util.LogInfo("indexes applied", "created", result.Created, "skipped", result.Skipped, "failed", result.Failed, "took", result.Duration)
	if err != nil {
		return err
	}
	return indexer.NewMigrator(db, indexer.Migrations()...).Run(ctx)
}

func createSuperuser(ctx context.Context, cfg util.Config, db *mongo.Database, args []string) error {
	fs := flag.NewFlagSet("createsuperuser", flag.ExitOnError)
	email := fs.String("email", "", "Email address (required)")
	password := fs.String("password", os.Getenv("SUPERUSER_PASSWORD"), "Password (defaults to env SUPERUSER_PASSWORD)")
	name := fs.String("name", "Admin", "First name")
	surname := fs.String("surname", "Admin", "Surname")
	dob := fs.String("date-of-birth", "", "Date of birth as YYYY-MM-DD (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	birth, err := models.ParseDate(*dob)
	if err != nil {
		return fmt.Errorf("invalid -date-of-birth %q: %w", *dob, err)
	}

	sc := container.NewServiceContainer(container.Deps{DB: db, Config: cfg})
	user, err := sc.UserService.CreateSuperuser(ctx, models.SuperuserRequest{
		Email:       *email,
		Password:    *password,
		DateOfBirth: birth,
		Name:        *name,
		Surname:     *surname,
	})
	if err != nil {
		return err
	}

	util.LogInfo("superuser created", "id", user.ID.Hex(), "email", user.Email)
	return nil
}
