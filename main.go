package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"bodoge-manager/config"
	"bodoge-manager/handlers"
	"bodoge-manager/middleware"
	"bodoge-manager/repository"
	"bodoge-manager/services"
	"bodoge-manager/utils"
	"bodoge-manager/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/language"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("❌ invalid configuration: %v", err)
	}
	if err := cfg.ConfigureLogging(); err != nil {
		logrus.Fatalf("❌ invalid logging configuration: %v", err)
	}
	locale, err := language.Parse(cfg.SortLocale)
	if err != nil {
		logrus.Fatalf("❌ invalid SORT_LOCALE %q: %v", cfg.SortLocale, err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to database: %v", err)
	}
	if err := repository.Migrate(db); err != nil {
		logrus.Fatalf("failed to migrate database: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Images go to R2 when configured, otherwise to the local upload dir.
	var uploader services.ImageUploader
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Store(ctx, cfg.R2.AccountID, cfg.R2.AccessKeyID, cfg.R2.AccessKeySecret, cfg.R2.Bucket, cfg.R2.CDNBaseURL)
		if err != nil {
			logrus.Fatalf("failed to initialize R2 client: %v", err)
		}
		uploader = r2
	} else {
		local, err := utils.NewLocalStore(cfg.UploadDir)
		if err != nil {
			logrus.Fatalf("failed to ensure upload dir: %v", err)
		}
		uploader = local
		logrus.Warnf("⚠️  R2 not configured, storing uploads in %s", cfg.UploadDir)
	}

	var resolver middleware.TokenResolver
	if cfg.AuthBaseURL != "" {
		client, err := services.NewAuthServiceClient(cfg.AuthBaseURL, cfg.AuthAPIKey, cfg.AuthCacheSize, cfg.AuthCacheTTL)
		if err != nil {
			logrus.Fatalf("failed to create auth client: %v", err)
		}
		resolver = client
	} else {
		logrus.Warn("⚠️  AUTH_BASE_URL not set, bearer tokens will be ignored")
	}

	gameRepo := repository.NewGameRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	friendRepo := repository.NewFriendshipRepository(db)
	stores := services.GameStores{
		Catalog:    gameRepo,
		PlayStates: repository.NewPlayStateRepository(db),
		Ownership:  repository.NewOwnershipRepository(db),
		Profiles:   profileRepo,
	}

	gameService := services.NewBoardGameService(stores, friendRepo, services.Sorter{Locale: locale})
	matchService := services.NewMatchService(repository.NewMatchRepository(db), gameRepo, profileRepo, friendRepo, uploader)
	profileService := services.NewProfileService(profileRepo, friendRepo, uploader)
	friendService := services.NewFriendService(profileRepo, friendRepo)

	sweeper := workers.NewOrphanSweeper(repository.NewSweeper(db), cfg.OrphanSweepInterval)
	if err := sweeper.Start(ctx); err != nil {
		logrus.Fatalf("failed to start orphan sweeper: %v", err)
	}

	app := fiber.New(handlers.AppConfig(cfg.BodyLimitMB))
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, X-Gateway-Token, X-User-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
	app.Use(middleware.Identity(middleware.IdentityConfig{
		GatewayToken: cfg.GatewayToken,
		Resolver:     resolver,
	}))
	app.Use(middleware.RequestLogger())

	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupMatchRoutes(app, matchService)
	handlers.SetupProfileRoutes(app, profileService, friendService)

	if !cfg.R2.Enabled() {
		app.Static("/uploads", cfg.UploadDir)
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			logrus.Errorf("Server error: %v", err)
		}
	}()

	logrus.Infof("✅ Server running on http://localhost:%s", cfg.Port)
	logrus.Infof("✅ CORS configured for origins: %s", strings.Join(cfg.AllowedOrigins, ","))

	<-ctx.Done()
	logrus.Info("Shutting down server...")
	if err := sweeper.Stop(); err != nil {
		logrus.Warnf("orphan sweeper shutdown: %v", err)
	}
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logrus.Warnf("server shutdown: %v", err)
	}
}
