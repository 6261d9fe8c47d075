package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/sync/errgroup"

	webconfig "github.com/duckbook/duckbook/backend/config"
	"github.com/duckbook/duckbook/backend/handlers"
	"github.com/duckbook/duckbook/backend/middleware"
	websvc "github.com/duckbook/duckbook/backend/services"
	"github.com/duckbook/duckbook/backend/templates"
	"github.com/duckbook/duckbook/duckbook"
	"github.com/duckbook/duckbook/duckbook/database"
	"github.com/duckbook/duckbook/duckbook/database/repositories"
	"github.com/duckbook/duckbook/duckbook/ducklevel"
	"github.com/duckbook/duckbook/duckbook/logger"
	"github.com/duckbook/duckbook/duckbook/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}
	customHandler := logger.NewHandler("DuckBook", logLevel)
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Duck Booking Tool",
		slog.String("type", "sys"),
		slog.String("version", version),
		slog.String("commit", commit))

	cfg, err := duckbook.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	slog.Info("Configuration loaded successfully", slog.String("type", "sys"))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	cancel()
	if err != nil {
		slog.Error("Database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("Database connected successfully",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database))

	repos := repositories.New(db.BunDB())
	calc := ducklevel.NewCalculator(cfg.LevelConfig())

	bookingService := services.NewBookingService(repos.Duck, repos.Competence, repos.Booking, calc)
	duckService := services.NewDuckService(repos.Duck, repos.Species, repos.Location)
	competenceService := services.NewCompetenceService(repos.Competence, cfg.Ducks.MinSimilarity)
	namingService := services.NewNamingService(repos.Duck, repos.DuckName)
	searchService := services.NewSearchService(repos.Duck)

	var photoService *services.PhotoService
	if cfg.Spaces.Key != "" {
		photoService, err = services.NewPhotoService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.PhotoRoot,
			repos.Duck,
		)
		if err != nil {
			slog.Error("Failed to initialize photo storage", slog.String("error", err.Error()))
			os.Exit(1)
		}
	} else {
		slog.Warn("Photo storage not configured, uploads disabled", slog.String("type", "sys"))
	}

	webCfg := webconfig.NewWebAppConfig(cfg, *debug)
	sessionService := websvc.NewSessionService(webCfg)
	authService := websvc.NewAuthService(repos.User)

	renderer, err := templates.New()
	if err != nil {
		slog.Error("Failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	webApp := &handlers.WebApp{
		Config:      webCfg,
		Repos:       repos,
		Ducks:       duckService,
		Bookings:    bookingService,
		Competences: competenceService,
		Naming:      namingService,
		Search:      searchService,
		Photos:      photoService,
		Sessions:    sessionService,
		Auth:        authService,
		Calc:        calc,
		Templates:   renderer,
		Version:     version,
	}

	app := fiber.New(fiber.Config{
		AppName:      "Duck Booking Tool",
		ServerHeader: "DuckBook",
		ErrorHandler: middleware.CustomErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.SecurityHeaders())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000,http://localhost:8080",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,Cookie",
		AllowCredentials: true,
	}))
	app.Use(middleware.LoggingMiddleware())

	setupRoutes(app, webApp)

	address := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		slog.Info("Starting web server",
			slog.String("type", "http"),
			slog.String("address", address))
		return app.Listen(address)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down web server...", slog.String("type", "sys"))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("Shutdown complete", slog.String("type", "sys"))
}

// setupRoutes wires the HTML pages, the REST API and the legacy API.
func setupRoutes(app *fiber.App, webApp *handlers.WebApp) {
	app.Get("/health", handlers.HealthCheck(webApp))

	// HTML surface
	pages := app.Group("/", middleware.OptionalAuth(webApp.Sessions))
	pages.Get("/", handlers.DucksPage(webApp))
	pages.Get("/ducks/:id/", handlers.DuckDetailPage(webApp))
	pages.Get("/vocabulary.html", handlers.StaticPage(webApp, "vocabulary.html"))
	pages.Get("/terms.html", handlers.StaticPage(webApp, "terms.html"))
	pages.Get("/disclaimer.html", handlers.StaticPage(webApp, "disclaimer.html"))
	pages.Get("/login/", handlers.LoginPage(webApp))
	pages.Post("/login/", middleware.AuthRateLimit(), handlers.LoginSubmit(webApp))
	pages.Get("/register/", handlers.RegisterPage(webApp))
	pages.Post("/register/", middleware.AuthRateLimit(), handlers.RegisterSubmit(webApp))
	pages.Post("/logout/", handlers.LogoutSubmit(webApp))

	// Legacy API: 401 for unauthenticated, numeric success codes.
	legacy := app.Group("/duck", middleware.LegacyAuthRequired(webApp.Sessions))
	legacy.Post("/book/", handlers.LegacyBookDuck(webApp))

	// REST API: 403 for unauthenticated, named status strings.
	api := app.Group("/api/v1")
	api.Post("/auth/register/", middleware.AuthRateLimit(), handlers.Register(webApp))
	api.Post("/auth/login/", middleware.AuthRateLimit(), handlers.Login(webApp))
	api.Post("/auth/logout/", handlers.Logout(webApp))
	api.Get("/auth/validate/", handlers.ValidateSession(webApp))

	api.Get("/ducks/", handlers.DucksList(webApp))
	api.Get("/ducks/search/", handlers.DuckSearch(webApp))
	api.Post("/ducks/donate/", middleware.AuthRequired(webApp.Sessions), handlers.DuckDonate(webApp))
	api.Get("/ducks/:id/", handlers.DuckDetail(webApp))
	api.Post("/ducks/:id/book/", middleware.AuthRequired(webApp.Sessions), handlers.BookDuck(webApp))
	api.Post("/ducks/:id/release/", middleware.AuthRequired(webApp.Sessions), handlers.ReleaseDuck(webApp))
	api.Get("/ducks/:id/bookings/", handlers.BookingHistory(webApp))
	api.Post("/ducks/:id/photo/", middleware.AuthRequired(webApp.Sessions), handlers.DuckPhotoUpload(webApp))
	api.Delete("/ducks/:id/photo/", middleware.AuthRequired(webApp.Sessions), handlers.DuckPhotoDelete(webApp))

	api.Get("/ducks/:id/names/", handlers.NameTally(webApp))
	api.Post("/ducks/:id/names/", middleware.AuthRequired(webApp.Sessions), handlers.NameSuggest(webApp))
	api.Post("/names/:nameID/vote/", middleware.AuthRequired(webApp.Sessions), handlers.NameVote(webApp))
	api.Post("/names/:nameID/settle/",
		middleware.AuthRequired(webApp.Sessions),
		middleware.AdminRequired(),
		handlers.NameSettle(webApp))

	api.Get("/competences/", handlers.CompetencesList(webApp))
	api.Post("/competences/", middleware.AuthRequired(webApp.Sessions), handlers.CompetenceCreate(webApp))
	api.Get("/competences/similar/", handlers.CompetenceSimilar(webApp))
	api.Get("/competences/:id/", handlers.CompetenceDetail(webApp))

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "The requested endpoint does not exist")
	})
}
