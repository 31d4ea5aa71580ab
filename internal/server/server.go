package server

import (
	"errors"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/handlers"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the collaborators the HTTP layer is built from
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Storage  storage.Storage
	Log      *zap.Logger
	Hasher   services.PasswordHasher
	Sessions *services.SessionManager

	// Now overrides the clock used for age checks and picture keys
	Now func() time.Time

	// Metrics registers the prometheus middleware and /metrics
	Metrics bool
}

// New builds the Fiber application with every middleware and route
func New(deps Deps) *fiber.App {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler(log),
		BodyLimit:             deps.Config.UploadMaxBytes*services.PictureSlots + 1024*1024,
		DisableStartupMessage: true,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(middleware.RequestLogger(log))
	app.Use(compress.New())
	app.Use(middleware.SecurityHeaders())

	if deps.Metrics {
		prometheus := fiberprometheus.New("lebonrecoin")
		prometheus.RegisterAt(app, "/metrics")
		app.Use(prometheus.Middleware)
	}

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded pictures are served from disk with the local driver
	if deps.Config.StorageDriver == "local" {
		app.Static(deps.Config.UploadURLPrefix, deps.Config.UploadRoot)
	}

	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())
	registerRoutes(api, deps, log)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	return app
}

func registerRoutes(api fiber.Router, deps Deps, log *zap.Logger) {
	db := deps.DB
	auth := middleware.AuthUser(db, deps.Sessions)
	optional := middleware.OptionalUser(db, deps.Sessions)

	pictures := &services.PictureService{
		DB:       db,
		Storage:  deps.Storage,
		MaxBytes: int64(deps.Config.UploadMaxBytes),
		Log:      log,
		Now:      deps.Now,
	}

	account := &handlers.AccountHandler{
		DB:           db,
		Hasher:       deps.Hasher,
		Sessions:     deps.Sessions,
		Pictures:     pictures,
		SecureCookie: deps.Config.SessionSecure,
		Now:          deps.Now,
	}
	address := &handlers.AddressHandler{DB: db}
	ads := &handlers.AdHandler{DB: db, Pictures: pictures, Storage: deps.Storage}
	favorites := &handlers.FavoriteHandler{DB: db, Storage: deps.Storage}
	catalog := &handlers.CatalogHandler{DB: db, Storage: deps.Storage}
	health := &handlers.HealthHandler{Config: deps.Config, DB: db, Storage: deps.Storage, Log: log}

	// Public pages
	api.Get("/", catalog.Index)
	api.Get("/health", health.Health)
	api.Post("/searching", catalog.Searching)
	api.Get("/search", catalog.SearchAll)
	api.Get("/search/categorie/:id", catalog.SearchCategory)
	api.Get("/search/:search", catalog.Search)
	api.Get("/categories", catalog.Categories)
	api.Get("/conditions", catalog.Conditions)
	api.Get("/countries", catalog.Countries)
	api.Get("/countries/:code/regions", catalog.Regions)
	api.Get("/regions/:code/cities", catalog.Cities)

	// Account
	api.Post("/register", middleware.RedirectAuthenticated(db, deps.Sessions, "/api/profil"), account.Register)
	api.Get("/login", optional, account.LoginForm)
	api.Post("/login", account.Login)
	api.Get("/logout", account.Logout)
	api.Post("/logout", account.Logout)

	profil := api.Group("/profil", auth)
	profil.Get("/", account.Profil)
	profil.Get("/information/address", address.NewAddressForm)
	profil.Post("/information/address", address.CreateAddress)
	profil.Get("/information/address/:id", address.ViewAddress)
	profil.Get("/information/address/:id/edit", address.AddressForm)
	profil.Put("/information/address/:id/edit", address.EditAddress)
	profil.Get("/information/:id", account.ViewInformation)
	profil.Get("/information/:id/edit", account.InformationForm)
	profil.Put("/information/:id/edit", account.EditInformation)
	profil.Get("/delete/:id", account.DeleteProfilConfirm)
	profil.Delete("/delete/:id", account.DeleteProfil)

	profil.Get("/favorites", favorites.List)
	profil.Delete("/favorites/:id", favorites.Remove)

	profil.Get("/ads", ads.ListUserAds)
	profil.Get("/ad/picture/:id", ads.EditPicturesForm)
	profil.Put("/ad/picture/:id", ads.EditPictures)
	profil.Get("/ad/:id", ads.ViewOwnAd)
	profil.Get("/ad/:id/edit", ads.EditAdForm)
	profil.Put("/ad/:id/edit", ads.EditAd)
	profil.Get("/ad/:id/delete", ads.DeleteAdConfirm)
	profil.Delete("/ad/:id/delete", ads.DeleteAd)

	// Ads
	api.Get("/ad/new", auth, ads.NewAdForm)
	api.Post("/ad/new", auth, ads.CreateAd)
	api.Post("/ad/new/:id", auth, ads.CreatePictures)
	api.Get("/ad/:id", optional, ads.AdDetail)
	api.Get("/ad/:id/offer", auth, ads.Offer)

	api.Post("/fav/:id", auth, favorites.Toggle)
}

// ErrorHandler renders every unhandled error with the standard JSON envelope
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := err.Error()
		errorType := "unknown"

		var fe *fiber.Error
		var ce *types.CustomError
		switch {
		case errors.As(err, &ce):
			code = ce.Code
			message = ce.Message
			errorType = ce.Type
		case errors.As(err, &fe):
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("url", c.OriginalURL()), zap.Error(err))
			// Internal details stay in the log
			message = "Internal Server Error"
		}

		return c.Status(code).JSON(fiber.Map{
			"status":       code,
			"message":      message,
			"ok":           false,
			"versionError": errorType == "version",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"url":          c.OriginalURL(),
			"type":         errorType,
		})
	}
}
