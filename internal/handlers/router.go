package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/resume-matcher/internal/middleware"
	"alfredoptarigan/resume-matcher/internal/services"
)

type Services struct {
	Uploads  services.UploadService
	Analyses services.AnalysisService
	History  services.HistoryService
}

type AppOptions struct {
	MaxFileSize  int64
	WriteTimeout time.Duration
	AccessLog    bool
}

// multipartOverhead leaves room for form boundaries around the file.
const multipartOverhead = 1 << 20

// NewApp builds the fiber app with every route mounted under /api/v1.
func NewApp(svc Services, verifier *middleware.TokenVerifier, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Resume Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: opts.WriteTimeout,
		BodyLimit:    int(opts.MaxFileSize) + multipartOverhead,
		ErrorHandler: ErrorHandler,
	})

	app.Use(recover.New())
	if opts.AccessLog {
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
			TimeFormat: "2006-01-02 15:04:05",
		}))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	uploadHandler := NewUploadHandler(svc.Uploads)
	analysisHandler := NewAnalysisHandler(svc.Analyses, svc.History)
	resultHandler := NewResultHandler(svc.History)
	statsHandler := NewStatsHandler(svc.History)

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	secured := api.Group("", middleware.RequireAuth(verifier))

	secured.Post("/uploads", uploadHandler.HandleUpload)
	secured.Get("/uploads", uploadHandler.HandleList)

	secured.Post("/analyses", analysisHandler.HandleAnalyze)
	secured.Get("/analyses", analysisHandler.HandleList)
	secured.Get("/analyses/:id", resultHandler.HandleGetResult)
	secured.Get("/analyses/:id/related", resultHandler.HandleRelated)

	secured.Get("/stats", statsHandler.HandleStats)
	secured.Get("/stats/trend", statsHandler.HandleTrend)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/uploads",
				"GET /api/v1/uploads",
				"POST /api/v1/analyses",
				"GET /api/v1/analyses",
				"GET /api/v1/analyses/:id",
				"GET /api/v1/analyses/:id/related",
				"GET /api/v1/stats",
				"GET /api/v1/stats/trend",
			},
		})
	})

	return app
}
