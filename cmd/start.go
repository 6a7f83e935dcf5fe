package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"nebula/core/loader"
	"nebula/core/logger"
	"nebula/core/metrics"
	"nebula/core/middleware/auth"
	"nebula/core/middleware/rayid"
	"nebula/core/storage"

	"nebula/feature/backup"
	"nebula/feature/inventory"
	"nebula/feature/network"
	"nebula/feature/virtualization"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "nebula/docs/swagger"
)

// @title Nebula API
// @version 1.0
// @description Datacenter inventory: racks, servers, services and network devices.
// @host localhost:8080
// @BasePath /

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the inventory server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger and database
		rt, err := bootstrap(cmd.Context())
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.log
		cfg := rt.cfg
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
		})

		// 3. Object storage (optional, backups only)
		var objects storage.Client
		if cfg.Storage.Enabled {
			objects, err = storage.NewClient(cfg.Storage)
			if err != nil {
				logg.Fatal("Failed to create storage client", zap.Error(err))
			}
		}

		// 4. Initialize Feature Loader
		mgr := loader.NewManager(logg)

		// Register Features
		mgr.Register(inventory.NewFeature(rt.store, logg))
		mgr.Register(network.NewFeature(rt.store, rt.credentials(), rt.networkConfig(), logg))
		mgr.Register(virtualization.NewFeature(virtualization.Config{
			Port: cfg.Discovery.ProxmoxPort,
			HTTP: cfg.Discovery.HTTP,
		}, logg))
		mgr.Register(backup.NewFeature(objects, cfg.Storage, rt.store, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Logging Middleware
		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// 3. Metrics
		app.Use(metrics.Middleware())
		app.Get("/metrics", metrics.Handler())

		// 4. Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		// 5. Auth (Protect API)
		app.Use(auth.New(auth.Config{
			ApiKey: cfg.Server.ApiKey,
			Skip:   []string{"/swagger", "/metrics"},
		}))

		// 6. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("address", cfg.Server.Address()))
			if err := app.Listen(cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 8. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		if err := app.ShutdownWithTimeout(cfg.Server.ShutdownTimeout()); err != nil {
			logg.Warn("Shutdown did not complete cleanly", zap.Error(err))
		}
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
