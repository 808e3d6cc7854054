// Rackdash is the admin backend for the rack dashboard.
//
// It serves the device, rack, 3D model asset, user and audit HTTP API,
// persists to SQLite and stores model blobs in an object storage
// bucket. Device changes can optionally be published over MQTT.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/Thaaan184/admin-dashboard-publicver/migrations"

	"github.com/Thaaan184/admin-dashboard-publicver/internal/api"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/asset"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/audit"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/auth"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/device"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/config"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/database"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/logging"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/mqtt"
	"github.com/Thaaan184/admin-dashboard-publicver/internal/infrastructure/storage"
)

// Version information set at build time via ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

// seedAdminUsername is the bootstrap account created on an empty
// database. Its generated password is logged once at startup.
const seedAdminUsername = "admin"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting rackdash", "version", version, "commit", commit)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log = logging.New(cfg.Logging, version)
	log.Info("configuration loaded", "path", configPath)

	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	if err := db.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.Info("database migrations complete")

	userRepo := auth.NewSQLiteUserRepository(db)
	seedPassword := generatePassword()
	seeded, err := auth.EnsureDefaultAdmin(ctx, userRepo, seedAdminUsername, seedPassword, log)
	if err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}
	if seeded {
		// Printed once on first boot only; log in and change it.
		log.Warn("generated admin password", "password", seedPassword)
	}

	store := storage.NewClient(cfg.Storage)
	assets := asset.NewManager(store, cfg.Storage.PreloadPrefix,
		time.Duration(cfg.Storage.SignedURLTTL)*time.Second, log)

	var events device.EventPublisher
	if cfg.Events.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.Events, log)
		if connErr != nil {
			return fmt.Errorf("connecting to mqtt: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from mqtt")
			mqttClient.Close()
		}()
		events = mqtt.NewDeviceEvents(mqttClient, cfg.Events.TopicPrefix)
		log.Info("mqtt connected", "broker", fmt.Sprintf("%s:%d", cfg.Events.Host, cfg.Events.Port))
	} else {
		log.Info("mqtt events disabled")
	}

	deviceRepo := device.NewSQLiteRepository(db)
	devices := device.NewService(deviceRepo, assets, events, log)

	server, err := api.New(api.Deps{
		Config:    cfg.API,
		Security:  cfg.Security,
		Logger:    log,
		Devices:   devices,
		Assets:    assets,
		Users:     userRepo,
		AuditRepo: audit.NewSQLiteRepository(db),
		Version:   version,
	})
	if err != nil {
		return fmt.Errorf("creating api server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting api server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing api server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses the RACKDASH_CONFIG environment variable if set.
func getConfigPath() string {
	if path := os.Getenv("RACKDASH_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// generatePassword creates a random bootstrap password.
func generatePassword() string {
	b := make([]byte, 12)
	//nolint:errcheck // crypto/rand.Read always returns len(b) on supported platforms
	rand.Read(b)
	return hex.EncodeToString(b)
}
