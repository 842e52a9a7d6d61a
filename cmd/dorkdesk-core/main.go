package main

// @title           DorkDesk Core API
// @version         1.0
// @description     State API for composing OSINT search-engine dorks: categories of query fragments, selection and grouping state, variable substitution and saved profiles.

// @contact.name   DorkDesk OSS
// @contact.url    https://github.com/custodia-labs/dorkdesk-core/issues

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Format: "Bearer {token}"

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/auth"
	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/file"
	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/launcher"
	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/memory"
	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/dorkdesk-core/internal/adapters/driven/redis"
	"github.com/custodia-labs/dorkdesk-core/internal/adapters/driving/http"
	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
	"github.com/custodia-labs/dorkdesk-core/internal/core/services"
	"github.com/custodia-labs/dorkdesk-core/internal/runtime"
	"github.com/redis/go-redis/v9"
)

var version = "dev"

func main() {
	log.Printf("dorkdesk-core %s starting", version)

	// Configuration from environment
	port := getEnvInt("PORT", 8080)
	host := getEnv("HOST", "127.0.0.1")
	dorksPath := getEnv("DORKS_JSON_PATH", "dorks.json")
	databaseURL := getEnv("DATABASE_URL", "")
	redisURL := getEnv("REDIS_URL", "")
	jwtSecret := getEnv("JWT_SECRET", "development-secret-change-in-production")
	passphrase := getEnv("AUTH_PASSPHRASE", "")
	openInBrowser := getEnvBool("OPEN_IN_BROWSER", true)
	engineName := getEnv("SEARCH_ENGINE", "google")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ===== Dork store (PostgreSQL if configured, otherwise JSON file) =====
	var dorkStore driven.DorkStore
	var db *postgres.DB
	storeBackend := "file"
	if databaseURL != "" {
		log.Println("Connecting to PostgreSQL...")
		var err error
		db, err = postgres.Connect(ctx, postgres.DefaultConfig(databaseURL))
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(ctx); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		dorkStore = postgres.NewDorkStore(db)
		storeBackend = "postgres"
		log.Println("Using PostgreSQL dork store")
	} else {
		dorkStore = file.NewDorkStore(dorksPath)
		log.Printf("Using JSON dork store at %s", dorksPath)
	}

	// ===== Session store (Redis if configured, otherwise in-memory) =====
	var sessionStore driven.SessionStore
	sessionBackend := "memory"
	if redisURL != "" {
		log.Println("Connecting to Redis...")
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		sessionStore = redisadapter.NewSessionStore(redisClient)
		sessionBackend = "redis"
		log.Println("Using Redis session store")
	} else {
		sessionStore = memory.NewSessionStore()
		log.Println("Using in-memory session store")
	}

	// ===== Auth =====
	authAdapter := auth.NewAdapter(jwtSecret)
	passphraseHash := ""
	if passphrase != "" {
		var err error
		passphraseHash, err = authAdapter.HashPassphrase(passphrase)
		if err != nil {
			log.Fatalf("Failed to hash passphrase: %v", err)
		}
		log.Println("Passphrase authentication enabled")
	} else {
		log.Println("No passphrase configured, running as open instance")
	}
	authService := services.NewAuthService(sessionStore, authAdapter, passphraseHash)

	// ===== Runtime configuration =====
	runtimeConfig := domain.NewRuntimeConfig(storeBackend, sessionBackend)
	runtimeConfig.SetSearchEngine(domain.SearchEngine(engineName))
	runtimeServices := runtime.NewServices(runtimeConfig)
	if openInBrowser {
		runtimeServices.SetLauncher(launcher.NewBrowser())
	} else {
		runtimeServices.SetLauncher(launcher.NewDisabled())
	}

	// ===== Workspace =====
	workspaceService := services.NewWorkspaceService(dorkStore, runtimeServices, slog.Default())
	if err := workspaceService.Load(ctx); err != nil {
		log.Fatalf("Failed to load dork workspace: %v", err)
	}

	log.Printf("Runtime config: store_backend=%s, session_backend=%s, search_engine=%s, browser=%t",
		runtimeConfig.StoreBackend,
		runtimeConfig.SessionBackend,
		runtimeConfig.SearchEngine(),
		runtimeConfig.BrowserAvailable())

	// ===== HTTP server =====
	cfg := http.Config{
		Host:    host,
		Port:    port,
		Version: version,
	}

	var pinger http.Pinger
	if db != nil {
		pinger = db
	}

	server := http.NewServer(cfg, authService, workspaceService, pinger)

	log.Printf("API server starting on %s:%d", host, port)
	if err := server.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
