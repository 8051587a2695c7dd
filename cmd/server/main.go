package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/Senjuv/healt-tracker/internal/config"
	"github.com/Senjuv/healt-tracker/internal/database"
	"github.com/Senjuv/healt-tracker/internal/feed"
	"github.com/Senjuv/healt-tracker/internal/genai"
	"github.com/Senjuv/healt-tracker/internal/handlers"
	"github.com/Senjuv/healt-tracker/internal/middleware"
	"github.com/Senjuv/healt-tracker/internal/routes"
	"github.com/Senjuv/healt-tracker/internal/services"
	"github.com/Senjuv/healt-tracker/pkg/utils"
)

func main() {
	// Load env
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	cfg := config.Load()

	// Check encryption key (warn if not set, but don't fail)
	if cfg.EncryptionKey == "" {
		log.Println("⚠️  WARNING: ENCRYPTION_KEY not set. Recovery email encryption will not work.")
		log.Println("   To generate a key, run: openssl rand -base64 32")
	} else if _, err := utils.GetEncryptionKey(); err != nil {
		log.Printf("⚠️  WARNING: ENCRYPTION_KEY is invalid: %v", err)
		log.Println("   Key must be base64-encoded 32 bytes. Generate with: openssl rand -base64 32")
	} else {
		log.Println("✅ Encryption key configured")
	}

	if cfg.GenAIKey == "" {
		log.Println("⚠️  WARNING: GENAI_API_KEY not set. AI analysis endpoints will fail.")
	}

	store := &database.Store{}
	defer store.Close()

	// Connect to PostgreSQL
	log.Printf("Connecting to PostgreSQL...")
	pg, err := database.ConnectPostgres(cfg.PostgresURI)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL:", err)
	}
	store.Postgres = pg

	// Connect to Redis
	log.Printf("Connecting to Redis...")
	rdb, err := database.ConnectRedis(cfg.RedisURI)
	if err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}
	store.Redis = rdb

	// Connect to MongoDB (mask password in log)
	log.Printf("Connecting to MongoDB: %s", maskMongoURI(cfg.MongoURI))
	mongoClient, mongoDB, err := database.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	store.Mongo = mongoDB
	store.MongoClient = mongoClient

	// Services
	sessions := services.NewSessionService(store.Redis)
	users := services.NewUserService(store.Postgres)
	records := services.NewRecordsService(store.Mongo, store.Redis, cfg.AppID)
	cache := services.NewCacheService(store.Redis)

	// Ensure MongoDB indexes for the record collections
	if err := records.EnsureIndexes(context.Background()); err != nil {
		log.Printf("⚠️  WARNING: failed to ensure MongoDB indexes: %v", err)
	} else {
		log.Println("✅ MongoDB record indexes ensured")
	}

	// Initialize Cloudinary service (optional)
	var cloudinarySvc *services.CloudinaryService
	if cfg.CloudinaryName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		cloudinarySvc, err = services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("Warning: Failed to initialize Cloudinary: %v", err)
			cloudinarySvc = nil
		} else {
			log.Println("✅ Cloudinary service initialized")
		}
	} else {
		log.Println("Warning: Cloudinary credentials not found. Photo uploads will not be available")
	}

	h := &handlers.Handler{
		Cfg:        cfg,
		Sessions:   sessions,
		Users:      users,
		Records:    records,
		Cache:      cache,
		Cloudinary: cloudinarySvc,
		GenAI: &genai.Client{
			Endpoint: cfg.GenAIEndpoint,
			APIKey:   cfg.GenAIKey,
		},
		Feed: &feed.Subscriber{
			Redis: store.Redis,
			Load:  records.LoadSnapshot,
		},
	}

	// Setup router
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.IsProduction() {
		r.Use(middleware.SecurityHeaders)
		log.Println("✅ Production security headers enabled")
	}
	r.Use(middleware.RateLimit(store.Redis))

	// Health check (no auth)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	routes.SetupRoutes(r, h)

	log.Printf("🚀 Healt Tracker backend running on :%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}

// maskMongoURI hides the password portion of a connection string for logging.
func maskMongoURI(uri string) string {
	if !strings.Contains(uri, "@") {
		return uri
	}
	at := strings.Index(uri, "@")
	head := uri[:at]
	if colon := strings.LastIndex(head, ":"); colon > strings.Index(head, "//")+1 {
		return head[:colon+1] + "***" + uri[at:]
	}
	return uri
}
