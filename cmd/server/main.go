package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/avvvet/travelbuddy-intent/internal/config"
	"github.com/avvvet/travelbuddy-intent/internal/handlers"
	"github.com/avvvet/travelbuddy-intent/internal/llm"
	"github.com/avvvet/travelbuddy-intent/internal/logger"
	"github.com/avvvet/travelbuddy-intent/internal/nlu"
	"github.com/avvvet/travelbuddy-intent/internal/rag"
	"github.com/avvvet/travelbuddy-intent/internal/session"
	"github.com/avvvet/travelbuddy-intent/internal/transport"
	"github.com/avvvet/travelbuddy-intent/internal/validation"
)

func main() {
	// Load .env file if it exists (for development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("🚀 Starting TravelBuddy Intent Service...")

	cfg := config.Load()
	appLogger := logger.NewZapLogger(cfg.LogFilePath, cfg.IsProduction())
	defer appLogger.Sync()

	log.Printf("📋 Service: %s", cfg.ServiceName)
	log.Printf("📡 NATS URL: %s", cfg.NatsURL)
	log.Printf("📂 Offers: %s", cfg.OffersDir)

	// Offer documents are loaded once up front; a missing directory is fatal
	offers := rag.NewService(cfg.OffersDir, appLogger)
	if err := offers.LoadAll(); err != nil {
		log.Fatalf("❌ Failed to load offers: %v", err)
	}
	destinations, _ := offers.Destinations()
	log.Printf("✅ Loaded offers for %d destinations", len(destinations))

	// Session store
	var backend session.Backend
	var redisClient *redis.Client
	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		log.Printf("💾 Redis URL: %s", cfg.RedisURL)
		client, err := session.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		redisClient = client
		backend = session.NewRedisBackend(client, cfg.SessionTTL)
		log.Println("✅ Redis connected")
	default:
		backend = session.NewMemoryBackend(cfg.SessionTTL)
		log.Println("🧠 Using in-memory session store")
	}
	sessions := session.NewManager(backend, appLogger)

	// LLM provider is optional; without it replies come from offer data only
	var provider llm.Provider
	if cfg.LLMEnabled() {
		gemini, err := llm.NewGeminiProvider(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.LLMTemperature)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Gemini provider: %v", err)
		}
		provider = gemini
		log.Printf("🤖 Gemini Model: %s", cfg.GeminiModel)
	} else {
		log.Println("⚠️ GOOGLE_GEMINI_API_KEY not set, using offer-only replies")
	}

	chatHandler := handlers.NewChatHandler(
		sessions,
		nlu.NewIntentService(appLogger),
		offers,
		validation.NewService(nil),
		provider,
		cfg.LLMTimeout,
		appLogger,
	)
	log.Println("✅ Chat handler initialized")

	log.Println("📡 Connecting to NATS...")
	natsTransport, err := transport.NewNATSTransport(cfg, chatHandler, appLogger)
	if err != nil {
		log.Fatalf("❌ Failed to initialize NATS transport: %v", err)
	}

	if err := natsTransport.Start(); err != nil {
		log.Fatalf("❌ Failed to start NATS transport: %v", err)
	}

	log.Println("✅ TravelBuddy Intent Service is running!")
	log.Printf("👂 Listening on subjects: %s, %s", cfg.NatsChatSubject, cfg.NatsClearSubject)
	logSessionCount(sessions, "📊 Active sessions")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.Printf("🛑 Received signal: %v", sig)
	log.Println("🔄 Shutting down gracefully...")

	logSessionCount(sessions, "📊 Final session count")

	if err := natsTransport.Close(); err != nil {
		log.Printf("⚠️ Error closing NATS transport: %v", err)
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("⚠️ Error closing Redis client: %v", err)
		}
	}

	log.Println("👋 TravelBuddy Intent Service stopped")
}

func logSessionCount(sessions *session.Manager, label string) {
	count, err := sessions.ActiveSessionCount(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to count sessions: %v", err)
		return
	}
	log.Printf("%s: %d", label, count)
}
