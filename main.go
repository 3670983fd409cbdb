package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CavinKrenik/RecovrSocial/handlers"
	"github.com/CavinKrenik/RecovrSocial/internal/localstore"
	"github.com/CavinKrenik/RecovrSocial/internal/remote"
	"github.com/CavinKrenik/RecovrSocial/middleware"
	"github.com/CavinKrenik/RecovrSocial/services"
)

var (
	dbPool         *pgxpool.Pool
	store          *localstore.Store
	feedService    *services.FeedService
	profileService *services.ProfileService
	journalService *services.JournalService
	eventService   *services.EventService
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "./data"
	}

	var err error
	store, err = localstore.Open(dataDir)
	if err != nil {
		log.Fatal("Failed to open local store:", err)
	}

	// The remote tier is optional: with no DATABASE_URL the app runs
	// local-only, and with one it still degrades to local-only per
	// operation whenever the remote is unreachable.
	var remoteClient remote.Client
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Println("DATABASE_URL not set, running local-only")
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		poolConfig, err := pgxpool.ParseConfig(dbURL)
		if err != nil {
			log.Fatal("Failed to parse database URL:", err)
		}

		poolConfig.MaxConns = 25
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = time.Hour
		poolConfig.MaxConnIdleTime = 30 * time.Minute
		poolConfig.HealthCheckPeriod = time.Minute

		dbPool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			log.Fatal("Failed to create connection pool:", err)
		}

		if err := dbPool.Ping(ctx); err != nil {
			log.Fatal("Failed to ping database:", err)
		}

		pg := remote.NewPostgres(dbPool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal("Failed to migrate remote schema:", err)
		}
		remoteClient = pg

		log.Println("Successfully connected to remote feed database")
	}

	feedService = services.NewFeedService(store, remoteClient)
	profileService = services.NewProfileService(store)
	journalService = services.NewJournalService(store)
	eventService = services.NewEventService(store)

	middleware.InitPrometheus()
	services.InitMetrics()
}

func main() {
	defer func() {
		log.Println("Closing local store...")
		if err := store.Close(); err != nil {
			log.Printf("Local store close error: %v", err)
		}
		if dbPool != nil {
			log.Println("Closing database connection pool...")
			dbPool.Close()
		}
	}()

	realtimeCtx, stopRealtime := context.WithCancel(context.Background())
	defer stopRealtime()
	feedService.StartRealtime(realtimeCtx)

	// Initialize handlers
	feedHandler := handlers.NewFeedHandler(feedService)
	profileHandler := handlers.NewProfileHandler(profileService)
	journalHandler := handlers.NewJournalHandler(journalService)
	eventHandler := handlers.NewEventHandler(eventService)

	r := mux.NewRouter()

	rateLimiter := middleware.NewRateLimiter(5, 30)
	defer rateLimiter.Stop()

	r.Use(rateLimiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(promhttp.Handler()))

	r.HandleFunc("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if dbPool != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := dbPool.Ping(ctx); err != nil {
				// Still healthy: the local tier keeps serving while the
				// remote is down.
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{"status": "degraded", "mode": "local-only"}`))
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "recovr-social"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.IdentityMiddleware)

	api.HandleFunc("/feed/posts", feedHandler.GetPosts).Methods("GET")
	api.HandleFunc("/feed/posts", feedHandler.CreatePost).Methods("POST")
	api.HandleFunc("/feed/posts/{postID}/like", feedHandler.ToggleLike).Methods("POST")
	api.HandleFunc("/feed/posts/{postID}/comments", feedHandler.GetComments).Methods("GET")
	api.HandleFunc("/feed/posts/{postID}/comments", feedHandler.CreateComment).Methods("POST")
	api.HandleFunc("/feed/stream", feedHandler.StreamChanges).Methods("GET")

	api.HandleFunc("/profile", profileHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", profileHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/profile/clean-date", profileHandler.SetCleanDate).Methods("PUT")
	api.HandleFunc("/profile/privacy", profileHandler.UpdatePrivacy).Methods("PUT")
	api.HandleFunc("/tracker", profileHandler.GetTracker).Methods("GET")

	api.HandleFunc("/journal", journalHandler.GetEntries).Methods("GET")
	api.HandleFunc("/journal", journalHandler.CreateEntry).Methods("POST")
	api.HandleFunc("/journal/{entryID}", journalHandler.UpdateEntry).Methods("PUT")
	api.HandleFunc("/journal/{entryID}", journalHandler.DeleteEntry).Methods("DELETE")

	api.HandleFunc("/events", eventHandler.GetEvents).Methods("GET")
	api.HandleFunc("/events", eventHandler.AddEvent).Methods("POST")

	// CORS configuration
	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", middleware.UserIDHeader}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length", middleware.UserIDHeader}),
		gorilllaHandlers.AllowCredentials(),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3333"
	}
	port = ":" + port

	server := http.Server{
		Addr:         port,
		Handler:      corsHandler(r),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Error starting server:", err)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	sig := <-sigChan
	log.Println("Got signal:", sig)

	stopRealtime()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server shutdown complete")
}
