package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"backline/cache"
	"backline/config"
	"backline/core/gallery"
	"backline/core/mailer"
	"backline/core/media"
	"backline/db"
	"backline/logger"
	"backline/repository"
	"backline/storage"
)

// Start initializes dependencies and runs the HTTP server until a shutdown
// signal arrives.
func Start() {
	cfg := config.Load()

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	if err := storage.InitMinio(cfg); err != nil {
		logger.Fatal("Failed to initialize MinIO", logger.ErrorField(err))
	}

	if err := db.ConnectDB(cfg); err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.DB.Close()

	if err := db.ConnectRedis(cfg); err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer db.CloseRedis()

	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Fatal("Failed to connect for schema migration", logger.ErrorField(err))
	}
	if err := db.MigrateSchema(); err != nil {
		logger.Fatal("Failed to migrate schema", logger.ErrorField(err))
	}
	if err := db.CloseGormDB(); err != nil {
		logger.Warn("Failed to close migration connection", logger.ErrorField(err))
	}
	if err := db.SeedAdminUser(cfg); err != nil {
		logger.Fatal("Failed to seed admin user", logger.ErrorField(err))
	}

	artistRepo := repository.NewMySQLArtistRepository()
	eventRepo := repository.NewMySQLEventRepository()
	trackRepo := repository.NewMySQLTrackRepository()
	userRepo := repository.NewMySQLUserRepository()
	newsletterRepo := repository.NewMySQLNewsletterRepository()
	siteConfigRepo := repository.NewMySQLSiteConfigRepository()
	galleryTokenRepo := repository.NewMySQLGalleryTokenRepository()

	objectStore := storage.NewMinioStore(storage.GetMinioClient(), cfg.MinioBucket, cfg.PublicAssetBase)
	mediaManager := media.NewManager(objectStore, artistRepo, trackRepo, eventRepo)
	galleryClient := gallery.NewClient(cfg.GalleryBaseURL, cfg.GalleryProvider, galleryTokenRepo, cache.NewGalleryCache())
	mail := mailer.NewMailer(cfg.MailEndpoint, cfg.MailAPIKey, cfg.MailFrom, cfg.SiteBaseURL)

	apiHandler := NewAPIHandler(artistRepo, eventRepo, trackRepo, userRepo,
		newsletterRepo, siteConfigRepo, mediaManager, galleryClient, mail, cfg)

	router := mux.NewRouter()

	router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	// Public site endpoints.
	router.HandleFunc("/api/artists", apiHandler.GetArtistsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/artists/{id}", apiHandler.GetArtistHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/events", apiHandler.GetEventsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/events/{id}", apiHandler.GetEventHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", apiHandler.GetTracksHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks/featured", apiHandler.GetFeaturedTrackHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/config", apiHandler.GetConfigHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/gallery/{eventTitle}", apiHandler.GetGalleryHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/newsletter/subscribe", apiHandler.SubscribeHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/newsletter/unsubscribe", apiHandler.UnsubscribeHandler).Methods(http.MethodGet)

	// Admin authentication.
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Back-office endpoints, all behind the session token.
	router.HandleFunc("/api/artists", apiHandler.AuthMiddleware(apiHandler.CreateArtistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artists/reorder", apiHandler.AuthMiddleware(apiHandler.ReorderArtistsHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/artists/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateArtistHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/artists/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteArtistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/events", apiHandler.AuthMiddleware(apiHandler.CreateEventHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/events/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateEventHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/events/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteEventHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/feature", apiHandler.AuthMiddleware(apiHandler.FeatureTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/config", apiHandler.AuthMiddleware(apiHandler.UpdateConfigHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/media/intro", apiHandler.AuthMiddleware(apiHandler.UploadIntroHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/newsletter/subscribers", apiHandler.AuthMiddleware(apiHandler.GetSubscribersHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/newsletter/broadcast", apiHandler.AuthMiddleware(apiHandler.BroadcastHandler)).Methods(http.MethodPost)

	// Bucket-backed asset serving.
	router.PathPrefix("/static/").HandlerFunc(StaticHandler(cfg))

	server.Handler = router

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", logger.String("addr", cfg.ListenAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	<-stop
	logger.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server stopped")
}
