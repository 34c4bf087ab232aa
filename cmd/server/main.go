package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/api/option"

	"github.com/tabletop/backend/internal/config"
	"github.com/tabletop/backend/internal/handlers"
	"github.com/tabletop/backend/internal/logging"
	"github.com/tabletop/backend/internal/services"
)

const uploadsURLPrefix = "/uploads"

type stores struct {
	games      services.GameService
	comments   services.CommentService
	profiles   services.ProfileService
	collection services.CollectionService
	contacts   services.ContactService
	flags      services.FlagService
}

func main() {
	cfg := config.Load()
	logging.Init("tabletop-api", cfg.Environment, cfg.LogLevel)

	ctx := context.Background()

	st, closeStores := openStores(ctx, cfg)
	defer closeStores()

	if cfg.RedisAddr != "" {
		client, err := services.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, catalog cache disabled")
		} else {
			defer client.Close()
			st.games = services.NewCachedGameService(st.games, services.NewRedisCatalogCache(client, cfg.CatalogTTL))
			log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.CatalogTTL).Msg("catalog cache enabled")
		}
	}

	authProvider := newAuthProvider(ctx, cfg)

	images, uploadDir, closeImages := newImageService(ctx, cfg, st.flags)
	defer closeImages()

	events := services.NewAuthEvents()
	events.Subscribe(services.LogAuthEvents)
	events.Subscribe(services.TrackLastLogin(st.profiles))

	var captcha services.CaptchaVerifier
	if cfg.RecaptchaSecret != "" {
		v := services.NewRecaptchaVerifier(cfg.RecaptchaSecret)
		v.Hostname = cfg.RecaptchaHostname
		captcha = v
	}
	var notifier services.ContactNotifier
	if cfg.SendGridAPIKey != "" {
		notifier = services.NewSendGridMailer(cfg.SendGridAPIKey, cfg.ContactFromEmail, cfg.ContactToEmail)
	}

	accounts := services.NewAccountService(st.profiles, st.collection, st.comments, st.flags, images, authProvider)

	router := &handlers.Router{
		Auth:       handlers.NewAuthHandler(authProvider, st.profiles, events),
		Games:      handlers.NewGameHandler(st.games, st.comments, st.collection, st.profiles),
		Comments:   handlers.NewCommentHandler(st.comments, st.games, st.profiles),
		Profiles:   handlers.NewProfileHandler(st.profiles, authProvider, images),
		Collection: handlers.NewCollectionHandler(st.collection, st.games),
		Images:     handlers.NewImageHandler(images, cfg.MaxUploadSizeMB),
		Contact:    handlers.NewContactHandler(st.contacts, captcha, notifier),
		Account:    handlers.NewAccountHandler(accounts),

		Verifier:       authProvider,
		AllowedOrigins: cfg.AllowedOrigins,
		UploadDir:      uploadDir,
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.ServerAddress).Str("auth", cfg.AuthProvider).Msg("tabletop API server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}

// openStores uses Mongo when MONGO_URI is set and in-memory stores otherwise.
func openStores(ctx context.Context, cfg *config.Config) (*stores, func()) {
	if cfg.MongoURI == "" {
		log.Warn().Msg("MONGO_URI not set, using in-memory stores")
		return &stores{
			games:      services.NewMemoryGameService(),
			comments:   services.NewMemoryCommentService(),
			profiles:   services.NewMemoryProfileService(),
			collection: services.NewMemoryCollectionService(),
			contacts:   services.NewMemoryContactService(),
			flags:      services.NewMemoryFlagService(),
		}, func() {}
	}

	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	client, err := services.ConnectMongo(connectCtx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connect failed")
	}
	db := client.Database(cfg.MongoDB)
	log.Info().Str("db", cfg.MongoDB).Msg("MongoDB connected")

	st := &stores{
		games:      services.NewMongoGameService(connectCtx, db),
		comments:   services.NewMongoCommentService(connectCtx, db),
		profiles:   services.NewMongoProfileService(connectCtx, db),
		collection: services.NewMongoCollectionService(connectCtx, db),
		contacts:   services.NewMongoContactService(db),
		flags:      services.NewMongoFlagService(connectCtx, db),
	}
	return st, func() { disconnect(client) }
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Error().Err(err).Msg("mongo disconnect failed")
	}
}

func newAuthProvider(ctx context.Context, cfg *config.Config) services.AuthProvider {
	switch cfg.AuthProvider {
	case config.AuthProviderFirebase:
		p, err := services.NewFirebaseAuthProvider(ctx, services.FirebaseAuthConfig{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsJSON: cfg.FirebaseCredentialsJSON,
			APIKey:          cfg.FirebaseAPIKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("firebase auth init failed")
		}
		return p
	case config.AuthProviderLocal:
		p, err := services.NewLocalAuthProvider(cfg.DataDir, cfg.JWTSecret, cfg.JWTExpiration)
		if err != nil {
			log.Fatal().Err(err).Msg("local auth init failed")
		}
		return p
	default:
		log.Fatal().Str("provider", cfg.AuthProvider).Msg("unknown AUTH_PROVIDER")
		return nil
	}
}

// newImageService picks Firebase Storage when a bucket is configured and the
// local upload directory otherwise. The returned directory is non-empty only
// for the local store.
func newImageService(ctx context.Context, cfg *config.Config, flags services.FlagService) (*services.ImageService, string, func()) {
	maxBytes := cfg.MaxUploadSizeMB << 20

	if cfg.StorageBucket == "" {
		store, err := services.NewLocalObjectStore(cfg.UploadDir, uploadsURLPrefix)
		if err != nil {
			log.Fatal().Err(err).Msg("upload dir init failed")
		}
		if cfg.ModerationEnabled {
			log.Warn().Msg("MODERATION_ENABLED needs STORAGE_BUCKET, moderation disabled")
		}
		return services.NewImageService(store, nil, maxBytes), cfg.UploadDir, func() {}
	}

	var opts []option.ClientOption
	if cfg.FirebaseCredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.FirebaseCredentialsJSON)))
	}

	store, err := services.NewGCSObjectStore(ctx, cfg.StorageBucket, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("storage init failed")
	}

	var moderator services.ImageModerator
	if cfg.ModerationEnabled {
		detect, err := services.NewVisionSafeSearch(ctx, opts...)
		if err != nil {
			log.Fatal().Err(err).Msg("vision init failed")
		}
		moderator = services.NewSafeSearchModerator(store.Bucket(), detect, store, flags)
		log.Info().Str("bucket", store.Bucket()).Msg("image moderation enabled")
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			log.Error().Err(err).Msg("storage client close failed")
		}
	}
	return services.NewImageService(store, moderator, maxBytes), "", closeStore
}
