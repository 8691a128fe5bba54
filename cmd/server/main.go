package main

import (
	"net/http"
	"os"

	"userdirectory/config"
	"userdirectory/db"
	"userdirectory/db/mongo"
	"userdirectory/db/postgres"
	"userdirectory/handlers"
	"userdirectory/repository"
	"userdirectory/routes"
	"userdirectory/services"
	"userdirectory/storage"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	// Load config from .env or environment
	cfg := config.LoadConfig()

	var userRepo repository.UserRepository

	switch db.DBType(cfg.DBType) {
	case db.Postgres:
		// Wait for the store and apply migrations; both degrade to a
		// warning rather than failing startup.
		db.WaitForPostgres(cfg.PostgresURL)
		db.RunMigrations(cfg.PostgresURL)

		pg := postgres.NewPostgresDB(cfg.PostgresURL)
		if err := pg.Connect(); err != nil {
			// The pool is lazy; keep serving and let later requests
			// succeed once the store comes up.
			logger.Warn().Err(err).Msg("postgres not reachable, continuing degraded")
		}
		if pg.Conn == nil {
			logger.Fatal().Msg("invalid postgres configuration")
		}
		defer pg.Disconnect()

		userRepo = repository.NewPostgresUserRepo(pg.Conn)

	case db.Mongo:
		mg := mongo.NewMongoDB(cfg.MongoURL)
		if err := mg.Connect(); err != nil {
			logger.Fatal().Err(err).Msg("could not connect to mongo")
		}
		defer mg.Disconnect()

		repo, err := repository.NewMongoUserRepo(mg.Client)
		if err != nil {
			logger.Fatal().Err(err).Msg("could not prepare mongo user repository")
		}
		userRepo = repo

	default:
		logger.Fatal().Msgf("DB_TYPE %q not supported", cfg.DBType)
	}

	var imageStore storage.ImageStore
	switch cfg.FileStore {
	case "local":
		imageStore = storage.NewLocalStore(cfg.UploadDir)
	case "r2":
		r2, err := storage.NewR2Store(storage.R2Config{
			Bucket:          cfg.R2Bucket,
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			PublicBaseURL:   cfg.R2PublicURL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("could not configure R2 image store")
		}
		imageStore = r2
	default:
		logger.Fatal().Msgf("FILE_STORE %q not supported", cfg.FileStore)
	}

	userService := services.NewUserService(userRepo, imageStore)
	userHandler := &handlers.UserHandler{Service: userService}

	mux := routes.SetupRoutes(userHandler, cfg.UploadDir, cfg.AllowedOrigins)

	logger.Info().Msgf("server running on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
