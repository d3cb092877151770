package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-blog-backend/api"
	"github.com/rpupo63/portfolio-blog-backend/auth"
	"github.com/rpupo63/portfolio-blog-backend/config"
	"github.com/rpupo63/portfolio-blog-backend/database"
	"github.com/rpupo63/portfolio-blog-backend/metrics"
	"github.com/rpupo63/portfolio-blog-backend/services"
)

const (
	shutdownTimeout   = 30 * time.Second
	mailWorkerGroupID = "blog-mail-worker"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	settings, err := config.Load(config.New())
	setupLogger(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	log.Info().Str("env", settings.Environment).Str("dbType", settings.DBType).Msg("Initializing app...")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// closers run in reverse order on shutdown
	var closers []func(context.Context) error

	currentDB, err := openDatabase(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting to database")
	}
	closers = append(closers, currentDB.Close)

	var redisClient *redis.Client
	if settings.RedisURI != "" {
		redisClient, err = database.ConnectRedis(ctx, settings.RedisURI)
		if err != nil {
			log.Fatal().Err(err).Msg("error connecting to redis")
		}
		closers = append(closers, func(context.Context) error { return redisClient.Close() })
		log.Info().Msg("rate limits shared through redis")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	notifier, notifierClosers, err := buildNotifier(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("error configuring notifier")
	}
	closers = append(closers, notifierClosers...)

	storage, uploadDir, err := buildStorage(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("error configuring file storage")
	}

	tokens := auth.NewTokenIssuer(settings.JWTSecret, settings.TokenTTL)
	authService := services.NewAuthService(currentDB.UserRepo(), auth.NewBcryptHasher(auth.DefaultBcryptCost), tokens, notifier, collector, log.Logger).
		WithPrivilegedSignup(settings.PrivilegedSignup)
	blogService := services.NewBlogService(currentDB, services.NewSanitizer(), collector, log.Logger)

	server := api.NewServer(settings, currentDB,
		api.WithAuthService(authService),
		api.WithBlogService(blogService),
		api.WithStorage(storage, uploadDir),
		api.WithSpeech(services.NewSpeechSynthesizer(settings.TTSBaseURL, storage)),
		api.WithMetrics(collector, registry),
		api.WithRedis(redisClient),
	)

	errChannel := make(chan error, 2)

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(shutdownTimeout)
	stop()

	closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](closeCtx); err != nil {
			log.Error().Err(err).Msg("error closing resource")
		}
	}
}

func setupLogger(settings config.Settings) {
	zerolog.TimeFieldFormat = time.RFC3339
	if settings.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func openDatabase(ctx context.Context, settings config.Settings) (database.Database, error) {
	switch settings.DBType {
	case "mongo":
		client, err := database.ConnectMongo(ctx, settings.MongoURL, log.Logger)
		if err != nil {
			return database.Database{}, err
		}
		return database.NewMongo(ctx, client, settings.MongoDatabase)
	case "postgres":
		db, err := database.OpenPostgres(settings.PostgresDSN, settings.PostgresReplicas, log.Logger)
		if err != nil {
			return database.Database{}, err
		}
		return database.NewGorm(db), nil
	case "memory":
		log.Warn().Msg("using the in-memory store; data is lost on restart")
		return database.NewMemory(), nil
	default:
		return database.Database{}, fmt.Errorf("unsupported DB_TYPE %q", settings.DBType)
	}
}

// buildNotifier picks the outbound email path. With NOTIFIER=kafka and
// MAIL_WORKER=true this process also consumes the topic and delivers through
// Resend, or the outbox file when Resend is not configured.
func buildNotifier(ctx context.Context, settings config.Settings) (services.Notifier, []func(context.Context) error, error) {
	var closers []func(context.Context) error
	closeWith := func(c io.Closer) func(context.Context) error {
		return func(context.Context) error { return c.Close() }
	}

	switch settings.Notifier {
	case "resend":
		n, err := services.NewResendNotifier(settings.ResendAPIKey, settings.ResendFromEmail, log.Logger)
		return n, nil, err

	case "kafka":
		cfg := services.KafkaConfig{
			Broker:   settings.KafkaBroker,
			Topic:    settings.KafkaTopic,
			GroupID:  mailWorkerGroupID,
			Username: settings.KafkaUsername,
			Password: settings.KafkaPassword,
		}
		producer, err := services.NewKafkaNotifier(cfg)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, closeWith(producer))

		if settings.MailWorker {
			var delivery services.Notifier
			if settings.ResendAPIKey != "" {
				delivery, err = services.NewResendNotifier(settings.ResendAPIKey, settings.ResendFromEmail, log.Logger)
				if err != nil {
					return nil, closers, err
				}
			} else {
				outbox, err := services.NewOutboxNotifier(settings.OutboxPath)
				if err != nil {
					return nil, closers, err
				}
				closers = append(closers, closeWith(outbox))
				delivery = outbox
			}

			worker := services.NewMailWorker(cfg, delivery, log.Logger)
			closers = append(closers, closeWith(worker))
			go worker.Listen(ctx)
			log.Info().Str("topic", cfg.Topic).Msg("mail worker started")
		}
		return producer, closers, nil

	case "outbox":
		outbox, err := services.NewOutboxNotifier(settings.OutboxPath)
		if err != nil {
			return nil, nil, err
		}
		return outbox, []func(context.Context) error{closeWith(outbox)}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported NOTIFIER %q", settings.Notifier)
	}
}

// buildStorage returns the upload backend and, for local storage, the
// directory the API serves at /uploads.
func buildStorage(ctx context.Context, settings config.Settings) (services.FileStorage, string, error) {
	switch settings.StorageBackend {
	case "local":
		local, err := services.NewLocalStorage(settings.UploadDir, settings.PublicBaseURL)
		if err != nil {
			return nil, "", err
		}
		return local, local.Dir(), nil
	case "s3":
		s3Storage, err := services.NewS3Storage(ctx, services.S3Config{
			Bucket:          settings.S3Bucket,
			Region:          settings.S3Region,
			Endpoint:        settings.S3Endpoint,
			AccessKeyID:     settings.AWSAccessKeyID,
			SecretAccessKey: settings.AWSSecretAccessKey,
			PublicBaseURL:   settings.PublicBaseURL,
		})
		return s3Storage, "", err
	case "cloudinary":
		cld, err := services.NewCloudinaryStorage(settings.CloudinaryName, settings.CloudinaryAPIKey, settings.CloudinaryAPISecret, "blog")
		return cld, "", err
	default:
		return nil, "", fmt.Errorf("unsupported STORAGE_BACKEND %q", settings.StorageBackend)
	}
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
