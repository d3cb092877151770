package config

import (
	"errors"
	"strings"
	"time"
)

const defaultJWTSecret = "dev-secret-change-me"

// Settings is the typed configuration handed to every constructor at startup.
type Settings struct {
	Environment string
	Port        string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	DBType             string
	MongoURL           string
	MongoDatabase      string
	PostgresDSN        string
	PostgresReplicas   []string
	RedisURI           string
	RateLimitPerMinute int
	TrustProxyHeaders  bool

	PrivilegedSignup bool

	AcceptedOrigins []string

	Notifier        string
	ResendAPIKey    string
	ResendFromEmail string
	KafkaBroker     string
	KafkaTopic      string
	KafkaUsername   string
	KafkaPassword   string
	MailWorker      bool
	OutboxPath      string

	StorageBackend      string
	UploadDir           string
	PublicBaseURL       string
	S3Bucket            string
	S3Region            string
	S3Endpoint          string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	TTSBaseURL string
}

// Load builds Settings from an environment map as returned by New.
func Load(c map[string]string) (Settings, error) {
	s := Settings{
		Environment: strings.ToLower(GetString(c, "ENV", "development")),
		Port:        GetString(c, "PORT", "7000"),

		ReadTimeout:  GetSeconds(c, "READ_TIMEOUT_SECONDS", 180),
		WriteTimeout: GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180),
		IdleTimeout:  GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180),

		JWTSecret: GetString(c, "JWT_SECRET", defaultJWTSecret),
		TokenTTL:  time.Duration(GetInt(c, "TOKEN_TTL_HOURS", 7*24)) * time.Hour,

		DBType:             strings.ToLower(GetString(c, "DB_TYPE", "mongo")),
		MongoURL:           GetString(c, "MONGODB_URL", "mongodb://localhost:27017"),
		MongoDatabase:      GetString(c, "MONGODB_DATABASE", "mern-auth"),
		PostgresDSN:        GetString(c, "POSTGRES_DSN", ""),
		PostgresReplicas:   GetList(c, "POSTGRES_REPLICA_DSNS"),
		RedisURI:           GetString(c, "REDIS_URI", ""),
		RateLimitPerMinute: GetInt(c, "RATE_LIMIT_PER_MINUTE", 20),
		TrustProxyHeaders:  GetBool(c, "TRUST_PROXY_HEADERS", false),

		PrivilegedSignup: GetBool(c, "ALLOW_PRIVILEGED_SIGNUP", false),

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),

		Notifier:        strings.ToLower(GetString(c, "NOTIFIER", "outbox")),
		ResendAPIKey:    GetString(c, "RESEND_API_KEY", ""),
		ResendFromEmail: GetString(c, "RESEND_FROM_EMAIL", ""),
		KafkaBroker:     GetString(c, "KAFKA_BROKER", ""),
		KafkaTopic:      GetString(c, "KAFKA_TOPIC", "blog.mail"),
		KafkaUsername:   GetString(c, "KAFKA_USERNAME", ""),
		KafkaPassword:   GetString(c, "KAFKA_PASSWORD", ""),
		MailWorker:      GetBool(c, "MAIL_WORKER", false),
		OutboxPath:      GetString(c, "OUTBOX_PATH", "mail_outbox.log"),

		StorageBackend:      strings.ToLower(GetString(c, "STORAGE_BACKEND", "local")),
		UploadDir:           GetString(c, "UPLOAD_DIR", "uploads"),
		PublicBaseURL:       strings.TrimSuffix(GetString(c, "PUBLIC_BASE_URL", ""), "/"),
		S3Bucket:            GetString(c, "S3_BUCKET", ""),
		S3Region:            GetString(c, "S3_REGION", "us-east-1"),
		S3Endpoint:          GetString(c, "S3_ENDPOINT", ""),
		AWSAccessKeyID:      GetString(c, "AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  GetString(c, "AWS_SECRET_ACCESS_KEY", ""),
		CloudinaryName:      GetString(c, "CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    GetString(c, "CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: GetString(c, "CLOUDINARY_API_SECRET", ""),

		TTSBaseURL: GetString(c, "TTS_BASE_URL", "https://translate.google.com/translate_tts"),
	}

	if s.IsProduction() && s.JWTSecret == defaultJWTSecret {
		return s, errors.New("JWT_SECRET must be set in production")
	}
	if s.TokenTTL <= 0 {
		return s, errors.New("TOKEN_TTL_HOURS must be positive")
	}

	return s, nil
}

// IsProduction reports whether ENV is "production".
func (s Settings) IsProduction() bool {
	return s.Environment == "production"
}
