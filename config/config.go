package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	StoreBackend string
	DatabaseURL  string

	FirebaseProjectID   string
	FirebaseAPIKey      string
	FirebaseCredentials string

	RedisURL string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	TokenPrefix string
	SessionTTL  time.Duration

	LogLevel  string
	LogFormat string

	SuperAdminEmail    string
	SuperAdminPassword string
	SuperAdminName     string
}

func LoadEnv() error {
	// .env is only present in local development; production sets the
	// environment directly.
	_ = godotenv.Load()
	return nil
}

// ValidateEnv checks that critical environment variables are set and warns
// about optional ones.
func ValidateEnv(log *zap.Logger) error {
	var missing []string

	if os.Getenv("JWT_SECRET") == "" {
		missing = append(missing, "JWT_SECRET")
	}

	switch backend := GetEnv("STORE_BACKEND", BackendPostgres); backend {
	case BackendPostgres:
		if os.Getenv("DATABASE_URL") == "" {
			missing = append(missing, "DATABASE_URL")
		}
	case BackendFirestore:
		if os.Getenv("FIREBASE_PROJECT_ID") == "" {
			missing = append(missing, "FIREBASE_PROJECT_ID")
		}
		if os.Getenv("FIREBASE_API_KEY") == "" {
			missing = append(missing, "FIREBASE_API_KEY")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", backend)
	}

	if len(missing) > 0 {
		return fmt.Errorf("critical environment variables not set: %v", missing)
	}

	if os.Getenv("FRONTEND_URL") == "" {
		log.Warn("FRONTEND_URL not set - CORS may not work correctly")
	}
	if os.Getenv("ADMIN_URL") == "" {
		log.Warn("ADMIN_URL not set")
	}
	if os.Getenv("REDIS_URL") == "" {
		log.Warn("REDIS_URL not set - session revocation and events stay in-process")
	}
	if os.Getenv("SMTP_HOST") == "" || os.Getenv("SMTP_FROM") == "" {
		log.Warn("SMTP_HOST or SMTP_FROM not set - account emails will not be sent")
	}
	if os.Getenv("SUPER_ADMIN_EMAIL") == "" {
		log.Warn("SUPER_ADMIN_EMAIL not set - no super admin will be seeded")
	}

	return nil
}

// Load reads the typed configuration from the environment.
func Load() Config {
	cfg := Config{
		Port:                GetEnv("PORT", "8080"),
		StoreBackend:        strings.ToLower(GetEnv("STORE_BACKEND", BackendPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		FirebaseProjectID:   os.Getenv("FIREBASE_PROJECT_ID"),
		FirebaseAPIKey:      os.Getenv("FIREBASE_API_KEY"),
		FirebaseCredentials: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		RedisURL:            os.Getenv("REDIS_URL"),
		SMTPHost:            os.Getenv("SMTP_HOST"),
		SMTPPort:            GetEnv("SMTP_PORT", "587"),
		SMTPUsername:        os.Getenv("SMTP_USERNAME"),
		SMTPPassword:        os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:            os.Getenv("SMTP_FROM"),
		TokenPrefix:         GetEnv("TOKEN_PREFIX", "SAY"),
		SessionTTL:          GetDuration("SESSION_TTL", 8*time.Hour),
		LogLevel:            GetEnv("LOG_LEVEL", "info"),
		LogFormat:           GetEnv("LOG_FORMAT", "json"),
		SuperAdminEmail:     os.Getenv("SUPER_ADMIN_EMAIL"),
		SuperAdminPassword:  os.Getenv("SUPER_ADMIN_PASSWORD"),
		SuperAdminName:      GetEnv("SUPER_ADMIN_NAME", "Super Admin"),
	}

	for _, key := range []string{"FRONTEND_URL", "ADMIN_URL"} {
		if origin := os.Getenv(key); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	return cfg
}

func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// GetDuration accepts Go durations ("8h") or a plain number of seconds.
func GetDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
