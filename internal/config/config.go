package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	AuthProviderFirebase = "firebase"
	AuthProviderLocal    = "local"
)

type Config struct {
	ServerAddress string
	Environment   string
	LogLevel      string

	AuthProvider            string
	FirebaseProjectID       string
	FirebaseCredentialsJSON string
	FirebaseAPIKey          string
	JWTSecret               string
	JWTExpiration           time.Duration

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CatalogTTL    time.Duration

	StorageBucket     string
	ModerationEnabled bool
	UploadDir         string
	DataDir           string
	MaxUploadSizeMB   int64

	AllowedOrigins []string

	RecaptchaSecret   string
	RecaptchaHostname string
	SendGridAPIKey    string
	ContactFromEmail  string
	ContactToEmail    string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("APP_ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		AuthProvider:            getEnv("AUTH_PROVIDER", AuthProviderLocal),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		FirebaseAPIKey:          getEnv("FIREBASE_API_KEY", ""),
		JWTSecret:               getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		JWTExpiration:           getEnvDuration("JWT_EXPIRATION", 24*time.Hour),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "tabletop"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		CatalogTTL:    getEnvDuration("CATALOG_CACHE_TTL", 5*time.Minute),

		StorageBucket:     getEnv("STORAGE_BUCKET", ""),
		ModerationEnabled: getEnvBool("MODERATION_ENABLED", false),
		UploadDir:         getEnv("UPLOAD_DIR", "./uploads"),
		DataDir:           getEnv("DATA_DIR", "./data"),
		MaxUploadSizeMB:   int64(getEnvInt("MAX_UPLOAD_SIZE_MB", 10)),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),

		RecaptchaSecret:   getEnv("RECAPTCHA_SECRET", ""),
		RecaptchaHostname: getEnv("RECAPTCHA_HOSTNAME", ""),
		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		ContactFromEmail:  getEnv("CONTACT_FROM_EMAIL", ""),
		ContactToEmail:    getEnv("CONTACT_TO_EMAIL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
