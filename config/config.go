package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	// StoreMemory keeps documents in process memory. Local development only.
	StoreMemory = "memory"
)

type Config struct {
	Port    string
	GinMode string
	// Document store selection
	DocumentStore string
	DBUrl         string
	MongoURI      string
	MongoDatabase string
	// Redis Configuration
	RedisURL          string
	RedisPassword     string
	CacheInstanceName string
	// Cache TTLs
	JobsCacheTTL             time.Duration
	PendingCompaniesCacheTTL time.Duration
	EntityCacheTTL           time.Duration
	// Auth
	JWTSecret string
	JWKSUrl   string
	// CORS
	AllowedOrigins []string
	// S3-compatible storage
	S3Provider        string
	S3AccessKeyID     string
	S3SecretAccessKey string
	S3Region          string
	S3Bucket          string
	S3Endpoint        string
	S3PublicBaseURL   string
	UploadMaxBytes    int64
	// clamd address (host:port or unix socket), empty disables scanning
	ClamAVAddress string
	ClamAVTimeout time.Duration
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitGlobalThreshold int
	RateLimitWriteThreshold  int
	UploadRateLimitPerDay    int
	// Audit log file, empty for stdout
	AuditLogPath string
}

func LoadConfig() (*Config, error) {
	// Load .env file (only effective locally; ignored when the file is absent)
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		DocumentStore: strings.ToLower(getEnv("DOCUMENT_STORE", StorePostgres)),
		DBUrl:         getEnv("DATABASE_URL", ""),
		MongoURI:      getEnv("MONGO_URI", ""),
		MongoDatabase: getEnv("MONGO_DATABASE", "recruitment"),

		RedisURL:          getEnv("REDIS_URL", ""),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		CacheInstanceName: getEnv("CACHE_INSTANCE_NAME", "recruitment"),

		JobsCacheTTL:             getEnvDuration("JOBS_CACHE_TTL", 5*time.Minute),
		PendingCompaniesCacheTTL: getEnvDuration("PENDING_COMPANIES_CACHE_TTL", 10*time.Minute),
		EntityCacheTTL:           getEnvDuration("ENTITY_CACHE_TTL", 10*time.Minute),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWKSUrl:   strings.TrimRight(getEnv("JWKS_URL", ""), "/"),

		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),

		S3Provider:        getEnv("S3_PROVIDER", "aws"),
		S3AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Region:          getEnv("S3_REGION", "ap-southeast-1"),
		S3Bucket:          getEnv("S3_BUCKET", ""),
		S3Endpoint:        getEnv("S3_ENDPOINT", ""),
		S3PublicBaseURL:   strings.TrimRight(getEnv("S3_PUBLIC_BASE_URL", ""), "/"),
		UploadMaxBytes:    int64(getEnvInt("UPLOAD_MAX_BYTES", 5<<20)),

		ClamAVAddress: getEnv("CLAMAV_ADDRESS", ""),
		ClamAVTimeout: getEnvDuration("CLAMAV_TIMEOUT", 30*time.Second),

		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),    // 1 minute window
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100), // 100 requests per window
		RateLimitWriteThreshold:  getEnvInt("RATE_LIMIT_WRITE_THRESHOLD", 30),
		UploadRateLimitPerDay:    getEnvInt("UPLOAD_RATE_LIMIT_PER_DAY", 50),

		AuditLogPath: getEnv("AUDIT_LOG_PATH", ""),
	}

	switch cfg.DocumentStore {
	case StorePostgres:
		if cfg.DBUrl == "" {
			log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
		}
	case StoreMongo:
		if cfg.MongoURI == "" {
			log.Println("WARNING: MONGO_URI is missing. Application may fail to connect.")
		}
	case StoreMemory:
		log.Println("WARNING: DOCUMENT_STORE=memory, data is lost on restart.")
	default:
		log.Printf("WARNING: unknown DOCUMENT_STORE %q, falling back to %s", cfg.DocumentStore, StorePostgres)
		cfg.DocumentStore = StorePostgres
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Caching and rate limiting will use in-memory fallback.")
	}
	if cfg.JWTSecret == "" && cfg.JWKSUrl == "" {
		log.Println("WARNING: neither JWT_SECRET nor JWKS_URL is set. Authenticated routes will reject every token.")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration accepts Go durations ("90s") or a plain number of seconds.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	if d, err := time.ParseDuration(value); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimRight(part, "/"))
		}
	}
	return out
}
