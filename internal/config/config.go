package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Auth      AuthConfig
	OAuth     OAuthConfig
	Storage   StorageConfig
	Library   LibraryConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	GracefulTimeout time.Duration
	MaxHeaderBytes  int
	PublicBaseURL   string
	EnableSwagger   bool
	CORSOrigins     []string
	MaxBodyBytes    int64
	SwaggerUser     string
	SwaggerPassword string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	EnableQueryLogging bool
	MigrationsPath     string
	AutoMigrate        bool
	ConnectTimeout     time.Duration
	MaxRetryAttempts   int
	RetryBackoff       time.Duration
}

// CacheConfig selects and tunes the cache provider
type CacheConfig struct {
	Provider        string
	TTL             time.Duration
	ListTTL         time.Duration
	MaxKeys         int
	CleanupInterval time.Duration
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	PoolSize        int
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	JWTIssuer  string
	BCryptCost int

	// AdminEmails get the admin role when they register or first sign in.
	AdminEmails []string
}

// OAuthConfig configures the optional Google login
type OAuthConfig struct {
	GoogleEnabled      bool
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
}

// StorageConfig selects the blob store
type StorageConfig struct {
	Provider string // local, cloudinary, s3
	Profile  string // standard, extended

	LocalDir     string
	LocalBaseURL string

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
	S3Region    string
	S3URLExpiry time.Duration
}

// LibraryConfig holds document library business limits
type LibraryConfig struct {
	FavoriteLimit      int
	SlugMaxAttempts    int
	DefaultPageSize    int
	MaxPageSize        int
	RatingLockTTL      time.Duration
	EventWorkers       int
	EventQueueSize     int
	NotificationBuffer int
}

// RateLimitConfig configures the per-client limiter
type RateLimitConfig struct {
	Enabled           bool
	RequestsPerSecond float64
	Burst             int
	CleanupInterval   time.Duration
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads environment (optionally from .env.<GO_ENV> or .env) and validates it.
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:    loadServerConfig(env),
		Database:  loadDatabaseConfig(env),
		Cache:     loadCacheConfig(),
		Auth:      loadAuthConfig(),
		OAuth:     loadOAuthConfig(),
		Storage:   loadStorageConfig(),
		Library:   loadLibraryConfig(),
		RateLimit: loadRateLimitConfig(env),
		Logging:   loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "9000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:  getDurationEnv("SERVER_REQUEST_TIMEOUT", 30*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxHeaderBytes:  getIntEnv("MAX_HEADER_BYTES", 1<<20),
		PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:9000"),
		EnableSwagger:   getBoolEnv("ENABLE_SWAGGER", env != "production"),
		CORSOrigins:     getListEnv("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:    int64(getIntEnv("MAX_BODY_BYTES", 60<<20)),
		SwaggerUser:     getEnv("SWAGGER_USERNAME", ""),
		SwaggerPassword: getEnv("SWAGGER_PASSWORD", ""),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}
	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	return DatabaseConfig{
		URL:                os.Getenv("DATABASE_URL"),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 500*time.Millisecond),
		EnableQueryLogging: getBoolEnv("DB_ENABLE_QUERY_LOGGING", env == "development"),
		MigrationsPath:     getEnv("DB_MIGRATIONS_PATH", "migrations"),
		AutoMigrate:        getBoolEnv("DB_AUTO_MIGRATE", true),
		ConnectTimeout:     getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		MaxRetryAttempts:   getIntEnv("DB_MAX_RETRY_ATTEMPTS", 5),
		RetryBackoff:       getDurationEnv("DB_RETRY_BACKOFF", time.Second),
	}
}

func loadCacheConfig() CacheConfig {
	return CacheConfig{
		Provider:        getEnv("CACHE_PROVIDER", "memory"),
		TTL:             getDurationEnv("CACHE_TTL", 15*time.Minute),
		ListTTL:         getDurationEnv("CACHE_LIST_TTL", 30*time.Second),
		MaxKeys:         getIntEnv("CACHE_MAX_KEYS", 10000),
		CleanupInterval: getDurationEnv("CACHE_CLEANUP_INTERVAL", 5*time.Minute),
		RedisURL:        getEnv("REDIS_URL", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getIntEnv("REDIS_DB", 0),
		PoolSize:        getIntEnv("REDIS_POOL_SIZE", 10),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTExpiry:   getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		JWTIssuer:   getEnv("JWT_ISSUER", "doclib"),
		BCryptCost:  getIntEnv("BCRYPT_COST", 12),
		AdminEmails: getListEnv("ADMIN_EMAILS"),
	}
}

func loadOAuthConfig() OAuthConfig {
	return OAuthConfig{
		GoogleEnabled:      getBoolEnv("GOOGLE_OAUTH_ENABLED", false),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", ""),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Provider:            strings.ToLower(getEnv("STORAGE_PROVIDER", "local")),
		Profile:             strings.ToLower(getEnv("STORAGE_PROFILE", "standard")),
		LocalDir:            getEnv("STORAGE_LOCAL_DIR", "uploads"),
		LocalBaseURL:        getEnv("STORAGE_LOCAL_BASE_URL", "/uploads"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "doclib"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		S3Bucket:            getEnv("S3_BUCKET", "documents"),
		S3UseSSL:            getBoolEnv("S3_USE_SSL", true),
		S3Region:            getEnv("S3_REGION", ""),
		S3URLExpiry:         getDurationEnv("S3_URL_EXPIRY", 15*time.Minute),
	}
}

func loadLibraryConfig() LibraryConfig {
	return LibraryConfig{
		FavoriteLimit:      getIntEnv("FAVORITE_LIMIT", 100),
		SlugMaxAttempts:    getIntEnv("SLUG_MAX_ATTEMPTS", 20),
		DefaultPageSize:    getIntEnv("DEFAULT_PAGE_SIZE", 10),
		MaxPageSize:        getIntEnv("MAX_PAGE_SIZE", 100),
		RatingLockTTL:      getDurationEnv("RATING_LOCK_TTL", 5*time.Second),
		EventWorkers:       getIntEnv("EVENT_WORKERS", 4),
		EventQueueSize:     getIntEnv("EVENT_QUEUE_SIZE", 1000),
		NotificationBuffer: getIntEnv("NOTIFICATION_BUFFER", 16),
	}
}

func loadRateLimitConfig(env string) RateLimitConfig {
	return RateLimitConfig{
		Enabled:           getBoolEnv("RATE_LIMIT_ENABLED", env == "production"),
		RequestsPerSecond: getFloat64Env("RATE_LIMIT_RPS", 20),
		Burst:             getIntEnv("RATE_LIMIT_BURST", 40),
		CleanupInterval:   getDurationEnv("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate checks every section; the first failure is returned.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}
	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}
	if err := c.OAuth.Validate(); err != nil {
		return fmt.Errorf("oauth config: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}
	if err := c.Library.Validate(); err != nil {
		return fmt.Errorf("library config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}
	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}
	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}
	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}
	return nil
}

func (a *AuthConfig) Validate() error {
	if a.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}
	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}
	return nil
}

func (o *OAuthConfig) Validate() error {
	if !o.GoogleEnabled {
		return nil
	}
	if o.GoogleClientID == "" || o.GoogleClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required when Google login is enabled")
	}
	if o.GoogleRedirectURL == "" {
		return fmt.Errorf("GOOGLE_REDIRECT_URL is required when Google login is enabled")
	}
	return nil
}

func (s *StorageConfig) Validate() error {
	switch s.Profile {
	case "standard", "extended":
	default:
		return fmt.Errorf("unsupported storage profile: %s", s.Profile)
	}

	switch s.Provider {
	case "local":
		if s.LocalDir == "" {
			return fmt.Errorf("STORAGE_LOCAL_DIR is required for local storage")
		}
	case "cloudinary":
		if s.CloudinaryCloudName == "" || s.CloudinaryAPIKey == "" || s.CloudinaryAPISecret == "" {
			return fmt.Errorf("cloudinary credentials are required for cloudinary storage")
		}
	case "s3":
		if s.S3Endpoint == "" || s.S3AccessKey == "" || s.S3SecretKey == "" || s.S3Bucket == "" {
			return fmt.Errorf("S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY and S3_BUCKET are required for s3 storage")
		}
	default:
		return fmt.Errorf("unsupported storage provider: %s", s.Provider)
	}
	return nil
}

func (l *LibraryConfig) Validate() error {
	if l.FavoriteLimit <= 0 {
		return fmt.Errorf("FAVORITE_LIMIT must be positive")
	}
	if l.SlugMaxAttempts <= 0 {
		return fmt.Errorf("SLUG_MAX_ATTEMPTS must be positive")
	}
	if l.MaxPageSize <= 0 || l.DefaultPageSize <= 0 || l.DefaultPageSize > l.MaxPageSize {
		return fmt.Errorf("page sizes must be positive and DEFAULT_PAGE_SIZE <= MAX_PAGE_SIZE")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloat64Env(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	if env == "production" {
		return "info"
	}
	return "debug"
}

func getDefaultLogFormat(env string) string {
	if env == "production" {
		return "json"
	}
	return "console"
}
