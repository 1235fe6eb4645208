package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	JWTSecret          string
	AccessTokenTTL     time.Duration
	EnvEncryptionKey   string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubRedirectURI  string
	WorkspaceRoot      string
	DefaultBranch      string
	CloneTimeout       time.Duration
	DetectMaxFiles     int
	DetectMaxLines     int
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":8000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://stack:stack@db:5432/stack?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		AccessTokenTTL:     time.Duration(GetInt("ACCESS_TOKEN_TTL_MIN", 30)) * time.Minute,
		EnvEncryptionKey:   GetString("ENV_ENCRYPTION_KEY", "supersecuresecret"),
		GitHubClientID:     GetString("GITHUB_CLIENT_ID", ""),
		GitHubClientSecret: GetString("GITHUB_CLIENT_SECRET", ""),
		GitHubRedirectURI:  GetString("GITHUB_REDIRECT_URI", "http://localhost:8000/api/auth/github/callback"),
		WorkspaceRoot:      GetString("WORKSPACE_ROOT", ""),
		DefaultBranch:      GetString("DEFAULT_BRANCH", "main"),
		CloneTimeout:       time.Duration(GetInt("CLONE_TIMEOUT_SECONDS", 600)) * time.Second,
		DetectMaxFiles:     GetInt("DETECT_MAX_FILES", 500),
		DetectMaxLines:     GetInt("DETECT_MAX_LINES", 200),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
