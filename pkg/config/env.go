package config

const (
	EnvPrefix = "IACOL"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "IACOL_APP_ENV"
	EnvPort     = "IACOL_APP_PORT"
	EnvLogLevel = "IACOL_LOG_LEVEL"

	EnvDBDSN  = "IACOL_DB_DSN"
	EnvDBHost = "IACOL_DB_HOST"
	EnvDBUser = "IACOL_DB_USER"
	EnvDBName = "IACOL_DB_NAME"

	EnvRedisURL = "IACOL_REDIS_URL"

	EnvJWTSecret              = "IACOL_JWT_SECRET"
	EnvJWTIssuer              = "IACOL_JWT_ISSUER"
	EnvJWTExpMins             = "IACOL_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "IACOL_REFRESH_TOKEN_TTL_MINUTES"

	EnvCacheTTL      = "IACOL_CACHE_TTL"
	EnvMediaRoot     = "IACOL_MEDIA_ROOT"
	EnvRemoteMaxMB   = "IACOL_MEDIA_REMOTE_MAX_MB"
	EnvRemoteTimeout = "IACOL_MEDIA_REMOTE_TIMEOUT"
	EnvBlogRateLimit = "IACOL_BLOG_API_RATE_LIMIT"
)

var dbPartEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
