package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Cache         CacheConfig
	Media         MediaConfig
	Blog          BlogConfig
	Tasks         TasksConfig
	Mail          MailConfig
	Admin         AdminBootstrapConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string   `envconfig:"IACOL_APP_ENV" required:"true"`
	Port         string   `envconfig:"IACOL_APP_PORT" required:"true"`
	BaseURL      string   `envconfig:"IACOL_APP_BASE_URL" default:"http://localhost:8080"`
	LogLevel     string   `envconfig:"IACOL_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"IACOL_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"IACOL_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:8000,https://iacol.co,https://www.iacol.co"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type ServiceConfig struct {
	Kind string `envconfig:"IACOL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"IACOL_DB_DSN"`
	Driver string `envconfig:"IACOL_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"IACOL_DB_HOST"`
	Port     int    `envconfig:"IACOL_DB_PORT" default:"5432"`
	User     string `envconfig:"IACOL_DB_USER"`
	Password string `envconfig:"IACOL_DB_PASSWORD"`
	Name     string `envconfig:"IACOL_DB_NAME"`
	SSLMode  string `envconfig:"IACOL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"IACOL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"IACOL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"IACOL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"IACOL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"IACOL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"IACOL_REDIS_ADDR"`
	Password     string        `envconfig:"IACOL_REDIS_PASSWORD"`
	DB           int           `envconfig:"IACOL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"IACOL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"IACOL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"IACOL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"IACOL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"IACOL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"IACOL_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"IACOL_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"IACOL_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"IACOL_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"IACOL_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"IACOL_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"IACOL_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"IACOL_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"IACOL_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"IACOL_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIPLimit    int           `envconfig:"IACOL_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit int           `envconfig:"IACOL_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow  time.Duration `envconfig:"IACOL_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterIPLimit int           `envconfig:"IACOL_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite          bool `envconfig:"IACOL_USE_SQLITE" default:"false"`
	AllowDevMigrations bool `envconfig:"IACOL_AUTO_MIGRATE" default:"false"`
}

type CacheConfig struct {
	TTL time.Duration `envconfig:"IACOL_CACHE_TTL" default:"5m"`
}

type MediaConfig struct {
	Root           string        `envconfig:"IACOL_MEDIA_ROOT" default:"media"`
	TempDir        string        `envconfig:"IACOL_MEDIA_TEMP_DIR"`
	MaxUploadMB    int           `envconfig:"IACOL_MAX_UPLOAD_MB" default:"10"`
	RemoteMaxMB    int           `envconfig:"IACOL_MEDIA_REMOTE_MAX_MB" default:"10"`
	RemoteTimeout  time.Duration `envconfig:"IACOL_MEDIA_REMOTE_TIMEOUT" default:"10s"`
	PublicURLPath  string        `envconfig:"IACOL_MEDIA_PUBLIC_PATH" default:"/api/media"`
	CacheMaxAgeSec int           `envconfig:"IACOL_MEDIA_CACHE_MAX_AGE" default:"86400"`
}

// MaxUploadBytes returns the direct-upload cap in bytes.
func (m MediaConfig) MaxUploadBytes() int64 {
	return int64(m.MaxUploadMB) << 20
}

// RemoteMaxBytes returns the remote-fetch cap in bytes.
func (m MediaConfig) RemoteMaxBytes() int64 {
	return int64(m.RemoteMaxMB) << 20
}

type BlogConfig struct {
	APIRateLimit    int           `envconfig:"IACOL_BLOG_API_RATE_LIMIT" default:"10"`
	APIRateWindow   time.Duration `envconfig:"IACOL_BLOG_API_RATE_WINDOW" default:"1m"`
	Base64MaxMB     int           `envconfig:"IACOL_BLOG_BASE64_MAX_MB" default:"5"`
	DefaultPageSize int           `envconfig:"IACOL_BLOG_PAGE_SIZE" default:"9"`
}

type TasksConfig struct {
	QueueKey     string        `envconfig:"IACOL_TASKS_QUEUE_KEY" default:"tasks"`
	Concurrency  int           `envconfig:"IACOL_TASKS_CONCURRENCY" default:"2"`
	PollTimeout  time.Duration `envconfig:"IACOL_TASKS_POLL_TIMEOUT" default:"5s"`
	HeavyTimeout time.Duration `envconfig:"IACOL_TASKS_HEAVY_TIMEOUT" default:"5m"`

	// Maintenance jobs (subscription expiry) run on this cadence under a Redis lease.
	ScheduleInterval time.Duration `envconfig:"IACOL_TASKS_SCHEDULE_INTERVAL" default:"1h"`
	ScheduleLockTTL  time.Duration `envconfig:"IACOL_TASKS_SCHEDULE_LOCK_TTL" default:"10m"`

	// Worker /metrics listener; empty disables it.
	MetricsAddr string `envconfig:"IACOL_TASKS_METRICS_ADDR" default:":9091"`
}

type MailConfig struct {
	SMTPHost    string `envconfig:"IACOL_SMTP_HOST"`
	SMTPPort    int    `envconfig:"IACOL_SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"IACOL_SMTP_USER"`
	SMTPPass    string `envconfig:"IACOL_SMTP_PASSWORD"`
	DefaultFrom string `envconfig:"IACOL_MAIL_FROM" default:"no-reply@iacol.co"`
}

// Enabled reports whether outbound SMTP is configured.
func (m MailConfig) Enabled() bool {
	return strings.TrimSpace(m.SMTPHost) != ""
}

type AdminBootstrapConfig struct {
	Email    string `envconfig:"IACOL_ADMIN_EMAIL"`
	Password string `envconfig:"IACOL_ADMIN_PASSWORD"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	partValues := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range dbPartEnvVars {
		if partValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
