package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	Idempotency  IdempotencyConfig
	Reporting    ReportingConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"REEFERTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"REEFERTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"REEFERTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"REEFERTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"REEFERTRACK_DB_DSN"`
	Driver string `envconfig:"REEFERTRACK_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"REEFERTRACK_DB_HOST"`
	LegacyPort     int    `envconfig:"REEFERTRACK_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"REEFERTRACK_DB_USER"`
	LegacyPassword string `envconfig:"REEFERTRACK_DB_PASSWORD"`
	LegacyName     string `envconfig:"REEFERTRACK_DB_NAME"`
	LegacySSLMode  string `envconfig:"REEFERTRACK_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"REEFERTRACK_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"REEFERTRACK_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"REEFERTRACK_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"REEFERTRACK_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"REEFERTRACK_REDIS_URL" required:"true"`
	Address      string        `envconfig:"REEFERTRACK_REDIS_ADDR"`
	Password     string        `envconfig:"REEFERTRACK_REDIS_PASSWORD"`
	DB           int           `envconfig:"REEFERTRACK_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"REEFERTRACK_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"REEFERTRACK_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"REEFERTRACK_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"REEFERTRACK_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"REEFERTRACK_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig configures bearer-token verification. The token issuer lives in a
// separate identity service; when Secret is empty the API falls back to the
// X-User-Role header set by the gateway.
type JWTConfig struct {
	Secret string `envconfig:"REEFERTRACK_JWT_SECRET"`
	Issuer string `envconfig:"REEFERTRACK_JWT_ISSUER"`
}

func (j JWTConfig) Enabled() bool {
	return j.Secret != ""
}

type RateLimitConfig struct {
	MutationWindow time.Duration `envconfig:"REEFERTRACK_RATE_LIMIT_MUTATION_WINDOW" default:"1m"`
	MutationLimit  int           `envconfig:"REEFERTRACK_RATE_LIMIT_MUTATION_LIMIT" default:"60"`
}

type IdempotencyConfig struct {
	TTL time.Duration `envconfig:"REEFERTRACK_IDEMPOTENCY_TTL" default:"24h"`
}

// ReportingConfig sets the local timezone used for day windows in the
// processed-by-day listing and the dashboard aggregates.
type ReportingConfig struct {
	Timezone string `envconfig:"REEFERTRACK_REPORTING_TIMEZONE" default:"America/Lima"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"REEFERTRACK_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"REEFERTRACK_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
