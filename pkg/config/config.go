package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "authsys"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	Password PasswordConfig
	Redis    RedisConfig
	CORS     CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"AUTHSYS_APP_ENV" default:"development"`
	Port         string `envconfig:"AUTHSYS_APP_PORT" default:"8000"`
	LogLevel     string `envconfig:"AUTHSYS_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"AUTHSYS_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Driver string `envconfig:"AUTHSYS_DB_DRIVER" default:"sqlite"`

	SQLiteDir  string `envconfig:"AUTHSYS_SQLITE_DIR" default:"database"`
	SQLiteFile string `envconfig:"AUTHSYS_SQLITE_FILE" default:"app.db"`

	Host     string `envconfig:"AUTHSYS_POSTGRES_HOST" default:"localhost"`
	Port     int    `envconfig:"AUTHSYS_POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"AUTHSYS_POSTGRES_USER" default:"postgres"`
	Password string `envconfig:"AUTHSYS_POSTGRES_PASSWORD" default:"postgres"`
	Name     string `envconfig:"AUTHSYS_POSTGRES_DB" default:"authsys"`
	SSLMode  string `envconfig:"AUTHSYS_POSTGRES_SSLMODE" default:"disable"`

	PoolSize        int           `envconfig:"AUTHSYS_DB_POOL_SIZE" default:"5"`
	MaxOverflow     int           `envconfig:"AUTHSYS_DB_MAX_OVERFLOW" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"AUTHSYS_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"AUTHSYS_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	ConnectTimeout  time.Duration `envconfig:"AUTHSYS_DB_CONNECT_TIMEOUT" default:"5s"`
}

func (db DBConfig) validate() error {
	switch strings.ToLower(db.Driver) {
	case DriverSQLite, DriverPostgres:
		return nil
	}
	return fmt.Errorf("unsupported db driver %q", db.Driver)
}

// PostgresDSN builds the connection URL for the configured target database.
func (db DBConfig) PostgresDSN() string {
	return db.postgresURL(db.Name)
}

// PostgresAdminDSN targets the server's maintenance database, used for the
// create-database-if-missing step before the target database exists.
func (db DBConfig) PostgresAdminDSN() string {
	return db.postgresURL("postgres")
}

func (db DBConfig) postgresURL(name string) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(db.User, db.Password),
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   name,
	}
	q := u.Query()
	if db.SSLMode != "" {
		q.Set("sslmode", db.SSLMode)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type JWTConfig struct {
	Secret            string `envconfig:"AUTHSYS_JWT_SECRET" default:"change-me-in-production"`
	Algorithm         string `envconfig:"AUTHSYS_JWT_ALGORITHM" default:"HS256"`
	Issuer            string `envconfig:"AUTHSYS_JWT_ISSUER" default:"authsys"`
	ExpirationMinutes int    `envconfig:"AUTHSYS_ACCESS_TOKEN_EXPIRE_MINUTES" default:"30"`
}

// TTL returns the access token lifetime.
func (j JWTConfig) TTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"AUTHSYS_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"AUTHSYS_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"AUTHSYS_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"AUTHSYS_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"AUTHSYS_ARGON_KEY_LEN" default:"32"`
}

// RedisConfig is optional; an empty URL disables the idempotency store.
type RedisConfig struct {
	URL          string        `envconfig:"AUTHSYS_REDIS_URL"`
	DialTimeout  time.Duration `envconfig:"AUTHSYS_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"AUTHSYS_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"AUTHSYS_REDIS_WRITE_TIMEOUT" default:"5s"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"AUTHSYS_CORS_ORIGINS" default:"http://localhost:8080"`
}
