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
	Cart         CartConfig
	Restock      RestockConfig
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
	Env          string `envconfig:"CAISSE_APP_ENV" required:"true"`
	Port         string `envconfig:"CAISSE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"CAISSE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CAISSE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"CAISSE_DB_DSN"`
	Driver string `envconfig:"CAISSE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"CAISSE_DB_HOST"`
	LegacyPort     int    `envconfig:"CAISSE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"CAISSE_DB_USER"`
	LegacyPassword string `envconfig:"CAISSE_DB_PASSWORD"`
	LegacyName     string `envconfig:"CAISSE_DB_NAME"`
	LegacySSLMode  string `envconfig:"CAISSE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"CAISSE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"CAISSE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"CAISSE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"CAISSE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"CAISSE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"CAISSE_REDIS_ADDR"`
	Password     string        `envconfig:"CAISSE_REDIS_PASSWORD"`
	DB           int           `envconfig:"CAISSE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"CAISSE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"CAISSE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"CAISSE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"CAISSE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"CAISSE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// CartConfig tunes the session-scoped cart storage.
type CartConfig struct {
	SessionTTL time.Duration `envconfig:"CAISSE_CART_SESSION_TTL" default:"12h"`
}

// RestockConfig carries the fixed-threshold restock rule defaults.
type RestockConfig struct {
	ThresholdMin int `envconfig:"CAISSE_RESTOCK_THRESHOLD_MIN" default:"5"`
	TargetStock  int `envconfig:"CAISSE_RESTOCK_TARGET_STOCK" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"CAISSE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"CAISSE_AUTO_MIGRATE" default:"false"`
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
