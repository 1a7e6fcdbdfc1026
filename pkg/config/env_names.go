package config

// EnvPrefix is the envconfig prefix for all boutique-caisse settings.
const EnvPrefix = "CAISSE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "CAISSE_APP_ENV"
	EnvPort     = "CAISSE_APP_PORT"
	EnvDBDSN    = "CAISSE_DB_DSN"
	EnvDBHost   = "CAISSE_DB_HOST"
	EnvDBUser   = "CAISSE_DB_USER"
	EnvDBName   = "CAISSE_DB_NAME"
	EnvRedisURL = "CAISSE_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
