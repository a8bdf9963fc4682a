package config

const (
	EnvPrefix = "REEFERTRACK"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "REEFERTRACK_APP_ENV"
	EnvAppPort  = "REEFERTRACK_APP_PORT"
	EnvLogLevel = "REEFERTRACK_LOG_LEVEL"

	EnvDBDSN  = "REEFERTRACK_DB_DSN"
	EnvDBHost = "REEFERTRACK_DB_HOST"
	EnvDBPort = "REEFERTRACK_DB_PORT"
	EnvDBUser = "REEFERTRACK_DB_USER"
	EnvDBPass = "REEFERTRACK_DB_PASSWORD"
	EnvDBName = "REEFERTRACK_DB_NAME"

	EnvRedisURL = "REEFERTRACK_REDIS_URL"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
