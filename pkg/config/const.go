package config

const (
	// EnvPrefix namespaces every environment variable consumed by the app.
	EnvPrefix = "ATTARHOUSE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ATTARHOUSE_DB_DSN"
	EnvDBHost = "ATTARHOUSE_DB_HOST"
	EnvDBUser = "ATTARHOUSE_DB_USER"
	EnvDBName = "ATTARHOUSE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
