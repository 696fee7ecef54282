package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "COLLAB_DB_DSN"
	EnvDBHost = "COLLAB_DB_HOST"
	EnvDBUser = "COLLAB_DB_USER"
	EnvDBName = "COLLAB_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	FeatureFlags  FeatureFlagsConfig
	Eventing      EventingConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	SMTP          SMTPConfig
	Digest        DigestConfig
	Notifications NotificationsConfig
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
	Env          string `envconfig:"COLLAB_APP_ENV" required:"true"`
	Port         string `envconfig:"COLLAB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"COLLAB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COLLAB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"COLLAB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"COLLAB_DB_DSN"`
	Driver string `envconfig:"COLLAB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"COLLAB_DB_HOST"`
	LegacyPort     int    `envconfig:"COLLAB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"COLLAB_DB_USER"`
	LegacyPassword string `envconfig:"COLLAB_DB_PASSWORD"`
	LegacyName     string `envconfig:"COLLAB_DB_NAME"`
	LegacySSLMode  string `envconfig:"COLLAB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COLLAB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COLLAB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COLLAB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COLLAB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COLLAB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"COLLAB_REDIS_ADDR"`
	Password     string        `envconfig:"COLLAB_REDIS_PASSWORD"`
	DB           int           `envconfig:"COLLAB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COLLAB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COLLAB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COLLAB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COLLAB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COLLAB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"COLLAB_AUTO_MIGRATE" default:"false"`
}

type EventingConfig struct {
	IdempotencyTTL time.Duration `envconfig:"COLLAB_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"COLLAB_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"COLLAB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"COLLAB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainEventsTopic        string `envconfig:"COLLAB_PUBSUB_DOMAIN_EVENTS_TOPIC" default:"collab-domain-events"`
	DomainEventsSubscription string `envconfig:"COLLAB_PUBSUB_DOMAIN_EVENTS_SUBSCRIPTION" required:"true"`
}

type SMTPConfig struct {
	Host          string `envconfig:"COLLAB_SMTP_HOST"`
	Port          int    `envconfig:"COLLAB_SMTP_PORT" default:"587"`
	Username      string `envconfig:"COLLAB_SMTP_USER"`
	Password      string `envconfig:"COLLAB_SMTP_PASS"`
	From          string `envconfig:"COLLAB_SMTP_FROM"`
	SkipTLSVerify bool   `envconfig:"COLLAB_SMTP_SKIP_TLS_VERIFY" default:"false"`
}

type DigestConfig struct {
	Interval      time.Duration `envconfig:"COLLAB_DIGEST_INTERVAL" default:"24h"`
	RetentionDays int           `envconfig:"COLLAB_NOTIFICATION_RETENTION_DAYS" default:"90"`
}

type NotificationsConfig struct {
	// Languages lists the locales every reminder message is rendered in.
	Languages []string `envconfig:"COLLAB_NOTIFICATION_LANGUAGES" default:"en,fr"`
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
