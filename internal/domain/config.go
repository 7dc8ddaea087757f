package domain

import "time"

// Config holds the complete dashboard configuration.
type Config struct {
	Server ServerConfig `json:"server"`

	// Validation selects the strictness variants for the format validators.
	Validation ValidationConfig `json:"validation"`

	Sessions   SessionStoreConfig `json:"sessions"`
	Repository RepositoryConfig   `json:"repository"`
	EventBus   EventBusConfig     `json:"eventBus"`

	// OCR configures the external text-extraction collaborator.
	OCR OCRConfig `json:"ocr"`

	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds
}

// ValidationConfig selects between the two observed strictness shapes for
// the tax-ID and business-registration validators. Strict requires the full
// string to match the template; lenient only anchors the start and, for
// registration numbers, accepts a trailing letter where strict requires a
// digit.
type ValidationConfig struct {
	StrictTaxID        bool `json:"strictTaxId"`
	StrictRegistration bool `json:"strictRegistration"`
}

// SessionStoreConfig holds configuration for the session store.
type SessionStoreConfig struct {
	// Type is the store type: "memory" or "redis"
	Type string `json:"type"`

	// Memory store settings
	MaxSessions int           `json:"maxSessions"`
	TTL         time.Duration `json:"ttl"`

	// Redis settings
	RedisAddr     string `json:"redisAddr"`
	RedisPassword string `json:"-"`
	RedisDB       int    `json:"redisDb"`
}

// RepositoryConfig holds configuration for the audit repository.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `json:"driver"`

	// SQLite specific
	SQLitePath string `json:"sqlitePath"`

	// PostgreSQL specific
	PostgresHost     string `json:"postgresHost"`
	PostgresPort     int    `json:"postgresPort"`
	PostgresUser     string `json:"postgresUser"`
	PostgresPassword string `json:"-"`
	PostgresDB       string `json:"postgresDb"`
	PostgresSSLMode  string `json:"postgresSslMode"`

	// Connection pool settings
	MaxOpenConns    int           `json:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime"`
}

// EventBusConfig holds configuration for event bus initialization.
type EventBusConfig struct {
	// Type is the bus type: "channel" or "nats"
	Type string `json:"type"`

	// Channel settings
	ChannelBufferSize int `json:"channelBufferSize"`

	// NATS settings
	NATSUrl           string `json:"natsUrl"`
	NATSToken         string `json:"-"`
	NATSMaxReconnects int    `json:"natsMaxReconnects"`
	NATSReconnectWait int    `json:"natsReconnectWait"` // seconds
}

// OCRConfig holds settings for the text-extraction service.
type OCRConfig struct {
	// Endpoint is the URL of the extraction service. Image-based
	// verification endpoints are disabled when empty.
	Endpoint string `json:"endpoint"`

	// Timeout for one extraction call, in seconds.
	Timeout int `json:"timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// DefaultConfig returns a configuration suitable for a single-node
// deployment: in-memory sessions, SQLite audit trail, channel bus.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30,
			WriteTimeout: 30,
		},
		Validation: ValidationConfig{
			StrictTaxID:        true,
			StrictRegistration: true,
		},
		Sessions: SessionStoreConfig{
			Type:        "memory",
			MaxSessions: 10000,
			TTL:         time.Hour,
		},
		Repository: RepositoryConfig{
			Driver:     "sqlite",
			SQLitePath: "./frauddetect.db",
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		OCR: OCRConfig{
			Timeout: 30,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "frauddetect",
		},
	}
}

// DistributedConfig returns a configuration for a multi-node deployment:
// Redis-backed sessions, PostgreSQL audit trail, NATS bus.
func DistributedConfig() *Config {
	cfg := DefaultConfig()
	cfg.Sessions = SessionStoreConfig{
		Type:      "redis",
		RedisAddr: "localhost:6379",
		TTL:       time.Hour,
	}
	cfg.Repository = RepositoryConfig{
		Driver:       "postgres",
		PostgresHost: "localhost",
		PostgresPort: 5432,
		PostgresDB:   "frauddetect",
	}
	cfg.EventBus = EventBusConfig{
		Type:              "nats",
		NATSUrl:           "nats://localhost:4222",
		NATSMaxReconnects: 10,
		NATSReconnectWait: 5,
	}
	cfg.Tracing.Enabled = true
	return cfg
}
