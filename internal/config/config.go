// Package config provides configuration structures and validation for the
// application. It handles environment-based configuration for all major
// components: HTTP server, LINE channel credentials, message queues, ledger
// backends, and the exchange-rate feed.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Ledger backend identifiers accepted by LEDGER_BACKEND.
const (
	LedgerBackendSheets   = "sheets"
	LedgerBackendPostgres = "postgres"
)

// Config holds the complete application configuration with settings for all
// components. Both binaries (webhook gateway and command processor) share
// this struct and validate it during startup.
type Config struct {
	Application ApplicationConfig
	Logging     LoggingConfig
	Server      ServerConfig
	Line        LineConfig
	Kafka       KafkaConfig
	Ledger      LedgerConfig
	Sheets      SheetsConfig
	Postgres    PostgresConfig
	MongoDB     MongoDBConfig
	Rate        RateConfig
	Audit       AuditConfig
	WorkerPool  WorkerPoolConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// LineConfig contains LINE Messaging API channel configuration
type LineConfig struct {
	ChannelSecret      string        // Used to verify webhook signatures
	ChannelAccessToken string        // Bearer token for the reply endpoint
	ReplyEndpoint      string        // Reply API URL
	Timeout            time.Duration // Bound on reply API calls
}

// KafkaConfig contains Kafka configuration
type KafkaConfig struct {
	Brokers           string
	CommandTopic      string
	NumPartitions     int
	ReplicationFactor int
	ConsumerGroup     string
	MinBytes          int
	MaxBytes          int
	MaxWait           time.Duration
	StartOffset       int64
	DLQTopic          string // Topic for Dead Letter Queue
}

// LedgerConfig contains the currency pair, timestamp timezone, and the
// command keyword strings the intent classifier matches against.
type LedgerConfig struct {
	Backend          string // "sheets" or "postgres"
	Currency         string // foreign currency code, e.g. JPY
	HomeCurrency     string // local currency code, e.g. TWD
	TimezoneOffset   int    // hours east of UTC used for timestamping
	DeleteKeyword    string
	TotalKeywords    []string
	TodayKeyword     string
	YesterdayKeyword string
}

// Location returns the fixed timezone used for transaction timestamps and
// for resolving the relative day keywords.
func (c *LedgerConfig) Location() *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", c.TimezoneOffset), c.TimezoneOffset*3600)
}

// SheetsConfig contains the Google Sheets ledger backend configuration
type SheetsConfig struct {
	CredentialsFile string // Service account JSON key file
	SpreadsheetID   string
	SheetName       string
	Timeout         time.Duration // Bound on Sheets API calls
}

// PostgresConfig contains the PostgreSQL ledger backend configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the command audit trail
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// RateConfig contains the exchange-rate feed configuration
type RateConfig struct {
	BaseURL    string        // Bank of Taiwan rate site base URL
	QuoteIndex int           // Index into the quote tuple; 2 selects cash sell
	Timeout    time.Duration // Bound on feed fetches
}

// AuditConfig toggles the MongoDB command audit trail
type AuditConfig struct {
	Enabled bool
}

// WorkerPoolConfig contains worker pool configuration
type WorkerPoolConfig struct {
	Size int // Maximum number of workers in the pool
}

// validate performs comprehensive validation of all configuration values.
// Backend-specific sections are validated only when the corresponding
// backend or feature is selected.
func (c *Config) validate() error {
	var validationErrors []string

	// Validate Server config
	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	// Validate LINE config
	if c.Line.ChannelSecret == "" {
		validationErrors = append(validationErrors, "LINE_CHANNEL_SECRET is required")
	}
	if c.Line.ChannelAccessToken == "" {
		validationErrors = append(validationErrors, "LINE_CHANNEL_ACCESS_TOKEN is required")
	}
	if c.Line.ReplyEndpoint == "" {
		validationErrors = append(validationErrors, "LINE_REPLY_ENDPOINT is required")
	}
	if c.Line.Timeout <= 0 {
		validationErrors = append(validationErrors, "LINE_TIMEOUT must be greater than 0")
	}

	// Validate Kafka config
	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.CommandTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_COMMAND_TOPIC is required")
	}
	if c.Kafka.ConsumerGroup == "" {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_GROUP is required")
	}
	if c.Kafka.MinBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MIN_BYTES must be greater than 0")
	}
	if c.Kafka.MaxBytes <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_BYTES must be greater than 0")
	}
	if c.Kafka.MaxWait <= 0 {
		validationErrors = append(validationErrors, "KAFKA_CONSUMER_MAX_WAIT must be greater than 0")
	}
	if c.Kafka.DLQTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_DLQ_TOPIC is required")
	}

	// Validate Ledger config and the selected backend's section
	switch c.Ledger.Backend {
	case LedgerBackendSheets:
		if c.Sheets.CredentialsFile == "" {
			validationErrors = append(validationErrors, "SHEETS_CREDENTIALS_FILE is required for the sheets backend")
		}
		if c.Sheets.SpreadsheetID == "" {
			validationErrors = append(validationErrors, "SHEETS_SPREADSHEET_ID is required for the sheets backend")
		}
		if c.Sheets.SheetName == "" {
			validationErrors = append(validationErrors, "SHEETS_SHEET_NAME is required for the sheets backend")
		}
		if c.Sheets.Timeout <= 0 {
			validationErrors = append(validationErrors, "SHEETS_TIMEOUT must be greater than 0")
		}
	case LedgerBackendPostgres:
		if c.Postgres.URL == "" {
			validationErrors = append(validationErrors, "POSTGRES_URL is required for the postgres backend")
		}
		if c.Postgres.MaxConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
		}
		if c.Postgres.MinConns <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
		}
		if c.Postgres.ConnMaxLifetime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
		}
		if c.Postgres.ConnMaxIdleTime <= 0 {
			validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
		}
	default:
		validationErrors = append(validationErrors, "LEDGER_BACKEND must be either 'sheets' or 'postgres'")
	}
	if len(c.Ledger.Currency) != 3 {
		validationErrors = append(validationErrors, "LEDGER_CURRENCY must be a 3-letter code")
	}
	if len(c.Ledger.HomeCurrency) != 3 {
		validationErrors = append(validationErrors, "LEDGER_HOME_CURRENCY must be a 3-letter code")
	}
	if c.Ledger.DeleteKeyword == "" {
		validationErrors = append(validationErrors, "LEDGER_DELETE_KEYWORD is required")
	}
	if len(c.Ledger.TotalKeywords) == 0 {
		validationErrors = append(validationErrors, "LEDGER_TOTAL_KEYWORDS is required")
	}
	if c.Ledger.TodayKeyword == "" {
		validationErrors = append(validationErrors, "LEDGER_TODAY_KEYWORD is required")
	}
	if c.Ledger.YesterdayKeyword == "" {
		validationErrors = append(validationErrors, "LEDGER_YESTERDAY_KEYWORD is required")
	}

	// Validate MongoDB config, only consulted when auditing is enabled
	if c.Audit.Enabled {
		if c.MongoDB.URI == "" {
			validationErrors = append(validationErrors, "MONGO_URI is required when auditing is enabled")
		}
		if c.MongoDB.Database == "" {
			validationErrors = append(validationErrors, "MONGO_DATABASE is required when auditing is enabled")
		}
		if c.MongoDB.Timeout <= 0 {
			validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
		}
		if c.MongoDB.MaxPoolSize <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
		}
		if c.MongoDB.MinPoolSize <= 0 {
			validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
		}
		if c.MongoDB.MaxConnIdleTime <= 0 {
			validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
		}
	}

	// Validate Rate config
	if c.Rate.BaseURL == "" {
		validationErrors = append(validationErrors, "RATE_BASE_URL is required")
	}
	if c.Rate.QuoteIndex <= 0 {
		validationErrors = append(validationErrors, "RATE_QUOTE_INDEX must be greater than 0")
	}
	if c.Rate.Timeout <= 0 {
		validationErrors = append(validationErrors, "RATE_TIMEOUT must be greater than 0")
	}

	// Validate WorkerPool config
	if c.WorkerPool.Size <= 0 {
		validationErrors = append(validationErrors, "WORKER_POOL_SIZE must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
