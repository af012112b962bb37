package kafka

import (
	"context"
	"time"
)

// Config configures a TransactionalProducer. Zero values are replaced by the
// Default* constants.
type Config struct {
	// Brokers is the list of bootstrap broker addresses.
	Brokers []string `yaml:"brokers"`

	// TransactionalID identifies this producer to the transaction
	// coordinator. Exactly one live producer may hold a given id.
	TransactionalID string `yaml:"transactional_id"`

	// Linger is how long the client batches records before sending.
	// Default: 2s
	Linger time.Duration `yaml:"linger"`

	// RequestTimeout bounds a single broker request.
	// Default: 60s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// TransactionTimeout is the longest a transaction may stay open before
	// the coordinator aborts it.
	// Default: 10m
	TransactionTimeout time.Duration `yaml:"transaction_timeout"`

	// CompressionCodec is one of none, gzip, snappy, lz4, zstd.
	// Default: snappy
	CompressionCodec string `yaml:"compression_codec"`

	// Debug is passed to the client's debug property, e.g. "all" or
	// "eos,broker". Empty disables client debug logging.
	Debug string `yaml:"debug"`

	// InitTimeout bounds transaction initialization.
	// Default: 3s
	InitTimeout time.Duration `yaml:"init_timeout"`

	// CommitTimeout bounds a single commit attempt.
	// Default: 10s
	CommitTimeout time.Duration `yaml:"commit_timeout"`

	// AbortTimeout bounds an abort.
	// Default: 10s
	AbortTimeout time.Duration `yaml:"abort_timeout"`

	// FlushTimeout bounds the flush on close and on fatal shutdown.
	// Default: 15s
	FlushTimeout time.Duration `yaml:"flush_timeout"`

	// MaxCommitAttempts caps commit attempts on retriable errors.
	// Default: 5
	MaxCommitAttempts int `yaml:"max_commit_attempts"`

	// CommitRetryInterval is the first wait between commit attempts. Later
	// waits grow exponentially up to CommitRetryMaxInterval.
	// Default: 200ms
	CommitRetryInterval time.Duration `yaml:"commit_retry_interval"`

	// CommitRetryMaxInterval caps the wait between commit attempts.
	// Default: 5s
	CommitRetryMaxInterval time.Duration `yaml:"commit_retry_max_interval"`

	// MaxCommitElapsed caps the total time spent retrying one commit.
	// Default: 1m
	MaxCommitElapsed time.Duration `yaml:"max_commit_elapsed"`

	// TLS contains TLS/SSL configuration
	TLS TLSConfig `yaml:"tls"`

	// SASL contains SASL authentication configuration
	SASL SASLConfig `yaml:"sasl"`

	// Properties are extra client properties applied last, e.g.
	// {"message.max.bytes": "2000000"}.
	Properties map[string]string `yaml:"properties"`
}

// Logger is the logging surface the producer needs. *logger.LoggerClient
// satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// TLSConfig contains TLS/SSL configuration parameters.
type TLSConfig struct {
	// Enabled determines whether to use TLS/SSL for the connection
	Enabled bool `yaml:"enabled"`

	// CACertPath is the file path to the CA certificate for verifying the broker
	CACertPath string `yaml:"ca_cert_path"`

	// ClientCertPath is the file path to the client certificate
	ClientCertPath string `yaml:"client_cert_path"`

	// ClientKeyPath is the file path to the client certificate's private key
	ClientKeyPath string `yaml:"client_key_path"`

	// InsecureSkipVerify disables broker certificate verification.
	// Testing only.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// SASLConfig contains SASL authentication configuration parameters.
type SASLConfig struct {
	// Enabled determines whether to use SASL authentication
	Enabled bool `yaml:"enabled"`

	// Mechanism is one of "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512".
	Mechanism string `yaml:"mechanism"`

	Username string `yaml:"username"`
	Password string `yaml:"password"` //nolint:gosec
}

// Default values for configuration
const (
	DefaultLinger                 = 2 * time.Second
	DefaultRequestTimeout         = 60 * time.Second
	DefaultTransactionTimeout     = 10 * time.Minute
	DefaultCompressionCodec       = "snappy"
	DefaultInitTimeout            = 3 * time.Second
	DefaultCommitTimeout          = 10 * time.Second
	DefaultAbortTimeout           = 10 * time.Second
	DefaultFlushTimeout           = 15 * time.Second
	DefaultMaxCommitAttempts      = 5
	DefaultCommitRetryInterval    = 200 * time.Millisecond
	DefaultCommitRetryMaxInterval = 5 * time.Second
	DefaultMaxCommitElapsed       = time.Minute
)

// withDefaults returns cfg with zero fields replaced by defaults.
func (cfg Config) withDefaults() Config {
	if cfg.Linger == 0 {
		cfg.Linger = DefaultLinger
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.TransactionTimeout == 0 {
		cfg.TransactionTimeout = DefaultTransactionTimeout
	}
	if cfg.CompressionCodec == "" {
		cfg.CompressionCodec = DefaultCompressionCodec
	}
	if cfg.InitTimeout == 0 {
		cfg.InitTimeout = DefaultInitTimeout
	}
	if cfg.CommitTimeout == 0 {
		cfg.CommitTimeout = DefaultCommitTimeout
	}
	if cfg.AbortTimeout == 0 {
		cfg.AbortTimeout = DefaultAbortTimeout
	}
	if cfg.FlushTimeout == 0 {
		cfg.FlushTimeout = DefaultFlushTimeout
	}
	if cfg.MaxCommitAttempts <= 0 {
		cfg.MaxCommitAttempts = DefaultMaxCommitAttempts
	}
	if cfg.CommitRetryInterval == 0 {
		cfg.CommitRetryInterval = DefaultCommitRetryInterval
	}
	if cfg.CommitRetryMaxInterval == 0 {
		cfg.CommitRetryMaxInterval = DefaultCommitRetryMaxInterval
	}
	if cfg.MaxCommitElapsed == 0 {
		cfg.MaxCommitElapsed = DefaultMaxCommitElapsed
	}
	return cfg
}
