package schema_registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"

	"github.com/nakji-network/connector-go/kafka"
	"github.com/nakji-network/connector-go/observability"
)

// RegisterPath is appended to the registry host for register requests.
const RegisterPath = "/v1/register"

// DefaultTimeout bounds a register request.
const DefaultTimeout = 10 * time.Second

// Descriptor resolver kinds accepted in Config.Resolver.
const (
	ResolverProtoc   = "protoc"
	ResolverRegistry = "registry"
)

// maxLoggedBody caps how much of a registry response ends up in the log.
const maxLoggedBody = 4096

// Registrar registers the schemas of a connector's event types.
//
// This interface is implemented by *Client.
type Registrar interface {
	// RegisterSchemas announces which protobuf message each topic carries.
	// It does nothing in the dev environment.
	RegisterSchemas(ctx context.Context, env kafka.Env, msgType kafka.MessageType, topics map[kafka.Topic]proto.Message) error
}

// Client talks to the protoregistry service.
type Client struct {
	host       string
	httpClient *http.Client
	resolver   DescriptorResolver

	username string
	password string

	// observer provides optional observability hooks for tracking operations
	observer observability.Observer

	// logger provides optional context-aware logging capabilities
	logger Logger
}

// Config holds configuration for the registry client.
type Config struct {
	// Host is the registry base URL, e.g. "http://protoregistry:8080".
	// Only required outside the dev environment.
	Host string `yaml:"host"`

	// Timeout for HTTP requests. Defaults to DefaultTimeout.
	Timeout time.Duration `yaml:"timeout"`

	// Resolver selects how descriptor sets are produced: "protoc" (default)
	// compiles the .proto sources found under ProtoRoot, "registry" uses
	// the descriptors linked into the binary.
	Resolver string `yaml:"resolver"`

	// ProtoRoot is searched for .proto files by the protoc resolver.
	// Defaults to the working directory.
	ProtoRoot string `yaml:"proto_root"`

	// Username for basic auth (optional)
	Username string `yaml:"username"`

	// Password for basic auth (optional)
	Password string `yaml:"password" json:"-"` //nolint:gosec
}

// Logger is the logging surface the client needs. *logger.LoggerClient
// satisfies it.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// NewClient creates a registry client. An empty Host is accepted so that
// dev deployments need no registry at all.
func NewClient(config Config) (*Client, error) {
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	var resolver DescriptorResolver
	switch strings.ToLower(config.Resolver) {
	case "", ResolverProtoc:
		resolver = ProtocResolver{Root: config.ProtoRoot}
	case ResolverRegistry:
		resolver = RegistryResolver{}
	default:
		return nil, fmt.Errorf("%w: unknown resolver %q", ErrInvalidConfig, config.Resolver)
	}

	return &Client{
		host: strings.TrimRight(config.Host, "/"),
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		resolver: resolver,
		username: config.Username,
		password: config.Password,
	}, nil
}

// WithResolver replaces the descriptor resolver chosen from Config.
func (c *Client) WithResolver(r DescriptorResolver) *Client {
	c.resolver = r
	return c
}

// WithObserver sets an observer for tracking operations
func (c *Client) WithObserver(observer observability.Observer) *Client {
	c.observer = observer
	return c
}

// WithLogger sets a logger for context-aware logging
func (c *Client) WithLogger(logger Logger) *Client {
	c.logger = logger
	return c
}

// Host returns the registry base URL.
func (c *Client) Host() string {
	return c.host
}

// RegisterSchemas builds one Record per topic and posts them as a single
// JSON array to Host + RegisterPath. In the dev environment it only logs.
func (c *Client) RegisterSchemas(ctx context.Context, env kafka.Env, msgType kafka.MessageType, topics map[kafka.Topic]proto.Message) error {
	if env == kafka.EnvDev {
		c.logInfo(ctx, "Schema registration skipped in dev environment", map[string]interface{}{
			"msg_type": msgType.String(),
			"topics":   len(topics),
		})
		return nil
	}

	start := time.Now()
	if c.host == "" {
		err := fmt.Errorf("%w: registry host is required outside dev", ErrInvalidConfig)
		c.observeOperation("register", "", msgType.String(), time.Since(start), err, 0, nil)
		return err
	}

	records, err := BuildRecords(ctx, msgType, topics, observedResolver{client: c, next: c.resolver})
	if err != nil {
		c.observeOperation("register", c.host, msgType.String(), time.Since(start), err, 0, nil)
		c.logError(ctx, "Failed to resolve descriptors", err, nil)
		return err
	}

	status, err := c.post(ctx, records)
	metadata := map[string]interface{}{"status_code": status}
	c.observeOperation("register", c.host, msgType.String(), time.Since(start), err, int64(len(records)), metadata)
	if err != nil {
		c.logError(ctx, "Schema registration failed", err, map[string]interface{}{
			"host":    c.host,
			"records": len(records),
		})
		return err
	}
	return nil
}

func (c *Client) post(ctx context.Context, records []Record) (int, error) {
	body, err := json.Marshal(records)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal records: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+RegisterPath, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRegistrationTransport, err)
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.password)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req) //nolint:gosec
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRegistrationTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	c.logInfo(ctx, "Schema registry response", map[string]interface{}{
		"status_code": resp.StatusCode,
		"body":        string(respBody),
		"records":     len(records),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, fmt.Errorf("%w: status %d: %s", ErrRegistrationTransport, resp.StatusCode, bytes.TrimSpace(respBody))
	}
	return resp.StatusCode, nil
}

// logInfo logs an informational message if a logger is configured
func (c *Client) logInfo(ctx context.Context, msg string, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.InfoWithContext(ctx, msg, nil, fields)
	}
}

// logError logs an error message if a logger is configured
func (c *Client) logError(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	if c.logger != nil {
		c.logger.ErrorWithContext(ctx, msg, err, fields)
	}
}
