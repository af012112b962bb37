package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nakji-network/connector-go/kafka"
)

const (
	// FileName is the configuration file looked up in every search path.
	FileName = "config.yaml"

	// PathEnv names the variable that adds a search directory.
	PathEnv = "CONFIGPATH"

	// SystemDir is the last directory searched.
	SystemDir = "/etc/nakji"
)

// Config is the connector configuration. It is immutable once loaded and
// can be shared by any number of connectors.
type Config struct {
	Kafka         KafkaConfig         `yaml:"kafka"`
	ProtoRegistry ProtoRegistryConfig `yaml:"protoregistry"`

	path string
	root *yaml.Node
}

// KafkaConfig is the kafka section.
type KafkaConfig struct {
	// URL is the broker bootstrap list, comma separated.
	URL string `yaml:"url"`

	// Env is one of test, dev, staging, prod.
	Env kafka.Env `yaml:"env"`
}

// Brokers splits URL into broker addresses.
func (k KafkaConfig) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(k.URL, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ProtoRegistryConfig is the protoregistry section.
type ProtoRegistryConfig struct {
	// Host is the registry base URL. Optional in the dev environment.
	Host string `yaml:"host"`
}

// SearchPaths returns the directories searched for config.yaml, in order:
// the working directory, $CONFIGPATH, $CONFIGPATH/nakji and /etc/nakji.
// CONFIGPATH defaults to ~/.config.
func SearchPaths() []string {
	configPath := os.Getenv(PathEnv)
	if configPath == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configPath = filepath.Join(home, ".config")
		}
	}

	paths := []string{"."}
	if configPath != "" {
		paths = append(paths, configPath, filepath.Join(configPath, "nakji"))
	}
	return append(paths, SystemDir)
}

// Load reads config.yaml from the first search path that has a readable one.
func Load() (*Config, error) {
	return LoadFrom(SearchPaths()...)
}

// LoadFrom reads config.yaml from the first of dirs that has a readable one.
// A file that exists but does not parse is an error; the search does not
// continue past it.
func LoadFrom(dirs ...string) (*Config, error) {
	for _, dir := range dirs {
		path := filepath.Join(dir, FileName)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		cfg, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg.path = path
		return cfg, nil
	}
	return nil, fmt.Errorf("%w in %s", ErrConfigNotFound, strings.Join(dirs, ", "))
}

// LoadFile reads and parses a single configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfigNotFound, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// Parse decodes a configuration document and checks the required keys:
// kafka.url, kafka.env and, outside dev, protoregistry.host.
func Parse(data []byte) (*Config, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: document is not a mapping", ErrInvalidConfig)
	}

	cfg := &Config{root: doc.Content[0]}
	if err := cfg.root.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch {
	case cfg.Kafka.URL == "":
		return nil, fmt.Errorf("%w: kafka.url is required", ErrInvalidConfig)
	case cfg.Kafka.Env == "":
		return nil, fmt.Errorf("%w: kafka.env is required", ErrInvalidConfig)
	case cfg.ProtoRegistry.Host == "" && cfg.Kafka.Env != kafka.EnvDev:
		return nil, fmt.Errorf("%w: protoregistry.host is required in %s", ErrInvalidConfig, cfg.Kafka.Env)
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from, empty for Parse.
func (c *Config) Path() string {
	return c.path
}

// Sub returns the section at a dot-separated key such as "kafka" or
// "connector.ethereum". A missing key yields an empty section.
func (c *Config) Sub(key string) Section {
	return Section{node: c.root}.Sub(key)
}

// Decode decodes the section at key into out. A missing key leaves out
// untouched.
func (c *Config) Decode(key string, out interface{}) error {
	return c.Sub(key).Decode(out)
}

// Section is a read-only view of part of the configuration document.
// Decoding a section copies values out; the shared document never changes.
type Section struct {
	node *yaml.Node
}

// Exists reports whether the section is present in the document.
func (s Section) Exists() bool {
	return s.node != nil
}

// Sub narrows the section to a dot-separated key.
func (s Section) Sub(key string) Section {
	node := s.node
	for _, part := range strings.Split(key, ".") {
		if part == "" {
			continue
		}
		node = child(node, part)
	}
	return Section{node: node}
}

// Decode decodes the section into out.
func (s Section) Decode(out interface{}) error {
	if s.node == nil {
		return nil
	}
	if err := s.node.Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func child(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
