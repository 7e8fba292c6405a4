// Package config describes how the publisher reaches DynamoDB.
//
// Configuration is loaded from a single YAML file given by the --config flag or
// the SPLIT_TOKEN_PUBLISHER_CONFIG environment variable. There is no discovery
// of other locations.
package config

import (
	"os"
	"strings"

	"emperror.dev/errors"
	"gopkg.in/yaml.v3"

	"github.com/chukul/split-token-publisher/internal/apperr"
	"github.com/chukul/split-token-publisher/internal/secret"
	"github.com/chukul/split-token-publisher/internal/token"
)

const (
	EnvConfigPath = "SPLIT_TOKEN_PUBLISHER_CONFIG"

	DefaultTableName = "split-token"
	DefaultKeyColumn = "hashed_signature"
)

// Config is the immutable per-listener configuration.
type Config struct {
	// Region is the AWS region where the table lives.
	Region string `yaml:"region"`

	// TableName is the DynamoDB table storing split token data.
	TableName string `yaml:"table_name"`

	// KeyColumn is the table's partition key attribute holding the hashed signature.
	KeyColumn string `yaml:"key_column"`

	// HashingAlgorithm is one of SHA-256, SHA-384, SHA-512.
	HashingAlgorithm token.Algorithm `yaml:"hashing_algorithm"`

	// AccessMethod selects how credentials are obtained. Exactly one branch must be set.
	AccessMethod AccessMethod `yaml:"access_method"`

	// CacheCredentials reuses resolved credentials across events until they near expiry.
	CacheCredentials bool `yaml:"cache_credentials"`
}

// Load reads, defaults and validates the config file at path.
// An empty path falls back to SPLIT_TOKEN_PUBLISHER_CONFIG.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		return nil, apperr.Genericf("no config file given (use --config or %s)", EnvConfigPath)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperr.Generic("failed to read config", err)
	}

	return Parse(b)
}

// Parse decodes YAML, applies defaults, resolves the static secret and validates.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, apperr.Generic("failed to parse config", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.ResolveSecrets(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ApplyDefaults fills in table name, key column and hashing algorithm.
func (c *Config) ApplyDefaults() {
	if c.TableName == "" {
		c.TableName = DefaultTableName
	}
	if c.KeyColumn == "" {
		c.KeyColumn = DefaultKeyColumn
	}
	if c.HashingAlgorithm == "" {
		c.HashingAlgorithm = token.DefaultAlgorithm
	}
}

// ResolveSecrets fills an empty static secret from the environment or keychain.
// A missing secret is left for Validate to report.
func (c *Config) ResolveSecrets() error {
	keys := c.AccessMethod.StaticKeys
	if keys == nil || keys.AccessKeySecret != "" || keys.AccessKeyID == "" {
		return nil
	}

	s, err := secret.Resolve("", keys.AccessKeyID)
	if err != nil {
		if errors.Is(err, secret.ErrNotFound) {
			return nil
		}
		return apperr.Generic("failed to resolve access key secret", err)
	}
	keys.AccessKeySecret = s
	return nil
}

// Validate rejects configurations the listener cannot act on.
func (c *Config) Validate() error {
	if c.Region == "" {
		return apperr.Genericf("region is required")
	}
	if !IsKnownRegion(c.Region) {
		return apperr.Genericf("unknown AWS region %q", c.Region)
	}
	if strings.TrimSpace(c.TableName) == "" {
		return apperr.Genericf("table_name must not be empty")
	}
	if strings.TrimSpace(c.KeyColumn) == "" {
		return apperr.Genericf("key_column must not be empty")
	}

	algorithm, err := token.ParseAlgorithm(string(c.HashingAlgorithm))
	if err != nil {
		return err
	}
	if !algorithm.Available() {
		return apperr.Genericf("%s must be available in order to publish split tokens", algorithm)
	}
	c.HashingAlgorithm = algorithm

	return c.AccessMethod.Validate()
}
