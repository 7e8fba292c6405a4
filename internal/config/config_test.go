package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukul/split-token-publisher/internal/apperr"
	"github.com/chukul/split-token-publisher/internal/secret"
	"github.com/chukul/split-token-publisher/internal/token"
)

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
region: eu-west-3
access_method:
  ec2_instance_profile: true
`))
	require.NoError(t, err)

	assert.Equal(t, "eu-west-3", cfg.Region)
	assert.Equal(t, DefaultTableName, cfg.TableName)
	assert.Equal(t, DefaultKeyColumn, cfg.KeyColumn)
	assert.Equal(t, token.SHA256, cfg.HashingAlgorithm)
	assert.Equal(t, KindEC2InstanceProfile, cfg.AccessMethod.Kind())
	assert.False(t, cfg.CacheCredentials)
}

func TestParseStaticKeysWithRole(t *testing.T) {
	cfg, err := Parse([]byte(`
region: us-east-1
table_name: tokens
key_column: sig
hashing_algorithm: sha_512
access_method:
  access_key_id_and_secret:
    access_key_id: AKIATEST
    access_key_secret: s3cr3t
    aws_role_arn: arn:aws:iam::123456789012:role/dynamodb-role
`))
	require.NoError(t, err)

	assert.Equal(t, "tokens", cfg.TableName)
	assert.Equal(t, "sig", cfg.KeyColumn)
	assert.Equal(t, token.SHA512, cfg.HashingAlgorithm)
	assert.Equal(t, KindStaticKeys, cfg.AccessMethod.Kind())
	assert.Equal(t, "arn:aws:iam::123456789012:role/dynamodb-role", cfg.AccessMethod.RoleARN())
}

func TestParseStaticSecretFromEnvironment(t *testing.T) {
	t.Setenv(secret.EnvSecret, "from-env")

	cfg, err := Parse([]byte(`
region: us-east-1
access_method:
  access_key_id_and_secret:
    access_key_id: AKIATEST
`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.AccessMethod.StaticKeys.AccessKeySecret)
}

func TestParseProfile(t *testing.T) {
	cfg, err := Parse([]byte(`
region: ap-southeast-1
access_method:
  aws_profile:
    aws_profile_name: publisher
`))
	require.NoError(t, err)

	assert.Equal(t, KindProfile, cfg.AccessMethod.Kind())
	assert.Equal(t, "publisher", cfg.AccessMethod.Profile.Name)
	assert.Empty(t, cfg.AccessMethod.RoleARN())
}

func TestValidateRejects(t *testing.T) {
	base := func() Config {
		c := Config{Region: "eu-west-1", AccessMethod: EC2InstanceProfileMethod()}
		c.ApplyDefaults()
		return c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing region", mutate: func(c *Config) { c.Region = "" }},
		{name: "unknown region", mutate: func(c *Config) { c.Region = "mars-north-1" }},
		{name: "blank table", mutate: func(c *Config) { c.TableName = " " }},
		{name: "blank key column", mutate: func(c *Config) { c.KeyColumn = "" }},
		{name: "bad algorithm", mutate: func(c *Config) { c.HashingAlgorithm = "MD5" }},
		{name: "no access method", mutate: func(c *Config) { c.AccessMethod = AccessMethod{} }},
		{name: "instance profile false", mutate: func(c *Config) { c.AccessMethod = AccessMethod{EC2InstanceProfile: false} }},
		{name: "two access methods", mutate: func(c *Config) {
			c.AccessMethod.StaticKeys = &StaticKeys{AccessKeyID: "AKIA", AccessKeySecret: "s"}
		}},
		{name: "static without id", mutate: func(c *Config) { c.AccessMethod = StaticKeysMethod("", "s", "") }},
		{name: "static without secret", mutate: func(c *Config) { c.AccessMethod = StaticKeysMethod("AKIA", "", "") }},
		{name: "profile without name", mutate: func(c *Config) { c.AccessMethod = ProfileMethod("", "") }},
		{name: "role not an arn", mutate: func(c *Config) { c.AccessMethod = ProfileMethod("default", "dynamodb-role") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)

			err := c.Validate()
			require.Error(t, err)
			assert.True(t, apperr.IsGeneric(err))
		})
	}
}

func TestKindPriority(t *testing.T) {
	m := AccessMethod{
		EC2InstanceProfile: true,
		StaticKeys:         &StaticKeys{AccessKeyID: "AKIA", AccessKeySecret: "s", RoleARN: "arn:aws:iam::1:role/r"},
		Profile:            &Profile{Name: "default"},
	}

	assert.Equal(t, KindEC2InstanceProfile, m.Kind())
	assert.Empty(t, m.RoleARN(), "instance profile never assumes a role")

	m.EC2InstanceProfile = false
	assert.Equal(t, KindStaticKeys, m.Kind())
	assert.Equal(t, "arn:aws:iam::1:role/r", m.RoleARN())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "publisher.yaml")
	require.NoError(t, os.WriteFile(path, []byte("region: eu-north-1\naccess_method:\n  ec2_instance_profile: true\n"), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "eu-north-1", cfg.Region)

	t.Setenv(EnvConfigPath, path)
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "eu-north-1", cfg.Region)
}

func TestLoadErrors(t *testing.T) {
	t.Setenv(EnvConfigPath, "")

	_, err := Load("")
	assert.True(t, apperr.IsGeneric(err))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, apperr.IsGeneric(err))

	_, err = Parse([]byte("region: [unterminated"))
	assert.True(t, apperr.IsGeneric(err))
}

func TestRegions(t *testing.T) {
	regions := Regions()
	assert.Contains(t, regions, "eu-west-3")
	assert.True(t, IsKnownRegion("us-gov-west-1"))
	assert.False(t, IsKnownRegion("EU-WEST-1"))
}
