// Package awsauth resolves the AWS credentials used to write split token records.
package awsauth

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/ec2rolecreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/go-logr/logr"

	"github.com/chukul/split-token-publisher/internal/apperr"
	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/logging"
	"github.com/chukul/split-token-publisher/internal/metrics"
)

const (
	// SessionName identifies this publisher in CloudTrail for assumed-role sessions.
	SessionName = "curity-split-token-publisher-session"

	// SessionDuration is the requested lifetime of assumed-role credentials.
	SessionDuration = 3600 * time.Second
)

// Credential is the effective credential for one event.
type Credential struct {
	Provider aws.CredentialsProvider

	// Source is the access method the base credential came from.
	Source config.Kind

	// RoleARN is set when Provider holds assumed-role session credentials.
	RoleARN string

	// Expires is the session expiry for assumed roles, zero otherwise.
	Expires time.Time

	// Degraded is set when a role was configured but the exchange was
	// refused and Provider is the base credential.
	Degraded bool
}

// CredentialResolver turns an access method into an effective credential.
type CredentialResolver interface {
	Resolve(ctx context.Context, method config.AccessMethod, region string) (Credential, error)
}

// AssumeRoleAPI is the part of the STS client the resolver calls.
type AssumeRoleAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// STSClientFunc builds an STS client signing with creds in region.
type STSClientFunc func(ctx context.Context, region string, creds aws.CredentialsProvider) (AssumeRoleAPI, error)

// ProfileLoaderFunc resolves the credentials of a named shared-config profile.
type ProfileLoaderFunc func(ctx context.Context, profile, region string) (aws.CredentialsProvider, error)

var _ CredentialResolver = &Resolver{}

// Resolver resolves credentials fresh on every call.
type Resolver struct {
	logger          logr.Logger
	metrics         *metrics.Metrics
	newSTS          STSClientFunc
	loadProfile     ProfileLoaderFunc
	instanceProfile func() aws.CredentialsProvider
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(r *Resolver) { r.logger = l.WithName("awsauth") }
}

// WithMetrics sets the collectors exchange outcomes are counted on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) { r.metrics = m }
}

// WithSTSClient replaces how STS clients are built.
func WithSTSClient(f STSClientFunc) Option {
	return func(r *Resolver) { r.newSTS = f }
}

// WithProfileLoader replaces how named profiles are resolved.
func WithProfileLoader(f ProfileLoaderFunc) Option {
	return func(r *Resolver) { r.loadProfile = f }
}

// WithInstanceProfile replaces the EC2 instance role provider.
func WithInstanceProfile(f func() aws.CredentialsProvider) Option {
	return func(r *Resolver) { r.instanceProfile = f }
}

// NewResolver returns a Resolver backed by the AWS SDK unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger:      logr.Discard(),
		newSTS:      newSTSClient,
		loadProfile: loadProfile,
		instanceProfile: func() aws.CredentialsProvider {
			return ec2rolecreds.New()
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.New(nil)
	}
	return r
}

// LoadConfig loads the SDK config for region signing with creds.
func LoadConfig(ctx context.Context, region string, creds aws.CredentialsProvider) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(creds),
	)
}

func newSTSClient(ctx context.Context, region string, creds aws.CredentialsProvider) (AssumeRoleAPI, error) {
	cfg, err := LoadConfig(ctx, region, creds)
	if err != nil {
		return nil, err
	}
	return sts.NewFromConfig(cfg), nil
}

func loadProfile(ctx context.Context, profile, region string) (aws.CredentialsProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithSharedConfigProfile(profile),
	)
	if err != nil {
		return nil, err
	}
	return cfg.Credentials, nil
}

// Resolve picks the base credential from method and, when a role ARN accompanies
// static keys or a profile, exchanges it for assumed-role session credentials.
//
// A refused exchange (STS answered with an error status) falls back to the base
// credential. A transport failure during the exchange is an EXTERNAL_SERVICE_ERROR.
func (r *Resolver) Resolve(ctx context.Context, method config.AccessMethod, region string) (Credential, error) {
	base, err := r.base(ctx, method, region)
	if err != nil {
		return Credential{}, err
	}

	roleARN := method.RoleARN()
	if roleARN == "" {
		return base, nil
	}

	return r.assumeRole(ctx, base, roleARN, region)
}

func (r *Resolver) base(ctx context.Context, method config.AccessMethod, region string) (Credential, error) {
	kind := method.Kind()

	switch kind {
	case config.KindEC2InstanceProfile:
		return Credential{Provider: aws.NewCredentialsCache(r.instanceProfile()), Source: kind}, nil

	case config.KindStaticKeys:
		keys := method.StaticKeys
		if keys.AccessKeyID == "" || keys.AccessKeySecret == "" {
			return Credential{}, apperr.Genericf("access key id and secret are both required")
		}
		return Credential{
			Provider: credentials.NewStaticCredentialsProvider(keys.AccessKeyID, keys.AccessKeySecret, ""),
			Source:   kind,
		}, nil

	case config.KindProfile:
		provider, err := r.loadProfile(ctx, method.Profile.Name, region)
		if err != nil {
			return Credential{}, apperr.Generic("failed to load AWS profile "+method.Profile.Name, err)
		}
		if provider == nil {
			return Credential{}, apperr.Genericf("AWS profile %s has no credentials", method.Profile.Name)
		}
		return Credential{Provider: provider, Source: kind}, nil
	}

	return Credential{}, apperr.Genericf("no access method configured")
}

func (r *Resolver) assumeRole(ctx context.Context, base Credential, roleARN, region string) (Credential, error) {
	log := r.logger.WithValues(logging.KeyRoleARN, roleARN, logging.KeyAccessMethod, base.Source)

	client, err := r.newSTS(ctx, region, base.Provider)
	if err != nil {
		return Credential{}, apperr.Generic("failed to create STS client", err)
	}

	out, err := client.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(SessionName),
		DurationSeconds: aws.Int32(int32(SessionDuration / time.Second)),
	})
	if err != nil {
		if status, ok := ResponseStatus(err); ok {
			return r.fallback(log, base, status), nil
		}

		logging.Warn(log, "Failed to assume role: "+err.Error())
		log.V(logging.Debug).Info("Role assumption transport failure", "error", err)
		r.metrics.RoleExchangeTotal.WithLabelValues(metrics.ExchangeFailure).Inc()
		return Credential{}, apperr.ExternalService("failed to assume role", err)
	}

	if status, ok := ResultStatus(out.ResultMetadata); ok && status != 200 {
		return r.fallback(log, base, status), nil
	}

	c := out.Credentials
	if c == nil || c.AccessKeyId == nil || c.SecretAccessKey == nil || c.SessionToken == nil {
		return r.fallback(log, base, 0), nil
	}

	assumed := Credential{
		Provider: credentials.NewStaticCredentialsProvider(*c.AccessKeyId, *c.SecretAccessKey, *c.SessionToken),
		Source:   base.Source,
		RoleARN:  roleARN,
	}
	if c.Expiration != nil {
		assumed.Expires = *c.Expiration
	}

	r.metrics.RoleExchangeTotal.WithLabelValues(metrics.ExchangeSuccess).Inc()
	log.V(logging.Debug).Info("Assumed role", logging.KeyExpiration, assumed.Expires)
	return assumed, nil
}

func (r *Resolver) fallback(log logr.Logger, base Credential, status int) Credential {
	logging.Warn(log, "Role assumption was not successful, continuing with the original credentials", logging.KeyStatus, status)
	r.metrics.RoleExchangeTotal.WithLabelValues(metrics.ExchangeFallback).Inc()
	base.Degraded = true
	return base
}
