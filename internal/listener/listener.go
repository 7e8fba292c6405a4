// Package listener publishes split tokens for issued access token events.
package listener

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chukul/split-token-publisher/internal/awsauth"
	"github.com/chukul/split-token-publisher/internal/config"
	"github.com/chukul/split-token-publisher/internal/logging"
	"github.com/chukul/split-token-publisher/internal/metrics"
	"github.com/chukul/split-token-publisher/internal/store"
	"github.com/chukul/split-token-publisher/internal/token"
)

// EventType is the event this listener subscribes to.
const EventType = "issued-access-token-oauth-event"

// Event is an issued access token.
type Event struct {
	AccessTokenValue string
	Expires          time.Time
}

// RecordPublisher writes one record to the table.
type RecordPublisher interface {
	Publish(ctx context.Context, table, keyColumn string, rec store.Record, cred awsauth.Credential, region string) (store.PutItemResult, error)
}

// Result is the outcome of one handled event.
type Result struct {
	// Skipped is set when the token did not have three parts. Nothing else is set then.
	Skipped bool

	// Parts is the number of segments found in the token.
	Parts int

	// Record is what was sent to the table.
	Record store.Record

	// Status is the raw status the store answered with, 0 when unknown.
	Status int

	// Confirmed is false when the store answered with an unsuccessful status.
	Confirmed bool
}

type invalidator interface {
	Invalidate()
}

// Listener handles events one at a time. It keeps only the configuration it was
// built with, plus the credential cache when enabled.
type Listener struct {
	cfg       config.Config
	logger    logr.Logger
	metrics   *metrics.Metrics
	resolver  awsauth.CredentialResolver
	publisher RecordPublisher
}

// Option configures a Listener.
type Option func(*Listener)

// WithLogger sets the logger passed down to every component.
func WithLogger(l logr.Logger) Option {
	return func(li *Listener) { li.logger = l }
}

// WithRegisterer registers the listener's metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(li *Listener) { li.metrics = metrics.New(reg) }
}

// WithMetrics uses already created collectors.
func WithMetrics(m *metrics.Metrics) Option {
	return func(li *Listener) { li.metrics = m }
}

// WithResolver replaces the credential resolver. The credential cache is not
// applied on top of it.
func WithResolver(r awsauth.CredentialResolver) Option {
	return func(li *Listener) { li.resolver = r }
}

// WithPublisher replaces the record publisher.
func WithPublisher(p RecordPublisher) Option {
	return func(li *Listener) { li.publisher = p }
}

// New validates cfg and builds a Listener. An invalid configuration is a
// GENERIC_ERROR here rather than a failure on the first event.
func New(cfg config.Config, opts ...Option) (*Listener, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	li := &Listener{cfg: cfg, logger: logr.Discard()}
	for _, opt := range opts {
		opt(li)
	}
	if li.metrics == nil {
		li.metrics = metrics.New(nil)
	}

	if li.resolver == nil {
		var r awsauth.CredentialResolver = awsauth.NewResolver(
			awsauth.WithLogger(li.logger),
			awsauth.WithMetrics(li.metrics),
		)
		if cfg.CacheCredentials {
			r = awsauth.NewCachingResolver(r, nil)
		}
		li.resolver = r
	}
	if li.publisher == nil {
		li.publisher = store.NewPublisher(
			store.WithLogger(li.logger),
			store.WithMetrics(li.metrics),
		)
	}

	li.logger = li.logger.WithName("listener").WithValues(
		logging.KeyTable, cfg.TableName,
		logging.KeyRegion, cfg.Region,
	)
	return li, nil
}

// EventType returns the event name to subscribe with.
func (li *Listener) EventType() string {
	return EventType
}

// Config returns the validated configuration.
func (li *Listener) Config() config.Config {
	return li.cfg
}

// Handle splits the token, hashes its signature, resolves credentials and
// writes the record. Tokens without exactly three parts are skipped without
// error. Any returned error means the record was not written.
func (li *Listener) Handle(ctx context.Context, ev Event) (Result, error) {
	split, parts, ok := token.SplitToken(ev.AccessTokenValue)
	if !ok {
		li.logger.V(logging.Debug).Info("Token is not a JWT, not publishing split token", logging.KeyParts, parts)
		li.metrics.EventsTotal.WithLabelValues(metrics.EventSkipped).Inc()
		return Result{Skipped: true, Parts: parts}, nil
	}

	hashed, err := token.HashSignature(split.Signature, li.cfg.HashingAlgorithm)
	if err != nil {
		li.metrics.EventsTotal.WithLabelValues(metrics.EventFailed).Inc()
		return Result{}, err
	}

	cred, err := li.resolver.Resolve(ctx, li.cfg.AccessMethod, li.cfg.Region)
	if err != nil {
		li.metrics.EventsTotal.WithLabelValues(metrics.EventFailed).Inc()
		return Result{}, err
	}

	res := Result{
		Parts: parts,
		Record: store.Record{
			HashedSignature: hashed,
			HeadAndBody:     split.HeadAndBody,
			Expiration:      ev.Expires,
		},
	}
	li.logger.V(logging.Debug).Info("Publishing split token",
		logging.KeyHashedSignature, hashed,
		logging.KeyHeadAndBody, split.HeadAndBody,
		logging.KeyExpiration, ev.Expires.Unix(),
		logging.KeyAccessMethod, cred.Source,
	)

	put, err := li.publisher.Publish(ctx, li.cfg.TableName, li.cfg.KeyColumn, res.Record, cred, li.cfg.Region)
	if err != nil {
		if c, ok := li.resolver.(invalidator); ok {
			c.Invalidate()
		}
		li.metrics.EventsTotal.WithLabelValues(metrics.EventFailed).Inc()
		return Result{}, err
	}

	res.Status = put.StatusCode
	res.Confirmed = put.Accepted()
	if !res.Confirmed {
		li.metrics.EventsTotal.WithLabelValues(metrics.EventUnconfirmed).Inc()
		return res, nil
	}

	li.metrics.EventsTotal.WithLabelValues(metrics.EventPublished).Inc()
	return res, nil
}
