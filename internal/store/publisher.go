// Package store writes split token records to DynamoDB.
package store

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-logr/logr"

	"github.com/chukul/split-token-publisher/internal/apperr"
	"github.com/chukul/split-token-publisher/internal/awsauth"
	"github.com/chukul/split-token-publisher/internal/logging"
	"github.com/chukul/split-token-publisher/internal/metrics"
)

// Attribute names written next to the configurable key column.
const (
	AttrHeadAndBody = "head_and_body"
	AttrExpiration  = "expiration"
)

// Record is one split token as stored in the table.
type Record struct {
	HashedSignature string
	HeadAndBody     string
	Expiration      time.Time
}

// item is the fixed part of a record. The key column is added separately
// since its name is configured.
type item struct {
	HeadAndBody string `dynamodbav:"head_and_body"`
	Expiration  string `dynamodbav:"expiration"`
}

// Item renders r as a DynamoDB item keyed by keyColumn. Expiration is epoch
// seconds as a string.
func (r Record) Item(keyColumn string) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item{
		HeadAndBody: r.HeadAndBody,
		Expiration:  strconv.FormatInt(r.Expiration.Unix(), 10),
	})
	if err != nil {
		return nil, err
	}
	av[keyColumn] = &types.AttributeValueMemberS{Value: r.HashedSignature}
	return av, nil
}

// Publisher upserts records. It holds no per-event state.
type Publisher struct {
	logger  logr.Logger
	metrics *metrics.Metrics
	open    OpenFunc
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(l logr.Logger) Option {
	return func(p *Publisher) { p.logger = l.WithName("store") }
}

// WithMetrics sets the collectors publish outcomes are counted on.
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Publisher) { p.metrics = m }
}

// WithOpener replaces how DynamoDB clients are opened.
func WithOpener(f OpenFunc) Option {
	return func(p *Publisher) { p.open = f }
}

// NewPublisher returns a Publisher writing through OpenDynamoDB unless overridden.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		logger: logr.Discard(),
		open:   OpenDynamoDB,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.metrics == nil {
		p.metrics = metrics.New(nil)
	}
	return p
}

// Publish writes rec to table with an unconditional PutItem, so republishing
// the same token overwrites the same key.
//
// A response with a status other than 200 is logged and returned with a nil
// error; see PutItemResult.Accepted. Any error from the call is an
// EXTERNAL_SERVICE_ERROR. The client is closed on every path.
func (p *Publisher) Publish(ctx context.Context, table, keyColumn string, rec Record, cred awsauth.Credential, region string) (PutItemResult, error) {
	log := p.logger.WithValues(logging.KeyTable, table, logging.KeyRegion, region)

	av, err := rec.Item(keyColumn)
	if err != nil {
		return PutItemResult{}, apperr.Generic("failed to marshal split token record", err)
	}

	client, err := p.open(ctx, region, cred.Provider)
	if err != nil {
		return PutItemResult{}, apperr.Generic("failed to create DynamoDB client", err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			log.V(logging.Debug).Info("Failed to close DynamoDB client", "error", cerr)
		}
	}()

	start := time.Now()
	res, err := client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      av,
	})
	p.metrics.PublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logging.Warn(log, "Failed to post event to AWS DynamoDB: "+err.Error())
		log.V(logging.Debug).Info("DynamoDB PutItem failure", "error", err)
		p.metrics.PublishTotal.WithLabelValues(metrics.PublishFailure).Inc()
		return PutItemResult{}, apperr.ExternalService("failed to put split token record", err)
	}

	var result PutItemResult
	if res != nil {
		result = *res
	}

	if !result.Accepted() {
		logging.Warn(log, "Event posted to AWS DynamoDB but response was not successful", logging.KeyStatus, result.StatusCode)
		p.metrics.PublishTotal.WithLabelValues(metrics.PublishUnsuccessful).Inc()
		return result, nil
	}

	log.V(logging.Debug).Info("Successfully sent event to AWS DynamoDB", logging.KeyHashedSignature, rec.HashedSignature)
	p.metrics.PublishTotal.WithLabelValues(metrics.PublishSuccess).Inc()
	return result, nil
}
