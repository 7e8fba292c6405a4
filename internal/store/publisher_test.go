package store

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-logr/logr/funcr"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chukul/split-token-publisher/internal/apperr"
	"github.com/chukul/split-token-publisher/internal/awsauth"
	"github.com/chukul/split-token-publisher/internal/metrics"
)

// memoryTable is a fake DynamoDB table keyed by the configured key column.
type memoryTable struct {
	mu      sync.Mutex
	items   map[string]map[string]types.AttributeValue
	opened  int
	closed  int
	regions []string
	status  int
	err     error
}

func newMemoryTable() *memoryTable {
	return &memoryTable{items: map[string]map[string]types.AttributeValue{}, status: http.StatusOK}
}

type memoryClient struct {
	table     *memoryTable
	keyColumn string
}

func (m *memoryTable) opener(keyColumn string) OpenFunc {
	return func(ctx context.Context, region string, creds aws.CredentialsProvider) (Client, error) {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.opened++
		m.regions = append(m.regions, region)
		return &memoryClient{table: m, keyColumn: keyColumn}, nil
	}
}

func (c *memoryClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput) (*PutItemResult, error) {
	c.table.mu.Lock()
	defer c.table.mu.Unlock()
	if c.table.err != nil {
		return nil, c.table.err
	}
	key := params.Item[c.keyColumn].(*types.AttributeValueMemberS).Value
	c.table.items[aws.ToString(params.TableName)+"/"+key] = params.Item
	return &PutItemResult{StatusCode: c.table.status}, nil
}

func (c *memoryClient) Close() error {
	c.table.mu.Lock()
	c.table.closed++
	c.table.mu.Unlock()
	return nil
}

func stringAttr(t *testing.T, item map[string]types.AttributeValue, name string) string {
	t.Helper()
	v, ok := item[name].(*types.AttributeValueMemberS)
	require.True(t, ok, "attribute %s is not a string", name)
	return v.Value
}

type logLines struct {
	mu    sync.Mutex
	lines []string
}

func (l *logLines) sink(prefix, args string) {
	l.mu.Lock()
	l.lines = append(l.lines, args)
	l.mu.Unlock()
}

func (l *logLines) contains(sub string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func newTestPublisher(table *memoryTable) (*Publisher, *metrics.Metrics, *logLines) {
	logs := &logLines{}
	m := metrics.New(nil)
	p := NewPublisher(
		WithLogger(funcr.New(logs.sink, funcr.Options{Verbosity: 1})),
		WithMetrics(m),
		WithOpener(table.opener("token_signature")),
	)
	return p, m, logs
}

func publishRecord(p *Publisher, rec Record) error {
	_, err := p.Publish(context.Background(), "split-tokens", "token_signature", rec, testCred, "eu-west-1")
	return err
}

var testCred = awsauth.Credential{Provider: credentials.NewStaticCredentialsProvider("AKIASTATIC", "static-secret", "")}

func TestRecordItem(t *testing.T) {
	rec := Record{
		HashedSignature: "hashed",
		HeadAndBody:     "aaa.bbb",
		Expiration:      time.Unix(1700000000, 0),
	}

	item, err := rec.Item("sig")
	require.NoError(t, err)

	assert.Len(t, item, 3)
	assert.Equal(t, "hashed", stringAttr(t, item, "sig"))
	assert.Equal(t, "aaa.bbb", stringAttr(t, item, AttrHeadAndBody))
	assert.Equal(t, "1700000000", stringAttr(t, item, AttrExpiration))
}

func TestPublishWritesRecord(t *testing.T) {
	table := newMemoryTable()
	p, m, _ := newTestPublisher(table)

	rec := Record{HashedSignature: "hashed", HeadAndBody: "aaa.bbb", Expiration: time.Unix(1700000000, 0)}
	res, err := p.Publish(context.Background(), "split-tokens", "token_signature", rec, testCred, "eu-west-1")
	require.NoError(t, err)
	assert.True(t, res.Accepted())

	item, ok := table.items["split-tokens/hashed"]
	require.True(t, ok)
	assert.Equal(t, "aaa.bbb", stringAttr(t, item, AttrHeadAndBody))
	assert.Equal(t, []string{"eu-west-1"}, table.regions)
	assert.Equal(t, 1, table.opened)
	assert.Equal(t, 1, table.closed)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishTotal.WithLabelValues(metrics.PublishSuccess)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PublishDuration))
}

func TestPublishIsLastWriteWins(t *testing.T) {
	table := newMemoryTable()
	p, _, _ := newTestPublisher(table)

	first := Record{HashedSignature: "hashed", HeadAndBody: "aaa.bbb", Expiration: time.Unix(1700000000, 0)}
	second := Record{HashedSignature: "hashed", HeadAndBody: "aaa.bbb", Expiration: time.Unix(1700003600, 0)}

	require.NoError(t, publishRecord(p, first))
	require.NoError(t, publishRecord(p, second))

	assert.Len(t, table.items, 1)
	assert.Equal(t, "1700003600", stringAttr(t, table.items["split-tokens/hashed"], AttrExpiration))
	assert.Equal(t, 2, table.closed)
}

func TestPublishUnsuccessfulStatusIsNotAnError(t *testing.T) {
	table := newMemoryTable()
	table.status = http.StatusInternalServerError
	p, m, logs := newTestPublisher(table)

	rec := Record{HashedSignature: "hashed", HeadAndBody: "aaa.bbb", Expiration: time.Unix(1700000000, 0)}
	res, err := p.Publish(context.Background(), "split-tokens", "token_signature", rec, testCred, "eu-west-1")
	require.NoError(t, err)

	assert.False(t, res.Accepted())
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.True(t, logs.contains(`"severity"="warning"`))
	assert.True(t, logs.contains(`"status"=500`))
	assert.Equal(t, 1, table.closed)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishTotal.WithLabelValues(metrics.PublishUnsuccessful)))
}

func TestPublishErrorIsExternalService(t *testing.T) {
	table := newMemoryTable()
	table.err = errors.New("operation error DynamoDB: PutItem, ResourceNotFoundException")
	p, m, logs := newTestPublisher(table)

	rec := Record{HashedSignature: "hashed", HeadAndBody: "aaa.bbb", Expiration: time.Unix(1700000000, 0)}
	_, err := p.Publish(context.Background(), "split-tokens", "token_signature", rec, testCred, "eu-west-1")
	require.Error(t, err)

	assert.True(t, apperr.IsExternalService(err))
	assert.True(t, logs.contains("Failed to post event to AWS DynamoDB"))
	assert.Empty(t, table.items)
	assert.Equal(t, 1, table.closed, "client is released on failure")
	assert.Equal(t, float64(1), testutil.ToFloat64(m.PublishTotal.WithLabelValues(metrics.PublishFailure)))
}

func TestPublishOpenFailure(t *testing.T) {
	p := NewPublisher(WithOpener(func(ctx context.Context, region string, creds aws.CredentialsProvider) (Client, error) {
		return nil, errors.New("no region")
	}))

	_, err := p.Publish(context.Background(), "split-tokens", "token_signature", Record{HashedSignature: "h"}, testCred, "eu-west-1")
	assert.True(t, apperr.IsGeneric(err))
}

func TestPublishDoesNotLogHeadAndBody(t *testing.T) {
	table := newMemoryTable()
	p, _, logs := newTestPublisher(table)

	rec := Record{HashedSignature: "hashed", HeadAndBody: "eyJhbGciOi.eyJzdWIiOi", Expiration: time.Unix(1700000000, 0)}
	require.NoError(t, publishRecord(p, rec))

	assert.False(t, logs.contains("eyJhbGciOi"))
}
