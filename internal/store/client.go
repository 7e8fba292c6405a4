package store

import (
	"context"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/chukul/split-token-publisher/internal/awsauth"
)

// Client is a DynamoDB connection scoped to one publish call.
type Client interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput) (*PutItemResult, error)
	Close() error
}

// PutItemResult is what the publisher needs from a PutItem response.
type PutItemResult struct {
	// StatusCode is the raw HTTP status, 0 when the response did not record one.
	StatusCode int
}

// Accepted reports whether the store confirmed the write. A missing status
// counts as confirmed since the SDK only returns a result for a parsed response.
func (r PutItemResult) Accepted() bool {
	return r.StatusCode == 0 || r.StatusCode == http.StatusOK
}

// OpenFunc opens a Client for region signing with creds.
type OpenFunc func(ctx context.Context, region string, creds aws.CredentialsProvider) (Client, error)

// OpenDynamoDB opens a DynamoDB client with its own HTTP transport so Close
// releases its connections.
func OpenDynamoDB(ctx context.Context, region string, creds aws.CredentialsProvider) (Client, error) {
	cfg, err := awsauth.LoadConfig(ctx, region, creds)
	if err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	httpClient := &http.Client{Transport: transport}
	cfg.HTTPClient = httpClient

	return &dynamoClient{api: dynamodb.NewFromConfig(cfg), http: httpClient}, nil
}

type dynamoClient struct {
	api  *dynamodb.Client
	http *http.Client
}

func (c *dynamoClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput) (*PutItemResult, error) {
	out, err := c.api.PutItem(ctx, params)
	if err != nil {
		return nil, err
	}

	status, _ := awsauth.ResultStatus(out.ResultMetadata)
	return &PutItemResult{StatusCode: status}, nil
}

func (c *dynamoClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}
