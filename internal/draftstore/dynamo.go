package draftstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoClient is the subset of *dynamodb.Client the store uses.
type DynamoClient interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

type draftItem struct {
	DraftKey  string `dynamodbav:"draftKey"`
	Draft     string `dynamodbav:"draft"`
	UpdatedAt string `dynamodbav:"updatedAt"`
	ExpiresAt int64  `dynamodbav:"expiresAt,omitempty"`
}

// DynamoStore keeps drafts in a DynamoDB table keyed by draftKey. The table's
// TTL attribute should be set to expiresAt.
type DynamoStore struct {
	client    DynamoClient
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewDynamoStore builds a store backed by the provided DynamoDB client.
func NewDynamoStore(client DynamoClient, tableName string, ttl time.Duration) *DynamoStore {
	if client == nil {
		panic("draftstore: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("draftstore: table name cannot be empty")
	}
	return &DynamoStore{client: client, tableName: tableName, ttl: ttl, now: time.Now}
}

func (s *DynamoStore) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.tableName),
		Key:            s.key(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("draftstore: dynamodb get: %w", err)
	}
	if len(out.Item) == 0 {
		return "", false, nil
	}
	var item draftItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return "", false, fmt.Errorf("draftstore: decode dynamodb item: %w", err)
	}
	// DynamoDB deletes expired items lazily.
	if item.ExpiresAt > 0 && item.ExpiresAt <= s.now().Unix() {
		return "", false, nil
	}
	return item.Draft, true, nil
}

func (s *DynamoStore) Set(ctx context.Context, key, value string) error {
	now := s.now().UTC()
	item := draftItem{
		DraftKey:  key,
		Draft:     value,
		UpdatedAt: now.Format(time.RFC3339Nano),
	}
	if s.ttl > 0 {
		item.ExpiresAt = now.Add(s.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("draftstore: encode dynamodb item: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("draftstore: dynamodb put: %w", err)
	}
	return nil
}

func (s *DynamoStore) Remove(ctx context.Context, key string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key:       s.key(key),
	}); err != nil {
		return fmt.Errorf("draftstore: dynamodb delete: %w", err)
	}
	return nil
}

func (s *DynamoStore) key(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"draftKey": &types.AttributeValueMemberS{Value: key},
	}
}
