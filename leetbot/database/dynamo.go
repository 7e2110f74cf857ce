package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type DynamoConfig struct {
	Region   string `toml:"region"`
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Table    string `toml:"table"`
	Endpoint string `toml:"endpoint"` // set for dynamodb-local, empty for AWS
}

// DynamoStore implements Store on a single DynamoDB table with a composite
// (pk, sk) primary key.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load dynamodb config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return &DynamoStore{client: client, table: cfg.Table}, nil
}

func (s *DynamoStore) Put(ctx context.Context, record Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put record %s/%s: %w", record.PartitionKey, record.SortKey, err)
	}
	return nil
}

func (s *DynamoStore) PutIfAbsent(ctx context.Context, record Record) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(pk) AND attribute_not_exists(sk)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return ErrRecordExists
		}
		return fmt.Errorf("failed to put record %s/%s: %w", record.PartitionKey, record.SortKey, err)
	}
	return nil
}

func (s *DynamoStore) Get(ctx context.Context, partitionKey, sortKey string) (Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       recordKey(partitionKey, sortKey),
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to get record %s/%s: %w", partitionKey, sortKey, err)
	}
	if out.Item == nil {
		return Record{}, ErrRecordNotFound
	}

	var record Record
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal record %s/%s: %w", partitionKey, sortKey, err)
	}
	return record, nil
}

func (s *DynamoStore) Delete(ctx context.Context, partitionKey, sortKey string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       recordKey(partitionKey, sortKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete record %s/%s: %w", partitionKey, sortKey, err)
	}
	return nil
}

func (s *DynamoStore) QueryByPrefix(ctx context.Context, partitionKey, sortKeyPrefix string) ([]Record, error) {
	return s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND begins_with(sk, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: partitionKey},
			":prefix": &types.AttributeValueMemberS{Value: sortKeyPrefix},
		},
	})
}

func (s *DynamoStore) QueryByRange(ctx context.Context, partitionKey, sortKeyFrom, sortKeyTo string) ([]Record, error) {
	records, err := s.query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("pk = :pk AND sk BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: partitionKey},
			":from": &types.AttributeValueMemberS{Value: sortKeyFrom},
			":to":   &types.AttributeValueMemberS{Value: sortKeyTo},
		},
	})
	if err != nil {
		return nil, err
	}

	// BETWEEN is inclusive on both ends; Store promises [from, to).
	filtered := records[:0]
	for _, r := range records {
		if r.SortKey < sortKeyTo {
			filtered = append(filtered, r)
		}
	}
	return filtered, nil
}

// query drains every result page so callers always see the full result set.
func (s *DynamoStore) query(ctx context.Context, input *dynamodb.QueryInput) ([]Record, error) {
	start := time.Now()
	var records []Record
	var lastKey map[string]types.AttributeValue

	for {
		input.ExclusiveStartKey = lastKey
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("query failed: %w", err)
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal query page: %w", err)
		}
		records = append(records, page...)

		if out.LastEvaluatedKey == nil {
			break
		}
		lastKey = out.LastEvaluatedKey
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("backend", "dynamodb"),
		slog.Int("records", len(records)),
		slog.Duration("took", time.Since(start)),
	)
	return records, nil
}

func recordKey(partitionKey, sortKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: partitionKey},
		"sk": &types.AttributeValueMemberS{Value: sortKey},
	}
}
