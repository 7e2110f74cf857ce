package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

type Config struct {
	Region        string `toml:"region"`
	Key           string `toml:"key"`
	Secret        string `toml:"secret"`
	URL           string `toml:"url"`
	Endpoint      string `toml:"endpoint"` // set for elasticmq/localstack, empty for AWS
	MaxConcurrent int64  `toml:"max_concurrent"`
}

func newClient(ctx context.Context, cfg Config) (*sqs.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.Region),
	}
	if cfg.Key != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Key, cfg.Secret, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load sqs config: %w", err)
	}

	return sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Publisher pushes envelopes onto the work queue.
type Publisher struct {
	client   *sqs.Client
	queueURL string
}

func NewPublisher(ctx context.Context, cfg Config) (*Publisher, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Publisher{client: client, queueURL: cfg.URL}, nil
}

func (p *Publisher) Publish(ctx context.Context, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal envelope: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("failed to publish envelope %s: %w", envelope.Event.ID, err)
	}

	slog.Debug("Envelope published",
		slog.String("type", "queue"),
		slog.String("message_id", envelope.Event.ID),
		slog.String("kind", string(envelope.Kind)),
	)
	return nil
}
