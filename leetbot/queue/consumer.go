package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Misacorp/leetbot/leetbot/game"
)

const (
	receiveMaxMessages = 10
	receiveWaitSeconds = 20
)

// SQSClient is the slice of the SQS API the consumer touches.
type SQSClient interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// Consumer long-polls the work queue and hands delivered batches to the
// runner. A message is deleted once its item settles without a hard failure;
// failed items stay invisible until the visibility timeout lapses and come
// back around, where the uniqueness gate turns completed replays into
// duplicates.
type Consumer struct {
	client   SQSClient
	queueURL string
	runner   *game.Runner
}

func NewConsumer(ctx context.Context, cfg Config, runner *game.Runner) (*Consumer, error) {
	client, err := newClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Consumer{client: client, queueURL: cfg.URL, runner: runner}, nil
}

// Start polls until the context is canceled.
func (c *Consumer) Start(ctx context.Context) {
	slog.Info("Queue consumer started",
		slog.String("type", "queue"),
		slog.String("queue_url", c.queueURL),
	)
	for {
		if err := ctx.Err(); err != nil {
			slog.Info("Queue consumer stopped", slog.String("type", "queue"))
			return
		}
		if err := c.poll(ctx); err != nil && !errors.Is(err, context.Canceled) {
			slog.Error("Queue poll failed",
				slog.String("type", "queue"),
				slog.Any("error", err),
			)
			time.Sleep(time.Second)
		}
	}
}

func (c *Consumer) poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: receiveMaxMessages,
		WaitTimeSeconds:     receiveWaitSeconds,
	})
	if err != nil {
		return err
	}
	if len(out.Messages) == 0 {
		return nil
	}

	var batch []game.InboundMessage
	var receipts []string

	for _, raw := range out.Messages {
		envelope, err := decodeEnvelope(raw)
		if err != nil {
			// Malformed input would fail on every redelivery. Log and drop.
			slog.Warn("Skipping malformed envelope",
				slog.String("type", "queue"),
				slog.String("sqs_message_id", aws.ToString(raw.MessageId)),
				slog.Any("error", err),
			)
			c.deleteMessage(ctx, aws.ToString(raw.ReceiptHandle))
			continue
		}
		batch = append(batch, envelope.ToMessage())
		receipts = append(receipts, aws.ToString(raw.ReceiptHandle))
	}
	if len(batch) == 0 {
		return nil
	}

	results := c.runner.Run(ctx, batch)
	for i, res := range results {
		if res.Err != nil {
			// Leave the message for redelivery.
			continue
		}
		c.deleteMessage(ctx, receipts[i])
	}
	return nil
}

func decodeEnvelope(raw types.Message) (Envelope, error) {
	var envelope Envelope
	if err := json.Unmarshal([]byte(aws.ToString(raw.Body)), &envelope); err != nil {
		return Envelope{}, err
	}
	if err := envelope.Validate(); err != nil {
		return Envelope{}, err
	}
	return envelope, nil
}

func (c *Consumer) deleteMessage(ctx context.Context, receiptHandle string) {
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		slog.Warn("Failed to delete queue message",
			slog.String("type", "queue"),
			slog.Any("error", err),
		)
	}
}
