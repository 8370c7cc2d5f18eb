package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"
)

// SQSAPI is the subset of the SQS client used by SQSQueue.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// SQSQueue is a Queue on Amazon SQS. Delivery is at-least-once: a message is
// deleted only after the handler succeeds, otherwise it becomes visible
// again after the visibility timeout. Messages received more than
// maxAttempts times are deleted and logged.
type SQSQueue struct {
	client      SQSAPI
	queueURL    string
	maxAttempts int
	logger      zerolog.Logger

	// Wait after a failed receive, doubling up to maxBackoff.
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewSQSQueue creates an SQSQueue.
func NewSQSQueue(client SQSAPI, queueURL string, maxAttempts int, logger zerolog.Logger) *SQSQueue {
	return &SQSQueue{
		client:      client,
		queueURL:    queueURL,
		maxAttempts: maxAttempts,
		logger:      logger.With().Str("component", "sqs_queue").Logger(),
		minBackoff:  time.Second,
		maxBackoff:  30 * time.Second,
	}
}

// Enqueue sends msg as a JSON message body.
func (q *SQSQueue) Enqueue(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	_, err = q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"kind": {DataType: aws.String("String"), StringValue: aws.String(string(msg.Kind))},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Consume long-polls the queue until ctx is cancelled. Receive errors are
// retried with exponential backoff.
func (q *SQSQueue) Consume(ctx context.Context, handler Handler) error {
	q.logger.Info().Str("queue_url", q.queueURL).Msg("starting SQS polling")

	backoff := q.minBackoff
	for {
		select {
		case <-ctx.Done():
			q.logger.Info().Msg("SQS polling stopped")
			return ctx.Err()
		default:
		}

		err := q.pollOnce(ctx, handler)
		if err == nil || errors.Is(err, context.Canceled) {
			backoff = q.minBackoff
			continue
		}

		q.logger.Error().Err(err).Dur("retry_in", backoff).Msg("error polling SQS")

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			q.logger.Info().Msg("SQS polling stopped")
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
		if backoff > q.maxBackoff {
			backoff = q.maxBackoff
		}
	}
}

func (q *SQSQueue) pollOnce(ctx context.Context, handler Handler) error {
	result, err := q.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:                    aws.String(q.queueURL),
		MaxNumberOfMessages:         10,
		WaitTimeSeconds:             20, // Long polling
		VisibilityTimeout:           30,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{types.MessageSystemAttributeNameApproximateReceiveCount},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, m := range result.Messages {
		if m.Body == nil {
			continue
		}

		var msg Message
		if err := json.Unmarshal([]byte(*m.Body), &msg); err != nil {
			q.logger.Error().Err(err).Msg("discarding undecodable notification")
			q.delete(ctx, m.ReceiptHandle)
			continue
		}
		msg.Attempt = receiveCount(m)

		if err := handler(ctx, msg); err != nil {
			if msg.Attempt >= q.maxAttempts {
				q.logger.Error().Err(err).
					Str("order_number", msg.OrderNumber).
					Int("attempts", msg.Attempt).
					Msg("dropping notification after max attempts")
				q.delete(ctx, m.ReceiptHandle)
				continue
			}
			q.logger.Warn().Err(err).
				Str("order_number", msg.OrderNumber).
				Int("attempt", msg.Attempt).
				Msg("notification delivery failed, leaving for redelivery")
			continue
		}

		q.delete(ctx, m.ReceiptHandle)
	}

	return nil
}

func (q *SQSQueue) delete(ctx context.Context, receiptHandle *string) {
	if _, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.queueURL),
		ReceiptHandle: receiptHandle,
	}); err != nil {
		q.logger.Error().Err(err).Msg("failed to delete message")
	}
}

func receiveCount(m types.Message) int {
	n, err := strconv.Atoi(m.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil || n < 1 {
		return 1
	}
	return n
}
