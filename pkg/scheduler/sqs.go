package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/rvallim/raffle-allocation/pkg/models"
)

// maxSQSDelay is the SQS per-message delay ceiling. Expirations further out
// are re-enqueued by the consumer until the expiry time is reached.
const maxSQSDelay = 900 * time.Second

// SQSAPI defines the subset of the SQS client used by the scheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// ExpirationMessage is the queue payload for an order expiration check.
type ExpirationMessage struct {
	OrderId   string    `json:"order_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleExpiration sends the order's expiration check to an SQS queue.
func (s *SQSScheduler) ScheduleExpiration(ctx context.Context, order *models.Order, delay time.Duration) error {
	body, err := json.Marshal(ExpirationMessage{
		OrderId:   order.Id,
		ExpiresAt: order.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal expiration message for SQS: %w", err)
	}

	if delay > maxSQSDelay {
		delay = maxSQSDelay
	}
	if delay < 0 {
		delay = 0
	}

	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}
