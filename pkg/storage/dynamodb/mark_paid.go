package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// MarkOrderPaid transitions an order from pending/in_progress to paid.
// The transition is idempotent: marking an already-paid order returns the
// order unchanged. A cancelled order fails with ErrOrderNotPayable.
func (s *Store) MarkOrderPaid(ctx context.Context, orderID string) (*models.Order, error) {
	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case models.PAID:
		return order, nil
	case models.CANCELLED:
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrOrderNotPayable)
	}

	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for paid transition: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.OrdersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    aws.String("SET #status = :paid, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending OR #status = :in_progress"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":paid":        &types.AttributeValueMemberS{Value: string(models.PAID)},
			":pending":     &types.AttributeValueMemberS{Value: string(models.PENDING)},
			":in_progress": &types.AttributeValueMemberS{Value: string(models.IN_PROGRESS)},
			":now":         nowAV,
		},
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// A concurrent trigger moved the order first. Re-read to decide
			// whether that transition was also to paid.
			current, getErr := s.GetOrder(ctx, orderID)
			if getErr != nil {
				return nil, getErr
			}
			if current.Status == models.PAID {
				return current, nil
			}
			return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrOrderNotPayable)
		}
		return nil, fmt.Errorf("failed to mark order paid: %w", err)
	}

	order.Status = models.PAID
	order.UpdatedAt = now
	return order, nil
}
