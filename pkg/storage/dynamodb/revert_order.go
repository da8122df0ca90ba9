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

// maxRevertReadAttempts bounds the index re-reads awaiting a completed bind's
// rows to become visible.
const maxRevertReadAttempts = 3

// RevertOrder moves a paid or pending order to pending or cancelled and
// deletes every number bound to it in the same TransactWriteItems, so a
// reverted order can never appear sold. This is the only deletion path for
// assigned numbers.
func (s *Store) RevertOrder(ctx context.Context, orderID string, toStatus models.OrderStatus) error {
	if toStatus != models.PENDING && toStatus != models.CANCELLED {
		return fmt.Errorf("%w: cannot revert to status %q", storage.ErrInvalidInput, toStatus)
	}

	order, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return err
	}

	if order.Status != models.PAID && order.Status != models.PENDING {
		return fmt.Errorf("order %s in status %s: %w", orderID, order.Status, storage.ErrOrderNotRevertible)
	}

	numbers, err := s.numbersForRevert(ctx, order)
	if err != nil {
		return err
	}

	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for revert: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, len(numbers)+1)
	for _, number := range numbers {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.AssignedNumbersTableName),
				Key: map[string]types.AttributeValue{
					"raffle_id": &types.AttributeValueMemberS{Value: order.RaffleId},
					"number":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", number)},
				},
				// Never release a number that has been rebound elsewhere.
				ConditionExpression: aws.String("order_id = :oid"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":oid": &types.AttributeValueMemberS{Value: orderID},
				},
			},
		})
	}

	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.OrdersTableName),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: orderID},
			},
			UpdateExpression: aws.String("SET #status = :to, allocation = :none, updated_at = :now"),
			// Guarding on the allocation marker as well as the status aborts
			// the revert when a bind lands between our read and this write,
			// so the bound rows are never orphaned.
			ConditionExpression: aws.String("#status = :current AND allocation = :allocation"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":to":         &types.AttributeValueMemberS{Value: string(toStatus)},
				":none":       &types.AttributeValueMemberS{Value: string(models.AllocationNone)},
				":current":    &types.AttributeValueMemberS{Value: string(order.Status)},
				":allocation": &types.AttributeValueMemberS{Value: string(order.Allocation)},
				":now":        nowAV,
			},
		},
	})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return fmt.Errorf("order %s changed during revert: %w", orderID, storage.ErrOrderNotRevertible)
		}
		return fmt.Errorf("failed to execute revert transaction: %w", err)
	}

	return nil
}

// numbersForRevert collects the rows to release. The order_id-index is
// eventually consistent, so a marker that reads done with fewer rows than the
// order's quantity means the bind has not surfaced yet. The read is retried a
// bounded number of times rather than deleting a partial set.
func (s *Store) numbersForRevert(ctx context.Context, order *models.Order) ([]int, error) {
	for attempt := 1; ; attempt++ {
		numbers, err := s.ListAssignedNumbersByOrder(ctx, order.Id)
		if err != nil {
			return nil, fmt.Errorf("failed to list numbers for revert: %w", err)
		}

		if order.Allocation != models.AllocationDone || len(numbers) == order.Quantity {
			return numbers, nil
		}

		if attempt >= maxRevertReadAttempts {
			return nil, fmt.Errorf("order %s has %d of %d numbers visible: %w",
				order.Id, len(numbers), order.Quantity, storage.ErrOrderNotRevertible)
		}

		time.Sleep(time.Duration(attempt) * 100 * time.Millisecond)
	}
}

// CancelIfUnpaid cancels an order only while it is still pending or
// in_progress. A paid or already-cancelled order is left untouched, which
// makes the expiration path safe to fire at any time.
func (s *Store) CancelIfUnpaid(ctx context.Context, orderID string) error {
	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for expiration: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.OrdersTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: orderID},
		},
		UpdateExpression:    aws.String("SET #status = :cancelled, updated_at = :now"),
		ConditionExpression: aws.String("#status = :pending OR #status = :in_progress"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":cancelled":   &types.AttributeValueMemberS{Value: string(models.CANCELLED)},
			":pending":     &types.AttributeValueMemberS{Value: string(models.PENDING)},
			":in_progress": &types.AttributeValueMemberS{Value: string(models.IN_PROGRESS)},
			":now":         nowAV,
		},
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			// Paid, cancelled, or missing: nothing to expire.
			return nil
		}
		return fmt.Errorf("failed to cancel expired order: %w", err)
	}

	return nil
}
