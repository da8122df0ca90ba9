package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

const orderNumbersGSI = "order_id-index"

// maxDrawAttempts bounds the retry-on-conflict loop. Each retry re-reads the
// assigned set, so a retry is only ever needed when a concurrent allocation
// for another order landed on an overlapping sample.
const maxDrawAttempts = 4

// CountAssigned returns how many numbers are already bound for a raffle.
func (s *Store) CountAssigned(ctx context.Context, raffleID string) (int, error) {
	total := 0
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.AssignedNumbersTableName),
			KeyConditionExpression: aws.String("raffle_id = :rid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rid": &types.AttributeValueMemberS{Value: raffleID},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to count assigned numbers: %w", err)
		}

		total += int(result.Count)
		if result.LastEvaluatedKey == nil {
			return total, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// ListAssignedNumbersByOrder returns the numbers bound to an order, ascending.
func (s *Store) ListAssignedNumbersByOrder(ctx context.Context, orderID string) ([]int, error) {
	var numbers []int
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.AssignedNumbersTableName),
			IndexName:              aws.String(orderNumbersGSI),
			KeyConditionExpression: aws.String("order_id = :oid"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":oid": &types.AttributeValueMemberS{Value: orderID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query numbers for order: %w", err)
		}

		var assigned []models.AssignedNumber
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &assigned); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assigned numbers: %w", err)
		}
		for _, a := range assigned {
			numbers = append(numbers, a.Number)
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	sort.Ints(numbers)
	return numbers, nil
}

// AllocateNumbers draws order.Quantity distinct unassigned numbers and binds
// them to the order as one atomic unit. Uniqueness is not probabilistic: every
// number put carries an attribute_not_exists condition, and the whole batch
// rides in a single TransactWriteItems together with the order's
// allocation-marker flip. A conflicting concurrent draw for another order
// cancels the transaction, and the draw retries against a fresh read of the
// pool. A concurrent draw for the same order trips the marker condition and
// surfaces ErrAlreadyAllocated so the caller can return the winner's set.
func (s *Store) AllocateNumbers(ctx context.Context, order *models.Order, totalNumbers int) ([]int, error) {
	if order.Quantity <= 0 || order.Quantity > maxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity %d out of range", storage.ErrInvalidInput, order.Quantity)
	}

	for attempt := 0; attempt < maxDrawAttempts; attempt++ {
		free, err := s.freeNumbers(ctx, order.RaffleId, totalNumbers)
		if err != nil {
			return nil, err
		}
		if len(free) < order.Quantity {
			return nil, fmt.Errorf("raffle %s has %d free numbers, need %d: %w",
				order.RaffleId, len(free), order.Quantity, storage.ErrNoStock)
		}

		rand.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })
		drawn := free[:order.Quantity]

		err = s.bindNumbers(ctx, order, drawn)
		if err == nil {
			sorted := append([]int(nil), drawn...)
			sort.Ints(sorted)
			return sorted, nil
		}
		if errors.Is(err, storage.ErrAlreadyAllocated) {
			return nil, err
		}
		if errors.Is(err, errDrawConflict) {
			continue
		}
		return nil, err
	}

	return nil, fmt.Errorf("allocation for order %s still contended after %d attempts", order.Id, maxDrawAttempts)
}

// errDrawConflict signals that a concurrent allocation for a different order
// grabbed one of the sampled numbers first. Internal to the retry loop.
var errDrawConflict = errors.New("draw conflicted with a concurrent allocation")

// freeNumbers loads the assigned set for a raffle and returns its complement
// over [1, totalNumbers].
func (s *Store) freeNumbers(ctx context.Context, raffleID string, totalNumbers int) ([]int, error) {
	taken := make(map[int]struct{})
	var startKey map[string]types.AttributeValue

	for {
		result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.AssignedNumbersTableName),
			KeyConditionExpression: aws.String("raffle_id = :rid"),
			ProjectionExpression:   aws.String("#n"),
			ExpressionAttributeNames: map[string]string{
				"#n": "number",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rid": &types.AttributeValueMemberS{Value: raffleID},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load assigned numbers: %w", err)
		}

		var assigned []models.AssignedNumber
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &assigned); err != nil {
			return nil, fmt.Errorf("failed to unmarshal assigned numbers: %w", err)
		}
		for _, a := range assigned {
			taken[a.Number] = struct{}{}
		}

		if result.LastEvaluatedKey == nil {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	free := make([]int, 0, totalNumbers-len(taken))
	for n := 1; n <= totalNumbers; n++ {
		if _, ok := taken[n]; !ok {
			free = append(free, n)
		}
	}
	return free, nil
}

// bindNumbers writes the drawn numbers and flips the order's allocation marker
// in a single transaction. All rows or none.
func (s *Store) bindNumbers(ctx context.Context, order *models.Order, drawn []int) error {
	now := time.Now()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp for bind: %w", err)
	}

	items := make([]types.TransactWriteItem, 0, len(drawn)+1)
	for _, number := range drawn {
		av, err := attributevalue.MarshalMap(models.AssignedNumber{
			RaffleId:   order.RaffleId,
			Number:     number,
			OrderId:    order.Id,
			AssignedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to marshal assigned number: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.AssignedNumbersTableName),
				Item:                av,
				ConditionExpression: aws.String("attribute_not_exists(raffle_id)"),
			},
		})
	}

	// The marker update is last: its index in the cancellation reasons tells a
	// same-order race apart from a cross-order number conflict.
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.OrdersTableName),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: order.Id},
			},
			UpdateExpression:    aws.String("SET allocation = :done, updated_at = :now"),
			ConditionExpression: aws.String("#status = :paid AND allocation = :none"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":done": &types.AttributeValueMemberS{Value: string(models.AllocationDone)},
				":none": &types.AttributeValueMemberS{Value: string(models.AllocationNone)},
				":paid": &types.AttributeValueMemberS{Value: string(models.PAID)},
				":now":  nowAV,
			},
		},
	})

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err == nil {
		return nil
	}

	var tce *types.TransactionCanceledException
	if errors.As(err, &tce) && len(tce.CancellationReasons) == len(items) {
		markerReason := tce.CancellationReasons[len(items)-1]
		if markerReason.Code != nil && *markerReason.Code == "ConditionalCheckFailed" {
			return fmt.Errorf("order %s: %w", order.Id, storage.ErrAlreadyAllocated)
		}
		for _, reason := range tce.CancellationReasons[:len(items)-1] {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return errDrawConflict
			}
		}
	}

	return fmt.Errorf("failed to execute bind transaction: %w", err)
}
