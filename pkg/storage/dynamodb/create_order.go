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
	"github.com/google/uuid"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// maxOrderQuantity bounds an order so that its draw-and-bind and its revert
// each fit in a single TransactWriteItems call (100 item hard limit, one slot
// reserved for the order marker update).
const maxOrderQuantity = 99

// txRefKey is the synthetic order-table key that reserves a client transaction
// reference. Holding it in the same table lets order creation and reference
// reservation share one TransactWriteItems.
func txRefKey(clientTxRef string) string {
	return "txref#" + clientTxRef
}

// txRefRecord reserves a client transaction reference and points at its owner.
type txRefRecord struct {
	Id      string `dynamodbav:"id"`
	OrderId string `dynamodbav:"order_id"`
}

// CreateOrder creates a new order. Creation is idempotent on the client
// transaction reference: a second create carrying the same reference returns
// the first order instead of a duplicate, even when the two creates race.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", storage.ErrInvalidInput)
	}
	if order.Quantity > maxOrderQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds %d", storage.ErrInvalidInput, maxOrderQuantity)
	}

	// Fast path for gateway-initiated retries: the reference already resolves.
	if order.ClientTxRef != "" {
		existing, err := s.GetOrderByClientTxRef(ctx, order.ClientTxRef)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("failed to resolve client transaction reference: %w", err)
		}
	}

	// Complete the order object with server-side details.
	now := time.Now()
	order.Id = uuid.New().String()
	order.Status = models.PENDING
	order.Allocation = models.AllocationNone
	order.CreatedAt = now
	order.UpdatedAt = now

	orderAV, err := attributevalue.MarshalMap(order)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	if order.ClientTxRef == "" {
		_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
			TableName:           aws.String(s.OrdersTableName),
			Item:                orderAV,
			ConditionExpression: aws.String("attribute_not_exists(id)"),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create order: %w", err)
		}
		return order, nil
	}

	refAV, err := attributevalue.MarshalMap(txRefRecord{
		Id:      txRefKey(order.ClientTxRef),
		OrderId: order.Id,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reference record: %w", err)
	}

	// The reference record enforces uniqueness of client_tx_ref: two racing
	// creates both reach here, but only one put of the reference item succeeds.
	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				Put: &types.Put{
					TableName:           aws.String(s.OrdersTableName),
					Item:                orderAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				Put: &types.Put{
					TableName:           aws.String(s.OrdersTableName),
					Item:                refAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					// Lost the race: another create reserved the reference first.
					existing, lookupErr := s.GetOrderByClientTxRef(ctx, order.ClientTxRef)
					if lookupErr != nil {
						return nil, fmt.Errorf("reference already reserved but owner lookup failed: %w", lookupErr)
					}
					return existing, nil
				}
			}
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	return order, nil
}
