package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

const unallocatedOrdersGSI = "status-created_at-index"

// GetOrder retrieves an order from DynamoDB by its ID.
func (s *Store) GetOrder(ctx context.Context, orderID string) (*models.Order, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": orderID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.OrdersTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, storage.ErrNotFound)
	}

	var order models.Order
	if err := attributevalue.UnmarshalMap(result.Item, &order); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	return &order, nil
}

// GetOrderByClientTxRef resolves the order owning a client transaction
// reference through the reference record written at creation time.
func (s *Store) GetOrderByClientTxRef(ctx context.Context, clientTxRef string) (*models.Order, error) {
	if clientTxRef == "" {
		return nil, fmt.Errorf("%w: empty client transaction reference", storage.ErrInvalidInput)
	}

	key, err := attributevalue.MarshalMap(map[string]string{"id": txRefKey(clientTxRef)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reference key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.OrdersTableName),
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reference record from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("client transaction reference %s: %w", clientTxRef, storage.ErrNotFound)
	}

	var ref txRefRecord
	if err := attributevalue.UnmarshalMap(result.Item, &ref); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference record: %w", err)
	}

	return s.GetOrder(ctx, ref.OrderId)
}

// GetUnallocatedPaidOrders retrieves orders that were paid more than maxAge
// ago but still have no numbers bound. These are re-driven by reconciliation.
func (s *Store) GetUnallocatedPaidOrders(ctx context.Context, maxAge time.Duration) ([]models.Order, error) {
	cutoffTime := time.Now().Add(-maxAge)
	cutoffTimeStr, err := cutoffTime.MarshalText()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.OrdersTableName),
		IndexName:              aws.String(unallocatedOrdersGSI),
		KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
		FilterExpression:       aws.String("allocation = :none"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": &types.AttributeValueMemberS{Value: string(models.PAID)},
			":cutoff": &types.AttributeValueMemberS{Value: string(cutoffTimeStr)},
			":none":   &types.AttributeValueMemberS{Value: string(models.AllocationNone)},
		},
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query for unallocated paid orders: %w", err)
	}

	var orders []models.Order
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &orders); err != nil {
		return nil, fmt.Errorf("failed to unmarshal orders: %w", err)
	}

	return orders, nil
}
