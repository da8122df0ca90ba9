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

const activeRaffleGSI = "status-index"

// CreateRaffle creates a new raffle. At most one raffle is active at a time:
// a create while another raffle is active fails with ErrInvalidInput.
func (s *Store) CreateRaffle(ctx context.Context, raffle *models.Raffle) (*models.Raffle, error) {
	if raffle.TotalNumbers <= 0 {
		return nil, fmt.Errorf("%w: total_numbers must be positive", storage.ErrInvalidInput)
	}
	if raffle.PricePerNumber < 0 {
		return nil, fmt.Errorf("%w: price_per_number must not be negative", storage.ErrInvalidInput)
	}

	if _, err := s.GetActiveRaffle(ctx); err == nil {
		return nil, fmt.Errorf("%w: an active raffle already exists", storage.ErrInvalidInput)
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for active raffle: %w", err)
	}

	raffle.Id = uuid.New().String()
	raffle.Status = models.RaffleActive
	raffle.CreatedAt = time.Now()

	raffleAV, err := attributevalue.MarshalMap(raffle)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raffle: %w", err)
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.RafflesTableName),
		Item:                raffleAV,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create raffle in DynamoDB: %w", err)
	}

	return raffle, nil
}

// GetRaffle retrieves a raffle from DynamoDB by its ID.
func (s *Store) GetRaffle(ctx context.Context, raffleID string) (*models.Raffle, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": raffleID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal raffle ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.RafflesTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get raffle from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("raffle %s: %w", raffleID, storage.ErrNotFound)
	}

	var raffle models.Raffle
	if err := attributevalue.UnmarshalMap(result.Item, &raffle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raffle: %w", err)
	}

	return &raffle, nil
}

// GetActiveRaffle retrieves the currently active raffle.
func (s *Store) GetActiveRaffle(ctx context.Context) (*models.Raffle, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.RafflesTableName),
		IndexName:              aws.String(activeRaffleGSI),
		KeyConditionExpression: aws.String("#status = :active"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":active": &types.AttributeValueMemberS{Value: string(models.RaffleActive)},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query for active raffle: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("active raffle: %w", storage.ErrNotFound)
	}

	var raffle models.Raffle
	if err := attributevalue.UnmarshalMap(result.Items[0], &raffle); err != nil {
		return nil, fmt.Errorf("failed to unmarshal raffle: %w", err)
	}

	return &raffle, nil
}
