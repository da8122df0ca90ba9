package dynamodb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	"github.com/rvallim/raffle-allocation/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func assignedItems(t *testing.T, raffleID, orderID string, numbers ...int) []map[string]types.AttributeValue {
	t.Helper()
	items := make([]map[string]types.AttributeValue, 0, len(numbers))
	for _, n := range numbers {
		av, err := attributevalue.MarshalMap(models.AssignedNumber{
			RaffleId: raffleID, Number: n, OrderId: orderID, AssignedAt: time.Now(),
		})
		assert.NoError(t, err)
		items = append(items, av)
	}
	return items
}

func TestCountAssigned(t *testing.T) {
	t.Run("Sums Across Pages", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AssignedNumbersTableName: "assigned"}

		lastKey := map[string]types.AttributeValue{"number": &types.AttributeValueMemberN{Value: "5"}}
		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Count: 5, LastEvaluatedKey: lastKey}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Count: 2}, nil)

		count, err := store.CountAssigned(context.Background(), "raffle1")

		assert.NoError(t, err)
		assert.Equal(t, 7, count)
		mockClient.AssertExpectations(t)
	})

	t.Run("Query Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(nil, errors.New("query failed"))

		_, err := store.CountAssigned(context.Background(), "raffle1")

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}

func TestListAssignedNumbersByOrder(t *testing.T) {
	t.Run("Returns Sorted Numbers", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "order1", 9, 2, 5)}, nil)

		numbers, err := store.ListAssignedNumbersByOrder(context.Background(), "order1")

		assert.NoError(t, err)
		assert.Equal(t, []int{2, 5, 9}, numbers)
		mockClient.AssertExpectations(t)
	})

	t.Run("No Numbers Bound", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)

		numbers, err := store.ListAssignedNumbersByOrder(context.Background(), "order1")

		assert.NoError(t, err)
		assert.Empty(t, numbers)
		mockClient.AssertExpectations(t)
	})
}

func TestAllocateNumbers(t *testing.T) {
	order := &models.Order{Id: "order1", RaffleId: "raffle1", Quantity: 3, Status: models.PAID}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "other", 1, 4, 6, 7, 8, 9, 10)}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 4 && input.TransactItems[3].Update != nil
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		numbers, err := store.AllocateNumbers(context.Background(), order, 10)

		assert.NoError(t, err)
		// Only 2, 3 and 5 were free.
		assert.Equal(t, []int{2, 3, 5}, numbers)
		mockClient.AssertExpectations(t)
	})

	t.Run("No Stock", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "other", 1, 2, 3, 4, 5, 6, 7, 8, 9)}, nil)

		_, err := store.AllocateNumbers(context.Background(), order, 10)

		assert.ErrorIs(t, err, storage.ErrNoStock)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
		mockClient.AssertExpectations(t)
	})

	t.Run("Same Order Race Surfaces ErrAlreadyAllocated", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)
		// The marker condition is the last transact item; its failure means
		// the order already has numbers.
		reasons := []types.CancellationReason{
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("ConditionalCheckFailed")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().
			Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})

		_, err := store.AllocateNumbers(context.Background(), order, 10)

		assert.ErrorIs(t, err, storage.ErrAlreadyAllocated)
		mockClient.AssertExpectations(t)
	})

	t.Run("Cross Order Conflict Retries With Fresh Pool", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		// First draw loses a number to a concurrent allocation.
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)
		reasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().
			Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})
		// Second attempt re-reads the pool and succeeds.
		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "other", 1)}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		numbers, err := store.AllocateNumbers(context.Background(), order, 10)

		assert.NoError(t, err)
		assert.Len(t, numbers, 3)
		assert.NotContains(t, numbers, 1)
		mockClient.AssertExpectations(t)
	})

	t.Run("Contention Exhausts Attempts", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		reasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
			{Code: aws.String("None")},
		}
		mockClient.On("Query", mock.Anything, mock.Anything).Times(maxDrawAttempts).Return(&dynamodb.QueryOutput{}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Times(maxDrawAttempts).
			Return(nil, &types.TransactionCanceledException{CancellationReasons: reasons})

		_, err := store.AllocateNumbers(context.Background(), order, 10)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "still contended")
		mockClient.AssertExpectations(t)
	})

	t.Run("Invalid Quantity", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		_, err := store.AllocateNumbers(context.Background(), &models.Order{Id: "order1", RaffleId: "raffle1", Quantity: 0}, 10)

		assert.ErrorIs(t, err, storage.ErrInvalidInput)
		mockClient.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
	})
}
