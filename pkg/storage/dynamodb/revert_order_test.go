package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	"github.com/rvallim/raffle-allocation/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestRevertOrder(t *testing.T) {
	t.Run("Releases Numbers And Cancels Atomically", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Quantity: 2, Status: models.PAID, Allocation: models.AllocationDone}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, paid)}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "order1", 3, 7)}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			// Two deletes plus the status update, all in one transaction. The
			// update must carry the allocation marker in its condition.
			return len(input.TransactItems) == 3 &&
				input.TransactItems[0].Delete != nil &&
				input.TransactItems[1].Delete != nil &&
				input.TransactItems[2].Update != nil &&
				*input.TransactItems[2].Update.ConditionExpression == "#status = :current AND allocation = :allocation"
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.RevertOrder(context.Background(), "order1", models.CANCELLED)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Pending Order With No Numbers", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		pending := &models.Order{Id: "order1", RaffleId: "raffle1", Status: models.PENDING, Allocation: models.AllocationNone}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, pending)}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 1 && input.TransactItems[0].Update != nil
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.RevertOrder(context.Background(), "order1", models.CANCELLED)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Lagging Index Aborts Instead Of Partial Release", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		// Marker says done but the order_id-index has not surfaced the rows
		// yet. Committing here would cancel the order and strand its numbers.
		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Quantity: 2, Status: models.PAID, Allocation: models.AllocationDone}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, paid)}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Times(3).Return(&dynamodb.QueryOutput{}, nil)

		err := store.RevertOrder(context.Background(), "order1", models.CANCELLED)

		assert.ErrorIs(t, err, storage.ErrOrderNotRevertible)
		mockClient.AssertNotCalled(t, "TransactWriteItems", mock.Anything, mock.Anything)
		mockClient.AssertExpectations(t)
	})

	t.Run("Lagging Index Recovers On Retry", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Quantity: 2, Status: models.PAID, Allocation: models.AllocationDone}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, paid)}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().
			Return(&dynamodb.QueryOutput{Items: assignedItems(t, "raffle1", "order1", 3, 7)}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.MatchedBy(func(input *dynamodb.TransactWriteItemsInput) bool {
			return len(input.TransactItems) == 3
		})).Once().Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.RevertOrder(context.Background(), "order1", models.CANCELLED)

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Invalid Target Status", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		err := store.RevertOrder(context.Background(), "order1", models.PAID)

		assert.ErrorIs(t, err, storage.ErrInvalidInput)
		mockClient.AssertNotCalled(t, "GetItem", mock.Anything, mock.Anything)
	})

	t.Run("Cancelled Order Is Not Revertible", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		cancelled := &models.Order{Id: "order1", Status: models.CANCELLED}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, cancelled)}, nil)

		err := store.RevertOrder(context.Background(), "order1", models.PENDING)

		assert.ErrorIs(t, err, storage.ErrOrderNotRevertible)
		mockClient.AssertExpectations(t)
	})

	t.Run("Concurrent Change Aborts Revert", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders", AssignedNumbersTableName: "assigned"}

		paid := &models.Order{Id: "order1", RaffleId: "raffle1", Status: models.PAID}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, paid)}, nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(&dynamodb.QueryOutput{}, nil)
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Once().
			Return(nil, &types.TransactionCanceledException{})

		err := store.RevertOrder(context.Background(), "order1", models.CANCELLED)

		assert.ErrorIs(t, err, storage.ErrOrderNotRevertible)
		mockClient.AssertExpectations(t)
	})
}

func TestCancelIfUnpaid(t *testing.T) {
	t.Run("Cancels Pending Order", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)

		err := store.CancelIfUnpaid(context.Background(), "order1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Paid Order Is Left Alone", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})

		err := store.CancelIfUnpaid(context.Background(), "order1")

		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("Update Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, errors.New("update failed"))

		err := store.CancelIfUnpaid(context.Background(), "order1")

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}
