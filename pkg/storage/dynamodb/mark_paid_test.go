package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	"github.com/rvallim/raffle-allocation/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func orderItem(t *testing.T, order *models.Order) map[string]types.AttributeValue {
	t.Helper()
	av, err := attributevalue.MarshalMap(order)
	assert.NoError(t, err)
	return av
}

func TestMarkOrderPaid(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		pending := &models.Order{Id: "order1", Status: models.PENDING}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, pending)}, nil)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.UpdateItemOutput{}, nil)

		result, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.NoError(t, err)
		assert.Equal(t, models.PAID, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Already Paid Is A No-Op", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		paid := &models.Order{Id: "order1", Status: models.PAID}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, paid)}, nil)

		result, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.NoError(t, err)
		assert.Equal(t, models.PAID, result.Status)
		mockClient.AssertNotCalled(t, "UpdateItem", mock.Anything, mock.Anything)
		mockClient.AssertExpectations(t)
	})

	t.Run("Cancelled Order Is Not Payable", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		cancelled := &models.Order{Id: "order1", Status: models.CANCELLED}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, cancelled)}, nil)

		_, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.ErrorIs(t, err, storage.ErrOrderNotPayable)
		mockClient.AssertExpectations(t)
	})

	t.Run("Concurrent Transition To Paid Succeeds", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		pending := &models.Order{Id: "order1", Status: models.PENDING}
		nowPaid := &models.Order{Id: "order1", Status: models.PAID}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, pending)}, nil)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, nowPaid)}, nil)

		result, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.NoError(t, err)
		assert.Equal(t, models.PAID, result.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Concurrent Transition To Cancelled Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		pending := &models.Order{Id: "order1", Status: models.PENDING}
		nowCancelled := &models.Order{Id: "order1", Status: models.CANCELLED}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, pending)}, nil)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, &types.ConditionalCheckFailedException{})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, nowCancelled)}, nil)

		_, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.ErrorIs(t, err, storage.ErrOrderNotPayable)
		mockClient.AssertExpectations(t)
	})

	t.Run("Order Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.MarkOrderPaid(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Update Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, OrdersTableName: "orders"}

		pending := &models.Order{Id: "order1", Status: models.PENDING}
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: orderItem(t, pending)}, nil)
		mockClient.On("UpdateItem", mock.Anything, mock.Anything).Once().Return(nil, errors.New("update failed"))

		_, err := store.MarkOrderPaid(context.Background(), "order1")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to mark order paid")
		mockClient.AssertExpectations(t)
	})
}
