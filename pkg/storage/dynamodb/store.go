package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rvallim/raffle-allocation/pkg/storage"
)

// DynamoDBAPI defines the subset of the DynamoDB client used by the store.
// It exists so the store can be tested against a mockery-generated mock.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                   DynamoDBAPI
	OrdersTableName          string
	RafflesTableName         string
	AssignedNumbersTableName string
	ConnectionsTableName     string
}

// New creates a new Store.
func New(client DynamoDBAPI, ordersTable, rafflesTable, assignedNumbersTable string) *Store {
	return &Store{
		Client:                   client,
		OrdersTableName:          ordersTable,
		RafflesTableName:         rafflesTable,
		AssignedNumbersTableName: assignedNumbersTable,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
