package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/joho/godotenv"
	"github.com/rvallim/raffle-allocation/pkg/allocation"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	dydbstore "github.com/rvallim/raffle-allocation/pkg/storage/dynamodb"
)

var store storage.Storage
var engine *allocation.Engine

// stuckOrderThreshold is how long a paid order may sit without numbers before
// the sweep picks it up. Long enough to stay clear of in-flight webhooks.
const stuckOrderThreshold = 20 * time.Minute

func init() {
	// Load environment variables for local testing.
	godotenv.Load()

	cfg, err := config.LoadDefaultConfig(context.TODO())
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	dbClient := dynamodb.NewFromConfig(cfg)

	ordersTable := os.Getenv("DYNAMODB_ORDERS_TABLE_NAME")
	rafflesTable := os.Getenv("DYNAMODB_RAFFLES_TABLE_NAME")
	assignedTable := os.Getenv("DYNAMODB_ASSIGNED_NUMBERS_TABLE_NAME")

	if ordersTable == "" || rafflesTable == "" || assignedTable == "" {
		log.Fatal("One or more DynamoDB table name environment variables are not set")
	}

	dydb := dydbstore.New(dbClient, ordersTable, rafflesTable, assignedTable)
	store = dydb
	engine = allocation.NewEngine(dydb)
}

// HandleRequest is triggered by an EventBridge Schedule. It finds paid orders
// that never received their numbers and drives the allocation to completion.
func HandleRequest(ctx context.Context) error {
	log.Println("Starting reconciliation process for stuck orders...")

	stuckOrders, err := store.GetUnallocatedPaidOrders(ctx, stuckOrderThreshold)
	if err != nil {
		log.Printf("ERROR: failed to get stuck orders: %v", err)
		return err
	}

	if len(stuckOrders) == 0 {
		log.Println("No stuck orders found.")
		return nil
	}

	log.Printf("Found %d stuck orders. Allocating...", len(stuckOrders))

	for _, order := range stuckOrders {
		result, err := engine.Allocate(ctx, order.Id)
		if err != nil {
			log.Printf("ERROR: failed to allocate for order %s: %v", order.Id, err)
			// Continue to the next order, don't let one failure stop the whole batch.
			continue
		}
		log.Printf("Successfully allocated %d numbers for order %s", len(result.Numbers), order.Id)
	}

	log.Println("Reconciliation process finished.")
	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
