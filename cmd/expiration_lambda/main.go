package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/joho/godotenv"
	"github.com/rvallim/raffle-allocation/pkg/models"
	"github.com/rvallim/raffle-allocation/pkg/scheduler"
	"github.com/rvallim/raffle-allocation/pkg/storage"
	dydbstore "github.com/rvallim/raffle-allocation/pkg/storage/dynamodb"
)

var store storage.Storage
var sqsScheduler scheduler.Scheduler

func init() {
	// Load environment variables from .env file (useful for local testing).
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize dependencies once.
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

	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	sqsScheduler = scheduler.NewSQSScheduler(sqs.NewFromConfig(cfg), sqsQueueURL)

	store = dydbstore.New(dbClient, ordersTable, rafflesTable, assignedTable)
}

// HandleRequest processes SQS expiration messages. SQS caps per-message delay
// at 15 minutes, so messages that arrive before their expiry time are bounced
// back onto the queue with the remaining delay.
func HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) error {
	for _, message := range sqsEvent.Records {
		log.Printf("Processing message %s", message.MessageId)

		var exp scheduler.ExpirationMessage
		if err := json.Unmarshal([]byte(message.Body), &exp); err != nil {
			log.Printf("ERROR: failed to unmarshal expiration from SQS message %s: %v", message.MessageId, err)
			// Returning an error will cause SQS to retry the message, which is appropriate here.
			return err
		}

		if remaining := time.Until(exp.ExpiresAt); remaining > 0 {
			log.Printf("Order %s expires in %s, re-enqueuing", exp.OrderId, remaining)
			order := &models.Order{Id: exp.OrderId, ExpiresAt: exp.ExpiresAt}
			if err := sqsScheduler.ScheduleExpiration(ctx, order, remaining); err != nil {
				log.Printf("ERROR: failed to re-enqueue expiration for order %s: %v", exp.OrderId, err)
				return err
			}
			continue
		}

		// CancelIfUnpaid is a no-op for orders that were paid in the meantime.
		if err := store.CancelIfUnpaid(ctx, exp.OrderId); err != nil {
			log.Printf("ERROR: failed to expire order %s: %v", exp.OrderId, err)
			return err
		}

		log.Printf("Expiration check complete for order %s", exp.OrderId)
	}

	return nil
}

func main() {
	lambda.Start(HandleRequest)
}
