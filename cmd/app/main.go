package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/rvallim/raffle-allocation/pkg/allocation"
	"github.com/rvallim/raffle-allocation/pkg/dispatcher"
	"github.com/rvallim/raffle-allocation/pkg/gateway"
	"github.com/rvallim/raffle-allocation/pkg/handlers/admin"
	"github.com/rvallim/raffle-allocation/pkg/handlers/orders"
	"github.com/rvallim/raffle-allocation/pkg/handlers/webhooks"
	"github.com/rvallim/raffle-allocation/pkg/handlers/websockets"
	"github.com/rvallim/raffle-allocation/pkg/middleware"
	"github.com/rvallim/raffle-allocation/pkg/notify"
	"github.com/rvallim/raffle-allocation/pkg/scheduler"
	dydbstore "github.com/rvallim/raffle-allocation/pkg/storage/dynamodb"
)

func main() {
	// Load environment variables from .env file
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// AWS Session
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

	// SQS Client and Scheduler for order expiration
	sqsClient := sqs.NewFromConfig(cfg)
	sqsQueueURL := os.Getenv("SQS_QUEUE_URL")
	if sqsQueueURL == "" {
		log.Fatal("SQS_QUEUE_URL environment variable not set")
	}
	sqsScheduler := scheduler.NewSQSScheduler(sqsClient, sqsQueueURL)

	// Create our storage implementation
	store := dydbstore.New(dbClient, ordersTable, rafflesTable, assignedTable)

	// Payment gateway client
	gatewayBaseURL := os.Getenv("PAYMENT_GATEWAY_BASE_URL")
	gatewayToken := os.Getenv("PAYMENT_GATEWAY_API_TOKEN")
	if gatewayBaseURL == "" {
		log.Fatal("PAYMENT_GATEWAY_BASE_URL environment variable not set")
	}
	gatewayClient := gateway.NewHTTPClient(gatewayBaseURL, gatewayToken)

	webhookSecret := os.Getenv("WEBHOOK_SECRET")
	if webhookSecret == "" {
		log.Fatal("WEBHOOK_SECRET environment variable not set")
	}
	adminToken := os.Getenv("ADMIN_API_TOKEN")
	if adminToken == "" {
		log.Fatal("ADMIN_API_TOKEN environment variable not set")
	}

	// WebSocket publisher is optional; without an endpoint, allocation pushes
	// are silently skipped.
	var publisher notify.Publisher = &notify.NoOpPublisher{}
	var wsHandler *websockets.Handler
	if wsEndpoint := os.Getenv("WEBSOCKET_API_ENDPOINT"); wsEndpoint != "" {
		store.ConnectionsTableName = os.Getenv("DYNAMODB_CONNECTIONS_TABLE_NAME")
		if store.ConnectionsTableName == "" {
			log.Fatal("DYNAMODB_CONNECTIONS_TABLE_NAME required when WEBSOCKET_API_ENDPOINT is set")
		}
		publisher, err = notify.NewPublisher(store, store, wsEndpoint)
		if err != nil {
			log.Fatalf("failed to create websocket publisher: %v", err)
		}
		wsHandler = websockets.NewHandler(store)
	}

	// Allocation engine plus the dispatcher composing the three triggers
	engine := allocation.NewEngine(store)
	disp := dispatcher.NewDispatcher(store, engine, gatewayClient, publisher)

	ordersHandler := orders.NewOrdersHandler(store, disp, sqsScheduler)
	webhooksHandler := webhooks.NewWebhooksHandler(disp, webhookSecret)
	adminHandler := admin.NewAdminHandler(store, disp)

	// Create a new Chi router
	router := chi.NewRouter()
	router.Use(middleware.NewStructuredLogger(slog.Default()))

	router.Post("/orders", ordersHandler.CreateOrder)
	router.Get("/orders/{orderId}", ordersHandler.GetOrderById)
	router.Post("/orders/confirm", ordersHandler.ConfirmPayment)
	router.Get("/raffles/{raffleId}/progress", ordersHandler.GetRaffleProgress)

	router.Post("/webhooks/payment", webhooksHandler.HandlePaymentNotification)

	if wsHandler != nil {
		router.Get("/ws", wsHandler.ServeHTTP)
	}

	router.Route("/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(adminToken))
		r.Post("/raffles", adminHandler.CreateRaffle)
		r.Post("/orders/{orderId}/mark-paid", adminHandler.MarkOrderPaid)
		r.Post("/orders/{orderId}/revert", adminHandler.RevertOrder)
	})

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080" // Default port if not specified
	}

	log.Printf("Starting server on port %s", port)

	// Start the server
	err = http.ListenAndServe(":"+port, router)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
