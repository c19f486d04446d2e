package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/marketplace-backend/internal/infrastructure/store"
	"github.com/example/marketplace-backend/internal/resolver"
	"github.com/example/marketplace-backend/internal/seller"
)

var res *resolver.Resolver

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("[Lambda Resolver] Failed to load AWS config: %v", err)
	}

	ds := store.NewDynamoStore(
		dynamodb.NewFromConfig(cfg),
		getEnv("ORDERS_TABLE_NAME", "orders"),
		getEnv("PRODUCTS_TABLE_NAME", "products"),
	)

	// Status changes reach the notifier through the orders table stream, so
	// no in-process publisher is wired here.
	res = resolver.New(seller.NewService(ds, ds, nil))

	log.Println("[Lambda Resolver] Initialized successfully")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	lambda.Start(res.Handle)
}
