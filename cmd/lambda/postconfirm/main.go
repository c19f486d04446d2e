package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/example/marketplace-backend/internal/identity"
)

var provisioner *identity.Provisioner

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("[PostConfirm] Failed to load AWS config: %v", err)
	}
	provisioner = identity.NewProvisioner(cognitoidentityprovider.NewFromConfig(cfg))
	log.Println("[PostConfirm] Initialized successfully")
}

// handler assigns the confirmed user to its group. Group assignment never
// blocks signup: any failure is logged and the event returned unchanged.
func handler(ctx context.Context, event events.CognitoEventUserPoolsPostConfirmation) (events.CognitoEventUserPoolsPostConfirmation, error) {
	signupType := event.Request.UserAttributes["custom:signupType"]

	group, err := provisioner.AssignGroup(ctx, event.UserPoolID, event.UserName, signupType)
	if err != nil {
		log.Printf("[PostConfirm] %v", err)
		return event, nil
	}

	log.Printf("[PostConfirm] Added %s to group %s", event.UserName, group)
	return event, nil
}

func main() {
	lambda.Start(handler)
}
