package store

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/marketplace-backend/internal/domain/order"
	"github.com/example/marketplace-backend/internal/domain/product"
)

// sellerIndex is the GSI projecting orders and products by their owning
// seller, keyed on seller_id with created_at as the sort key.
const sellerIndex = "seller_id-index"

// DynamoStore implements OrderStore and ProductStore against DynamoDB.
type DynamoStore struct {
	client        *dynamodb.Client
	ordersTable   string
	productsTable string
}

func NewDynamoStore(client *dynamodb.Client, ordersTable, productsTable string) *DynamoStore {
	return &DynamoStore{
		client:        client,
		ordersTable:   ordersTable,
		productsTable: productsTable,
	}
}

// dynamoOrder represents the DynamoDB item structure for an order
type dynamoOrder struct {
	ID             string `dynamodbav:"id"`
	SellerID       string `dynamodbav:"seller_id"`
	BuyerID        string `dynamodbav:"buyer_id"`
	OrderNumber    string `dynamodbav:"order_number"`
	CustomerEmail  string `dynamodbav:"customer_email,omitempty"`
	OrderStatus    string `dynamodbav:"order_status"`
	Items          string `dynamodbav:"items"`
	Total          int    `dynamodbav:"total"`
	TrackingNumber string `dynamodbav:"tracking_number,omitempty"`
	CreatedAt      string `dynamodbav:"created_at"`
	UpdatedAt      string `dynamodbav:"updated_at"`
}

func toDynamoOrder(o *order.Order) (dynamoOrder, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return dynamoOrder{}, fmt.Errorf("failed to marshal items: %w", err)
	}
	return dynamoOrder{
		ID:             o.ID,
		SellerID:       o.SellerID,
		BuyerID:        o.BuyerID,
		OrderNumber:    o.OrderNumber,
		CustomerEmail:  o.CustomerEmail,
		OrderStatus:    string(o.Status),
		Items:          string(items),
		Total:          o.Total,
		TrackingNumber: o.TrackingNumber,
		CreatedAt:      o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:      o.UpdatedAt.Format(time.RFC3339Nano),
	}, nil
}

func fromDynamoOrder(do dynamoOrder) *order.Order {
	var items []order.LineItem
	_ = json.Unmarshal([]byte(do.Items), &items)
	createdAt, _ := time.Parse(time.RFC3339Nano, do.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, do.UpdatedAt)

	return &order.Order{
		ID:             do.ID,
		SellerID:       do.SellerID,
		BuyerID:        do.BuyerID,
		OrderNumber:    do.OrderNumber,
		CustomerEmail:  do.CustomerEmail,
		Status:         order.Status(do.OrderStatus),
		Items:          items,
		Total:          do.Total,
		TrackingNumber: do.TrackingNumber,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}
}

func (s *DynamoStore) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.ordersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if result.Item == nil {
		return nil, order.ErrNotFound
	}

	var do dynamoOrder
	if err := attributevalue.UnmarshalMap(result.Item, &do); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}
	return fromDynamoOrder(do), nil
}

func (s *DynamoStore) ListOrdersBySeller(ctx context.Context, sellerID string, limit int32, nextToken string) ([]*order.Order, string, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.ordersTable),
		IndexName:              aws.String(sellerIndex),
		KeyConditionExpression: aws.String("seller_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sellerID},
		},
		ScanIndexForward: aws.Bool(false), // newest first
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}
	if nextToken != "" {
		startKey, err := decodePageToken(nextToken)
		if err != nil {
			return nil, "", err
		}
		input.ExclusiveStartKey = startKey
	}

	result, err := s.client.Query(ctx, input)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query orders: %w", err)
	}

	orders := make([]*order.Order, 0, len(result.Items))
	for _, item := range result.Items {
		var do dynamoOrder
		if err := attributevalue.UnmarshalMap(item, &do); err != nil {
			continue
		}
		orders = append(orders, fromDynamoOrder(do))
	}

	token := ""
	if len(result.LastEvaluatedKey) > 0 {
		token, err = encodePageToken(result.LastEvaluatedKey)
		if err != nil {
			return nil, "", err
		}
	}
	return orders, token, nil
}

func (s *DynamoStore) PutOrder(ctx context.Context, o *order.Order) error {
	do, err := toDynamoOrder(o)
	if err != nil {
		return err
	}
	av, err := attributevalue.MarshalMap(do)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.ordersTable),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}

// UpdateOrderStatus writes only the allow-listed status fields, conditional
// on the status the caller observed and the owning seller. An existing
// tracking number is never erased by an empty one.
func (s *DynamoStore) UpdateOrderStatus(ctx context.Context, u StatusUpdate) error {
	update := "SET order_status = :to, updated_at = :at"
	values := map[string]types.AttributeValue{
		":to":   &types.AttributeValueMemberS{Value: string(u.To)},
		":at":   &types.AttributeValueMemberS{Value: u.UpdatedAt.Format(time.RFC3339Nano)},
		":from": &types.AttributeValueMemberS{Value: string(u.From)},
		":sid":  &types.AttributeValueMemberS{Value: u.SellerID},
	}
	if u.TrackingNumber != "" {
		update += ", tracking_number = :trk"
		values[":trk"] = &types.AttributeValueMemberS{Value: u.TrackingNumber}
	}

	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.ordersTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: u.OrderID},
		},
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("order_status = :from AND seller_id = :sid"),
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to update order status: %w", err)
	}
	return nil
}

// dynamoProduct represents the DynamoDB item structure for a product
type dynamoProduct struct {
	ID          string `dynamodbav:"id"`
	SellerID    string `dynamodbav:"seller_id"`
	Name        string `dynamodbav:"name"`
	Description string `dynamodbav:"description,omitempty"`
	Price       int    `dynamodbav:"price"`
	Stock       int    `dynamodbav:"stock"`
	Category    string `dynamodbav:"category,omitempty"`
	ImageURL    string `dynamodbav:"image_url,omitempty"`
	Active      bool   `dynamodbav:"active"`
	CreatedAt   string `dynamodbav:"created_at"`
	UpdatedAt   string `dynamodbav:"updated_at"`
}

func toDynamoProduct(p *product.Product) dynamoProduct {
	return dynamoProduct{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	}
}

func fromDynamoProduct(dp dynamoProduct) *product.Product {
	createdAt, _ := time.Parse(time.RFC3339Nano, dp.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339Nano, dp.UpdatedAt)
	return &product.Product{
		ID:          dp.ID,
		SellerID:    dp.SellerID,
		Name:        dp.Name,
		Description: dp.Description,
		Price:       dp.Price,
		Stock:       dp.Stock,
		Category:    dp.Category,
		ImageURL:    dp.ImageURL,
		Active:      dp.Active,
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}
}

func (s *DynamoStore) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.productsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if result.Item == nil {
		return nil, product.ErrNotFound
	}

	var dp dynamoProduct
	if err := attributevalue.UnmarshalMap(result.Item, &dp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}
	return fromDynamoProduct(dp), nil
}

func (s *DynamoStore) CreateProduct(ctx context.Context, p *product.Product) error {
	return s.putProduct(ctx, p, aws.String("attribute_not_exists(id)"), nil)
}

func (s *DynamoStore) UpdateProduct(ctx context.Context, p *product.Product) error {
	return s.putProduct(ctx, p, aws.String("seller_id = :sid"), map[string]types.AttributeValue{
		":sid": &types.AttributeValueMemberS{Value: p.SellerID},
	})
}

func (s *DynamoStore) putProduct(ctx context.Context, p *product.Product, condition *string, values map[string]types.AttributeValue) error {
	av, err := attributevalue.MarshalMap(toDynamoProduct(p))
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.productsTable),
		Item:                      av,
		ConditionExpression:       condition,
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to put product: %w", err)
	}
	return nil
}

func (s *DynamoStore) DeleteProduct(ctx context.Context, id, sellerID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.productsTable),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConditionExpression: aws.String("seller_id = :sid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sid": &types.AttributeValueMemberS{Value: sellerID},
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return ErrConditionFailed
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func isConditionalCheckFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}

// Page tokens are the base64-encoded LastEvaluatedKey, opaque to callers.

func encodePageToken(key map[string]types.AttributeValue) (string, error) {
	plain := map[string]string{}
	for k, v := range key {
		sv, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			return "", fmt.Errorf("unsupported page key attribute %q", k)
		}
		plain[k] = sv.Value
	}
	data, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

func decodePageToken(token string) (map[string]types.AttributeValue, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("invalid page token: %w", err)
	}
	var plain map[string]string
	if err := json.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("invalid page token: %w", err)
	}
	key := make(map[string]types.AttributeValue, len(plain))
	for k, v := range plain {
		key[k] = &types.AttributeValueMemberS{Value: v}
	}
	return key, nil
}
