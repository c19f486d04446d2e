package kinesis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/example/marketplace-backend/internal/domain/order"
)

// ConvertFromKinesisRecord converts a Kinesis record (DynamoDB Streams
// format, fed from the orders table) into a StatusChanged event.
// Returns nil for records that are not status changes.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*order.StatusChanged, error) {
	var dynamoDBRecord events.DynamoDBEventRecord
	if err := json.Unmarshal(record.Kinesis.Data, &dynamoDBRecord); err != nil {
		return nil, fmt.Errorf("failed to unmarshal DynamoDB record: %w", err)
	}
	return ConvertFromDynamoDBStreamRecord(dynamoDBRecord)
}

// ConvertFromDynamoDBStreamRecord converts a DynamoDB Stream record to a
// StatusChanged event. Only MODIFY records where order_status actually moved
// produce an event.
func ConvertFromDynamoDBStreamRecord(record events.DynamoDBEventRecord) (*order.StatusChanged, error) {
	if record.EventName != "MODIFY" {
		return nil, nil
	}

	oldImage := record.Change.OldImage
	newImage := record.Change.NewImage
	if oldImage == nil || newImage == nil {
		return nil, fmt.Errorf("DynamoDB record is missing images")
	}

	from := order.Status(stringAttr(oldImage, "order_status"))
	to := order.Status(stringAttr(newImage, "order_status"))
	if from == to {
		return nil, nil
	}

	e := &order.StatusChanged{
		OrderID:        stringAttr(newImage, "id"),
		OrderNumber:    stringAttr(newImage, "order_number"),
		SellerID:       stringAttr(newImage, "seller_id"),
		BuyerID:        stringAttr(newImage, "buyer_id"),
		CustomerEmail:  stringAttr(newImage, "customer_email"),
		From:           from,
		To:             to,
		TrackingNumber: stringAttr(newImage, "tracking_number"),
	}
	if e.OrderID == "" || e.To == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, order_status=%s", e.OrderID, e.To)
	}

	if v, ok := newImage["updated_at"]; ok {
		t, err := time.Parse(time.RFC3339Nano, v.String())
		if err != nil {
			return nil, fmt.Errorf("failed to parse updated_at: %w", err)
		}
		e.ChangedAt = t
	}

	return e, nil
}

func stringAttr(image map[string]events.DynamoDBAttributeValue, name string) string {
	v, ok := image[name]
	if !ok {
		return ""
	}
	return v.String()
}
