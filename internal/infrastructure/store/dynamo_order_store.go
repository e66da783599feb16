package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/example/marketplace-backend/internal/domain/order"
)

// DynamoOrderStore implements order.Store on DynamoDB. One item per order,
// line items and the delivery confirmation serialized as JSON strings, with a
// GSI on user_id for the customer listing and a fixed-value GSI partition for
// the admin listing.
type DynamoOrderStore struct {
	client    *dynamodb.Client
	tableName string
}

type dynamoOrder struct {
	ID            string `dynamodbav:"id"`
	UserID        string `dynamodbav:"user_id"`
	Items         string `dynamodbav:"items"`
	Total         int    `dynamodbav:"total"`
	Commission    int    `dynamodbav:"commission"`
	Status        string `dynamodbav:"status"`
	PaymentMethod string `dynamodbav:"payment_method"`
	PaymentStatus string `dynamodbav:"payment_status"`
	Address       string `dynamodbav:"shipping_address"`
	Delivery      string `dynamodbav:"delivery"`
	Version       int    `dynamodbav:"version"`
	CreatedAt     string `dynamodbav:"created_at"`
	UpdatedAt     string `dynamodbav:"updated_at"`
	GSI1PK        string `dynamodbav:"gsi1pk"`
}

func NewDynamoOrderStore(client *dynamodb.Client, tableName string) *DynamoOrderStore {
	return &DynamoOrderStore{
		client:    client,
		tableName: tableName,
	}
}

func (s *DynamoOrderStore) Insert(ctx context.Context, o *order.Order) error {
	item, err := marshalOrderItem(o)
	if err != nil {
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put order: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
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
	return unmarshalOrderItem(result.Item)
}

// Update writes the order with a conditional expression pinning the stored
// version to the one the caller read. A failed condition maps to ErrConflict
// unless the item is gone entirely.
func (s *DynamoOrderStore) Update(ctx context.Context, o *order.Order) error {
	expected := o.Version
	o.Version = expected + 1
	item, err := marshalOrderItem(o)
	if err != nil {
		o.Version = expected
		return err
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		o.Version = expected
		return fmt.Errorf("failed to marshal order: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.tableName),
		Item:                av,
		ConditionExpression: aws.String("version = :expected"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":expected": &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", expected)},
		},
	})
	if err != nil {
		o.Version = expected
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			if _, getErr := s.Get(ctx, o.ID); getErr != nil {
				return getErr
			}
			return order.ErrConflict
		}
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (s *DynamoOrderStore) ListByUser(ctx context.Context, userID string) ([]*order.Order, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("GSI2"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query orders by user: %w", err)
	}
	return s.unmarshalOrders(result.Items)
}

// ListBySupplier filters the full listing in memory. Items live inside a JSON
// attribute, so there is no index to push the supplier predicate into.
func (s *DynamoOrderStore) ListBySupplier(ctx context.Context, supplierID string) ([]*order.Order, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	var orders []*order.Order
	for _, o := range all {
		if o.ContainsSupplier(supplierID) {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (s *DynamoOrderStore) ListAll(ctx context.Context) ([]*order.Order, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "ORDERS"},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query all orders: %w", err)
	}
	return s.unmarshalOrders(result.Items)
}

func (s *DynamoOrderStore) unmarshalOrders(items []map[string]types.AttributeValue) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(items))
	for _, item := range items {
		o, err := unmarshalOrderItem(item)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	return orders, nil
}

func marshalOrderItem(o *order.Order) (dynamoOrder, error) {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return dynamoOrder{}, err
	}
	deliveryJSON, err := json.Marshal(o.Delivery)
	if err != nil {
		return dynamoOrder{}, err
	}
	return dynamoOrder{
		ID:            o.ID,
		UserID:        o.UserID,
		Items:         string(itemsJSON),
		Total:         o.Total,
		Commission:    o.Commission,
		Status:        string(o.Status),
		PaymentMethod: o.PaymentMethod,
		PaymentStatus: o.PaymentStatus,
		Address:       o.Address,
		Delivery:      string(deliveryJSON),
		Version:       o.Version,
		CreatedAt:     o.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt:     o.UpdatedAt.Format(time.RFC3339Nano),
		GSI1PK:        "ORDERS",
	}, nil
}

func unmarshalOrderItem(item map[string]types.AttributeValue) (*order.Order, error) {
	var do dynamoOrder
	if err := attributevalue.UnmarshalMap(item, &do); err != nil {
		return nil, fmt.Errorf("failed to unmarshal order: %w", err)
	}

	o := &order.Order{
		ID:            do.ID,
		UserID:        do.UserID,
		Total:         do.Total,
		Commission:    do.Commission,
		Status:        order.Status(do.Status),
		PaymentMethod: do.PaymentMethod,
		PaymentStatus: do.PaymentStatus,
		Address:       do.Address,
		Version:       do.Version,
	}
	if err := json.Unmarshal([]byte(do.Items), &o.Items); err != nil {
		return nil, fmt.Errorf("decode order items: %w", err)
	}
	if do.Delivery != "" {
		if err := json.Unmarshal([]byte(do.Delivery), &o.Delivery); err != nil {
			return nil, fmt.Errorf("decode delivery confirmation: %w", err)
		}
	}
	o.CreatedAt, _ = time.Parse(time.RFC3339Nano, do.CreatedAt)
	o.UpdatedAt, _ = time.Parse(time.RFC3339Nano, do.UpdatedAt)
	return o, nil
}
