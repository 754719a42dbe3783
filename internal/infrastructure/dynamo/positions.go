package dynamo

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/portfolio-api/internal/domain"
)

// PositionRepo provides typed DynamoDB operations for the work-experience table.
type PositionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPositionRepo(client *dynamodb.Client, tableName string) *PositionRepo {
	return &PositionRepo{client: client, tableName: tableName}
}

func (r *PositionRepo) Put(ctx context.Context, p *domain.Position) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal position: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PositionRepo) Get(ctx context.Context, positionID string) (*domain.Position, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("position_id", positionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("position not found: %w", domain.ErrNotFound)
	}
	var p domain.Position
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns all positions, most recent start date first.
func (r *PositionRepo) List(ctx context.Context) ([]domain.Position, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("scan positions: %w", err)
	}
	var positions []domain.Position
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &positions); err != nil {
		return nil, err
	}
	sort.Slice(positions, func(i, j int) bool { return positions[i].StartedAt.After(positions[j].StartedAt) })
	return positions, nil
}
