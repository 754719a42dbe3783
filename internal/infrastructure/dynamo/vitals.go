package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/portfolio-api/internal/domain"
)

// VitalRepo provides typed DynamoDB operations for the web-vitals table.
type VitalRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVitalRepo(client *dynamodb.Client, tableName string) *VitalRepo {
	return &VitalRepo{client: client, tableName: tableName}
}

func (r *VitalRepo) Put(ctx context.Context, v *domain.WebVital) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal web vital: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

// ListSince returns all samples recorded at or after since, paging through
// the table.
func (r *VitalRepo) ListSince(ctx context.Context, since time.Time) ([]domain.WebVital, error) {
	var vitals []domain.WebVital
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("recorded_at >= :s"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":s": &types.AttributeValueMemberS{Value: since.UTC().Format(time.RFC3339)},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("scan web vitals: %w", err)
		}
		var page []domain.WebVital
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		vitals = append(vitals, page...)
		if out.LastEvaluatedKey == nil {
			return vitals, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
