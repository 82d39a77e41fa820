package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ItemKey identifies one table item for deletion.
type ItemKey struct {
	PK string
	SK string
}

// EntityType groups item keys for per-type batched deletes.
func (k ItemKey) EntityType() string {
	switch {
	case k.SK == SKProfile, strings.HasPrefix(k.SK, "DOCUMENT#"):
		return "customer"
	case strings.HasPrefix(k.SK, "POLICY#"):
		return "policy"
	case strings.HasPrefix(k.SK, "CLAIM#"):
		return "claim"
	default:
		return "other"
	}
}

// ListCustomerKeys returns the keys of every item in the customer's
// partition, following pagination.
func (r *Repo) ListCustomerKeys(ctx context.Context, customerID string) ([]ItemKey, error) {
	var keys []ItemKey
	var start map[string]types.AttributeValue
	for {
		resp, err := r.DB.Query(ctx, &dynamodb.QueryInput{
			TableName:              &r.Table,
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: CustomerPK(customerID)},
			},
			ProjectionExpression: aws.String("PK, SK"),
			ExclusiveStartKey:    start,
		})
		if err != nil {
			return nil, fmt.Errorf("list customer %s: %w", customerID, err)
		}
		for _, item := range resp.Items {
			pk, _ := item["PK"].(*types.AttributeValueMemberS)
			sk, _ := item["SK"].(*types.AttributeValueMemberS)
			if pk == nil || sk == nil {
				continue
			}
			keys = append(keys, ItemKey{PK: pk.Value, SK: sk.Value})
		}
		if len(resp.LastEvaluatedKey) == 0 {
			break
		}
		start = resp.LastEvaluatedKey
	}
	return keys, nil
}

// batchMax is DynamoDB's BatchWriteItem request ceiling.
const batchMax = 25

// DeleteKeys issues batched deletes for the given keys. All keys in one call
// should belong to a single entity type; chunks beyond the batch ceiling are
// issued sequentially. Unprocessed keys are returned as an error rather than
// retried.
func (r *Repo) DeleteKeys(ctx context.Context, keys []ItemKey) error {
	for len(keys) > 0 {
		n := len(keys)
		if n > batchMax {
			n = batchMax
		}
		chunk := keys[:n]
		keys = keys[n:]

		reqs := make([]types.WriteRequest, 0, len(chunk))
		for _, k := range chunk {
			reqs = append(reqs, types.WriteRequest{DeleteRequest: &types.DeleteRequest{
				Key: map[string]types.AttributeValue{
					"PK": &types.AttributeValueMemberS{Value: k.PK},
					"SK": &types.AttributeValueMemberS{Value: k.SK},
				},
			}})
		}
		resp, err := r.DB.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{r.Table: reqs},
		})
		if err != nil {
			return fmt.Errorf("batch delete: %w", err)
		}
		if unprocessed := resp.UnprocessedItems[r.Table]; len(unprocessed) > 0 {
			return fmt.Errorf("batch delete: %d keys unprocessed", len(unprocessed))
		}
	}
	return nil
}

// DeleteIdentityLink removes the token's link item.
func (r *Repo) DeleteIdentityLink(ctx context.Context, token string) error {
	return r.DeleteKeys(ctx, []ItemKey{{PK: IdentityPK(token), SK: SKLink}})
}
