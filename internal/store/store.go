// Package store persists Customer, Policy, Claim, and Document records in a
// single DynamoDB table keyed for point lookups and prefix scans.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// DynamoAPI is the slice of the DynamoDB client the repo uses.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// Repo wraps a DynamoDB client and table name for entity operations.
type Repo struct {
	DB    DynamoAPI
	Table string
}

// NowISO returns the current time in ISO8601 format.
func NowISO() string { return time.Now().UTC().Format(time.RFC3339) }

// Key builders. The table is single-table: every record for a customer lives
// under its CUSTOMER# partition, identity links under their own.

func CustomerPK(customerID string) string { return fmt.Sprintf("CUSTOMER#%s", customerID) }
func IdentityPK(token string) string      { return fmt.Sprintf("IDENTITY#%s", token) }
func PolicySK(policyID string) string     { return fmt.Sprintf("POLICY#%s", policyID) }
func ClaimSK(claimID string) string       { return fmt.Sprintf("CLAIM#%s", claimID) }
func DocumentSK(dt models.DocumentType) string {
	return fmt.Sprintf("DOCUMENT#%s", dt)
}

// SK constants for single-slot items.
const (
	SKProfile = "PROFILE"
	SKLink    = "LINK"
)

// CreateCustomer writes the profile, identity link, and one policy per
// vehicle as a single transaction: all items land or none do. The identity
// link is condition-guarded so a token can never be re-linked.
func (r *Repo) CreateCustomer(ctx context.Context, p models.Profile, link models.IdentityLink, policies []models.Policy) error {
	items := make([]types.TransactWriteItem, 0, len(policies)+2)

	profileItem, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName: &r.Table,
		Item:      profileItem,
	}})

	linkItem, err := attributevalue.MarshalMap(link)
	if err != nil {
		return fmt.Errorf("marshal identity link: %w", err)
	}
	items = append(items, types.TransactWriteItem{Put: &types.Put{
		TableName:           &r.Table,
		Item:                linkItem,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	}})

	for _, pol := range policies {
		polItem, err := attributevalue.MarshalMap(pol)
		if err != nil {
			return fmt.Errorf("marshal policy %s: %w", pol.PolicyID, err)
		}
		items = append(items, types.TransactWriteItem{Put: &types.Put{
			TableName: &r.Table,
			Item:      polItem,
		}})
	}

	_, err = r.DB.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		return fmt.Errorf("create customer %s: %w", p.CustomerID, err)
	}
	return nil
}

// GetProfile loads the single-slot profile record.
func (r *Repo) GetProfile(ctx context.Context, customerID string) (models.Profile, error) {
	var p models.Profile
	err := r.getItem(ctx, CustomerPK(customerID), SKProfile, &p)
	return p, err
}

// GetPolicy loads one policy under a customer.
func (r *Repo) GetPolicy(ctx context.Context, customerID, policyID string) (models.Policy, error) {
	var p models.Policy
	err := r.getItem(ctx, CustomerPK(customerID), PolicySK(policyID), &p)
	return p, err
}

// GetClaim loads one claim under a customer.
func (r *Repo) GetClaim(ctx context.Context, customerID, claimID string) (models.Claim, error) {
	var c models.Claim
	err := r.getItem(ctx, CustomerPK(customerID), ClaimSK(claimID), &c)
	return c, err
}

// GetDocumentRecord loads the latest extraction result for a document type.
func (r *Repo) GetDocumentRecord(ctx context.Context, customerID string, dt models.DocumentType) (models.DocumentRecord, error) {
	var d models.DocumentRecord
	err := r.getItem(ctx, CustomerPK(customerID), DocumentSK(dt), &d)
	return d, err
}

// ResolveIdentity returns the customer id linked to an identity token.
func (r *Repo) ResolveIdentity(ctx context.Context, token string) (string, error) {
	var link models.IdentityLink
	if err := r.getItem(ctx, IdentityPK(token), SKLink, &link); err != nil {
		return "", err
	}
	return link.CustomerID, nil
}

// PutClaim inserts a new claim, refusing duplicates of the same id.
func (r *Repo) PutClaim(ctx context.Context, c models.Claim) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return err
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &r.Table,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
	})
	return err
}

// PutDocumentRecord overwrites the extraction result for (customer, type).
func (r *Repo) PutDocumentRecord(ctx context.Context, d models.DocumentRecord) error {
	item, err := attributevalue.MarshalMap(d)
	if err != nil {
		return err
	}
	_, err = r.DB.PutItem(ctx, &dynamodb.PutItemInput{TableName: &r.Table, Item: item})
	return err
}

// SetPolicyValidated sets the validated flag to true. The write is an
// absolute upsert on the value, so duplicate deliveries are harmless.
func (r *Repo) SetPolicyValidated(ctx context.Context, customerID, policyID string) error {
	_, err := r.DB.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: CustomerPK(customerID)},
			"SK": &types.AttributeValueMemberS{Value: PolicySK(policyID)},
		},
		UpdateExpression:    aws.String("SET validated = :v"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	var cfe *types.ConditionalCheckFailedException
	if errors.As(err, &cfe) {
		return ErrNotFound
	}
	return err
}

func (r *Repo) getItem(ctx context.Context, pk, sk string, out any) error {
	resp, err := r.DB.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &r.Table,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Item) == 0 {
		return fmt.Errorf("%s/%s: %w", pk, sk, ErrNotFound)
	}
	return attributevalue.UnmarshalMap(resp.Item, out)
}
