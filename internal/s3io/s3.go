// Package s3io provides utilities for working with the upload bucket,
// including presigned upload handles.
package s3io

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Object metadata keys stamped onto every presigned upload. The document
// pipeline prefers these over parsing the key.
const (
	MetaCustomerID   = "customer_id"
	MetaRecordID     = "record_id"
	MetaDocumentKind = "document_kind"
)

// Presigner defines the interface for presigning S3 requests.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// PresignUpload generates a time-limited write URL for one document upload,
// stamping the customer/record/kind metadata the pipeline reads back.
func PresignUpload(ctx context.Context, p Presigner, bucket, key string, customerID, recordID string, kind Kind, ttl time.Duration) (string, error) {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		ContentType: aws.String("image/jpeg"),
		Metadata: map[string]string{
			MetaCustomerID:   customerID,
			MetaRecordID:     recordID,
			MetaDocumentKind: string(kind),
		},
		ServerSideEncryption: types.ServerSideEncryptionAwsKms,
	}
	req, err := p.PresignPutObject(ctx, input, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", key, err)
	}
	return req.URL, nil
}

// ObjectAPI is the slice of the S3 client used for object listing, metadata,
// and deletion.
type ObjectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// DeletePrefix lists and deletes every object under a customer's namespace.
// It returns the number of objects removed.
func DeletePrefix(ctx context.Context, c ObjectAPI, bucket, prefix string) (int, error) {
	deleted := 0
	var token *string
	for {
		list, err := c.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return deleted, fmt.Errorf("list %s: %w", prefix, err)
		}
		if len(list.Contents) > 0 {
			ids := make([]types.ObjectIdentifier, 0, len(list.Contents))
			for _, obj := range list.Contents {
				ids = append(ids, types.ObjectIdentifier{Key: obj.Key})
			}
			out, err := c.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(bucket),
				Delete: &types.Delete{Objects: ids},
			})
			if err != nil {
				return deleted, fmt.Errorf("delete %s: %w", prefix, err)
			}
			deleted += len(out.Deleted)
			if len(out.Errors) > 0 {
				first := out.Errors[0]
				return deleted, fmt.Errorf("delete %s: %d objects failed (first: %s)",
					prefix, len(out.Errors), aws.ToString(first.Message))
			}
		}
		if list.IsTruncated == nil || !*list.IsTruncated {
			return deleted, nil
		}
		token = list.NextContinuationToken
	}
}
