package s3io

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// MetaReader reads user-defined object metadata, normalizing keys to
// lowercase the way S3 returns them inconsistently across SDKs.
type MetaReader struct {
	Client ObjectAPI
}

// ObjectMeta fetches the user metadata for one object.
func (m *MetaReader) ObjectMeta(ctx context.Context, bucket, key string) (map[string]string, error) {
	ho, err := m.Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	meta := make(map[string]string, len(ho.Metadata))
	for k, v := range ho.Metadata {
		meta[strings.ToLower(k)] = v
	}
	return meta, nil
}
