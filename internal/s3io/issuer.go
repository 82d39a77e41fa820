package s3io

import (
	"context"
	"time"
)

// Issuer issues presigned upload handles against one bucket.
type Issuer struct {
	Presign Presigner
	Bucket  string
	TTL     time.Duration
}

// Issue presigns a PUT for the given key with the pipeline metadata stamped.
func (i *Issuer) Issue(ctx context.Context, key, customerID, recordID string, kind Kind) (string, error) {
	return PresignUpload(ctx, i.Presign, i.Bucket, key, customerID, recordID, kind, i.TTL)
}
