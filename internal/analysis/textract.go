package analysis

import (
	"context"
	"fmt"

	"github.com/lakeshore-insurance/claims-backend/internal/docpipeline"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	textypes "github.com/aws/aws-sdk-go-v2/service/textract/types"
)

// TextractAPI is the slice of the Textract client used here.
type TextractAPI interface {
	AnalyzeID(ctx context.Context, params *textract.AnalyzeIDInput, optFns ...func(*textract.Options)) (*textract.AnalyzeIDOutput, error)
}

// IdentityExtractor pulls named fields from identity documents via Textract.
type IdentityExtractor struct {
	Client TextractAPI
}

// ExtractIdentity returns every field the analyzer detected with its
// confidence. Filtering is the pipeline's concern.
func (e *IdentityExtractor) ExtractIdentity(ctx context.Context, bucket, key string) ([]docpipeline.IdentityField, error) {
	out, err := e.Client.AnalyzeID(ctx, &textract.AnalyzeIDInput{
		DocumentPages: []textypes.Document{{
			S3Object: &textypes.S3Object{
				Bucket: aws.String(bucket),
				Name:   aws.String(key),
			},
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("analyze id: %w", err)
	}

	var fields []docpipeline.IdentityField
	for _, doc := range out.IdentityDocuments {
		for _, f := range doc.IdentityDocumentFields {
			if f.Type == nil || f.Type.Text == nil || f.ValueDetection == nil {
				continue
			}
			field := docpipeline.IdentityField{
				Name: *f.Type.Text,
				Text: aws.ToString(f.ValueDetection.Text),
			}
			if f.ValueDetection.Confidence != nil {
				field.Confidence = float64(*f.ValueDetection.Confidence)
			}
			fields = append(fields, field)
		}
	}
	return fields, nil
}
