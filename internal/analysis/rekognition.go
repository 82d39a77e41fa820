// Package analysis adapts the external image-analysis collaborators to the
// document pipeline's interfaces.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/lakeshore-insurance/claims-backend/internal/docpipeline"
	"github.com/lakeshore-insurance/claims-backend/internal/events"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	rektypes "github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// RekognitionAPI is the slice of the Rekognition client used here.
type RekognitionAPI interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
	DetectCustomLabels(ctx context.Context, params *rekognition.DetectCustomLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectCustomLabelsOutput, error)
}

// Label groups for classification.
var (
	vehicleLabels = map[string]bool{
		"car": true, "automobile": true, "vehicle": true, "transportation": true,
	}
	identityLabels = map[string]bool{
		"driving license": true, "id cards": true, "identity document": true,
		"document": true, "license": true,
	}
)

// Classifier classifies uploads via Rekognition label detection.
type Classifier struct {
	Client RekognitionAPI
}

// Classify returns the best-supported class and its confidence. The caller
// owns the acceptance threshold.
func (c *Classifier) Classify(ctx context.Context, bucket, key string) (docpipeline.Classification, float64, error) {
	out, err := c.Client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &rektypes.Image{S3Object: &rektypes.S3Object{
			Bucket: aws.String(bucket),
			Name:   aws.String(key),
		}},
	})
	if err != nil {
		return docpipeline.ClassUnknown, 0, fmt.Errorf("detect labels: %w", err)
	}

	class, best := docpipeline.ClassUnknown, 0.0
	for _, l := range out.Labels {
		if l.Name == nil || l.Confidence == nil {
			continue
		}
		name, conf := strings.ToLower(*l.Name), float64(*l.Confidence)
		if conf <= best {
			continue
		}
		switch {
		case vehicleLabels[name]:
			class, best = docpipeline.ClassVehicle, conf
		case identityLabels[name]:
			class, best = docpipeline.ClassIdentity, conf
		}
	}
	return class, best, nil
}

// Color and damage vocabularies of the vehicle-analysis model.
var (
	knownColors = map[string]bool{
		"black": true, "blue": true, "brown": true, "gold": true, "green": true,
		"grey": true, "orange": true, "red": true, "silver": true, "white": true,
		"yellow": true,
	}
	knownDamage = map[string]bool{
		"bumper-dent": true, "door-dent": true, "glass-shatter": true,
		"head-lamp-broken": true, "tail-lamp-broken": true, "scratch": true,
		"smash": true, "unknown": true, "none": true,
	}
)

// VehicleAnalyzer extracts color/damage/type via a Rekognition custom-labels
// model trained on the vehicle vocabulary above.
type VehicleAnalyzer struct {
	Client   RekognitionAPI
	ModelARN string
}

// AnalyzeVehicle maps the model's custom labels onto the color/damage/type
// triple, keeping the highest-confidence label per slot.
func (v *VehicleAnalyzer) AnalyzeVehicle(ctx context.Context, bucket, key string) (docpipeline.VehicleAttributes, error) {
	out, err := v.Client.DetectCustomLabels(ctx, &rekognition.DetectCustomLabelsInput{
		ProjectVersionArn: aws.String(v.ModelARN),
		Image: &rektypes.Image{S3Object: &rektypes.S3Object{
			Bucket: aws.String(bucket),
			Name:   aws.String(key),
		}},
	})
	if err != nil {
		return docpipeline.VehicleAttributes{}, fmt.Errorf("detect custom labels: %w", err)
	}

	var attrs docpipeline.VehicleAttributes
	for _, l := range out.CustomLabels {
		if l.Name == nil || l.Confidence == nil {
			continue
		}
		name, conf := strings.ToLower(*l.Name), float64(*l.Confidence)
		scored := events.Scored{Name: name, Confidence: conf}
		switch {
		case knownColors[name]:
			if conf > attrs.Color.Confidence {
				attrs.Color = scored
			}
		case knownDamage[name]:
			if conf > attrs.Damage.Confidence {
				attrs.Damage = scored
			}
		default:
			if conf > attrs.VehicleType.Confidence {
				attrs.VehicleType = scored
			}
		}
	}
	return attrs, nil
}
