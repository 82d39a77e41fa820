// Package docpipeline classifies uploaded images and extracts structured
// fields from them, emitting one Document.Processed event per completed run.
package docpipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

// Classification is the classifier's verdict on an uploaded image.
type Classification string

// Possible values for Classification.
const (
	ClassIdentity Classification = "identity_document"
	ClassVehicle  Classification = "vehicle_photo"
	ClassUnknown  Classification = "unknown"
)

// Confidence cutoffs. Classification below the first is a terminal failure;
// identity fields below the second are dropped.
const (
	minClassifyConfidence = 97.0
	minFieldConfidence    = 95.0
)

// Vehicle analyzer retry tuning.
const (
	vehicleRetryBase  = 5 * time.Second
	vehicleRetryMult  = 2.0
	vehicleRetryTries = 3
)

// Classifier decides whether an image is a vehicle photo or an identity
// document, with a confidence score.
type Classifier interface {
	Classify(ctx context.Context, bucket, key string) (Classification, float64, error)
}

// IdentityField is one extracted identity-document field.
type IdentityField struct {
	Name       string
	Text       string
	Confidence float64
}

// IdentityExtractor pulls named fields out of an identity document.
type IdentityExtractor interface {
	ExtractIdentity(ctx context.Context, bucket, key string) ([]IdentityField, error)
}

// VehicleAttributes are the analyzer's color/damage/type findings.
type VehicleAttributes struct {
	Color       events.Scored
	Damage      events.Scored
	VehicleType events.Scored
}

// VehicleAnalyzer extracts color, damage severity, and vehicle type from a
// vehicle photo.
type VehicleAnalyzer interface {
	AnalyzeVehicle(ctx context.Context, bucket, key string) (VehicleAttributes, error)
}

// MetadataFetcher reads user-defined object metadata for an upload.
type MetadataFetcher interface {
	ObjectMeta(ctx context.Context, bucket, key string) (map[string]string, error)
}

// Pipeline is the per-upload state machine. Each uploaded object triggers at
// most one run; runs for different objects are fully independent.
type Pipeline struct {
	Meta       MetadataFetcher
	Classifier Classifier
	Identity   IdentityExtractor
	Vehicle    VehicleAnalyzer
	Bus        bus.Publisher
	Log        *zap.Logger

	// RetryBase overrides the vehicle-analysis backoff base; tests shrink it.
	RetryBase time.Duration
}

// Run processes one uploaded object end to end.
func (p *Pipeline) Run(ctx context.Context, bucket, key string) error {
	customerID, recordID, kind, err := p.resolveUpload(ctx, bucket, key)
	if err != nil {
		return err
	}
	log := p.Log.With(zap.String("customerId", customerID), zap.String("key", key))

	class, conf, err := p.Classifier.Classify(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("classify %s: %w", key, err)
	}
	if conf < minClassifyConfidence || class == ClassUnknown {
		// Terminal: nothing credible to process, no event goes out.
		return fmt.Errorf("classify %s: unusable result (%s at %.1f%%)", key, class, conf)
	}

	switch class {
	case ClassIdentity:
		return p.runIdentity(ctx, log, bucket, key, customerID)
	case ClassVehicle:
		return p.runVehicle(ctx, log, bucket, key, customerID, recordID, kind)
	}
	return fmt.Errorf("classify %s: unexpected class %q", key, class)
}

// resolveUpload prefers the ids stamped in object metadata at presign time
// and falls back to parsing the key path.
func (p *Pipeline) resolveUpload(ctx context.Context, bucket, key string) (customerID, recordID string, kind s3io.Kind, err error) {
	meta, merr := p.Meta.ObjectMeta(ctx, bucket, key)
	if merr == nil {
		customerID = meta[s3io.MetaCustomerID]
		recordID = meta[s3io.MetaRecordID]
		kind = s3io.Kind(meta[s3io.MetaDocumentKind])
	}
	if customerID == "" || kind == "" {
		c2, r2, k2, ok := s3io.ParseKey(key)
		if !ok {
			return "", "", "", fmt.Errorf("bad key %q: no customer id", key)
		}
		if customerID == "" {
			customerID = c2
		}
		if recordID == "" {
			recordID = r2
		}
		if kind == "" {
			kind = k2
		}
	}
	return customerID, recordID, kind, nil
}

func (p *Pipeline) runIdentity(ctx context.Context, log *zap.Logger, bucket, key, customerID string) error {
	fields, err := p.Identity.ExtractIdentity(ctx, bucket, key)
	if err != nil {
		return fmt.Errorf("extract identity %s: %w", key, err)
	}
	flat := make(map[string]string, len(fields))
	for _, f := range fields {
		if f.Confidence > minFieldConfidence && f.Name != "" {
			flat[f.Name] = f.Text
		}
	}
	log.Info("identity document extracted", zap.Int("fields", len(flat)))
	return p.Bus.Publish(ctx, events.TypeDocumentProcessed, events.SourceDocument, events.DocumentProcessed{
		CustomerID:             customerID,
		DocumentType:           models.DocTypeDriversLicense,
		AnalyzedFieldAndValues: events.AnalyzedFieldAndValues{Fields: flat},
	})
}

func (p *Pipeline) runVehicle(ctx context.Context, log *zap.Logger, bucket, key, customerID, recordID string, kind s3io.Kind) error {
	var carType string
	switch kind {
	case s3io.KindSignup:
		carType = string(models.CarKindSignup)
	case s3io.KindClaims:
		carType = string(models.CarKindClaims)
	default:
		return fmt.Errorf("vehicle photo %s: unknown upload kind %q", key, kind)
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = p.retryBase()
	expo.Multiplier = vehicleRetryMult

	attrs, err := backoff.Retry(ctx, func() (VehicleAttributes, error) {
		return p.Vehicle.AnalyzeVehicle(ctx, bucket, key)
	}, backoff.WithBackOff(expo), backoff.WithMaxTries(vehicleRetryTries))
	if err != nil {
		return fmt.Errorf("analyze vehicle %s: %w", key, err)
	}

	log.Info("vehicle photo analyzed",
		zap.String("color", attrs.Color.Name),
		zap.String("damage", attrs.Damage.Name),
		zap.String("type", carType))

	color, damage := attrs.Color, attrs.Damage
	return p.Bus.Publish(ctx, events.TypeDocumentProcessed, events.SourceDocument, events.DocumentProcessed{
		CustomerID:   customerID,
		DocumentType: models.DocTypeCar,
		AnalyzedFieldAndValues: events.AnalyzedFieldAndValues{
			Color:  &color,
			Damage: &damage,
			Type:   carType,
		},
		RecordID: recordID,
	})
}

func (p *Pipeline) retryBase() time.Duration {
	if p.RetryBase > 0 {
		return p.RetryBase
	}
	return vehicleRetryBase
}
