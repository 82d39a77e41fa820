// Package fraud evaluates processed documents against persisted customer
// data and emits a verdict event per run.
package fraud

import (
	"context"
	"fmt"
	"strings"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"

	"go.uber.org/zap"
)

// DocumentMismatchReason is the fixed reason attached to identity-document
// fraud verdicts.
const DocumentMismatchReason = "Extracted first name does not match customer records"

// NoDamageReason is carried informationally when a claims photo shows no
// damage and the color check is skipped.
const NoDamageReason = "No damage detected."

// Store is the slice of the entity store the engine reads.
type Store interface {
	GetProfile(ctx context.Context, customerID string) (models.Profile, error)
	GetPolicy(ctx context.Context, customerID, policyID string) (models.Policy, error)
	GetClaim(ctx context.Context, customerID, claimID string) (models.Claim, error)
}

// Engine runs one comparison rule per Document.Processed event. It keeps no
// state between runs and performs no deduplication: re-delivering an event
// produces another verdict.
type Engine struct {
	Store Store
	Bus   bus.Publisher
	Log   *zap.Logger
}

// Evaluate dispatches on document type and car-analysis kind.
func (e *Engine) Evaluate(ctx context.Context, doc events.DocumentProcessed) error {
	switch doc.DocumentType {
	case models.DocTypeDriversLicense:
		return e.evaluateLicense(ctx, doc)
	case models.DocTypeCar:
		switch doc.AnalyzedFieldAndValues.Type {
		case string(models.CarKindSignup):
			return e.evaluateSignupCar(ctx, doc)
		case string(models.CarKindClaims):
			return e.evaluateClaimsCar(ctx, doc)
		}
		return fmt.Errorf("car document without analysis kind for customer %s", doc.CustomerID)
	}
	return fmt.Errorf("unknown document type %q", doc.DocumentType)
}

// evaluateLicense compares the stored first name against the extracted one,
// case-insensitively. A missing value on either side counts as a mismatch.
func (e *Engine) evaluateLicense(ctx context.Context, doc events.DocumentProcessed) error {
	profile, err := e.Store.GetProfile(ctx, doc.CustomerID)
	if err != nil {
		return e.abort(ctx, doc, fmt.Errorf("load profile: %w", err))
	}

	extracted := doc.AnalyzedFieldAndValues.Fields[models.FieldFirstName]
	if extracted == "" || profile.FirstName == "" || !strings.EqualFold(extracted, profile.FirstName) {
		return e.detected(ctx, doc, events.FraudTypeDocument, DocumentMismatchReason)
	}
	fields := doc.AnalyzedFieldAndValues
	return e.Bus.Publish(ctx, events.TypeFraudNotDetected, events.SourceFraud, events.FraudNotDetected{
		CustomerID:             doc.CustomerID,
		DocumentType:           doc.DocumentType,
		FraudType:              events.FraudTypeDocument,
		AnalyzedFieldAndValues: &fields,
	})
}

// evaluateSignupCar compares the extracted color against the policy's
// on-file color.
func (e *Engine) evaluateSignupCar(ctx context.Context, doc events.DocumentProcessed) error {
	policy, err := e.Store.GetPolicy(ctx, doc.CustomerID, doc.RecordID)
	if err != nil {
		return e.abort(ctx, doc, fmt.Errorf("load policy %s: %w", doc.RecordID, err))
	}
	return e.colorVerdict(ctx, doc, policy, events.FraudTypeSignupCar)
}

// evaluateClaimsCar short-circuits when no damage is visible, otherwise
// follows the claim to its policy and runs the color comparison.
func (e *Engine) evaluateClaimsCar(ctx context.Context, doc events.DocumentProcessed) error {
	damage := ""
	if doc.AnalyzedFieldAndValues.Damage != nil {
		damage = strings.ToLower(doc.AnalyzedFieldAndValues.Damage.Name)
	}
	if damage == "" || damage == "unknown" || damage == "none" {
		fields := doc.AnalyzedFieldAndValues
		return e.Bus.Publish(ctx, events.TypeFraudNotDetected, events.SourceFraud, events.FraudNotDetected{
			CustomerID:             doc.CustomerID,
			DocumentType:           doc.DocumentType,
			FraudType:              events.FraudTypeClaims,
			AnalyzedFieldAndValues: &fields,
			RecordID:               doc.RecordID,
			Reason:                 NoDamageReason,
		})
	}

	claim, err := e.Store.GetClaim(ctx, doc.CustomerID, doc.RecordID)
	if err != nil {
		return e.abort(ctx, doc, fmt.Errorf("load claim %s: %w", doc.RecordID, err))
	}
	policy, err := e.Store.GetPolicy(ctx, doc.CustomerID, claim.PolicyID)
	if err != nil {
		return e.abort(ctx, doc, fmt.Errorf("load policy %s: %w", claim.PolicyID, err))
	}
	return e.colorVerdict(ctx, doc, policy, events.FraudTypeClaims)
}

// colorVerdict runs the exact case-insensitive whole-string color compare.
func (e *Engine) colorVerdict(ctx context.Context, doc events.DocumentProcessed, policy models.Policy, fraudType string) error {
	extracted := ""
	if doc.AnalyzedFieldAndValues.Color != nil {
		extracted = doc.AnalyzedFieldAndValues.Color.Name
	}
	if !strings.EqualFold(extracted, policy.Car.Color) {
		return e.detected(ctx, doc, fraudType, fmt.Sprintf(
			"Extracted vehicle color %q does not match policy color %q", extracted, policy.Car.Color))
	}
	fields := doc.AnalyzedFieldAndValues
	return e.Bus.Publish(ctx, events.TypeFraudNotDetected, events.SourceFraud, events.FraudNotDetected{
		CustomerID:             doc.CustomerID,
		DocumentType:           doc.DocumentType,
		FraudType:              fraudType,
		AnalyzedFieldAndValues: &fields,
		RecordID:               doc.RecordID,
	})
}

func (e *Engine) detected(ctx context.Context, doc events.DocumentProcessed, fraudType, reason string) error {
	e.Log.Info("fraud detected",
		zap.String("customerId", doc.CustomerID),
		zap.String("fraudType", fraudType),
		zap.String("reason", reason))
	return e.Bus.Publish(ctx, events.TypeFraudDetected, events.SourceFraud, events.FraudDetected{
		CustomerID:   doc.CustomerID,
		DocumentType: doc.DocumentType,
		FraudType:    fraudType,
		FraudReason:  reason,
	})
}

// abort handles a lookup failure: the run is terminal, no verdict goes out,
// and a Fraud.Evaluation.Failed event makes the failure observable.
func (e *Engine) abort(ctx context.Context, doc events.DocumentProcessed, cause error) error {
	e.Log.Error("fraud evaluation aborted",
		zap.String("customerId", doc.CustomerID),
		zap.String("documentType", string(doc.DocumentType)),
		zap.Error(cause))
	return e.Bus.Publish(ctx, events.TypeFraudEvaluationFailed, events.SourceFraud, events.FraudEvaluationFailed{
		CustomerID:   doc.CustomerID,
		DocumentType: doc.DocumentType,
		Error:        cause.Error(),
	})
}
