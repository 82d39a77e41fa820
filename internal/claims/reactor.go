// Package claims validates first-notice-of-loss requests against the policy
// window and the customer's on-file license, persisting accepted claims.
package claims

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Rejection messages identify which check failed.
const (
	MsgPolicyMismatch       = "Claim rejected: incident date is outside the policy's active window"
	MsgPersonalInfoMismatch = "Claim rejected: personal information does not match our records"
)

// acceptedMessage accompanies Claim.Accepted.
const acceptedMessage = "Claim accepted. Please upload a photo of the damage using the provided URL."

// Store is the slice of the entity store the reactor uses.
type Store interface {
	GetPolicy(ctx context.Context, customerID, policyID string) (models.Policy, error)
	GetDocumentRecord(ctx context.Context, customerID string, dt models.DocumentType) (models.DocumentRecord, error)
	PutClaim(ctx context.Context, c models.Claim) error
}

// UploadIssuer issues a time-limited write URL for the damage photo.
type UploadIssuer interface {
	Issue(ctx context.Context, key, customerID, recordID string, kind s3io.Kind) (string, error)
}

// Reactor handles one buffered Claim.Requested event per invocation. Fraud
// state is not consulted here; it resolves later once the damage photo runs
// through the document pipeline.
type Reactor struct {
	Store   Store
	Uploads UploadIssuer
	Bus     bus.Publisher
	Log     *zap.Logger

	// Now and NewID are test seams; nil means real clock and ULIDs.
	Now   func() time.Time
	NewID func() string
}

// Handle validates the claim, persists it on success, and emits the verdict.
func (r *Reactor) Handle(ctx context.Context, req events.ClaimRequested) error {
	customerID := req.PersonalInformation.CustomerID
	log := r.Log.With(zap.String("customerId", customerID), zap.String("policyId", req.Policy.ID))

	if msg, err := r.validateRequest(ctx, req); err != nil {
		return fmt.Errorf("validate claim: %w", err)
	} else if msg != "" {
		log.Info("claim rejected", zap.String("message", msg))
		return r.Bus.Publish(ctx, events.TypeClaimRejected, events.SourceClaims, events.ClaimRejected{
			CustomerID: customerID,
			Message:    msg,
		})
	}

	claimID := r.newID()
	claim := models.Claim{
		PK: store.CustomerPK(customerID), SK: store.ClaimSK(claimID),
		ClaimID:             claimID,
		CustomerID:          customerID,
		PolicyID:            req.Policy.ID,
		Incident:            req.Incident,
		PersonalInformation: req.PersonalInformation,
		PoliceReport:        req.PoliceReport,
		OtherParty:          req.OtherParty,
		Status:              models.StatusAccepted,
		DamagePhotoKey:      s3io.ClaimsCarKey(customerID, claimID),
		CreatedAt:           r.now().Format(time.RFC3339),
	}
	if err := r.Store.PutClaim(ctx, claim); err != nil {
		return fmt.Errorf("persist claim: %w", err)
	}

	damageURL, err := r.Uploads.Issue(ctx, claim.DamagePhotoKey, customerID, claimID, s3io.KindClaims)
	if err != nil {
		return fmt.Errorf("issue damage handle: %w", err)
	}

	log.Info("claim accepted", zap.String("claimId", claimID))
	return r.Bus.Publish(ctx, events.TypeClaimAccepted, events.SourceClaims, events.ClaimAccepted{
		CustomerID:         customerID,
		ClaimID:            claimID,
		UploadCarDamageURL: damageURL,
		Message:            acceptedMessage,
	})
}

// validateRequest returns a rejection message for user-correctable failures,
// or an error for backend ones. Checks run in order: policy window first,
// then license number.
func (r *Reactor) validateRequest(ctx context.Context, req events.ClaimRequested) (string, error) {
	customerID := req.PersonalInformation.CustomerID

	policy, err := r.Store.GetPolicy(ctx, customerID, req.Policy.ID)
	if errors.Is(err, store.ErrNotFound) {
		return MsgPolicyMismatch, nil
	} else if err != nil {
		return "", fmt.Errorf("load policy %s: %w", req.Policy.ID, err)
	}

	occurred, err := parseWhen(req.Incident.OccurrenceDateTime)
	if err != nil {
		return MsgPolicyMismatch, nil
	}
	start, err1 := parseWhen(policy.StartDate)
	end, err2 := parseWhen(policy.EndDate)
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("policy %s has unreadable window", policy.PolicyID)
	}
	if occurred.Before(start) || !occurred.Before(end) {
		return MsgPolicyMismatch, nil
	}

	license, err := r.Store.GetDocumentRecord(ctx, customerID, models.DocTypeDriversLicense)
	if errors.Is(err, store.ErrNotFound) {
		// No license on file means the number cannot match.
		return MsgPersonalInfoMismatch, nil
	} else if err != nil {
		return "", fmt.Errorf("load license record: %w", err)
	}
	onFile := license.Fields[models.FieldDriversLicenseNumber]
	if onFile == "" || !strings.EqualFold(strings.TrimSpace(onFile), strings.TrimSpace(req.PersonalInformation.DriversLicenseNumber)) {
		return MsgPersonalInfoMismatch, nil
	}
	return "", nil
}

// parseWhen accepts full timestamps and date-only values, which is what the
// FNOL intake produces.
func parseWhen(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (r *Reactor) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}

func (r *Reactor) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return ulid.Make().String()
}
