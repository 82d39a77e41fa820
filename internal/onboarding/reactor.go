// Package onboarding validates customer submissions, persists the customer
// bundle, and hands back the upload handles for the two expected photos.
package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"
	"github.com/lakeshore-insurance/claims-backend/internal/validate"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// policyTermMonths is the fixed active window of every new policy.
const policyTermMonths = 6

// Store is the slice of the entity store the reactor writes.
type Store interface {
	CreateCustomer(ctx context.Context, p models.Profile, link models.IdentityLink, policies []models.Policy) error
}

// UploadIssuer issues a time-limited write URL for one document upload.
type UploadIssuer interface {
	Issue(ctx context.Context, key, customerID, recordID string, kind s3io.Kind) (string, error)
}

// Reactor handles one Customer.Submitted event per invocation.
type Reactor struct {
	Store   Store
	Uploads UploadIssuer
	Bus     bus.Publisher
	Log     *zap.Logger

	// Now and NewID are test seams; nil means real clock and ULIDs.
	Now   func() time.Time
	NewID func() string
}

// Handle validates the submission, persists profile + identity link + one
// policy per vehicle atomically, and emits acceptance with two upload
// handles. Validation failure emits a rejection and persists nothing.
func (r *Reactor) Handle(ctx context.Context, sub events.CustomerSubmitted) error {
	if err := r.validateSubmission(sub); err != nil {
		r.Log.Info("submission rejected", zap.Error(err))
		return r.Bus.Publish(ctx, events.TypeCustomerRejected, events.SourceCustomer, events.CustomerRejected{
			Error: fmt.Sprintf("submission validation failed: %v", err),
		})
	}

	now := r.now()
	customerID := r.newID()

	profile := models.Profile{
		PK: store.CustomerPK(customerID), SK: store.SKProfile,
		CustomerID:    customerID,
		FirstName:     sub.FirstName,
		LastName:      sub.LastName,
		SSN:           sub.SSN,
		Email:         sub.Email,
		Address:       models.Address{Street: sub.Street, City: sub.City, State: sub.State, Zip: sub.Zip},
		IdentityToken: sub.IdentityToken,
		CreatedAt:     now.Format(time.RFC3339),
	}
	link := models.IdentityLink{
		PK: store.IdentityPK(sub.IdentityToken), SK: store.SKLink,
		CustomerID: customerID,
		CreatedAt:  now.Format(time.RFC3339),
	}

	policies := make([]models.Policy, 0, len(sub.Cars))
	for _, car := range sub.Cars {
		policyID := r.newID()
		policies = append(policies, models.Policy{
			PK: store.CustomerPK(customerID), SK: store.PolicySK(policyID),
			PolicyID:   policyID,
			CustomerID: customerID,
			Car:        car,
			StartDate:  now.Format(time.RFC3339),
			EndDate:    now.AddDate(0, policyTermMonths, 0).Format(time.RFC3339),
			CreatedAt:  now.Format(time.RFC3339),
		})
	}

	if err := r.Store.CreateCustomer(ctx, profile, link, policies); err != nil {
		return fmt.Errorf("persist customer: %w", err)
	}

	licenseURL, err := r.Uploads.Issue(ctx, s3io.LicenseKey(customerID), customerID, "", s3io.KindLicense)
	if err != nil {
		return fmt.Errorf("issue license handle: %w", err)
	}
	// The car handle is bound to the first submitted vehicle's policy so the
	// pipeline can carry the policy reference through the photo's key.
	carPolicyID := policies[0].PolicyID
	carURL, err := r.Uploads.Issue(ctx, s3io.SignupCarKey(customerID, carPolicyID), customerID, carPolicyID, s3io.KindSignup)
	if err != nil {
		return fmt.Errorf("issue car handle: %w", err)
	}

	r.Log.Info("customer accepted",
		zap.String("customerId", customerID),
		zap.Int("policies", len(policies)))

	return r.Bus.Publish(ctx, events.TypeCustomerAccepted, events.SourceCustomer, events.CustomerAccepted{
		CustomerID:                 customerID,
		DriversLicenseUploadHandle: licenseURL,
		CarUploadHandle:            carURL,
	})
}

func (r *Reactor) validateSubmission(sub events.CustomerSubmitted) error {
	checks := []func() error{
		func() error { return validate.IdentityTokenOK(sub.IdentityToken) },
		func() error { return validate.AddressOK(sub.Street, sub.City, sub.State, sub.Zip) },
		func() error { return validate.SSNOK(sub.SSN) },
		func() error { return validate.EmailOK(sub.Email) },
		func() error { return validate.CarsOK(sub.Cars) },
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
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
