package claims

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"
	"github.com/lakeshore-insurance/claims-backend/internal/store"

	"go.uber.org/zap"
)

type fakeStore struct {
	policies map[string]models.Policy
	licenses map[string]models.DocumentRecord
	claims   []models.Claim
}

func (f *fakeStore) GetPolicy(_ context.Context, _, policyID string) (models.Policy, error) {
	p, ok := f.policies[policyID]
	if !ok {
		return models.Policy{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) GetDocumentRecord(_ context.Context, customerID string, _ models.DocumentType) (models.DocumentRecord, error) {
	r, ok := f.licenses[customerID]
	if !ok {
		return models.DocumentRecord{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeStore) PutClaim(_ context.Context, c models.Claim) error {
	f.claims = append(f.claims, c)
	return nil
}

type fakeIssuer struct{ urls []string }

func (f *fakeIssuer) Issue(_ context.Context, key, _, _ string, _ s3io.Kind) (string, error) {
	url := "https://uploads.example/" + key
	f.urls = append(f.urls, url)
	return url, nil
}

func fixture() (*fakeStore, events.ClaimRequested) {
	s := &fakeStore{
		policies: map[string]models.Policy{
			"p1": {
				PolicyID:   "p1",
				CustomerID: "c1",
				Car:        models.Vehicle{Color: "Green"},
				StartDate:  "2026-01-01T00:00:00Z",
				EndDate:    "2026-07-01T00:00:00Z",
			},
		},
		licenses: map[string]models.DocumentRecord{
			"c1": {
				CustomerID:   "c1",
				DocumentType: models.DocTypeDriversLicense,
				Fields:       map[string]string{models.FieldDriversLicenseNumber: "D1234567"},
			},
		},
	}
	req := events.ClaimRequested{
		Incident: models.Incident{
			OccurrenceDateTime: "2026-03-15",
			FnolDateTime:       "2026-03-16",
			Location:           models.Location{Country: "US", State: "AZ", City: "Tempe", Zip: "85281", Road: "Mill Ave"},
			Description:        "rear-ended at a light",
		},
		Policy: events.PolicyRef{ID: "p1"},
		PersonalInformation: models.PersonalInformation{
			CustomerID:           "c1",
			DriversLicenseNumber: "D1234567",
			IsInsurerDriver:      true,
			LicensePlateNumber:   "ABC123",
			NumberOfPassengers:   1,
		},
		PoliceReport: models.PoliceReport{IsFiled: true, ReportOrReceiptAvailable: true},
		OtherParty:   models.OtherParty{InsuranceCompany: "Acme Mutual"},
	}
	return s, req
}

func newReactor(s *fakeStore) (*Reactor, *fakeIssuer, *bus.Memory) {
	issuer := &fakeIssuer{}
	b := bus.NewMemory()
	r := &Reactor{
		Store:   s,
		Uploads: issuer,
		Bus:     b,
		Log:     zap.NewNop(),
		Now:     func() time.Time { return time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC) },
		NewID:   func() string { return "claim-1" },
	}
	return r, issuer, b
}

func TestHandleAcceptsValidClaim(t *testing.T) {
	s, req := fixture()
	r, issuer, b := newReactor(s)

	if err := r.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(s.claims) != 1 {
		t.Fatalf("persisted %d claims, want 1", len(s.claims))
	}
	claim := s.claims[0]
	if claim.Status != models.StatusAccepted {
		t.Errorf("status = %s, want %s", claim.Status, models.StatusAccepted)
	}
	if claim.PersonalInformation.LicensePlateNumber != "ABC123" {
		t.Error("personal-information snapshot not persisted")
	}
	if claim.PolicyID != "p1" || claim.CustomerID != "c1" {
		t.Errorf("claim references %s/%s, want c1/p1", claim.CustomerID, claim.PolicyID)
	}

	published := b.Published()
	if len(published) != 1 || published[0].DetailType != events.TypeClaimAccepted {
		t.Fatalf("published %v, want one Claim.Accepted", published)
	}
	var acc events.ClaimAccepted
	if err := json.Unmarshal(published[0].Detail, &acc); err != nil {
		t.Fatal(err)
	}
	if acc.ClaimID != "claim-1" {
		t.Errorf("claimId = %q, want claim-1", acc.ClaimID)
	}
	if len(issuer.urls) != 1 || acc.UploadCarDamageURL != issuer.urls[0] {
		t.Errorf("damage upload handle %q not the issued one %v", acc.UploadCarDamageURL, issuer.urls)
	}
}

func TestHandleRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*fakeStore, *events.ClaimRequested)
		wantMsg string
	}{
		{
			name: "incident before policy start",
			mutate: func(_ *fakeStore, req *events.ClaimRequested) {
				req.Incident.OccurrenceDateTime = "2025-12-31"
			},
			wantMsg: MsgPolicyMismatch,
		},
		{
			name: "incident on policy end",
			mutate: func(_ *fakeStore, req *events.ClaimRequested) {
				req.Incident.OccurrenceDateTime = "2026-07-01"
			},
			wantMsg: MsgPolicyMismatch,
		},
		{
			name: "unknown policy",
			mutate: func(_ *fakeStore, req *events.ClaimRequested) {
				req.Policy.ID = "ghost"
			},
			wantMsg: MsgPolicyMismatch,
		},
		{
			name: "license number mismatch",
			mutate: func(_ *fakeStore, req *events.ClaimRequested) {
				req.PersonalInformation.DriversLicenseNumber = "X0000000"
			},
			wantMsg: MsgPersonalInfoMismatch,
		},
		{
			name: "no license on file",
			mutate: func(s *fakeStore, _ *events.ClaimRequested) {
				delete(s.licenses, "c1")
			},
			wantMsg: MsgPersonalInfoMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, req := fixture()
			tt.mutate(s, &req)
			r, _, b := newReactor(s)

			if err := r.Handle(context.Background(), req); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if len(s.claims) != 0 {
				t.Errorf("persisted %d claims, want none on rejection", len(s.claims))
			}
			published := b.Published()
			if len(published) != 1 || published[0].DetailType != events.TypeClaimRejected {
				t.Fatalf("published %v, want one Claim.Rejected", published)
			}
			var rej events.ClaimRejected
			if err := json.Unmarshal(published[0].Detail, &rej); err != nil {
				t.Fatal(err)
			}
			if rej.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", rej.Message, tt.wantMsg)
			}
			if rej.CustomerID != "c1" {
				t.Errorf("customerId = %q, want c1", rej.CustomerID)
			}
		})
	}
}

// Validation order is window first, then license: a claim failing both gets
// the policy message.
func TestHandleValidationOrder(t *testing.T) {
	s, req := fixture()
	req.Incident.OccurrenceDateTime = "2025-12-31"
	req.PersonalInformation.DriversLicenseNumber = "X0000000"
	r, _, b := newReactor(s)

	if err := r.Handle(context.Background(), req); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	var rej events.ClaimRejected
	if err := json.Unmarshal(b.Published()[0].Detail, &rej); err != nil {
		t.Fatal(err)
	}
	if rej.Message != MsgPolicyMismatch {
		t.Errorf("message = %q, want %q", rej.Message, MsgPolicyMismatch)
	}
}
