package onboarding

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lakeshore-insurance/claims-backend/internal/bus"
	"github.com/lakeshore-insurance/claims-backend/internal/events"
	"github.com/lakeshore-insurance/claims-backend/internal/models"
	"github.com/lakeshore-insurance/claims-backend/internal/s3io"

	"go.uber.org/zap"
)

type fakeStore struct {
	profiles []models.Profile
	links    []models.IdentityLink
	policies []models.Policy
}

func (f *fakeStore) CreateCustomer(_ context.Context, p models.Profile, link models.IdentityLink, policies []models.Policy) error {
	f.profiles = append(f.profiles, p)
	f.links = append(f.links, link)
	f.policies = append(f.policies, policies...)
	return nil
}

type fakeIssuer struct{ issued []string }

func (f *fakeIssuer) Issue(_ context.Context, key, _, _ string, _ s3io.Kind) (string, error) {
	url := "https://uploads.example/" + key
	f.issued = append(f.issued, key)
	return url, nil
}

func newReactor(s *fakeStore) (*Reactor, *fakeIssuer, *bus.Memory) {
	issuer := &fakeIssuer{}
	b := bus.NewMemory()
	seq := 0
	r := &Reactor{
		Store:   s,
		Uploads: issuer,
		Bus:     b,
		Log:     zap.NewNop(),
		Now:     func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) },
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%d", seq)
		},
	}
	return r, issuer, b
}

func submission() events.CustomerSubmitted {
	return events.CustomerSubmitted{
		IdentityToken: "token-1",
		FirstName:     "Connor",
		LastName:      "Reed",
		SSN:           "123-45-6789",
		Email:         "connor@example.com",
		Street:        "1 Main St",
		City:          "Tempe",
		State:         "AZ",
		Zip:           "85281",
		Cars: []models.Vehicle{
			{Make: "Honda", Model: "Civic", Color: "Green", Type: "sedan", Year: 2022, Mileage: 12000, VIN: "VIN1"},
			{Make: "Ford", Model: "F150", Color: "Black", Type: "truck", Year: 2020, Mileage: 40000, VIN: "VIN2"},
		},
	}
}

func TestHandleValidSubmission(t *testing.T) {
	s := &fakeStore{}
	r, issuer, b := newReactor(s)

	if err := r.Handle(context.Background(), submission()); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(s.profiles) != 1 || len(s.links) != 1 {
		t.Fatalf("persisted %d profiles and %d links, want 1 and 1", len(s.profiles), len(s.links))
	}
	if len(s.policies) != 2 {
		t.Fatalf("persisted %d policies, want one per vehicle", len(s.policies))
	}
	customerID := s.profiles[0].CustomerID
	if s.links[0].CustomerID != customerID {
		t.Error("identity link does not reference the new customer")
	}
	for _, p := range s.policies {
		if p.StartDate != "2026-01-01T00:00:00Z" || p.EndDate != "2026-07-01T00:00:00Z" {
			t.Errorf("policy window [%s, %s), want six months from creation", p.StartDate, p.EndDate)
		}
		if p.Validated {
			t.Error("new policy must not start validated")
		}
	}

	published := b.Published()
	if len(published) != 1 || published[0].DetailType != events.TypeCustomerAccepted {
		t.Fatalf("published %v, want one Customer.Accepted", published)
	}
	var acc events.CustomerAccepted
	if err := json.Unmarshal(published[0].Detail, &acc); err != nil {
		t.Fatal(err)
	}
	if acc.CustomerID != customerID {
		t.Errorf("customerId = %q, want %q", acc.CustomerID, customerID)
	}
	if acc.DriversLicenseUploadHandle == "" || acc.CarUploadHandle == "" {
		t.Error("acceptance must carry both upload handles")
	}
	if len(issuer.issued) != 2 {
		t.Fatalf("issued %d handles, want 2", len(issuer.issued))
	}
	// The car handle is namespaced by customer and bound to the first policy.
	carKey := issuer.issued[1]
	if !strings.Contains(carKey, customerID) || !strings.Contains(carKey, s.policies[0].PolicyID) {
		t.Errorf("car key %q must embed customer and first policy ids", carKey)
	}
}

func TestHandleInvalidSubmission(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*events.CustomerSubmitted)
	}{
		{"missing identity token", func(s *events.CustomerSubmitted) { s.IdentityToken = "" }},
		{"empty address field", func(s *events.CustomerSubmitted) { s.City = "  " }},
		{"bad ssn", func(s *events.CustomerSubmitted) { s.SSN = "12-345-678" }},
		{"bad email", func(s *events.CustomerSubmitted) { s.Email = "not-an-email" }},
		{"no vehicles", func(s *events.CustomerSubmitted) { s.Cars = nil }},
		{"vehicle missing color", func(s *events.CustomerSubmitted) { s.Cars[0].Color = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := submission()
			tt.mutate(&sub)
			s := &fakeStore{}
			r, issuer, b := newReactor(s)

			if err := r.Handle(context.Background(), sub); err != nil {
				t.Fatalf("Handle: %v", err)
			}
			if len(s.profiles)+len(s.links)+len(s.policies) != 0 {
				t.Error("rejected submission must persist nothing")
			}
			if len(issuer.issued) != 0 {
				t.Error("rejected submission must not issue upload handles")
			}
			published := b.Published()
			if len(published) != 1 || published[0].DetailType != events.TypeCustomerRejected {
				t.Fatalf("published %v, want one Customer.Rejected", published)
			}
			var rej events.CustomerRejected
			if err := json.Unmarshal(published[0].Detail, &rej); err != nil {
				t.Fatal(err)
			}
			if rej.Error == "" {
				t.Error("rejection must carry a reason")
			}
		})
	}
}
