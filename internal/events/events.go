// Package events defines the detail-types, sources, and detail payloads
// carried on the claims event bus.
package events

import "github.com/lakeshore-insurance/claims-backend/internal/models"

// Detail types published on the bus.
const (
	TypeCustomerSubmitted = "Customer.Submitted"
	TypeCustomerAccepted  = "Customer.Accepted"
	TypeCustomerRejected  = "Customer.Rejected"

	TypeDocumentProcessed = "Document.Processed"

	TypeFraudDetected         = "Fraud.Detected"
	TypeFraudNotDetected      = "Fraud.Not.Detected"
	TypeFraudEvaluationFailed = "Fraud.Evaluation.Failed"

	TypeClaimRequested = "Claim.Requested"
	TypeClaimAccepted  = "Claim.Accepted"
	TypeClaimRejected  = "Claim.Rejected"

	TypeCustomerDeleted = "Customer.Deleted"

	// TypeSettlementFinalized is published by the external settlement
	// calculator; it is consumed here only by the notification fan-out.
	TypeSettlementFinalized = "Settlement.Finalized"
)

// Event sources.
const (
	SourceCustomer = "customer.service"
	SourceDocument = "document.service"
	SourceFraud    = "fraud.service"
	SourceClaims   = "claims.service"
	SourceCleanup  = "cleanup.service"
)

// FraudType labels which comparison rule produced a verdict.
const (
	FraudTypeDocument  = "DOCUMENT"
	FraudTypeSignupCar = "SIGNUP.CAR"
	FraudTypeClaims    = "CLAIMS"
)

// CustomerSubmitted is the onboarding submission payload.
type CustomerSubmitted struct {
	IdentityToken string           `json:"identityToken"`
	FirstName     string           `json:"firstname"`
	LastName      string           `json:"lastname"`
	SSN           string           `json:"ssn"`
	Email         string           `json:"email"`
	Street        string           `json:"street"`
	City          string           `json:"city"`
	State         string           `json:"state"`
	Zip           string           `json:"zip"`
	Cars          []models.Vehicle `json:"cars"`
}

// CustomerAccepted carries the new customer id and the two upload handles
// the client needs to continue onboarding.
type CustomerAccepted struct {
	CustomerID                 string `json:"customerId"`
	DriversLicenseUploadHandle string `json:"driversLicenseUploadHandle"`
	CarUploadHandle            string `json:"carUploadHandle"`
}

// CustomerRejected reports a failed submission.
type CustomerRejected struct {
	Error string `json:"error"`
}

// Scored is a labeled value with the analyzer's confidence. Field casing
// follows the analyzer output that downstream consumers already parse.
type Scored struct {
	Name       string  `json:"Name"`
	Confidence float64 `json:"Confidence"`
}

// AnalyzedFieldAndValues is the union of the two document extraction shapes:
// a flat field map for identity documents, or the color/damage/type triple
// for vehicle photos.
type AnalyzedFieldAndValues struct {
	// Identity documents only.
	Fields map[string]string `json:"fields,omitempty"`

	// Vehicle photos only.
	Color  *Scored `json:"color,omitempty"`
	Damage *Scored `json:"damage,omitempty"`
	Type   string  `json:"type,omitempty"` // "signup" or "claims"
}

// DocumentProcessed is emitted once per completed pipeline run.
type DocumentProcessed struct {
	CustomerID             string                 `json:"customerId"`
	DocumentType           models.DocumentType    `json:"documentType"`
	AnalyzedFieldAndValues AnalyzedFieldAndValues `json:"analyzedFieldAndValues"`
	// RecordID references the Policy (signup photos) or Claim (claims
	// photos) the document belongs to. Empty for identity documents.
	RecordID string `json:"recordId,omitempty"`
}

// FraudDetected reports a mismatch between declared and extracted data.
type FraudDetected struct {
	CustomerID   string              `json:"customerId"`
	DocumentType models.DocumentType `json:"documentType"`
	FraudType    string              `json:"fraudType"`
	FraudReason  string              `json:"fraudReason"`
}

// FraudNotDetected clears a document and fans out to the recording side
// effects (profile document merge, policy validation, settlement).
type FraudNotDetected struct {
	CustomerID             string                  `json:"customerId"`
	DocumentType           models.DocumentType     `json:"documentType"`
	FraudType              string                  `json:"fraudType"`
	AnalyzedFieldAndValues *AnalyzedFieldAndValues `json:"analyzedFieldAndValues,omitempty"`
	RecordID               string                  `json:"recordId,omitempty"`
	Reason                 string                  `json:"reason,omitempty"`
}

// FraudEvaluationFailed is the terminal signal for a fraud run that could
// not load the records it needed. No verdict accompanies it.
type FraudEvaluationFailed struct {
	CustomerID   string              `json:"customerId"`
	DocumentType models.DocumentType `json:"documentType"`
	Error        string              `json:"error"`
}

// ClaimRequested is the first-notice-of-loss payload.
type ClaimRequested struct {
	Incident            models.Incident            `json:"incident"`
	Policy              PolicyRef                  `json:"policy"`
	PersonalInformation models.PersonalInformation `json:"personalInformation"`
	PoliceReport        models.PoliceReport        `json:"policeReport"`
	OtherParty          models.OtherParty          `json:"otherParty"`
}

// PolicyRef names the policy a claim is filed against.
type PolicyRef struct {
	ID string `json:"id"`
}

// ClaimAccepted carries the new claim id and the damage-photo upload handle.
type ClaimAccepted struct {
	CustomerID         string `json:"customerId"`
	ClaimID            string `json:"claimId"`
	UploadCarDamageURL string `json:"uploadCarDamageUrl"`
	Message            string `json:"message"`
}

// ClaimRejected reports which validation failed.
type ClaimRejected struct {
	CustomerID string `json:"customerId"`
	Message    string `json:"message"`
}

// CustomerDeleted reports the outcome of a cleanup cascade, including any
// partial failures.
type CustomerDeleted struct {
	CustomerID string   `json:"customerId"`
	Errors     []string `json:"errors,omitempty"`
}

// SettlementFinalized is the external settlement calculator's output shape.
type SettlementFinalized struct {
	SettlementID      string `json:"settlementId"`
	CustomerID        string `json:"customerId"`
	ClaimID           string `json:"claimId"`
	SettlementMessage string `json:"settlementMessage"`
}
