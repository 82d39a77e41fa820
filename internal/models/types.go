// Package models defines the entity records persisted in the claims table.
package models

// ClaimStatus represents the lifecycle status of a claim.
type ClaimStatus string

// Possible values for ClaimStatus.
const (
	StatusRequested ClaimStatus = "REQUESTED"
	StatusAccepted  ClaimStatus = "ACCEPTED"
	StatusRejected  ClaimStatus = "REJECTED"
)

// DocumentType distinguishes the two kinds of processed documents.
type DocumentType string

// Possible values for DocumentType.
const (
	DocTypeDriversLicense DocumentType = "DRIVERS_LICENSE"
	DocTypeCar            DocumentType = "CAR"
)

// CarAnalysisKind tells the fraud engine which rule a vehicle photo feeds.
// It is derived from the filename suffix chosen at presign time.
type CarAnalysisKind string

// Possible values for CarAnalysisKind.
const (
	CarKindSignup CarAnalysisKind = "signup"
	CarKindClaims CarAnalysisKind = "claims"
)

// Address is a customer's postal address.
type Address struct {
	Street string `dynamodbav:"street" json:"street"`
	City   string `dynamodbav:"city" json:"city"`
	State  string `dynamodbav:"state" json:"state"`
	Zip    string `dynamodbav:"zip" json:"zip"`
}

// Vehicle describes one insured vehicle as submitted at signup.
type Vehicle struct {
	Make    string `dynamodbav:"make" json:"make"`
	Model   string `dynamodbav:"model" json:"model"`
	Color   string `dynamodbav:"color" json:"color"`
	Type    string `dynamodbav:"type" json:"type"`
	Year    int    `dynamodbav:"year" json:"year"`
	Mileage int    `dynamodbav:"mileage" json:"mileage"`
	VIN     string `dynamodbav:"vin" json:"vin"`
}

// Profile is the single-slot customer profile item. Rewrites of the profile
// land on the same key, so the latest write is authoritative by construction.
type Profile struct {
	PK string `dynamodbav:"PK"` // CUSTOMER#<customerID>
	SK string `dynamodbav:"SK"` // PROFILE

	CustomerID    string  `dynamodbav:"customer_id"`
	FirstName     string  `dynamodbav:"firstname"`
	LastName      string  `dynamodbav:"lastname"`
	SSN           string  `dynamodbav:"ssn"`
	Email         string  `dynamodbav:"email"`
	Address       Address `dynamodbav:"address"`
	IdentityToken string  `dynamodbav:"identity_token"`
	CreatedAt     string  `dynamodbav:"created_at"` // ISO8601
}

// IdentityLink maps a caller identity token to its customer. Written once at
// onboarding, never reassigned.
type IdentityLink struct {
	PK string `dynamodbav:"PK"` // IDENTITY#<token>
	SK string `dynamodbav:"SK"` // LINK

	CustomerID string `dynamodbav:"customer_id"`
	CreatedAt  string `dynamodbav:"created_at"`
}

// Policy covers one vehicle for a fixed six-month window starting at
// creation. The window is never extended.
type Policy struct {
	PK string `dynamodbav:"PK"` // CUSTOMER#<customerID>
	SK string `dynamodbav:"SK"` // POLICY#<policyID>

	PolicyID   string  `dynamodbav:"policy_id"`
	CustomerID string  `dynamodbav:"customer_id"`
	Car        Vehicle `dynamodbav:"car"`
	StartDate  string  `dynamodbav:"start_date"` // ISO8601, inclusive
	EndDate    string  `dynamodbav:"end_date"`   // ISO8601, exclusive
	Validated  bool    `dynamodbav:"validated"`  // set once by fraud verdict side effect
	CreatedAt  string  `dynamodbav:"created_at"`
}

// Location is where an incident occurred.
type Location struct {
	Country string `dynamodbav:"country" json:"country"`
	State   string `dynamodbav:"state" json:"state"`
	City    string `dynamodbav:"city" json:"city"`
	Zip     string `dynamodbav:"zip" json:"zip"`
	Road    string `dynamodbav:"road" json:"road"`
}

// Incident captures when and where an accident happened.
type Incident struct {
	OccurrenceDateTime string   `dynamodbav:"occurrence_date_time" json:"occurrenceDateTime"`
	FnolDateTime       string   `dynamodbav:"fnol_date_time" json:"fnolDateTime"`
	Location           Location `dynamodbav:"location" json:"location"`
	Description        string   `dynamodbav:"description" json:"description"`
}

// PersonalInformation is the insured's snapshot at filing time.
type PersonalInformation struct {
	CustomerID           string `dynamodbav:"customer_id" json:"customerId"`
	DriversLicenseNumber string `dynamodbav:"drivers_license_number" json:"driversLicenseNumber"`
	IsInsurerDriver      bool   `dynamodbav:"is_insurer_driver" json:"isInsurerDriver"`
	LicensePlateNumber   string `dynamodbav:"license_plate_number" json:"licensePlateNumber"`
	NumberOfPassengers   int    `dynamodbav:"number_of_passengers" json:"numberOfPassengers"`
}

// PoliceReport flags whether a report exists for the incident.
type PoliceReport struct {
	IsFiled                  bool `dynamodbav:"is_filed" json:"isFiled"`
	ReportOrReceiptAvailable bool `dynamodbav:"report_or_receipt_available" json:"reportOrReceiptAvailable"`
}

// OtherParty identifies the other driver involved, if any.
type OtherParty struct {
	InsuranceID      string `dynamodbav:"insurance_id" json:"insuranceId"`
	InsuranceCompany string `dynamodbav:"insurance_company" json:"insuranceCompany"`
	FirstName        string `dynamodbav:"first_name" json:"firstName"`
	LastName         string `dynamodbav:"last_name" json:"lastName"`
}

// Claim is persisted on acceptance and never mutated afterwards, apart from
// fraud-verdict side effects.
type Claim struct {
	PK string `dynamodbav:"PK"` // CUSTOMER#<customerID>
	SK string `dynamodbav:"SK"` // CLAIM#<claimID>

	ClaimID             string              `dynamodbav:"claim_id"`
	CustomerID          string              `dynamodbav:"customer_id"`
	PolicyID            string              `dynamodbav:"policy_id"`
	Incident            Incident            `dynamodbav:"incident"`
	PersonalInformation PersonalInformation `dynamodbav:"personal_information"`
	PoliceReport        PoliceReport        `dynamodbav:"police_report"`
	OtherParty          OtherParty          `dynamodbav:"other_party"`
	Status              ClaimStatus         `dynamodbav:"status"`
	DamagePhotoKey      string              `dynamodbav:"damage_photo_key"`
	CreatedAt           string              `dynamodbav:"created_at"`
}

// DocumentRecord is the per-(customer, documentType) extraction result.
// Reprocessing a document of the same type overwrites it; no history is kept.
type DocumentRecord struct {
	PK string `dynamodbav:"PK"` // CUSTOMER#<customerID>
	SK string `dynamodbav:"SK"` // DOCUMENT#<documentType>

	CustomerID   string            `dynamodbav:"customer_id"`
	DocumentType DocumentType      `dynamodbav:"document_type"`
	Fields       map[string]string `dynamodbav:"fields"`
	UpdatedAt    string            `dynamodbav:"updated_at"`
}

// FieldDriversLicenseNumber is the extracted-field key holding the license
// number, as named by the identity extractor.
const FieldDriversLicenseNumber = "DOCUMENT_NUMBER"

// FieldFirstName is the extracted-field key holding the first name.
const FieldFirstName = "FIRST_NAME"
