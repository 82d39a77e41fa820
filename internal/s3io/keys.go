package s3io

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Kind is what an uploaded object claims to be, encoded in its key suffix at
// presign time. Classification of the actual image content happens later in
// the document pipeline.
type Kind string

// Possible values for Kind.
const (
	KindLicense Kind = "drivers_license"
	KindSignup  Kind = "signup"
	KindClaims  Kind = "claims"
)

const keyPrefix = "customers"

// Prefix returns the storage namespace for one customer.
func Prefix(customerID string) string {
	return fmt.Sprintf("%s/%s/", keyPrefix, customerID)
}

// LicenseKey builds the object key for a customer's identity document.
func LicenseKey(customerID string) string {
	return fmt.Sprintf("%s/%s/drivers_license.jpg", keyPrefix, customerID)
}

// SignupCarKey builds the object key for the signup vehicle photo. The
// policy id rides in the key so the pipeline can reference the policy.
func SignupCarKey(customerID, policyID string) string {
	return fmt.Sprintf("%s/%s/%s_signup.jpg", keyPrefix, customerID, policyID)
}

// ClaimsCarKey builds the object key for a claim's damage photo.
func ClaimsCarKey(customerID, claimID string) string {
	return fmt.Sprintf("%s/%s/%s_claims.jpg", keyPrefix, customerID, claimID)
}

// ParseKey extracts the customer id, record reference, and kind from an
// object key. recordID is empty for identity documents.
func ParseKey(key string) (customerID, recordID string, kind Kind, ok bool) {
	parts := strings.Split(key, "/")
	if len(parts) != 3 || parts[0] != keyPrefix {
		return "", "", "", false
	}
	customerID = parts[1]
	base := strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))

	if base == string(KindLicense) {
		return customerID, "", KindLicense, true
	}
	i := strings.LastIndex(base, "_")
	if i <= 0 {
		return "", "", "", false
	}
	recordID = base[:i]
	switch Kind(base[i+1:]) {
	case KindSignup:
		return customerID, recordID, KindSignup, true
	case KindClaims:
		return customerID, recordID, KindClaims, true
	}
	return "", "", "", false
}
