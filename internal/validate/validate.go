// Package validate provides field validation for customer submissions.
package validate

import (
	"errors"
	"regexp"
	"strings"

	"github.com/lakeshore-insurance/claims-backend/internal/models"
)

var (
	ssnRx   = regexp.MustCompile(`^\d{3}-?\d{2}-?\d{4}$`)
	emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// SSNOK checks that the government id number matches the fixed SSN format.
func SSNOK(ssn string) error {
	if !ssnRx.MatchString(strings.TrimSpace(ssn)) {
		return errors.New("invalid ssn format")
	}
	return nil
}

// EmailOK checks the email against the fixed format.
func EmailOK(email string) error {
	if !emailRx.MatchString(strings.TrimSpace(email)) {
		return errors.New("invalid email format")
	}
	return nil
}

// AddressOK checks that every postal address field is non-empty.
func AddressOK(street, city, state, zip string) error {
	for _, f := range []string{street, city, state, zip} {
		if strings.TrimSpace(f) == "" {
			return errors.New("address fields must all be provided")
		}
	}
	return nil
}

// CarsOK checks that at least one vehicle is submitted and each carries the
// fields the policy record needs.
func CarsOK(cars []models.Vehicle) error {
	if len(cars) == 0 {
		return errors.New("at least one vehicle required")
	}
	for _, c := range cars {
		if strings.TrimSpace(c.Make) == "" || strings.TrimSpace(c.Model) == "" ||
			strings.TrimSpace(c.Color) == "" || strings.TrimSpace(c.VIN) == "" {
			return errors.New("vehicle make, model, color, and vin required")
		}
	}
	return nil
}

// IdentityTokenOK checks the caller identity token is present.
func IdentityTokenOK(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("identity token required")
	}
	return nil
}
