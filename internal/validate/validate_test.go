package validate

import (
	"testing"

	"github.com/lakeshore-insurance/claims-backend/internal/models"
)

func TestSSNOK(t *testing.T) {
	tests := []struct {
		ssn  string
		want bool
	}{
		{"123-45-6789", true},
		{"123456789", true},
		{"123-456789", true},
		{"12-345-6789", false},
		{"123-45-678", false},
		{"abc-de-fghi", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.ssn, func(t *testing.T) {
			if got := SSNOK(tt.ssn) == nil; got != tt.want {
				t.Errorf("SSNOK(%q) ok = %v, want %v", tt.ssn, got, tt.want)
			}
		})
	}
}

func TestEmailOK(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"connor@example.com", true},
		{"a.b+c@sub.domain.org", true},
		{"no-at-sign", false},
		{"two@@example.com", false},
		{"spaces in@example.com", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			if got := EmailOK(tt.email) == nil; got != tt.want {
				t.Errorf("EmailOK(%q) ok = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestAddressOK(t *testing.T) {
	if err := AddressOK("1 Main St", "Tempe", "AZ", "85281"); err != nil {
		t.Errorf("complete address rejected: %v", err)
	}
	fields := [][4]string{
		{"", "Tempe", "AZ", "85281"},
		{"1 Main St", " ", "AZ", "85281"},
		{"1 Main St", "Tempe", "", "85281"},
		{"1 Main St", "Tempe", "AZ", ""},
	}
	for _, f := range fields {
		if AddressOK(f[0], f[1], f[2], f[3]) == nil {
			t.Errorf("AddressOK(%v) accepted, want rejection", f)
		}
	}
}

func TestCarsOK(t *testing.T) {
	full := models.Vehicle{Make: "Honda", Model: "Civic", Color: "Green", VIN: "VIN1"}
	if err := CarsOK([]models.Vehicle{full}); err != nil {
		t.Errorf("complete vehicle rejected: %v", err)
	}
	if CarsOK(nil) == nil {
		t.Error("empty vehicle list accepted")
	}
	partial := full
	partial.VIN = ""
	if CarsOK([]models.Vehicle{full, partial}) == nil {
		t.Error("vehicle without vin accepted")
	}
}
