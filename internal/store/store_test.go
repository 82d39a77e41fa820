package store

import (
	"testing"

	"github.com/lakeshore-insurance/claims-backend/internal/models"
)

func TestKeyBuilders(t *testing.T) {
	if got := CustomerPK("c1"); got != "CUSTOMER#c1" {
		t.Errorf("CustomerPK = %q", got)
	}
	if got := IdentityPK("tok"); got != "IDENTITY#tok" {
		t.Errorf("IdentityPK = %q", got)
	}
	if got := PolicySK("p1"); got != "POLICY#p1" {
		t.Errorf("PolicySK = %q", got)
	}
	if got := ClaimSK("cl1"); got != "CLAIM#cl1" {
		t.Errorf("ClaimSK = %q", got)
	}
	if got := DocumentSK(models.DocTypeDriversLicense); got != "DOCUMENT#DRIVERS_LICENSE" {
		t.Errorf("DocumentSK = %q", got)
	}
}

func TestItemKeyEntityType(t *testing.T) {
	tests := []struct {
		sk   string
		want string
	}{
		{SKProfile, "customer"},
		{"DOCUMENT#DRIVERS_LICENSE", "customer"},
		{"DOCUMENT#CAR", "customer"},
		{"POLICY#p1", "policy"},
		{"CLAIM#cl1", "claim"},
		{"SETTLEMENT#s1", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.sk, func(t *testing.T) {
			k := ItemKey{PK: "CUSTOMER#c1", SK: tt.sk}
			if got := k.EntityType(); got != tt.want {
				t.Errorf("EntityType(%s) = %s, want %s", tt.sk, got, tt.want)
			}
		})
	}
}
