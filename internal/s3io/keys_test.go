package s3io

import "testing"

func TestParseKeyRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		customer string
		record   string
		kind     Kind
	}{
		{"license", LicenseKey("c1"), "c1", "", KindLicense},
		{"signup car", SignupCarKey("c1", "p1"), "c1", "p1", KindSignup},
		{"claims car", ClaimsCarKey("c1", "claim7"), "c1", "claim7", KindClaims},
		{"record id with underscore", "customers/c1/pol_7_signup.jpg", "c1", "pol_7", KindSignup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			customer, record, kind, ok := ParseKey(tt.key)
			if !ok {
				t.Fatalf("ParseKey(%q) not ok", tt.key)
			}
			if customer != tt.customer || record != tt.record || kind != tt.kind {
				t.Errorf("ParseKey(%q) = %s/%s/%s, want %s/%s/%s",
					tt.key, customer, record, kind, tt.customer, tt.record, tt.kind)
			}
		})
	}
}

func TestParseKeyRejectsForeignShapes(t *testing.T) {
	bad := []string{
		"",
		"customers/c1",
		"customers/c1/extra/drivers_license.jpg",
		"user/c1/file.jpg",
		"customers/c1/readme.jpg",
		"customers/c1/p1_settlement.jpg",
	}
	for _, key := range bad {
		if _, _, _, ok := ParseKey(key); ok {
			t.Errorf("ParseKey(%q) ok, want rejection", key)
		}
	}
}

func TestPrefixCoversAllKeys(t *testing.T) {
	prefix := Prefix("c1")
	for _, key := range []string{LicenseKey("c1"), SignupCarKey("c1", "p1"), ClaimsCarKey("c1", "x")} {
		if len(key) <= len(prefix) || key[:len(prefix)] != prefix {
			t.Errorf("key %q not under prefix %q", key, prefix)
		}
	}
}
