package validator

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	if err := ValidateEmail("seller@example.com"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	for _, email := range []string{"", "no-at.example.com", "two@@example.com", "spaces in@example.com"} {
		if err := ValidateEmail(email); err == nil {
			t.Fatalf("invalid email %q accepted", email)
		}
	}
}

func TestValidateUsername(t *testing.T) {
	if err := ValidateUsername("seller_01"); err != nil {
		t.Fatalf("valid username rejected: %v", err)
	}
	for _, username := range []string{"ab", "has space", "has-dash", strings.Repeat("a", 31)} {
		if err := ValidateUsername(username); err == nil {
			t.Fatalf("invalid username %q accepted", username)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("longenough"); err != nil {
		t.Fatalf("valid password rejected: %v", err)
	}
	if err := ValidatePassword("short"); err == nil {
		t.Fatalf("short password accepted")
	}
}

func TestValidateListingTitle(t *testing.T) {
	if err := ValidateListingTitle("Mountain bike"); err != nil {
		t.Fatalf("valid title rejected: %v", err)
	}
	if err := ValidateListingTitle("ab"); err == nil {
		t.Fatalf("short title accepted")
	}
	if err := ValidateListingTitle(strings.Repeat("x", 121)); err == nil {
		t.Fatalf("long title accepted")
	}
}

func TestValidateListingPrice(t *testing.T) {
	if err := ValidateListingPrice(500); err != nil {
		t.Fatalf("valid price rejected: %v", err)
	}
	for _, price := range []int64{0, -10} {
		if err := ValidateListingPrice(price); err == nil {
			t.Fatalf("invalid price %d accepted", price)
		}
	}
}
