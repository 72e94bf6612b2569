package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
)

func TestGenerateTOTPSecret(t *testing.T) {
	secret, url, err := GenerateTOTPSecret("MilletMart", "admin")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret returned error: %v", err)
	}
	if secret == "" {
		t.Fatal("expected a secret")
	}
	if !strings.HasPrefix(url, "otpauth://totp/") {
		t.Fatalf("unexpected provisioning url %q", url)
	}
	if !strings.Contains(url, "MilletMart") {
		t.Fatalf("expected issuer in url, got %q", url)
	}
}

func TestGenerateTOTPSecretRequiresIssuerAndAccount(t *testing.T) {
	if _, _, err := GenerateTOTPSecret("", "admin"); err == nil {
		t.Fatal("expected error for missing issuer")
	}
	if _, _, err := GenerateTOTPSecret("MilletMart", " "); err == nil {
		t.Fatal("expected error for missing account")
	}
}

func TestVerifyTOTP(t *testing.T) {
	secret, _, err := GenerateTOTPSecret("MilletMart", "admin")
	if err != nil {
		t.Fatalf("GenerateTOTPSecret returned error: %v", err)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		t.Fatalf("GenerateCode returned error: %v", err)
	}

	if !VerifyTOTP(secret, code) {
		t.Fatal("expected current code to verify")
	}
	if VerifyTOTP(secret, "000000") && code != "000000" {
		t.Fatal("expected bogus code to fail")
	}
	if VerifyTOTP("", code) {
		t.Fatal("expected empty secret to fail")
	}
}
