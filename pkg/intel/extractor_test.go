package intel

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestExtractBankAccountWithIFSC(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(),
		"Transfer to account number 123456789012, IFSC: HDFC0001234", nil)

	if len(snap.BankAccounts) != 1 {
		t.Fatalf("expected 1 bank account, got %d: %+v", len(snap.BankAccounts), snap.BankAccounts)
	}
	acc := snap.BankAccounts[0]
	if acc.AccountNumber != "123456789012" {
		t.Errorf("account number = %q, want %q", acc.AccountNumber, "123456789012")
	}
	if acc.IFSCCode != "HDFC0001234" {
		t.Errorf("ifsc = %q, want %q", acc.IFSCCode, "HDFC0001234")
	}
	if acc.BankName != "HDFC Bank" {
		t.Errorf("bank name = %q, want %q", acc.BankName, "HDFC Bank")
	}
	if acc.Confidence != accountConfidence {
		t.Errorf("confidence = %v, want %v", acc.Confidence, accountConfidence)
	}
}

func TestExtractPaymentID(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(), "Send the fee to Winner@Paytm right away", nil)

	if len(snap.PaymentIDs) != 1 {
		t.Fatalf("expected 1 payment id, got %d: %+v", len(snap.PaymentIDs), snap.PaymentIDs)
	}
	if snap.PaymentIDs[0].ID != "winner@paytm" {
		t.Errorf("payment id = %q, want lowercased %q", snap.PaymentIDs[0].ID, "winner@paytm")
	}
}

func TestExtractPhone(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(), "WhatsApp me on +91 9876543210 for details", nil)

	if len(snap.Phones) == 0 {
		t.Fatal("expected at least one phone number")
	}
	found := false
	for _, p := range snap.Phones {
		if p.Number == "+919876543210" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected normalized +919876543210, got %+v", snap.Phones)
	}
}

func TestExtractPhishingURL(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(), "Complete verification at https://kyc-verify-bank.com/login now", nil)

	if len(snap.URLs) == 0 {
		t.Fatal("expected at least one url")
	}
	u := snap.URLs[0]
	if u.Domain != "kyc-verify-bank.com" {
		t.Errorf("domain = %q, want %q", u.Domain, "kyc-verify-bank.com")
	}
	if !u.Phishing {
		t.Error("url with verification keywords should be flagged as phishing")
	}
	if u.Confidence != phishingConfidence {
		t.Errorf("confidence = %v, want %v", u.Confidence, phishingConfidence)
	}
}

func TestExtractBareDomainGetsScheme(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(), "Register on www.quick-jobs-portal.com today", nil)

	if len(snap.URLs) == 0 {
		t.Fatal("expected at least one url")
	}
	found := false
	for _, u := range snap.URLs {
		if u.URL == "https://www.quick-jobs-portal.com" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected scheme-normalized url, got %+v", snap.URLs)
	}
}

func TestExtractSchemedURLYieldsOneEntry(t *testing.T) {
	e := NewExtractor(nil, nil)

	// A non-https link matches both the schemed and bare-domain patterns;
	// the snapshot must still hold a single entry.
	snap := e.Extract(context.Background(), "Click http://secure-verify.example.com to unlock your account", nil)

	if len(snap.URLs) != 1 {
		t.Fatalf("expected exactly 1 url, got %d: %+v", len(snap.URLs), snap.URLs)
	}
	if snap.URLs[0].URL != "http://secure-verify.example.com" {
		t.Errorf("url = %q, want the original schemed form", snap.URLs[0].URL)
	}
}

func TestExtractUsesHistoryWindow(t *testing.T) {
	e := NewExtractor(nil, nil)

	history := []string{
		"My account is 123456789012",
		"Did you get it?",
		"IFSC is HDFC0001234",
	}
	snap := e.Extract(context.Background(), "Send the money now", history)

	if len(snap.BankAccounts) != 1 {
		t.Fatalf("expected account from history window, got %+v", snap.BankAccounts)
	}
	if snap.BankAccounts[0].IFSCCode != "HDFC0001234" {
		t.Errorf("ifsc = %q, want association across history", snap.BankAccounts[0].IFSCCode)
	}
}

func TestExtractNothingFromCleanText(t *testing.T) {
	e := NewExtractor(nil, nil)

	snap := e.Extract(context.Background(), "See you at lunch tomorrow", nil)
	if !snap.IsEmpty() {
		t.Errorf("clean text should yield nothing, got %+v", snap)
	}
}

// stubModel returns a canned JSON payload or an error.
type stubModel struct {
	raw json.RawMessage
	err error
}

func (s *stubModel) ExtractJSON(context.Context, string, string) (json.RawMessage, error) {
	return s.raw, s.err
}

func TestModelExtractionContributes(t *testing.T) {
	model := &stubModel{raw: json.RawMessage(`{
		"bank_accounts": [{"account_number": "999888777666", "ifsc_code": "icic0004321", "bank_name": "ICICI Bank"}],
		"payment_ids": [{"id": "Fraudster@ybl"}],
		"urls": [{"url": "fast-cash-prizes.com"}],
		"phone_numbers": [{"number": "+91 98111 22233"}]
	}`)}
	e := NewExtractor(model, nil)

	snap := e.Extract(context.Background(), "as discussed", nil)

	if len(snap.BankAccounts) != 1 || snap.BankAccounts[0].Confidence != modelConfidence {
		t.Errorf("model account not merged at model confidence: %+v", snap.BankAccounts)
	}
	if snap.BankAccounts[0].IFSCCode != "ICIC0004321" {
		t.Errorf("ifsc = %q, want uppercased", snap.BankAccounts[0].IFSCCode)
	}
	if len(snap.PaymentIDs) != 1 || snap.PaymentIDs[0].ID != "fraudster@ybl" {
		t.Errorf("model payment id not normalized: %+v", snap.PaymentIDs)
	}
	if len(snap.URLs) != 1 || snap.URLs[0].URL != "https://fast-cash-prizes.com" {
		t.Errorf("model url not scheme-normalized: %+v", snap.URLs)
	}
	if len(snap.Phones) != 1 || snap.Phones[0].Number != "+919811122233" {
		t.Errorf("model phone not normalized: %+v", snap.Phones)
	}
}

func TestModelExtractionFailureDegrades(t *testing.T) {
	model := &stubModel{err: errors.New("provider down")}
	e := NewExtractor(model, nil)

	snap := e.Extract(context.Background(), "pay to winner@paytm", nil)

	if len(snap.PaymentIDs) != 1 {
		t.Errorf("pattern results must survive a model failure: %+v", snap.PaymentIDs)
	}
}

func TestModelExtractionInvalidCandidatesDiscarded(t *testing.T) {
	model := &stubModel{raw: json.RawMessage(`{
		"bank_accounts": [{"account_number": "1234"}],
		"payment_ids": [{"id": "no-at-sign"}],
		"urls": [{"url": ""}],
		"phone_numbers": [{"number": "12345"}]
	}`)}
	e := NewExtractor(model, nil)

	snap := e.Extract(context.Background(), "nothing here", nil)
	if !snap.IsEmpty() {
		t.Errorf("invalid model candidates should be discarded, got %+v", snap)
	}
}

func TestDeriveDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://example.com/path?q=1", "example.com"},
		{"http://Example.COM:8080/x", "example.com"},
		{"https://sub.domain.org", "sub.domain.org"},
	}
	for _, tt := range tests {
		if got := deriveDomain(tt.in); got != tt.want {
			t.Errorf("deriveDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
