package intel

import "testing"

func TestAddBankAccountDedup(t *testing.T) {
	snap := NewSnapshot()

	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.8})
	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.8})

	if len(snap.BankAccounts) != 1 {
		t.Fatalf("expected 1 account after duplicate add, got %d", len(snap.BankAccounts))
	}
}

func TestAddBankAccountUpgrades(t *testing.T) {
	snap := NewSnapshot()

	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.8})
	snap.AddBankAccount(BankAccount{
		AccountNumber: "123456789012",
		IFSCCode:      "HDFC0001234",
		BankName:      "HDFC Bank",
		Confidence:    0.95,
	})

	if len(snap.BankAccounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(snap.BankAccounts))
	}
	acc := snap.BankAccounts[0]
	if acc.Confidence != 0.95 {
		t.Errorf("confidence = %v, want upgraded to 0.95", acc.Confidence)
	}
	if acc.IFSCCode != "HDFC0001234" || acc.BankName != "HDFC Bank" {
		t.Errorf("missing fields were not filled in: %+v", acc)
	}
}

func TestAddBankAccountLowerConfidenceKeepsExisting(t *testing.T) {
	snap := NewSnapshot()

	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.95})
	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.5})

	if snap.BankAccounts[0].Confidence != 0.95 {
		t.Errorf("confidence = %v, lower-confidence duplicate must not downgrade", snap.BankAccounts[0].Confidence)
	}
}

func TestAddPaymentIDCaseInsensitive(t *testing.T) {
	snap := NewSnapshot()

	snap.AddPaymentID(PaymentID{ID: "Winner@Paytm", Confidence: 0.9})
	snap.AddPaymentID(PaymentID{ID: "winner@paytm", Confidence: 0.9})

	if len(snap.PaymentIDs) != 1 {
		t.Fatalf("expected 1 payment id, got %d", len(snap.PaymentIDs))
	}
	if snap.PaymentIDs[0].ID != "winner@paytm" {
		t.Errorf("payment id = %q, want lowercased", snap.PaymentIDs[0].ID)
	}
}

func TestAddPhoneDedupByDigits(t *testing.T) {
	snap := NewSnapshot()

	snap.AddPhone(Phone{Number: "+919876543210", Confidence: 0.8})
	snap.AddPhone(Phone{Number: "919876543210", Confidence: 0.8})

	if len(snap.Phones) != 1 {
		t.Fatalf("expected 1 phone after digit-equal add, got %d", len(snap.Phones))
	}
}

func TestAddURLKeepsPhishingFlag(t *testing.T) {
	snap := NewSnapshot()

	snap.AddURL(URL{URL: "https://scam-verify.com", Domain: "scam-verify.com", Confidence: 0.5})
	snap.AddURL(URL{URL: "https://scam-verify.com", Domain: "scam-verify.com", Phishing: true, Confidence: 0.9})

	if len(snap.URLs) != 1 {
		t.Fatalf("expected 1 url, got %d", len(snap.URLs))
	}
	if !snap.URLs[0].Phishing {
		t.Error("phishing flag should stick once set")
	}
	if snap.URLs[0].Confidence != 0.9 {
		t.Errorf("confidence = %v, want 0.9", snap.URLs[0].Confidence)
	}
}

func TestAddURLCollapsesSchemeVariants(t *testing.T) {
	snap := NewSnapshot()

	snap.AddURL(URL{URL: "http://scam-verify.com", Domain: "scam-verify.com", Confidence: 0.5})
	snap.AddURL(URL{URL: "https://scam-verify.com", Domain: "scam-verify.com", Phishing: true, Confidence: 0.9})
	snap.AddURL(URL{URL: "https://scam-verify.com/", Domain: "scam-verify.com", Confidence: 0.5})

	if len(snap.URLs) != 1 {
		t.Fatalf("expected 1 url across scheme variants, got %d: %+v", len(snap.URLs), snap.URLs)
	}
	if snap.URLs[0].URL != "http://scam-verify.com" {
		t.Errorf("url = %q, want the first-seen form kept", snap.URLs[0].URL)
	}
	if !snap.URLs[0].Phishing || snap.URLs[0].Confidence != 0.9 {
		t.Errorf("flags not merged: %+v", snap.URLs[0])
	}
}

func TestMergeIsIdempotent(t *testing.T) {
	base := NewSnapshot()
	other := NewSnapshot()
	other.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.8})
	other.AddPaymentID(PaymentID{ID: "winner@paytm", Confidence: 0.9})
	other.AddURL(URL{URL: "https://example.com", Domain: "example.com", Confidence: 0.5})
	other.AddPhone(Phone{Number: "9876543210", Confidence: 0.8})

	base.Merge(other)
	base.Merge(other)

	if len(base.BankAccounts) != 1 || len(base.PaymentIDs) != 1 || len(base.URLs) != 1 || len(base.Phones) != 1 {
		t.Errorf("merge is not idempotent: %d accounts, %d payment ids, %d urls, %d phones",
			len(base.BankAccounts), len(base.PaymentIDs), len(base.URLs), len(base.Phones))
	}
}

func TestMergeNilIsNoop(t *testing.T) {
	snap := NewSnapshot()
	snap.Merge(nil)
	if !snap.IsEmpty() {
		t.Error("merging nil should leave the snapshot empty")
	}
}

func TestCompleteAndMissing(t *testing.T) {
	snap := NewSnapshot()

	if snap.Complete() {
		t.Error("empty snapshot must not be complete")
	}
	if got := len(snap.Missing()); got != 4 {
		t.Errorf("empty snapshot should be missing 4 categories, got %d", got)
	}

	snap.AddBankAccount(BankAccount{AccountNumber: "123456789012", Confidence: 0.8})
	snap.AddPaymentID(PaymentID{ID: "winner@paytm", Confidence: 0.9})
	snap.AddURL(URL{URL: "https://example.com", Domain: "example.com", Confidence: 0.5})

	if snap.Complete() {
		t.Error("snapshot missing phones must not be complete")
	}
	if got := len(snap.Missing()); got != 1 {
		t.Errorf("expected 1 missing category, got %d", got)
	}

	snap.AddPhone(Phone{Number: "9876543210", Confidence: 0.8})
	if !snap.Complete() {
		t.Error("snapshot with all four categories should be complete")
	}
	if got := len(snap.Missing()); got != 0 {
		t.Errorf("complete snapshot should have no missing categories, got %d", got)
	}
}
