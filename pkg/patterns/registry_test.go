package patterns

import (
	"strings"
	"testing"
)

func TestRegistrySingleton(t *testing.T) {
	r1 := Get()
	r2 := Get()
	if r1 != r2 {
		t.Error("Get() should return the same registry instance")
	}
	if r1.TotalPatterns() == 0 {
		t.Error("registry should have patterns registered")
	}
}

func TestCategoryCounts(t *testing.T) {
	r := Get()
	categories := []Category{
		CategoryUrgency, CategoryFinancial, CategoryPhishing,
		CategoryLottery, CategoryTechSupport, CategoryRomance,
		CategoryBankAccount, CategoryRoutingCode, CategoryPaymentID,
		CategoryPhone, CategoryURL,
	}
	for _, cat := range categories {
		if r.CategoryCount(cat) == 0 {
			t.Errorf("category %s has no patterns", cat)
		}
	}
}

func TestMatchAnyScamSignals(t *testing.T) {
	r := Get()

	tests := []struct {
		name     string
		text     string
		category Category
		want     bool
	}{
		{"urgency pressure", "Act now! This offer is urgent and expires soon", CategoryUrgency, true},
		{"financial terms", "Please share your bank account number for the transfer", CategoryFinancial, true},
		{"phishing action", "Click here to verify your account immediately", CategoryPhishing, true},
		{"lottery win", "Congratulations! You won the lottery jackpot", CategoryLottery, true},
		{"tech support threat", "Your computer has a virus, we detected suspicious activity", CategoryTechSupport, true},
		{"romance payment", "Please send me a gift card or use western union", CategoryRomance, true},
		{"clean message", "See you at the cafe tomorrow evening", CategoryUrgency, false},
		{"clean financial", "The weather is lovely this time of year", CategoryFinancial, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.MatchAny(tt.text, tt.category); got != tt.want {
				t.Errorf("MatchAny(%q, %s) = %v, want %v", tt.text, tt.category, got, tt.want)
			}
		})
	}
}

func TestMatchDeduplicates(t *testing.T) {
	r := Get()
	matches := r.Match("urgent urgent urgent, this is urgent", CategoryUrgency)
	if len(matches) != 1 {
		t.Errorf("expected 1 deduplicated match, got %d: %v", len(matches), matches)
	}
}

func TestIntelligenceMatches(t *testing.T) {
	r := Get()

	tests := []struct {
		name     string
		text     string
		category Category
		contains string
	}{
		{"bare account digits", "send to 123456789012 today", CategoryBankAccount, "123456789012"},
		{"ifsc code", "IFSC: HDFC0001234 branch", CategoryRoutingCode, "HDFC0001234"},
		{"upi handle", "pay me at winner@paytm please", CategoryPaymentID, "winner@paytm"},
		{"indian mobile", "call 9876543210 now", CategoryPhone, "9876543210"},
		{"mobile with country code", "WhatsApp +91 9876543210 for details", CategoryPhone, "+91 9876543210"},
		{"url with scheme", "visit https://example.com/offer now", CategoryURL, "https://example.com/offer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches := r.Match(tt.text, tt.category)
			found := false
			for _, m := range matches {
				if strings.Contains(m, tt.contains) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("Match(%q, %s) = %v, want a match containing %q", tt.text, tt.category, matches, tt.contains)
			}
		})
	}
}

func TestIsPhishingURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://secure-bank-verify.com", true},
		{"https://bit.ly/3xYz", true},
		{"http://customer-support-login.net/portal", true},
		{"https://example.com/products", false},
		{"https://github.com/someone/repo", false},
	}

	for _, tt := range tests {
		if got := IsPhishingURL(tt.url); got != tt.want {
			t.Errorf("IsPhishingURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "send money now", "send money now"},
		{"fullwidth digits", "１２３４５６７８９", "123456789"},
		{"zero width space", "ur\u200bgent", "urgent"},
		{"zero width joiner", "ban\u200dk", "bank"},
		{"byte order mark", "verify\ufeff your\ufeff account", "verify your account"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidators(t *testing.T) {
	if !ValidAccountNumber("123456789") {
		t.Error("9 digits should be a valid account number")
	}
	if ValidAccountNumber("12345678") {
		t.Error("8 digits should not be a valid account number")
	}
	if ValidAccountNumber(strings.Repeat("1", 19)) {
		t.Error("19 digits should not be a valid account number")
	}
	if !ValidPhoneNumber("+919876543210") {
		t.Error("full mobile number should be valid")
	}
	if ValidPhoneNumber("+9198765") {
		t.Error("short number should not be valid")
	}
}

func TestDigitHelpers(t *testing.T) {
	if got := DigitsOnly("a1b2c3"); got != "123" {
		t.Errorf("DigitsOnly = %q, want %q", got, "123")
	}
	if got := DigitsAndPlus("phone: +91 98765-43210"); got != "+919876543210" {
		t.Errorf("DigitsAndPlus = %q, want %q", got, "+919876543210")
	}
}
