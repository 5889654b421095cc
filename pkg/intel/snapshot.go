// Package intel implements the intelligence-extraction pipeline: pattern
// matching over conversation text, optional model-assisted extraction, and
// the merge/dedup rules that keep one entry per distinct normalized value.
package intel

import (
	"strings"

	"github.com/TrapWireAI/lurebox/pkg/patterns"
)

// BankAccount is an extracted bank account candidate.
type BankAccount struct {
	AccountNumber string  `json:"account_number"`
	IFSCCode      string  `json:"ifsc_code,omitempty"`
	BankName      string  `json:"bank_name,omitempty"`
	Confidence    float64 `json:"confidence"`
}

// PaymentID is an extracted payment identifier (UPI-style handle).
type PaymentID struct {
	ID         string  `json:"id"`
	Confidence float64 `json:"confidence"`
}

// URL is an extracted link with its derived domain and phishing flag.
type URL struct {
	URL        string  `json:"url"`
	Domain     string  `json:"domain"`
	Phishing   bool    `json:"phishing"`
	Confidence float64 `json:"confidence"`
}

// Phone is an extracted phone number, normalized to digits (plus optional
// leading country-code plus).
type Phone struct {
	Number     string  `json:"number"`
	Confidence float64 `json:"confidence"`
}

// Snapshot is the accumulated intelligence for a conversation: four
// ordered-insertion, duplicate-free collections.
//
// Invariant: a candidate already present (by normalized value) is never
// duplicated; a later higher-confidence detection of the same value may
// update confidence but not identity.
type Snapshot struct {
	BankAccounts []BankAccount `json:"bank_accounts"`
	PaymentIDs   []PaymentID   `json:"payment_ids"`
	URLs         []URL         `json:"urls"`
	Phones       []Phone       `json:"phone_numbers"`
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// AddBankAccount inserts a candidate, deduplicating by account number.
// An existing entry keeps its identity; a higher-confidence duplicate
// updates confidence and fills in routing/bank fields that were missing.
func (s *Snapshot) AddBankAccount(acc BankAccount) {
	for i := range s.BankAccounts {
		if s.BankAccounts[i].AccountNumber != acc.AccountNumber {
			continue
		}
		if acc.Confidence > s.BankAccounts[i].Confidence {
			s.BankAccounts[i].Confidence = acc.Confidence
		}
		if s.BankAccounts[i].IFSCCode == "" {
			s.BankAccounts[i].IFSCCode = acc.IFSCCode
		}
		if s.BankAccounts[i].BankName == "" {
			s.BankAccounts[i].BankName = acc.BankName
		}
		return
	}
	s.BankAccounts = append(s.BankAccounts, acc)
}

// AddPaymentID inserts a candidate, deduplicating by lowercased id.
func (s *Snapshot) AddPaymentID(p PaymentID) {
	p.ID = strings.ToLower(p.ID)
	for i := range s.PaymentIDs {
		if s.PaymentIDs[i].ID == p.ID {
			if p.Confidence > s.PaymentIDs[i].Confidence {
				s.PaymentIDs[i].Confidence = p.Confidence
			}
			return
		}
	}
	s.PaymentIDs = append(s.PaymentIDs, p)
}

// urlKey normalizes a URL for dedup. The scheme is stripped so that a bare
// domain and the schemed link it came from collapse to one entry.
func urlKey(raw string) string {
	key := strings.ToLower(raw)
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	return strings.TrimSuffix(key, "/")
}

// AddURL inserts a candidate, deduplicating by scheme-stripped URL.
func (s *Snapshot) AddURL(u URL) {
	key := urlKey(u.URL)
	for i := range s.URLs {
		if urlKey(s.URLs[i].URL) == key {
			if u.Confidence > s.URLs[i].Confidence {
				s.URLs[i].Confidence = u.Confidence
			}
			if u.Phishing {
				s.URLs[i].Phishing = true
			}
			return
		}
	}
	s.URLs = append(s.URLs, u)
}

// AddPhone inserts a candidate, deduplicating by digit sequence so that
// "+919876543210" and "919876543210" collapse to one entry.
func (s *Snapshot) AddPhone(p Phone) {
	key := patterns.DigitsOnly(p.Number)
	for i := range s.Phones {
		if patterns.DigitsOnly(s.Phones[i].Number) == key {
			if p.Confidence > s.Phones[i].Confidence {
				s.Phones[i].Confidence = p.Confidence
			}
			return
		}
	}
	s.Phones = append(s.Phones, p)
}

// Merge folds another snapshot into this one under the dedup invariant.
func (s *Snapshot) Merge(other *Snapshot) {
	if other == nil {
		return
	}
	for _, acc := range other.BankAccounts {
		s.AddBankAccount(acc)
	}
	for _, p := range other.PaymentIDs {
		s.AddPaymentID(p)
	}
	for _, u := range other.URLs {
		s.AddURL(u)
	}
	for _, p := range other.Phones {
		s.AddPhone(p)
	}
}

// Complete reports whether all four intelligence categories are populated.
func (s *Snapshot) Complete() bool {
	return len(s.BankAccounts) > 0 &&
		len(s.PaymentIDs) > 0 &&
		len(s.URLs) > 0 &&
		len(s.Phones) > 0
}

// IsEmpty reports whether nothing has been extracted yet.
func (s *Snapshot) IsEmpty() bool {
	return len(s.BankAccounts) == 0 &&
		len(s.PaymentIDs) == 0 &&
		len(s.URLs) == 0 &&
		len(s.Phones) == 0
}

// Missing lists human-readable descriptions of the categories still empty,
// used to steer the conversation toward what the operation still needs.
func (s *Snapshot) Missing() []string {
	var missing []string
	if len(s.BankAccounts) == 0 {
		missing = append(missing, "bank account details (account number, IFSC code)")
	}
	if len(s.PaymentIDs) == 0 {
		missing = append(missing, "UPI ID for payment")
	}
	if len(s.URLs) == 0 {
		missing = append(missing, "website or link to visit")
	}
	if len(s.Phones) == 0 {
		missing = append(missing, "phone number to call or WhatsApp")
	}
	return missing
}
