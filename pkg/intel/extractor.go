package intel

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/TrapWireAI/lurebox/pkg/logger"
	"github.com/TrapWireAI/lurebox/pkg/patterns"
)

// Extraction confidence tiers. Pattern hits are graded by how ambiguous
// the pattern is; model-sourced candidates rank above all pattern tiers.
const (
	accountConfidence   = 0.8
	paymentConfidence   = 0.9
	phoneConfidence     = 0.8
	urlConfidence       = 0.5
	phishingConfidence  = 0.9
	modelConfidence     = 0.95
	extractionWindow    = 3 // prior messages joined with the current one
)

// ifscBankNames maps the leading four letters of an IFSC routing code to
// the issuing bank.
var ifscBankNames = map[string]string{
	"HDFC": "HDFC Bank",
	"ICIC": "ICICI Bank",
	"SBIN": "State Bank of India",
	"AXIS": "Axis Bank",
	"KKBK": "Kotak Mahindra Bank",
	"PUNB": "Punjab National Bank",
	"UBIN": "Union Bank of India",
	"BKID": "Bank of India",
	"BARB": "Bank of Baroda",
	"CNRB": "Canara Bank",
}

// StructuredExtractor produces structured JSON from a prompt. A nil raw
// message with a nil error means the model answered but produced nothing
// parseable; extraction treats that as an empty result.
type StructuredExtractor interface {
	ExtractJSON(ctx context.Context, prompt, system string) (json.RawMessage, error)
}

// Extractor pulls actionable intelligence out of conversation text using
// the compiled pattern registry, optionally augmented by a language model.
type Extractor struct {
	registry *patterns.Registry
	model    StructuredExtractor
	log      *logger.Logger
}

// NewExtractor builds an extractor. model may be nil to run pattern-only.
func NewExtractor(model StructuredExtractor, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{
		registry: patterns.Get(),
		model:    model,
		log:      log.WithComponent("intel"),
	}
}

// Extract scans the current message plus a short window of prior messages
// and returns everything found. Extraction never fails: a model error
// degrades to the pattern-only result.
func (e *Extractor) Extract(ctx context.Context, message string, history []string) *Snapshot {
	window := history
	if len(window) > extractionWindow {
		window = window[len(window)-extractionWindow:]
	}
	text := strings.Join(append(append([]string{}, window...), message), " ")

	snap := NewSnapshot()
	e.extractBankAccounts(text, snap)
	e.extractPaymentIDs(text, snap)
	e.extractURLs(text, snap)
	e.extractPhones(text, snap)

	if e.model != nil {
		e.extractWithModel(ctx, text, snap)
	}

	if !snap.IsEmpty() {
		e.log.Debug().
			Int("bank_accounts", len(snap.BankAccounts)).
			Int("payment_ids", len(snap.PaymentIDs)).
			Int("urls", len(snap.URLs)).
			Int("phones", len(snap.Phones)).
			Msg("intelligence extracted")
	}
	return snap
}

// ifscShape pulls the bare routing code out of a match that may still
// carry its label text.
var ifscShape = regexp.MustCompile(`[A-Z]{4}0[A-Z0-9]{6}`)

func (e *Extractor) extractBankAccounts(text string, snap *Snapshot) {
	var ifsc, bank string
	for _, m := range e.registry.Match(text, patterns.CategoryRoutingCode) {
		if code := ifscShape.FindString(strings.ToUpper(m)); code != "" {
			ifsc = code
			bank = ifscBankNames[code[:4]]
			break
		}
	}
	for _, m := range e.registry.Match(text, patterns.CategoryBankAccount) {
		digits := patterns.DigitsOnly(m)
		if !patterns.ValidAccountNumber(digits) {
			continue
		}
		snap.AddBankAccount(BankAccount{
			AccountNumber: digits,
			IFSCCode:      ifsc,
			BankName:      bank,
			Confidence:    accountConfidence,
		})
	}
}

func (e *Extractor) extractPaymentIDs(text string, snap *Snapshot) {
	for _, m := range e.registry.Match(text, patterns.CategoryPaymentID) {
		snap.AddPaymentID(PaymentID{ID: strings.ToLower(m), Confidence: paymentConfidence})
	}
}

func (e *Extractor) extractURLs(text string, snap *Snapshot) {
	for _, m := range e.registry.Match(text, patterns.CategoryURL) {
		u := normalizeURL(m)
		phishing := patterns.IsPhishingURL(u)
		conf := urlConfidence
		if phishing {
			conf = phishingConfidence
		}
		snap.AddURL(URL{
			URL:        u,
			Domain:     deriveDomain(u),
			Phishing:   phishing,
			Confidence: conf,
		})
	}
}

func (e *Extractor) extractPhones(text string, snap *Snapshot) {
	for _, m := range e.registry.Match(text, patterns.CategoryPhone) {
		n := patterns.DigitsAndPlus(m)
		if !patterns.ValidPhoneNumber(n) {
			continue
		}
		snap.AddPhone(Phone{Number: n, Confidence: phoneConfidence})
	}
}

// normalizeURL gives bare links a scheme so downstream consumers get a
// fetchable URL.
func normalizeURL(raw string) string {
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

// deriveDomain strips scheme, path, query, and port from a URL.
func deriveDomain(u string) string {
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.IndexAny(u, "/?#"); i >= 0 {
		u = u[:i]
	}
	if i := strings.Index(u, ":"); i >= 0 {
		u = u[:i]
	}
	return strings.ToLower(u)
}

const extractionSystemPrompt = `You extract payment and contact details from scam messages for fraud investigation.
Return ONLY a JSON object, no explanation. Use empty arrays for categories with nothing found. Never invent values that are not present in the text.`

// modelExtraction is the JSON shape the model is asked to produce.
type modelExtraction struct {
	BankAccounts []struct {
		AccountNumber string `json:"account_number"`
		IFSCCode      string `json:"ifsc_code"`
		BankName      string `json:"bank_name"`
	} `json:"bank_accounts"`
	PaymentIDs []struct {
		ID string `json:"id"`
	} `json:"payment_ids"`
	URLs []struct {
		URL string `json:"url"`
	} `json:"urls"`
	Phones []struct {
		Number string `json:"number"`
	} `json:"phone_numbers"`
}

func (e *Extractor) extractWithModel(ctx context.Context, text string, snap *Snapshot) {
	prompt := fmt.Sprintf(`Extract any of the following from the conversation below:
- bank account numbers with IFSC codes and bank names
- UPI IDs or other payment handles
- website links
- phone numbers

Respond with JSON in this exact shape:
{"bank_accounts":[{"account_number":"","ifsc_code":"","bank_name":""}],"payment_ids":[{"id":""}],"urls":[{"url":""}],"phone_numbers":[{"number":""}]}

Conversation:
%s`, text)

	raw, err := e.model.ExtractJSON(ctx, prompt, extractionSystemPrompt)
	if err != nil {
		e.log.Warn().Err(err).Msg("model extraction unavailable, using pattern results only")
		return
	}
	if raw == nil {
		return
	}

	var out modelExtraction
	if err := json.Unmarshal(raw, &out); err != nil {
		e.log.Debug().Err(err).Msg("model extraction response did not match schema")
		return
	}

	for _, acc := range out.BankAccounts {
		digits := patterns.DigitsOnly(acc.AccountNumber)
		if !patterns.ValidAccountNumber(digits) {
			continue
		}
		snap.AddBankAccount(BankAccount{
			AccountNumber: digits,
			IFSCCode:      strings.ToUpper(acc.IFSCCode),
			BankName:      acc.BankName,
			Confidence:    modelConfidence,
		})
	}
	for _, p := range out.PaymentIDs {
		if strings.Contains(p.ID, "@") {
			snap.AddPaymentID(PaymentID{ID: strings.ToLower(p.ID), Confidence: modelConfidence})
		}
	}
	for _, u := range out.URLs {
		if u.URL == "" {
			continue
		}
		norm := normalizeURL(u.URL)
		snap.AddURL(URL{
			URL:        norm,
			Domain:     deriveDomain(norm),
			Phishing:   patterns.IsPhishingURL(norm),
			Confidence: modelConfidence,
		})
	}
	for _, p := range out.Phones {
		n := patterns.DigitsAndPlus(p.Number)
		if !patterns.ValidPhoneNumber(n) {
			continue
		}
		snap.AddPhone(Phone{Number: n, Confidence: modelConfidence})
	}
}
