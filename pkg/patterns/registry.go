// Package patterns provides a centralized, compile-once pattern registry
// for scam-signal detection and intelligence extraction. All regex patterns
// are compiled at first use and shared across detectors and extractors.
//
// Design principles:
// - COMPILE ONCE: All patterns compiled at init, not per-message
// - DRY: Single source of truth for all scam and intelligence patterns
// - CATEGORIZED: Patterns organized by category for targeted scans
// - EXTENSIBLE: New patterns register without touching caller code
package patterns

import (
	"regexp"
	"sort"
	"strings"
	"sync"
)

// Category represents a pattern category.
type Category string

const (
	// Scam-signal categories (detection side)
	CategoryUrgency     Category = "urgency"
	CategoryFinancial   Category = "financial"
	CategoryPhishing    Category = "phishing"
	CategoryLottery     Category = "lottery"
	CategoryTechSupport Category = "tech_support"
	CategoryRomance     Category = "romance"

	// Intelligence categories (extraction side)
	CategoryBankAccount Category = "bank_account"
	CategoryRoutingCode Category = "routing_code"
	CategoryPaymentID   Category = "payment_id"
	CategoryPhone       Category = "phone"
	CategoryURL         Category = "url"
)

// Candidate length bounds. Numeric text outside these ranges is discarded
// before it ever becomes an intelligence candidate.
const (
	MinAccountDigits = 9
	MaxAccountDigits = 18
	MinPhoneDigits   = 10
)

// Pattern holds a compiled regex with metadata.
type Pattern struct {
	Name        string         // Human-readable name for logging
	Regex       *regexp.Regexp // Compiled regex (never nil after init)
	Category    Category       // Pattern category
	Description string         // What this pattern matches
}

// Registry holds all compiled patterns, organized by category.
type Registry struct {
	mu         sync.RWMutex
	byCategory map[Category][]*Pattern
	all        []*Pattern
}

// global singleton - initialized once at first Get
var (
	globalRegistry *Registry
	initOnce       sync.Once
)

// Get returns the global pattern registry (singleton).
// Thread-safe and guaranteed to be initialized.
func Get() *Registry {
	initOnce.Do(func() {
		globalRegistry = newRegistry()
	})
	return globalRegistry
}

func newRegistry() *Registry {
	r := &Registry{
		byCategory: make(map[Category][]*Pattern),
		all:        make([]*Pattern, 0, 64),
	}

	r.registerScamSignalPatterns()
	r.registerIntelligencePatterns()

	return r
}

// register adds a pattern to the registry (internal use only).
func (r *Registry) register(name string, pattern string, category Category, description string) {
	compiled := regexp.MustCompile(pattern)
	p := &Pattern{
		Name:        name,
		Regex:       compiled,
		Category:    category,
		Description: description,
	}

	r.byCategory[category] = append(r.byCategory[category], p)
	r.all = append(r.all, p)
}

// GetByCategory returns all patterns for a specific category.
// Returns empty slice if category not found (never nil).
func (r *Registry) GetByCategory(cat Category) []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if ps, ok := r.byCategory[cat]; ok {
		return ps
	}
	return []*Pattern{}
}

// Match runs every pattern in the category over the text and returns the
// deduplicated set of matched literal substrings, sorted for stable output.
// Matching is case-insensitive; the input is normalized before scanning.
func (r *Registry) Match(text string, cat Category) []string {
	normalized := Normalize(text)

	seen := make(map[string]struct{})
	for _, p := range r.GetByCategory(cat) {
		for _, m := range p.Regex.FindAllString(normalized, -1) {
			seen[m] = struct{}{}
		}
	}

	matches := make([]string, 0, len(seen))
	for m := range seen {
		matches = append(matches, m)
	}
	sort.Strings(matches)
	return matches
}

// MatchAny reports whether any pattern in the category matches the text.
// Optimized for early exit on first match.
func (r *Registry) MatchAny(text string, cat Category) bool {
	normalized := Normalize(text)
	for _, p := range r.GetByCategory(cat) {
		if p.Regex.MatchString(normalized) {
			return true
		}
	}
	return false
}

// TotalPatterns returns the total count of registered patterns.
func (r *Registry) TotalPatterns() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.all)
}

// CategoryCount returns the number of patterns in a category.
func (r *Registry) CategoryCount(cat Category) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byCategory[cat])
}

// phishingIndicators are substrings that mark a URL as likely phishing.
// Includes known URL-shortener hosts scammers favor.
var phishingIndicators = []string{
	"verify", "secure", "login", "account", "bank", "update", "confirm",
	"support", "help", "service", "customer", "official", "genuine",
	"bit.ly", "tinyurl", "short.link", "goo.gl", "t.co",
}

// IsPhishingURL checks a URL against the phishing indicator vocabulary.
func IsPhishingURL(url string) bool {
	lower := strings.ToLower(url)
	for _, ind := range phishingIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
