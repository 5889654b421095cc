// Package detect implements the scam-detection fusion engine: cheap
// pattern scoring fused with an optional model classification signal
// into one verdict, confidence, and category per inbound message.
package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/TrapWireAI/lurebox/pkg/logger"
	"github.com/TrapWireAI/lurebox/pkg/patterns"
)

// historyWindow is how many recent messages accompany the current one as
// classification context. Excess history is truncated, never an error.
const historyWindow = 5

// Classifier is the model-based classification capability. Implementations
// may be a prompted generative model, a local fine-tuned classifier, or an
// embedding-similarity matcher; all must tolerate unparseable model output
// by returning a safe default rather than an error.
type Classifier interface {
	Classify(ctx context.Context, text string, categories []string, instructions string) (category string, confidence float64, err error)
}

// Result is the per-message detection verdict. Ephemeral: computed per
// message, never persisted as an entity.
type Result struct {
	IsScam     bool         `json:"is_scam"`
	Confidence float64      `json:"confidence"`
	Category   ScamCategory `json:"category"`
}

// Options tune the fusion thresholds.
type Options struct {
	// PatternTrustThreshold is the single short-circuit threshold: a pattern
	// score at or above it is trusted outright and the classifier is never
	// consulted. Default 0.3.
	PatternTrustThreshold float64

	// ConfidenceThreshold is the minimum model confidence for a scam verdict
	// when the classifier is consulted. Default 0.7.
	ConfidenceThreshold float64
}

// DefaultOptions returns the tuned production thresholds.
func DefaultOptions() Options {
	return Options{
		PatternTrustThreshold: 0.3,
		ConfidenceThreshold:   0.7,
	}
}

// Detector fuses pattern scoring with model classification.
type Detector struct {
	registry   *patterns.Registry
	classifier Classifier // nil = pattern-only operation
	opts       Options
	log        *logger.Logger
}

// NewDetector creates a fusion detector. classifier may be nil: the pattern
// fast path remains fully functional with no model present.
func NewDetector(classifier Classifier, opts Options, log *logger.Logger) *Detector {
	if opts.PatternTrustThreshold == 0 {
		opts.PatternTrustThreshold = DefaultOptions().PatternTrustThreshold
	}
	if opts.ConfidenceThreshold == 0 {
		opts.ConfidenceThreshold = DefaultOptions().ConfidenceThreshold
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Detector{
		registry:   patterns.Get(),
		classifier: classifier,
		opts:       opts,
		log:        log.WithComponent("detect"),
	}
}

// signalWeights defines the per-category score contributions and the fixed
// priority order: when several categories fire, the first labeled entry in
// this list wins the category label while the score aggregates all matches.
var signalWeights = []struct {
	pattern  patterns.Category
	weight   float64
	category ScamCategory // empty = contributes score but never the label
}{
	{patterns.CategoryUrgency, 0.3, ""},
	{patterns.CategoryFinancial, 0.4, CategoryFinancialFraud},
	{patterns.CategoryPhishing, 0.4, CategoryPhishing},
	{patterns.CategoryLottery, 0.4, CategoryLotteryPrize},
	{patterns.CategoryTechSupport, 0.4, CategoryTechSupport},
	{patterns.CategoryRomance, 0.3, CategoryRomance},
}

// classificationSystemPrompt describes the category vocabulary to the model.
const classificationSystemPrompt = `You are an expert at detecting scam messages. Analyze the message and classify it into one of the provided categories.
- financial_fraud: Requests for money, bank details, investment schemes
- phishing: Suspicious links, credential requests, fake login pages
- lottery_prize: Claims of winning prizes, lottery scams
- tech_support: Fake technical support, remote access requests
- romance: Emotional manipulation leading to financial requests
- legitimate: Normal, non-scam messages`

// DetectScam runs the fusion pipeline over one inbound message. It always
// returns a well-formed Result: model failures degrade to a non-scam,
// zero-confidence signal and are never surfaced as errors.
func (d *Detector) DetectScam(ctx context.Context, message string, history []string) Result {
	patternScore, tentative := d.patternScore(message)

	// Fast path: trust the pattern result outright, model never consulted.
	if patternScore >= d.opts.PatternTrustThreshold {
		d.log.Debug().
			Float64("pattern_score", patternScore).
			Str("category", tentative.String()).
			Msg("pattern fast path")
		return Result{IsScam: true, Confidence: patternScore, Category: tentative}
	}

	modelCategory, modelConfidence := d.classify(ctx, message, history)

	verdict := modelCategory.IsScam() && modelConfidence > d.opts.ConfidenceThreshold

	result := Result{IsScam: verdict}
	switch {
	case verdict && tentative != CategoryUnknown:
		result.Category = tentative
	case verdict:
		result.Category = CategoryGeneralScam
	default:
		result.Category = CategoryLegitimate
	}
	if verdict {
		result.Confidence = max(patternScore, modelConfidence)
	} else {
		result.Confidence = modelConfidence
	}

	d.log.Debug().
		Float64("pattern_score", patternScore).
		Str("model_category", modelCategory.String()).
		Float64("model_confidence", modelConfidence).
		Bool("is_scam", result.IsScam).
		Msg("fusion verdict")

	return result
}

// patternScore sums weighted per-category contributions, capped at 1.0.
// The first labeled category in priority order that matches becomes the
// tentative category; unknown if nothing labeled matched.
func (d *Detector) patternScore(message string) (float64, ScamCategory) {
	score := 0.0
	tentative := CategoryUnknown

	for _, sw := range signalWeights {
		if !d.registry.MatchAny(message, sw.pattern) {
			continue
		}
		score += sw.weight
		if tentative == CategoryUnknown && sw.category != "" {
			tentative = sw.category
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score, tentative
}

// classify consults the model-based classifier. Unavailable or failing
// classifiers are a non-scam, zero-confidence signal - never an error.
func (d *Detector) classify(ctx context.Context, message string, history []string) (ScamCategory, float64) {
	if d.classifier == nil {
		return CategoryLegitimate, 0
	}

	text := buildClassificationContext(message, history)
	raw, confidence, err := d.classifier.Classify(ctx, text, ClassificationVocabulary, classificationSystemPrompt)
	if err != nil {
		d.log.Warn().Err(err).Msg("model classification failed, falling back to pattern-only signal")
		return CategoryLegitimate, 0
	}

	return ParseCategory(raw), confidence
}

// buildClassificationContext prefixes the current message with up to
// historyWindow recent messages.
func buildClassificationContext(message string, history []string) string {
	if len(history) == 0 {
		return fmt.Sprintf("Current message: %s", message)
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}

	var b strings.Builder
	b.WriteString("Previous messages:\n")
	for _, msg := range recent {
		b.WriteString("- ")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	b.WriteString("\nCurrent message: ")
	b.WriteString(message)
	return b.String()
}
