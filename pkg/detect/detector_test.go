package detect

import (
	"context"
	"errors"
	"testing"
)

// stubClassifier returns a fixed answer, or an error when err is set.
type stubClassifier struct {
	category   string
	confidence float64
	err        error
	calls      int
}

func (s *stubClassifier) Classify(context.Context, string, []string, string) (string, float64, error) {
	s.calls++
	if s.err != nil {
		return "", 0, s.err
	}
	return s.category, s.confidence, nil
}

func TestPatternFastPath(t *testing.T) {
	stub := &stubClassifier{category: "legitimate", confidence: 0.9}
	d := NewDetector(stub, DefaultOptions(), nil)

	// Urgency plus financial terms scores 0.7, well past the trust threshold.
	result := d.DetectScam(context.Background(), "URGENT: transfer money to my bank account immediately!", nil)

	if !result.IsScam {
		t.Error("expected scam verdict from pattern fast path")
	}
	if result.Confidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", result.Confidence)
	}
	if result.Category != CategoryFinancialFraud {
		t.Errorf("category = %s, want %s", result.Category, CategoryFinancialFraud)
	}
	if stub.calls != 0 {
		t.Errorf("classifier consulted %d times on the fast path, want 0", stub.calls)
	}
}

func TestCategoryPriorityOrder(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)

	// Both financial and lottery signals fire; financial wins the label.
	result := d.DetectScam(context.Background(),
		"You won the lottery prize! Pay the processing fee to my bank account.", nil)

	if !result.IsScam {
		t.Fatal("expected scam verdict")
	}
	if result.Category != CategoryFinancialFraud {
		t.Errorf("category = %s, want %s (financial outranks lottery)", result.Category, CategoryFinancialFraud)
	}
}

func TestModelConsultedBelowThreshold(t *testing.T) {
	tests := []struct {
		name         string
		classifier   *stubClassifier
		wantScam     bool
		wantCategory ScamCategory
	}{
		{
			name:         "confident scam verdict",
			classifier:   &stubClassifier{category: "romance", confidence: 0.9},
			wantScam:     true,
			wantCategory: CategoryGeneralScam,
		},
		{
			name:         "low confidence stays legitimate",
			classifier:   &stubClassifier{category: "romance", confidence: 0.6},
			wantScam:     false,
			wantCategory: CategoryLegitimate,
		},
		{
			name:         "legitimate category",
			classifier:   &stubClassifier{category: "legitimate", confidence: 0.95},
			wantScam:     false,
			wantCategory: CategoryLegitimate,
		},
	}

	// A message with no pattern signals at all.
	const message = "hello, how are you doing these days"

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDetector(tt.classifier, DefaultOptions(), nil)
			result := d.DetectScam(context.Background(), message, nil)

			if result.IsScam != tt.wantScam {
				t.Errorf("IsScam = %v, want %v", result.IsScam, tt.wantScam)
			}
			if result.Category != tt.wantCategory {
				t.Errorf("category = %s, want %s", result.Category, tt.wantCategory)
			}
			if tt.classifier.calls != 1 {
				t.Errorf("classifier calls = %d, want 1", tt.classifier.calls)
			}
		})
	}
}

func TestModelFailureDegrades(t *testing.T) {
	stub := &stubClassifier{err: errors.New("provider down")}
	d := NewDetector(stub, DefaultOptions(), nil)

	result := d.DetectScam(context.Background(), "hello, how are you doing these days", nil)

	if result.IsScam {
		t.Error("model failure must not produce a scam verdict")
	}
	if result.Confidence != 0 {
		t.Errorf("confidence = %v, want 0 on model failure", result.Confidence)
	}
	if result.Category != CategoryLegitimate {
		t.Errorf("category = %s, want %s", result.Category, CategoryLegitimate)
	}
}

func TestNilClassifierPatternOnly(t *testing.T) {
	d := NewDetector(nil, DefaultOptions(), nil)

	result := d.DetectScam(context.Background(), "nice weather today", nil)
	if result.IsScam {
		t.Error("clean message should not be a scam with no classifier")
	}
	if result.Category != CategoryLegitimate {
		t.Errorf("category = %s, want %s", result.Category, CategoryLegitimate)
	}
}

func TestTentativeCategoryRefinesModelVerdict(t *testing.T) {
	// Pattern score below the trust threshold but a labeled category fired;
	// the model confirms a scam, so the pattern label wins over general_scam.
	stub := &stubClassifier{category: "financial_fraud", confidence: 0.9}
	opts := Options{PatternTrustThreshold: 0.5, ConfidenceThreshold: 0.7}
	d := NewDetector(stub, opts, nil)

	result := d.DetectScam(context.Background(), "please send the payment", nil)

	if !result.IsScam {
		t.Fatal("expected scam verdict")
	}
	if result.Category != CategoryFinancialFraud {
		t.Errorf("category = %s, want %s", result.Category, CategoryFinancialFraud)
	}
	if result.Confidence != 0.9 {
		t.Errorf("confidence = %v, want max(pattern, model) = 0.9", result.Confidence)
	}
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want ScamCategory
	}{
		{"phishing", CategoryPhishing},
		{"financial_fraud", CategoryFinancialFraud},
		{"legitimate", CategoryLegitimate},
		{"something else", CategoryUnknown},
		{"", CategoryUnknown},
	}
	for _, tt := range tests {
		if got := ParseCategory(tt.in); got != tt.want {
			t.Errorf("ParseCategory(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestIsScamCategory(t *testing.T) {
	if CategoryLegitimate.IsScam() || CategoryUnknown.IsScam() {
		t.Error("legitimate and unknown are not scam categories")
	}
	if !CategoryPhishing.IsScam() || !CategoryGeneralScam.IsScam() {
		t.Error("phishing and general_scam are scam categories")
	}
}
