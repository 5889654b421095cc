package detect

// semantic.go - embedding-similarity scam classification over a seeded
// exemplar corpus. Catches paraphrased scam scripts the literal patterns
// miss, without any cloud dependency beyond an embedding endpoint.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/TrapWireAI/lurebox/pkg/httputil"
)

// ScamExemplar is a known scam message with its category label.
type ScamExemplar struct {
	Text     string
	Category ScamCategory
}

// SemanticClassifier classifies by nearest-exemplar similarity in an
// in-process vector store. Implements Classifier: a strong match returns
// the matched exemplar's category with the similarity as confidence.
type SemanticClassifier struct {
	db         *chromem.DB
	collection *chromem.Collection
	threshold  float32
	mu         sync.RWMutex
	ready      bool
}

// NewSemanticClassifier creates a classifier using Ollama embeddings.
// Call LoadExemplars before use; it requires the embedding endpoint to
// be reachable.
func NewSemanticClassifier(ollamaURL string) (*SemanticClassifier, error) {
	db := chromem.NewDB()

	collection, err := db.CreateCollection("scam_exemplars", nil, newOllamaEmbeddingFunc("embeddinggemma", ollamaURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &SemanticClassifier{
		db:         db,
		collection: collection,
		threshold:  0.65,
	}, nil
}

// newOllamaEmbeddingFunc creates a custom embedding function for Ollama
// that uses the /api/embeddings endpoint with the correct format.
func newOllamaEmbeddingFunc(model, baseURL string) chromem.EmbeddingFunc {
	client := httputil.NewClient(30 * time.Second)

	return func(ctx context.Context, text string) ([]float32, error) {
		reqBody := map[string]string{
			"model":  model,
			"prompt": text,
		}
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(baseURL, "/")+"/api/embeddings", bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}
		defer httputil.DrainAndClose(resp.Body)

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("embedding API error %d", resp.StatusCode)
		}

		var result struct {
			Embedding []float32 `json:"embedding"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
		return result.Embedding, nil
	}
}

// scamExemplars seeds the vector store with canonical scam scripts.
// Small on purpose: exemplars anchor paraphrase matching, the pattern
// registry carries the literal vocabulary.
func scamExemplars() []ScamExemplar {
	return []ScamExemplar{
		{"Your bank account will be frozen today, transfer the verification deposit immediately", CategoryFinancialFraud},
		{"Guaranteed investment scheme, double your money in one week, risk free returns", CategoryFinancialFraud},
		{"Pay the registration fee now and start earning from home tomorrow", CategoryFinancialFraud},
		{"Your account has been suspended, click the link and verify your password", CategoryPhishing},
		{"Security alert: confirm your card number and OTP to keep your account active", CategoryPhishing},
		{"Congratulations, you have been selected as the winner of our lucky draw jackpot", CategoryLotteryPrize},
		{"You won the international lottery, pay the small claim tax to receive your prize", CategoryLotteryPrize},
		{"We detected a virus on your computer, install remote access software so our technician can fix it", CategoryTechSupport},
		{"This is Microsoft support, your device is compromised and needs immediate attention", CategoryTechSupport},
		{"My love, I am stuck at the hospital and need you to send money for the emergency", CategoryRomance},
		{"Please help me with gift cards, my family has a problem and you are the only one I trust", CategoryRomance},
	}
}

// LoadExemplars embeds and indexes the exemplar corpus. Must succeed before
// Classify is usable.
func (sc *SemanticClassifier) LoadExemplars(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	exemplars := scamExemplars()
	docs := make([]chromem.Document, len(exemplars))
	for i, ex := range exemplars {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("exemplar_%d", i),
			Content: ex.Text,
			Metadata: map[string]string{
				"category": string(ex.Category),
			},
		}
	}

	// Embed sequentially to avoid overwhelming the embedding endpoint.
	if err := sc.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add exemplars: %w", err)
	}

	sc.ready = true
	return nil
}

// IsReady returns true once the exemplar corpus is loaded.
func (sc *SemanticClassifier) IsReady() bool {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return sc.ready
}

// Classify implements Classifier via nearest-exemplar lookup.
func (sc *SemanticClassifier) Classify(ctx context.Context, text string, categories []string, instructions string) (string, float64, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	if !sc.ready {
		return "", 0, fmt.Errorf("semantic classifier not initialized - call LoadExemplars first")
	}

	// Lowercase for better embedding similarity matching
	results, err := sc.collection.Query(ctx, strings.ToLower(text), 1, nil, nil)
	if err != nil {
		return "", 0, fmt.Errorf("query failed: %w", err)
	}

	if len(results) == 0 || results[0].Similarity < sc.threshold {
		return string(CategoryLegitimate), 0.5, nil
	}

	category := results[0].Metadata["category"]
	return category, float64(results[0].Similarity), nil
}

var _ Classifier = (*SemanticClassifier)(nil)
