package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/TrapWireAI/lurebox/pkg/archive"
	"github.com/TrapWireAI/lurebox/pkg/config"
	"github.com/TrapWireAI/lurebox/pkg/detect"
	"github.com/TrapWireAI/lurebox/pkg/dialog"
	"github.com/TrapWireAI/lurebox/pkg/intel"
	"github.com/TrapWireAI/lurebox/pkg/llm"
	"github.com/TrapWireAI/lurebox/pkg/logger"
)

const Version = "0.1.0"

// Pipeline wires the detection, extraction, and dialogue components.
// Model-backed components are optional and degrade gracefully when their
// backends are unavailable.
type Pipeline struct {
	detector  *detect.Detector
	extractor *intel.Extractor
	engine    *dialog.Engine
	archive   *archive.Archive // nil when no database configured
	config    *config.Config
	log       *logger.Logger
}

// ProcessRequest is one inbound scammer message plus optional context.
type ProcessRequest struct {
	ConversationID string   `json:"conversation_id"`
	Message        string   `json:"message"`
	History        []string `json:"history"`
}

// ProcessResponse is the full outcome of one pipeline pass.
type ProcessResponse struct {
	ConversationID string                    `json:"conversation_id"`
	IsScam         bool                      `json:"is_scam"`
	Confidence     float64                   `json:"confidence"`
	Category       string                    `json:"category"`
	Reply          string                    `json:"reply"`
	Persona        string                    `json:"persona,omitempty"`
	ShouldContinue bool                      `json:"should_continue"`
	Intelligence   *intel.Snapshot           `json:"intelligence,omitempty"`
	Metrics        *dialog.EngagementMetrics `json:"metrics,omitempty"`
	LatencyMs      float64                   `json:"latency_ms"`
}

// NewPipeline assembles the engine from configuration. Every model-backed
// capability is optional; pattern detection and canned fallbacks keep the
// pipeline functional with nothing but the binary.
func NewPipeline(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Pipeline, error) {
	var client *llm.Client
	if cfg.LLMProvider != config.ProviderNone {
		client = llm.NewClient(llm.ClientConfig{
			Provider:      llm.Provider(cfg.LLMProvider),
			APIKey:        cfg.LLMAPIKey,
			Model:         cfg.LLMModel,
			FallbackModel: cfg.LLMFallbackModel,
			BaseURL:       cfg.LLMBaseURL,
			Timeout:       cfg.LLMTimeout(),
			MaxConcurrent: cfg.LLMMaxConcurrent,
		}, log)
		log.Info().Str("provider", string(cfg.LLMProvider)).Str("model", cfg.LLMModel).
			Msg("✓ generative model enabled")
	} else {
		log.Info().Msg("○ generative model disabled (provider: none)")
	}

	classifier := pickClassifier(ctx, cfg, client, log)

	detector := detect.NewDetector(classifier, detect.Options{
		PatternTrustThreshold: cfg.PatternTrustThreshold,
		ConfidenceThreshold:   cfg.ConfidenceThreshold,
	}, log)

	var modelExtractor intel.StructuredExtractor
	if cfg.EnableModelExtraction && client != nil {
		modelExtractor = client
	}
	extractor := intel.NewExtractor(modelExtractor, log)

	store, err := pickStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	var gen dialog.Generator
	if client != nil {
		gen = client
	} else {
		gen = unavailableGenerator{}
	}
	engine := dialog.NewEngine(store, gen, dialog.Options{
		MaxTurns:            cfg.MaxConversationTurns,
		MinTurnsBeforeClose: cfg.MinTurnsBeforeClose,
	}, log)

	var arch *archive.Archive
	if cfg.DatabaseURL != "" {
		arch, err = archive.New(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("○ intelligence archive disabled (database unreachable)")
			arch = nil
		} else if err := arch.EnsureSchema(ctx); err != nil {
			log.Warn().Err(err).Msg("○ intelligence archive disabled (schema setup failed)")
			arch.Close()
			arch = nil
		} else {
			log.Info().Msg("✓ intelligence archive enabled (postgres)")
		}
	} else {
		log.Info().Msg("○ intelligence archive disabled (no database configured)")
	}

	return &Pipeline{
		detector:  detector,
		extractor: extractor,
		engine:    engine,
		archive:   arch,
		config:    cfg,
		log:       log,
	}, nil
}

// pickClassifier chooses the best available model classifier: a local ONNX
// model first, then Ollama embedding similarity, then the remote chat model.
func pickClassifier(ctx context.Context, cfg *config.Config, client *llm.Client, log *logger.Logger) detect.Classifier {
	if !cfg.EnableModelClassifier {
		log.Info().Msg("○ model classification disabled (pattern-only)")
		return nil
	}

	if hc := detect.NewAutoDetectedHugotClassifier(log); hc != nil && hc.IsReady() {
		log.Info().Msg("✓ model classification enabled (local ONNX)")
		return hc
	}

	if cfg.LLMProvider == config.ProviderOllama {
		ollamaURL := strings.TrimSuffix(cfg.LLMBaseURL, "/v1")
		if ollamaURL == "" {
			ollamaURL = "http://localhost:11434"
		}
		sc, err := detect.NewSemanticClassifier(ollamaURL)
		if err == nil {
			loadCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
			err = sc.LoadExemplars(loadCtx)
			cancel()
			if err == nil {
				log.Info().Msg("✓ model classification enabled (embedding similarity)")
				return sc
			}
		}
		log.Warn().Err(err).Msg("embedding classifier unavailable")
	}

	if client != nil {
		log.Info().Msg("✓ model classification enabled (chat model)")
		return client
	}

	log.Info().Msg("○ model classification disabled (no backend available)")
	return nil
}

func pickStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (dialog.Store, error) {
	if cfg.RedisAddr == "" {
		log.Info().Msg("✓ conversation store: in-memory")
		return dialog.NewMemoryStore(), nil
	}
	store, err := dialog.NewRedisStore(ctx, dialog.RedisStoreConfig{
		Addr:      cfg.RedisAddr,
		Password:  cfg.RedisPassword,
		DB:        cfg.RedisDB,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("redis conversation store: %w", err)
	}
	log.Info().Str("addr", cfg.RedisAddr).Msg("✓ conversation store: redis")
	return store, nil
}

// unavailableGenerator makes the dialogue engine fall back to canned
// persona phrases when no generative model is configured.
type unavailableGenerator struct{}

func (unavailableGenerator) Generate(context.Context, string, string, float64, int) (string, error) {
	return "", llm.ErrUnavailable
}

// EngagementMetrics reports the engagement counters for a conversation.
// An unknown conversation reports zero turns and zero duration rather than
// an error, so operators can poll ids that have not engaged yet.
func (p *Pipeline) EngagementMetrics(ctx context.Context, conversationID string) (dialog.EngagementMetrics, error) {
	state, err := p.engine.State(ctx, conversationID)
	if err != nil {
		return dialog.EngagementMetrics{}, err
	}
	if state == nil {
		return dialog.NewState(conversationID).Metrics(), nil
	}
	return state.Metrics(), nil
}

// Process runs one message through detect, extract, merge, and respond.
func (p *Pipeline) Process(ctx context.Context, req ProcessRequest) (*ProcessResponse, error) {
	start := time.Now()

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	result := p.detector.DetectScam(ctx, req.Message, req.History)

	resp := &ProcessResponse{
		ConversationID: conversationID,
		IsScam:         result.IsScam,
		Confidence:     result.Confidence,
		Category:       string(result.Category),
	}

	if p.archive != nil {
		if err := p.archive.SaveDetection(ctx, conversationID, req.Message, result); err != nil {
			p.log.Warn().Err(err).Msg("archive detection failed")
		}
	}

	// A conversation already engaged stays engaged even if a single later
	// message looks clean; otherwise non-scam traffic gets a short decline
	// and no state.
	state, err := p.engine.State(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if !result.IsScam && state == nil {
		resp.Reply = dialog.PoliteDecline
		resp.ShouldContinue = false
		resp.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
		return resp, nil
	}

	extracted := p.extractor.Extract(ctx, req.Message, req.History)

	reply, state, err := p.engine.Respond(ctx, conversationID, req.Message, req.History, string(result.Category), extracted)
	if err != nil {
		return nil, err
	}

	if p.archive != nil {
		if err := p.archive.SaveSnapshot(ctx, conversationID, state.Intelligence); err != nil {
			p.log.Warn().Err(err).Msg("archive snapshot failed")
		}
	}

	metrics := state.Metrics()
	resp.Reply = reply
	resp.Persona = string(state.Persona)
	resp.ShouldContinue = p.engine.ShouldContinue(state)
	resp.Intelligence = state.Intelligence
	resp.Metrics = &metrics
	resp.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	return resp, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg := config.NewDefaultConfig()
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	switch os.Args[1] {
	case "serve":
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("invalid configuration")
		}
		runServer(cfg, log)
	case "detect":
		if len(os.Args) < 3 {
			fmt.Println("Usage: lurebox detect <text>")
			os.Exit(1)
		}
		runCLIDetect(cfg, log, strings.Join(os.Args[2:], " "))
	case "version":
		fmt.Printf("lurebox v%s\n", Version)
		fmt.Println("Scam honeypot conversation engine")
	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf("lurebox v%s - scam honeypot conversation engine\n\n", Version)
	fmt.Println("Usage:")
	fmt.Println("  lurebox serve            Start the HTTP service")
	fmt.Println("  lurebox detect <text>    Classify a single message")
	fmt.Println("  lurebox version          Show version")
	fmt.Println("")
	fmt.Println("Environment Variables:")
	fmt.Println("  LUREBOX_LLM_PROVIDER     ollama, openrouter, groq, custom, none")
	fmt.Println("  LUREBOX_LLM_API_KEY      API key for the model provider")
	fmt.Println("  LUREBOX_API_KEY          Require X-API-Key on the HTTP surface")
	fmt.Println("  LUREBOX_REDIS_ADDR       Redis address for shared conversation state")
	fmt.Println("  LUREBOX_DATABASE_URL     Postgres URL for the intelligence archive")
	fmt.Println("  LUREBOX_MODEL_PATH       Path to a local ONNX classifier")
}

func runServer(cfg *config.Config, log *logger.Logger) {
	ctx := context.Background()

	pipeline, err := NewPipeline(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline initialization failed")
	}

	app := fiber.New(fiber.Config{
		AppName: "lurebox",
	})

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "version": Version})
	})

	api := app.Group("/v1", apiKeyMiddleware(cfg.APIKey))

	api.Post("/conversations/process", func(c fiber.Ctx) error {
		var req ProcessRequest
		if err := c.Bind().Body(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid request"})
		}
		if req.Message == "" {
			return c.Status(400).JSON(fiber.Map{"error": "message field is required"})
		}

		resp, err := pipeline.Process(c.Context(), req)
		if err != nil {
			log.Error().Err(err).Msg("process failed")
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		return c.JSON(resp)
	})

	api.Get("/conversations/:id/metrics", func(c fiber.Ctx) error {
		metrics, err := pipeline.EngagementMetrics(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		return c.JSON(metrics)
	})

	api.Get("/conversations/:id/intelligence", func(c fiber.Ctx) error {
		state, err := pipeline.engine.State(c.Context(), c.Params("id"))
		if err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		if state == nil {
			return c.Status(404).JSON(fiber.Map{"error": "conversation not found"})
		}
		return c.JSON(state.Intelligence)
	})

	api.Post("/conversations/:id/reset", func(c fiber.Ctx) error {
		if err := pipeline.engine.Reset(c.Context(), c.Params("id")); err != nil {
			return c.Status(500).JSON(fiber.Map{"error": "internal error"})
		}
		return c.JSON(fiber.Map{"status": "reset"})
	})

	log.Info().Str("addr", cfg.ListenAddr).Msg("lurebox HTTP service starting")
	if err := app.Listen(cfg.ListenAddr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// apiKeyMiddleware rejects requests without the configured key. An empty
// key leaves the surface open, which Validate warns about outside production.
func apiKeyMiddleware(key string) fiber.Handler {
	return func(c fiber.Ctx) error {
		if key != "" && c.Get("X-API-Key") != key {
			return c.Status(401).JSON(fiber.Map{"error": "unauthorized"})
		}
		return c.Next()
	}
}

func runCLIDetect(cfg *config.Config, log *logger.Logger, text string) {
	ctx := context.Background()

	pipeline, err := NewPipeline(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline initialization failed")
	}

	result := pipeline.detector.DetectScam(ctx, text, nil)
	snapshot := pipeline.extractor.Extract(ctx, text, nil)

	out, _ := json.MarshalIndent(fiber.Map{
		"detection":    result,
		"intelligence": snapshot,
	}, "", "  ")
	fmt.Println(string(out))
}
