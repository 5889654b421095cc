package detect

// hugot.go - local ML-based scam classification using Hugot/ONNX.
//
// This is the fine-tuned-classifier alternative to the prompted generative
// backend: a binary scam/not-scam text-classification model served through
// ONNX Runtime, fully local, no API calls. It gracefully degrades if the
// runtime or model is unavailable - the fusion engine then runs with the
// generative classifier or pattern-only.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/options"
	"github.com/knights-analytics/hugot/pipelines"

	"github.com/TrapWireAI/lurebox/pkg/logger"
)

// HugotClassifier serves a local text-classification model as a Classifier.
type HugotClassifier struct {
	session  *hugot.Session
	pipeline *pipelines.TextClassificationPipeline
	mu       sync.RWMutex
	config   HugotConfig
	ready    bool
	log      *logger.Logger
}

// HugotConfig configures the local classifier.
type HugotConfig struct {
	// ModelPath is the local path to the ONNX model directory.
	// If empty and ModelName is set, the model will be downloaded.
	ModelPath string

	// ModelName is the HuggingFace model name used to download the model
	// when ModelPath is empty.
	ModelName string

	// OnnxLibraryPath is the directory holding libonnxruntime.
	// Empty falls back to the pure Go backend (slower, no dependencies).
	OnnxLibraryPath string

	// UseGPU enables CUDA acceleration if available.
	UseGPU bool

	// DeviceID specifies which GPU to use (default: 0).
	DeviceID int

	// Timeout is the maximum time for a single inference call.
	Timeout time.Duration
}

// DefaultHugotConfig returns the default local-model configuration.
func DefaultHugotConfig() HugotConfig {
	return HugotConfig{
		ModelPath:       "./models/scam-classifier",
		OnnxLibraryPath: defaultOnnxPath(),
		Timeout:         30 * time.Second,
	}
}

// NewAutoDetectedHugotClassifier creates a classifier if a local model is
// present (LUREBOX_MODEL_PATH or the default directory). Returns nil when no
// model can be found - callers treat that as "no local classifier".
func NewAutoDetectedHugotClassifier(log *logger.Logger) *HugotClassifier {
	cfg := DefaultHugotConfig()
	if envPath := os.Getenv("LUREBOX_MODEL_PATH"); envPath != "" {
		cfg.ModelPath = envPath
	}
	if _, err := os.Stat(filepath.Join(cfg.ModelPath, "model.onnx")); err != nil {
		return nil
	}

	classifier, err := NewHugotClassifier(cfg, log)
	if err != nil {
		if log != nil {
			log.Warn().Err(err).Msg("local classifier initialization failed, degrading")
		}
		return nil
	}
	return classifier
}

// NewHugotClassifier creates a classifier with the given configuration.
func NewHugotClassifier(cfg HugotConfig, log *logger.Logger) (*HugotClassifier, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}

	c := &HugotClassifier{
		config: cfg,
		log:    log.WithComponent("hugot"),
	}
	if err := c.initialize(); err != nil {
		return nil, fmt.Errorf("hugot initialization failed: %w", err)
	}
	return c, nil
}

func (c *HugotClassifier) initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	session, err := c.createSession()
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.session = session

	modelPath, err := c.resolveModelPath()
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to resolve model path: %w", err)
	}

	pipeline, err := hugot.NewPipeline(session, hugot.TextClassificationConfig{
		ModelPath: modelPath,
		Name:      "scam-classifier",
	})
	if err != nil {
		_ = c.session.Destroy()
		return fmt.Errorf("failed to create pipeline: %w", err)
	}

	c.pipeline = pipeline
	c.ready = true
	c.log.Info().Str("model", modelPath).Msg("local classifier ready")
	return nil
}

func (c *HugotClassifier) createSession() (*hugot.Session, error) {
	// Try ONNX Runtime backend first (fastest)
	if c.config.OnnxLibraryPath != "" {
		opts := []options.WithOption{
			options.WithOnnxLibraryPath(c.config.OnnxLibraryPath),
		}
		if c.config.UseGPU {
			opts = append(opts, options.WithCuda(map[string]string{
				"device_id": fmt.Sprintf("%d", c.config.DeviceID),
			}))
		}
		session, err := hugot.NewORTSession(opts...)
		if err == nil {
			return session, nil
		}
		c.log.Warn().Err(err).Msg("ONNX Runtime unavailable, falling back to Go backend")
	}

	session, err := hugot.NewGoSession()
	if err != nil {
		return nil, fmt.Errorf("failed to create Go session: %w", err)
	}
	return session, nil
}

func (c *HugotClassifier) resolveModelPath() (string, error) {
	if c.config.ModelPath != "" {
		if _, err := os.Stat(c.config.ModelPath); err == nil {
			return c.config.ModelPath, nil
		}
	}

	if c.config.ModelName == "" {
		return "", fmt.Errorf("no model path or name specified")
	}

	modelsDir := "./models"
	if err := os.MkdirAll(modelsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create models directory: %w", err)
	}

	modelPath, err := hugot.DownloadModel(c.config.ModelName, modelsDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("failed to download model: %w", err)
	}
	return modelPath, nil
}

// IsReady returns true if the classifier is initialized and ready.
func (c *HugotClassifier) IsReady() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// isScamLabel maps model label conventions onto a scam verdict.
// Binary scam classifiers typically emit "scam"/"spam"/"LABEL_1" for the
// positive class.
func isScamLabel(label string) bool {
	switch label {
	case "scam", "SCAM", "spam", "fraud", "LABEL_1":
		return true
	default:
		return false
	}
}

// Classify implements Classifier. The binary model carries no category
// vocabulary of its own, so a positive verdict maps to general_scam and
// the fusion engine refines the label from pattern signals.
func (c *HugotClassifier) Classify(ctx context.Context, text string, categories []string, instructions string) (string, float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.ready || c.pipeline == nil {
		return "", 0, fmt.Errorf("hugot classifier not ready")
	}

	result, err := c.pipeline.RunPipeline([]string{text})
	if err != nil {
		return "", 0, fmt.Errorf("classification failed: %w", err)
	}

	if len(result.ClassificationOutputs) == 0 || len(result.ClassificationOutputs[0]) == 0 {
		return "", 0, fmt.Errorf("no results returned")
	}

	out := result.ClassificationOutputs[0][0]
	if isScamLabel(out.Label) {
		return string(CategoryGeneralScam), float64(out.Score), nil
	}
	return string(CategoryLegitimate), float64(out.Score), nil
}

// Close releases resources held by the classifier.
func (c *HugotClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ready = false
	if c.session != nil {
		if err := c.session.Destroy(); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}
	return nil
}

func defaultOnnxPath() string {
	paths := []string{
		"/usr/lib/libonnxruntime.so",
		"/usr/local/lib/libonnxruntime.so",
		"/opt/homebrew/lib/libonnxruntime.dylib",
		"/usr/local/lib/libonnxruntime.dylib",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return filepath.Dir(p)
		}
	}
	return ""
}

var _ Classifier = (*HugotClassifier)(nil)
