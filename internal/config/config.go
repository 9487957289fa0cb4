// Package config loads runtime settings from defaults, an optional YAML
// file and FACEREC_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dudu/facerec/internal/classifier"
	"github.com/dudu/facerec/internal/detector"
	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/matching"
	"github.com/dudu/facerec/internal/models"
	"github.com/dudu/facerec/internal/pipeline"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	ModelsDir      string          `yaml:"models_dir"`
	ORTLibrary     string          `yaml:"ort_library"`
	IndexType      string          `yaml:"index_type"`
	MatchThreshold float32         `yaml:"match_threshold"`
	Threads        int             `yaml:"threads"`
	CoreML         bool            `yaml:"coreml"`
	Workers        int             `yaml:"workers"`
	MaskConfidence float32         `yaml:"mask_confidence"`
	Models         models.Paths    `yaml:"models"`
	Detection      DetectionConfig `yaml:"detection"`
	Filter         FilterConfig    `yaml:"filter"`
	Log            LogConfig       `yaml:"log"`
}

type DetectionConfig struct {
	InputSize      int     `yaml:"input_size"`
	ScoreThreshold float32 `yaml:"score_threshold"`
	NMSThreshold   float32 `yaml:"nms_threshold"`
}

type FilterConfig struct {
	MinSize   float32 `yaml:"min_size"`
	MinAspect float32 `yaml:"min_aspect"`
	MaxAspect float32 `yaml:"max_aspect"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the settings of the bundled model set
func Default() *Config {
	det := detector.DefaultRetinaFaceConfig()
	filter := detector.DefaultGeometryFilter()

	return &Config{
		ModelsDir:      "models",
		IndexType:      matching.IndexTypeArcFace50,
		MatchThreshold: 0.7,
		MaskConfidence: classifier.DefaultMaskConfidence,
		Models:         models.DefaultPaths(),
		Detection: DetectionConfig{
			InputSize:      det.InputSize,
			ScoreThreshold: det.ScoreThreshold,
			NMSThreshold:   det.NMSThreshold,
		},
		Filter: FilterConfig{
			MinSize:   filter.MinSize,
			MinAspect: filter.MinAspect,
			MaxAspect: filter.MaxAspect,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// applied first when present; path may be empty.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.ModelsDir = envString("FACEREC_MODELS_DIR", c.ModelsDir)
	c.ORTLibrary = envString("FACEREC_ORT_LIBRARY", c.ORTLibrary)
	c.IndexType = envString("FACEREC_INDEX_TYPE", c.IndexType)
	c.MatchThreshold = envFloat("FACEREC_MATCH_THRESHOLD", c.MatchThreshold)
	c.Detection.ScoreThreshold = envFloat("FACEREC_DETECTION_THRESHOLD", c.Detection.ScoreThreshold)
	c.Detection.NMSThreshold = envFloat("FACEREC_NMS_THRESHOLD", c.Detection.NMSThreshold)
	c.Threads = envInt("FACEREC_THREADS", c.Threads)
	c.CoreML = envBool("FACEREC_COREML", c.CoreML)
	c.Log.Level = envString("FACEREC_LOG_LEVEL", c.Log.Level)
	c.Log.Format = envString("FACEREC_LOG_FORMAT", c.Log.Format)
}

// Validate checks ranges and that the index type is registered
func (c *Config) Validate() error {
	switch {
	case c.ModelsDir == "":
		return fmt.Errorf("%w: models_dir is empty", ErrInvalid)
	case !slices.Contains(matching.SupportedIndexTypes(), c.IndexType):
		return fmt.Errorf("%w: unsupported index type %q", ErrInvalid, c.IndexType)
	case c.MatchThreshold < -1 || c.MatchThreshold > 1:
		return fmt.Errorf("%w: match_threshold %v outside [-1, 1]", ErrInvalid, c.MatchThreshold)
	case c.Detection.InputSize <= 0 || c.Detection.InputSize%32 != 0:
		return fmt.Errorf("%w: detection input_size %d must be a positive multiple of 32", ErrInvalid, c.Detection.InputSize)
	case !unit(c.Detection.ScoreThreshold):
		return fmt.Errorf("%w: detection score_threshold %v outside [0, 1]", ErrInvalid, c.Detection.ScoreThreshold)
	case !unit(c.Detection.NMSThreshold):
		return fmt.Errorf("%w: detection nms_threshold %v outside [0, 1]", ErrInvalid, c.Detection.NMSThreshold)
	case !unit(c.Filter.MinSize):
		return fmt.Errorf("%w: filter min_size %v outside [0, 1]", ErrInvalid, c.Filter.MinSize)
	case c.Filter.MinAspect <= 0 || c.Filter.MaxAspect < c.Filter.MinAspect:
		return fmt.Errorf("%w: filter aspect range [%v, %v]", ErrInvalid, c.Filter.MinAspect, c.Filter.MaxAspect)
	case c.MaskConfidence < 0.5 || c.MaskConfidence > 1:
		return fmt.Errorf("%w: mask_confidence %v outside [0.5, 1]", ErrInvalid, c.MaskConfidence)
	case c.Threads < 0:
		return fmt.Errorf("%w: threads must not be negative", ErrInvalid)
	}
	return nil
}

// ModelConfig maps the settings onto the model set factory
func (c *Config) ModelConfig() models.Config {
	return models.Config{
		Paths: c.Models,
		Detector: detector.RetinaFaceConfig{
			InputSize:      c.Detection.InputSize,
			ScoreThreshold: c.Detection.ScoreThreshold,
			NMSThreshold:   c.Detection.NMSThreshold,
		},
		Filter: detector.GeometryFilter{
			MinSize:   c.Filter.MinSize,
			MinAspect: c.Filter.MinAspect,
			MaxAspect: c.Filter.MaxAspect,
		},
		MaskConfidence: c.MaskConfidence,
		Inference:      inference.Options{Threads: c.Threads, CoreML: c.CoreML},
	}
}

// PipelineConfig returns the processor settings
func (c *Config) PipelineConfig() pipeline.Config {
	return pipeline.Config{Workers: c.Workers}
}

func unit(v float32) bool {
	return v >= 0 && v <= 1
}

func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 {
		return n
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultVal
}

func envFloat(key string, defaultVal float32) float32 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 32); err == nil {
		return float32(f)
	}
	return defaultVal
}
