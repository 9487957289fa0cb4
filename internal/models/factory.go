package models

import (
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/dudu/facerec/internal/align"
	"github.com/dudu/facerec/internal/classifier"
	"github.com/dudu/facerec/internal/detector"
	"github.com/dudu/facerec/internal/encoder"
	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/logging"
	"github.com/dudu/facerec/internal/pipeline"
)

var (
	_ pipeline.FaceDetector        = (*detector.RetinaFace)(nil)
	_ pipeline.FaceFilter          = (*detector.GeometryFilter)(nil)
	_ pipeline.LandmarkDetector    = (*detector.Landmark106)(nil)
	_ pipeline.FaceNormalizer      = (*align.ArcFaceNormalizer)(nil)
	_ pipeline.FaceIndexer         = (*encoder.ArcFace50)(nil)
	_ pipeline.GenderAgeClassifier = (*classifier.GenderAge)(nil)
	_ pipeline.MaskClassifier      = (*classifier.Mask)(nil)
)

// Config selects model files and tunes each model
type Config struct {
	Paths          Paths
	Detector       detector.RetinaFaceConfig
	Filter         detector.GeometryFilter
	MaskConfidence float32
	Inference      inference.Options
}

// DefaultConfig returns the configuration of the published model bundle
func DefaultConfig() Config {
	return Config{
		Paths:          DefaultPaths(),
		Detector:       detector.DefaultRetinaFaceConfig(),
		Filter:         *detector.DefaultGeometryFilter(),
		MaskConfidence: classifier.DefaultMaskConfidence,
	}
}

// constructors builds each weighted role from model bytes
type constructors struct {
	detector  func(data []byte, cfg Config) (pipeline.FaceDetector, error)
	landmarks func(data []byte, cfg Config) (pipeline.LandmarkDetector, error)
	indexer   func(data []byte, cfg Config) (pipeline.FaceIndexer, error)
	genderAge func(data []byte, cfg Config) (pipeline.GenderAgeClassifier, error)
	mask      func(data []byte, cfg Config) (pipeline.MaskClassifier, error)
}

var onnxConstructors = constructors{
	detector: func(data []byte, cfg Config) (pipeline.FaceDetector, error) {
		dc := cfg.Detector
		dc.Inference = cfg.Inference
		return detector.NewRetinaFace(data, dc)
	},
	landmarks: func(data []byte, cfg Config) (pipeline.LandmarkDetector, error) {
		return detector.NewLandmark106(data, cfg.Inference)
	},
	indexer: func(data []byte, cfg Config) (pipeline.FaceIndexer, error) {
		return encoder.NewArcFace50(data, cfg.Inference)
	},
	genderAge: func(data []byte, cfg Config) (pipeline.GenderAgeClassifier, error) {
		return classifier.NewGenderAge(data, cfg.Inference)
	},
	mask: func(data []byte, cfg Config) (pipeline.MaskClassifier, error) {
		return classifier.NewMask(data, cfg.MaskConfidence, cfg.Inference)
	},
}

// CreateModelSet loads every model through loader and assembles a ModelSet.
// ONNX Runtime must be initialized. On failure the models built so far are
// closed.
func CreateModelSet(log logrus.FieldLogger, loader Loader, cfg Config) (*pipeline.ModelSet, error) {
	return create(log, loader, cfg, onnxConstructors)
}

func create(log logrus.FieldLogger, loader Loader, cfg Config, c constructors) (_ *pipeline.ModelSet, err error) {
	log = logging.OrDiscard(log)
	if cfg.Inference.Log == nil {
		cfg.Inference.Log = log
	}

	var built []io.Closer
	defer func() {
		if err == nil {
			return
		}
		var errs []error
		for i := len(built) - 1; i >= 0; i-- {
			if cerr := built[i].Close(); cerr != nil {
				errs = append(errs, cerr)
			}
		}
		if len(errs) > 0 {
			err = fmt.Errorf("%w (cleanup errors: %w)", err, errors.Join(errs...))
		}
	}()

	load := func(role, path string) ([]byte, error) {
		log.WithFields(logrus.Fields{"role": role, "path": path}).Debug("Loading model")
		data, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", role, err)
		}
		return data, nil
	}

	data, err := load("face detector", cfg.Paths.Detector)
	if err != nil {
		return nil, err
	}
	faceDetector, err := c.detector(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("face detector: %w", err)
	}
	built = append(built, faceDetector)

	filter := cfg.Filter
	faceFilter := &filter
	built = append(built, faceFilter)

	data, err = load("landmark detector", cfg.Paths.Landmarks)
	if err != nil {
		return nil, err
	}
	landmarks, err := c.landmarks(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("landmark detector: %w", err)
	}
	built = append(built, landmarks)

	normalizer := align.NewArcFaceNormalizer()
	built = append(built, normalizer)

	data, err = load("face indexer", cfg.Paths.Indexer)
	if err != nil {
		return nil, err
	}
	indexer, err := c.indexer(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("face indexer: %w", err)
	}
	built = append(built, indexer)

	data, err = load("gender/age classifier", cfg.Paths.GenderAge)
	if err != nil {
		return nil, err
	}
	genderAge, err := c.genderAge(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("gender/age classifier: %w", err)
	}
	built = append(built, genderAge)

	data, err = load("mask classifier", cfg.Paths.Mask)
	if err != nil {
		return nil, err
	}
	mask, err := c.mask(data, cfg)
	if err != nil {
		return nil, fmt.Errorf("mask classifier: %w", err)
	}
	built = append(built, mask)

	set, err := pipeline.NewModelSet(faceDetector, faceFilter, landmarks, normalizer, indexer, genderAge, mask)
	if err != nil {
		return nil, err
	}

	log.WithField("index_type", indexer.IndexType()).Info("Model set ready")
	return set, nil
}
