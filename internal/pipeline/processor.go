package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/logging"
)

// ErrStageContract is returned when a capability breaks the count or
// version guarantees the pipeline relies on.
var ErrStageContract = errors.New("stage contract violated")

// Config holds processor configuration
type Config struct {
	// Workers bounds how many aligned faces are described concurrently.
	// Zero or negative means no bound.
	Workers int
}

// timing holds per-stage durations of one GetFaces call
type timing struct {
	Detection     time.Duration
	Filtering     time.Duration
	Landmarks     time.Duration
	Normalization time.Duration
	Description   time.Duration
	Total         time.Duration
}

// FaceProcessor turns images into face records using a shared ModelSet.
// It keeps no per-call state, so GetFaces may run concurrently.
type FaceProcessor struct {
	log    logrus.FieldLogger
	models *ModelSet
	config Config
}

// NewFaceProcessor creates a processor over models
func NewFaceProcessor(log logrus.FieldLogger, models *ModelSet, config Config) (*FaceProcessor, error) {
	log = logging.OrDiscard(log)
	if models == nil {
		return nil, fmt.Errorf("%w: nil model set", ErrIncompleteModelSet)
	}
	if models.Released() {
		return nil, ErrReleased
	}

	log.WithField("index_type", models.FaceIndexer().IndexType()).Info("Creating face processor")

	return &FaceProcessor{
		log:    log,
		models: models,
		config: config,
	}, nil
}

// IndexType returns the version tag of the embeddings this processor emits
func (p *FaceProcessor) IndexType() string {
	return p.models.FaceIndexer().IndexType()
}

// GetFaces runs detect -> filter -> landmarks -> normalize, then describes
// every aligned crop. Output order follows the filtered region order. An
// image without faces yields an empty slice and no error. Any capability
// failure aborts the whole call.
func (p *FaceProcessor) GetFaces(ctx context.Context, img face.Image) ([]face.Info, error) {
	if p.models.Released() {
		return nil, ErrReleased
	}

	totalStart := time.Now()
	var took timing

	// Detect faces
	start := time.Now()
	detected, err := p.models.FaceDetector().Detect(img)
	took.Detection = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("detect: %w", err)
	}
	if len(detected) == 0 {
		p.log.Debug("No faces detected")
		return []face.Info{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Filter
	start = time.Now()
	filtered, err := p.models.FaceFilter().Filter(img, detected)
	took.Filtering = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	if len(filtered) > len(detected) {
		return nil, fmt.Errorf("%w: filter returned %d regions from %d", ErrStageContract, len(filtered), len(detected))
	}
	if len(filtered) == 0 {
		p.log.WithField("detected", len(detected)).Debug("All detections filtered out")
		return []face.Info{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Landmarks
	start = time.Now()
	landmarks, err := p.models.LandmarkDetector().Detect(img, filtered)
	took.Landmarks = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("landmarks: %w", err)
	}
	if len(landmarks) != len(filtered) {
		return nil, fmt.Errorf("%w: %d landmark sets for %d regions", ErrStageContract, len(landmarks), len(filtered))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Normalize
	start = time.Now()
	aligned, err := p.models.FaceNormalizer().Normalize(img, filtered, landmarks)
	took.Normalization = time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	if len(aligned) != len(filtered) {
		return nil, fmt.Errorf("%w: %d aligned faces for %d regions", ErrStageContract, len(aligned), len(filtered))
	}

	// Describe each aligned face
	start = time.Now()
	results, err := p.describeAll(ctx, aligned)
	took.Description = time.Since(start)
	if err != nil {
		return nil, err
	}

	took.Total = time.Since(totalStart)
	p.log.WithFields(logrus.Fields{
		"detected":     len(detected),
		"filtered":     len(filtered),
		"faces":        len(results),
		"detect_ms":    took.Detection.Milliseconds(),
		"filter_ms":    took.Filtering.Milliseconds(),
		"landmarks_ms": took.Landmarks.Milliseconds(),
		"normalize_ms": took.Normalization.Milliseconds(),
		"describe_ms":  took.Description.Milliseconds(),
		"total_ms":     took.Total.Milliseconds(),
	}).Debug("Extracted faces")

	return results, nil
}

// describeAll fans out over the aligned crops; results keep crop order.
func (p *FaceProcessor) describeAll(ctx context.Context, aligned []face.Image) ([]face.Info, error) {
	results := make([]face.Info, len(aligned))

	g, gctx := errgroup.WithContext(ctx)
	if p.config.Workers > 0 {
		g.SetLimit(p.config.Workers)
	}
	for i, crop := range aligned {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			info, err := p.describe(crop)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			results[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// describe runs the three independent per-face capabilities concurrently
func (p *FaceProcessor) describe(crop face.Image) (face.Info, error) {
	var (
		index face.FaceIndex
		mask  face.MaskStatus
		attrs face.Attributes
	)

	var g errgroup.Group
	g.Go(func() error {
		var err error
		index, err = p.models.FaceIndexer().Index(crop)
		if err != nil {
			return fmt.Errorf("index: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		mask, err = p.models.MaskClassifier().Classify(crop)
		if err != nil {
			return fmt.Errorf("mask: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		attrs, err = p.models.GenderAgeClassifier().Classify(crop)
		if err != nil {
			return fmt.Errorf("gender/age: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return face.Info{}, err
	}

	if index.Empty() {
		return face.Info{}, fmt.Errorf("%w: empty face index", ErrStageContract)
	}
	if want := p.IndexType(); index.Version() != want {
		return face.Info{}, fmt.Errorf("%w: indexer produced %q, declared %q", ErrStageContract, index.Version(), want)
	}

	return face.Info{
		FaceImage: crop,
		Index:     index,
		Mask:      mask,
		Gender:    attrs.Gender,
		Age:       attrs.Age,
	}, nil
}

// Close releases every model. Calls made after Close fail with ErrReleased.
func (p *FaceProcessor) Close() error {
	return p.models.Close()
}
