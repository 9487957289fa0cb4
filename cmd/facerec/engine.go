package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/imageio"
	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/matching"
	"github.com/dudu/facerec/internal/models"
	"github.com/dudu/facerec/internal/pipeline"
)

// engine bundles the processors a command needs for one run
type engine struct {
	models *pipeline.ModelSet
	faces  *pipeline.FaceProcessor
	index  *matching.IndexProcessor
}

func openEngine() (*engine, error) {
	if err := inference.Initialize(cfg.ORTLibrary); err != nil {
		return nil, err
	}

	log.WithField("dir", cfg.ModelsDir).Info("Loading models...")
	ms, err := models.CreateModelSet(log, models.DiskLoader{Root: cfg.ModelsDir}, cfg.ModelConfig())
	if err != nil {
		return nil, errors.Join(err, inference.Shutdown())
	}

	e := &engine{models: ms}
	if err := e.init(); err != nil {
		return nil, errors.Join(err, ms.Close(), inference.Shutdown())
	}
	return e, nil
}

func (e *engine) init() error {
	indexType := e.models.FaceIndexer().IndexType()
	if indexType != cfg.IndexType {
		return fmt.Errorf("models produce %q indexes, configuration expects %q", indexType, cfg.IndexType)
	}

	var err error
	e.faces, err = pipeline.NewFaceProcessor(log, e.models, cfg.PipelineConfig())
	if err != nil {
		return err
	}

	comparer, err := matching.NewComparer(indexType)
	if err != nil {
		return err
	}
	e.index, err = matching.NewIndexProcessor(log, comparer)
	return err
}

// facesIn opens path and extracts every face in it
func (e *engine) facesIn(ctx context.Context, path string) (face.Image, []face.Info, error) {
	img, err := imageio.Open(path)
	if err != nil {
		return face.Image{}, nil, err
	}
	infos, err := e.faces.GetFaces(ctx, img)
	if err != nil {
		return face.Image{}, nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, infos, nil
}

// regions repeats detection and filtering so callers can draw the boxes that
// GetFaces described. The order matches the GetFaces output.
func (e *engine) regions(img face.Image) ([]face.RelRect, error) {
	detected, err := e.models.FaceDetector().Detect(img)
	if err != nil {
		return nil, err
	}
	return e.models.FaceFilter().Filter(img, detected)
}

func (e *engine) Close() error {
	return errors.Join(e.faces.Close(), inference.Shutdown())
}
