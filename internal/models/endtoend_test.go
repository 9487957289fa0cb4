package models

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facerec/internal/align"
	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/imageio"
	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/logging"
	"github.com/dudu/facerec/internal/matching"
	"github.com/dudu/facerec/internal/pipeline"
)

// TestModelSetEndToEnd runs the bundled models on real photos. It needs
// FACEREC_MODELS_DIR with the model bundle and FACEREC_TEST_IMAGES holding
// 1_0.png and 1_1.png (one person) and 2_0.png (someone else), each with a
// single frontal face. FACEREC_ORT_LIBRARY points at the runtime library
// when it is not on the default search path.
func TestModelSetEndToEnd(t *testing.T) {
	modelsDir := os.Getenv("FACEREC_MODELS_DIR")
	imagesDir := os.Getenv("FACEREC_TEST_IMAGES")
	if modelsDir == "" || imagesDir == "" {
		t.Skip("FACEREC_MODELS_DIR and FACEREC_TEST_IMAGES are not set")
	}
	if err := inference.Initialize(os.Getenv("FACEREC_ORT_LIBRARY")); err != nil {
		t.Skipf("ONNX Runtime unavailable: %v", err)
	}
	t.Cleanup(func() { _ = inference.Shutdown() })

	log := logging.Discard()
	set, err := CreateModelSet(log, DiskLoader{Root: modelsDir}, DefaultConfig())
	require.NoError(t, err)

	processor, err := pipeline.NewFaceProcessor(log, set, pipeline.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, processor.Close()) })

	comparer, err := matching.NewComparer(processor.IndexType())
	require.NoError(t, err)
	indexes, err := matching.NewIndexProcessor(log, comparer)
	require.NoError(t, err)

	onlyFace := func(name string) face.Info {
		t.Helper()
		img, err := imageio.Open(filepath.Join(imagesDir, name))
		require.NoError(t, err)
		faces, err := processor.GetFaces(context.Background(), img)
		require.NoError(t, err)
		require.Len(t, faces, 1, name)
		return faces[0]
	}

	first := onlyFace("1_0.png")
	second := onlyFace("1_1.png")
	other := onlyFace("2_0.png")

	assert.Equal(t, align.ArcFaceSize, first.FaceImage.Width())
	assert.Equal(t, align.ArcFaceSize, first.FaceImage.Height())
	assert.Equal(t, matching.IndexTypeArcFace50, first.Index.Version())

	self, err := indexes.MatchOneToOne(first.Index, first.Index)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, self, 1e-4)

	same, err := indexes.MatchOneToOne(first.Index, second.Index)
	require.NoError(t, err)
	assert.Greater(t, same, float32(0.7))

	different, err := indexes.MatchOneToOne(first.Index, other.Index)
	require.NoError(t, err)
	assert.Less(t, different, float32(0.7))
}
