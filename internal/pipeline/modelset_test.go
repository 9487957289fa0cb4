package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewModelSet_RejectsMissingRoles(t *testing.T) {
	s := newFakeSet()

	_, err := NewModelSet(nil, s.filter, s.landmarks, s.normalizer, s.indexer, s.genderAge, s.mask)
	assert.ErrorIs(t, err, ErrIncompleteModelSet)

	var typedNil *fakeMask
	_, err = NewModelSet(s.detector, s.filter, s.landmarks, s.normalizer, s.indexer, s.genderAge, typedNil)
	assert.ErrorIs(t, err, ErrIncompleteModelSet)
	assert.Contains(t, err.Error(), "mask classifier")
}

func TestModelSet_Accessors(t *testing.T) {
	s := newFakeSet()
	m, err := s.modelSet()
	require.NoError(t, err)

	assert.Same(t, s.detector, m.FaceDetector())
	assert.Same(t, s.filter, m.FaceFilter())
	assert.Same(t, s.landmarks, m.LandmarkDetector())
	assert.Same(t, s.normalizer, m.FaceNormalizer())
	assert.Same(t, s.indexer, m.FaceIndexer())
	assert.Same(t, s.genderAge, m.GenderAgeClassifier())
	assert.Same(t, s.mask, m.MaskClassifier())
	assert.False(t, m.Released())
}

func TestModelSet_CloseContinuesAfterFailure(t *testing.T) {
	s := newFakeSet()
	s.detector.closeCounter.err = errors.New("detector busy")
	s.mask.closeCounter.err = errors.New("mask busy")
	m, err := s.modelSet()
	require.NoError(t, err)

	err = m.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "face detector: detector busy")
	assert.Contains(t, err.Error(), "mask classifier: mask busy")
	assert.Equal(t, []int32{1, 1, 1, 1, 1, 1, 1}, s.closeCounts())
	assert.True(t, m.Released())
}

func TestModelSet_SharedInstanceClosedOnce(t *testing.T) {
	s := newFakeSet()
	shared := &sharedModel{}

	m, err := NewModelSet(s.detector, shared, s.landmarks, shared, s.indexer, s.genderAge, s.mask)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.Equal(t, int32(1), shared.closed.Load())
	assert.Equal(t, int32(1), s.detector.closed.Load())
}
