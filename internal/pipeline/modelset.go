package pipeline

import (
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
)

var (
	// ErrIncompleteModelSet is returned when a role is missing at assembly
	ErrIncompleteModelSet = errors.New("incomplete model set")
	// ErrReleased is returned by any call made after the models were released
	ErrReleased = errors.New("model set already released")
)

// ModelSet bundles one instance per capability role. It is read-only after
// construction; Close is the only mutating event and must not overlap with
// processing calls.
type ModelSet struct {
	detector     FaceDetector
	filter       FaceFilter
	landmarks    LandmarkDetector
	normalizer   FaceNormalizer
	indexer      FaceIndexer
	genderAge    GenderAgeClassifier
	maskClassify MaskClassifier

	released atomic.Bool
}

// NewModelSet validates that every role is present
func NewModelSet(
	detector FaceDetector,
	filter FaceFilter,
	landmarks LandmarkDetector,
	normalizer FaceNormalizer,
	indexer FaceIndexer,
	genderAge GenderAgeClassifier,
	mask MaskClassifier,
) (*ModelSet, error) {
	roles := []struct {
		name string
		v    any
	}{
		{"face detector", detector},
		{"face filter", filter},
		{"landmark detector", landmarks},
		{"face normalizer", normalizer},
		{"face indexer", indexer},
		{"gender/age classifier", genderAge},
		{"mask classifier", mask},
	}
	for _, r := range roles {
		if isNil(r.v) {
			return nil, fmt.Errorf("%w: missing %s", ErrIncompleteModelSet, r.name)
		}
	}

	return &ModelSet{
		detector:     detector,
		filter:       filter,
		landmarks:    landmarks,
		normalizer:   normalizer,
		indexer:      indexer,
		genderAge:    genderAge,
		maskClassify: mask,
	}, nil
}

func (m *ModelSet) FaceDetector() FaceDetector               { return m.detector }
func (m *ModelSet) FaceFilter() FaceFilter                   { return m.filter }
func (m *ModelSet) LandmarkDetector() LandmarkDetector       { return m.landmarks }
func (m *ModelSet) FaceNormalizer() FaceNormalizer           { return m.normalizer }
func (m *ModelSet) FaceIndexer() FaceIndexer                 { return m.indexer }
func (m *ModelSet) GenderAgeClassifier() GenderAgeClassifier { return m.genderAge }
func (m *ModelSet) MaskClassifier() MaskClassifier           { return m.maskClassify }

// Released reports whether Close has been called
func (m *ModelSet) Released() bool {
	return m.released.Load()
}

// Close releases every role exactly once. An instance serving several
// roles is closed once. All roles are attempted even if one fails.
func (m *ModelSet) Close() error {
	if !m.released.CompareAndSwap(false, true) {
		return ErrReleased
	}

	closers := []struct {
		name string
		c    interface{ Close() error }
	}{
		{"face detector", m.detector},
		{"face filter", m.filter},
		{"landmark detector", m.landmarks},
		{"face normalizer", m.normalizer},
		{"face indexer", m.indexer},
		{"gender/age classifier", m.genderAge},
		{"mask classifier", m.maskClassify},
	}

	var errs []error
	var closed []any
	for _, c := range closers {
		if containsInstance(closed, c.c) {
			continue
		}
		closed = append(closed, c.c)
		if err := c.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("cleanup errors: %w", errors.Join(errs...))
	}
	return nil
}

func containsInstance(seen []any, v any) bool {
	t := reflect.TypeOf(v)
	if t == nil || !t.Comparable() {
		return false
	}
	for _, s := range seen {
		if reflect.TypeOf(s) == t && s == v {
			return true
		}
	}
	return false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
