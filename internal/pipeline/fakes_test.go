package pipeline

import (
	"errors"
	"image"
	"image/color"
	"sync/atomic"

	"github.com/dudu/facerec/internal/face"
)

const testIndexType = "test_v1"

// closeCounter records how many times Close was called
type closeCounter struct {
	closed atomic.Int32
	err    error
}

func (c *closeCounter) Close() error {
	c.closed.Add(1)
	return c.err
}

type fakeDetector struct {
	closeCounter
	regions []face.RelRect
	err     error
	calls   atomic.Int32
}

func (d *fakeDetector) Detect(img face.Image) ([]face.RelRect, error) {
	d.calls.Add(1)
	return d.regions, d.err
}

// fakeFilter drops regions narrower than minWidth
type fakeFilter struct {
	closeCounter
	minWidth float32
	extra    bool
	err      error
}

func (f *fakeFilter) Filter(img face.Image, regions []face.RelRect) ([]face.RelRect, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]face.RelRect, 0, len(regions))
	for _, r := range regions {
		if r.Width >= f.minWidth {
			out = append(out, r)
		}
	}
	if f.extra {
		out = append(out, face.RelRect{Width: 1, Height: 1})
	}
	return out, nil
}

// fakeLandmarks stores the region's X in the nose point so the normalizer
// can check pairing.
type fakeLandmarks struct {
	closeCounter
	drop int
	err  error
}

func (l *fakeLandmarks) Detect(img face.Image, regions []face.RelRect) ([]face.Landmarks, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := make([]face.Landmarks, 0, len(regions))
	for _, r := range regions {
		out = append(out, face.Landmarks{CenterNose: face.RelPoint{X: r.X, Y: r.Y}})
	}
	return out[:len(out)-l.drop], nil
}

var errMispaired = errors.New("landmarks do not match region")

// fakeNormalizer encodes the region X (scaled to 0..255) in the red channel
// of a 4x4 crop.
type fakeNormalizer struct {
	closeCounter
	extra int
}

func (n *fakeNormalizer) Normalize(img face.Image, regions []face.RelRect, landmarks []face.Landmarks) ([]face.Image, error) {
	out := make([]face.Image, 0, len(regions)+n.extra)
	for i, r := range regions {
		if landmarks[i].CenterNose.X != r.X {
			return nil, errMispaired
		}
		out = append(out, encodedCrop(r.X))
	}
	for i := 0; i < n.extra; i++ {
		out = append(out, encodedCrop(0))
	}
	return out, nil
}

func encodedCrop(x float32) face.Image {
	pix := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	pix.SetNRGBA(0, 0, color.NRGBA{R: uint8(x * 100), A: 255})
	return face.WrapNRGBA(pix)
}

func decodedX(img face.Image) float32 {
	return float32(img.NRGBA().NRGBAAt(0, 0).R)
}

type fakeIndexer struct {
	closeCounter
	version string
	empty   bool
	err     error
	failAt  float32
}

func (f *fakeIndexer) Index(crop face.Image) (face.FaceIndex, error) {
	x := decodedX(crop)
	if f.err != nil && x == f.failAt {
		return face.FaceIndex{}, f.err
	}
	if f.empty {
		return face.FaceIndex{}, nil
	}
	version := f.version
	if version == "" {
		version = testIndexType
	}
	return face.NewFaceIndex(version, []float32{x, 1}), nil
}

func (f *fakeIndexer) IndexType() string {
	return testIndexType
}

type fakeGenderAge struct {
	closeCounter
	err error
}

func (f *fakeGenderAge) Classify(crop face.Image) (face.Attributes, error) {
	if f.err != nil {
		return face.Attributes{}, f.err
	}
	return face.Attributes{Gender: face.GenderFemale, Age: int(decodedX(crop))}, nil
}

type fakeMask struct {
	closeCounter
	err error
}

func (f *fakeMask) Classify(crop face.Image) (face.MaskStatus, error) {
	if f.err != nil {
		return face.MaskUnknown, f.err
	}
	return face.MaskAbsent, nil
}

// sharedModel serves two roles to check Close deduplication
type sharedModel struct {
	closeCounter
}

func (s *sharedModel) Filter(img face.Image, regions []face.RelRect) ([]face.RelRect, error) {
	return regions, nil
}

func (s *sharedModel) Normalize(img face.Image, regions []face.RelRect, landmarks []face.Landmarks) ([]face.Image, error) {
	out := make([]face.Image, len(regions))
	for i, r := range regions {
		out[i] = encodedCrop(r.X)
	}
	return out, nil
}

type fakeSet struct {
	detector   *fakeDetector
	filter     *fakeFilter
	landmarks  *fakeLandmarks
	normalizer *fakeNormalizer
	indexer    *fakeIndexer
	genderAge  *fakeGenderAge
	mask       *fakeMask
}

func newFakeSet(regions ...face.RelRect) *fakeSet {
	return &fakeSet{
		detector:   &fakeDetector{regions: regions},
		filter:     &fakeFilter{minWidth: 0.05},
		landmarks:  &fakeLandmarks{},
		normalizer: &fakeNormalizer{},
		indexer:    &fakeIndexer{},
		genderAge:  &fakeGenderAge{},
		mask:       &fakeMask{},
	}
}

func (s *fakeSet) modelSet() (*ModelSet, error) {
	return NewModelSet(s.detector, s.filter, s.landmarks, s.normalizer, s.indexer, s.genderAge, s.mask)
}

func (s *fakeSet) closeCounts() []int32 {
	return []int32{
		s.detector.closed.Load(),
		s.filter.closed.Load(),
		s.landmarks.closed.Load(),
		s.normalizer.closed.Load(),
		s.indexer.closed.Load(),
		s.genderAge.closed.Load(),
		s.mask.closed.Load(),
	}
}
