package face

// FaceIndex is an identity embedding tagged with the version of the
// extractor that produced it. It is immutable: constructors and accessors
// copy the vector.
type FaceIndex struct {
	version string
	vector  []float32
}

// NewFaceIndex builds a FaceIndex from a copy of vector.
func NewFaceIndex(version string, vector []float32) FaceIndex {
	v := make([]float32, len(vector))
	copy(v, vector)
	return FaceIndex{version: version, vector: v}
}

// Version returns the index type tag, e.g. "arc50_1".
func (f FaceIndex) Version() string {
	return f.version
}

// Vector returns a copy of the embedding values.
func (f FaceIndex) Vector() []float32 {
	v := make([]float32, len(f.vector))
	copy(v, f.vector)
	return v
}

// Len returns the embedding dimension.
func (f FaceIndex) Len() int {
	return len(f.vector)
}

// At returns the i-th embedding value.
func (f FaceIndex) At(i int) float32 {
	return f.vector[i]
}

// Empty reports whether the index carries no values or no version.
func (f FaceIndex) Empty() bool {
	return f.version == "" || len(f.vector) == 0
}
