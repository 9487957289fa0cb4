package matching

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedIndexType is returned by NewComparer for unknown tags
	ErrUnsupportedIndexType = errors.New("unsupported index type")
	// ErrVersionMismatch is matched by every *VersionMismatchError
	ErrVersionMismatch = errors.New("face index version mismatch")
	// ErrMalformedIndex is returned when vectors cannot be compared
	ErrMalformedIndex = errors.New("malformed face index")
	// ErrInvalidThreshold is returned for a NaN match threshold
	ErrInvalidThreshold = errors.New("invalid match threshold")
)

// VersionMismatchError describes an attempted comparison across embedding
// spaces. Expected is the comparer type when the pair itself agrees.
type VersionMismatchError struct {
	Left     string
	Right    string
	Expected string
}

func (e *VersionMismatchError) Error() string {
	if e.Left != e.Right {
		return fmt.Sprintf("different versions of indexes (%s vs %s) are not comparable", e.Left, e.Right)
	}
	return fmt.Sprintf("invalid version for comparison: %s vs %s", e.Left, e.Expected)
}

func (e *VersionMismatchError) Is(target error) bool {
	return target == ErrVersionMismatch
}
