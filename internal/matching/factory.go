package matching

import (
	"fmt"
	"sort"
)

// comparers is the closed registry of known index types
var comparers = map[string]func() IndexComparer{
	IndexTypeArcFace50: func() IndexComparer { return ArcFaceComparer{} },
}

// NewComparer returns the comparer for indexType
func NewComparer(indexType string) (IndexComparer, error) {
	ctor, ok := comparers[indexType]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIndexType, indexType)
	}
	return ctor(), nil
}

// SupportedIndexTypes lists the registered tags in sorted order
func SupportedIndexTypes() []string {
	types := make([]string, 0, len(comparers))
	for t := range comparers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
