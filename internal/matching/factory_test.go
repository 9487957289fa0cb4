package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewComparer(t *testing.T) {
	c, err := NewComparer("arc50_1")
	require.NoError(t, err)
	assert.Equal(t, IndexTypeArcFace50, c.IndexType())
	assert.IsType(t, ArcFaceComparer{}, c)
}

func TestNewComparer_Unsupported(t *testing.T) {
	for _, tag := range []string{"unknown_tag", "", "ARC50_1", "arc50_2"} {
		c, err := NewComparer(tag)
		assert.ErrorIs(t, err, ErrUnsupportedIndexType, tag)
		assert.Nil(t, c)
	}
}

func TestSupportedIndexTypes(t *testing.T) {
	assert.Equal(t, []string{"arc50_1"}, SupportedIndexTypes())
}
