package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundingBox(t *testing.T) {
	b, err := NewBoundingBox([]float64{30, -25, 72, 45})
	require.NoError(t, err)
	assert.Equal(t, BoundingBox{SouthWestLat: 30, SouthWestLon: -25, NorthEastLat: 72, NorthEastLon: 45}, b)
}

func TestNewBoundingBox_WrongArity(t *testing.T) {
	_, err := NewBoundingBox([]float64{1, 2, 3})
	assert.Error(t, err)
}

func TestBoundingBox_ContainsEdges(t *testing.T) {
	b := BoundingBox{SouthWestLat: 0, SouthWestLon: 0, NorthEastLat: 1, NorthEastLon: 1}
	assert.True(t, b.Contains(0, 0))
	assert.True(t, b.Contains(1, 1))
	assert.True(t, b.Contains(0.5, 0.5))
	assert.False(t, b.Contains(1.0001, 0.5))
	assert.False(t, b.Contains(0.5, -0.0001))
}

func TestBoundingBox_Empty(t *testing.T) {
	assert.False(t, BoundingBox{SouthWestLat: 0, SouthWestLon: 0, NorthEastLat: 0, NorthEastLon: 0}.Empty())
	assert.True(t, BoundingBox{SouthWestLat: 2, SouthWestLon: 0, NorthEastLat: 1, NorthEastLon: 1}.Empty())
	assert.True(t, BoundingBox{SouthWestLat: 0, SouthWestLon: 170, NorthEastLat: 1, NorthEastLon: -170}.Empty())
}
