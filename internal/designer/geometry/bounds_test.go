package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"track-designer/internal/designer/models"
)

func TestBounds(t *testing.T) {
	joints := []models.Joint{
		{X: -10, Y: 5},
		{X: 20, Y: -15},
		{X: 0, Y: 40},
	}

	box := Bounds(joints, 2)
	assert.Equal(t, -12.0, box.MinX)
	assert.Equal(t, 22.0, box.MaxX)
	assert.Equal(t, -17.0, box.MinY)
	assert.Equal(t, 42.0, box.MaxY)
	assert.Equal(t, 34.0, box.Width())
	assert.Equal(t, 59.0, box.Height())
}

func TestBoundsEmpty(t *testing.T) {
	assert.Equal(t, Box{}, Bounds(nil, 10))
}
