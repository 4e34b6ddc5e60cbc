package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats/scalar"

	"track-designer/internal/designer/models"
)

const tol = 1e-9

func arc05(orientation int) *models.Shape {
	return &models.Shape{
		ID:          "arc",
		Key:         "05",
		Orientation: orientation,
		Geometry:    models.ArcGeometry{ExternalDiameter: 50, AngleDegrees: 45, Width: 5},
	}
}

func segmentL() *models.Shape {
	return &models.Shape{
		ID:          "seg",
		Key:         "L",
		Orientation: 1,
		Geometry:    models.SegmentGeometry{Length: 19, Width: 5},
	}
}

func closerC() *models.Shape {
	return &models.Shape{
		ID:          "closer",
		Key:         "C",
		Orientation: 1,
		Geometry:    models.CloserGeometry{Diameter: 40},
	}
}

func TestNormalizeAngle(t *testing.T) {
	assert.Equal(t, 0.0, NormalizeAngle(0))
	assert.Equal(t, 0.0, NormalizeAngle(360))
	assert.Equal(t, 45.0, NormalizeAngle(405))
	assert.Equal(t, 315.0, NormalizeAngle(-45))
	assert.Equal(t, 180.0, NormalizeAngle(-180))
}

// Round-trip: центр, восстановленный из стыка AlignFromCenter, совпадает
// с исходным для всех вариантов геометрии и обеих ориентаций.
func TestCenterFromJointRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		shape *models.Shape
	}{
		{"arc +1", arc05(1)},
		{"arc -1", arc05(-1)},
		{"segment", segmentL()},
		{"closer", closerC()},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, angle := range []float64{0, 45, 90, 210, 359} {
				for _, scale := range []float64{1, 2.5} {
					j, err := AlignFromCenter(tc.shape, 12.5, -7.25, angle, scale)
					require.NoError(t, err)

					cx, cy, err := CenterFromJoint(tc.shape, j, scale)
					require.NoError(t, err)
					assert.True(t, scalar.EqualWithinAbs(cx, 12.5, tol),
						"angle=%v scale=%v cx=%v", angle, scale, cx)
					assert.True(t, scalar.EqualWithinAbs(cy, -7.25, tol),
						"angle=%v scale=%v cy=%v", angle, scale, cy)
				}
			}
		})
	}
}

// Сектор 05 (D=50, 45°, w=5), ориентация +1, старт (0,0,0):
// выходной угол 45°, центры по входному и выходному стыку совпадают.
func TestArcNextJoint(t *testing.T) {
	s := arc05(1)
	entry := models.Joint{X: 0, Y: 0, Angle: 0}

	exit, err := NextJoint(s, entry, 1)
	require.NoError(t, err)
	assert.InDelta(t, 45, exit.Angle, tol)

	cx1, cy1, err := CenterFromJoint(s, entry, 1)
	require.NoError(t, err)
	cx2, cy2, err := CenterFromJoint(s, exit, 1)
	require.NoError(t, err)
	assert.InDelta(t, cx1, cx2, tol)
	assert.InDelta(t, cy1, cy2, tol)

	// стык лежит на окружности среднего радиуса
	mid := (25.0 + 20.0) / 2
	dx, dy := exit.X-cx1, exit.Y-cy1
	assert.InDelta(t, mid*mid, dx*dx+dy*dy, tol)
}

func TestArcNextJointNegativeOrientation(t *testing.T) {
	s := arc05(-1)
	entry := models.Joint{X: 0, Y: 0, Angle: 0}

	exit, err := NextJoint(s, entry, 1)
	require.NoError(t, err)

	cx1, cy1, err := CenterFromJoint(s, entry, 1)
	require.NoError(t, err)
	cx2, cy2, err := CenterFromJoint(s, exit, 1)
	require.NoError(t, err)
	assert.InDelta(t, cx1, cx2, tol)
	assert.InDelta(t, cy1, cy2, tol)
}

// Отрезок переносит стык против локальной оси: (0,0,0) → (0,-19,0).
func TestSegmentNextJoint(t *testing.T) {
	exit, err := NextJoint(segmentL(), models.Joint{X: 0, Y: 0, Angle: 0}, 1)
	require.NoError(t, err)
	assert.InDelta(t, 0, exit.X, tol)
	assert.InDelta(t, -19, exit.Y, tol)
	assert.InDelta(t, 0, exit.Angle, tol)
}

func TestSegmentNextJointScaled(t *testing.T) {
	exit, err := NextJoint(segmentL(), models.Joint{X: 3, Y: 4, Angle: 90}, 2)
	require.NoError(t, err)
	assert.InDelta(t, 3-38, exit.X, tol)
	assert.InDelta(t, 4, exit.Y, tol)
	assert.InDelta(t, 90, exit.Angle, tol)
}

// Замыкающий полукруг — тождество.
func TestCloserNextJoint(t *testing.T) {
	entry := models.Joint{X: 5, Y: 6, Angle: 30}
	exit, err := NextJoint(closerC(), entry, 1)
	require.NoError(t, err)
	assert.Equal(t, entry, exit)
}

func TestUnknownGeometry(t *testing.T) {
	s := &models.Shape{ID: "x", Key: "x", Orientation: 1}
	_, err := NextJoint(s, models.Joint{}, 1)
	assert.ErrorIs(t, err, ErrUnknownGeometry)

	_, err = AlignFromCenter(s, 0, 0, 0, 1)
	assert.ErrorIs(t, err, ErrUnknownGeometry)

	_, _, err = CenterFromJoint(s, models.Joint{}, 1)
	assert.ErrorIs(t, err, ErrUnknownGeometry)
}
