package geometry

import (
	"gonum.org/v1/gonum/floats"

	"track-designer/internal/designer/models"
)

// ============================================================
// Bounds
// ============================================================

// Box — прямоугольник, охватывающий облако стыков.
type Box struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Bounds считает охват по списку стыков с отступом pad со всех сторон.
// Отступ подбирает вызывающий (обычно половина ширины самой широкой детали).
// Пустой список дает нулевой Box.
func Bounds(joints []models.Joint, pad float64) Box {
	if len(joints) == 0 {
		return Box{}
	}

	xs := make([]float64, len(joints))
	ys := make([]float64, len(joints))
	for i, j := range joints {
		xs[i] = j.X
		ys[i] = j.Y
	}

	return Box{
		MinX: floats.Min(xs) - pad,
		MinY: floats.Min(ys) - pad,
		MaxX: floats.Max(xs) + pad,
		MaxY: floats.Max(ys) + pad,
	}
}
