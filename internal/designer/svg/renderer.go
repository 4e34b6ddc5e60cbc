package svg

import (
	"fmt"
	"strconv"
	"strings"

	"track-designer/internal/designer/chain"
	"track-designer/internal/designer/geometry"
	"track-designer/internal/designer/models"
)

// ============================================================
// SVG Renderer
// ============================================================

const (
	boardFill   = "#2e2e2e"
	whiteStroke = "#f5f5f5"
	redStroke   = "#d62728"

	// отступ рамки вокруг облака стыков, в единицах каталога
	boundsPad = 30
)

type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// Render собирает SVG макета из пересчитанных стыков. Каждая деталь —
// один path поверх подложки; цвет штриха равен эффективному цвету.
func (r *Renderer) Render(d *models.Design, res *chain.Result, scale float64) (string, error) {
	if res == nil {
		return "", fmt.Errorf("render: no chain result")
	}

	box := geometry.Bounds(res.AllJoints(), boundsPad*scale)

	var elements []string
	for _, seq := range d.Sequences {
		for _, s := range seq.Shapes {
			joint, ok := res.Joints[s.ID]
			if !ok {
				continue
			}
			elem, err := r.renderShape(s, joint, scale)
			if err != nil {
				return "", fmt.Errorf("render %s/%s: %w", seq.Name, s.Key, err)
			}
			elements = append(elements, elem)
		}
	}

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%s" height="%s" viewBox="%s %s %s %s">`,
		formatFloat(box.Width()), formatFloat(box.Height()),
		formatFloat(box.MinX), formatFloat(box.MinY),
		formatFloat(box.Width()), formatFloat(box.Height())))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf(`  <rect x="%s" y="%s" width="%s" height="%s" fill="%s" />`,
		formatFloat(box.MinX), formatFloat(box.MinY),
		formatFloat(box.Width()), formatFloat(box.Height()), boardFill))
	builder.WriteString("\n")

	for _, elem := range elements {
		builder.WriteString("  ")
		builder.WriteString(elem)
		builder.WriteString("\n")
	}

	builder.WriteString(`</svg>`)
	return builder.String(), nil
}

// ============================================================
// Shape renderers
// ============================================================

func (r *Renderer) renderShape(s *models.Shape, entry models.Joint, scale float64) (string, error) {
	switch g := s.Geometry.(type) {
	case models.ArcGeometry:
		return r.renderArc(s, g, entry, scale)
	case models.SegmentGeometry:
		return r.renderSegment(s, g, entry, scale)
	case models.CloserGeometry:
		return r.renderCloser(s, g, entry, scale)
	default:
		return "", geometry.ErrUnknownGeometry
	}
}

func (r *Renderer) renderArc(s *models.Shape, g models.ArcGeometry, entry models.Joint, scale float64) (string, error) {
	exit, err := geometry.NextJoint(s, entry, scale)
	if err != nil {
		return "", err
	}
	cx, cy, err := geometry.CenterFromJoint(s, entry, scale)
	if err != nil {
		return "", err
	}

	midRadius := (g.ExternalDiameter - g.Width) * scale / 2
	large := 0
	if g.AngleDegrees > 180 {
		large = 1
	}
	// направление обхода из векторного произведения центр→вход, центр→выход
	cross := (entry.X-cx)*(exit.Y-cy) - (entry.Y-cy)*(exit.X-cx)
	sweep := 0
	if cross > 0 {
		sweep = 1
	}

	return fmt.Sprintf(`<path id="%s" d="M %s %s A %s %s 0 %d %d %s %s" fill="none" stroke="%s" stroke-width="%s" />`,
		s.ID,
		formatFloat(entry.X), formatFloat(entry.Y),
		formatFloat(midRadius), formatFloat(midRadius),
		large, sweep,
		formatFloat(exit.X), formatFloat(exit.Y),
		strokeColor(s), formatFloat(g.Width*scale)), nil
}

func (r *Renderer) renderSegment(s *models.Shape, g models.SegmentGeometry, entry models.Joint, scale float64) (string, error) {
	exit, err := geometry.NextJoint(s, entry, scale)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(`<path id="%s" d="M %s %s L %s %s" fill="none" stroke="%s" stroke-width="%s" />`,
		s.ID,
		formatFloat(entry.X), formatFloat(entry.Y),
		formatFloat(exit.X), formatFloat(exit.Y),
		strokeColor(s), formatFloat(g.Width*scale)), nil
}

func (r *Renderer) renderCloser(s *models.Shape, g models.CloserGeometry, entry models.Joint, scale float64) (string, error) {
	cx, cy, err := geometry.CenterFromJoint(s, entry, scale)
	if err != nil {
		return "", err
	}
	radius := g.Diameter * scale / 2
	// полукруг: от входного стыка к диаметрально противоположной точке
	farX := 2*cx - entry.X
	farY := 2*cy - entry.Y

	return fmt.Sprintf(`<path id="%s" d="M %s %s A %s %s 0 0 1 %s %s" fill="none" stroke="%s" stroke-width="%s" />`,
		s.ID,
		formatFloat(entry.X), formatFloat(entry.Y),
		formatFloat(radius), formatFloat(radius),
		formatFloat(farX), formatFloat(farY),
		strokeColor(s), formatFloat(radius/4)), nil
}

// ============================================================
// Formatting helpers
// ============================================================

func strokeColor(s *models.Shape) string {
	if s.EffectiveColor() {
		return redStroke
	}
	return whiteStroke
}

func formatFloat(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
