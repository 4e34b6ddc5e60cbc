package handlers

import (
	"github.com/gofiber/fiber/v3"

	"track-designer/internal/designer/geometry"
	"track-designer/internal/designer/models"
)

// ============================================================
// Geometry & export
// ============================================================

// отступ охвата вокруг облака стыков, в единицах каталога
const boundsPad = 30

type shapeGeometryResponse struct {
	ID    string       `json:"id"`
	Key   string       `json:"key"`
	Color string       `json:"color"`
	Joint models.Joint `json:"joint"`
}

// GetGeometry пересчитывает документ в запрошенном масштабе и отдает
// стыки, цвета и охват — все, что нужно рендеру и измерениям.
func (h *Handler) GetGeometry(c fiber.Ctx) error {
	scale, err := parseScale(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	res, err := h.recomputeAt(design, scale)
	if err != nil {
		return designError(c, err)
	}

	shapes := make([]shapeGeometryResponse, 0)
	for _, seq := range design.Sequences {
		for _, s := range seq.Shapes {
			joint, ok := res.Joints[s.ID]
			if !ok {
				continue
			}
			shapes = append(shapes, shapeGeometryResponse{
				ID:    s.ID,
				Key:   s.Key,
				Color: colorName(s),
				Joint: joint,
			})
		}
	}

	return c.JSON(fiber.Map{
		"scale":     scale,
		"shapes":    shapes,
		"sequences": res.Sequences,
		"terminals": res.Terminals,
		"bounds":    geometry.Bounds(res.AllJoints(), boundsPad*scale),
	})
}

// GetSVG отдает макет как SVG.
func (h *Handler) GetSVG(c fiber.Ctx) error {
	scale, err := parseScale(c)
	if err != nil {
		return badRequest(c, err.Error())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	res, err := h.recomputeAt(design, scale)
	if err != nil {
		return designError(c, err)
	}

	out, err := h.renderer.Render(design, res, scale)
	if err != nil {
		return designError(c, err)
	}

	c.Set("Content-Type", "image/svg+xml")
	return c.SendString(out)
}

// GetCatalog отдает шаблоны каталога.
func (h *Handler) GetCatalog(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"shapes": h.catalog.Templates()})
}

func colorName(s *models.Shape) string {
	if s.EffectiveColor() {
		return "red"
	}
	return "white"
}
