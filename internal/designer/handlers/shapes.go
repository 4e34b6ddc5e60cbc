package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"track-designer/internal/designer/models"
)

// ============================================================
// Shapes
// ============================================================

type insertShapeRequest struct {
	Key         string `json:"key"`
	Index       *int   `json:"index,omitempty"`       // по умолчанию в конец
	Orientation *int   `json:"orientation,omitempty"` // по умолчанию +1
}

// InsertShape создает деталь из каталога и вставляет ее в
// последовательность: валидатор → мутация → пересчет → сохранение.
func (h *Handler) InsertShape(c fiber.Ctx) error {
	name := c.Params("name")

	var req insertShapeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Key == "" {
		return badRequest(c, "key required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	seq := design.SequenceByName(name)
	if seq == nil {
		return notFound(c, "sequence")
	}

	shape, err := h.catalog.Instantiate(req.Key)
	if err != nil {
		return designError(c, err)
	}
	if req.Orientation != nil {
		if err := shape.SetOrientation(*req.Orientation); err != nil {
			return badRequest(c, err.Error())
		}
	}

	index := len(seq.Shapes)
	if req.Index != nil {
		index = *req.Index
		if index < 0 || index > len(seq.Shapes) {
			return badRequest(c, "index out of range")
		}
	}

	if result := h.validator.ValidateAdd(seq, shape, index); !result.OK {
		return rejectedMutation(c, result)
	}

	seq.Shapes = append(seq.Shapes, nil)
	copy(seq.Shapes[index+1:], seq.Shapes[index:])
	seq.Shapes[index] = shape

	res, err := h.recompute(design)
	if err != nil {
		return designError(c, err)
	}
	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}

	log.Printf("[DESIGNER] shape %s inserted into %s at %d", shape.Key, name, index)
	return c.Status(201).JSON(fiber.Map{
		"design": rec,
		"shape":  shape.ID,
		"joints": res.Sequences[name],
	})
}

// RemoveShape удаляет деталь. Запрещено, пока в нее заякорена другая
// последовательность.
func (h *Handler) RemoveShape(c fiber.Ctx) error {
	shapeID := c.Params("shapeId")

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	shape, owner := design.ShapeByID(shapeID)
	if shape == nil {
		return notFound(c, "shape")
	}

	for _, seq := range design.Sequences {
		if anchor, ok := seq.Anchor.(models.LinkedAnchor); ok && anchor.Shape.ID == shapeID {
			return c.Status(409).JSON(fiber.Map{
				"error": "sequence " + seq.Name + " is linked into this shape",
			})
		}
	}

	kept := owner.Shapes[:0]
	for _, s := range owner.Shapes {
		if s.ID != shapeID {
			kept = append(kept, s)
		}
	}
	owner.Shapes = kept

	if _, err := h.recompute(design); err != nil {
		return designError(c, err)
	}
	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(rec)
}

type patchShapeRequest struct {
	Orientation      *int  `json:"orientation,omitempty"`
	ForceInvertColor *bool `json:"force_invert_color,omitempty"`
	Active           *bool `json:"active,omitempty"`
}

// PatchShape меняет мутируемые флаги детали; геометрия неизменна.
func (h *Handler) PatchShape(c fiber.Ctx) error {
	shapeID := c.Params("shapeId")

	var req patchShapeRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	shape, _ := design.ShapeByID(shapeID)
	if shape == nil {
		return notFound(c, "shape")
	}

	if req.Orientation != nil {
		if err := shape.SetOrientation(*req.Orientation); err != nil {
			return badRequest(c, err.Error())
		}
	}
	if req.ForceInvertColor != nil {
		shape.ForceInvertColor = *req.ForceInvertColor
	}
	if req.Active != nil {
		shape.Active = *req.Active
	}

	if _, err := h.recompute(design); err != nil {
		return designError(c, err)
	}
	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(rec)
}
