package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"

	"track-designer/internal/designer/models"
)

// ============================================================
// Sequences
// ============================================================

type createSequenceRequest struct {
	Name            string  `json:"name"`
	InvertAlignment bool    `json:"invert_alignment"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	Angle           float64 `json:"angle"`
	Anchored        bool    `json:"anchored"` // true — абсолютный якорь в (x, y, angle)
}

// CreateSequence добавляет пустую последовательность.
func (h *Handler) CreateSequence(c fiber.Ctx) error {
	var req createSequenceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Name == "" {
		return badRequest(c, "name required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := h.loadDesign(c, c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	if design.SequenceByName(req.Name) != nil {
		return badRequest(c, "sequence name already used")
	}

	seq := &models.Sequence{
		Name:            req.Name,
		Active:          true,
		InvertAlignment: req.InvertAlignment,
	}
	if req.Anchored {
		seq.Anchor = models.AbsoluteAnchor{Joint: models.Joint{X: req.X, Y: req.Y, Angle: req.Angle}}
	}
	design.Sequences = append(design.Sequences, seq)

	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.Status(201).JSON(rec)
}

// DeleteSequence удаляет последовательность. Запрещено, пока в одну из
// ее деталей заякорена другая последовательность.
func (h *Handler) DeleteSequence(c fiber.Ctx) error {
	name := c.Params("name")

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

	owned := make(map[string]bool, len(seq.Shapes))
	for _, s := range seq.Shapes {
		owned[s.ID] = true
	}
	for _, other := range design.Sequences {
		if other == seq {
			continue
		}
		if anchor, ok := other.Anchor.(models.LinkedAnchor); ok && owned[anchor.Shape.ID] {
			return c.Status(409).JSON(fiber.Map{
				"error": "sequence " + other.Name + " is linked into " + name,
			})
		}
	}

	kept := design.Sequences[:0]
	for _, q := range design.Sequences {
		if q != seq {
			kept = append(kept, q)
		}
	}
	design.Sequences = kept

	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(rec)
}

// ============================================================
// Anchors & links
// ============================================================

type setLinkRequest struct {
	ShapeID         string `json:"shape_id"`
	InvertAlignment bool   `json:"invert_alignment"`
}

// SetLink заякоривает последовательность в деталь другой
// последовательности. Сначала валидатор, затем мутация и пересчет.
func (h *Handler) SetLink(c fiber.Ctx) error {
	name := c.Params("name")

	var req setLinkRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
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

	anchorShape, owner := design.ShapeByID(req.ShapeID)
	if anchorShape == nil {
		return notFound(c, "anchor shape")
	}
	if owner == seq {
		return badRequest(c, "sequence cannot link into its own shape")
	}
	first := seq.FirstShape()
	if first == nil {
		return badRequest(c, "sequence has no shapes to link")
	}

	if result := h.validator.ValidateLink(anchorShape, first, req.InvertAlignment); !result.OK {
		return rejectedMutation(c, result)
	}

	prevAnchor, prevInvert := seq.Anchor, seq.InvertAlignment
	seq.Anchor = models.LinkedAnchor{Shape: anchorShape}
	seq.InvertAlignment = req.InvertAlignment

	res, err := h.recompute(design)
	if err != nil {
		// цикл связей — откатываем мутацию
		seq.Anchor, seq.InvertAlignment = prevAnchor, prevInvert
		return designError(c, err)
	}

	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}

	log.Printf("[DESIGNER] sequence %s linked to shape %s (invert=%v)", name, req.ShapeID, req.InvertAlignment)
	return c.JSON(fiber.Map{"design": rec, "joints": res.Sequences[name]})
}

type setAnchorRequest struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// SetAnchor задает абсолютный якорь (и снимает связь, если была).
func (h *Handler) SetAnchor(c fiber.Ctx) error {
	name := c.Params("name")

	var req setAnchorRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
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

	seq.Anchor = models.AbsoluteAnchor{Joint: models.Joint{X: req.X, Y: req.Y, Angle: req.Angle}}

	res, err := h.recompute(design)
	if err != nil {
		return designError(c, err)
	}
	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(fiber.Map{"design": rec, "joints": res.Sequences[name]})
}

// ClearAnchor снимает якорь: цепочка снова сеется от начала координат.
func (h *Handler) ClearAnchor(c fiber.Ctx) error {
	name := c.Params("name")

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

	seq.Anchor = nil
	if _, err := h.recompute(design); err != nil {
		return designError(c, err)
	}
	rec, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(rec)
}
