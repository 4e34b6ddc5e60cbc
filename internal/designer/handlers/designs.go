package handlers

import (
	"log"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"track-designer/internal/designer/models"
)

// ============================================================
// Design CRUD
// ============================================================

type createDesignRequest struct {
	Name string `json:"name"`
}

// CreateDesign создает пустой документ.
func (h *Handler) CreateDesign(c fiber.Ctx) error {
	var req createDesignRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Name == "" {
		return badRequest(c, "name required")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	rec := models.DesignRecord{ID: uuid.NewString(), Name: req.Name}
	if err := h.repo.Save(c.Context(), rec); err != nil {
		return designError(c, err)
	}

	log.Printf("[DESIGNER] design created: %s (%s)", rec.Name, rec.ID)
	return c.Status(201).JSON(rec)
}

// ListDesigns возвращает сводки всех документов.
func (h *Handler) ListDesigns(c fiber.Ctx) error {
	list, err := h.repo.List(c.Context())
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(fiber.Map{"designs": list})
}

// GetDesign возвращает документ целиком.
func (h *Handler) GetDesign(c fiber.Ctx) error {
	rec, err := h.repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(rec)
}

// PutDesign принимает документ целиком (обмен с внешним редактором).
// Перед записью документ восстанавливается и пересчитывается: битые
// якоря, циклы и неизвестные типы деталей отклоняются.
func (h *Handler) PutDesign(c fiber.Ctx) error {
	id := c.Params("id")

	var rec models.DesignRecord
	if err := c.Bind().Body(&rec); err != nil {
		return badRequest(c, "invalid body")
	}
	rec.ID = id

	h.mu.Lock()
	defer h.mu.Unlock()

	design, err := models.DesignFromRecord(rec)
	if err != nil {
		return designError(c, err)
	}
	if _, err := h.recompute(design); err != nil {
		return designError(c, err)
	}

	saved, err := h.saveDesign(c, design)
	if err != nil {
		return designError(c, err)
	}
	return c.JSON(saved)
}

// DeleteDesign удаляет документ.
func (h *Handler) DeleteDesign(c fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.repo.Delete(c.Context(), c.Params("id")); err != nil {
		return designError(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}
