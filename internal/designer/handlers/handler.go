package handlers

import (
	"errors"
	"log"
	"strconv"
	"sync"

	"github.com/gofiber/fiber/v3"

	"track-designer/internal/designer/catalog"
	"track-designer/internal/designer/chain"
	"track-designer/internal/designer/models"
	"track-designer/internal/designer/repository"
	"track-designer/internal/designer/svg"
	"track-designer/internal/designer/validate"
)

// ============================================================
// Designer Handler
// ============================================================

// Handler держит зависимости сервиса. Мутации документов
// сериализуются мьютексом: пересчет строго однопоточный.
type Handler struct {
	mu        sync.Mutex
	repo      *repository.Repository
	catalog   *catalog.Catalog
	validator *validate.Validator
	renderer  *svg.Renderer
}

func New(repo *repository.Repository, cat *catalog.Catalog, validator *validate.Validator) *Handler {
	return &Handler{
		repo:      repo,
		catalog:   cat,
		validator: validator,
		renderer:  svg.NewRenderer(),
	}
}

// ============================================================
// Shared helpers
// ============================================================

// loadDesign достает документ и восстанавливает модель (двухпроходно).
func (h *Handler) loadDesign(c fiber.Ctx, id string) (*models.Design, error) {
	rec, err := h.repo.Get(c.Context(), id)
	if err != nil {
		return nil, err
	}
	return models.DesignFromRecord(rec)
}

// saveDesign сериализует и пишет документ обратно.
func (h *Handler) saveDesign(c fiber.Ctx, d *models.Design) (models.DesignRecord, error) {
	rec, err := d.ToRecord()
	if err != nil {
		return models.DesignRecord{}, err
	}
	if err := h.repo.Save(c.Context(), rec); err != nil {
		return models.DesignRecord{}, err
	}
	return rec, nil
}

// recompute — полный пересчет после мутации. Цвета и кеш стыков
// обновляются в масштабе 1; эндпоинты геометрии пересчитывают в
// запрошенном масштабе сами.
func (h *Handler) recompute(d *models.Design) (*chain.Result, error) {
	return chain.Recompute(d, 1)
}

func (h *Handler) recomputeAt(d *models.Design, scale float64) (*chain.Result, error) {
	return chain.Recompute(d, scale)
}

func parseScale(c fiber.Ctx) (float64, error) {
	raw := c.Query("scale", "1")
	scale, err := strconv.ParseFloat(raw, 64)
	if err != nil || scale <= 0 {
		return 0, errors.New("scale must be a positive number")
	}
	return scale, nil
}

func notFound(c fiber.Ctx, what string) error {
	return c.Status(404).JSON(fiber.Map{"error": what + " not found"})
}

func badRequest(c fiber.Ctx, msg string) error {
	return c.Status(400).JSON(fiber.Map{"error": msg})
}

// rejectedMutation — типизированный отказ валидатора, 422.
func rejectedMutation(c fiber.Ctx, result validate.Result) error {
	log.Printf("[DESIGNER] mutation rejected: %s (%s)", result.Code, result.Message)
	return c.Status(422).JSON(fiber.Map{"validation": result})
}

// designError переводит ошибки ядра и хранилища в ответы.
func designError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return notFound(c, "design")
	case errors.Is(err, chain.ErrAnchorCycle),
		errors.Is(err, chain.ErrUnknownAnchorShape):
		return c.Status(409).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, catalog.ErrUnknownKey),
		errors.Is(err, models.ErrUnknownShapeType),
		errors.Is(err, models.ErrUnknownAnchorType),
		errors.Is(err, models.ErrDanglingAnchor),
		errors.Is(err, models.ErrTerminalNotLast):
		return badRequest(c, err.Error())
	default:
		log.Printf("[DESIGNER] internal error: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
}
