package catalog

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"track-designer/internal/designer/models"
)

// ============================================================
// Catalog
// ============================================================

// ErrUnknownKey — запрошен ключ, которого нет в каталоге.
var ErrUnknownKey = errors.New("catalog: unknown shape key")

// Template — описание детали каталога. Геометрия шаблона копируется в
// каждый экземпляр и после этого не меняется.
type Template struct {
	Key  string `yaml:"key"`
	Kind string `yaml:"kind"` // arc | segment | closer

	ExternalDiameter float64 `yaml:"external_diameter,omitempty"`
	AngleDegrees     float64 `yaml:"angle_degrees,omitempty"`
	Width            float64 `yaml:"width,omitempty"`
	Length           float64 `yaml:"length,omitempty"`
	Diameter         float64 `yaml:"diameter,omitempty"`
}

func (t Template) geometry() (models.ShapeGeometry, error) {
	switch t.Kind {
	case models.ShapeTypeArc:
		return models.ArcGeometry{
			ExternalDiameter: t.ExternalDiameter,
			AngleDegrees:     t.AngleDegrees,
			Width:            t.Width,
		}, nil
	case models.ShapeTypeSegment:
		return models.SegmentGeometry{Length: t.Length, Width: t.Width}, nil
	case models.ShapeTypeCloser:
		return models.CloserGeometry{Diameter: t.Diameter}, nil
	default:
		return nil, fmt.Errorf("template %s: kind %q: %w", t.Key, t.Kind, models.ErrUnknownShapeType)
	}
}

type Catalog struct {
	templates map[string]Template
	order     []string
}

func New(templates []Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]Template, len(templates))}
	for _, t := range templates {
		if _, err := t.geometry(); err != nil {
			return nil, err
		}
		if _, dup := c.templates[t.Key]; dup {
			return nil, fmt.Errorf("catalog: duplicate key %q", t.Key)
		}
		c.templates[t.Key] = t
		c.order = append(c.order, t.Key)
	}
	return c, nil
}

// Default — встроенный набор печатаемых деталей.
func Default() *Catalog {
	c, err := New([]Template{
		{Key: "04", Kind: models.ShapeTypeArc, ExternalDiameter: 40, AngleDegrees: 45, Width: 5},
		{Key: "05", Kind: models.ShapeTypeArc, ExternalDiameter: 50, AngleDegrees: 45, Width: 5},
		{Key: "06", Kind: models.ShapeTypeArc, ExternalDiameter: 60, AngleDegrees: 30, Width: 5},
		{Key: "08", Kind: models.ShapeTypeArc, ExternalDiameter: 80, AngleDegrees: 30, Width: 5},
		{Key: "S", Kind: models.ShapeTypeSegment, Length: 9.5, Width: 5},
		{Key: "M", Kind: models.ShapeTypeSegment, Length: 14, Width: 5},
		{Key: "L", Kind: models.ShapeTypeSegment, Length: 19, Width: 5},
		{Key: "C", Kind: models.ShapeTypeCloser, Diameter: 40},
	})
	if err != nil {
		// встроенный набор проверен на согласованность
		panic(err)
	}
	return c
}

// Templates — шаблоны в порядке объявления (для выдачи наружу).
func (c *Catalog) Templates() []Template {
	out := make([]Template, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.templates[key])
	}
	return out
}

// Instantiate — копия с новой идентичностью: свежий id, геометрия из
// шаблона, все флаги экземпляра в значениях по умолчанию.
func (c *Catalog) Instantiate(key string) (*models.Shape, error) {
	t, ok := c.templates[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	geom, err := t.geometry()
	if err != nil {
		return nil, err
	}
	return &models.Shape{
		ID:          uuid.NewString(),
		Key:         key,
		Orientation: 1,
		Geometry:    geom,
	}, nil
}

// ============================================================
// External catalogue file
// ============================================================

type catalogFile struct {
	Shapes []Template `yaml:"shapes"`
}

// LoadYAML читает каталог из внешнего файла.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(file.Shapes) == 0 {
		return nil, fmt.Errorf("parse catalog: no shapes in %s", path)
	}
	return New(file.Shapes)
}
