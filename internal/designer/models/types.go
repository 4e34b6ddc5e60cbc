package models

import "fmt"

// ============================================================
// Joint
// ============================================================

// Joint — ориентированная линия стыка двух соседних деталей.
// Чистое значение без идентичности; угол в градусах.
type Joint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// ============================================================
// Geometry variants
// ============================================================

// ShapeGeometry — закрытый набор геометрий каталога.
// Набор фиксирован: сектор дуги, прямой отрезок, замыкающий полукруг.
type ShapeGeometry interface {
	isShapeGeometry()
}

// ArcGeometry — сектор кольца. Ориентация детали может быть ±1.
type ArcGeometry struct {
	ExternalDiameter float64
	AngleDegrees     float64
	Width            float64
}

// SegmentGeometry — прямой участок трека.
type SegmentGeometry struct {
	Length float64
	Width  float64
}

// CloserGeometry — терминальный полукруг: после него в
// последовательности не может стоять другая деталь.
type CloserGeometry struct {
	Diameter float64
}

func (ArcGeometry) isShapeGeometry()     {}
func (SegmentGeometry) isShapeGeometry() {}
func (CloserGeometry) isShapeGeometry()  {}

// ============================================================
// Shape
// ============================================================

// Shape — экземпляр детали каталога.
// Геометрия неизменна после создания; мутируют только ориентация,
// цветовые флаги, active и кеш joint.
type Shape struct {
	ID               string
	Key              string
	Orientation      int
	Active           bool
	BaseColor        bool // false = белый, true = красный
	ForceInvertColor bool
	Geometry         ShapeGeometry

	// Joint — входной стык, записанный последним обходом цепочки.
	// Кеш для коллабораторов (рендер, экспорт), не источник истины.
	Joint *Joint
}

// EffectiveColor — отображаемый цвет с учетом принудительной инверсии.
func (s *Shape) EffectiveColor() bool {
	return s.BaseColor != s.ForceInvertColor
}

// IsTerminal — деталь, которой последовательность обязана заканчиваться.
func (s *Shape) IsTerminal() bool {
	_, ok := s.Geometry.(CloserGeometry)
	return ok
}

// SetOrientation проверяет допустимость ориентации для варианта геометрии:
// дуга ±1, остальные строго +1.
func (s *Shape) SetOrientation(orientation int) error {
	switch s.Geometry.(type) {
	case ArcGeometry:
		if orientation != 1 && orientation != -1 {
			return fmt.Errorf("shape %s: orientation must be 1 or -1, got %d", s.Key, orientation)
		}
	case SegmentGeometry, CloserGeometry:
		if orientation != 1 {
			return fmt.Errorf("shape %s: orientation is fixed to 1, got %d", s.Key, orientation)
		}
	default:
		return fmt.Errorf("shape %s: unknown geometry", s.Key)
	}
	s.Orientation = orientation
	return nil
}

// ============================================================
// Anchor
// ============================================================

// Anchor — правило первого стыка последовательности:
// абсолютная позиция либо ссылка на деталь другой последовательности.
// nil означает незаякоренную последовательность (сеется от начала координат).
type Anchor interface {
	isAnchor()
}

// AbsoluteAnchor — стык задан напрямую, в текущем масштабе вызывающего.
type AbsoluteAnchor struct {
	Joint Joint
}

// LinkedAnchor — не владеющая ссылка на деталь чужой последовательности.
type LinkedAnchor struct {
	Shape *Shape
}

func (AbsoluteAnchor) isAnchor() {}
func (LinkedAnchor) isAnchor()   {}

// ============================================================
// Sequence & Design
// ============================================================

// Sequence — упорядоченная цепочка деталей с якорем.
type Sequence struct {
	Name            string
	Active          bool
	InvertAlignment bool
	Shapes          []*Shape
	Anchor          Anchor
}

// FirstShape возвращает первую деталь или nil для пустой цепочки.
func (q *Sequence) FirstShape() *Shape {
	if len(q.Shapes) == 0 {
		return nil
	}
	return q.Shapes[0]
}

// Design — рабочий документ: все последовательности одного макета.
type Design struct {
	ID        string
	Name      string
	Sequences []*Sequence
}

// ShapeByID ищет деталь по id среди всех последовательностей.
func (d *Design) ShapeByID(id string) (*Shape, *Sequence) {
	for _, seq := range d.Sequences {
		for _, s := range seq.Shapes {
			if s.ID == id {
				return s, seq
			}
		}
	}
	return nil, nil
}

// SequenceByName ищет последовательность по имени.
func (d *Design) SequenceByName(name string) *Sequence {
	for _, seq := range d.Sequences {
		if seq.Name == name {
			return seq
		}
	}
	return nil
}
