package geometry

import (
	"errors"
	"math"

	"track-designer/internal/designer/models"
)

// ============================================================
// Alignment contract
// ============================================================

// ErrUnknownGeometry — вариант геометрии вне закрытого набора
// каталога; ошибка программирования, не данных.
var ErrUnknownGeometry = errors.New("geometry: unknown shape geometry")

// NormalizeAngle приводит угол к [0, 360).
func NormalizeAngle(deg float64) float64 {
	m := math.Mod(deg, 360)
	if m < 0 {
		m += 360
	}
	return m
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}

// alignRadius — плечо от геометрического центра детали до стыка.
// Для дуги это средний радиус кольца, для остальных — половина пролета.
func alignRadius(s *models.Shape, scale float64) (float64, error) {
	switch g := s.Geometry.(type) {
	case models.ArcGeometry:
		external := g.ExternalDiameter * scale / 2
		internal := (g.ExternalDiameter - 2*g.Width) * scale / 2
		return (external + internal) / 2, nil
	case models.SegmentGeometry:
		return g.Length * scale / 2, nil
	case models.CloserGeometry:
		return g.Diameter * scale / 2, nil
	default:
		return 0, ErrUnknownGeometry
	}
}

// projectionAngle — асимметрия знака между ориентациями: при +1
// проекция центр→стык берется от угла +180°, при −1 от сырого угла.
// Смещения входной и выходной стороны у двух ориентаций различаются,
// поэтому менять эту пару веток нельзя: стыки ниже по цепочке
// окажутся зеркальными. Проверяется round-trip тестами.
func projectionAngle(orientation int, deg float64) float64 {
	if orientation == 1 {
		return deg + 180
	}
	return deg
}

// AlignFromCenter возвращает входной стык, при котором геометрический
// центр детали окажется в (cx, cy) с поворотом rotation.
// Используется для посева первой детали незаякоренной последовательности
// и как проекция центр→стык внутри NextJoint.
func AlignFromCenter(s *models.Shape, cx, cy, rotation, scale float64) (models.Joint, error) {
	r, err := alignRadius(s, scale)
	if err != nil {
		return models.Joint{}, err
	}
	eff := radians(projectionAngle(s.Orientation, rotation))
	return models.Joint{
		X:     cx + r*math.Sin(eff),
		Y:     cy + r*math.Cos(eff),
		Angle: NormalizeAngle(rotation),
	}, nil
}

// CenterFromJoint — обратная проекция стык→центр.
func CenterFromJoint(s *models.Shape, j models.Joint, scale float64) (float64, float64, error) {
	r, err := alignRadius(s, scale)
	if err != nil {
		return 0, 0, err
	}
	eff := radians(projectionAngle(s.Orientation, j.Angle))
	return j.X - r*math.Sin(eff), j.Y - r*math.Cos(eff), nil
}

// NextJoint — шаг цепочки: по входному стыку детали вычисляет стык
// следующей детали.
//   - дуга: центр через CenterFromJoint, выходной угол
//     current.Angle + AngleDegrees*orientation, стык — той же проекцией
//     центр→стык на новом угле (для −1 угол проекции дополнительно +180°);
//   - отрезок: перенос на length*scale против локальной оси (sin, cos),
//     угол не меняется;
//   - замыкающий полукруг: тождество — после него цепочка не продолжается.
func NextJoint(s *models.Shape, current models.Joint, scale float64) (models.Joint, error) {
	switch g := s.Geometry.(type) {
	case models.ArcGeometry:
		cx, cy, err := CenterFromJoint(s, current, scale)
		if err != nil {
			return models.Joint{}, err
		}
		exit := current.Angle + g.AngleDegrees*float64(s.Orientation)
		if s.Orientation != 1 {
			exit += 180
		}
		return AlignFromCenter(s, cx, cy, exit, scale)
	case models.SegmentGeometry:
		rad := radians(current.Angle)
		return models.Joint{
			X:     current.X - g.Length*scale*math.Sin(rad),
			Y:     current.Y - g.Length*scale*math.Cos(rad),
			Angle: current.Angle,
		}, nil
	case models.CloserGeometry:
		return current, nil
	default:
		return models.Joint{}, ErrUnknownGeometry
	}
}
