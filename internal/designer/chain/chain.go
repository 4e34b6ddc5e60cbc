package chain

import (
	"errors"
	"fmt"

	"track-designer/internal/designer/geometry"
	"track-designer/internal/designer/models"
)

// ============================================================
// Traversal
// ============================================================

// ErrMissingAnchorJoint — якорная деталь еще не получила стыка, то есть
// нарушен порядок обработки зависимостей. Фатально для пересчета.
var ErrMissingAnchorJoint = errors.New("chain: anchor shape has no computed joint")

// startJoint разрешает якорь последовательности в стартовый стык.
// Связанный якорь читает стык из явной карты результатов текущего
// прохода, а не из кеша на детали.
func startJoint(seq *models.Sequence, joints map[string]models.Joint, scale float64) (models.Joint, error) {
	switch anchor := seq.Anchor.(type) {
	case nil:
		// незаякоренная цепочка сеется первой деталью от начала координат
		return geometry.AlignFromCenter(seq.Shapes[0], 0, 0, 0, scale)
	case models.AbsoluteAnchor:
		return anchor.Joint, nil
	case models.LinkedAnchor:
		j, ok := joints[anchor.Shape.ID]
		if !ok {
			return models.Joint{}, fmt.Errorf("%w: sequence %s → shape %s",
				ErrMissingAnchorJoint, seq.Name, anchor.Shape.ID)
		}
		if seq.InvertAlignment {
			j.Angle = geometry.NormalizeAngle(j.Angle + 180)
		}
		return j, nil
	default:
		return models.Joint{}, fmt.Errorf("chain: sequence %s: unknown anchor variant", seq.Name)
	}
}

// Sequence обходит цепочку: каждой детали достается входной стык,
// следующий стык дает NextJoint. Стыки складываются в joints (по id
// детали) и в кеш детали — его читают рендер и экспорт. Возвращает
// упорядоченный список входных стыков и терминальный стык цепочки.
func Sequence(seq *models.Sequence, joints map[string]models.Joint, scale float64) ([]models.Joint, models.Joint, error) {
	if len(seq.Shapes) == 0 {
		return nil, models.Joint{}, nil
	}

	current, err := startJoint(seq, joints, scale)
	if err != nil {
		return nil, models.Joint{}, err
	}

	ordered := make([]models.Joint, 0, len(seq.Shapes))
	for _, s := range seq.Shapes {
		entry := current
		s.Joint = &entry
		joints[s.ID] = entry
		ordered = append(ordered, entry)

		if s.IsTerminal() {
			// от терминальной детали преемник не вычисляется
			break
		}
		current, err = geometry.NextJoint(s, current, scale)
		if err != nil {
			return nil, models.Joint{}, fmt.Errorf("sequence %s shape %s: %w", seq.Name, s.Key, err)
		}
	}

	return ordered, current, nil
}

// ============================================================
// Recompute
// ============================================================

// Result — результат полного пересчета документа.
type Result struct {
	// Joints — входной стык каждой детали по ее id.
	Joints map[string]models.Joint
	// Sequences — упорядоченные стыки по имени последовательности.
	Sequences map[string][]models.Joint
	// Terminals — терминальный стык каждой последовательности.
	Terminals map[string]models.Joint
}

// AllJoints — все стыки документа одним списком (для охвата).
func (r *Result) AllJoints() []models.Joint {
	var out []models.Joint
	for _, list := range r.Sequences {
		out = append(out, list...)
	}
	return out
}

// Recompute — двухфазный пересчет: сначала план по связям, затем для
// каждой последовательности в этом порядке цвета и стыки. Зависимая
// последовательность всегда видит свежие стык и цвет якорной детали.
func Recompute(d *models.Design, scale float64) (*Result, error) {
	ordered, err := Plan(d)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Joints:    make(map[string]models.Joint),
		Sequences: make(map[string][]models.Joint, len(ordered)),
		Terminals: make(map[string]models.Joint, len(ordered)),
	}

	for _, seq := range ordered {
		RecalculateColors(seq)
		list, terminal, err := Sequence(seq, res.Joints, scale)
		if err != nil {
			return nil, err
		}
		res.Sequences[seq.Name] = list
		res.Terminals[seq.Name] = terminal
	}

	return res, nil
}
