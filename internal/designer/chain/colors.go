package chain

import "track-designer/internal/designer/models"

// ============================================================
// Color assignment
// ============================================================

// RecalculateColors раскрашивает цепочку чередованием белый/красный.
//
// Сид: белый для незаякоренной или абсолютной цепочки, инверсия
// эффективного цвета якорной детали для связанной. Первая деталь
// связанной цепочки получает сид при invert_alignment и его инверсию
// без него; дальше каждая деталь — инверсию эффективного цвета
// предыдущей. Эффективный цвет учитывает force_invert_color самой
// детали, поэтому пересчитывается после каждого присваивания.
//
// Вызывается для всех последовательностей в порядке Plan: сид зависимой
// цепочки читает уже пересчитанный цвет якорной детали.
func RecalculateColors(seq *models.Sequence) {
	seed := false // белый
	anchor, linked := seq.Anchor.(models.LinkedAnchor)
	if linked {
		seed = !anchor.Shape.EffectiveColor()
	}

	var prev bool
	for i, s := range seq.Shapes {
		switch {
		case i > 0:
			s.BaseColor = !prev
		case linked && seq.InvertAlignment:
			s.BaseColor = seed
		case linked:
			s.BaseColor = !seed
		default:
			s.BaseColor = seed
		}
		prev = s.EffectiveColor()
	}
}
