package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"track-designer/internal/designer/models"
)

// Без force_invert_color цвета соседних деталей всегда различаются,
// первая деталь незаякоренной цепочки белая.
func TestColorsAlternate(t *testing.T) {
	seq := &models.Sequence{Name: "a", Shapes: []*models.Shape{
		segment("s1"), segment("s2"), segment("s3"), segment("s4"),
	}}

	RecalculateColors(seq)

	assert.False(t, seq.Shapes[0].EffectiveColor())
	for i := 1; i < len(seq.Shapes); i++ {
		assert.NotEqual(t, seq.Shapes[i-1].EffectiveColor(), seq.Shapes[i].EffectiveColor(),
			"shapes %d and %d share color", i-1, i)
	}
}

func TestColorsAbsoluteAnchorSeedsWhite(t *testing.T) {
	seq := &models.Sequence{Name: "a", Shapes: []*models.Shape{segment("s1")},
		Anchor: absolute(5, 5, 0)}
	RecalculateColors(seq)
	assert.False(t, seq.Shapes[0].EffectiveColor())
}

// force_invert_color учитывается в эффективном цвете предыдущей детали
// до назначения следующей.
func TestColorsFoldForcedInversion(t *testing.T) {
	s1, s2, s3 := segment("s1"), segment("s2"), segment("s3")
	s2.ForceInvertColor = true
	seq := &models.Sequence{Name: "a", Shapes: []*models.Shape{s1, s2, s3}}

	RecalculateColors(seq)

	assert.False(t, s1.EffectiveColor())           // белая
	assert.False(t, s2.EffectiveColor())           // base красный, инверсия → белый
	assert.True(t, s3.EffectiveColor())            // инверсия эффективного цвета s2
	assert.NotEqual(t, s2.BaseColor, s2.EffectiveColor())
}

// Закон связывания: без invert_alignment эффективный цвет первой детали
// совпадает с якорной, с ним — отличается. Проверяется после полного
// пересчета, как и читают коллабораторы.
func TestLinkedColorLaw(t *testing.T) {
	for _, invert := range []bool{false, true} {
		a1, a2 := segment("a1"), segment("a2")
		b1 := segment("b1")
		a := &models.Sequence{Name: "a", Shapes: []*models.Shape{a1, a2}, Anchor: absolute(0, 0, 0)}
		b := &models.Sequence{Name: "b", Shapes: []*models.Shape{b1},
			Anchor: models.LinkedAnchor{Shape: a2}, InvertAlignment: invert}

		_, err := Recompute(&models.Design{Sequences: []*models.Sequence{a, b}}, 1)
		require.NoError(t, err)

		if invert {
			assert.NotEqual(t, a2.EffectiveColor(), b1.EffectiveColor())
		} else {
			assert.Equal(t, a2.EffectiveColor(), b1.EffectiveColor())
		}
	}
}

// Сид зависимой цепочки читает цвет якорной детали, пересчитанный в том
// же проходе.
func TestLinkedSeedUsesFreshAnchorColor(t *testing.T) {
	a1, a2 := segment("a1"), segment("a2")
	b1, b2 := segment("b1"), segment("b2")
	a := &models.Sequence{Name: "a", Shapes: []*models.Shape{a1, a2}, Anchor: absolute(0, 0, 0)}
	b := &models.Sequence{Name: "b", Shapes: []*models.Shape{b1, b2},
		Anchor: models.LinkedAnchor{Shape: a2}}

	// заведомо неверные цвета до пересчета
	a2.BaseColor = false
	b1.BaseColor = false

	_, err := Recompute(&models.Design{Sequences: []*models.Sequence{b, a}}, 1)
	require.NoError(t, err)

	assert.True(t, a2.EffectiveColor()) // вторая деталь цепочки a — красная
	assert.Equal(t, a2.EffectiveColor(), b1.EffectiveColor())
	assert.NotEqual(t, b1.EffectiveColor(), b2.EffectiveColor())
}
