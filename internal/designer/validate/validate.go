package validate

import (
	"fmt"

	"track-designer/internal/designer/models"
)

// ============================================================
// Validation results
// ============================================================

// Code — тип отказа. Отказы возвращаются значениями, не ошибками:
// вызывающий сам решает, показать, повторить или отменить мутацию.
type Code string

const (
	CodeTerminalViolation   Code = "terminal_violation"
	CodeOrientationConflict Code = "orientation_conflict"
	CodeIncompatiblePair    Code = "incompatible_pair"
	CodeColorConflict       Code = "color_conflict"
)

type Result struct {
	OK      bool   `json:"ok"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func allowed() Result {
	return Result{OK: true}
}

func rejected(code Code, format string, args ...any) Result {
	return Result{OK: false, Code: code, Message: fmt.Sprintf(format, args...)}
}

// ============================================================
// Validator
// ============================================================

type Validator struct {
	table *Table
}

func New(table *Table) *Validator {
	if table == nil {
		table = AllowAll()
	}
	return &Validator{table: table}
}

// ValidateAdd проверяет вставку детали в позицию index: деталь не может
// встать сразу после терминальной, а терминальная — куда-либо, кроме
// конца цепочки.
func (v *Validator) ValidateAdd(seq *models.Sequence, shape *models.Shape, index int) Result {
	if index < 0 {
		index = 0
	}
	if index > len(seq.Shapes) {
		index = len(seq.Shapes)
	}
	if index > 0 {
		prev := seq.Shapes[index-1]
		if prev.IsTerminal() {
			return rejected(CodeTerminalViolation,
				"shape %s cannot follow terminal shape %s", shape.Key, prev.Key)
		}
	}
	if shape.IsTerminal() && index < len(seq.Shapes) {
		return rejected(CodeTerminalViolation,
			"terminal shape %s must end the sequence", shape.Key)
	}
	return allowed()
}

// ValidateLink проверяет привязку последовательности (ее первая деталь
// candidate) к детали anchor другой последовательности.
//
// При invert структурных ограничений нет, но эффективные цвета обязаны
// различаться. Без invert пара ключей обязана либо числиться в наборе
// исключений (разрешено совпадение ориентаций), либо иметь разные
// ориентации; кроме того, пара должна быть допустима таблицей
// смежности — ключи без единого правила допустимы по умолчанию.
func (v *Validator) ValidateLink(anchor, candidate *models.Shape, invert bool) Result {
	if invert {
		if anchor.EffectiveColor() == candidate.EffectiveColor() {
			return rejected(CodeColorConflict,
				"inverted link %s → %s requires different colors", candidate.Key, anchor.Key)
		}
		return allowed()
	}

	if !v.table.AllowsSameOrientation(anchor.Key, candidate.Key) &&
		anchor.Orientation == candidate.Orientation {
		return rejected(CodeOrientationConflict,
			"shapes %s and %s cannot share orientation %d", anchor.Key, candidate.Key, anchor.Orientation)
	}

	if !v.table.AllowsPair(anchor.Key, candidate.Key) {
		return rejected(CodeIncompatiblePair,
			"shapes %s and %s cannot be adjacent", anchor.Key, candidate.Key)
	}

	return allowed()
}
