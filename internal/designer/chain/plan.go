package chain

import (
	"errors"
	"fmt"

	"track-designer/internal/designer/models"
)

// ============================================================
// Dependency plan
// ============================================================

var (
	// ErrAnchorCycle — связи последовательностей образуют цикл,
	// порядок пересчета не существует.
	ErrAnchorCycle = errors.New("chain: sequence links form a cycle")
	// ErrUnknownAnchorShape — якорь ссылается на деталь, не
	// принадлежащую ни одной последовательности документа.
	ErrUnknownAnchorShape = errors.New("chain: anchor references shape outside the design")
)

// Plan строит порядок обработки: каждая последовательность идет после
// той, в чью деталь она заякорена. Явная топологическая сортировка
// вместо соглашения «порядок списка = порядок зависимостей».
func Plan(d *models.Design) ([]*models.Sequence, error) {
	owner := make(map[string]*models.Sequence)
	for _, seq := range d.Sequences {
		for _, s := range seq.Shapes {
			owner[s.ID] = seq
		}
	}

	// ребро dep → seq; считаем входящие степени, отсутствие ключа
	// читается как ноль
	indegree := make(map[*models.Sequence]int, len(d.Sequences))
	dependents := make(map[*models.Sequence][]*models.Sequence)
	for _, seq := range d.Sequences {
		anchor, ok := seq.Anchor.(models.LinkedAnchor)
		if !ok {
			continue
		}
		dep, found := owner[anchor.Shape.ID]
		if !found {
			return nil, fmt.Errorf("%w: sequence %s → shape %s",
				ErrUnknownAnchorShape, seq.Name, anchor.Shape.ID)
		}
		if dep == seq {
			return nil, fmt.Errorf("%w: sequence %s links into itself", ErrAnchorCycle, seq.Name)
		}
		dependents[dep] = append(dependents[dep], seq)
		indegree[seq]++
	}

	// Kahn; очередь в порядке объявления, чтобы результат был стабильным
	var queue []*models.Sequence
	for _, seq := range d.Sequences {
		if indegree[seq] == 0 {
			queue = append(queue, seq)
		}
	}

	ordered := make([]*models.Sequence, 0, len(d.Sequences))
	for len(queue) > 0 {
		seq := queue[0]
		queue = queue[1:]
		ordered = append(ordered, seq)
		for _, next := range dependents[seq] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(ordered) != len(d.Sequences) {
		return nil, ErrAnchorCycle
	}
	return ordered, nil
}
