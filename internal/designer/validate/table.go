package validate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ============================================================
// Compatibility table
// ============================================================

// pairKey — неупорядоченная пара ключей каталога.
type pairKey struct {
	a, b string
}

func newPairKey(k1, k2 string) pairKey {
	if k1 > k2 {
		k1, k2 = k2, k1
	}
	return pairKey{a: k1, b: k2}
}

// Rule — строка внешней таблицы совместимости.
type Rule struct {
	Key1                  string `yaml:"key1"`
	Key2                  string `yaml:"key2"`
	AllowsSameOrientation bool   `yaml:"allows_same_orientation"`
}

// Table — симметричные наборы смежности и исключений по ориентации.
// allowAll — документированный деградированный режим: таблицу
// загрузить не удалось, все пары допустимы.
type Table struct {
	adjacency  map[pairKey]bool
	exceptions map[pairKey]bool
	restricted map[string]bool
	allowAll   bool
}

// AllowAll — таблица, допускающая любые пары (режим деградации).
func AllowAll() *Table {
	return &Table{allowAll: true}
}

// NewTable собирает таблицу из строк.
func NewTable(rules []Rule) *Table {
	t := &Table{
		adjacency:  make(map[pairKey]bool, len(rules)),
		exceptions: make(map[pairKey]bool),
		restricted: make(map[string]bool),
	}
	for _, r := range rules {
		pk := newPairKey(r.Key1, r.Key2)
		t.adjacency[pk] = true
		if r.AllowsSameOrientation {
			t.exceptions[pk] = true
		}
		t.restricted[r.Key1] = true
		t.restricted[r.Key2] = true
	}
	return t
}

// AllowsPair — пара допустима таблицей смежности. Ключи, для которых
// нет ни одного правила, допустимы по умолчанию.
func (t *Table) AllowsPair(k1, k2 string) bool {
	if t.allowAll {
		return true
	}
	if !t.restricted[k1] && !t.restricted[k2] {
		return true
	}
	return t.adjacency[newPairKey(k1, k2)]
}

// AllowsSameOrientation — паре явно разрешено совпадение ориентаций.
func (t *Table) AllowsSameOrientation(k1, k2 string) bool {
	if t.allowAll {
		return true
	}
	return t.exceptions[newPairKey(k1, k2)]
}

// ============================================================
// Loading
// ============================================================

type tableFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadTable читает таблицу из внешнего YAML-файла.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read compatibility table: %w", err)
	}
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse compatibility table: %w", err)
	}
	return NewTable(file.Rules), nil
}
