package entity

import (
	"fmt"
	"strings"
)

// RequiredSet какие СИЗ обязательны для допуска.
// Значение читается ядром только на чтение; менять через With.
type RequiredSet map[PPEClass]bool

// AllRequired набор со всеми семью классами.
func AllRequired() RequiredSet {
	rs := make(RequiredSet, NumClasses)
	for _, c := range AllClasses() {
		rs[c] = true
	}
	return rs
}

// NewRequiredSet набор из перечисленных классов.
func NewRequiredSet(classes ...PPEClass) RequiredSet {
	rs := make(RequiredSet, len(classes))
	for _, c := range classes {
		rs[c] = true
	}
	return rs
}

// ParseRequiredSet разбирает список имён через запятую, например "mask,helmet,gloves".
func ParseRequiredSet(s string) (RequiredSet, error) {
	rs := make(RequiredSet)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParsePPEClass(part)
		if err != nil {
			return nil, err
		}
		rs[c] = true
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return rs, nil
}

// Enabled обязателен ли класс.
func (rs RequiredSet) Enabled(c PPEClass) bool {
	return rs[c]
}

// Count число обязательных классов.
func (rs RequiredSet) Count() int {
	n := 0
	for _, c := range AllClasses() {
		if rs[c] {
			n++
		}
	}
	return n
}

// Classes обязательные классы по возрастанию номера.
func (rs RequiredSet) Classes() []PPEClass {
	out := make([]PPEClass, 0, NumClasses)
	for _, c := range AllClasses() {
		if rs[c] {
			out = append(out, c)
		}
	}
	return out
}

// Validate отклоняет пустой набор и неизвестные классы.
func (rs RequiredSet) Validate() error {
	for c, on := range rs {
		if on && !c.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownClass, int(c))
		}
	}
	if rs.Count() == 0 {
		return ErrEmptyRequiredSet
	}
	return nil
}

// Clone возвращает независимую копию.
func (rs RequiredSet) Clone() RequiredSet {
	out := make(RequiredSet, len(rs))
	for c, on := range rs {
		if on {
			out[c] = true
		}
	}
	return out
}

// With возвращает копию с изменённым флагом класса.
func (rs RequiredSet) With(c PPEClass, enabled bool) RequiredSet {
	out := rs.Clone()
	if enabled {
		out[c] = true
	} else {
		delete(out, c)
	}
	return out
}

func (rs RequiredSet) String() string {
	names := make([]string, 0, NumClasses)
	for _, c := range rs.Classes() {
		names = append(names, c.String())
	}
	return strings.Join(names, ",")
}
