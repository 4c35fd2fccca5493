package entity

import (
	"fmt"
	"strings"
)

// PPEClass класс средства индивидуальной защиты; номер совпадает со строкой файла меток детектора.
type PPEClass int

const (
	Mask PPEClass = iota
	Helmet
	Glasses
	EarProtection
	Vest
	Glove
	Boot

	NumClasses = 7
)

var classNames = [NumClasses]string{"mask", "helmet", "glasses", "ear_protection", "vest", "glove", "boot"}

// синонимы для ввода оператором и из переменных окружения
var classAliases = map[string]PPEClass{
	"masks":         Mask,
	"helmets":       Helmet,
	"goggles":       Glasses,
	"earprotection": EarProtection,
	"earmuffs":      EarProtection,
	"vests":         Vest,
	"gloves":        Glove,
	"boots":         Boot,
}

// AllClasses возвращает все классы в порядке номеров.
func AllClasses() []PPEClass {
	out := make([]PPEClass, NumClasses)
	for i := range out {
		out[i] = PPEClass(i)
	}
	return out
}

// Valid сообщает, известен ли класс.
func (c PPEClass) Valid() bool {
	return c >= 0 && c < NumClasses
}

// Bilateral true для предметов, которые нужно подтвердить с обеих сторон тела.
func (c PPEClass) Bilateral() bool {
	return c == Glove || c == Boot
}

func (c PPEClass) String() string {
	if !c.Valid() {
		return fmt.Sprintf("class(%d)", int(c))
	}
	return classNames[c]
}

// MarshalText кодирует класс именем.
func (c PPEClass) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClass, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText разбирает имя класса.
func (c *PPEClass) UnmarshalText(text []byte) error {
	parsed, err := ParsePPEClass(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParsePPEClass разбирает имя класса без учёта регистра; дефисы и пробелы считаются подчёркиваниями.
func ParsePPEClass(s string) (PPEClass, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for i, n := range classNames {
		if n == key {
			return PPEClass(i), nil
		}
	}
	if c, ok := classAliases[strings.ReplaceAll(key, "_", "")]; ok {
		return c, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}

// MatchOutcome результат сверки одной детекции с зоной тела
type MatchOutcome int

const (
	NoMatch MatchOutcome = iota
	Match
	MatchRight
	MatchLeft
)

func (o MatchOutcome) String() string {
	switch o {
	case Match:
		return "match"
	case MatchRight:
		return "match_right"
	case MatchLeft:
		return "match_left"
	default:
		return "no_match"
	}
}

// Matched true для любого успешного исхода.
func (o MatchOutcome) Matched() bool {
	return o != NoMatch
}

// MarshalText кодирует исход строкой.
func (o MatchOutcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText разбирает исход из строки.
func (o *MatchOutcome) UnmarshalText(text []byte) error {
	for _, v := range []MatchOutcome{NoMatch, Match, MatchRight, MatchLeft} {
		if v.String() == string(text) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("unknown match outcome %q", text)
}

// Detection предмет, найденный внешним детектором (уже после NMS)
type Detection struct {
	Class      PPEClass    `json:"class"`
	Box        BoundingBox `json:"box"`
	Confidence float64     `json:"confidence"`
}

// MatchedDetection детекция вместе с исходом сверки
type MatchedDetection struct {
	Detection
	Outcome MatchOutcome `json:"outcome"`
}
