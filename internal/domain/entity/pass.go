package entity

import "time"

// ClassStatus итог по классу за один проход проверки
type ClassStatus string

const (
	StatusUndetected ClassStatus = "undetected" // не найден или найден не на месте
	StatusMatched    ClassStatus = "matched"    // найден и надет правильно
)

// AccessDecision итоговое решение о допуске
type AccessDecision string

const (
	DecisionGranted   AccessDecision = "granted"   // доступ разрешён
	DecisionMisplaced AccessDecision = "misplaced" // СИЗ надет неправильно
	DecisionDenied    AccessDecision = "denied"    // доступ запрещён
)

// PassResult статусы классов и число «не на месте» за один проход.
type PassResult struct {
	Statuses   map[PPEClass]ClassStatus `json:"statuses"`
	Confidence map[PPEClass]float64     `json:"confidence"` // лучшая уверенность детектора по классу
	Misplaced  int                      `json:"misplaced"`
}

// NewPassResult результат, где все классы не найдены.
func NewPassResult() PassResult {
	r := PassResult{
		Statuses:   make(map[PPEClass]ClassStatus, NumClasses),
		Confidence: make(map[PPEClass]float64, NumClasses),
	}
	for _, c := range AllClasses() {
		r.Statuses[c] = StatusUndetected
	}
	return r
}

// Status возвращает статус класса; отсутствующий ключ считается ненайденным.
func (r PassResult) Status(c PPEClass) ClassStatus {
	if s, ok := r.Statuses[c]; ok {
		return s
	}
	return StatusUndetected
}

// PassOutcome всё, что нужно интерфейсу и журналу после прохода проверки.
type PassOutcome struct {
	ID         string             `json:"id"`
	FrameSeq   int64              `json:"frame_seq"`
	At         time.Time          `json:"at"`
	Decision   AccessDecision     `json:"decision"`
	Result     PassResult         `json:"result"`
	Detections []MatchedDetection `json:"detections"`
	Required   RequiredSet        `json:"required"`
}
