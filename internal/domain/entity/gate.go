package entity

import "time"

// GateState состояние гейта позы; принадлежит только гейту.
type GateState struct {
	HoldLevel     int       `json:"hold_level"`      // 0..3
	HoldStartedAt time.Time `json:"hold_started_at"` // начало последнего удержания
	LastPassAt    time.Time `json:"last_pass_at"`    // нулевое значение: проходов не было или экран уже сброшен
	InFlight      bool      `json:"in_flight"`       // проход проверки ещё не завершён
}

// GateEventKind тип события гейта
type GateEventKind string

const (
	EventHoldLevelChanged       GateEventKind = "hold_level_changed"
	EventVerificationAuthorized GateEventKind = "verification_authorized"
	EventDisplayResetRequested  GateEventKind = "display_reset_requested"
)

// GateEvent событие для экрана и журнала
type GateEvent struct {
	Kind  GateEventKind `json:"kind"`
	Level int           `json:"level"`
	At    time.Time     `json:"at"`
}
