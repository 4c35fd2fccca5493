package app

import (
	"context"
	"sync"
	"time"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

// StatusSnapshot то, что сейчас показано на экране поста.
type StatusSnapshot struct {
	HoldLevel int                 `json:"hold_level"`
	Last      *entity.PassOutcome `json:"last,omitempty"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// StatusBoard держит уровень удержания и последний итог для экрана, бота и REST.
type StatusBoard struct {
	mu   sync.RWMutex
	snap StatusSnapshot
}

func NewStatusBoard() *StatusBoard {
	return &StatusBoard{}
}

// NotifyGateEvent обновляет уровень и сбрасывает итог по событию гейта.
func (b *StatusBoard) NotifyGateEvent(_ context.Context, event entity.GateEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch event.Kind {
	case entity.EventHoldLevelChanged:
		b.snap.HoldLevel = event.Level
	case entity.EventDisplayResetRequested:
		b.snap.Last = nil
	}
	b.snap.UpdatedAt = event.At
	return nil
}

// NotifyOutcome показывает итог прохода.
func (b *StatusBoard) NotifyOutcome(_ context.Context, outcome entity.PassOutcome) error {
	b.mu.Lock()
	b.snap.Last = &outcome
	b.snap.UpdatedAt = outcome.At
	b.mu.Unlock()
	return nil
}

// Reset ручной сброс экрана оператором.
func (b *StatusBoard) Reset(at time.Time) {
	b.mu.Lock()
	b.snap.Last = nil
	b.snap.UpdatedAt = at
	b.mu.Unlock()
}

// Snapshot возвращает копию текущего состояния экрана.
func (b *StatusBoard) Snapshot() StatusSnapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := b.snap
	if snap.Last != nil {
		last := *snap.Last
		snap.Last = &last
	}
	return snap
}

var _ port.Notifier = (*StatusBoard)(nil)
