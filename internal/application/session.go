package app

import (
	"fmt"
	"sync"

	"ppe-gate/internal/domain/entity"
)

// Session настройки поста, которые оператор меняет на ходу.
// Проход берёт снимок набора в начале, изменения действуют со следующего прохода.
type Session struct {
	mu       sync.RWMutex
	required entity.RequiredSet
}

// NewSession создаёт сессию с проверенным набором обязательных СИЗ.
func NewSession(required entity.RequiredSet) (*Session, error) {
	if err := required.Validate(); err != nil {
		return nil, fmt.Errorf("required ppe: %w", err)
	}
	return &Session{required: required.Clone()}, nil
}

// Required возвращает копию текущего набора.
func (s *Session) Required() entity.RequiredSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.required.Clone()
}

// SetRequired заменяет набор целиком; пустой набор отклоняется.
func (s *Session) SetRequired(required entity.RequiredSet) (entity.RequiredSet, error) {
	if err := required.Validate(); err != nil {
		return nil, fmt.Errorf("required ppe: %w", err)
	}

	s.mu.Lock()
	s.required = required.Clone()
	s.mu.Unlock()

	return required.Clone(), nil
}

// Toggle включает или выключает класс; выключить последний нельзя.
func (s *Session) Toggle(c entity.PPEClass) (entity.RequiredSet, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %d", entity.ErrUnknownClass, int(c))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.required.With(c, !s.required.Enabled(c))
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("toggle %s: %w", c, err)
	}
	s.required = next
	return next.Clone(), nil
}
