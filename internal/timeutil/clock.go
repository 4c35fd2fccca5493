// Package timeutil даёт подменяемые часы для детерминированных тестов и повторов.
package timeutil

import (
	"sync"
	"time"
)

// Clock источник времени для гейта и сервисов.
type Clock interface {
	// Now возвращает текущее время.
	Now() time.Time

	// Since возвращает длительность с момента t.
	Since(t time.Time) time.Duration
}

// RealClock реализует Clock поверх пакета time.
// time.Now несёт монотонную составляющую, поэтому разности не прыгают при смене системного времени.
type RealClock struct{}

// Now возвращает текущее время.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Since возвращает время, прошедшее с t.
func (RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// MockClock часы с ручным управлением для тестов и режима повтора.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock создаёт MockClock, выставленный на t.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

// Now возвращает подставное текущее время.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set выставляет часы на конкретный момент.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance сдвигает часы вперёд на d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Since возвращает длительность с момента t.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

var (
	_ Clock = RealClock{}
	_ Clock = (*MockClock)(nil)
)
