package inspection

import (
	"fmt"
	"time"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/timeutil"
)

// MaxHoldLevel уровень, на котором гейт разрешает проход проверки.
const MaxHoldLevel = 3

// AngleRange открытый интервал углов в градусах.
type AngleRange struct {
	Min float64
	Max float64
}

// Within true, если угол строго внутри интервала.
func (r AngleRange) Within(deg float64) bool {
	return r.Min < deg && deg < r.Max
}

// GateConfig пороги позы и таймеры гейта.
type GateConfig struct {
	LeftArm     AngleRange    // плечо-локоть-запястье слева
	RightArm    AngleRange    // то же справа, зеркальная конвенция
	Cooldown    time.Duration // минимум между началами удержаний (переход 0→1)
	Level1Dwell time.Duration // выдержка на уровне 1
	Level2Dwell time.Duration // выдержка на уровне 2
	IdleReset   time.Duration // сброс экрана после последнего прохода
}

// DefaultGateConfig пороги и тайминги поста досмотра.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		LeftArm:     AngleRange{Min: 20, Max: 160},
		RightArm:    AngleRange{Min: -160, Max: -20},
		Cooldown:    5 * time.Second,
		Level1Dwell: 1 * time.Second,
		Level2Dwell: 2 * time.Second,
		IdleReset:   30 * time.Second,
	}
}

// Validate отклоняет вырожденные интервалы и отрицательные длительности.
func (c GateConfig) Validate() error {
	if c.LeftArm.Min >= c.LeftArm.Max || c.RightArm.Min >= c.RightArm.Max {
		return fmt.Errorf("invalid arm angle range: left=%v right=%v", c.LeftArm, c.RightArm)
	}
	if c.Cooldown < 0 || c.Level1Dwell < 0 || c.Level2Dwell < 0 || c.IdleReset <= 0 {
		return fmt.Errorf("invalid gate timings: cooldown=%s dwell=%s/%s idle=%s",
			c.Cooldown, c.Level1Dwell, c.Level2Dwell, c.IdleReset)
	}
	return nil
}

// HoldDuration полное удержание от уровня 1 до разрешения прохода.
func (c GateConfig) HoldDuration() time.Duration {
	return c.Level1Dwell + c.Level2Dwell
}

// Qualifies проверяет позу досмотра: обе руки согнуты в допустимых пределах.
func (c GateConfig) Qualifies(set entity.LandmarkSet) (bool, error) {
	left, err := LandmarkAngle(set, entity.LeftShoulder, entity.LeftElbow, entity.LeftWrist)
	if err != nil {
		return false, err
	}
	right, err := LandmarkAngle(set, entity.RightShoulder, entity.RightElbow, entity.RightWrist)
	if err != nil {
		return false, err
	}
	return c.LeftArm.Within(left) && c.RightArm.Within(right), nil
}

// PostureGate решает по кадрам, удержал ли человек позу досмотра достаточно долго.
//
// Гейт не потокобезопасен: им владеет один цикл обработки кадров.
type PostureGate struct {
	cfg   GateConfig
	clock timeutil.Clock
	state entity.GateState
}

// NewPostureGate создаёт гейт в состоянии покоя.
func NewPostureGate(cfg GateConfig, clock timeutil.Clock) *PostureGate {
	return &PostureGate{cfg: cfg, clock: clock}
}

// Observe обрабатывает точки позы очередного кадра и возвращает события гейта.
//
// Уровень растёт не больше чем на один за кадр. Кадр без нужных точек или с
// неподходящей позой сбрасывает уровень в 0. Пока проход проверки не завершён
// (Complete), новое удержание не начинается.
func (g *PostureGate) Observe(landmarks entity.LandmarkSet) []entity.GateEvent {
	now := g.clock.Now()
	var events []entity.GateEvent

	qualifies, err := g.cfg.Qualifies(landmarks)
	switch {
	case err != nil || !qualifies:
		events = g.setLevel(events, now, 0)
	case g.state.InFlight:
		events = g.setLevel(events, now, 0)
	default:
		events = g.advance(events, now)
	}

	if !g.state.LastPassAt.IsZero() && now.Sub(g.state.LastPassAt) >= g.cfg.IdleReset {
		g.state.LastPassAt = time.Time{}
		events = append(events, entity.GateEvent{Kind: entity.EventDisplayResetRequested, At: now})
	}

	return events
}

func (g *PostureGate) advance(events []entity.GateEvent, now time.Time) []entity.GateEvent {
	held := now.Sub(g.state.HoldStartedAt)

	switch g.state.HoldLevel {
	case 0:
		if g.state.HoldStartedAt.IsZero() || held >= g.cfg.Cooldown {
			g.state.HoldStartedAt = now
			events = g.setLevel(events, now, 1)
		}
	case 1:
		if held >= g.cfg.Level1Dwell {
			events = g.setLevel(events, now, 2)
		}
	case 2:
		if held >= g.cfg.HoldDuration() {
			events = g.setLevel(events, now, MaxHoldLevel)
			events = append(events, entity.GateEvent{Kind: entity.EventVerificationAuthorized, Level: MaxHoldLevel, At: now})
			g.state.InFlight = true
			g.state.LastPassAt = now
			events = g.setLevel(events, now, 0)
		}
	}

	return events
}

func (g *PostureGate) setLevel(events []entity.GateEvent, now time.Time, level int) []entity.GateEvent {
	if g.state.HoldLevel == level {
		return events
	}
	g.state.HoldLevel = level
	return append(events, entity.GateEvent{Kind: entity.EventHoldLevelChanged, Level: level, At: now})
}

// Complete отмечает завершение прохода проверки, после чего гейт снова принимает позу.
func (g *PostureGate) Complete() {
	g.state.InFlight = false
}

// State возвращает копию состояния гейта.
func (g *PostureGate) State() entity.GateState {
	return g.state
}

// Config возвращает настройки гейта.
func (g *PostureGate) Config() GateConfig {
	return g.cfg
}
