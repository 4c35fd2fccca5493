package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/inspection"
	"ppe-gate/internal/domain/port"
	"ppe-gate/internal/timeutil"
)

// ErrPassAborted проход прерван без решения, например не хватило точек позы.
var ErrPassAborted = errors.New("pass aborted")

// InspectionService ведёт гейт по кадрам и выполняет проходы проверки.
//
// Гейтом владеет один цикл: ProcessFrame или Run, но не оба одновременно.
type InspectionService struct {
	gate      *inspection.PostureGate
	matcher   *inspection.ZoneMatcher
	detector  port.PPEDetector
	session   *Session
	clock     timeutil.Clock
	log       zerolog.Logger
	notifiers []port.Notifier
	recorders []port.PassRecorder
	newID     func() string
}

// NewInspectionService создаёт сервис, который управляет проверкой СИЗ на посту.
func NewInspectionService(
	gate *inspection.PostureGate,
	matcher *inspection.ZoneMatcher,
	detector port.PPEDetector,
	session *Session,
	clock timeutil.Clock,
	logger zerolog.Logger,
) *InspectionService {
	return &InspectionService{
		gate:     gate,
		matcher:  matcher,
		detector: detector,
		session:  session,
		clock:    clock,
		log:      logger.With().Str("component", "inspection").Logger(),
		newID:    uuid.NewString,
	}
}

// AddNotifier подписывает получателя событий и итогов.
func (s *InspectionService) AddNotifier(n port.Notifier) {
	s.notifiers = append(s.notifiers, n)
}

// AddRecorder подключает запись проходов.
func (s *InspectionService) AddRecorder(r port.PassRecorder) {
	s.recorders = append(s.recorders, r)
}

// ProcessFrame обрабатывает кадр и, если гейт разрешил, выполняет проход синхронно.
// Возвращает nil итог, если прохода на этом кадре не было.
func (s *InspectionService) ProcessFrame(ctx context.Context, frame entity.Frame) (*entity.PassOutcome, error) {
	if !s.observe(ctx, frame) {
		return nil, nil
	}
	defer s.gate.Complete()

	outcome, err := s.runPass(ctx, frame)
	if err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Run читает кадры до закрытия канала или отмены контекста.
// Проход выполняется в отдельной горутине, гейт не начинает новое удержание, пока она не закончит.
func (s *InspectionService) Run(ctx context.Context, frames <-chan entity.Frame) error {
	jobs := make(chan entity.Frame, 1)
	done := make(chan struct{}, 1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for frame := range jobs {
			if _, err := s.runPass(ctx, frame); err != nil {
				s.log.Error().Err(err).Int64("frame", frame.Seq).Msg("pass failed")
			}
			done <- struct{}{}
		}
	}()
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-done:
			s.gate.Complete()
		case frame, ok := <-frames:
			if !ok {
				return nil
			}
			if s.observe(ctx, frame) {
				jobs <- frame
			}
		}
	}
}

func (s *InspectionService) observe(ctx context.Context, frame entity.Frame) bool {
	authorized := false
	for _, event := range s.gate.Observe(frame.Landmarks) {
		if event.Kind == entity.EventVerificationAuthorized {
			authorized = true
		}
		s.log.Debug().Str("event", string(event.Kind)).Int("level", event.Level).Int64("frame", frame.Seq).Msg("gate event")
		for _, n := range s.notifiers {
			if err := n.NotifyGateEvent(ctx, event); err != nil {
				s.log.Warn().Err(err).Str("event", string(event.Kind)).Msg("notify gate event")
			}
		}
	}
	return authorized
}

func (s *InspectionService) runPass(ctx context.Context, frame entity.Frame) (entity.PassOutcome, error) {
	required := s.session.Required()

	detections, err := s.detector.Detect(ctx, frame)
	if err != nil {
		return entity.PassOutcome{}, fmt.Errorf("detect ppe: %w", err)
	}

	verdict, err := inspection.Verify(s.matcher, detections, frame.Landmarks, required)
	if err != nil {
		s.log.Warn().Err(err).Int64("frame", frame.Seq).Msg("pass aborted")
		return entity.PassOutcome{}, fmt.Errorf("%w: %w", ErrPassAborted, err)
	}

	outcome := entity.PassOutcome{
		ID:         s.newID(),
		FrameSeq:   frame.Seq,
		At:         s.clock.Now(),
		Decision:   verdict.Decision,
		Result:     verdict.Result,
		Detections: verdict.Detections,
		Required:   required,
	}

	s.log.Info().
		Str("pass", outcome.ID).
		Str("decision", string(outcome.Decision)).
		Int("detections", len(outcome.Detections)).
		Int("misplaced", outcome.Result.Misplaced).
		Str("required", required.String()).
		Msg("pass decided")

	for _, n := range s.notifiers {
		if err := n.NotifyOutcome(ctx, outcome); err != nil {
			s.log.Warn().Err(err).Str("pass", outcome.ID).Msg("notify outcome")
		}
	}
	for _, r := range s.recorders {
		if err := r.Record(ctx, outcome, frame); err != nil {
			s.log.Error().Err(err).Str("pass", outcome.ID).Msg("record pass")
		}
	}

	return outcome, nil
}
