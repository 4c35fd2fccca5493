package replay

import (
	"context"
	"errors"
	"io"

	"github.com/rs/zerolog"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/timeutil"
)

// FrameProcessor то, что умеет обработать кадр целиком (гейт и проход)
type FrameProcessor interface {
	ProcessFrame(ctx context.Context, frame entity.Frame) (*entity.PassOutcome, error)
}

// Stats итоги прогона записи
type Stats struct {
	Frames    int                           `json:"frames"`
	Passes    int                           `json:"passes"`
	Aborted   int                           `json:"aborted"`
	Decisions map[entity.AccessDecision]int `json:"decisions"`
}

// Play прогоняет запись синхронно. Часы переводятся на метку каждого кадра,
// поэтому результат не зависит от скорости машины.
func Play(ctx context.Context, src *Source, clock *timeutil.MockClock, det *Detector, proc FrameProcessor, logger zerolog.Logger) (Stats, error) {
	stats := Stats{Decisions: make(map[entity.AccessDecision]int)}

	for {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			return stats, nil
		}
		if err != nil {
			return stats, err
		}

		stats.Frames++
		clock.Set(rec.Frame.CapturedAt)
		det.Remember(rec)

		outcome, err := proc.ProcessFrame(ctx, rec.Frame)
		if err != nil {
			stats.Aborted++
			logger.Warn().Err(err).Int64("frame", rec.Frame.Seq).Msg("replay pass aborted")
			continue
		}
		if outcome != nil {
			stats.Passes++
			stats.Decisions[outcome.Decision]++
		}
	}
}
