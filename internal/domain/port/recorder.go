package port

import (
	"context"

	"ppe-gate/internal/domain/entity"
)

// PassRecorder сохраняет итог прохода вместе с кадром
type PassRecorder interface {
	Record(ctx context.Context, outcome entity.PassOutcome, frame entity.Frame) error
}

// PassHistory журнал проходов
type PassHistory interface {
	// Recent возвращает последние limit проходов, новые первыми
	Recent(ctx context.Context, limit int) ([]entity.PassOutcome, error)
}
