package port

import (
	"context"

	"ppe-gate/internal/domain/entity"
)

// PPEDetector интерфейс детектора средств защиты
type PPEDetector interface {
	// Detect находит СИЗ на кадре и возвращает рамки в пикселях кадра
	Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error)
}

// FrameAnnotator рисует результат сверки поверх кадра
type FrameAnnotator interface {
	// Annotate возвращает JPEG с рамками: совпавшие зелёные, не на месте жёлтые
	Annotate(image []byte, detections []entity.MatchedDetection) ([]byte, error)
}
