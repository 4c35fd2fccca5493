package vision

import (
	"errors"
	"image/color"

	"ppe-gate/internal/domain/entity"
)

// ErrGoCVDisabled сборка без тега gocv
var ErrGoCVDisabled = errors.New("gocv build tag is not enabled")

// DetectorConfig файлы сети darknet и пороги детектора СИЗ
type DetectorConfig struct {
	ModelConfig  string  // yolov4-*.cfg
	ModelWeights string  // *.weights
	Confidence   float64 // минимальная уверенность класса
	NMS          float64 // порог подавления пересекающихся рамок
	InputSize    int     // сторона квадратного входа сети
}

// DefaultDetectorConfig пороги, на которых обучалась сеть поста.
func DefaultDetectorConfig() DetectorConfig {
	return DetectorConfig{
		Confidence: 0.9,
		NMS:        0.3,
		InputSize:  416,
	}
}

// decodeRow разбирает строку выхода YOLO: cx, cy, w, h в долях входа, objectness, оценки классов.
// Рамка переводится в пиксели кадра.
func decodeRow(row []float32, frameWidth, frameHeight int, minConfidence float64) (entity.Detection, bool) {
	if len(row) <= 5 {
		return entity.Detection{}, false
	}

	best, bestScore := -1, float32(0)
	for i, score := range row[5:] {
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 || float64(bestScore) <= minConfidence {
		return entity.Detection{}, false
	}
	class := entity.PPEClass(best)
	if !class.Valid() {
		return entity.Detection{}, false
	}

	cx := float64(row[0]) * float64(frameWidth)
	cy := float64(row[1]) * float64(frameHeight)
	w := float64(row[2]) * float64(frameWidth)
	h := float64(row[3]) * float64(frameHeight)

	return entity.Detection{
		Class: class,
		Box: entity.BoundingBox{
			X:      int(cx - w/2),
			Y:      int(cy - h/2),
			Width:  int(w),
			Height: int(h),
		},
		Confidence: float64(bestScore),
	}, true
}

// outcomeColor цвет рамки на подписанном кадре
func outcomeColor(o entity.MatchOutcome) color.RGBA {
	if o.Matched() {
		return color.RGBA{G: 255, A: 255}
	}
	return color.RGBA{R: 255, G: 255, A: 255}
}
