//go:build !gocv
// +build !gocv

package vision

import (
	"context"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

// YOLODetector заглушка без OpenCV.
type YOLODetector struct {
	cfg DetectorConfig
}

// NewYOLODetector возвращает ошибку, если сборка без тега gocv.
func NewYOLODetector(cfg DetectorConfig) (*YOLODetector, error) {
	_ = cfg
	return nil, ErrGoCVDisabled
}

// Detect возвращает ошибку, если сборка без тега gocv.
func (d *YOLODetector) Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	_ = ctx
	_ = frame
	return nil, ErrGoCVDisabled
}

// Close ничего не делает.
func (d *YOLODetector) Close() error {
	return nil
}

// Annotator заглушка без OpenCV.
type Annotator struct{}

// NewAnnotator возвращает ошибку, если сборка без тега gocv.
func NewAnnotator() (*Annotator, error) {
	return nil, ErrGoCVDisabled
}

// Annotate возвращает ошибку, если сборка без тега gocv.
func (a *Annotator) Annotate(imageData []byte, detections []entity.MatchedDetection) ([]byte, error) {
	_ = imageData
	_ = detections
	return nil, ErrGoCVDisabled
}

var (
	_ port.PPEDetector    = (*YOLODetector)(nil)
	_ port.FrameAnnotator = (*Annotator)(nil)
)
