package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

const (
	positiveDir = "positive"
	negativeDir = "negative"
)

// FileArchive складывает кадры проходов и разметку YOLO для дообучения детектора.
// Кадры с детекциями идут в positive/, без детекций в negative/.
type FileArchive struct {
	root      string
	annotator port.FrameAnnotator
}

// NewFileArchive создаёт каталоги архива. annotator может быть nil.
func NewFileArchive(root string, annotator port.FrameAnnotator) (*FileArchive, error) {
	for _, dir := range []string{positiveDir, negativeDir} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create archive dir: %w", err)
		}
	}
	return &FileArchive{root: root, annotator: annotator}, nil
}

// Record пишет кадр, подписанный кадр и файл разметки.
func (a *FileArchive) Record(ctx context.Context, outcome entity.PassOutcome, frame entity.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	dir := negativeDir
	if len(outcome.Detections) > 0 {
		dir = positiveDir
	}
	base := filepath.Join(a.root, dir, archiveName(outcome))

	if len(frame.Image) > 0 {
		if err := os.WriteFile(base+".jpg", frame.Image, 0o644); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
		if a.annotator != nil && len(outcome.Detections) > 0 {
			annotated, err := a.annotator.Annotate(frame.Image, outcome.Detections)
			if err != nil {
				return fmt.Errorf("annotate frame: %w", err)
			}
			if err := os.WriteFile(base+"_annotated.jpg", annotated, 0o644); err != nil {
				return fmt.Errorf("write annotated frame: %w", err)
			}
		}
	}

	labels := YOLOLabels(outcome.Detections, frame.Width, frame.Height)
	if err := os.WriteFile(base+".txt", []byte(labels), 0o644); err != nil {
		return fmt.Errorf("write labels: %w", err)
	}
	return nil
}

// YOLOLabels строки "class cx cy w h" в долях кадра, по одной на детекцию.
func YOLOLabels(detections []entity.MatchedDetection, width, height int) string {
	var b strings.Builder
	for _, d := range detections {
		cx, cy, w, h := d.Box.Normalized(width, height)
		fmt.Fprintf(&b, "%d %.6f %.6f %.6f %.6f\n", int(d.Class), cx, cy, w, h)
	}
	return b.String()
}

func archiveName(o entity.PassOutcome) string {
	name := o.At.UTC().Format("20060102_150405.000")
	if o.ID != "" {
		id := o.ID
		if len(id) > 8 {
			id = id[:8]
		}
		name += "_" + id
	}
	return name
}

var _ port.PassRecorder = (*FileArchive)(nil)
