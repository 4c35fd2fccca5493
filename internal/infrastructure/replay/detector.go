package replay

import (
	"context"
	"fmt"
	"sync"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

// RememberWindow сколько последних номеров кадров хранит Detector.
const RememberWindow = 64

// Detector отдаёт детекции, записанные вместе с кадром.
// Для кадров без записи вызывает fallback, если он задан.
type Detector struct {
	mu       sync.Mutex
	bySeq    map[int64][]entity.Detection
	lastSeq  int64
	fallback port.PPEDetector
}

// NewDetector создаёт детектор повтора; fallback может быть nil.
func NewDetector(fallback port.PPEDetector) *Detector {
	return &Detector{
		bySeq:    make(map[int64][]entity.Detection),
		fallback: fallback,
	}
}

// Remember запоминает детекции записи до вызова Detect для её кадра.
// Хранятся только последние RememberWindow номеров. Номер меньше предыдущего
// означает новый поток, и всё запомненное раньше забывается.
func (d *Detector) Remember(rec Record) {
	seq := rec.Frame.Seq

	d.mu.Lock()
	defer d.mu.Unlock()

	if seq < d.lastSeq {
		clear(d.bySeq)
	}
	d.lastSeq = seq

	if !rec.HasDetections {
		delete(d.bySeq, seq)
		return
	}
	d.bySeq[seq] = rec.Detections

	for s := range d.bySeq {
		if s <= seq-RememberWindow {
			delete(d.bySeq, s)
		}
	}
}

// Len число запомненных кадров
func (d *Detector) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.bySeq)
}

// Detect возвращает записанные детекции кадра; более ранние записи забываются.
func (d *Detector) Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	d.mu.Lock()
	detections, ok := d.bySeq[frame.Seq]
	for seq := range d.bySeq {
		if seq <= frame.Seq {
			delete(d.bySeq, seq)
		}
	}
	d.mu.Unlock()

	if ok {
		return detections, nil
	}
	if d.fallback != nil {
		return d.fallback.Detect(ctx, frame)
	}
	return nil, fmt.Errorf("%w: seq %d", ErrNoDetections, frame.Seq)
}

var _ port.PPEDetector = (*Detector)(nil)
