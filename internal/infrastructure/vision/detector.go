//go:build gocv
// +build gocv

package vision

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"

	"gocv.io/x/gocv"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/domain/port"
)

// YOLODetector детектор СИЗ на сети darknet через OpenCV DNN.
type YOLODetector struct {
	cfg      DetectorConfig
	mu       sync.Mutex // сеть не потокобезопасна
	net      gocv.Net
	outNames []string
}

// NewYOLODetector загружает сеть из cfg и weights.
func NewYOLODetector(cfg DetectorConfig) (*YOLODetector, error) {
	net := gocv.ReadNet(cfg.ModelWeights, cfg.ModelConfig)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load darknet model %s", cfg.ModelWeights)
	}
	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	names := net.GetLayerNames()
	ids := net.GetUnconnectedOutLayers()
	outNames := make([]string, 0, len(ids))
	for _, id := range ids {
		outNames = append(outNames, names[id-1])
	}

	return &YOLODetector{cfg: cfg, net: net, outNames: outNames}, nil
}

// Detect прогоняет кадр через сеть, отбрасывает слабые рамки и применяет NMS.
func (d *YOLODetector) Detect(ctx context.Context, frame entity.Frame) ([]entity.Detection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mat, err := decodeToMat(frame.Image)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	size := image.Pt(d.cfg.InputSize, d.cfg.InputSize)
	blob := gocv.BlobFromImage(mat, 1.0/255.0, size, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.mu.Lock()
	d.net.SetInput(blob, "")
	outs := d.net.ForwardLayers(d.outNames)
	d.mu.Unlock()
	defer func() {
		for i := range outs {
			outs[i].Close()
		}
	}()

	var (
		candidates []entity.Detection
		rects      []image.Rectangle
		scores     []float32
	)
	for _, out := range outs {
		row := make([]float32, out.Cols())
		for r := 0; r < out.Rows(); r++ {
			for c := range row {
				row[c] = out.GetFloatAt(r, c)
			}
			det, ok := decodeRow(row, mat.Cols(), mat.Rows(), d.cfg.Confidence)
			if !ok {
				continue
			}
			candidates = append(candidates, det)
			rects = append(rects, image.Rect(det.Box.X, det.Box.Y, det.Box.X+det.Box.Width, det.Box.Y+det.Box.Height))
			scores = append(scores, float32(det.Confidence))
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	keep := gocv.NMSBoxes(rects, scores, float32(d.cfg.Confidence), float32(d.cfg.NMS))
	detections := make([]entity.Detection, 0, len(keep))
	for _, i := range keep {
		detections = append(detections, candidates[i])
	}
	return detections, nil
}

// Close освобождает сеть.
func (d *YOLODetector) Close() error {
	return d.net.Close()
}

// Annotator рисует рамки сверки на кадре.
type Annotator struct{}

// NewAnnotator создаёт рисовальщик рамок.
func NewAnnotator() (*Annotator, error) {
	return &Annotator{}, nil
}

// Annotate рисует рамки с подписью класса и возвращает новый JPEG.
func (a *Annotator) Annotate(imageData []byte, detections []entity.MatchedDetection) ([]byte, error) {
	mat, err := decodeToMat(imageData)
	if err != nil {
		return nil, err
	}
	defer mat.Close()

	for _, det := range detections {
		c := outcomeColor(det.Outcome)
		rect := image.Rect(det.Box.X, det.Box.Y, det.Box.X+det.Box.Width, det.Box.Y+det.Box.Height)
		gocv.Rectangle(&mat, rect, c, 2)
		label := fmt.Sprintf("%s %.2f", det.Class, det.Confidence)
		gocv.PutText(&mat, label, image.Pt(det.Box.X, det.Box.Y-5), gocv.FontHersheySimplex, 0.5, c, 1)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

var (
	_ port.PPEDetector    = (*YOLODetector)(nil)
	_ port.FrameAnnotator = (*Annotator)(nil)
)
