// Package replay прогоняет записанные кадры через пост досмотра без камеры и модели позы.
//
// Формат: JSON Lines, по одному кадру на строку. Точки позы задаются в долях кадра
// и ключуются именами MediaPipe ("left_wrist" или "left wrist"):
//
//	{"seq":1,"ts":"2024-01-15T08:00:00Z","width":640,"height":480,
//	 "image":"frames/0001.jpg",
//	 "mediapipe":{"nose":{"x":0.5,"y":0.2,"z":0,"visibility":0.99}},
//	 "detections":[{"class":"helmet","box":{"x":280,"y":20,"w":80,"h":60},"confidence":0.95}]}
package replay

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ppe-gate/internal/domain/entity"
)

// DefaultFrameInterval шаг времени для кадров без метки
const DefaultFrameInterval = 100 * time.Millisecond

// PositionVisibility нормализованная точка MediaPipe
type PositionVisibility struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Line одна строка записи
type Line struct {
	Seq        int64                         `json:"seq"`
	Timestamp  time.Time                     `json:"ts"`
	Width      int                           `json:"width"`
	Height     int                           `json:"height"`
	Image      string                        `json:"image,omitempty"`
	ImageData  []byte                        `json:"image_data,omitempty"` // JPEG в base64, для кадров из NATS
	Mediapipe  map[string]PositionVisibility `json:"mediapipe"`
	Detections *[]entity.Detection           `json:"detections,omitempty"`
}

// Record кадр и, если записаны, детекции для него
type Record struct {
	Frame         entity.Frame
	Detections    []entity.Detection
	HasDetections bool
}

// Options настройки чтения
type Options struct {
	MinVisibility float64       // точки с меньшей видимостью отбрасываются
	FrameInterval time.Duration // шаг для кадров без метки времени
}

// Source читает записи по одной
type Source struct {
	scanner *bufio.Scanner
	baseDir string
	opts    Options
	line    int
	last    time.Time
	seq     int64
	closer  io.Closer
}

// Open открывает файл записи; пути к кадрам считаются от его каталога
func Open(path string, opts Options) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay: %w", err)
	}
	s := NewSource(f, filepath.Dir(path), opts)
	s.closer = f
	return s, nil
}

// NewSource читает записи из r
func NewSource(r io.Reader, baseDir string, opts Options) *Source {
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Source{scanner: scanner, baseDir: baseDir, opts: opts}
}

// Next возвращает следующую запись или io.EOF
func (s *Source) Next() (Record, error) {
	for s.scanner.Scan() {
		s.line++
		raw := strings.TrimSpace(s.scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		var l Line
		if err := json.Unmarshal([]byte(raw), &l); err != nil {
			return Record{}, fmt.Errorf("replay line %d: %w", s.line, err)
		}
		return s.toRecord(l)
	}
	if err := s.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("read replay: %w", err)
	}
	return Record{}, io.EOF
}

// Close закрывает файл, если источник открыт через Open
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *Source) toRecord(l Line) (Record, error) {
	if l.Width <= 0 || l.Height <= 0 {
		return Record{}, fmt.Errorf("replay line %d: frame size %dx%d", s.line, l.Width, l.Height)
	}

	at := l.Timestamp
	if at.IsZero() {
		at = s.last.Add(s.opts.FrameInterval)
	}
	if !s.last.IsZero() && at.Before(s.last) {
		return Record{}, fmt.Errorf("replay line %d: timestamp %s goes back", s.line, at.Format(time.RFC3339Nano))
	}
	s.last = at

	seq := l.Seq
	if seq == 0 {
		seq = s.seq + 1
	}
	s.seq = seq

	frame := l.Frame(s.opts.MinVisibility)
	frame.Seq = seq
	frame.CapturedAt = at

	if l.Image != "" {
		path := l.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.baseDir, path)
		}
		img, err := os.ReadFile(path)
		if err != nil {
			return Record{}, fmt.Errorf("replay line %d: %w", s.line, err)
		}
		frame.Image = img
	}

	return l.Record(frame), nil
}

// Frame кадр строки как есть: метка времени, номер, точки в пикселях и встроенный JPEG.
func (l Line) Frame(minVisibility float64) entity.Frame {
	return entity.Frame{
		Seq:        l.Seq,
		CapturedAt: l.Timestamp,
		Width:      l.Width,
		Height:     l.Height,
		Image:      l.ImageData,
		Landmarks:  ToLandmarkSet(l.Mediapipe, l.Width, l.Height, minVisibility),
	}
}

// Record собирает запись из уже готового кадра и детекций строки.
func (l Line) Record(frame entity.Frame) Record {
	rec := Record{Frame: frame}
	if l.Detections != nil {
		rec.Detections = *l.Detections
		rec.HasDetections = true
	}
	return rec
}

// ToLandmarkSet переводит точки MediaPipe в пиксели кадра.
// Неизвестные имена и точки ниже minVisibility пропускаются.
func ToLandmarkSet(points map[string]PositionVisibility, width, height int, minVisibility float64) entity.LandmarkSet {
	out := make([]entity.Landmark, 0, len(points))
	for name, p := range points {
		id, ok := entity.LandmarkByName(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_"))
		if !ok || p.Visibility < minVisibility {
			continue
		}
		out = append(out, entity.Landmark{
			ID: id,
			X:  int(p.X * float64(width)),
			Y:  int(p.Y * float64(height)),
		})
	}
	return entity.NewLandmarkSet(out)
}

// ErrNoDetections для кадра нет записанных детекций
var ErrNoDetections = errors.New("no recorded detections for frame")
