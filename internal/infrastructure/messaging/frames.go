package messaging

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/nats-io/nats.go"

	"ppe-gate/internal/domain/entity"
	"ppe-gate/internal/infrastructure/replay"
	"ppe-gate/internal/timeutil"
)

// FrameDecoder разбирает кадры модели позы в формате строки записи
type FrameDecoder struct {
	MinVisibility float64
	Clock         timeutil.Clock // метка для кадров без "ts"
	seq           atomic.Int64
}

// Decode превращает сообщение в запись; номер и время берутся из часов, если не заданы.
func (d *FrameDecoder) Decode(data []byte) (replay.Record, error) {
	var l replay.Line
	if err := json.Unmarshal(data, &l); err != nil {
		return replay.Record{}, fmt.Errorf("decode frame: %w", err)
	}
	if l.Width <= 0 || l.Height <= 0 {
		return replay.Record{}, fmt.Errorf("decode frame: frame size %dx%d", l.Width, l.Height)
	}

	frame := l.Frame(d.MinVisibility)
	if frame.Seq == 0 {
		frame.Seq = d.seq.Add(1)
	} else {
		d.seq.Store(frame.Seq)
	}
	if frame.CapturedAt.IsZero() {
		frame.CapturedAt = d.Clock.Now()
	}
	return l.Record(frame), nil
}

// FrameSubject тема входящих кадров
func (p *Publisher) FrameSubject() string {
	return p.subject + ".frames"
}

// SubscribeFrames принимает кадры из NATS и отдаёт их в канал.
// Записанные детекции попадают в det. Если обработка отстаёт, кадр отбрасывается.
func (p *Publisher) SubscribeFrames(dec *FrameDecoder, det *replay.Detector, buffer int) (<-chan entity.Frame, func() error, error) {
	if p.conn == nil {
		return nil, nil, fmt.Errorf("subscribe %s: not connected", p.FrameSubject())
	}

	frames := make(chan entity.Frame, buffer)
	var dropped atomic.Int64

	sub, err := p.conn.Subscribe(p.FrameSubject(), func(msg *nats.Msg) {
		rec, err := dec.Decode(msg.Data)
		if err != nil {
			p.log.Warn().Err(err).Msg("skip frame")
			return
		}
		det.Remember(rec)

		select {
		case frames <- rec.Frame:
		default:
			if n := dropped.Add(1); n%100 == 1 {
				p.log.Warn().Int64("dropped", n).Msg("frame queue is full, dropping frames")
			}
		}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe %s: %w", p.FrameSubject(), err)
	}

	p.log.Info().Str("subject", p.FrameSubject()).Msg("Subscribed to pose frames")
	return frames, sub.Unsubscribe, nil
}
