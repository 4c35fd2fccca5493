package entity

import "time"

// Frame кадр видеопотока вместе с точками позы, найденными внешней моделью.
type Frame struct {
	Seq        int64       // порядковый номер кадра
	CapturedAt time.Time   // время захвата по часам хоста
	Width      int         // ширина кадра
	Height     int         // высота кадра
	Image      []byte      // кадр в JPEG, может быть пустым в режиме повтора
	Landmarks  LandmarkSet // точки позы в пикселях этого кадра
}
