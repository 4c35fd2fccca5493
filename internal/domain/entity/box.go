package entity

import "gonum.org/v1/gonum/spatial/r2"

// BoundingBox рамка найденного предмета, левый верхний угол в начале координат
type BoundingBox struct {
	X      int `json:"x"` // координата X левого верхнего угла
	Y      int `json:"y"` // координата Y левого верхнего угла
	Width  int `json:"w"` // ширина в пикселях
	Height int `json:"h"` // высота в пикселях
}

// Center возвращает координаты центра рамки
func (b BoundingBox) Center() (x, y int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Rect переводит рамку в r2.Box; границы включаются.
func (b BoundingBox) Rect() r2.Box {
	return r2.Box{
		Min: r2.Vec{X: float64(b.X), Y: float64(b.Y)},
		Max: r2.Vec{X: float64(b.X + b.Width), Y: float64(b.Y + b.Height)},
	}
}

// Contains проверяет попадание точки в рамку включительно по краям.
func (b BoundingBox) Contains(p r2.Vec) bool {
	return b.Rect().Contains(p)
}

// Normalized возвращает центр и размеры в долях кадра (формат разметки YOLO).
func (b BoundingBox) Normalized(frameWidth, frameHeight int) (cx, cy, w, h float64) {
	if frameWidth <= 0 || frameHeight <= 0 {
		return 0, 0, 0, 0
	}
	fw, fh := float64(frameWidth), float64(frameHeight)
	cx = (float64(b.X) + float64(b.Width)/2) / fw
	cy = (float64(b.Y) + float64(b.Height)/2) / fh
	return cx, cy, float64(b.Width) / fw, float64(b.Height) / fh
}
