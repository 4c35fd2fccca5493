package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingLandmark нужная точка позы отсутствует в кадре.
	ErrMissingLandmark = errors.New("missing landmark")
	// ErrEmptyRequiredSet в конфигурации не выбран ни один СИЗ.
	ErrEmptyRequiredSet = errors.New("required ppe set is empty")
	// ErrUnknownClass имя или номер класса СИЗ не распознаны.
	ErrUnknownClass = errors.New("unknown ppe class")
)

// MissingLandmarkError уточняет, какой именно точки не хватило.
type MissingLandmarkError struct {
	ID LandmarkID
}

func (e *MissingLandmarkError) Error() string {
	return fmt.Sprintf("missing landmark %d (%s)", int(e.ID), e.ID)
}

// Is позволяет сравнивать через errors.Is(err, ErrMissingLandmark).
func (e *MissingLandmarkError) Is(target error) bool {
	return target == ErrMissingLandmark
}
