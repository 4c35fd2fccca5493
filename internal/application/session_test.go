package app

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
)

func TestNewSession_RejectsEmpty(t *testing.T) {
	_, err := NewSession(entity.RequiredSet{})
	require.ErrorIs(t, err, entity.ErrEmptyRequiredSet)
}

func TestSession_Toggle(t *testing.T) {
	s, err := NewSession(entity.NewRequiredSet(entity.Helmet, entity.Vest))
	require.NoError(t, err)

	rs, err := s.Toggle(entity.Vest)
	require.NoError(t, err)
	require.Equal(t, []entity.PPEClass{entity.Helmet}, rs.Classes())

	rs, err = s.Toggle(entity.Glove)
	require.NoError(t, err)
	require.Equal(t, []entity.PPEClass{entity.Helmet, entity.Glove}, rs.Classes())

	_, err = s.Toggle(entity.PPEClass(-1))
	require.ErrorIs(t, err, entity.ErrUnknownClass)
}

func TestSession_CannotDisableLastClass(t *testing.T) {
	s, err := NewSession(entity.NewRequiredSet(entity.Helmet))
	require.NoError(t, err)

	_, err = s.Toggle(entity.Helmet)
	require.ErrorIs(t, err, entity.ErrEmptyRequiredSet)
	require.True(t, s.Required().Enabled(entity.Helmet))
}

func TestSession_RequiredIsSnapshot(t *testing.T) {
	s, err := NewSession(entity.AllRequired())
	require.NoError(t, err)

	snap := s.Required()
	snap[entity.Helmet] = false
	require.True(t, s.Required().Enabled(entity.Helmet))

	_, err = s.SetRequired(entity.RequiredSet{})
	require.ErrorIs(t, err, entity.ErrEmptyRequiredSet)
	require.Equal(t, entity.NumClasses, s.Required().Count())
}
