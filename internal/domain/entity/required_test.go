package entity

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRequiredSet(t *testing.T) {
	rs, err := ParseRequiredSet("mask, helmet,gloves")
	require.NoError(t, err)
	require.Equal(t, 3, rs.Count())
	require.Equal(t, []PPEClass{Mask, Helmet, Glove}, rs.Classes())
	require.Equal(t, "mask,helmet,glove", rs.String())
}

func TestParseRequiredSet_RejectsEmptyAndUnknown(t *testing.T) {
	_, err := ParseRequiredSet(" , ")
	require.True(t, errors.Is(err, ErrEmptyRequiredSet))

	_, err = ParseRequiredSet("mask,cape")
	require.True(t, errors.Is(err, ErrUnknownClass))
}

func TestRequiredSet_WithDoesNotMutate(t *testing.T) {
	rs := AllRequired()
	require.Equal(t, NumClasses, rs.Count())

	fewer := rs.With(Boot, false)
	require.Equal(t, NumClasses-1, fewer.Count())
	require.True(t, rs.Enabled(Boot))
	require.False(t, fewer.Enabled(Boot))

	require.True(t, errors.Is(NewRequiredSet().Validate(), ErrEmptyRequiredSet))
}
