package clockx

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew_ZeroOrNegativeCapacityClampsToOne(t *testing.T) {
	h := New(0)
	require.Equal(t, 0, h.Advance())

	h = New(-5)
	require.Equal(t, 0, h.Advance())
}

func TestHand_FirstAdvanceLandsOnZero(t *testing.T) {
	h := New(4)
	require.Equal(t, 0, h.Advance())
}

func TestHand_AdvanceWrapsModuloN(t *testing.T) {
	h := New(3)
	got := make([]int, 0, 7)
	for i := 0; i < 7; i++ {
		got = append(got, h.Advance())
	}
	require.Equal(t, []int{0, 1, 2, 0, 1, 2, 0}, got)
}

func TestHand_PosReflectsLastAdvanceWithoutMoving(t *testing.T) {
	h := New(2)
	pos := h.Advance()
	require.Equal(t, pos, h.Pos())
	require.Equal(t, pos, h.Pos())
}
