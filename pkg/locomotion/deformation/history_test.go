package deformation

import (
	"testing"

	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locotypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Update_RotatesHistoryForContactFeet(t *testing.T) {
	h := New()
	contact := []locotypes.FootID{locotypes.LF, locotypes.RH}
	d1 := []vec.Vector3D{{0, 0, -0.001}, {0, 0, -0.002}}

	require.NoError(t, h.Update(contact, d1))
	assert.Equal(t, d1[0], h.Prev1(locotypes.LF))
	assert.Equal(t, vec.Vector3D{}, h.Prev2(locotypes.LF))

	d2 := []vec.Vector3D{{0, 0, -0.003}, {0, 0, -0.004}}
	require.NoError(t, h.Update(contact, d2))
	assert.Equal(t, d2[0], h.Prev1(locotypes.LF))
	assert.Equal(t, d1[0], h.Prev2(locotypes.LF))
}

func Test_Update_ZeroesAbsentFeet(t *testing.T) {
	h := New()
	contact := locotypes.CanonicalFeet()
	d := []vec.Vector3D{{1, 1, 1}, {1, 1, 1}, {1, 1, 1}, {1, 1, 1}}
	require.NoError(t, h.Update(contact, d))

	require.NoError(t, h.Update([]locotypes.FootID{locotypes.RF, locotypes.LH}, d[:2]))
	assert.Equal(t, vec.Vector3D{}, h.Prev1(locotypes.LF))
	assert.Equal(t, vec.Vector3D{}, h.Prev2(locotypes.LF))
}

func Test_Update_RejectsLengthMismatch(t *testing.T) {
	h := New()
	err := h.Update([]locotypes.FootID{locotypes.LF}, nil)
	require.Error(t, err)
}

func Test_Aligned_MatchesContactOrder(t *testing.T) {
	h := New()
	contact := []locotypes.FootID{locotypes.RF, locotypes.LH}
	d := []vec.Vector3D{{1, 0, 0}, {0, 1, 0}}
	require.NoError(t, h.Update(contact, d))

	dk1, dk2 := h.Aligned(contact)
	assert.Equal(t, d, dk1)
	assert.Equal(t, []vec.Vector3D{{}, {}}, dk2)
}
