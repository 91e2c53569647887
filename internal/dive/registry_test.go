package dive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrentSupply(t *testing.T) {
	tanks := NewDefaultPlan().Tanks

	assert.Same(t, tanks[RoleBottom], tanks.CurrentSupply(KindBottom, 45))
	assert.Same(t, tanks[RoleBottom], tanks.CurrentSupply(KindBottom, 0))

	// deco: the shallowest enabled tank whose switch depth is at or below the diver
	assert.Nil(t, tanks.CurrentSupply(KindDeco, 30))
	assert.Same(t, tanks[RoleDeco1], tanks.CurrentSupply(KindDeco, 21))
	assert.Same(t, tanks[RoleDeco1], tanks.CurrentSupply(KindDeco, 9))
	assert.Same(t, tanks[RoleDeco2], tanks.CurrentSupply(KindDeco, 6))
	assert.Same(t, tanks[RoleDeco2], tanks.CurrentSupply(KindDeco, 3))

	require.NoError(t, tanks.SetEnabled(RoleDeco2, false))
	assert.Same(t, tanks[RoleDeco1], tanks.CurrentSupply(KindDeco, 3))

	// travel only when enabled and above its switch depth
	assert.Nil(t, tanks.CurrentSupply(KindTravel, 10))
	require.NoError(t, tanks.SetEnabled(RoleTravel, true))
	assert.Same(t, tanks[RoleTravel], tanks.CurrentSupply(KindTravel, 40))
	assert.Nil(t, tanks.CurrentSupply(KindTravel, 41))
}

func TestSetMix(t *testing.T) {
	tanks := NewDefaultPlan().Tanks

	require.NoError(t, tanks.SetMix(RoleDeco1, 80, 0))
	assert.Equal(t, 80.0, tanks[RoleDeco1].Oxygen)

	tests := []struct {
		name   string
		oxygen float64
		helium float64
	}{
		{"over 100", 60, 50},
		{"negative oxygen", -1, 0},
		{"negative helium", 21, -5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tanks.SetMix(RoleBottom, tt.oxygen, tt.helium)
			assert.ErrorIs(t, err, ErrInvalidMix)
			assert.Equal(t, 21.0, tanks[RoleBottom].Oxygen, "rejected mix was applied")
			assert.Equal(t, 35.0, tanks[RoleBottom].Helium, "rejected mix was applied")
		})
	}
}

func TestSetters(t *testing.T) {
	tanks := NewDefaultPlan().Tanks

	require.NoError(t, tanks.SetLiters(RoleTravel, 12))
	require.NoError(t, tanks.SetPressure(RoleTravel, 230))
	require.NoError(t, tanks.SetSAC(RoleTravel, 18))
	require.NoError(t, tanks.SetPPO2Max(RoleTravel, 1.2))
	require.NoError(t, tanks.SetSwitchDepth(RoleTravel, 30))

	travel := tanks[RoleTravel]
	assert.Equal(t, 12.0, travel.Liters)
	assert.Equal(t, 230.0, travel.StartPressure)
	assert.Equal(t, 230.0, travel.Pressure)
	assert.Equal(t, 18.0, travel.SAC)
	assert.Equal(t, 1.2, travel.PPO2Max)
	assert.Equal(t, 30.0, travel.SwitchDepth)

	tanks.Reset()
	assert.Equal(t, 230.0, travel.Pressure)

	assert.Error(t, tanks.SetEnabled(RoleBottom, false))
	assert.True(t, tanks[RoleBottom].Enabled)

	delete(tanks, RoleDeco2)
	assert.Error(t, tanks.SetSAC(RoleDeco2, 10))
	assert.False(t, tanks.Enabled(RoleDeco2))
	assert.Nil(t, tanks.Get(RoleDeco2))
}

func TestTanksCloneIsDeep(t *testing.T) {
	tanks := NewDefaultPlan().Tanks
	c := tanks.clone()
	c[RoleBottom].Oxygen = 32
	assert.Equal(t, 21.0, tanks[RoleBottom].Oxygen)
	assert.NotSame(t, tanks[RoleBottom], c[RoleBottom])
}
