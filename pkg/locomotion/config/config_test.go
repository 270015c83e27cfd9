package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_LoadSave_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wbc.yaml")

	f := File{
		Planner: PlannerConfig{
			SampleTime: 0.004, StepDuration: 0.45, StepHeight: 0.06,
			Interpolation: "spline5", ZeroTime: 0.5, InitTime: 1,
			ComHeight: 0.42, Gravity: 9.81, AccFilterOrder: 2, AccFilterBeta: 0.15,
			NominalFootOffsets: []FootOffset{
				{Foot: "LF", Offset: [3]float32{0.2, 0.15, -0.4}},
			},
		},
		WBC: WBCConfig{
			TorqueLimit: 60, FrictionCoeff: 0.6, MaxNormalForce: 400,
			ContactMode: "rigid", MaxStaleness: 0.05,
		},
	}
	require.NoError(t, Save(path, f))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, f.Planner.StepDuration, loaded.Planner.StepDuration)
	assert.Equal(t, f.WBC.TorqueLimit, loaded.WBC.TorqueLimit)
	assert.Len(t, loaded.Planner.NominalFootOffsets, 1)
}

func Test_Load_MissingFile_ReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(os.TempDir(), "does-not-exist-legged-wbc.yaml"))
	require.Error(t, err)
}
