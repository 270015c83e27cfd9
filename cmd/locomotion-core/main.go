// Command locomotion-core wires the planner, RBD oracle, and whole-body
// controller together behind the SensorSource/CommandSink boundary and
// drives a fixed-period control loop. It is a compile-time wiring example,
// not a deployable robot driver: the sensor source and command sink are
// in-process stand-ins for whatever transport/parameter-storage layer an
// actual deployment plugs in.
package main

import (
	"os"
	"time"

	"github.com/itohio/legged-wbc/pkg/core/logger"
	"github.com/itohio/legged-wbc/pkg/core/math/vec"
	"github.com/itohio/legged-wbc/pkg/locomotion/config"
	"github.com/itohio/legged-wbc/pkg/locomotion/rbd"
	"github.com/itohio/legged-wbc/pkg/locomotion/wbc"
	"github.com/itohio/legged-wbc/pkg/locotypes"
)

// atomicSource is a minimal SensorSource: Latest returns the single
// snapshot it was built with, which this example never replaces. A real
// transport layer would double-buffer snapshots across goroutines (e.g.
// with atomic.Pointer); here it stands in for that boundary in a
// single-threaded example.
type atomicSource struct {
	snapshot wbc.SensorSnapshot
}

func (s *atomicSource) Latest() (wbc.SensorSnapshot, bool) { return s.snapshot, true }

type stdoutSink struct{}

func (stdoutSink) Publish(torques []float32) error {
	logger.Log.Debug().Int("n", len(torques)).Msg("published joint torques")
	return nil
}

func main() {
	cfgFile := config.File{
		Planner: config.PlannerConfig{
			SampleTime: 0.004, StepDuration: 0.45, StepHeight: 0.06,
			Interpolation: "spline5", ZeroTime: 0.5, InitTime: 1.0,
			ComHeight: 0.42, Gravity: 9.81, AccFilterOrder: 2, AccFilterBeta: 0.15,
			NominalFootOffsets: []config.FootOffset{
				{Foot: "LF", Offset: [3]float32{0.2, 0.15, -0.42}},
				{Foot: "RF", Offset: [3]float32{0.2, -0.15, -0.42}},
				{Foot: "LH", Offset: [3]float32{-0.2, 0.15, -0.42}},
				{Foot: "RH", Offset: [3]float32{-0.2, -0.15, -0.42}},
			},
		},
		WBC: config.WBCConfig{
			SampleTime:  0.004,
			TorqueLimit: 60, FrictionCoeff: 0.6, MaxNormalForce: 400,
			ContactMode: "rigid", MaxStaleness: 0.05,
			Gains: config.Gains{
				KpLin: [3]float32{200, 200, 300}, KdLin: [3]float32{30, 30, 40},
				KpAng: [3]float32{150, 150, 100}, KdAng: [3]float32{15, 15, 10},
				KpSwing: [3]float32{400, 400, 400}, KdSwing: [3]float32{25, 25, 25},
				Kterr: 2000, Dterr: 50,
			},
			EnergyWeight: 1e-4, ForceWeight: 1e-5,
			// One actuated joint per hip/knee/ankle on each of the four
			// legs, held at a standing crouch while the planner warms up.
			HoldPosition: []float32{
				0, 0.7, -1.4,
				0, 0.7, -1.4,
				0, 0.7, -1.4,
				0, 0.7, -1.4,
			},
			HoldKp: 40, HoldKd: 2,
		},
	}

	plannerOpts, offsets := cfgFile.Planner.Options()

	const numJoints = 12
	oracle := rbd.NewPointMassOracle(12, vec.Vector3D{0.15, 0.25, 0.2}, offsets, numJoints, 0.02)

	controller, err := wbc.New(oracle, cfgFile.WBC.ToWBC(), offsets, plannerOpts...)
	if err != nil {
		logger.Log.Error().Err(err).Msg("failed to construct whole-body controller")
		os.Exit(1)
	}

	source := &atomicSource{snapshot: wbc.SensorSnapshot{
		Q: append([]float32{0, 0, 0.42, 0, 0, 0, 1}, make([]float32, numJoints)...),
		V: make([]float32, 6+numJoints),
		FeetPosMeasured: map[locotypes.FootID]vec.Vector3D{
			locotypes.LF: {0.2, 0.15, 0}, locotypes.RF: {0.2, -0.15, 0},
			locotypes.LH: {-0.2, 0.15, 0}, locotypes.RH: {-0.2, -0.15, 0},
		},
		FeetVelMeasured:  map[locotypes.FootID]vec.Vector3D{},
		ContactEstimate:  locotypes.CanonicalFeet(),
		BaseQuatMeasured: vec.Quaternion{0, 0, 0, 1},
	}}
	sink := stdoutSink{}

	period := time.Duration(cfgFile.Planner.SampleTime * float32(time.Second))
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	var lastTick time.Time
	for range ticker.C {
		now := time.Now()
		var elapsed float32
		if !lastTick.IsZero() {
			elapsed = float32(now.Sub(lastTick).Seconds())
		}
		lastTick = now

		if err := controller.Step(source, sink, elapsed); err != nil {
			logger.Log.Warn().Err(err).Msg("control tick failed")
			continue
		}
	}
}
