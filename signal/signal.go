// Package signal defines the pluggable per-lane driving-directive
// contract: Identity/Activate/Instruct, plus two concrete signals
// (FullStop and SpeedLimit). A Signal never touches the network or
// vehicle data structures directly — it only sees the Observation the
// caller provides each tick — so this package has no dependency on
// network or vehicle and can be imported by both without a cycle.
package signal

import "github.com/corridorsim/corridor/model"

// Identity locates a signal on its lane.
type Identity struct {
	ID             uint32
	Lane           model.LaneID
	Band           model.BandID
	Clip           model.ClipID
	SignalDistance float64 // distance along the lane of the stop/advisory line
	ActiveDistance float64 // look-ahead window before the line
}

// Observation is what a vehicle reports to a signal each tick.
type Observation struct {
	DistanceToLine float64
	Speed          float64
}

// Kind tags an Instruction's variant.
type Kind uint8

const (
	Keep Kind = iota
	Slow
	Destroy
)

// Instruction is a signal's per-tick directive to a vehicle.
type Instruction struct {
	Kind        Kind
	TargetSpeed float64
	Target      model.Target
}

// Signal is the capability set every per-lane directive implements.
type Signal interface {
	Identity() Identity
	// Activate is called once when the signal first falls inside the
	// vehicle's active-distance window; it may capture a per-vehicle
	// baseline from obs.
	Activate(obs Observation)
	// Instruct is called every tick while the signal is active for a
	// vehicle.
	Instruct(obs Observation) Instruction
}

// FullStop brings a vehicle to a stop at the signal line, decelerating
// proportionally to the fraction of the initial gap already closed.
type FullStop struct {
	identity Identity

	activated  bool
	initSpeed  float64
	initDist   float64
}

// NewFullStop creates a FullStop signal at the given identity.
func NewFullStop(id Identity) *FullStop {
	return &FullStop{identity: id}
}

func (f *FullStop) Identity() Identity { return f.identity }

func (f *FullStop) Activate(obs Observation) {
	f.activated = true
	f.initSpeed = obs.Speed
	f.initDist = obs.DistanceToLine
}

func (f *FullStop) Instruct(obs Observation) Instruction {
	if obs.DistanceToLine < 5 && obs.Speed < 10 {
		return Instruction{Kind: Destroy}
	}
	initDist := f.initDist
	if initDist <= 0 {
		initDist = obs.DistanceToLine
		if initDist <= 0 {
			initDist = 1
		}
	}
	targetSpeed := (obs.DistanceToLine / initDist) * f.initSpeed
	if targetSpeed < 0 {
		targetSpeed = 0
	}
	return Instruction{Kind: Slow, TargetSpeed: targetSpeed, Target: model.TargetDecTStop}
}

// SpeedLimit clamps a vehicle's cruising speed once the vehicle comes
// within active_distance of the signal line, i.e. before the line is
// reached. It needs no activation baseline: the limit is a constant,
// not a function of the vehicle's approach.
type SpeedLimit struct {
	identity Identity
	Limit    float64
}

// NewSpeedLimit creates a SpeedLimit signal enforcing limit from id's
// signal_distance.
func NewSpeedLimit(id Identity, limit float64) *SpeedLimit {
	return &SpeedLimit{identity: id, Limit: limit}
}

func (s *SpeedLimit) Identity() Identity { return s.identity }

func (s *SpeedLimit) Activate(Observation) {}

func (s *SpeedLimit) Instruct(Observation) Instruction {
	return Instruction{Kind: Slow, TargetSpeed: s.Limit, Target: model.TargetAvgSpeed}
}
