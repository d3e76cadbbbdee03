package network

import (
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/signal"
)

// ForwardLane is one entry of a vehicle's forward-lane lookahead queue.
type ForwardLane struct {
	ID     model.LaneID
	Length float64
}

// Navigation is a vehicle's route state: the ordered bands from its
// spawn band to its destination band, and the per-hop set of lanes that
// continue validly onto the next hop.
type Navigation struct {
	ActiveNav         int
	Nav               []model.BandIdentity
	NavValidBandLanes [][]model.LaneID
	TargetIdentity    model.LaneIdentity
}

func (n *Navigation) reset() {
	n.ActiveNav = 0
	n.Nav = n.Nav[:0]
	n.NavValidBandLanes = n.NavValidBandLanes[:0]
}

// PerceivedVehicle is a forward-looking snapshot of another vehicle,
// with Distance already translated to be relative to the observer's
// front bumper.
type PerceivedVehicle struct {
	VehicleID model.VehicleID
	Distance  float64
	Speed     float64
	Target    model.Target
}

// PerceivedSignal is a forward-looking signal sighting.
type PerceivedSignal struct {
	Signal         signal.Signal
	DistanceToLine float64
}

// Vehicle is a single simulated vehicle: kinematics, pedal/target
// control state, route, and the perception caches refreshed each tick.
type Vehicle struct {
	alive bool

	ID             model.VehicleID
	ActiveIdentity model.LaneIdentity

	Speed        float64
	Acceleration float64
	Distance     float64
	PdlGas       float64
	PdlBrake     float64

	Target model.Target
	Stage  model.Stage

	Nav Navigation

	ForwardLanes  []ForwardLane
	ForwardLength float64

	ForwardVehicles []PerceivedVehicle
	ForwardSignals  []PerceivedSignal
	ActiveSignals   []signal.Signal

	LaneSpeed float64
}

func newVehicle(id model.VehicleID, active, target model.LaneIdentity) Vehicle {
	return Vehicle{
		alive:          true,
		ID:             id,
		ActiveIdentity: active,
		Target:         model.TargetAccFStop,
		Stage:          model.StageWait,
		Nav:            Navigation{TargetIdentity: target},
		LaneSpeed:      LaneSpeedDefault,
		Speed:          LaneSpeedDefault,
	}
}

func (v *Vehicle) popForwardLane() (ForwardLane, bool) {
	if len(v.ForwardLanes) == 0 {
		return ForwardLane{}, false
	}
	fl := v.ForwardLanes[0]
	v.ForwardLanes = v.ForwardLanes[1:]
	return fl, true
}

func (v *Vehicle) laneSnapshot() LaneVehicle {
	return LaneVehicle{
		VehicleID: v.ID,
		Distance:  v.Distance,
		Speed:     v.Speed,
		Target:    v.Target,
		Stage:     v.Stage,
	}
}
