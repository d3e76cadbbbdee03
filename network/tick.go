package network

import (
	"math"
	"sort"

	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/signal"
)

// Spawn places a new vehicle on src, routed toward dst.
// §4.6. The route is computed before any mutation; a routing failure
// leaves the Network untouched.
func (n *Network) Spawn(src, dst model.LaneIdentity) (model.VehicleID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	srcLane, err := n.getLane(src.Lane)
	if err != nil {
		return 0, err
	}
	if _, err := n.getLane(dst.Lane); err != nil {
		return 0, err
	}

	active := srcLane.Identity
	nav := Navigation{TargetIdentity: dst}
	if err := n.renavigateLocked(&nav, active); err != nil {
		return 0, err
	}

	id, slot := n.vehicles.Fetch()
	vid := model.VehicleID(id)
	*slot = newVehicle(vid, active, dst)
	slot.Nav = nav
	// A lane already occupied past its own length still accepts a new
	// vehicle at distance 0 (spawn never starts past
	// the lane's end).
	slot.Distance = 0

	fw, err := n.getForwardLanesLocked(&slot.Nav, Lookahead, active.Lane)
	if err != nil {
		n.vehicles.Release(id)
		return 0, err
	}
	slot.ForwardLanes = fw
	total := 0.0
	for _, f := range fw {
		total += f.Length
	}
	slot.ForwardLength = total

	srcLane.upsertVehicle(slot.laneSnapshot())
	n.liveVehicles = append(n.liveVehicles, vid)

	return vid, nil
}

// SeedVehicleState overrides a spawned vehicle's distance and speed,
// for scenario and test setup (e.g. placing a stationary leader ahead
// of a follower). Setting speed to 0 also parks the vehicle's pedal
// state so it holds position under Step rather than drifting back
// toward its lane speed.
func (n *Network) SeedVehicleState(id model.VehicleID, distance, speed float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	v, err := n.getVehicle(id)
	if err != nil {
		return err
	}
	lane, err := n.getLane(v.ActiveIdentity.Lane)
	if err != nil {
		return err
	}
	v.Distance = distance
	v.Speed = speed
	v.LaneSpeed = speed
	if speed == 0 {
		v.Target = model.TargetWait
		v.Stage = model.StageWait
		v.PdlGas = 0
		v.PdlBrake = 0.1
	}
	lane.upsertVehicle(v.laneSnapshot())
	return nil
}

// Step advances every live vehicle by one fixed tick, in ascending id
// order. A vehicle whose tick hits an arena inconsistency
// is logged and despawned rather than aborting the whole tick.
func (n *Network) Step(dt float64) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	ids := make([]model.VehicleID, len(n.liveVehicles))
	copy(ids, n.liveVehicles)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, vid := range ids {
		v, err := n.getVehicle(vid)
		if err != nil {
			continue
		}
		destroy, err := n.tickVehicle(v, dt)
		if err != nil {
			n.opts.Logger.Warn("vehicle tick defect, despawning", "vehicle_id", vid, "error", err)
			destroy = true
		}
		if destroy {
			n.despawnVehicleLocked(vid)
		}
	}
	return nil
}

func (n *Network) despawnVehicleLocked(id model.VehicleID) {
	v, err := n.getVehicle(id)
	if err == nil {
		if lane, lerr := n.getLane(v.ActiveIdentity.Lane); lerr == nil {
			lane.removeVehicle(id)
		}
		v.alive = false
	}
	n.vehicles.Release(uint32(id))
	for i, vid := range n.liveVehicles {
		if vid == id {
			last := len(n.liveVehicles) - 1
			n.liveVehicles[i] = n.liveVehicles[last]
			n.liveVehicles = n.liveVehicles[:last]
			break
		}
	}
}

// tickVehicle runs the per-tick procedure: kinematics
// integration, forward-lane refresh, lane transitions, best-lane
// nudging, perception refresh, target selection, signal aggregation,
// and the pedal/stage FSM. It returns destroy=true when the vehicle
// should leave the simulation this tick.
func (n *Network) tickVehicle(v *Vehicle, dt float64) (bool, error) {
	v.Distance += v.Speed * dt

	lane, err := n.getLane(v.ActiveIdentity.Lane)
	if err != nil {
		return true, err
	}
	lane.upsertVehicle(v.laneSnapshot())

	fw, err := n.getForwardLanesLocked(&v.Nav, Lookahead, v.ActiveIdentity.Lane)
	if err != nil {
		return true, err
	}
	v.ForwardLanes = fw
	v.ForwardLength = 0
	for _, f := range fw {
		v.ForwardLength += f.Length
	}

	for v.Distance >= lane.Length {
		lane.removeVehicle(v.ID)
		v.Distance -= lane.Length

		fl, ok := v.popForwardLane()
		if !ok {
			return true, nil
		}
		nextLane, err := n.getLane(fl.ID)
		if err != nil {
			return true, err
		}
		v.ActiveIdentity.Lane = fl.ID
		v.ActiveIdentity.Band = nextLane.Identity.Band
		v.ActiveIdentity.Clip = nextLane.Identity.Clip
		v.ForwardLength -= fl.Length
		v.Nav.ActiveNav++

		lane = nextLane
		lane.upsertVehicle(v.laneSnapshot())
	}

	if err := n.nudgeBestLane(v, &lane); err != nil {
		return true, err
	}

	n.refreshPerception(v, lane)
	n.selectTarget(v)

	effSpeed, effTarget, anySlow, destroyed := n.aggregateSignals(v)
	if destroyed {
		return true, nil
	}
	if anySlow {
		v.Target = effTarget
	}

	desired := n.leaderDesiredSpeed(v)
	if anySlow && effSpeed < desired {
		desired = effSpeed
	}
	if v.LaneSpeed < desired {
		desired = v.LaneSpeed
	}

	delta := desired - v.Speed
	if fn := stageCatalog[v.Stage]; fn != nil {
		fn(v, delta, dt)
	}
	integrate(v, dt)

	lane.upsertVehicle(v.laneSnapshot())
	return false, nil
}

// nudgeBestLane retargets the vehicle to whichever currently valid lane
// in its active clip's slot row is closest (by slot index) to its
// current lane, when fewer than two forward lanes remain queued (spec
// §4.6 best-lane nudging). Ties favour the smaller slot index.
func (n *Network) nudgeBestLane(v *Vehicle, lane **Lane) error {
	if len(v.ForwardLanes) > 1 {
		return nil
	}
	if v.Nav.ActiveNav >= len(v.Nav.NavValidBandLanes) {
		return nil
	}
	clip, err := n.getClip(v.ActiveIdentity.Clip)
	if err != nil {
		return err
	}
	currentSlot, ok := findLaneSlot(clip, v.ActiveIdentity.Lane, true)
	if !ok {
		return nil
	}

	valid := v.Nav.NavValidBandLanes[v.Nav.ActiveNav]
	bestLane := model.LaneID(0)
	bestSlot := -1
	bestDiff := -1
	for _, candidate := range valid {
		slot, ok := findLaneSlot(clip, candidate, true)
		if !ok {
			continue
		}
		diff := int(math.Abs(float64(slot - currentSlot)))
		if bestLane == 0 || diff < bestDiff || (diff == bestDiff && slot < bestSlot) {
			bestLane, bestSlot, bestDiff = candidate, slot, diff
		}
	}
	if bestLane == 0 || bestLane == v.ActiveIdentity.Lane {
		return nil
	}
	newLane, err := n.getLane(bestLane)
	if err != nil {
		return nil
	}
	(*lane).removeVehicle(v.ID)
	v.ActiveIdentity.Lane = bestLane
	*lane = newLane
	newLane.upsertVehicle(v.laneSnapshot())
	return nil
}

// refreshPerception rebuilds forward_vehicles and forward_signals from
// the current lane onward, translating distances to be relative to the
// vehicle's own position, then moves any signal now within its active
// distance into active_signals and activates it once.
func (n *Network) refreshPerception(v *Vehicle, lane *Lane) {
	v.ForwardVehicles = v.ForwardVehicles[:0]
	for _, ov := range lane.Vehicles {
		if ov.VehicleID == v.ID || ov.Distance <= v.Distance {
			continue
		}
		v.ForwardVehicles = append(v.ForwardVehicles, PerceivedVehicle{
			VehicleID: ov.VehicleID,
			Distance:  ov.Distance - v.Distance,
			Speed:     ov.Speed,
			Target:    ov.Target,
		})
	}

	v.ForwardSignals = v.ForwardSignals[:0]
	if lane.Signal != nil {
		id := lane.Signal.Identity()
		v.ForwardSignals = append(v.ForwardSignals, PerceivedSignal{Signal: lane.Signal, DistanceToLine: id.SignalDistance - v.Distance})
	}

	base := lane.Length - v.Distance
	for _, fl := range v.ForwardLanes {
		flLane, err := n.getLane(fl.ID)
		if err != nil {
			continue
		}
		for _, ov := range flLane.Vehicles {
			v.ForwardVehicles = append(v.ForwardVehicles, PerceivedVehicle{
				VehicleID: ov.VehicleID,
				Distance:  base + ov.Distance,
				Speed:     ov.Speed,
				Target:    ov.Target,
			})
		}
		if flLane.Signal != nil {
			id := flLane.Signal.Identity()
			v.ForwardSignals = append(v.ForwardSignals, PerceivedSignal{Signal: flLane.Signal, DistanceToLine: base + id.SignalDistance})
		}
		base += fl.Length
	}

	for _, ps := range v.ForwardSignals {
		id := ps.Signal.Identity()
		if ps.DistanceToLine > id.ActiveDistance {
			continue
		}
		if containsSignal(v.ActiveSignals, ps.Signal) {
			continue
		}
		v.ActiveSignals = append(v.ActiveSignals, ps.Signal)
		ps.Signal.Activate(signal.Observation{DistanceToLine: ps.DistanceToLine, Speed: v.Speed})
	}
}

func containsSignal(list []signal.Signal, s signal.Signal) bool {
	for _, l := range list {
		if l == s {
			return true
		}
	}
	return false
}

func findSignalDistance(forward []PerceivedSignal, s signal.Signal) (float64, bool) {
	for _, ps := range forward {
		if ps.Signal == s {
			return ps.DistanceToLine, true
		}
	}
	return 0, false
}

func nearestLeader(forward []PerceivedVehicle) (PerceivedVehicle, bool) {
	best := PerceivedVehicle{}
	found := false
	for _, pv := range forward {
		if !found || pv.Distance < best.Distance {
			best, found = pv, true
		}
	}
	return best, found
}

// selectTarget runs the leader-follow transition table.
func (n *Network) selectTarget(v *Vehicle) {
	leader, hasLeader := nearestLeader(v.ForwardVehicles)
	if !hasLeader {
		if math.Abs(v.LaneSpeed-v.Speed) < 1 {
			v.Target = model.TargetAvgSpeed
		} else {
			v.Target = model.TargetAccFStop
		}
		return
	}

	deltaV := leader.Speed - v.Speed
	switch v.Target {
	case model.TargetWait:
		if leader.Distance > 10 || deltaV > 5 {
			v.Target = model.TargetAccFStop
		}
	case model.TargetAccFStop:
		switch {
		case leader.Distance < 100 && deltaV < -5:
			if leader.Target == model.TargetDecTStop {
				v.Target = model.TargetDecTStop
			} else {
				v.Target = model.TargetAvgSpeed
			}
		case leader.Distance < 30 && deltaV < 1:
			v.Target = model.TargetAvgSpeed
		}
	case model.TargetDecTStop:
		if v.Speed == 0 {
			v.Target = model.TargetWait
		}
	case model.TargetAvgSpeed:
		switch {
		case deltaV > 10:
			v.Target = model.TargetAccFStop
		case leader.Distance < 100 && deltaV < -5 && leader.Target == model.TargetDecTStop:
			v.Target = model.TargetDecTStop
		}
	}
}

// aggregateSignals collects Instruct() results from active_signals,
// taking the slowest Slow instruction, defaulting to (lane_speed,
// AvgSpeed) when none are active. A Destroy instruction ends the
// vehicle immediately (FullStop destroys on arrival).
func (n *Network) aggregateSignals(v *Vehicle) (speed float64, target model.Target, anySlow bool, destroy bool) {
	speed = v.LaneSpeed
	target = model.TargetAvgSpeed

	for _, s := range v.ActiveSignals {
		d, ok := findSignalDistance(v.ForwardSignals, s)
		if !ok {
			id := s.Identity()
			d = id.SignalDistance - v.Distance
		}
		instr := s.Instruct(signal.Observation{DistanceToLine: d, Speed: v.Speed})
		switch instr.Kind {
		case signal.Destroy:
			return 0, 0, false, true
		case signal.Slow:
			if !anySlow || instr.TargetSpeed < speed {
				speed, target, anySlow = instr.TargetSpeed, instr.Target, true
			}
		}
	}
	return speed, target, anySlow, false
}

// leaderDesiredSpeed computes the target-derived desired speed:
// zero for Wait/DecTStop, the leader's speed for AccFStop, and a
// seconds-to-leader blend between leader speed and lane speed for
// AvgSpeed.
func (n *Network) leaderDesiredSpeed(v *Vehicle) float64 {
	leader, hasLeader := nearestLeader(v.ForwardVehicles)
	if !hasLeader {
		return v.LaneSpeed
	}
	switch v.Target {
	case model.TargetWait, model.TargetDecTStop:
		return 0
	case model.TargetAccFStop:
		return leader.Speed
	case model.TargetAvgSpeed:
		denom := leader.Speed - v.Speed
		secondsToLeader := math.Inf(1)
		if denom != 0 {
			secondsToLeader = leader.Distance / denom
		}
		factor := clampf((secondsToLeader-2)*0.25, 0, 1)
		return leader.Speed + (v.LaneSpeed-leader.Speed)*factor
	default:
		return v.LaneSpeed
	}
}
