package network

import "github.com/corridorsim/corridor/model"

// stageFn is one entry of the stage (pedal) dispatch table: it mutates
// a vehicle's pedal state given the current desired-speed delta and
// returns nothing — the next stage is assigned by writing v.Stage
// directly, mirroring the teacher runtime's opcode-indexed KernelFn
// dispatch pattern (kernels.Catalog[opcode]) narrowed here to the
// fixed, named set of stages instead of 256 compute
// opcodes.
type stageFn func(v *Vehicle, delta, dt float64)

// stageCatalog dispatches the pedal FSM step by Stage. Entries for
// Wait/LiftPush/LiftHold/LiftPull/AccWait implement the literal table
// the documented cases; the remaining entries (AccPush..DecLift) complete
// the FSM in the same idiom for stages that are named but left
// "open to implementors" (§4.6: "other transitions left open to
// implementors; must not diverge").
var stageCatalog = [stageCount]stageFn{
	model.StageWait:     stageWait,
	model.StageLiftPush: stageLiftPush,
	model.StageLiftHold: stageLiftHold,
	model.StageLiftPull: stageLiftPull,
	model.StageAccWait:  stageAccWait,
	model.StageAccPush:  stageAccPush,
	model.StageAccHold:  stageAccHold,
	model.StageAccPull:  stageAccPull,
	model.StageAccLift:  stageAccLift,
	model.StageMaintain: stageMaintain,
	model.StageDecPush:  stageDecPush,
	model.StageDecHold:  stageDecHold,
	model.StageDecPull:  stageDecPull,
	model.StageDecLift:  stageDecLift,
}

const stageCount = int(model.StageDecLift) + 1

func clampf(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

func stageWait(v *Vehicle, delta, dt float64) {
	if delta > stageTolerance {
		v.Stage = model.StageLiftPush
	}
}

func stageLiftPush(v *Vehicle, delta, dt float64) {
	switch {
	case delta >= 0 && delta < stageTolerance:
		v.Stage = model.StageLiftHold
	case delta < 0:
		v.Stage = model.StageLiftPull
	default:
		v.PdlBrake -= dt * clampf(0.05*delta, 0, 1)
		if v.PdlBrake <= 0 {
			v.PdlBrake = 0
			v.Stage = model.StageAccWait
		}
	}
}

func stageLiftHold(v *Vehicle, delta, dt float64) {
	switch {
	case delta >= 0 && delta < stageTolerance:
		// stay
	case delta < 0:
		v.Stage = model.StageLiftPull
	case delta > stageTolerance:
		v.Stage = model.StageLiftPush
	}
}

func stageLiftPull(v *Vehicle, delta, dt float64) {
	if delta >= 0 {
		v.Stage = model.StageLiftHold
		return
	}
	v.PdlBrake -= dt * clampf(0.05*delta, -2, 0)
	v.PdlBrake = clampf(v.PdlBrake, 0, 1)
}

func stageAccWait(v *Vehicle, delta, dt float64) {
	switch {
	case delta < 0:
		v.Stage = model.StageLiftPull
	case delta > stageTolerance:
		v.Stage = model.StageAccPush
	}
}

func stageAccPush(v *Vehicle, delta, dt float64) {
	v.PdlGas = clampf(v.PdlGas+dt*clampf(0.05*delta, 0, 1), 0, 1)
	switch {
	case delta < 0:
		v.Stage = model.StageLiftPull
	case delta < stageTolerance:
		v.Stage = model.StageAccHold
	}
}

func stageAccHold(v *Vehicle, delta, dt float64) {
	switch {
	case delta < 0:
		v.Stage = model.StageAccLift
	case delta > stageTolerance:
		v.Stage = model.StageAccPush
	default:
		v.Stage = model.StageMaintain
	}
}

func stageAccPull(v *Vehicle, delta, dt float64) {
	v.PdlGas = clampf(v.PdlGas-dt*clampf(0.05*-delta, 0, 1), 0, 1)
	if delta >= 0 {
		v.Stage = model.StageAccHold
	}
}

func stageAccLift(v *Vehicle, delta, dt float64) {
	v.PdlGas = clampf(v.PdlGas-dt*0.1, 0, 1)
	if v.PdlGas <= 0 {
		v.Stage = model.StageMaintain
	}
	if delta > stageTolerance {
		v.Stage = model.StageAccPush
	}
}

func stageMaintain(v *Vehicle, delta, dt float64) {
	switch {
	case delta > stageTolerance:
		v.Stage = model.StageAccPush
	case delta < -stageTolerance:
		v.Stage = model.StageDecPush
	}
}

func stageDecPush(v *Vehicle, delta, dt float64) {
	v.PdlBrake = clampf(v.PdlBrake+dt*clampf(0.05*-delta, 0, 1), 0, 1)
	switch {
	case delta > 0:
		v.Stage = model.StageDecLift
	case delta > -stageTolerance:
		v.Stage = model.StageDecHold
	}
}

func stageDecHold(v *Vehicle, delta, dt float64) {
	switch {
	case delta > 0:
		v.Stage = model.StageDecLift
	case delta < -stageTolerance:
		v.Stage = model.StageDecPush
	default:
		v.Stage = model.StageMaintain
	}
}

func stageDecPull(v *Vehicle, delta, dt float64) {
	v.PdlBrake = clampf(v.PdlBrake+dt*clampf(0.05*-delta, 0, 1), 0, 1)
	if delta >= 0 {
		v.Stage = model.StageDecLift
	}
}

func stageDecLift(v *Vehicle, delta, dt float64) {
	v.PdlBrake = clampf(v.PdlBrake-dt*0.1, 0, 1)
	if v.PdlBrake <= 0 {
		v.Stage = model.StageMaintain
	}
	if delta < -stageTolerance {
		v.Stage = model.StageDecPush
	}
}

// integrate applies the pedal-to-kinematics step common to every stage:
// gas accelerates, brake (net of idle coast drag) decelerates.
func integrate(v *Vehicle, dt float64) {
	v.Speed += dt * v.PdlGas * WillingMaxAccel

	decel := v.PdlBrake - 0.1
	if decel < 0 {
		decel *= clampf(150-v.Speed*10, 0, 150) * 3
	} else {
		decel *= WillingMaxDecel
	}
	v.Speed -= dt * decel

	if v.Speed <= 0 {
		v.Speed = 0
		v.Stage = model.StageWait
	}
}
