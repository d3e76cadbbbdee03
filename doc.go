// Package corridor implements a microscopic multi-lane traffic simulation
// engine: a lane-graph road network, an A*-based band router, and a
// per-vehicle kinematics/state-machine kernel driven by a fixed-delta
// tick loop.
//
// Roads are modeled as a graph of Clips (junctions with lateral slots),
// Bands (bundles of lanes between two clips, widened to the slot ranges
// their member lanes actually use) and Lanes (single drivable paths with
// sampled Bézier geometry). Vehicles navigate this graph by routing over
// bands with A*, then walking the resulting lane-valid-set hop by hop as
// they tick forward.
//
// # Architecture Overview
//
// The engine consists of several key components:
//
//   - model: dense integer ids (ClipID, BandID, LaneID, VehicleID) and
//     the Target/Stage control-state enums shared across packages
//   - geom: Bézier sampling, arclength interpolation and heading lookup
//   - arena: generic dense id-indexed storage with free-id recycling
//   - signal: lane-attached FullStop/SpeedLimit instructions
//   - network: Clip/Band/Lane/Vehicle storage, the band-graph A* router,
//     and the per-tick vehicle kernel
//   - scenario: a handful of small reference networks used by tests and
//     the command-line tools
//   - simulator: orchestration of one Network's tick loop, and parallel
//     multi-instance execution
//
// # Concurrency Model
//
// A single Network serializes its own Step calls behind an internal
// mutex; ticking is not meant to be called concurrently from multiple
// goroutines for the same Network. Independent Simulator instances,
// each wrapping its own Network, run one per goroutine with nothing
// shared between them — simulator.RunParallel fans these out with
// golang.org/x/sync/errgroup.
//
// # Basic Usage
//
//	built, err := scenario.B()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vehicle, err := built.Net.Spawn(built.Src, built.Dst)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for i := 0; i < 100; i++ {
//	    if err := built.Net.Step(0.1); err != nil {
//	        log.Fatal(err)
//	    }
//	}
//	pos, heading, err := built.Net.Pose(vehicle)
//
// # Package Structure
//
//   - model: identity types and control-state enums
//   - geom: curve sampling and interpolation
//   - arena: generic entity storage
//   - corerr: sentinel errors shared across packages
//   - signal: lane signal instructions
//   - network: road network, router and tick kernel
//   - scenario: reference network builders
//   - simulator: tick-loop orchestration
//   - cmd: command-line tools (netgen, simrun, simbench)
package corridor
