// Package scenario builds the small set of reference networks used by
// tests, cmd/netgen and cmd/simbench: straight runs, a same-band spawn,
// a two-hop route, a merge, an A*-around-a-dead-end graph, a FullStop
// signal approach, and a leader/follower pair.
package scenario

import (
	"fmt"

	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/network"
	"github.com/corridorsim/corridor/signal"
)

// spread is the S=150 coordinate unit these scenarios are expressed in.
const spread = 150.0

// straightLane creates a single-lane band from srcClip to dstClip at the
// given slots, with a straight (zero-control) Bézier, and regenerates
// its geometry immediately.
func straightLane(n *network.Network, srcClip, dstClip model.ClipID, srcSlot, dstSlot int) (model.BandID, model.LaneID, error) {
	band, err := n.NewBand(srcClip, dstClip)
	if err != nil {
		return 0, 0, err
	}
	lane, err := n.NewLane(srcClip, dstClip, srcSlot, dstSlot, band, 0, true)
	if err != nil {
		return 0, 0, err
	}
	return band, lane, nil
}

// Built is the common return shape: the assembled network plus whatever
// ids the scenario's story needs to hand back to a caller or test.
type Built struct {
	Net  *network.Network
	Ids  map[string]uint32
	Src  model.LaneIdentity
	Dst  model.LaneIdentity
}

// A is a single straight band/lane; spawning
// with src==dst must surface corerr.ErrRouteSameBand.
func A() (*Built, error) {
	n := network.New(network.DefaultOptions())
	clipA, err := n.NewClip(geom.Vec3{X: 0, Y: 0}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipB, err := n.NewClip(geom.Vec3{X: 0, Y: spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	band, lane, err := straightLane(n, clipA, clipB, 0, 0)
	if err != nil {
		return nil, err
	}
	identity := model.LaneIdentity{Lane: lane, Band: band, Clip: clipA}
	return &Built{
		Net: n,
		Ids: map[string]uint32{"clipA": uint32(clipA), "clipB": uint32(clipB), "bandBA": uint32(band), "laneLA": uint32(lane)},
		Src: identity,
		Dst: identity,
	}, nil
}

// B is two straight hops A→B→C; the router must
// find [BA,BB] with nav_valid_band_lanes=[{LA},{LB}].
func B() (*Built, error) {
	n := network.New(network.DefaultOptions())
	clipA, err := n.NewClip(geom.Vec3{X: 0, Y: 0}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipB, err := n.NewClip(geom.Vec3{X: 0, Y: spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipC, err := n.NewClip(geom.Vec3{X: 0, Y: 2 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	bandBA, laneLA, err := straightLane(n, clipA, clipB, 0, 0)
	if err != nil {
		return nil, err
	}
	bandBB, laneLB, err := straightLane(n, clipB, clipC, 0, 0)
	if err != nil {
		return nil, err
	}
	return &Built{
		Net: n,
		Ids: map[string]uint32{
			"clipA": uint32(clipA), "clipB": uint32(clipB), "clipC": uint32(clipC),
			"bandBA": uint32(bandBA), "laneLA": uint32(laneLA),
			"bandBB": uint32(bandBB), "laneLB": uint32(laneLB),
		},
		Src: model.LaneIdentity{Lane: laneLA, Band: bandBA, Clip: clipA},
		Dst: model.LaneIdentity{Lane: laneLB, Band: bandBB, Clip: clipB},
	}, nil
}

// C is a three-lane merge E→F where BF must
// widen to src_min=0,src_max=2,dst_min=0,dst_max=1.
func C() (*Built, error) {
	n := network.New(network.DefaultOptions())
	clipE, err := n.NewClip(geom.Vec3{X: 0, Y: 600}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipF, err := n.NewClip(geom.Vec3{X: 0.2 * spread, Y: 750}, 0, 0)
	if err != nil {
		return nil, err
	}
	bandBF, err := n.NewBand(clipE, clipF)
	if err != nil {
		return nil, err
	}
	laneM, err := n.NewLane(clipE, clipF, 0, 0, bandBF, 0, false)
	if err != nil {
		return nil, err
	}
	laneN, err := n.NewLane(clipE, clipF, 1, 0, bandBF, 1, false)
	if err != nil {
		return nil, err
	}
	laneO, err := n.NewLane(clipE, clipF, 2, 1, bandBF, 2, false)
	if err != nil {
		return nil, err
	}
	if err := n.RegeneratePoints(bandBF); err != nil {
		return nil, err
	}
	return &Built{
		Net: n,
		Ids: map[string]uint32{
			"clipE": uint32(clipE), "clipF": uint32(clipF), "bandBF": uint32(bandBF),
			"laneM": uint32(laneM), "laneN": uint32(laneN), "laneO": uint32(laneO),
		},
		Src: model.LaneIdentity{Lane: laneN, Band: bandBF, Clip: clipE},
		Dst: model.LaneIdentity{Lane: laneO, Band: bandBF, Clip: clipE},
	}, nil
}

// D is a branch B→G into a dead-end sink H, and
// an alternative B→D→E→...→J; the router must go via D and never visit
// G's branch.
func D() (*Built, error) {
	n := network.New(network.DefaultOptions())

	pos := func(i int) geom.Vec3 { return geom.Vec3{X: 0, Y: float64(i) * spread} }

	clipA, err := n.NewClip(pos(0), 0, 0)
	if err != nil {
		return nil, err
	}
	clipB, err := n.NewClip(pos(1), 0, 0)
	if err != nil {
		return nil, err
	}
	clipG, err := n.NewClip(geom.Vec3{X: spread, Y: 2 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipH, err := n.NewClip(geom.Vec3{X: spread, Y: 3 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipD, err := n.NewClip(geom.Vec3{X: -spread, Y: 2 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipE, err := n.NewClip(geom.Vec3{X: -spread, Y: 3 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipJ, err := n.NewClip(geom.Vec3{X: -spread, Y: 4 * spread}, 0, 0)
	if err != nil {
		return nil, err
	}

	bandBA, laneLA, err := straightLane(n, clipA, clipB, 0, 0)
	if err != nil {
		return nil, err
	}
	if _, _, err := straightLane(n, clipB, clipG, 0, 0); err != nil {
		return nil, err
	}
	// G→H: dead end, no further outgoing bands from H.
	if _, _, err := straightLane(n, clipG, clipH, 0, 0); err != nil {
		return nil, err
	}
	if _, _, err := straightLane(n, clipB, clipD, 0, 0); err != nil {
		return nil, err
	}
	if _, _, err := straightLane(n, clipD, clipE, 0, 0); err != nil {
		return nil, err
	}
	bandEJ, laneEJ, err := straightLane(n, clipE, clipJ, 0, 0)
	if err != nil {
		return nil, err
	}

	return &Built{
		Net: n,
		Ids: map[string]uint32{
			"clipA": uint32(clipA), "clipB": uint32(clipB), "clipG": uint32(clipG),
			"clipH": uint32(clipH), "clipD": uint32(clipD), "clipE": uint32(clipE), "clipJ": uint32(clipJ),
		},
		Src: model.LaneIdentity{Lane: laneLA, Band: bandBA, Clip: clipA},
		Dst: model.LaneIdentity{Lane: laneEJ, Band: bandEJ, Clip: clipE},
	}, nil
}

// E is a single 200m lane with a FullStop signal
// at distance 200, active_distance=50. A harmless second hop is added
// past it purely so Spawn's distinct-band requirement is met; the
// signal destroys the vehicle long before that lane would ever be
// reached.
func E() (*Built, error) {
	n := network.New(network.DefaultOptions())
	clipA, err := n.NewClip(geom.Vec3{X: 0, Y: 0}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipB, err := n.NewClip(geom.Vec3{X: 0, Y: 200}, 0, 0)
	if err != nil {
		return nil, err
	}
	clipC, err := n.NewClip(geom.Vec3{X: 0, Y: 400}, 0, 0)
	if err != nil {
		return nil, err
	}
	band, lane, err := straightLane(n, clipA, clipB, 0, 0)
	if err != nil {
		return nil, err
	}
	bandBC, laneBC, err := straightLane(n, clipB, clipC, 0, 0)
	if err != nil {
		return nil, err
	}

	id := signal.Identity{
		ID: 1, Lane: lane, Band: band, Clip: clipA,
		SignalDistance: 200, ActiveDistance: 50,
	}
	if err := n.AttachSignal(lane, signal.NewFullStop(id)); err != nil {
		return nil, err
	}

	return &Built{
		Net: n,
		Ids: map[string]uint32{
			"clipA": uint32(clipA), "clipB": uint32(clipB), "clipC": uint32(clipC),
			"band": uint32(band), "lane": uint32(lane), "bandBC": uint32(bandBC), "laneBC": uint32(laneBC),
		},
		Src: model.LaneIdentity{Lane: lane, Band: band, Clip: clipA},
		Dst: model.LaneIdentity{Lane: laneBC, Band: bandBC, Clip: clipB},
	}, nil
}

// F is a leader stationary at distance 100 and a
// follower spawned at distance 0, speed 15, on the same lane. Both
// vehicles are routed one hop further (A→B→C) since Spawn requires a
// destination outside the spawn band (scenario A's RouteSameBand
// rule); only the A→B leg matters to the follower test.
func F() (*Built, model.VehicleID, error) {
	n := network.New(network.DefaultOptions())
	clipA, err := n.NewClip(geom.Vec3{X: 0, Y: 0}, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	clipB, err := n.NewClip(geom.Vec3{X: 0, Y: 500}, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	clipC, err := n.NewClip(geom.Vec3{X: 0, Y: 700}, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	bandAB, laneAB, err := straightLane(n, clipA, clipB, 0, 0)
	if err != nil {
		return nil, 0, err
	}
	bandBC, laneBC, err := straightLane(n, clipB, clipC, 0, 0)
	if err != nil {
		return nil, 0, err
	}

	src := model.LaneIdentity{Lane: laneAB, Band: bandAB, Clip: clipA}
	dst := model.LaneIdentity{Lane: laneBC, Band: bandBC, Clip: clipB}

	leader, err := n.Spawn(src, dst)
	if err != nil {
		return nil, 0, fmt.Errorf("spawning leader: %w", err)
	}
	if err := n.SeedVehicleState(leader, 100, 0); err != nil {
		return nil, 0, fmt.Errorf("parking leader: %w", err)
	}

	return &Built{
		Net: n,
		Ids: map[string]uint32{
			"clipA": uint32(clipA), "clipB": uint32(clipB), "clipC": uint32(clipC),
			"bandAB": uint32(bandAB), "laneAB": uint32(laneAB),
			"bandBC": uint32(bandBC), "laneBC": uint32(laneBC),
		},
		Src: src,
		Dst: dst,
	}, leader, nil
}
