// Package network implements the lane-graph road network: clips, bands
// and lanes with their cross-references, the builder that grows the
// graph under structural invariants, the A* router over the band graph,
// and the per-vehicle tick kernel that drives vehicles across it.
//
// The Network is the sole owner of every entity's arena; all
// cross-references between clips, bands, lanes and vehicles are dense
// ids, never direct pointers, so the graph can grow without the
// shared-ownership machinery the original implementation used.
package network

import (
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/corridorsim/corridor/arena"
	"github.com/corridorsim/corridor/corerr"
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/signal"
)

// Options configures a Network at construction time.
type Options struct {
	// Samples is the Bézier sampling density N used when regenerating
	// band geometry. Defaults to LaneMaxPoints.
	Samples int
	// Logger receives structured warnings for tick-time defects (spec
	// §7: arena inconsistency is logged and despawns the vehicle rather
	// than aborting the tick). Defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the zero-value-friendly defaults, following the
// same Default*Options() convention the engine's simulator package (and
// its teacher ancestor) uses throughout.
func DefaultOptions() Options {
	return Options{
		Samples: LaneMaxPoints,
		Logger:  slog.Default(),
	}
}

// Network owns the clip/band/lane/vehicle arenas and exposes the
// builder, router and tick surface.
type Network struct {
	mu sync.RWMutex

	opts Options

	clips    *arena.Arena[Clip]
	bands    *arena.Arena[Band]
	lanes    *arena.Arena[Lane]
	vehicles *arena.Arena[Vehicle]

	liveVehicles []model.VehicleID // ascending-id visit order, maintained on spawn/despawn
}

// New creates an empty Network.
func New(opts Options) *Network {
	if opts.Samples < 2 {
		opts.Samples = LaneMaxPoints
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Network{
		opts:     opts,
		clips:    arena.New[Clip](16),
		bands:    arena.New[Band](16),
		lanes:    arena.New[Lane](32),
		vehicles: arena.New[Vehicle](32),
	}
}

func (n *Network) getClip(id model.ClipID) (*Clip, error) {
	c := n.clips.Get(uint32(id))
	if c == nil || !c.alive {
		return nil, fmt.Errorf("clip %d: %w", id, corerr.ErrInvalidID)
	}
	return c, nil
}

func (n *Network) getBand(id model.BandID) (*Band, error) {
	b := n.bands.Get(uint32(id))
	if b == nil || !b.alive {
		return nil, fmt.Errorf("band %d: %w", id, corerr.ErrInvalidID)
	}
	return b, nil
}

func (n *Network) getLane(id model.LaneID) (*Lane, error) {
	l := n.lanes.Get(uint32(id))
	if l == nil || !l.alive {
		return nil, fmt.Errorf("lane %d: %w", id, corerr.ErrInvalidID)
	}
	return l, nil
}

func (n *Network) getVehicle(id model.VehicleID) (*Vehicle, error) {
	v := n.vehicles.Get(uint32(id))
	if v == nil || !v.alive {
		return nil, fmt.Errorf("vehicle %d: %w", id, corerr.ErrInvalidID)
	}
	return v, nil
}

// NewClip allocates a junction point at the given pose.
func (n *Network) NewClip(pos geom.Vec3, angle, bank float64) (model.ClipID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id, slot := n.clips.Fetch()
	*slot = newClip(pos, angle, bank)
	return model.ClipID(id), nil
}

// NewBand registers a bundle of lanes from src to dst, and records it as
// outgoing on src.
func (n *Network) NewBand(src, dst model.ClipID) (model.BandID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	srcClip, err := n.getClip(src)
	if err != nil {
		return 0, err
	}
	if _, err := n.getClip(dst); err != nil {
		return 0, err
	}

	id, slot := n.bands.Fetch()
	*slot = newBand(src, dst)

	if !srcClip.addFwBand(model.BandID(id)) {
		// roll back: leave the Network in its pre-call state
		n.bands.Release(id)
		return 0, fmt.Errorf("clip %d outgoing bands: %w", src, corerr.ErrBranchLimitExceeded)
	}
	return model.BandID(id), nil
}

// NewLane performs a 7-step atomic sequence: allocate
// the lane, wire it into both clips' slots, link same-slot neighbours,
// widen the band and its control, and optionally regenerate geometry.
func (n *Network) NewLane(src, dst model.ClipID, srcSlot, dstSlot int, band model.BandID, controlIdx int, regenerate bool) (model.LaneID, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	srcClip, err := n.getClip(src)
	if err != nil {
		return 0, err
	}
	dstClip, err := n.getClip(dst)
	if err != nil {
		return 0, err
	}
	b, err := n.getBand(band)
	if err != nil {
		return 0, err
	}
	if b.SrcClip != src || b.DstClip != dst {
		return 0, fmt.Errorf("lane src/dst %d/%d vs band %d src/dst %d/%d: %w", src, dst, band, b.SrcClip, b.DstClip, corerr.ErrBandMismatch)
	}
	if srcSlot < 0 || srcSlot >= ClipMaxLength || dstSlot < 0 || dstSlot >= ClipMaxLength {
		return 0, fmt.Errorf("slot out of range: %w", corerr.ErrInvalidID)
	}
	if controlIdx < 0 || controlIdx >= BandMaxControls {
		return 0, fmt.Errorf("control index out of range: %w", corerr.ErrInvalidID)
	}

	srcS := &srcClip.Slots[srcSlot]
	dstS := &dstClip.Slots[dstSlot]

	// 1. Allocate the lane with an empty point set.
	laneID, laneSlot := n.lanes.Fetch()
	id := model.LaneID(laneID)
	*laneSlot = newLane(model.LaneIdentity{Lane: id, Band: band, Clip: src}, dst, srcSlot, dstSlot, controlIdx)

	// 2. Insert into src slot's fw, mirror into dst slot's bw.
	if !srcS.insertFw(id) {
		n.lanes.Release(laneID)
		return 0, fmt.Errorf("clip %d slot %d fw: %w", src, srcSlot, corerr.ErrBranchLimitExceeded)
	}
	if !dstS.insertBw(id) {
		n.lanes.Release(laneID)
		return 0, fmt.Errorf("clip %d slot %d bw: %w", dst, dstSlot, corerr.ErrBranchLimitExceeded)
	}

	// 3. Link same-slot neighbours both directions, deduplicated.
	for i := 0; i < srcS.BwCount; i++ {
		p := srcS.Bw[i]
		if p == id {
			continue
		}
		if err := n.linkNeighbours(p, id); err != nil {
			return 0, err
		}
	}
	for i := 0; i < dstS.FwCount; i++ {
		p := dstS.Fw[i]
		if p == id {
			continue
		}
		if err := n.linkNeighbours(id, p); err != nil {
			return 0, err
		}
	}

	// 4. Extend band's slot ranges and fixed-index records.
	b.widen(srcSlot, dstSlot)
	b.SrcFixedIdx[srcSlot] = srcS.FwCount - 1
	b.DstFixedIdx[dstSlot] = dstS.BwCount - 1

	// 5. Extend the band's control.
	for len(b.Controls) <= controlIdx {
		b.Controls = append(b.Controls, Control{})
	}
	ctrl := &b.Controls[controlIdx]
	ctrl.widen(srcSlot, dstSlot)
	ctrl.Lanes = append(ctrl.Lanes, id)

	// 6. Register the band as outgoing on src (dedup).
	if !srcClip.addFwBand(band) {
		return 0, fmt.Errorf("clip %d outgoing bands: %w", src, corerr.ErrBranchLimitExceeded)
	}

	// 7. Regenerate geometry if requested.
	if regenerate {
		if err := n.regeneratePointsLocked(band); err != nil {
			return 0, err
		}
	}

	return id, nil
}

// linkNeighbours adds the two-way fw_lanes/bw_lanes link (a→b forward,
// b→a backward), deduplicated, failing with BranchLimitExceeded if
// either side's neighbour list is already full.
func (n *Network) linkNeighbours(a, b model.LaneID) error {
	la, err := n.getLane(a)
	if err != nil {
		return err
	}
	lb, err := n.getLane(b)
	if err != nil {
		return err
	}
	fw, ok := addLaneNeighbour(la.FwLanes, b)
	if !ok {
		return fmt.Errorf("lane %d fw_lanes: %w", a, corerr.ErrBranchLimitExceeded)
	}
	la.FwLanes = fw
	bw, ok := addLaneNeighbour(lb.BwLanes, a)
	if !ok {
		return fmt.Errorf("lane %d bw_lanes: %w", b, corerr.ErrBranchLimitExceeded)
	}
	lb.BwLanes = bw
	return nil
}

// SetControl sets the two Bézier shape parameters for a band's control.
// Geometry is not regenerated until RegeneratePoints is called.
func (n *Network) SetControl(band model.BandID, idx int, c1, c2 geom.ControlPoint) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	b, err := n.getBand(band)
	if err != nil {
		return err
	}
	if idx < 0 || idx >= BandMaxControls {
		return fmt.Errorf("control index out of range: %w", corerr.ErrInvalidID)
	}
	for len(b.Controls) <= idx {
		b.Controls = append(b.Controls, Control{})
	}
	b.Controls[idx].C1 = c1
	b.Controls[idx].C2 = c2
	return nil
}

// RegeneratePoints rebuilds every lane's sampled polyline for a band:
// for each control, four 3-D anchors are built from the two clips' pose
// and the control's two (forward, vangle) parameters, the Bézier is
// sampled at N uniform points, and each lane owned by the control has
// its samples laterally offset by the cumulative slot widths.
func (n *Network) RegeneratePoints(band model.BandID) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.regeneratePointsLocked(band)
}

func (n *Network) regeneratePointsLocked(band model.BandID) error {
	b, err := n.getBand(band)
	if err != nil {
		return err
	}
	srcClip, err := n.getClip(b.SrcClip)
	if err != nil {
		return err
	}
	dstClip, err := n.getClip(b.DstClip)
	if err != nil {
		return err
	}

	for ci := range b.Controls {
		ctrl := &b.Controls[ci]
		if len(ctrl.Lanes) == 0 {
			continue
		}
		p1 := srcClip.Position
		p4 := dstClip.Position
		p2 := anchorFromControl(p1, srcClip.Angle, ctrl.C1)
		p3 := anchorFromControl(p4, dstClip.Angle+math.Pi, ctrl.C2)

		samples := geom.SampleBezier(p1, p2, p3, p4, n.opts.Samples)

		for _, laneID := range ctrl.Lanes {
			lane, err := n.getLane(laneID)
			if err != nil {
				return err
			}
			offset := lateralOffset(srcClip, lane.SrcSlot)
			lane.Samples = offsetSamples(samples, offset)
			if len(lane.Samples) > 0 {
				lane.Length = lane.Samples[len(lane.Samples)-1].AccumulatedDistance
			}
		}
	}
	return nil
}

// anchorFromControl builds an interior Bézier anchor by projecting
// forward from pose by c.Forward meters, rotated by c.VAngle.
func anchorFromControl(pose geom.Vec3, heading float64, c geom.ControlPoint) geom.Vec3 {
	ang := heading + c.VAngle
	return geom.Vec3{
		X: pose.X + c.Forward*math.Cos(ang),
		Y: pose.Y + c.Forward*math.Sin(ang),
		Z: pose.Z,
	}
}

// lateralOffset returns the cumulative slot width up to (not including)
// slot, used to fan lanes sharing one control out laterally.
func lateralOffset(clip *Clip, slot int) float64 {
	off := 0.0
	for i := 0; i < slot && i < len(clip.Slots); i++ {
		w := clip.Slots[i].Width
		if w == 0 {
			w = defaultSlotWidth
		}
		off += w
	}
	return off
}

const defaultSlotWidth = 3.5

func offsetSamples(samples []geom.Sample, lateral float64) []geom.Sample {
	if lateral == 0 {
		out := make([]geom.Sample, len(samples))
		copy(out, samples)
		return out
	}
	out := make([]geom.Sample, len(samples))
	for i, s := range samples {
		// Offset perpendicular to the local tangent approximated from
		// neighbouring samples; for the common case of near-straight
		// bands this is simply a Y-axis shift scaled by tangent normal.
		var tangent geom.Vec2
		if i+1 < len(samples) {
			tangent = geom.Vec2{X: samples[i+1].Position.X - s.Position.X, Y: samples[i+1].Position.Y - s.Position.Y}
		} else if i > 0 {
			tangent = geom.Vec2{X: s.Position.X - samples[i-1].Position.X, Y: s.Position.Y - samples[i-1].Position.Y}
		} else {
			tangent = geom.Vec2{X: 1, Y: 0}
		}
		nrm := normalize(geom.Vec2{X: -tangent.Y, Y: tangent.X})
		out[i] = geom.Sample{
			Position: geom.Vec3{
				X: s.Position.X + nrm.X*lateral,
				Y: s.Position.Y + nrm.Y*lateral,
				Z: s.Position.Z,
			},
			AccumulatedDistance: s.AccumulatedDistance,
		}
	}
	return out
}

func normalize(v geom.Vec2) geom.Vec2 {
	mag := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if mag == 0 {
		return geom.Vec2{}
	}
	return geom.Vec2{X: v.X / mag, Y: v.Y / mag}
}

// AttachSignal attaches a signal to a lane. Only one signal may be
// attached per lane at a time; attaching again replaces it.
func (n *Network) AttachSignal(lane model.LaneID, s signal.Signal) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	l, err := n.getLane(lane)
	if err != nil {
		return err
	}
	l.Signal = s
	return nil
}

// Signal returns the signal attached to lane, or corerr.ErrSignalNotAttached
// if the lane carries none.
func (n *Network) Signal(lane model.LaneID) (signal.Signal, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	l, err := n.getLane(lane)
	if err != nil {
		return nil, err
	}
	if l.Signal == nil {
		return nil, fmt.Errorf("lane %d: %w", lane, corerr.ErrSignalNotAttached)
	}
	return l.Signal, nil
}

// Pose returns a vehicle's current world position and heading, derived
// from its active lane's interpolated polyline.
func (n *Network) Pose(v model.VehicleID) (geom.Vec3, float64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	veh, err := n.getVehicle(v)
	if err != nil {
		return geom.Vec3{}, 0, err
	}
	lane, err := n.getLane(veh.ActiveIdentity.Lane)
	if err != nil {
		return geom.Vec3{}, 0, err
	}
	return lane.Interp(veh.Distance), lane.Heading(veh.Distance), nil
}

// BandSlotRange returns a band's widened source and destination slot
// ranges, for introspection by tests and tooling.
func (n *Network) BandSlotRange(id model.BandID) (srcMin, srcMax, dstMin, dstMax int, err error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	b, err := n.getBand(id)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return b.SrcMin, b.SrcMax, b.DstMin, b.DstMax, nil
}

// VehicleState returns a snapshot of a vehicle's active lane, nav
// cursor and speed, for introspection by tests and tooling.
func (n *Network) VehicleState(id model.VehicleID) (lane model.LaneID, activeNav int, speed float64, err error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	v, err := n.getVehicle(id)
	if err != nil {
		return 0, 0, 0, err
	}
	return v.ActiveIdentity.Lane, v.Nav.ActiveNav, v.Speed, nil
}

// Logger returns the network's configured logger.
func (n *Network) Logger() *slog.Logger { return n.opts.Logger }
