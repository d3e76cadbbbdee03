package network

import (
	"fmt"
	"math"

	"github.com/corridorsim/corridor/corerr"
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
)

type gfCost struct {
	g, f float64
}

// Renavigate runs A* over the band graph from active's band to the
// navigation's target band. On success it populates
// nav.Nav, nav.NavValidBandLanes and resets nav.ActiveNav to 0.
func (n *Network) Renavigate(nav *Navigation, active model.LaneIdentity) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.renavigateLocked(nav, active)
}

func (n *Network) renavigateLocked(nav *Navigation, active model.LaneIdentity) error {
	if active.Band == nav.TargetIdentity.Band {
		return corerr.ErrRouteSameBand
	}
	nav.reset()

	dstLane, err := n.getLane(nav.TargetIdentity.Lane)
	if err != nil {
		return err
	}
	if len(dstLane.Samples) == 0 {
		return fmt.Errorf("destination lane %d has no geometry: %w", nav.TargetIdentity.Lane, corerr.ErrRouteInternal)
	}
	focus := dstLane.Samples[len(dstLane.Samples)-1].Position.To2()

	activeLane, err := n.getLane(active.Lane)
	if err != nil {
		return err
	}
	if len(activeLane.Samples) == 0 {
		return fmt.Errorf("active lane %d has no geometry: %w", active.Lane, corerr.ErrRouteInternal)
	}

	open := []model.BandID{active.Band}
	gf := map[model.BandID]gfCost{
		active.Band: {g: 0, f: geom.Distance(activeLane.Samples[len(activeLane.Samples)-1].Position.To2(), focus)},
	}
	preceding := map[model.BandID]model.BandID{}

	visitCap := routeVisitMultiplier * (n.bands.Len() + 1)
	visits := 0

	for len(open) > 0 {
		visits++
		if visits > visitCap {
			return corerr.ErrRouteAborted
		}

		minIdx := 0
		for i := 1; i < len(open); i++ {
			fi, fm := gf[open[i]].f, gf[open[minIdx]].f
			if math.IsNaN(fi) || math.IsInf(fi, 0) || math.IsNaN(fm) || math.IsInf(fm, 0) {
				return corerr.ErrRouteInternal
			}
			if fi < fm {
				minIdx = i
			}
		}
		bandMin := open[minIdx]

		if bandMin == nav.TargetIdentity.Band {
			predID, ok := preceding[bandMin]
			if ok {
				predBand, err := n.getBand(predID)
				if err != nil {
					return err
				}
				predClip, err := n.getClip(predBand.DstClip)
				if err != nil {
					return err
				}
				slot, found := findLaneSlot(predClip, nav.TargetIdentity.Lane, true)
				if found && slot >= predBand.DstMin && slot <= predBand.DstMax {
					return n.reconstructNav(nav, preceding, active)
				}
			}
			// Unreachable from this approach; drop and keep searching.
			open = append(open[:minIdx], open[minIdx+1:]...)
			continue
		}
		open = append(open[:minIdx], open[minIdx+1:]...)

		curBand, err := n.getBand(bandMin)
		if err != nil {
			return err
		}
		curClip, err := n.getClip(curBand.DstClip)
		if err != nil {
			return err
		}
		curGF := gf[bandMin]

		for _, succID := range curClip.FwBands {
			succBand, err := n.getBand(succID)
			if err != nil {
				return err
			}
			repLaneID, ok := firstLaneAtSlot(curClip, succBand.SrcMin, true)
			if !ok {
				continue
			}
			repLane, err := n.getLane(repLaneID)
			if err != nil {
				return err
			}
			if len(repLane.Samples) == 0 {
				continue
			}
			edgeCost := repLane.Length
			newG := curGF.g + edgeCost
			existing, has := gf[succID]
			if has && !(newG < existing.g) {
				continue
			}
			preceding[succID] = bandMin
			endpoint := repLane.Samples[len(repLane.Samples)-1].Position.To2()
			gf[succID] = gfCost{g: newG, f: newG + geom.Distance(endpoint, focus)}
			if !containsBand(open, succID) {
				open = append(open, succID)
			}
		}
	}

	return corerr.ErrRouteNone
}

func containsBand(list []model.BandID, id model.BandID) bool {
	for _, b := range list {
		if b == id {
			return true
		}
	}
	return false
}

// firstLaneAtSlot returns the first fw (fromFw=true) or bw lane id
// registered at a clip slot.
func firstLaneAtSlot(c *Clip, slot int, fromFw bool) (model.LaneID, bool) {
	if slot < 0 || slot >= len(c.Slots) {
		return 0, false
	}
	s := &c.Slots[slot]
	if fromFw {
		if s.FwCount == 0 {
			return 0, false
		}
		return s.Fw[0], true
	}
	if s.BwCount == 0 {
		return 0, false
	}
	return s.Bw[0], true
}

// findLaneSlot searches a clip's slots for the slot containing lane on
// the fw (fromFw=true) or bw side.
func findLaneSlot(c *Clip, lane model.LaneID, fromFw bool) (int, bool) {
	for i := range c.Slots {
		s := &c.Slots[i]
		if fromFw {
			for j := 0; j < s.FwCount; j++ {
				if s.Fw[j] == lane {
					return i, true
				}
			}
		} else {
			for j := 0; j < s.BwCount; j++ {
				if s.Bw[j] == lane {
					return i, true
				}
			}
		}
	}
	return 0, false
}

// reconstructNav walks preceding backwards from the target band to the
// active band, then computes each hop's valid-lane set as the
// intersection of the outgoing band's source range with the incoming
// band's destination range.
func (n *Network) reconstructNav(nav *Navigation, preceding map[model.BandID]model.BandID, active model.LaneIdentity) error {
	current := nav.TargetIdentity.Band
	var bands []model.BandID
	for {
		bands = append([]model.BandID{current}, bands...)
		if current == active.Band {
			break
		}
		pred, ok := preceding[current]
		if !ok {
			break
		}
		current = pred
	}

	nav.Nav = make([]model.BandIdentity, len(bands))
	for i, bID := range bands {
		b, err := n.getBand(bID)
		if err != nil {
			return err
		}
		nav.Nav[i] = model.BandIdentity{Band: bID, Clip: b.SrcClip}
	}

	nav.NavValidBandLanes = make([][]model.LaneID, len(nav.Nav))
	for i := range nav.Nav {
		if i+1 == len(nav.Nav) {
			nav.NavValidBandLanes[i] = []model.LaneID{nav.TargetIdentity.Lane}
			continue
		}
		band, err := n.getBand(nav.Nav[i].Band)
		if err != nil {
			return err
		}
		fwBand, err := n.getBand(nav.Nav[i+1].Band)
		if err != nil {
			return err
		}
		dstClip, err := n.getClip(band.DstClip)
		if err != nil {
			return err
		}
		lo := max(fwBand.SrcMin, band.DstMin)
		hi := min(fwBand.SrcMax, band.DstMax)
		var valid []model.LaneID
		for slot := lo; slot <= hi; slot++ {
			if slot < 0 || slot >= len(dstClip.Slots) {
				continue
			}
			s := &dstClip.Slots[slot]
			for j := 0; j < s.BwCount; j++ {
				valid = append(valid, s.Bw[j])
			}
		}
		nav.NavValidBandLanes[i] = valid
	}

	nav.ActiveNav = 0
	return nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// GetForwardLanes walks downstream from fromLane, picking the first
// fw_lanes entry valid for the next nav hop, until accumulated
// length reaches minLength, the nav cursor runs off the end, or no
// valid successor exists.
func (n *Network) GetForwardLanes(nav *Navigation, minLength float64, fromLane model.LaneID) ([]ForwardLane, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.getForwardLanesLocked(nav, minLength, fromLane)
}

func (n *Network) getForwardLanesLocked(nav *Navigation, minLength float64, fromLane model.LaneID) ([]ForwardLane, error) {
	var result []ForwardLane
	total := 0.0
	lane := fromLane
	navIdx := nav.ActiveNav

	for {
		if navIdx+1 >= len(nav.NavValidBandLanes) {
			break
		}
		l, err := n.getLane(lane)
		if err != nil {
			return result, err
		}
		if len(l.FwLanes) == 0 {
			break
		}
		valid := nav.NavValidBandLanes[navIdx+1]
		next, ok := firstValidFwLane(l.FwLanes, valid)
		if !ok {
			break
		}
		lane = next
		navIdx++

		nl, err := n.getLane(lane)
		if err != nil {
			return result, err
		}
		result = append(result, ForwardLane{ID: lane, Length: nl.Length})
		total += nl.Length
		if total >= minLength {
			break
		}
	}
	return result, nil
}

func firstValidFwLane(fw []model.LaneID, valid []model.LaneID) (model.LaneID, bool) {
	for _, f := range fw {
		for _, v := range valid {
			if f == v {
				return f, true
			}
		}
	}
	return 0, false
}
