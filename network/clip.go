package network

import (
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
)

// Slot is one lateral position across a clip: the lanes entering it
// (bw, from the clip's perspective as a destination) and the lanes
// leaving it (fw, as a source), plus its lateral width.
type Slot struct {
	Width float64

	FwCount int
	Fw      [ClipMaxConnections]model.LaneID

	BwCount int
	Bw      [ClipMaxConnections]model.LaneID
}

func (s *Slot) insertFw(id model.LaneID) bool {
	for i := 0; i < s.FwCount; i++ {
		if s.Fw[i] == id {
			return true
		}
	}
	if s.FwCount >= ClipMaxConnections {
		return false
	}
	s.Fw[s.FwCount] = id
	s.FwCount++
	return true
}

func (s *Slot) insertBw(id model.LaneID) bool {
	for i := 0; i < s.BwCount; i++ {
		if s.Bw[i] == id {
			return true
		}
	}
	if s.BwCount >= ClipMaxConnections {
		return false
	}
	s.Bw[s.BwCount] = id
	s.BwCount++
	return true
}

// Clip is an intersection-like junction point: a laterally ordered set
// of slots plus the bands leaving it.
type Clip struct {
	alive bool

	Position geom.Vec3
	Angle    float64
	Bank     float64

	Slots   []Slot
	FwBands []model.BandID
}

func newClip(pos geom.Vec3, angle, bank float64) Clip {
	return Clip{
		alive:    true,
		Position: pos,
		Angle:    angle,
		Bank:     bank,
		Slots:    make([]Slot, ClipMaxLength),
	}
}

func (c *Clip) addFwBand(id model.BandID) bool {
	for _, b := range c.FwBands {
		if b == id {
			return true
		}
	}
	if len(c.FwBands) >= ClipMaxBands {
		return false
	}
	c.FwBands = append(c.FwBands, id)
	return true
}
