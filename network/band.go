package network

import (
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
)

// Control is one of a band's Bézier shape definitions: the two interior
// control-point parameters shared by the lanes assigned to it, plus the
// slot ranges those lanes occupy.
type Control struct {
	Empty bool

	C1, C2 geom.ControlPoint

	Lanes []model.LaneID

	SrcMin, SrcMax int
	DstMin, DstMax int
}

func (c *Control) widen(srcSlot, dstSlot int) {
	if c.Empty {
		c.SrcMin, c.SrcMax = srcSlot, srcSlot
		c.DstMin, c.DstMax = dstSlot, dstSlot
		c.Empty = false
		return
	}
	if srcSlot < c.SrcMin {
		c.SrcMin = srcSlot
	}
	if srcSlot > c.SrcMax {
		c.SrcMax = srcSlot
	}
	if dstSlot < c.DstMin {
		c.DstMin = dstSlot
	}
	if dstSlot > c.DstMax {
		c.DstMax = dstSlot
	}
}

// Band is a bundle of parallel lanes between exactly two clips.
type Band struct {
	alive bool

	SrcClip model.ClipID
	DstClip model.ClipID

	Empty          bool
	SrcMin, SrcMax int
	DstMin, DstMax int

	SrcFixedIdx map[int]int
	DstFixedIdx map[int]int

	Controls []Control
}

func newBand(src, dst model.ClipID) Band {
	return Band{
		alive:       true,
		SrcClip:     src,
		DstClip:     dst,
		Empty:       true,
		SrcFixedIdx: make(map[int]int),
		DstFixedIdx: make(map[int]int),
	}
}

func (b *Band) widen(srcSlot, dstSlot int) {
	if b.Empty {
		b.SrcMin, b.SrcMax = srcSlot, srcSlot
		b.DstMin, b.DstMax = dstSlot, dstSlot
		b.Empty = false
		return
	}
	if srcSlot < b.SrcMin {
		b.SrcMin = srcSlot
	}
	if srcSlot > b.SrcMax {
		b.SrcMax = srcSlot
	}
	// This widens dst against dstSlot,
	// not against srcMin — the source material's analogous line compares
	// the wrong field.
	if dstSlot < b.DstMin {
		b.DstMin = dstSlot
	}
	if dstSlot > b.DstMax {
		b.DstMax = dstSlot
	}
}
