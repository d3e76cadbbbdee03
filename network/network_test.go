package network

import (
	"errors"
	"testing"

	"github.com/corridorsim/corridor/corerr"
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/signal"
)

func mustClip(t *testing.T, n *Network, x, y float64) model.ClipID {
	t.Helper()
	id, err := n.NewClip(geom.Vec3{X: x, Y: y}, 0, 0)
	if err != nil {
		t.Fatalf("NewClip: %v", err)
	}
	return id
}

func TestNewLaneInitialisesBandRangeAndGeometry(t *testing.T) {
	n := New(DefaultOptions())
	a := mustClip(t, n, 0, 0)
	b := mustClip(t, n, 0, 150)

	band, err := n.NewBand(a, b)
	if err != nil {
		t.Fatalf("NewBand: %v", err)
	}
	lane, err := n.NewLane(a, b, 0, 0, band, 0, true)
	if err != nil {
		t.Fatalf("NewLane: %v", err)
	}

	srcMin, srcMax, dstMin, dstMax, err := n.BandSlotRange(band)
	if err != nil {
		t.Fatalf("BandSlotRange: %v", err)
	}
	if srcMin != 0 || srcMax != 0 || dstMin != 0 || dstMax != 0 {
		t.Fatalf("single-lane band range = [%d,%d]/[%d,%d], want [0,0]/[0,0]", srcMin, srcMax, dstMin, dstMax)
	}

	l, err := n.getLane(lane)
	if err != nil {
		t.Fatalf("getLane: %v", err)
	}
	if len(l.Samples) == 0 {
		t.Fatal("expected geometry after regenerate=true")
	}
}

func TestNewLaneRejectsBandMismatch(t *testing.T) {
	n := New(DefaultOptions())
	a := mustClip(t, n, 0, 0)
	b := mustClip(t, n, 0, 150)
	c := mustClip(t, n, 150, 150)

	band, err := n.NewBand(a, b)
	if err != nil {
		t.Fatalf("NewBand: %v", err)
	}
	_, err = n.NewLane(a, c, 0, 0, band, 0, false)
	if !errors.Is(err, corerr.ErrBandMismatch) {
		t.Fatalf("NewLane with mismatched dst clip: got %v, want ErrBandMismatch", err)
	}
}

func TestSlotInsertCapacityLimit(t *testing.T) {
	n := New(DefaultOptions())
	a := mustClip(t, n, 0, 0)

	clip, err := n.getClip(a)
	if err != nil {
		t.Fatalf("getClip: %v", err)
	}
	slot := &clip.Slots[0]
	for i := 0; i < ClipMaxConnections; i++ {
		if !slot.insertFw(model.LaneID(i + 1)) {
			t.Fatalf("insertFw %d should have succeeded under the cap", i)
		}
	}
	if slot.insertFw(model.LaneID(999)) {
		t.Fatal("insertFw beyond ClipMaxConnections should fail")
	}
}

func TestMergeBandWidensAcrossThreeLanes(t *testing.T) {
	n := New(DefaultOptions())
	e := mustClip(t, n, 0, 600)
	f := mustClip(t, n, 30, 750)

	band, err := n.NewBand(e, f)
	if err != nil {
		t.Fatalf("NewBand: %v", err)
	}
	if _, err := n.NewLane(e, f, 0, 0, band, 0, false); err != nil {
		t.Fatalf("lane m: %v", err)
	}
	if _, err := n.NewLane(e, f, 1, 0, band, 1, false); err != nil {
		t.Fatalf("lane n: %v", err)
	}
	if _, err := n.NewLane(e, f, 2, 1, band, 2, false); err != nil {
		t.Fatalf("lane o: %v", err)
	}

	srcMin, srcMax, dstMin, dstMax, err := n.BandSlotRange(band)
	if err != nil {
		t.Fatalf("BandSlotRange: %v", err)
	}
	if srcMin != 0 || srcMax != 2 || dstMin != 0 || dstMax != 1 {
		t.Fatalf("merge band range = src[%d,%d] dst[%d,%d], want src[0,2] dst[0,1]", srcMin, srcMax, dstMin, dstMax)
	}
}

func TestGetInvalidIDsReturnErrInvalidID(t *testing.T) {
	n := New(DefaultOptions())
	if _, err := n.getClip(999); !errors.Is(err, corerr.ErrInvalidID) {
		t.Fatalf("getClip(999): got %v, want ErrInvalidID", err)
	}
	if _, err := n.getBand(999); !errors.Is(err, corerr.ErrInvalidID) {
		t.Fatalf("getBand(999): got %v, want ErrInvalidID", err)
	}
	if _, err := n.getLane(999); !errors.Is(err, corerr.ErrInvalidID) {
		t.Fatalf("getLane(999): got %v, want ErrInvalidID", err)
	}
}

func TestSignalReportsUnattached(t *testing.T) {
	n := New(DefaultOptions())
	a := mustClip(t, n, 0, 0)
	b := mustClip(t, n, 0, 150)
	band, err := n.NewBand(a, b)
	if err != nil {
		t.Fatalf("NewBand: %v", err)
	}
	lane, err := n.NewLane(a, b, 0, 0, band, 0, true)
	if err != nil {
		t.Fatalf("NewLane: %v", err)
	}

	if _, err := n.Signal(lane); !errors.Is(err, corerr.ErrSignalNotAttached) {
		t.Fatalf("Signal on a lane with none attached: got %v, want ErrSignalNotAttached", err)
	}

	id := signal.Identity{ID: 1, Lane: lane, Band: band, Clip: a, SignalDistance: 100, ActiveDistance: 20}
	s := signal.NewFullStop(id)
	if err := n.AttachSignal(lane, s); err != nil {
		t.Fatalf("AttachSignal: %v", err)
	}
	got, err := n.Signal(lane)
	if err != nil {
		t.Fatalf("Signal after attach: %v", err)
	}
	if got != signal.Signal(s) {
		t.Fatal("Signal did not return the attached signal")
	}
}
