package network

import (
	"github.com/corridorsim/corridor/geom"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/signal"
)

// LaneVehicle is the snapshot of a vehicle currently traversing a lane,
// as stored in that lane's vehicles list.
type LaneVehicle struct {
	VehicleID model.VehicleID
	Distance  float64
	Speed     float64
	Target    model.Target
	Stage     model.Stage
}

// Lane is a single drivable 1-D path between two clips, sampled as a
// polyline from a cubic Bézier.
type Lane struct {
	alive bool

	Identity model.LaneIdentity // Lane, Band, Clip=src_clip
	DstClip  model.ClipID
	SrcSlot  int
	DstSlot  int

	FwLanes []model.LaneID
	BwLanes []model.LaneID

	BandControlIdx int

	Samples []geom.Sample
	Length  float64

	Vehicles []LaneVehicle

	Signal signal.Signal
}

func newLane(identity model.LaneIdentity, dstClip model.ClipID, srcSlot, dstSlot, controlIdx int) Lane {
	return Lane{
		alive:          true,
		Identity:       identity,
		DstClip:        dstClip,
		SrcSlot:        srcSlot,
		DstSlot:        dstSlot,
		BandControlIdx: controlIdx,
	}
}

func addLaneNeighbour(list []model.LaneID, id model.LaneID) ([]model.LaneID, bool) {
	for _, l := range list {
		if l == id {
			return list, true
		}
	}
	if len(list) >= LaneMaxConnections {
		return list, false
	}
	return append(list, id), true
}

// removeVehicle removes the entry for id using swap-with-last; order is
// not part of the contract.
func (l *Lane) removeVehicle(id model.VehicleID) bool {
	for i := range l.Vehicles {
		if l.Vehicles[i].VehicleID == id {
			last := len(l.Vehicles) - 1
			l.Vehicles[i] = l.Vehicles[last]
			l.Vehicles = l.Vehicles[:last]
			return true
		}
	}
	return false
}

func (l *Lane) upsertVehicle(v LaneVehicle) {
	for i := range l.Vehicles {
		if l.Vehicles[i].VehicleID == v.VehicleID {
			l.Vehicles[i] = v
			return
		}
	}
	l.Vehicles = append(l.Vehicles, v)
}

// Interp returns the position at the given accumulated distance along
// the lane's sampled polyline.
func (l *Lane) Interp(distance float64) geom.Vec3 {
	return geom.Interp(l.Samples, distance)
}

// Heading returns the tangent heading at the given accumulated distance.
func (l *Lane) Heading(distance float64) float64 {
	return geom.Heading(l.Samples, distance)
}
