package network_test

import (
	"errors"
	"math"
	"testing"

	"github.com/corridorsim/corridor/corerr"
	"github.com/corridorsim/corridor/model"
	"github.com/corridorsim/corridor/scenario"
)

func TestScenarioASameBandSpawnFails(t *testing.T) {
	built, err := scenario.A()
	if err != nil {
		t.Fatalf("building scenario A: %v", err)
	}
	_, err = built.Net.Spawn(built.Src, built.Dst)
	if !errors.Is(err, corerr.ErrRouteSameBand) {
		t.Fatalf("Spawn(src,src): got %v, want ErrRouteSameBand", err)
	}
}

func TestScenarioBRoutesAndTransitionsLanes(t *testing.T) {
	built, err := scenario.B()
	if err != nil {
		t.Fatalf("building scenario B: %v", err)
	}
	vid, err := built.Net.Spawn(built.Src, built.Dst)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	laneLA := built.Ids["laneLA"]
	laneLB := built.Ids["laneLB"]

	lane, _, _, err := built.Net.VehicleState(vid)
	if err != nil {
		t.Fatalf("VehicleState: %v", err)
	}
	if uint32(lane) != laneLA {
		t.Fatalf("initial active lane = %d, want %d (LA)", lane, laneLA)
	}

	transitioned := false
	for i := 0; i < 2000; i++ {
		if err := built.Net.Step(0.1); err != nil {
			t.Fatalf("Step: %v", err)
		}
		lane, activeNav, _, err := built.Net.VehicleState(vid)
		if err != nil {
			// despawned before transitioning is a failure for this scenario
			t.Fatalf("vehicle disappeared before reaching LB: %v", err)
		}
		if uint32(lane) == laneLB {
			if activeNav != 1 {
				t.Fatalf("active_nav = %d after transition to LB, want 1", activeNav)
			}
			transitioned = true
			break
		}
	}
	if !transitioned {
		t.Fatal("vehicle never transitioned onto LB")
	}
}

func TestScenarioCMergeBandRanges(t *testing.T) {
	built, err := scenario.C()
	if err != nil {
		t.Fatalf("building scenario C: %v", err)
	}
	bandBF := built.Ids["bandBF"]
	srcMin, srcMax, dstMin, dstMax, err := built.Net.BandSlotRange(model.BandID(bandBF))
	if err != nil {
		t.Fatalf("BandSlotRange: %v", err)
	}
	if srcMin != 0 || srcMax != 2 || dstMin != 0 || dstMax != 1 {
		t.Fatalf("BF range = src[%d,%d] dst[%d,%d], want src[0,2] dst[0,1]", srcMin, srcMax, dstMin, dstMax)
	}
}

func TestScenarioDAvoidsDeadEnd(t *testing.T) {
	built, err := scenario.D()
	if err != nil {
		t.Fatalf("building scenario D: %v", err)
	}
	vid, err := built.Net.Spawn(built.Src, built.Dst)
	if err != nil {
		t.Fatalf("Spawn: %v (router must find the D branch around the G dead end)", err)
	}
	if _, _, _, err := built.Net.VehicleState(vid); err != nil {
		t.Fatalf("VehicleState: %v", err)
	}
}

func TestScenarioEFullStopDestroysVehicle(t *testing.T) {
	built, err := scenario.E()
	if err != nil {
		t.Fatalf("building scenario E: %v", err)
	}
	vid, err := built.Net.Spawn(built.Src, built.Dst)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := built.Net.SeedVehicleState(vid, 0, 20); err != nil {
		t.Fatalf("SeedVehicleState: %v", err)
	}

	destroyed := false
	for i := 0; i < 5000; i++ {
		if err := built.Net.Step(0.05); err != nil {
			t.Fatalf("Step: %v", err)
		}
		if _, _, _, err := built.Net.VehicleState(vid); err != nil {
			destroyed = true
			break
		}
	}
	if !destroyed {
		t.Fatal("vehicle was never despawned by the FullStop signal")
	}
}

func TestScenarioFFollowerSlowsNearLeader(t *testing.T) {
	built, leader, err := scenario.F()
	if err != nil {
		t.Fatalf("building scenario F: %v", err)
	}
	follower, err := built.Net.Spawn(built.Src, built.Dst)
	if err != nil {
		t.Fatalf("Spawn follower: %v", err)
	}
	if err := built.Net.SeedVehicleState(follower, 0, 15); err != nil {
		t.Fatalf("SeedVehicleState: %v", err)
	}

	const closingTolerance = 1e-3
	inSlowdown := false
	var lastSpeedInSlowdown float64

	for i := 0; i < 300; i++ {
		if err := built.Net.Step(0.1); err != nil {
			t.Fatalf("Step: %v", err)
		}
		_, _, fSpeed, err := built.Net.VehicleState(follower)
		if err != nil {
			t.Fatalf("follower disappeared at tick %d: %v", i, err)
		}
		if _, _, _, err := built.Net.VehicleState(leader); err != nil {
			t.Fatalf("leader disappeared at tick %d: %v", i, err)
		}

		fPos, _, err := built.Net.Pose(follower)
		if err != nil {
			t.Fatalf("Pose(follower): %v", err)
		}
		lPos, _, err := built.Net.Pose(leader)
		if err != nil {
			t.Fatalf("Pose(leader): %v", err)
		}
		dx, dy := fPos.X-lPos.X, fPos.Y-lPos.Y
		distToLeader := math.Sqrt(dx*dx + dy*dy)

		if distToLeader < 1 {
			t.Fatalf("follower closed within 1m of leader at tick %d (distance=%v)", i, distToLeader)
		}

		secondsToLeader := distToLeader
		if fSpeed > 0 {
			secondsToLeader = distToLeader / fSpeed
		}
		if secondsToLeader < 2 {
			if inSlowdown && fSpeed > lastSpeedInSlowdown+closingTolerance {
				t.Fatalf("follower speed rose from %v to %v at tick %d while seconds_to_leader=%v < 2",
					lastSpeedInSlowdown, fSpeed, i, secondsToLeader)
			}
			inSlowdown = true
			lastSpeedInSlowdown = fSpeed
		}
	}
	if !inSlowdown {
		t.Fatal("follower never entered the seconds_to_leader < 2 slowdown window")
	}
}
