package network

// Capacity and tuning constants for the network and its tick kernel.
const (
	// LaneMaxConnections bounds a lane's fw_lanes/bw_lanes neighbour lists.
	LaneMaxConnections = 5
	// ClipMaxLength bounds the number of lateral slots on a clip.
	ClipMaxLength = 64
	// ClipMaxConnections bounds the lanes a single clip slot can hold in
	// each direction.
	ClipMaxConnections = 5
	// ClipMaxBands bounds a clip's outgoing band set.
	ClipMaxBands = 32
	// BandMaxControls bounds a band's Bézier control set.
	BandMaxControls = 8
	// LaneMaxPoints is the default Bézier sampling density N.
	LaneMaxPoints = 16

	// Lookahead is the forward-lane expansion horizon in meters.
	Lookahead = 500.0
	// LaneSpeedDefault is the default cruising speed, m/s-equivalent units.
	LaneSpeedDefault = 100.0
	// WillingMaxAccel is the default longitudinal acceleration ceiling.
	WillingMaxAccel = 20.0
	// WillingMaxDecel is the default longitudinal deceleration ceiling.
	WillingMaxDecel = 50.0

	// stageTolerance (τ) is the dead-band around zero desired-speed delta.
	stageTolerance = 0.01

	// routeVisitMultiplier is the router's soft visit-cap multiplier
	// against the current band count.
	routeVisitMultiplier = 10
)
