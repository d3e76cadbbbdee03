// Package corerr defines the sentinel error kinds shared across the
// corridor engine's packages (the network builder, router and tick
// kernel all live in package network).
//
// Callers use errors.Is against these sentinels; call sites wrap them
// with fmt.Errorf("...: %w", ...) to attach the offending id or context.
package corerr

import "errors"

var (
	// ErrInvalidID reports a dereference of an unknown or freed id.
	ErrInvalidID = errors.New("invalid id")

	// ErrBranchLimitExceeded reports a fixed-capacity slot/connection list
	// that is already full.
	ErrBranchLimitExceeded = errors.New("branch limit exceeded")

	// ErrBandMismatch reports a lane whose endpoints disagree with its
	// owning band's endpoints.
	ErrBandMismatch = errors.New("band mismatch")

	// ErrRouteNone reports that A* emptied the open set without reaching
	// the destination band.
	ErrRouteNone = errors.New("no route")

	// ErrRouteSameBand reports that the source and destination identities
	// share a band; not a route.
	ErrRouteSameBand = errors.New("same band")

	// ErrRouteAborted reports that the router's soft visit cap was hit.
	ErrRouteAborted = errors.New("route aborted")

	// ErrRouteInternal reports a non-finite cost value encountered during
	// A* comparison; this indicates a defect in the graph, not the query.
	ErrRouteInternal = errors.New("route internal error")

	// ErrSignalNotAttached reports a signal lookup on a lane that carries
	// no attached signal.
	ErrSignalNotAttached = errors.New("signal not attached")
)
