package tracker

// Status is the dispatch lifecycle state.
type Status string

const (
	// StatusIdle means no dispatch is active.
	StatusIdle Status = "IDLE"
	// StatusDispatching means a unit and hospital are being resolved.
	StatusDispatching Status = "DISPATCHING"
	// StatusDispatched means a unit is en route to the destination.
	StatusDispatched Status = "DISPATCHED"
	// StatusArrived means the unit reached the destination.
	StatusArrived Status = "ARRIVED"
)
