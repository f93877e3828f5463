package integration

// UnitState tracks a record's progress through the pipeline. States only
// advance forward; Rejected and Failed are terminal.
type UnitState string

const (
	StateReceived      UnitState = "RECEIVED"
	StateAuthenticated UnitState = "AUTHENTICATED"
	StateResolved      UnitState = "RESOLVED"
	StateMerged        UnitState = "MERGED"
	StateStockApplied  UnitState = "STOCK_APPLIED"
	StateCommitted     UnitState = "COMMITTED"
	StateRejected      UnitState = "REJECTED"
	StateFailed        UnitState = "FAILED"
)

// IsTerminal reports whether no further transitions are possible
func (s UnitState) IsTerminal() bool {
	switch s {
	case StateCommitted, StateRejected, StateFailed:
		return true
	}
	return false
}

var stateOrder = map[UnitState]int{
	StateReceived:      0,
	StateAuthenticated: 1,
	StateResolved:      2,
	StateMerged:        3,
	StateStockApplied:  4,
	StateCommitted:     5,
}

// CanAdvanceTo reports whether the transition s -> next is legal. Any
// non-terminal state may fall to Rejected or Failed; progress states
// advance strictly forward.
func (s UnitState) CanAdvanceTo(next UnitState) bool {
	if s.IsTerminal() {
		return false
	}
	if next == StateRejected || next == StateFailed {
		return true
	}
	from, ok := stateOrder[s]
	if !ok {
		return false
	}
	to, ok := stateOrder[next]
	if !ok {
		return false
	}
	return to > from
}

// UnitResult summarizes the outcome of one processed record
type UnitResult struct {
	EventID      string    `json:"event_id,omitempty"`
	ExternalID   string    `json:"external_id,omitempty"`
	State        UnitState `json:"state"`
	Deduplicated bool      `json:"deduplicated,omitempty"`
	Error        string    `json:"error,omitempty"`
}
