package model

// OrderStatus is the work-order lifecycle state, persisted as a string
type OrderStatus string

const (
	StatusOpen       OrderStatus = "open"        // created, awaiting a mechanic
	StatusInProgress OrderStatus = "in_progress" // mechanic assigned or parts in use
	StatusCompleted  OrderStatus = "completed"   // terminal
)

// allowedTransitions is the forward-only transition graph. Manager
// overrides bypass it, everything else must follow it.
var allowedTransitions = map[OrderStatus][]OrderStatus{
	StatusOpen:       {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
	StatusCompleted:  {},
}

// ParseOrderStatus maps a submitted status string onto the closed enum
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case StatusOpen, StatusInProgress, StatusCompleted:
		return OrderStatus(s), true
	}
	return "", false
}

// Valid reports whether the status is one of the recognized values
func (s OrderStatus) Valid() bool {
	_, ok := ParseOrderStatus(string(s))
	return ok
}

// CanTransition reports whether from -> to is an allowed forward transition
func CanTransition(from, to OrderStatus) bool {
	if from == to {
		return true
	}
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
