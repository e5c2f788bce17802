package domain

// Status is an order's lifecycle state.
type Status string

const (
	StatusNew       Status = "new"
	StatusConfirmed Status = "confirmed"
	StatusPreparing Status = "preparing"
	StatusFitting   Status = "fitting"
	StatusShipping  Status = "shipping"
	StatusDelivered Status = "delivered"
	StatusReturned  Status = "returned"
)

// next maps each state to its forward successor. returned is handled
// separately since it is reachable from every non-terminal state.
var next = map[Status]Status{
	StatusNew:       StatusConfirmed,
	StatusConfirmed: StatusPreparing,
	StatusPreparing: StatusFitting,
	StatusFitting:   StatusShipping,
	StatusShipping:  StatusDelivered,
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusNew, StatusConfirmed, StatusPreparing, StatusFitting,
		StatusShipping, StatusDelivered, StatusReturned:
		return true
	}
	return false
}

func Terminal(s Status) bool {
	return s == StatusDelivered || s == StatusReturned
}

// CanTransition reports whether an order may move from one status to the
// next. Forward moves follow the fixed sequence one step at a time;
// returned is reachable from any non-terminal state. delivered -> returned
// is allowed only when the return-after-delivery policy is enabled.
func CanTransition(from, to Status, allowReturnAfterDelivery bool) bool {
	if !ValidStatus(from) || !ValidStatus(to) || from == to {
		return false
	}
	if to == StatusReturned {
		if from == StatusDelivered {
			return allowReturnAfterDelivery
		}
		return from != StatusReturned
	}
	return next[from] == to
}
