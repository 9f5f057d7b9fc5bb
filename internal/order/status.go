package order

// TransitionPolicy decides which admin status changes are accepted. The
// storefront UI presents the lifecycle as linear but the store never enforced
// it, so the permissive behavior stays the default. LinearPolicy is the
// hardened alternative for deployments that want the graph enforced.
type TransitionPolicy interface {
	CanTransition(from, to Status) bool
}

type permissivePolicy struct{}

// PermissivePolicy accepts every transition between valid statuses.
func PermissivePolicy() TransitionPolicy {
	return permissivePolicy{}
}

func (permissivePolicy) CanTransition(from, to Status) bool {
	return to.Valid()
}

var linearTransitions = map[Status]map[Status]bool{
	StatusAwaitingPayment: {
		StatusPaid:     true,
		StatusRejected: true,
		StatusCanceled: true,
	},
	StatusPaid: {
		StatusPreparing: true,
		StatusRejected:  true,
		StatusCanceled:  true,
	},
	StatusPreparing: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
	StatusRejected:  {},
	StatusCanceled:  {},
}

type linearPolicy struct{}

// LinearPolicy enforces the adjacency graph the UI implies:
// AWAITING_PAYMENT -> PAID -> PREPARING -> DELIVERED, with REJECTED and
// CANCELED reachable from the first two states only.
func LinearPolicy() TransitionPolicy {
	return linearPolicy{}
}

func (linearPolicy) CanTransition(from, to Status) bool {
	return linearTransitions[from][to]
}
