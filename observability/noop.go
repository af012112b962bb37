package observability

// NoOpObserver discards every event.
type NoOpObserver struct{}

// ObserveOperation does nothing.
func (n *NoOpObserver) ObserveOperation(ctx OperationContext) {}

// NewNoOpObserver returns an Observer that discards every event.
func NewNoOpObserver() Observer {
	return &NoOpObserver{}
}

// multiObserver fans a single event out to several observers.
type multiObserver []Observer

func (m multiObserver) ObserveOperation(ctx OperationContext) {
	for _, o := range m {
		o.ObserveOperation(ctx)
	}
}

// Multi returns an Observer that forwards each event to every non-nil
// observer in order. It returns nil when no observer is left, so callers can
// keep treating "no observer" as disabled reporting.
func Multi(observers ...Observer) Observer {
	var kept multiObserver
	for _, o := range observers {
		if o != nil {
			kept = append(kept, o)
		}
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		return kept[0]
	default:
		return kept
	}
}
