package event

import (
	"sync"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/rs/zerolog"
)

// StatusApplier applies a status change made in another view. Implementations get
// no way to publish, so a remote apply can never start another propagation.
type StatusApplier interface {
	ApplyRemoteStatus(e StatusChanged) bool
}

// ExpenseChangeApplier applies an expense change made in another view
type ExpenseChangeApplier interface {
	ApplyRemoteExpenseChange(e ExpenseChanged) bool
}

// Listener observes every delivered event after the views have applied it
type Listener func(e Event)

// routes lists the views each kind is delivered to; the origin is always skipped
var routes = map[Kind][]domain.View{
	KindMonthlyStatusChanged:  {domain.ViewMonthly, domain.ViewAnnual, domain.ViewPlanner},
	KindPlannerStatusChanged:  {domain.ViewMonthly, domain.ViewAnnual},
	KindMonthlyExpenseChanged: {domain.ViewPlanner},
	KindAnnualExpenseChanged:  {domain.ViewPlanner},
	KindDataChanged:           nil,
}

// Targets returns the views an event of the given kind from origin is routed to
func Targets(kind Kind, origin domain.View) []domain.View {
	var out []domain.View
	for _, v := range routes[kind] {
		if v != origin {
			out = append(out, v)
		}
	}
	return out
}

// Delivery is the outcome of routing one event
type Delivery struct {
	Event   Event
	Applied map[domain.View]bool
}

type statusKey struct {
	name       string
	statusType domain.StatusType
	week       int
}

// Dispatcher routes events between views. Publish only enqueues; Drain delivers,
// so the publishing view always finishes its own update before any other view
// sees the change.
type Dispatcher struct {
	logger zerolog.Logger

	mu              sync.Mutex
	statusAppliers  map[domain.View]StatusApplier
	expenseAppliers map[domain.View]ExpenseChangeApplier
	listeners       []Listener
	queue           []Event
	inFlight        map[statusKey]bool
	draining        bool
}

// NewDispatcher creates a new Dispatcher
func NewDispatcher(logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		logger:          logger.With().Str("component", "dispatcher").Logger(),
		statusAppliers:  make(map[domain.View]StatusApplier),
		expenseAppliers: make(map[domain.View]ExpenseChangeApplier),
		inFlight:        make(map[statusKey]bool),
	}
}

// RegisterStatusApplier attaches a view's status handler
func (d *Dispatcher) RegisterStatusApplier(view domain.View, applier StatusApplier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.statusAppliers[view] = applier
}

// RegisterExpenseApplier attaches a view's expense-change handler
func (d *Dispatcher) RegisterExpenseApplier(view domain.View, applier ExpenseChangeApplier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expenseAppliers[view] = applier
}

// Subscribe adds a listener that sees every event, including dataChanged
func (d *Dispatcher) Subscribe(listener Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listener)
}

// Publish enqueues an event. A status event matching one that is currently being
// delivered is dropped and false is returned.
func (d *Dispatcher) Publish(e Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sc, ok := e.(StatusChanged); ok && d.inFlight[keyOf(sc)] {
		d.logger.Warn().
			Str("kind", string(sc.Kind())).
			Str("expense_name", sc.ExpenseName).
			Str("status_type", string(sc.StatusType)).
			Int("week", sc.Week).
			Msg("Dropping status event published during its own delivery")
		return false
	}

	d.queue = append(d.queue, e)
	return true
}

// Pending returns the number of queued events
func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

// Drain delivers queued events in publish order, including any enqueued while
// draining. A nested call returns nil and leaves the work to the outer call.
func (d *Dispatcher) Drain() []Delivery {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return nil
	}
	d.draining = true
	d.mu.Unlock()

	var deliveries []Delivery
	for {
		d.mu.Lock()
		if len(d.queue) == 0 {
			d.draining = false
			d.mu.Unlock()
			return deliveries
		}
		e := d.queue[0]
		d.queue = d.queue[1:]
		d.mu.Unlock()

		deliveries = append(deliveries, d.deliver(e))
	}
}

func (d *Dispatcher) deliver(e Event) Delivery {
	delivery := Delivery{Event: e, Applied: make(map[domain.View]bool)}
	targets := Targets(e.Kind(), e.Origin())

	switch ev := e.(type) {
	case StatusChanged:
		key := keyOf(ev)
		d.mu.Lock()
		d.inFlight[key] = true
		d.mu.Unlock()

		for _, view := range targets {
			if applier := d.statusApplier(view); applier != nil {
				delivery.Applied[view] = applier.ApplyRemoteStatus(ev)
			}
		}

		d.mu.Lock()
		delete(d.inFlight, key)
		d.mu.Unlock()

	case ExpenseChanged:
		for _, view := range targets {
			if applier := d.expenseApplier(view); applier != nil {
				delivery.Applied[view] = applier.ApplyRemoteExpenseChange(ev)
			}
		}
	}

	d.logger.Debug().
		Str("kind", string(e.Kind())).
		Str("origin", string(e.Origin())).
		Int("targets", len(targets)).
		Msg("Event delivered")

	d.mu.Lock()
	listeners := append([]Listener(nil), d.listeners...)
	d.mu.Unlock()
	for _, l := range listeners {
		l(e)
	}

	return delivery
}

func (d *Dispatcher) statusApplier(view domain.View) StatusApplier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.statusAppliers[view]
}

func (d *Dispatcher) expenseApplier(view domain.View) ExpenseChangeApplier {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.expenseAppliers[view]
}

func keyOf(e StatusChanged) statusKey {
	return statusKey{name: e.ExpenseName, statusType: e.StatusType, week: e.Week}
}
