package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/event"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/util"
	"github.com/dafibh/homebudget/homebudget-backend/internal/view"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
	"github.com/rs/zerolog"
)

// State is the session's budget period
type State struct {
	Week  int        `json:"week"`
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// Propagation reports which views applied a status change
type Propagation struct {
	Kind    event.Kind           `json:"kind"`
	Applied map[domain.View]bool `json:"applied"`
}

// Session is the composition root of one open budget: the three views, the
// dispatcher between them, the persister and the stateless services. Every
// operation holds the session lock, the way a single UI event loop would.
type Session struct {
	mu     sync.Mutex
	logger zerolog.Logger
	now    func() time.Time

	state State

	monthly *view.MonthlyView
	annual  *view.AnnualView
	planner *view.PlannerView
	income  []*domain.IncomeSource

	dispatcher *event.Dispatcher
	persister  *service.Persister
	publisher  websocket.EventPublisher

	funds   *service.FundsAsideService
	summary *service.SummaryService
	export  *service.ExportService
}

// Options configures a session
type Options struct {
	Now func() time.Time
}

// New creates an empty session. Call Load to read the persisted document.
func New(persister *service.Persister, publisher websocket.EventPublisher, logger zerolog.Logger, opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}

	now := opts.Now()
	s := &Session{
		logger:     logger.With().Str("component", "session").Logger(),
		now:        opts.Now,
		state:      State{Week: util.CurrentBudgetWeek(now), Year: now.Year(), Month: now.Month()},
		dispatcher: event.NewDispatcher(logger),
		persister:  persister,
		publisher:  publisher,
		funds:      service.NewFundsAsideService(),
		summary:    service.NewSummaryService(opts.Now),
		export:     service.NewExportService(),
		income:     []*domain.IncomeSource{},
	}

	weekFn := func() int { return s.state.Week }
	s.monthly = view.NewMonthlyView(domain.CategoryMap{}, persister.StageMonthly, weekFn)
	s.annual = view.NewAnnualView(domain.CategoryMap{}, persister.StageAnnual, weekFn)
	s.planner = view.NewPlannerView(nil, persister.StagePlanner, weekFn)
	s.monthly.Store().SetClock(opts.Now)
	s.annual.Store().SetClock(opts.Now)

	s.dispatcher.RegisterStatusApplier(domain.ViewMonthly, s.monthly)
	s.dispatcher.RegisterStatusApplier(domain.ViewAnnual, s.annual)
	s.dispatcher.RegisterStatusApplier(domain.ViewPlanner, s.planner)
	s.dispatcher.RegisterExpenseApplier(domain.ViewPlanner, s.planner)
	s.dispatcher.Subscribe(s.forward)

	return s
}

// Load reads the persisted document and rebuilds every view from it
func (s *Session) Load(ctx context.Context) error {
	doc, err := s.persister.Load(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.apply(doc) {
		s.persister.StageDocument(s.normalized(doc))
	}

	s.logger.Info().
		Int("monthly_categories", len(doc.Monthly)).
		Int("annual_categories", len(doc.Annual)).
		Int("planner_entries", len(doc.PlannerState)).
		Int("week", s.state.Week).
		Msg("Budget loaded")
	return nil
}

// Reload re-reads the document after it changed outside this process and tells
// attached renderers to refresh. The external copy wins: local edits still waiting
// to be written are dropped, and the event says so.
func (s *Session) Reload(ctx context.Context) error {
	discarded := s.persister.Pending()
	if err := s.Load(ctx); err != nil {
		return err
	}
	if discarded {
		s.logger.Warn().Msg("Unsaved local changes discarded by external reload")
	}
	s.publisher.Publish(websocket.DocumentReloaded(map[string]interface{}{
		"reason":                "external",
		"discardedLocalChanges": discarded,
	}))
	return nil
}

// apply replaces all view state from a document and reports whether loading had
// to normalize it. The caller holds the lock.
func (s *Session) apply(doc *domain.Document) bool {
	monthlyChanged := s.monthly.Replace(doc.Monthly)
	annualChanged := s.annual.Replace(doc.Annual)
	s.planner.Replace(doc.PlannerState)
	plannerChanged := s.planner.Populate(s.monthly.Store())

	s.income = make([]*domain.IncomeSource, 0, len(doc.Income))
	for _, inc := range doc.Income {
		s.income = append(s.income, inc.Clone())
	}

	if monthlyChanged || annualChanged || plannerChanged {
		s.logger.Info().
			Bool("monthly", monthlyChanged).
			Bool("annual", annualChanged).
			Bool("planner", plannerChanged).
			Msg("Normalized loaded document")
		return true
	}
	return false
}

// normalized returns a copy of doc whose view-owned sections hold the views'
// current state, so assigned ids and defaults are what gets written
func (s *Session) normalized(doc *domain.Document) *domain.Document {
	out := doc.Clone()
	out.Monthly = s.monthly.Store().Snapshot()
	out.Annual = s.annual.Store().Snapshot()
	out.PlannerState = s.planner.Entries()
	return out
}

// State returns the current budget period
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetWeek changes the current budget week (1-5)
func (s *Session) SetWeek(week int) (State, error) {
	if _, err := domain.WeekIndex(week); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Week = week
	s.logger.Debug().Int("week", week).Msg("Budget week changed")
	return s.state, nil
}

// SetMonth changes the budget month shown by the session
func (s *Session) SetMonth(year int, month time.Month) (State, error) {
	if month < time.January || month > time.December {
		return State{}, domain.ErrInvalidMonth
	}
	if year < 1 {
		return State{}, domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Year = year
	s.state.Month = month
	return s.state, nil
}

// Flush writes pending changes, used on shutdown
func (s *Session) Flush(ctx context.Context) error {
	return s.persister.Flush(ctx)
}

// dispatch publishes the events of one local edit and delivers them. The local
// mutation and its persistence have already happened.
func (s *Session) dispatch(events []event.Event) []Propagation {
	for _, e := range events {
		s.dispatcher.Publish(e)
	}

	var propagations []Propagation
	for _, d := range s.dispatcher.Drain() {
		if d.Event.Kind() == event.KindDataChanged {
			continue
		}
		propagations = append(propagations, Propagation{Kind: d.Event.Kind(), Applied: d.Applied})
	}
	return propagations
}

// forward sends every delivered event to the renderers it concerns. Status and
// expense changes reach their origin view and the views they are routed to;
// dataChanged reaches every view.
func (s *Session) forward(e event.Event) {
	switch ev := e.(type) {
	case event.StatusChanged:
		s.publisher.PublishTo(rooms(ev), websocket.StatusChanged(websocket.EventType(ev.Kind()), ev))
	case event.ExpenseChanged:
		s.publisher.PublishTo(rooms(ev), websocket.ExpenseChanged(websocket.EventType(ev.Kind()), ev))
	case event.DataChanged:
		s.publisher.Publish(websocket.DataChanged(ev))
	default:
		s.logger.Warn().Str("kind", fmt.Sprintf("%T", e)).Msg("Unknown event not forwarded")
	}
}

// rooms lists the hub views of an event's origin and its routing targets
func rooms(e event.Event) []string {
	views := []string{string(e.Origin())}
	for _, v := range event.Targets(e.Kind(), e.Origin()) {
		views = append(views, string(v))
	}
	return views
}

func (s *Session) expenseView(scope domain.Scope) (expenseEditor, error) {
	switch scope {
	case domain.ScopeMonthly:
		return s.monthly, nil
	case domain.ScopeAnnual:
		return s.annual, nil
	default:
		return nil, domain.ErrInvalidScope
	}
}

// expenseEditor is what the session needs from either expense view
type expenseEditor interface {
	Store() *service.ExpenseStore
	SaveExpense(categoryKey string, expense *domain.Expense) (*domain.Expense, []event.Event, error)
	DeleteExpense(categoryKey, id string) (*domain.Expense, []event.Event, error)
	SetTransferStatus(categoryKey, id string, status domain.TransferStatus) (*domain.Expense, []event.Event, error)
	ToggleStatus(categoryKey, id string, statusType domain.StatusType, checked bool) (*domain.Expense, []event.Event, error)
}

func requireConfirmation(confirm bool) error {
	if !confirm {
		return domain.ErrConfirmationRequired
	}
	return nil
}
