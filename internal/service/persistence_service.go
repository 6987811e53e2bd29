package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/rs/zerolog"
)

// PersisterConfig holds configuration for the persister
type PersisterConfig struct {
	Debounce     time.Duration // Delay between the last change and the write; 0 writes synchronously
	AutosaveTick time.Duration // Periodic flush of pending changes; 0 disables the loop
}

// DefaultPersisterConfig returns sensible defaults
func DefaultPersisterConfig() PersisterConfig {
	return PersisterConfig{
		Debounce:     500 * time.Millisecond,
		AutosaveTick: 30 * time.Second,
	}
}

// Persister stages per-section snapshots of the budget document and writes the whole
// document through the repository. Writes are debounced; Flush forces one.
type Persister struct {
	repo     domain.DocumentRepository
	logger   zerolog.Logger
	debounce time.Duration
	tick     time.Duration

	mu    sync.Mutex
	doc   *domain.Document
	dirty bool
	timer *time.Timer

	saveMu sync.Mutex
	saves  int

	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// NewPersister creates a new persister
func NewPersister(repo domain.DocumentRepository, logger zerolog.Logger, config PersisterConfig) *Persister {
	if config.Debounce < 0 {
		config.Debounce = 0
	}
	return &Persister{
		repo:     repo,
		logger:   logger.With().Str("component", "persister").Logger(),
		debounce: config.Debounce,
		tick:     config.AutosaveTick,
		doc:      domain.NewDocument(),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Load reads the document from the repository and makes it the staged base
func (p *Persister) Load(ctx context.Context) (*domain.Document, error) {
	doc, err := p.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if doc == nil {
		doc = domain.NewDocument()
	}

	p.mu.Lock()
	p.doc = doc.Clone()
	p.dirty = false
	p.stopTimerLocked()
	p.mu.Unlock()

	return doc, nil
}

// Reset replaces the staged base without writing it
func (p *Persister) Reset(doc *domain.Document) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.doc = doc.Clone()
	p.dirty = false
	p.stopTimerLocked()
}

// Document returns a copy of the staged document
func (p *Persister) Document() *domain.Document {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doc.Clone()
}

// StageMonthly records a new monthly snapshot
func (p *Persister) StageMonthly(categories domain.CategoryMap) {
	p.stage(func(doc *domain.Document) { doc.Monthly = categories })
}

// StageAnnual records a new annual snapshot
func (p *Persister) StageAnnual(categories domain.CategoryMap) {
	p.stage(func(doc *domain.Document) { doc.Annual = categories })
}

// StagePlanner records a new planner snapshot
func (p *Persister) StagePlanner(entries map[string]*domain.PlannerEntry) {
	p.stage(func(doc *domain.Document) { doc.PlannerState = entries })
}

// StageIncome records a new income snapshot
func (p *Persister) StageIncome(income []*domain.IncomeSource) {
	p.stage(func(doc *domain.Document) { doc.Income = income })
}

// StageDocument replaces every section, used by document import
func (p *Persister) StageDocument(doc *domain.Document) {
	p.stage(func(current *domain.Document) { *current = *doc.Clone() })
}

func (p *Persister) stage(apply func(doc *domain.Document)) {
	p.mu.Lock()
	apply(p.doc)
	p.dirty = true

	if p.debounce == 0 {
		p.mu.Unlock()
		if err := p.Flush(context.Background()); err != nil {
			p.logger.Error().Err(err).Msg("Failed to save document")
		}
		return
	}

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.debounce, func() {
		if err := p.Flush(context.Background()); err != nil {
			p.logger.Error().Err(err).Msg("Failed to save document")
		}
	})
	p.mu.Unlock()
}

// Pending reports whether staged changes have not been written yet
func (p *Persister) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dirty
}

// Saves returns how many writes reached the repository
func (p *Persister) Saves() int {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()
	return p.saves
}

// Flush writes pending changes now. It is a no-op when nothing is pending. A failed
// write leaves the changes pending for the next attempt.
func (p *Persister) Flush(ctx context.Context) error {
	p.saveMu.Lock()
	defer p.saveMu.Unlock()

	p.mu.Lock()
	if !p.dirty {
		p.mu.Unlock()
		return nil
	}
	p.stopTimerLocked()
	snapshot := p.doc.Clone()
	p.dirty = false
	p.mu.Unlock()

	if err := p.repo.Save(ctx, snapshot); err != nil {
		p.mu.Lock()
		p.dirty = true
		p.mu.Unlock()
		return fmt.Errorf("save document: %w", err)
	}

	p.saves++
	p.logger.Debug().Int("saves", p.saves).Msg("Document saved")
	return nil
}

func (p *Persister) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

// Start begins the periodic autosave loop
func (p *Persister) Start(ctx context.Context) {
	p.mu.Lock()
	if p.running || p.tick <= 0 {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.logger.Info().Dur("interval", p.tick).Msg("Starting autosave")
	go p.run(ctx)
}

// Stop ends the autosave loop and performs the final flush
func (p *Persister) Stop(ctx context.Context) error {
	p.mu.Lock()
	running := p.running
	p.mu.Unlock()

	if running {
		close(p.stopCh)
		<-p.doneCh
		p.logger.Info().Msg("Autosave stopped")
	}
	return p.Flush(ctx)
}

func (p *Persister) run(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.setStopped()
			return
		case <-p.stopCh:
			p.setStopped()
			return
		case <-ticker.C:
			if err := p.Flush(ctx); err != nil {
				p.logger.Error().Err(err).Msg("Autosave failed")
			}
		}
	}
}

// IsRunning returns whether the autosave loop is running
func (p *Persister) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Persister) setStopped() {
	p.mu.Lock()
	p.running = false
	p.mu.Unlock()
}
