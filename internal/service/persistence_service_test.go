package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlySnapshot(name string) domain.CategoryMap {
	return domain.CategoryMap{
		"food": {{ID: "food-1", Name: name, Projected: decimal.NewFromInt(100), Actual: decimal.NewFromInt(100)}},
	}
}

func TestPersister_SynchronousWhenDebounceZero(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{})

	p.StageMonthly(monthlySnapshot("Groceries"))

	assert.Equal(t, 1, repo.Saves())
	assert.False(t, p.Pending())

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, stored.Monthly["food"], 1)
	assert.Equal(t, "Groceries", stored.Monthly["food"][0].Name)
}

func TestPersister_DebounceCoalescesWrites(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: 20 * time.Millisecond})

	p.StageMonthly(monthlySnapshot("One"))
	p.StageMonthly(monthlySnapshot("Two"))
	p.StageIncome([]*domain.IncomeSource{{ID: "income-1", Name: "Salary"}})

	assert.True(t, p.Pending())
	assert.Eventually(t, func() bool { return !p.Pending() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, repo.Saves())

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Two", stored.Monthly["food"][0].Name)
	assert.Len(t, stored.Income, 1)
}

func TestPersister_FlushWithoutChangesIsNoop(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: time.Hour})

	require.NoError(t, p.Flush(context.Background()))
	assert.Equal(t, 0, repo.Saves())
}

func TestPersister_FailedSaveStaysPending(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	repo.SaveErr = errors.New("disk full")
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: time.Hour})

	p.StagePlanner(map[string]*domain.PlannerEntry{"Rent": domain.NewPlannerEntry()})

	err := p.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, p.Pending())

	repo.SaveErr = nil
	require.NoError(t, p.Flush(context.Background()))
	assert.False(t, p.Pending())
	assert.Equal(t, 1, p.Saves())
}

func TestPersister_LoadReplacesStagedBase(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	seeded := domain.NewDocument()
	seeded.Annual = domain.CategoryMap{"insurance": {{ID: "insurance-1", Name: "Car insurance"}}}
	repo.SetDocument(seeded)

	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: time.Hour})
	p.StageMonthly(monthlySnapshot("Discarded"))

	doc, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, doc.Annual["insurance"], 1)
	assert.False(t, p.Pending())
	assert.Empty(t, p.Document().Monthly)
}

func TestPersister_LoadError(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	repo.LoadErr = errors.New("unreachable")
	p := NewPersister(repo, zerolog.Nop(), DefaultPersisterConfig())

	_, err := p.Load(context.Background())
	assert.Error(t, err)
}

func TestPersister_StagedSectionsAreKeptTogether(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{})

	p.StageMonthly(monthlySnapshot("Groceries"))
	p.StageAnnual(domain.CategoryMap{"travel": {{ID: "travel-1", Name: "Holiday"}}})

	stored, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored.Monthly["food"], 1, "earlier section survives later writes")
	assert.Len(t, stored.Annual["travel"], 1)
	assert.Equal(t, 2, repo.Saves())
}

func TestPersister_AutosaveLoop(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: time.Hour, AutosaveTick: 10 * time.Millisecond})

	p.StageMonthly(monthlySnapshot("Groceries"))
	p.Start(context.Background())
	assert.True(t, p.IsRunning())

	assert.Eventually(t, func() bool { return repo.Saves() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, p.Stop(context.Background()))
	assert.False(t, p.IsRunning())
	assert.Equal(t, 1, repo.Saves())
}

func TestPersister_StopFlushesPending(t *testing.T) {
	repo := testutil.NewMockDocumentRepository()
	p := NewPersister(repo, zerolog.Nop(), PersisterConfig{Debounce: time.Hour})

	p.StageMonthly(monthlySnapshot("Groceries"))
	require.NoError(t, p.Stop(context.Background()))

	assert.Equal(t, 1, repo.Saves())
	assert.False(t, p.Pending())
}
