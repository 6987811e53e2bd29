package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/homebudget/homebudget-backend/internal/domain"
	"github.com/dafibh/homebudget/homebudget-backend/internal/service"
	"github.com/dafibh/homebudget/homebudget-backend/internal/session"
	"github.com/dafibh/homebudget/homebudget-backend/internal/testutil"
	"github.com/dafibh/homebudget/homebudget-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// 18 October 2026 falls in budget week 3
var handlerNow = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

func testDocument() *domain.Document {
	d := func(s string) decimal.Decimal { return decimal.RequireFromString(s) }

	doc := domain.NewDocument()
	doc.Monthly = domain.CategoryMap{
		"food": {
			{ID: "food-123", Name: "Groceries", Date: "2026-10-16", Account: "Checking", Projected: d("400"), Actual: d("400"), TransferStatus: domain.TransferNone},
		},
		"housing": {
			{ID: "housing-1", Name: "Rent", Date: "2026-10-01", Account: "Checking", Projected: d("1000"), Actual: d("1000"), TransferStatus: domain.TransferHalf},
		},
	}
	doc.Annual = domain.CategoryMap{
		"food": {
			{ID: "food-900", Name: "Groceries", Projected: d("120"), Actual: d("120"), TransferStatus: domain.TransferFull},
		},
		"insurance": {
			{ID: "insurance-1", Name: "Car insurance", Date: "2026-12-05", Account: "Savings", Projected: d("1200"), Actual: d("1200"), TransferStatus: domain.TransferFull},
		},
	}
	doc.Income = []*domain.IncomeSource{
		{ID: "income-1", Name: "Salary", Projected: d("4000"), Actual: d("4000")},
	}
	return doc
}

// setupServer wires the full route table over an in-memory session
func setupServer(t *testing.T) (*echo.Echo, *session.Session, *testutil.MockDocumentRepository) {
	t.Helper()

	repo := testutil.NewMockDocumentRepository()
	repo.SetDocument(testDocument())

	persister := service.NewPersister(repo, zerolog.Nop(), service.PersisterConfig{})
	s := session.New(persister, testutil.NewMockPublisher(), zerolog.Nop(), session.Options{
		Now: func() time.Time { return handlerNow },
	})
	require.NoError(t, s.Load(context.Background()))

	e := echo.New()
	RegisterRoutes(e, Handlers{
		Budget:    NewBudgetHandler(s),
		Expenses:  NewExpenseHandler(s),
		Planner:   NewPlannerHandler(s),
		Income:    NewIncomeHandler(s),
		WebSocket: NewWebSocketHandler(websocket.NewHub(), s, nil),
	})
	return e, s, repo
}

func doRequest(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}
