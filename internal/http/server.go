package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"duitku/internal/auth"
	"duitku/internal/log"
	"duitku/internal/services"
)

// Server is the JSON API surface. All routes except registration and login
// sit behind the session middleware.
type Server struct {
	httpServer *http.Server
	limiter    *rateLimiter

	tokens        *auth.TokenManager
	sessionExpiry time.Duration

	identity  *services.IdentityService
	family    *services.FamilyService
	ledger    *services.LedgerService
	reports   *services.ReportsService
	recurring *services.RecurringService
	budgets   *services.BudgetService
	goals     *services.GoalService
	catalog   *services.CatalogService

	logger *log.Logger
}

type Deps struct {
	Tokens        *auth.TokenManager
	SessionExpiry time.Duration
	Identity      *services.IdentityService
	Family        *services.FamilyService
	Ledger        *services.LedgerService
	Reports       *services.ReportsService
	Recurring     *services.RecurringService
	Budgets       *services.BudgetService
	Goals         *services.GoalService
	Catalog       *services.CatalogService
	Logger        *log.Logger
}

func NewServer(port string, deps Deps) *Server {
	s := &Server{
		limiter:       newRateLimiter(120),
		tokens:        deps.Tokens,
		sessionExpiry: deps.SessionExpiry,
		identity:      deps.Identity,
		family:        deps.Family,
		ledger:        deps.Ledger,
		reports:       deps.Reports,
		recurring:     deps.Recurring,
		budgets:       deps.Budgets,
		goals:         deps.Goals,
		catalog:       deps.Catalog,
		logger:        deps.Logger.WithComponent(log.ComponentHTTP),
	}

	router := mux.NewRouter()
	router.Use(traceMiddleware(deps.Logger))
	router.Use(securityHeadersMiddleware)
	router.Use(s.limiter.middleware(deps.Logger))

	api := router.PathPrefix("/api").Subrouter()

	// Public
	api.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost)

	// Authenticated
	private := api.NewRoute().Subrouter()
	private.Use(s.authMiddleware)

	private.HandleFunc("/auth/me", s.handleMe).Methods(http.MethodGet)

	private.HandleFunc("/expenses", s.handleCreateExpense).Methods(http.MethodPost)
	private.HandleFunc("/expenses", s.handleListExpenses).Methods(http.MethodGet)
	private.HandleFunc("/expenses/{id:[0-9]+}", s.handleUpdateExpense).Methods(http.MethodPut)
	private.HandleFunc("/expenses/{id:[0-9]+}", s.handleDeleteExpense).Methods(http.MethodDelete)

	private.HandleFunc("/incomes", s.handleCreateIncome).Methods(http.MethodPost)
	private.HandleFunc("/incomes", s.handleListIncomes).Methods(http.MethodGet)
	private.HandleFunc("/incomes/{id:[0-9]+}", s.handleUpdateIncome).Methods(http.MethodPut)
	private.HandleFunc("/incomes/{id:[0-9]+}", s.handleDeleteIncome).Methods(http.MethodDelete)

	private.HandleFunc("/categories", s.handleCreateCategory).Methods(http.MethodPost)
	private.HandleFunc("/categories", s.handleListCategories).Methods(http.MethodGet)
	private.HandleFunc("/categories/{id:[0-9]+}", s.handleRenameCategory).Methods(http.MethodPut)
	private.HandleFunc("/categories/{id:[0-9]+}", s.handleDeleteCategory).Methods(http.MethodDelete)

	private.HandleFunc("/budgets", s.handleSaveBudget).Methods(http.MethodPost)
	private.HandleFunc("/budgets", s.handleListBudgets).Methods(http.MethodGet)
	private.HandleFunc("/budgets/{id:[0-9]+}", s.handleDeleteBudget).Methods(http.MethodDelete)

	private.HandleFunc("/goals", s.handleCreateGoal).Methods(http.MethodPost)
	private.HandleFunc("/goals", s.handleListGoals).Methods(http.MethodGet)
	private.HandleFunc("/goals/{id:[0-9]+}", s.handleUpdateGoal).Methods(http.MethodPut)
	private.HandleFunc("/goals/{id:[0-9]+}/savings", s.handleAddSavings).Methods(http.MethodPost)
	private.HandleFunc("/goals/{id:[0-9]+}", s.handleDeleteGoal).Methods(http.MethodDelete)

	private.HandleFunc("/recurring", s.handleCreateRecurring).Methods(http.MethodPost)
	private.HandleFunc("/recurring", s.handleListRecurring).Methods(http.MethodGet)
	private.HandleFunc("/recurring/{id:[0-9]+}", s.handleDeleteRecurring).Methods(http.MethodDelete)
	private.HandleFunc("/recurring/process", s.handleProcessRecurring).Methods(http.MethodPost)

	private.HandleFunc("/family", s.handleCreateFamily).Methods(http.MethodPost)
	private.HandleFunc("/family", s.handleFamilyOverview).Methods(http.MethodGet)
	private.HandleFunc("/family/join", s.handleJoinFamily).Methods(http.MethodPost)
	private.HandleFunc("/family/leave", s.handleLeaveFamily).Methods(http.MethodPost)
	private.HandleFunc("/family/members", s.handleAddMember).Methods(http.MethodPost)
	private.HandleFunc("/family/members/{id:[0-9]+}", s.handleRemoveMember).Methods(http.MethodDelete)

	private.HandleFunc("/dashboard/summary", s.handleDashboard).Methods(http.MethodGet)
	private.HandleFunc("/dashboard/chart", s.handleChart).Methods(http.MethodGet)
	private.HandleFunc("/dashboard/insight", s.handleInsight).Methods(http.MethodGet)

	private.HandleFunc("/reports/by-category", s.handleSumByCategory).Methods(http.MethodGet)
	private.HandleFunc("/reports/summary", s.handleSummaryTotal).Methods(http.MethodGet)
	private.HandleFunc("/reports/expenses", s.handleFilteredExpenses).Methods(http.MethodGet)
	private.HandleFunc("/reports/custom", s.handleSaveReport).Methods(http.MethodPost)
	private.HandleFunc("/reports/custom", s.handleListReports).Methods(http.MethodGet)
	private.HandleFunc("/reports/custom/{id:[0-9]+}", s.handleRunReport).Methods(http.MethodGet)
	private.HandleFunc("/reports/custom/{id:[0-9]+}", s.handleDeleteReport).Methods(http.MethodDelete)

	s.httpServer = &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	return s.httpServer.Shutdown(ctx)
}
