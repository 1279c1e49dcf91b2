package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// Header names carrying the caller's identity. Authentication happens in
// front of this service; the headers are trusted as given.
const (
	HeaderActorRole  = "X-Actor-Role"
	HeaderActorID    = "X-Actor-Id"
	HeaderBorrowerID = "X-Borrower-Id"

	roleVerifier = "verifier"
)

type Handlers struct {
	Health    *Handler
	Borrowers *BorrowerHandler
	Loans     *LoanHandler
	Portfolio *PortfolioHandler
}

// Routes registers every endpoint on e. money wraps the routes that move
// cash (deposits, submissions, repayments).
func Routes(e *echo.Echo, h Handlers, money ...echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Health)
	e.POST("/score", h.Loans.Score)

	e.POST("/borrowers", h.Borrowers.Register)
	e.GET("/borrowers/:borrower_id", h.Borrowers.Get)
	e.POST("/borrowers/:borrower_id/deposits", h.Borrowers.Deposit, money...)
	e.PUT("/borrowers/:borrower_id/assessment", h.Borrowers.Assess)
	e.PATCH("/borrowers/:borrower_id/profile", h.Borrowers.UpdateProfile)
	e.POST("/borrowers/:borrower_id/loans", h.Loans.Submit, money...)

	e.GET("/loans/:loan_id", h.Loans.Get)
	e.POST("/loans/:loan_id/decision", h.Loans.Decide)
	e.POST("/loans/:loan_id/repayments", h.Loans.Repay, money...)
	e.POST("/loans/:loan_id/lender", h.Loans.SelectLender)
	e.DELETE("/loans/:loan_id", h.Loans.Delete)

	e.GET("/portfolio", h.Portfolio.Snapshot)
}
