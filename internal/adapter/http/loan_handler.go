package http

import (
	"net/http"
	"strings"

	"agri-credit-engine/internal/domain/score"
	"agri-credit-engine/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LoanHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewLoanHandler(uc *loan.Usecase, log *zap.Logger) *LoanHandler {
	return &LoanHandler{uc: uc, log: log}
}

type submitReq struct {
	ApplicationID string `json:"application_id" validate:"max=64"`
	Amount        int64  `json:"amount"         validate:"gt=0"`
	Purpose       string `json:"purpose"        validate:"required,purpose"`
}

type decideReq struct {
	Outcome string `json:"outcome" validate:"required,oneof=approve reject"`
}

type repayReq struct {
	PaymentID string `json:"payment_id" validate:"max=64"`
	Amount    int64  `json:"amount"     validate:"gt=0"`
}

type lenderReq struct {
	Lender string `json:"lender" validate:"required,max=120"`
}

// ownerHeader carries the borrower acting on their own application.
type ownerHeader struct {
	BorrowerID string `validate:"required,hex32"`
}

func (h *LoanHandler) Score(c echo.Context) error {
	var req score.Factors
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Score(req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *LoanHandler) Submit(c echo.Context) error {
	id, ok := borrowerParam(c)
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req submitReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Submit(c.Request().Context(), id, loan.SubmitInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Decide is reserved for verifiers.
func (h *LoanHandler) Decide(c echo.Context) error {
	hdr := c.Request().Header
	if !strings.EqualFold(strings.TrimSpace(hdr.Get(HeaderActorRole)), roleVerifier) {
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "verifier role required", Code: "forbidden"})
	}
	verifierID := strings.TrimSpace(hdr.Get(HeaderActorID))
	if verifierID == "" {
		return badRequest(c, "missing "+HeaderActorID)
	}
	var req decideReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Decide(c.Request().Context(), c.Param("loan_id"), loan.DecideInput{Outcome: req.Outcome, VerifierID: verifierID})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) Repay(c echo.Context) error {
	var req repayReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Repay(c.Request().Context(), c.Param("loan_id"), loan.RepayInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) SelectLender(c echo.Context) error {
	owner, ok, err := h.owner(c)
	if !ok {
		return err
	}
	var req lenderReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.SelectLender(c.Request().Context(), c.Param("loan_id"), owner, req.Lender)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Delete withdraws a pending application.
func (h *LoanHandler) Delete(c echo.Context) error {
	owner, ok, err := h.owner(c)
	if !ok {
		return err
	}
	if err := h.uc.DeletePending(c.Request().Context(), c.Param("loan_id"), owner); err != nil {
		return respondError(c, h.log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LoanHandler) owner(c echo.Context) (string, bool, error) {
	hdr := ownerHeader{BorrowerID: strings.TrimSpace(c.Request().Header.Get(HeaderBorrowerID))}
	if err := c.Validate(&hdr); err != nil {
		return "", false, badRequest(c, "missing or invalid "+HeaderBorrowerID)
	}
	return hdr.BorrowerID, true, nil
}
