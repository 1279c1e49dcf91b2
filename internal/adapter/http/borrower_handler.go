package http

import (
	"net/http"

	"agri-credit-engine/internal/domain/score"
	"agri-credit-engine/internal/usecase/loan"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type BorrowerHandler struct {
	uc  *loan.Usecase
	log *zap.Logger
}

func NewBorrowerHandler(uc *loan.Usecase, log *zap.Logger) *BorrowerHandler {
	return &BorrowerHandler{uc: uc, log: log}
}

type registerReq struct {
	Email          string `json:"email"           validate:"required,email"`
	Name           string `json:"name"            validate:"max=120"`
	Region         string `json:"region"          validate:"max=64"`
	OpeningBalance int64  `json:"opening_balance" validate:"gte=0"`
}

type depositReq struct {
	EntryID string `json:"entry_id" validate:"max=64"`
	Amount  int64  `json:"amount"   validate:"gt=0"`
}

type profileReq struct {
	Name   string `json:"name"   validate:"max=120"`
	Region string `json:"region" validate:"max=64"`
}

func (h *BorrowerHandler) Register(c echo.Context) error {
	var req registerReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Register(c.Request().Context(), loan.RegisterInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *BorrowerHandler) Get(c echo.Context) error {
	id, ok := borrowerParam(c)
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	dto, err := h.uc.GetBorrower(c.Request().Context(), id)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *BorrowerHandler) Deposit(c echo.Context) error {
	id, ok := borrowerParam(c)
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req depositReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.Deposit(c.Request().Context(), id, loan.DepositInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

// Assess stores a fresh scoring of the borrower's factors.
func (h *BorrowerHandler) Assess(c echo.Context) error {
	id, ok := borrowerParam(c)
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req score.Factors
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	res, err := h.uc.Assess(c.Request().Context(), id, req)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *BorrowerHandler) UpdateProfile(c echo.Context) error {
	id, ok := borrowerParam(c)
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	var req profileReq
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	dto, err := h.uc.UpdateProfile(c.Request().Context(), id, loan.ProfileInput(req))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func borrowerParam(c echo.Context) (string, bool) {
	id := c.Param("borrower_id")
	return id, reHex32.MatchString(id)
}
