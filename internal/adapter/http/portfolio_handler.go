package http

import (
	"net/http"

	"agri-credit-engine/internal/usecase/portfolio"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type PortfolioHandler struct {
	svc *portfolio.Service
	log *zap.Logger
}

func NewPortfolioHandler(svc *portfolio.Service, log *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{svc: svc, log: log}
}

func (h *PortfolioHandler) Snapshot(c echo.Context) error {
	snap, err := h.svc.Snapshot(c.Request().Context())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, snap)
}
