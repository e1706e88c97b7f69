package lifecycle

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cliniq/cliniq/internal/platform/db"
)

// Handler exposes the lifecycle operations over HTTP.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers the lifecycle endpoints on the provided group.
//
//	DELETE /transactions/reset-all - purge every tenant row
//	POST   /transactions/seed      - purge then regenerate synthetic data
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.DELETE("/transactions/reset-all", h.ResetAll)
	g.POST("/transactions/seed", h.Seed)
}

type resetAllResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Deleted   map[string]int64 `json:"deleted"`
	Remaining map[string]int64 `json:"remaining"`
}

type seedResponse struct {
	Success bool             `json:"success"`
	Created map[string]int64 `json:"created"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
	Code    string `json:"code"`
}

// ResetAll handles DELETE /transactions/reset-all.
func (h *Handler) ResetAll(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := db.TenantFromContext(ctx)

	res, err := h.svc.Purge(ctx, tenantID)
	if err != nil {
		return writeError(c, "failed to reset tenant data", err)
	}

	msg := "all tenant data deleted"
	if !res.Remaining.Zero() {
		msg = "tenant data deleted with residue; see remaining counts"
	}
	return c.JSON(http.StatusOK, resetAllResponse{
		Success:   true,
		Message:   msg,
		Deleted:   res.Deleted.JSONMap(),
		Remaining: res.Remaining.JSONMap(),
	})
}

// Seed handles POST /transactions/seed.
func (h *Handler) Seed(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := db.TenantFromContext(ctx)

	res, err := h.svc.Seed(ctx, tenantID)
	if err != nil {
		return writeError(c, "failed to seed tenant data", err)
	}

	return c.JSON(http.StatusOK, seedResponse{
		Success: true,
		Created: res.Created.JSONMap(),
	})
}

// writeError maps an engine error to the shared error envelope. Lock
// contention is the caller's fault (retry later), everything else is a
// server-side failure.
func writeError(c echo.Context, msg string, err error) error {
	status := http.StatusInternalServerError
	code := CodeOf(err)

	switch code {
	case CodeOperationInProgress:
		status = http.StatusConflict
	case CodeTimeout:
		status = http.StatusGatewayTimeout
	}

	details := err.Error()
	var engineErr *Error
	if errors.As(err, &engineErr) && engineErr.Err != nil {
		details = engineErr.Err.Error()
	}

	return c.JSON(status, errorResponse{
		Error:   msg,
		Details: details,
		Code:    string(code),
	})
}
