package agenda

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/charttrack/charttrack/internal/platform/auth"
	"github.com/charttrack/charttrack/pkg/pagination"
)

// Permissions answers whether bulk schedule imports are currently enabled.
// Backed by the settings store; checked before any file is read.
type Permissions interface {
	BulkImportAllowed(ctx context.Context) (bool, error)
}

type Handler struct {
	svc   *Service
	perms Permissions
}

func NewHandler(svc *Service, perms Permissions) *Handler {
	return &Handler{svc: svc, perms: perms}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "clerk", "viewer"))
	read.GET("/agenda/batches", h.ListBatches)
	read.GET("/agenda/batches/:id", h.GetBatch)

	write := api.Group("", auth.RequireRole("admin", "clerk"))
	write.POST("/agenda/import", h.Import)
	write.PUT("/agenda/batches/:id/items", h.UpdateItems)
	write.POST("/agenda/batches/:id/process", h.ProcessBatch)
	write.DELETE("/agenda/batches/:id", h.DeleteBatch)
}

// Import receives the spreadsheet as a multipart upload and persists every
// batch recovered from it as a draft.
func (h *Handler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	allowed, err := h.perms.BulkImportAllowed(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !allowed {
		return echo.NewHTTPError(http.StatusForbidden, "bulk imports are disabled")
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing file")
	}
	f, err := fh.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable upload")
	}
	defer f.Close()

	batches, err := h.svc.Import(ctx, f, auth.ActorFromContext(ctx))
	if err != nil {
		switch {
		case errors.Is(err, ErrWorkbookUnreadable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrNoScheduleFound):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, batches)
}

func (h *Handler) ListBatches(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != StatusDraft && status != StatusProcessed {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	pg := pagination.FromContext(c)
	batches, total, err := h.svc.ListBatches(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(batches, total, pg.Limit, pg.Offset))
}

func (h *Handler) GetBatch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBatch(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "batch not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

type updateItemsRequest struct {
	Items []*ScheduleItem `json:"items"`
}

func (h *Handler) UpdateItems(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateItemsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	b, err := h.svc.UpdateItems(c.Request().Context(), id, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, ErrBatchNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "batch not found")
		case errors.Is(err, ErrBatchProcessed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) DeleteBatch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := h.svc.DeleteBatch(c.Request().Context(), id); err != nil {
		if errors.Is(err, ErrBatchNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "batch not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

type processResponse struct {
	Result *Result        `json:"result"`
	Batch  *ScheduleBatch `json:"batch"`
}

// ProcessBatch runs reconciliation. Pending confirmations come back as 409
// with the reason and the items involved; the client retries with the
// matching ack flag set.
func (h *Handler) ProcessBatch(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req ProcessRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, b, err := h.svc.Process(c.Request().Context(), id, req, auth.ActorFromContext(c.Request().Context()))
	if err != nil {
		var confirm *ConfirmationRequired
		switch {
		case errors.As(err, &confirm):
			return c.JSON(http.StatusConflict, confirm)
		case errors.Is(err, ErrBatchNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "batch not found")
		case errors.Is(err, ErrBatchProcessed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNoItemsSelected), errors.Is(err, ErrUnidentifiedItems):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, processResponse{Result: res, Batch: b})
}
