package settings

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/charttrack/charttrack/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "clerk", "viewer"))
	read.GET("/settings", h.GetSettings)
	read.GET("/settings/destinations", h.GetDestinations)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.PUT("/settings", h.UpdateSettings)
}

type settingsView struct {
	Destinations       []string `json:"destinations"`
	BulkImportEnabled  bool     `json:"bulk_import_enabled"`
	AgendaRetentionDay int      `json:"agenda_retention_days"`
}

func (h *Handler) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()

	destinations, err := h.svc.Destinations(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	bulk, err := h.svc.BulkImportAllowed(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	retention, err := h.svc.RetentionDays(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, settingsView{
		Destinations:       destinations,
		BulkImportEnabled:  bulk,
		AgendaRetentionDay: retention,
	})
}

func (h *Handler) GetDestinations(c echo.Context) error {
	destinations, err := h.svc.Destinations(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string][]string{"destinations": destinations})
}

type updateSettingsRequest struct {
	Destinations       []string `json:"destinations,omitempty"`
	BulkImportEnabled  *bool    `json:"bulk_import_enabled,omitempty"`
	AgendaRetentionDay *int     `json:"agenda_retention_days,omitempty"`
}

// UpdateSettings applies a partial update: only the fields present in the
// body are written.
func (h *Handler) UpdateSettings(c echo.Context) error {
	var req updateSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	if req.Destinations != nil {
		if err := h.svc.SetDestinations(ctx, req.Destinations); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	if req.BulkImportEnabled != nil {
		if err := h.svc.SetBulkImportEnabled(ctx, *req.BulkImportEnabled); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	if req.AgendaRetentionDay != nil {
		if err := h.svc.SetRetentionDays(ctx, *req.AgendaRetentionDay); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}
	return h.GetSettings(c)
}
