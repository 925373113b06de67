package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/api/metrics"
	"github.com/blackhole/records-system/internal/core/ports"
)

// RecordHandler serves the criminal record catalog.
type RecordHandler struct {
	service ports.RecordService
}

func NewRecordHandler(service ports.RecordService) *RecordHandler {
	return &RecordHandler{service: service}
}

// List handles GET /criminals.
//
// @Summary      List all records
// @Tags         criminals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  recordListResponse
// @Failure      401  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /criminals [get]
func (h *RecordHandler) List(c echo.Context) error {
	records, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRecordList(records))
}

// Search handles GET /criminals/search?query=.
//
// @Summary      Search records by name or description
// @Tags         criminals
// @Produce      json
// @Security     BearerAuth
// @Param        query  query     string  true  "Case-insensitive substring"
// @Success      200    {object}  recordListResponse
// @Failure      400    {object}  map[string]string
// @Failure      403    {object}  map[string]string
// @Router       /criminals/search [get]
func (h *RecordHandler) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if strings.TrimSpace(query) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Please enter a valid search query.")
	}

	records, err := h.service.Search(c.Request().Context(), query)
	if err != nil {
		return err
	}

	result := "hit"
	if len(records) == 0 {
		result = "miss"
	}
	metrics.RecordSearchesTotal.WithLabelValues(result).Inc()
	return c.JSON(http.StatusOK, toRecordList(records))
}

// Create handles POST /criminals.
//
// @Summary      Add a record
// @Tags         criminals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRecordRequest  true  "Record details"
// @Success      201   {object}  recordResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /criminals [post]
func (h *RecordHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	dob, err := time.Parse(dateLayout, req.DateOfBirth)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "date_of_birth must be a date formatted as "+dateLayout)
	}

	rec, err := h.service.Add(c.Request().Context(), id, ports.AddRecordInput{
		Name:        req.Name,
		Age:         req.Age,
		DateOfBirth: dob,
		Description: req.Description,
		ConnectedTo: req.ConnectedTo,
	})
	if err != nil {
		return err
	}

	metrics.RecordsCreatedTotal.Inc()
	return c.JSON(http.StatusCreated, toRecordResponse(*rec))
}
