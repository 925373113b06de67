package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/blackhole/records-system/internal/api/metrics"
	"github.com/blackhole/records-system/internal/core/domain"
	"github.com/blackhole/records-system/internal/core/ports"
)

// AdminHandler serves user, role and audit administration.
type AdminHandler struct {
	accounts ports.AccountService
	roles    ports.RoleService
	audit    ports.AuditService
}

func NewAdminHandler(accounts ports.AccountService, roles ports.RoleService, audit ports.AuditService) *AdminHandler {
	return &AdminHandler{accounts: accounts, roles: roles, audit: audit}
}

// ListUsers handles GET /admin/users.
//
// @Summary      List users with their roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   userResponse
// @Failure      403  {object}  map[string]string
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	users, err := h.accounts.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return c.JSON(http.StatusOK, out)
}

// AssignRole handles POST /admin/users/:id/roles.
//
// @Summary      Grant a role to a user
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int                true  "User ID"
// @Param        body  body      assignRoleRequest  true  "Role to grant"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /admin/users/{id}/roles [post]
func (h *AdminHandler) AssignRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	userID, err := parseID(c)
	if err != nil {
		return err
	}

	var req assignRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	user, err := h.accounts.AssignRole(c.Request().Context(), actor, userID, domain.RoleName(req.Role))
	if err != nil {
		return err
	}

	metrics.RoleAssignmentsTotal.WithLabelValues(req.Role).Inc()
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ListRoles handles GET /admin/roles.
//
// @Summary      List roles
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   roleResponse
// @Router       /admin/roles [get]
func (h *AdminHandler) ListRoles(c echo.Context) error {
	roles, err := h.roles.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toRoleResponses(roles))
}

// CreateRole handles POST /admin/roles.
//
// @Summary      Create a role
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createRoleRequest  true  "Role name"
// @Success      201   {object}  roleResponse
// @Failure      409   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /admin/roles [post]
func (h *AdminHandler) CreateRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	role, err := h.roles.Create(c.Request().Context(), actor, domain.RoleName(req.Name))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, roleResponse{ID: role.ID, Name: string(role.Name)})
}

// DeleteRole handles DELETE /admin/roles/:id.
//
// @Summary      Delete a role
// @Tags         admin
// @Security     BearerAuth
// @Param        id   path      int  true  "Role ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /admin/roles/{id} [delete]
func (h *AdminHandler) DeleteRole(c echo.Context) error {
	actor, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.roles.Delete(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Audit handles GET /admin/audit?limit=.
//
// @Summary      Recent audit events
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        limit  query     int  false  "Maximum number of events (default 50, max 500)"
// @Success      200    {array}   auditResponse
// @Router       /admin/audit [get]
func (h *AdminHandler) Audit(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be an integer")
		}
		limit = n
	}

	events, err := h.audit.Recent(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	out := make([]auditResponse, 0, len(events))
	for _, e := range events {
		out = append(out, auditResponse{
			Action:     string(e.Action),
			Actor:      e.Actor,
			Subject:    e.Subject,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		})
	}
	return c.JSON(http.StatusOK, out)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "id must be a positive integer")
	}
	return id, nil
}
