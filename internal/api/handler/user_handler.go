package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/usermanagement/user-api/internal/core/ports"
)

// UserHandler serves the admin-only user administration routes.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// List handles GET /api/users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        page      query     int     false  "Page number (default 1)"
// @Param        limit     query     int     false  "Page size (default 10, max 100)"
// @Param        role      query     string  false  "Filter by role"  Enums(admin, user)
// @Param        isActive  query     bool    false  "Filter by status (default true)"
// @Success      200       {object}  successResponse{data=[]domain.User,pagination=ports.Pagination}
// @Failure      400       {object}  ErrorResponse
// @Failure      401       {object}  ErrorResponse
// @Failure      403       {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	var q listUsersQuery
	if err := q.bind(c); err != nil {
		return bindError(err)
	}
	if err := c.Validate(&q); err != nil {
		return err
	}

	res, err := h.service.ListUsers(c.Request().Context(), q.input())
	if err != nil {
		return err
	}

	resp := dataResponse(res.Items)
	resp.Pagination = &res.Pagination
	return c.JSON(http.StatusOK, resp)
}

// Get handles GET /api/users/:id.
//
// @Summary      Get a user by id
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  successResponse{data=domain.User}
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) Get(c echo.Context) error {
	user, err := h.service.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse(user))
}

// Update handles PUT /api/users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to update"
// @Success      200   {object}  successResponse{data=domain.User}
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Failure      409   {object}  ErrorResponse
// @Router       /users/{id} [put]
func (h *UserHandler) Update(c echo.Context) error {
	var req updateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	user, err := h.service.UpdateUser(c.Request().Context(), req.ID, req.patch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, dataResponse(user))
}

// Delete handles DELETE /api/users/:id. Users are deactivated, never removed.
//
// @Summary      Deactivate a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  successResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	if _, err := h.service.DeleteUser(c.Request().Context(), c.Param("id"), p.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, successResponse{Success: true, Message: "user deactivated successfully"})
}
