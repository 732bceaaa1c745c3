package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

// --- Envelopes ---

// successResponse is the envelope for every 2xx response. Token and
// Pagination are only present on login and list responses.
type successResponse struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Token      string            `json:"token,omitempty"`
	Pagination *ports.Pagination `json:"pagination,omitempty"`
	Message    string            `json:"message,omitempty"`
}

// ErrorBody is the payload of ErrorResponse.
type ErrorBody struct {
	Code    domain.ErrorCode    `json:"code"`
	Message string              `json:"message"`
	Details []domain.FieldError `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope returned on all 4xx/5xx responses.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

func dataResponse(data any) successResponse {
	return successResponse{Success: true, Data: data}
}

// --- Request types ---

type registerRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=50"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,password"`
}

func (r *registerRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = normalizeEmail(r.Email)
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (r *loginRequest) normalize() {
	r.Email = normalizeEmail(r.Email)
}

// updateMeRequest lists the fields a user may change on their own account.
type updateMeRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email"    validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,password"`
}

func (r *updateMeRequest) normalize() {
	trimPtr(r.Name)
	if r.Email != nil {
		*r.Email = normalizeEmail(*r.Email)
	}
}

func (r *updateMeRequest) patch() domain.UserPatch {
	return domain.UserPatch{Name: r.Name, Email: r.Email, Password: r.Password}
}

type updateUserRequest struct {
	ID       string  `param:"id"        json:"-"`
	Name     *string `json:"name"       validate:"omitempty,min=2,max=50"`
	Email    *string `json:"email"      validate:"omitempty,email"`
	Password *string `json:"password"   validate:"omitempty,password"`
	Role     *string `json:"role"       validate:"omitempty,oneof=admin user"`
	IsActive *bool   `json:"isActive"`
}

func (r *updateUserRequest) normalize() {
	trimPtr(r.Name)
	if r.Email != nil {
		*r.Email = normalizeEmail(*r.Email)
	}
}

func (r *updateUserRequest) patch() domain.UserPatch {
	p := domain.UserPatch{Name: r.Name, Email: r.Email, Password: r.Password, IsActive: r.IsActive}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		p.Role = &role
	}
	return p
}

// listUsersQuery holds the optional list parameters. Pointers distinguish an
// absent parameter from an explicit zero, which is rejected.
type listUsersQuery struct {
	Page     *int   `query:"page"  validate:"omitempty,min=1"`
	Limit    *int   `query:"limit" validate:"omitempty,min=1"`
	Role     string `query:"role"  validate:"omitempty,oneof=admin user"`
	IsActive *bool  `query:"isActive"`
}

func (q *listUsersQuery) bind(c echo.Context) error {
	b := echo.QueryParamsBinder(c).String("role", &q.Role)
	if c.QueryParam("page") != "" {
		q.Page = new(int)
		b = b.Int("page", q.Page)
	}
	if c.QueryParam("limit") != "" {
		q.Limit = new(int)
		b = b.Int("limit", q.Limit)
	}
	if c.QueryParam("isActive") != "" {
		q.IsActive = new(bool)
		b = b.Bool("isActive", q.IsActive)
	}
	return b.BindError()
}

func (q *listUsersQuery) input() ports.ListUsersInput {
	in := ports.ListUsersInput{Role: domain.Role(q.Role), IsActive: q.IsActive}
	if q.Page != nil {
		in.Page = *q.Page
	}
	if q.Limit != nil {
		in.Limit = *q.Limit
	}
	return in
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
