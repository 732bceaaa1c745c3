package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

type stubUserService struct {
	listFn   func(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error)
	getFn    func(ctx context.Context, id string) (*domain.User, error)
	updateFn func(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error)
	deleteFn func(ctx context.Context, id, actorID string) (*domain.User, error)
}

func (s *stubUserService) ListUsers(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
	return s.listFn(ctx, in)
}

func (s *stubUserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.getFn(ctx, id)
}

func (s *stubUserService) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateFn(ctx, id, patch)
}

func (s *stubUserService) DeleteUser(ctx context.Context, id, actorID string) (*domain.User, error) {
	return s.deleteFn(ctx, id, actorID)
}

var adminPrincipal = domain.Principal{ID: "admin-1", Role: domain.RoleAdmin}

func TestUserHandler_List(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
			if in.Page != 2 || in.Limit != 5 || in.Role != domain.RoleUser {
				t.Fatalf("unexpected input: %+v", in)
			}
			if in.IsActive == nil || *in.IsActive {
				t.Fatalf("isActive=false not parsed: %+v", in.IsActive)
			}
			return &ports.ListUsersResult{
				Items:      []*domain.User{{ID: "u1"}, {ID: "u2"}},
				Pagination: ports.Pagination{Total: 7, Page: 2, Limit: 5, TotalPages: 2},
			}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/users?page=2&limit=5&role=user&isActive=false", nil), rec)
	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	resp := decode(t, rec)
	items, _ := resp["data"].([]any)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %+v", resp["data"])
	}
	pg, _ := resp["pagination"].(map[string]any)
	if pg["total"] != float64(7) || pg["totalPages"] != float64(2) {
		t.Fatalf("unexpected pagination: %+v", pg)
	}
}

func TestUserHandler_List_EmptyPageStillHasData(t *testing.T) {
	stub := &stubUserService{
		listFn: func(ctx context.Context, in ports.ListUsersInput) (*ports.ListUsersResult, error) {
			if in.IsActive != nil {
				t.Fatalf("absent isActive must stay nil")
			}
			return &ports.ListUsersResult{Items: []*domain.User{}, Pagination: ports.Pagination{Page: 1, Limit: 10}}, nil
		},
	}
	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/users", nil), rec)
	if err := NewUserHandler(stub).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if items, ok := decode(t, rec)["data"].([]any); !ok || len(items) != 0 {
		t.Fatalf("expected empty data array")
	}
}

func TestUserHandler_List_InvalidQuery(t *testing.T) {
	handler := NewUserHandler(&stubUserService{})

	tests := []struct {
		query string
		field string
	}{
		{"page=0", "page"},
		{"limit=-2", "limit"},
		{"page=abc", "page"},
		{"role=root", "role"},
		{"isActive=maybe", "isActive"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/api/users?"+tt.query, nil), httptest.NewRecorder())
			expectValidation(t, handler.List(c), tt.field)
		})
	}
}

func TestUserHandler_Get(t *testing.T) {
	stub := &stubUserService{
		getFn: func(ctx context.Context, id string) (*domain.User, error) {
			if id != "u9" {
				return nil, domain.NotFound("user")
			}
			return &domain.User{ID: id}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u9")
	if err := handler.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	c = newEcho().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("nope")
	if appErr, ok := domain.AsAppError(handler.Get(c)); !ok || appErr.HTTPStatus != http.StatusNotFound {
		t.Fatalf("expected 404, got %v", appErr)
	}
}

func TestUserHandler_Update(t *testing.T) {
	stub := &stubUserService{
		updateFn: func(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
			if id != "u3" {
				t.Fatalf("path id not bound: %q", id)
			}
			if patch.Role == nil || *patch.Role != domain.RoleAdmin || patch.IsActive == nil || *patch.IsActive {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			if patch.Email == nil || *patch.Email != "new@x.com" {
				t.Fatalf("email not normalised: %+v", patch.Email)
			}
			return &domain.User{ID: id, Role: *patch.Role}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(jsonRequest(http.MethodPut, "/", `{"role":"admin","isActive":false,"email":" NEW@x.com"}`), rec)
	c.SetParamNames("id")
	c.SetParamValues("u3")
	if err := handler.Update(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestUserHandler_Update_InvalidBody(t *testing.T) {
	handler := NewUserHandler(&stubUserService{})

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad role", `{"role":"root"}`, "role"},
		{"weak password", `{"password":"short"}`, "password"},
		{"bad email", `{"email":"x"}`, "email"},
		{"non-boolean status", `{"isActive":"yes"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newEcho().NewContext(jsonRequest(http.MethodPut, "/", tt.body), httptest.NewRecorder())
			c.SetParamNames("id")
			c.SetParamValues("u3")
			expectValidation(t, handler.Update(c), tt.field)
		})
	}
}

func TestUserHandler_Delete(t *testing.T) {
	var gotID, gotActor string
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id, actorID string) (*domain.User, error) {
			gotID, gotActor = id, actorID
			return &domain.User{ID: id}, nil
		},
	}
	handler := NewUserHandler(stub)

	rec := httptest.NewRecorder()
	c := newEcho().NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), rec)
	c.SetParamNames("id")
	c.SetParamValues("u5")
	if err := withPrincipal(c, adminPrincipal, "t", handler.Delete); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotID != "u5" || gotActor != adminPrincipal.ID {
		t.Fatalf("unexpected args: %s %s", gotID, gotActor)
	}
	if resp := decode(t, rec); resp["message"] == nil {
		t.Fatalf("expected message, got %+v", resp)
	}
}

func TestUserHandler_Delete_ServiceError(t *testing.T) {
	boom := errors.New("boom")
	stub := &stubUserService{
		deleteFn: func(ctx context.Context, id, actorID string) (*domain.User, error) {
			return nil, boom
		},
	}
	c := newEcho().NewContext(httptest.NewRequest(http.MethodDelete, "/", nil), httptest.NewRecorder())
	c.SetParamNames("id")
	c.SetParamValues("u5")
	if err := withPrincipal(c, adminPrincipal, "t", NewUserHandler(stub).Delete); !errors.Is(err, boom) {
		t.Fatalf("expected service error to propagate, got %v", err)
	}
}
