package service

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
	"github.com/usermanagement/user-api/internal/infrastructure/security"
	"github.com/usermanagement/user-api/internal/testutil"
)

func newUserFixture(t *testing.T, n int) (*UserService, *testutil.UserRepository, []*domain.User) {
	t.Helper()
	repo := testutil.NewUserRepository(security.NewBcryptHasher(bcrypt.MinCost))
	ctx := context.Background()

	users := make([]*domain.User, 0, n)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i == 0 {
			role = domain.RoleAdmin
		}
		u, err := repo.Create(ctx, domain.NewUser{
			Name:     fmt.Sprintf("User %d", i),
			Email:    fmt.Sprintf("user%d@x.com", i),
			Password: "Password123",
			Role:     role,
		})
		if err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		users = append(users, u)
	}
	return NewUserService(repo, zerolog.Nop()), repo, users
}

func TestNormalisePage(t *testing.T) {
	tests := []struct {
		name                string
		page, limit         int
		wantPage, wantLimit int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative page", -3, 5, 1, 5},
		{"negative limit", 2, -1, 2, 1},
		{"limit capped", 1, 500, 1, 100},
		{"limit at cap", 4, 100, 4, 100},
		{"page capped", 1_000_000_000_000_000_000, 100, maxPage, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, limit := normalisePage(tt.page, tt.limit)
			if page != tt.wantPage || limit != tt.wantLimit {
				t.Errorf("normalisePage(%d, %d) = %d, %d; want %d, %d",
					tt.page, tt.limit, page, limit, tt.wantPage, tt.wantLimit)
			}
		})
	}
}

func TestTotalPages(t *testing.T) {
	tests := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
	}
	for _, tt := range tests {
		if got := totalPages(tt.total, tt.limit); got != tt.want {
			t.Errorf("totalPages(%d, %d) = %d; want %d", tt.total, tt.limit, got, tt.want)
		}
	}
}

func TestUserService_ListUsers_Pagination(t *testing.T) {
	svc, _, users := newUserFixture(t, 25)

	res, err := svc.ListUsers(context.Background(), ports.ListUsersInput{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := ports.Pagination{Total: 25, Page: 3, Limit: 10, TotalPages: 3}
	if res.Pagination != want {
		t.Fatalf("pagination = %+v; want %+v", res.Pagination, want)
	}
	if len(res.Items) != 5 {
		t.Fatalf("expected 5 items on last page, got %d", len(res.Items))
	}
	// Newest first, so the last page ends with the oldest account.
	if res.Items[4].ID != users[0].ID {
		t.Fatalf("unexpected ordering: last item %s", res.Items[4].ID)
	}
	for _, u := range res.Items {
		if u.PasswordHash != "" {
			t.Fatalf("list must not expose password hashes")
		}
	}
}

func TestUserService_ListUsers_BeyondLastPage(t *testing.T) {
	svc, _, _ := newUserFixture(t, 3)

	res, err := svc.ListUsers(context.Background(), ports.ListUsersInput{Page: 9})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 0 || res.Pagination.Total != 3 || res.Pagination.Limit != 10 {
		t.Fatalf("unexpected result: %+v", res.Pagination)
	}
}

func TestUserService_ListUsers_HugePage(t *testing.T) {
	svc, _, _ := newUserFixture(t, 3)

	res, err := svc.ListUsers(context.Background(), ports.ListUsersInput{Page: 1_000_000_000_000_000_000, Limit: 100})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 0 || res.Pagination.Page != maxPage || res.Pagination.Total != 3 {
		t.Fatalf("unexpected result: %+v", res.Pagination)
	}
}

func TestUserService_ListUsers_Filters(t *testing.T) {
	svc, repo, users := newUserFixture(t, 4)
	ctx := context.Background()
	_, _ = repo.SoftDelete(ctx, users[3].ID)

	res, _ := svc.ListUsers(ctx, ports.ListUsersInput{})
	if res.Pagination.Total != 3 {
		t.Fatalf("default listing must hide inactive users, got %d", res.Pagination.Total)
	}

	res, _ = svc.ListUsers(ctx, ports.ListUsersInput{Role: domain.RoleAdmin})
	if res.Pagination.Total != 1 || res.Items[0].ID != users[0].ID {
		t.Fatalf("role filter failed: %+v", res.Pagination)
	}

	inactive := false
	res, _ = svc.ListUsers(ctx, ports.ListUsersInput{IsActive: &inactive})
	if res.Pagination.Total != 1 || res.Items[0].ID != users[3].ID {
		t.Fatalf("status filter failed: %+v", res.Pagination)
	}
}

func TestUserService_GetUser(t *testing.T) {
	svc, repo, users := newUserFixture(t, 2)
	ctx := context.Background()

	_, _ = repo.SoftDelete(ctx, users[1].ID)
	got, err := svc.GetUser(ctx, users[1].ID)
	if err != nil {
		t.Fatalf("admins can read deactivated users: %v", err)
	}
	if got.IsActive || got.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", got)
	}

	_, err = svc.GetUser(ctx, "missing")
	assertAppError(t, err, domain.CodeNotFound, http.StatusNotFound)
}

func TestUserService_UpdateUser(t *testing.T) {
	svc, _, users := newUserFixture(t, 2)
	ctx := context.Background()

	admin := domain.RoleAdmin
	inactive := false
	got, err := svc.UpdateUser(ctx, users[1].ID, domain.UserPatch{Role: &admin, IsActive: &inactive})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Role != domain.RoleAdmin || got.IsActive {
		t.Fatalf("admin patch not applied: %+v", got)
	}

	_, err = svc.UpdateUser(ctx, users[1].ID, domain.UserPatch{})
	assertAppError(t, err, domain.CodeValidation, http.StatusBadRequest)

	bogus := domain.Role("root")
	appErr := assertAppError(t, mustErr(svc.UpdateUser(ctx, users[1].ID, domain.UserPatch{Role: &bogus})),
		domain.CodeValidation, http.StatusBadRequest)
	if len(appErr.Details) != 1 || appErr.Details[0].Field != "role" {
		t.Fatalf("expected role field error, got %+v", appErr.Details)
	}

	taken := users[0].Email
	_, err = svc.UpdateUser(ctx, users[1].ID, domain.UserPatch{Email: &taken})
	assertAppError(t, err, domain.CodeConflict, http.StatusConflict)

	name := "Ghost"
	_, err = svc.UpdateUser(ctx, "missing", domain.UserPatch{Name: &name})
	assertAppError(t, err, domain.CodeNotFound, http.StatusNotFound)
}

func TestUserService_DeleteUser(t *testing.T) {
	svc, repo, users := newUserFixture(t, 2)
	ctx := context.Background()
	adminID := users[0].ID

	got, err := svc.DeleteUser(ctx, users[1].ID, adminID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got.IsActive {
		t.Fatalf("expected deactivated user")
	}
	stored, _ := repo.FindByID(ctx, users[1].ID)
	if stored == nil || stored.IsActive {
		t.Fatalf("user must remain stored but inactive: %+v", stored)
	}

	// Deleting twice is still a success.
	if _, err := svc.DeleteUser(ctx, users[1].ID, adminID); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	_, err = svc.DeleteUser(ctx, adminID, adminID)
	assertAppError(t, err, domain.CodeForbidden, http.StatusForbidden)

	_, err = svc.DeleteUser(ctx, "missing", adminID)
	assertAppError(t, err, domain.CodeNotFound, http.StatusNotFound)
}

func mustErr(_ *domain.User, err error) error { return err }
