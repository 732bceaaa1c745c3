// Package testutil provides in-memory fakes shared by package tests.
package testutil

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/usermanagement/user-api/internal/core/domain"
	"github.com/usermanagement/user-api/internal/core/ports"
)

// UserRepository is an in-memory ports.UserRepository that follows the same
// contract as the Mongo implementation: passwords are hashed on write, emails
// are normalised and unique, and missing users yield domain.ErrUserNotFound.
type UserRepository struct {
	mu     sync.Mutex
	hasher ports.PasswordHasher
	users  map[string]*userRecord
	seq    int

	// Err, when set, is returned by every method.
	Err error
}

type userRecord struct {
	user domain.User
	seq  int
}

func NewUserRepository(hasher ports.PasswordHasher) *UserRepository {
	return &UserRepository{hasher: hasher, users: make(map[string]*userRecord)}
}

// ErrStoreDown is a convenience error for simulating persistence outages.
var ErrStoreDown = errors.New("store unavailable")

func (r *UserRepository) CountTotal(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}
	return int64(len(r.users)), nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	email = normalizeEmail(email)
	for _, rec := range r.users {
		if rec.user.Email == email {
			u := rec.user
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepository) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	rec, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u := rec.user
	return &u, nil
}

func (r *UserRepository) Create(_ context.Context, in domain.NewUser) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	email := normalizeEmail(in.Email)
	if r.emailTaken(email, "") {
		return nil, domain.ErrEmailTaken
	}
	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	r.seq++
	now := time.Now().UTC()
	rec := &userRecord{
		seq: r.seq,
		user: domain.User{
			ID:           fmt.Sprintf("%024x", r.seq),
			Name:         strings.TrimSpace(in.Name),
			Email:        email,
			PasswordHash: hash,
			Role:         role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
	r.users[rec.user.ID] = rec

	u := rec.user
	return &u, nil
}

func (r *UserRepository) Update(_ context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	rec, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	next := rec.user
	if patch.Name != nil {
		next.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		next.Email = normalizeEmail(*patch.Email)
		if r.emailTaken(next.Email, id) {
			return nil, domain.ErrEmailTaken
		}
	}
	if patch.Password != nil {
		hash, err := r.hasher.Hash(*patch.Password)
		if err != nil {
			return nil, err
		}
		next.PasswordHash = hash
	}
	if patch.Role != nil {
		next.Role = *patch.Role
	}
	if patch.IsActive != nil {
		next.IsActive = *patch.IsActive
	}
	next.UpdatedAt = time.Now().UTC()
	rec.user = next

	u := next
	return &u, nil
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string) (*domain.User, error) {
	inactive := false
	return r.Update(ctx, id, domain.UserPatch{IsActive: &inactive})
}

func (r *UserRepository) List(_ context.Context, f ports.ListUsersFilter) ([]*domain.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}

	wantActive := true
	if f.IsActive != nil {
		wantActive = *f.IsActive
	}
	var matched []*userRecord
	for _, rec := range r.users {
		if rec.user.IsActive != wantActive {
			continue
		}
		if f.Role != "" && rec.user.Role != f.Role {
			continue
		}
		matched = append(matched, rec)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	total := int64(len(matched))
	start := len(matched)
	if skip := int64(f.Page-1) * int64(f.Limit); skip < int64(len(matched)) {
		start = int(skip)
	}
	end := start + f.Limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*domain.User, 0, end-start)
	for _, rec := range matched[start:end] {
		u := rec.user
		out = append(out, &u)
	}
	return out, total, nil
}

// Put stores u verbatim, bypassing hashing. Useful for seeding fixtures such
// as deactivated accounts or corrupted hashes.
func (r *UserRepository) Put(u domain.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.users[u.ID] = &userRecord{user: u, seq: r.seq}
}

func (r *UserRepository) emailTaken(email, exceptID string) bool {
	for id, rec := range r.users {
		if id != exceptID && rec.user.Email == email {
			return true
		}
	}
	return false
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
