package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"boutique/internal/cms"
	"boutique/internal/models"

	"github.com/google/uuid"
)

// MockUserRepository is an in-memory implementation of both UserRepository
// and AccountRepository. Tokens map to user ids.
type MockUserRepository struct {
	users     map[int]models.User
	passwords map[int]string
	tokens    map[string]int
	nextID    int
	mu        sync.RWMutex
}

// NewMockUserRepository creates a new instance of MockUserRepository.
func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{
		users:     make(map[int]models.User),
		passwords: make(map[int]string),
		tokens:    make(map[string]int),
		nextID:    1,
	}
}

func applyProfile(u *models.User, p models.ProfileUpdate) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&u.FirstName, p.FirstName)
	set(&u.LastName, p.LastName)
	set(&u.Phone, p.Phone)
	set(&u.Address, p.Address)
	set(&u.City, p.City)
	set(&u.PostalCode, p.PostalCode)
	set(&u.Country, p.Country)
}

// GetAll returns every user.
func (r *MockUserRepository) GetAll(_ context.Context) ([]models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]models.User, 0, len(r.users))
	for _, u := range r.users {
		list = append(list, u)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	return list, nil
}

// GetByID returns a user.
func (r *MockUserRepository) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return &u, nil
}

// Update changes profile fields of a user.
func (r *MockUserRepository) Update(_ context.Context, id int, update models.ProfileUpdate) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	applyProfile(&u, update)
	r.users[id] = u
	return &u, nil
}

// ExistsByEmail reports whether email is taken.
func (r *MockUserRepository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *MockUserRepository) issue(id int) *models.AuthResponse {
	token := uuid.New().String()
	r.tokens[token] = id
	return &models.AuthResponse{JWT: token, User: r.users[id]}
}

// Register creates a user, rejecting taken usernames or emails like the CMS does.
func (r *MockUserRepository) Register(_ context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, req.Email) || u.Username == req.Username {
			return nil, &cms.APIError{Status: 400, Name: "ApplicationError", Message: "Email or Username are already taken"}
		}
	}
	id := r.nextID
	r.nextID++
	r.users[id] = models.User{ID: id, Username: req.Username, Email: req.Email, FirstName: req.FirstName, LastName: req.LastName, Confirmed: true}
	r.passwords[id] = req.Password
	return r.issue(id), nil
}

// Login checks credentials and issues a token.
func (r *MockUserRepository) Login(_ context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if (u.Username == req.Identifier || strings.EqualFold(u.Email, req.Identifier)) && r.passwords[id] == req.Password {
			return r.issue(id), nil
		}
	}
	return nil, &cms.APIError{Status: 400, Name: "ValidationError", Message: "Invalid identifier or password"}
}

// Me returns the user owning jwt.
func (r *MockUserRepository) Me(_ context.Context, jwt string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.tokens[jwt]
	if !ok {
		return nil, &cms.APIError{Status: 401, Name: "UnauthorizedError", Message: "Missing or invalid credentials"}
	}
	u := r.users[id]
	return &u, nil
}

// UpdateMe updates the profile of the user owning jwt.
func (r *MockUserRepository) UpdateMe(ctx context.Context, jwt string, id int, update models.ProfileUpdate) (*models.User, error) {
	r.mu.RLock()
	owner, ok := r.tokens[jwt]
	r.mu.RUnlock()
	if !ok || owner != id {
		return nil, &cms.APIError{Status: 403, Name: "ForbiddenError", Message: "Forbidden"}
	}
	return r.Update(ctx, id, update)
}
