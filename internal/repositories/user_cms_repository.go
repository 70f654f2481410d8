package repositories

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"boutique/internal/cms"
	"boutique/internal/models"
)

// EmailCheckTimeout bounds the email existence lookup.
const EmailCheckTimeout = 8 * time.Second

// CMSUserRepository reads and edits customers with the API token.
type CMSUserRepository struct {
	client *cms.Client
}

// NewCMSUserRepository creates a new instance of CMSUserRepository.
func NewCMSUserRepository(client *cms.Client) *CMSUserRepository {
	return &CMSUserRepository{client: client}
}

// GetAll retrieves every customer. The users endpoint is not enveloped.
func (r *CMSUserRepository) GetAll(ctx context.Context) ([]models.User, error) {
	q := url.Values{}
	q.Set("sort", "createdAt:desc")
	q.Set("pagination[pageSize]", "1000")
	var users []models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users", nil, &users, cms.WithQuery(q)); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

// GetByID retrieves a customer.
func (r *CMSUserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users/"+strconv.Itoa(id), nil, &user); err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return &user, nil
}

// Update changes a customer's profile fields.
func (r *CMSUserRepository) Update(ctx context.Context, id int, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), update, &user); err != nil {
		if cms.IsNotFound(err) {
			return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to update user %d: %w", id, err)
	}
	return &user, nil
}

// ExistsByEmail reports whether an account uses email. The lookup is bounded
// by EmailCheckTimeout.
func (r *CMSUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, EmailCheckTimeout)
	defer cancel()

	q := url.Values{}
	q.Set("filters[email][$eqi]", email)
	q.Set("fields[0]", "id")
	var users []models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users", nil, &users, cms.WithQuery(q)); err != nil {
		return false, fmt.Errorf("failed to look up email: %w", err)
	}
	return len(users) > 0, nil
}

// CMSAccountRepository proxies the CMS local auth endpoints.
type CMSAccountRepository struct {
	client *cms.Client
}

// NewCMSAccountRepository creates a new instance of CMSAccountRepository.
func NewCMSAccountRepository(client *cms.Client) *CMSAccountRepository {
	return &CMSAccountRepository{client: client}
}

// Register signs a customer up.
func (r *CMSAccountRepository) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := r.client.Do(ctx, http.MethodPost, "/auth/local/register", req, &resp, cms.WithoutToken()); err != nil {
		return nil, fmt.Errorf("failed to register: %w", err)
	}
	return &resp, nil
}

// Login signs a customer in.
func (r *CMSAccountRepository) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	if err := r.client.Do(ctx, http.MethodPost, "/auth/local", req, &resp, cms.WithoutToken()); err != nil {
		return nil, fmt.Errorf("failed to log in: %w", err)
	}
	return &resp, nil
}

// Me returns the profile of the customer owning jwt.
func (r *CMSAccountRepository) Me(ctx context.Context, jwt string) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodGet, "/users/me", nil, &user, cms.WithBearer(jwt)); err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &user, nil
}

// UpdateMe updates the customer's own profile.
func (r *CMSAccountRepository) UpdateMe(ctx context.Context, jwt string, id int, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	if err := r.client.Do(ctx, http.MethodPut, "/users/"+strconv.Itoa(id), update, &user, cms.WithBearer(jwt)); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &user, nil
}
