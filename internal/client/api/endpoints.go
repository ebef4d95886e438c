package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/atinyakov/creatorhub/internal/apperr"
	"github.com/atinyakov/creatorhub/internal/models"
)

// Login exchanges credentials for a token. A 401 answer is reported as
// apperr.ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, cred models.Credentials) (*models.TokenResponse, error) {
	var out models.TokenResponse
	err := c.do(ctx, request{method: http.MethodPost, path: "/auth/login", body: cred}, &out)
	if err != nil {
		return nil, fmt.Errorf("login: %w", asInvalidCredentials(err))
	}
	return &out, nil
}

// Register creates an account and returns its first token.
func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.TokenResponse, error) {
	var out models.TokenResponse
	if err := c.do(ctx, request{method: http.MethodPost, path: "/auth/register", body: reg}, &out); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return &out, nil
}

// Me returns the account behind token, or behind the TokenSource when token is empty.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var out models.User
	if err := c.do(ctx, request{method: http.MethodGet, path: "/auth/me", token: token, auth: true}, &out); err != nil {
		return nil, fmt.Errorf("who am i: %w", err)
	}
	return &out, nil
}

// SearchServices lists active services matching f. Unset fields are
// omitted from the query string.
func (c *Client) SearchServices(ctx context.Context, f models.Filter) ([]models.Listing, error) {
	var out []models.Listing
	if err := c.do(ctx, request{method: http.MethodGet, path: "/services", query: FilterQuery(f)}, &out); err != nil {
		return nil, fmt.Errorf("search services: %w", err)
	}
	if out == nil {
		out = []models.Listing{}
	}
	return out, nil
}

// FilterQuery encodes f as query parameters. The search term is trimmed and
// dropped when empty; a price bound of 0 is kept.
func FilterQuery(f models.Filter) url.Values {
	f = f.Normalized()
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.MinPrice != nil {
		q.Set("min_price", strconv.FormatFloat(*f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice != nil {
		q.Set("max_price", strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	return q
}

// GetService returns one listing.
func (c *Client) GetService(ctx context.Context, id string) (*models.Listing, error) {
	var out models.Listing
	if err := c.do(ctx, request{method: http.MethodGet, path: "/services/" + url.PathEscape(id)}, &out); err != nil {
		return nil, fmt.Errorf("get service %s: %w", id, err)
	}
	return &out, nil
}

// CreateService publishes a listing as the current creator.
func (c *Client) CreateService(ctx context.Context, req models.CreateListingRequest) (*models.Listing, error) {
	var out models.Listing
	if err := c.do(ctx, request{method: http.MethodPost, path: "/services", body: req, auth: true}, &out); err != nil {
		return nil, fmt.Errorf("create service: %w", err)
	}
	return &out, nil
}

// CreatorProfile returns the current creator's profile. A missing profile
// is reported as apperr.ErrNotFound.
func (c *Client) CreatorProfile(ctx context.Context) (*models.CreatorProfile, error) {
	var out models.CreatorProfile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/creators/profile", auth: true}, &out); err != nil {
		return nil, fmt.Errorf("creator profile: %w", err)
	}
	return &out, nil
}

func (c *Client) CreateCreatorProfile(ctx context.Context, in models.CreatorProfileInput) (*models.CreatorProfile, error) {
	var out models.CreatorProfile
	if err := c.do(ctx, request{method: http.MethodPost, path: "/creators/profile", body: in, auth: true}, &out); err != nil {
		return nil, fmt.Errorf("create creator profile: %w", err)
	}
	return &out, nil
}

func (c *Client) UpdateCreatorProfile(ctx context.Context, in models.CreatorProfileUpdate) (*models.CreatorProfile, error) {
	var out models.CreatorProfile
	if err := c.do(ctx, request{method: http.MethodPut, path: "/creators/profile", body: in, auth: true}, &out); err != nil {
		return nil, fmt.Errorf("update creator profile: %w", err)
	}
	return &out, nil
}

// CreatorServices lists the services published by creator id.
func (c *Client) CreatorServices(ctx context.Context, creatorID string) ([]models.Listing, error) {
	var out []models.Listing
	path := "/creators/" + url.PathEscape(creatorID) + "/services"
	if err := c.do(ctx, request{method: http.MethodGet, path: path}, &out); err != nil {
		return nil, fmt.Errorf("creator services: %w", err)
	}
	if out == nil {
		out = []models.Listing{}
	}
	return out, nil
}

// Health probes the backend.
func (c *Client) Health(ctx context.Context) error {
	if err := c.do(ctx, request{method: http.MethodGet, path: "/health"}, nil); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

func asInvalidCredentials(err error) error {
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		return &apperr.APIError{Status: apiErr.Status, Message: apiErr.Message, Kind: apperr.ErrInvalidCredentials}
	}
	return err
}
