package cms

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Pagination is the page metadata of a collection response.
type Pagination struct {
	Page      int `json:"page"`
	PageSize  int `json:"pageSize"`
	PageCount int `json:"pageCount"`
	Total     int `json:"total"`
}

// Envelope is the {data, meta} wrapper of content API responses.
type Envelope[T any] struct {
	Data T `json:"data"`
	Meta struct {
		Pagination *Pagination `json:"pagination,omitempty"`
	} `json:"meta"`
}

// Get fetches path and unwraps its data field.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values, opts ...RequestOption) (T, error) {
	var env Envelope[T]
	opts = append(opts, WithQuery(query))
	err := c.Do(ctx, http.MethodGet, path, nil, &env, opts...)
	return env.Data, err
}

// Create posts {data: payload} to path and unwraps the created entry.
func Create[T any](ctx context.Context, c *Client, path string, payload any, opts ...RequestOption) (T, error) {
	var env Envelope[T]
	err := c.Do(ctx, http.MethodPost, path, map[string]any{"data": payload}, &env, opts...)
	return env.Data, err
}

// Update puts {data: payload} to path and unwraps the updated entry.
func Update[T any](ctx context.Context, c *Client, path string, payload any, opts ...RequestOption) (T, error) {
	var env Envelope[T]
	err := c.Do(ctx, http.MethodPut, path, map[string]any{"data": payload}, &env, opts...)
	return env.Data, err
}

// Delete removes the entry at path.
func Delete(ctx context.Context, c *Client, path string, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, opts...)
}

// DefaultPageSize is the page size used when walking a whole collection.
const DefaultPageSize = 100

// List walks every page of the collection at path and concatenates the entries.
func List[T any](ctx context.Context, c *Client, path string, query url.Values, opts ...RequestOption) ([]T, error) {
	out := make([]T, 0)
	for page := 1; ; page++ {
		q := url.Values{}
		for k, v := range query {
			q[k] = v
		}
		q.Set("pagination[page]", strconv.Itoa(page))
		q.Set("pagination[pageSize]", strconv.Itoa(DefaultPageSize))

		var env Envelope[[]T]
		if err := c.Do(ctx, http.MethodGet, path, nil, &env, append(opts, WithQuery(q))...); err != nil {
			return nil, err
		}
		out = append(out, env.Data...)

		p := env.Meta.Pagination
		if p == nil || page >= p.PageCount || len(env.Data) == 0 {
			return out, nil
		}
	}
}
