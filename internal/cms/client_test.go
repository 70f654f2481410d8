package cms_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"boutique/internal/cms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type entry struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

func newClient(t *testing.T, handler http.HandlerFunc) *cms.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return cms.NewClient(cms.Config{BaseURL: srv.URL, Token: "api-token"}, zap.NewNop())
}

func TestGet_UnwrapsEnvelopeAndSendsToken(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/products", r.URL.Path)
		assert.Equal(t, "amber", r.URL.Query().Get("filters[slug][$eq]"))
		assert.Equal(t, "Bearer api-token", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":1,"title":"Amber"}],"meta":{"pagination":{"page":1,"pageSize":25,"pageCount":1,"total":1}}}`))
	})

	q := url.Values{}
	q.Set("filters[slug][$eq]", "amber")
	got, err := cms.Get[[]entry](context.Background(), client, "/products", q)
	require.NoError(t, err)
	assert.Equal(t, []entry{{ID: 1, Title: "Amber"}}, got)
}

func TestCreate_WrapsPayloadInData(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]entry
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Amber", body["data"].Title)
		_, _ = w.Write([]byte(`{"data":{"id":42,"title":"Amber"}}`))
	})

	got, err := cms.Create[entry](context.Background(), client, "/products", entry{Title: "Amber"})
	require.NoError(t, err)
	assert.Equal(t, 42, got.ID)
}

func TestDo_BearerOverridesAndWithoutToken(t *testing.T) {
	var seen []string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.Do(ctx, http.MethodGet, "/users/me", nil, nil, cms.WithBearer("user-jwt")))
	require.NoError(t, client.Do(ctx, http.MethodPost, "/auth/local", map[string]string{"identifier": "x"}, &entry{}, cms.WithoutToken()))
	assert.Equal(t, []string{"Bearer user-jwt", ""}, seen)
}

func TestDo_ParsesCMSError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"data":null,"error":{"status":400,"name":"ValidationError","message":"Email or Username are already taken"}}`))
	})

	err := client.Do(context.Background(), http.MethodPost, "/auth/local/register", map[string]string{}, nil)
	require.Error(t, err)
	var apiErr *cms.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Email or Username are already taken", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, cms.StatusOf(err))
	assert.False(t, cms.IsNotFound(err))
}

func TestDo_NotFoundWithoutBody(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	err := cms.Delete(context.Background(), client, "/products/abc")
	assert.True(t, cms.IsNotFound(err))
	assert.Contains(t, err.Error(), "Not Found")
}

func TestDo_UnreachableIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client := cms.NewClient(cms.Config{BaseURL: srv.URL}, zap.NewNop())

	err := client.Do(context.Background(), http.MethodGet, "/products", nil, nil)
	assert.ErrorIs(t, err, cms.ErrUnavailable)
	assert.Equal(t, 0, cms.StatusOf(err))
}

func TestUpload_SendsMultipartFiles(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		files := r.MultipartForm.File["files"]
		require.Len(t, files, 2)
		assert.Equal(t, "a.jpg", files[0].Filename)
		assert.Equal(t, "image/jpeg", files[0].Header.Get("Content-Type"))
		f, err := files[1].Open()
		require.NoError(t, err)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(data))
		_, _ = w.Write([]byte(`[{"id":1,"title":"a.jpg"},{"id":2,"title":"b.png"}]`))
	})

	var out []entry
	err := client.Upload(context.Background(), []cms.UploadFile{
		{Name: "a.jpg", ContentType: "image/jpeg", Data: []byte("jpeg-bytes")},
		{Name: "b.png", ContentType: "image/png", Data: []byte("png-bytes")},
	}, &out)
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestList_WalksAllPages(t *testing.T) {
	var pages []string
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pagination[page]")
		pages = append(pages, page)
		assert.Equal(t, "true", r.URL.Query().Get("populate[variants][populate][image]"))
		switch page {
		case "1":
			_, _ = w.Write([]byte(`{"data":[{"id":1},{"id":2}],"meta":{"pagination":{"page":1,"pageSize":2,"pageCount":2,"total":3}}}`))
		default:
			_, _ = w.Write([]byte(`{"data":[{"id":3}],"meta":{"pagination":{"page":2,"pageSize":2,"pageCount":2,"total":3}}}`))
		}
	})

	q := url.Values{}
	q.Set("populate[variants][populate][image]", "true")
	got, err := cms.List[entry](context.Background(), client, "/products", q)
	require.NoError(t, err)
	assert.Len(t, got, 3)
	assert.Equal(t, []string{"1", "2"}, pages)
}
