package repositories_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"boutique/internal/cms"
	"boutique/internal/models"
	"boutique/internal/repositories"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCMSServer(t *testing.T, handler http.HandlerFunc) *cms.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return cms.NewClient(cms.Config{BaseURL: srv.URL, Token: "api-token"}, zap.NewNop())
}

func TestCMSOrderRepository_GetAllTranslatesFilter(t *testing.T) {
	var query map[string][]string
	client := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		query = r.URL.Query()
		w.Write([]byte(`{"data":[{"documentId":"o1","customOrderId":"MS-20250101-AAAAA","totalAmount":12.5}],"meta":{}}`))
	})
	repo := repositories.NewCMSOrderRepository(client)

	orders, err := repo.GetAll(context.Background(), models.OrderFilter{
		Query:       "anna",
		OrderStatus: models.OrderNew,
		Oldest:      true,
		Limit:       4,
	})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.True(t, decimal.RequireFromString("12.5").Equal(orders[0].TotalAmount))

	assert.Equal(t, []string{"createdAt:asc"}, query["sort"])
	assert.Equal(t, []string{"new"}, query["filters[orderStatus][$eq]"])
	assert.Equal(t, []string{"anna"}, query["filters[$or][3][customOrderId][$containsi]"])
	assert.Equal(t, []string{"4"}, query["pagination[pageSize]"])
}

func TestCMSOrderRepository_GetByCodeNotFound(t *testing.T) {
	client := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[],"meta":{}}`))
	})
	_, err := repositories.NewCMSOrderRepository(client).GetByCode(context.Background(), "MS-X")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestCMSProductRepository_CreateSendsImageIDs(t *testing.T) {
	var body struct {
		Data struct {
			Title    string `json:"title"`
			Variants []struct {
				Label string `json:"label"`
				Image []int  `json:"image"`
			} `json:"variants"`
		} `json:"data"`
	}
	client := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer api-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Write([]byte(`{"data":{"id":7,"documentId":"p7"}}`))
	})
	repo := repositories.NewCMSProductRepository(client)

	p := &models.Product{
		Title: "Linen shirt",
		Variants: []models.Variant{{
			Label:  "M",
			Price:  decimal.NewFromInt(40),
			Stock:  3,
			Images: []models.MediaRef{{ID: 11}, {ID: 12}},
		}},
	}
	require.NoError(t, repo.Create(context.Background(), p))
	assert.Equal(t, "p7", p.DocumentID)
	assert.Equal(t, "Linen shirt", body.Data.Title)
	require.Len(t, body.Data.Variants, 1)
	assert.Equal(t, []int{11, 12}, body.Data.Variants[0].Image)
}

func TestCMSProductRepository_UpdateMapsNotFound(t *testing.T) {
	client := newCMSServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":{"name":"NotFoundError","message":"Not Found"}}`))
	})
	err := repositories.NewCMSProductRepository(client).Update(context.Background(), &models.Product{DocumentID: "gone"})
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestMockOrderRepository_FilterAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMockOrderRepository()
	for _, code := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Create(ctx, &models.Order{CustomOrderID: code, OrderStatus: models.OrderNew}))
	}
	require.NoError(t, repo.Create(ctx, &models.Order{CustomOrderID: "D", OrderStatus: models.OrderShipped}))

	orders, err := repo.GetAll(ctx, models.OrderFilter{OrderStatus: models.OrderNew, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, orders, 2)
	assert.Equal(t, 4, repo.Count())

	shipped := models.OrderShipped
	updated, err := repo.UpdateStatus(ctx, orders[0].DocumentID, models.StatusUpdate{OrderStatus: &shipped})
	require.NoError(t, err)
	assert.Equal(t, models.OrderShipped, updated.OrderStatus)
}
