package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	client := NewClient(Config{BaseURL: baseURL, MaxRetries: 3}, zerolog.Nop())
	client.backoff = func(int) time.Duration { return 0 }
	return client
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestNewClient(t *testing.T) {
	client := NewClient(Config{BaseURL: "https://api.example.com/"}, zerolog.Nop())

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.Equal(t, 15*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 1, client.maxRetries)
}

func TestExponentialBackoff(t *testing.T) {
	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1000 * time.Millisecond},
		{3, 2000 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.expected, exponentialBackoff(tt.attempt))
		})
	}
}

func TestGetHomeData_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/home-data", r.URL.Path)
		assert.Equal(t, "13.45", r.URL.Query().Get("userLat"))
		assert.Equal(t, "-16.57", r.URL.Query().Get("userLng"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))

		jsonHandler(http.StatusOK, `{
			"success": true,
			"data": {
				"categories": [{"id": "c1", "name": "Food"}],
				"nearbyRestaurants": [{"id": "r1", "name": "Benachin House"}],
				"nearbyShops": [],
				"sections": {"featuredProducts": [{"id": "p1", "name": "Rice", "price": 12.5, "vendorId": "v1", "vendorName": "Shop"}]},
				"advertisements": [{"id": "a1", "title": "Sale", "imageUrl": "x", "priority": 2}]
			}
		}`)(w, r)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	result, err := client.GetHomeData(context.Background(), &domain.Location{Lat: 13.45, Lng: -16.57}, 10)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Len(t, result.Categories, 1)
	assert.Equal(t, "Benachin House", result.NearbyRestaurants[0].Name)
	assert.Equal(t, 12.5, result.Sections[domain.SectionFeatured][0].Price)
	assert.Equal(t, 2, result.Advertisements[0].Priority)
}

func TestGetHomeData_NoLocation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.False(t, r.URL.Query().Has("userLat"))
		assert.False(t, r.URL.Query().Has("userLng"))
		jsonHandler(http.StatusOK, `{"success": true, "data": {}}`)(w, r)
	}))
	defer server.Close()

	result, err := newTestClient(server.URL).GetHomeData(context.Background(), nil, 10)

	require.NoError(t, err)
	assert.NotNil(t, result)
}

func TestGetHomeData_UnsuccessfulEnvelope(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"success": false, "message": "maintenance"}`))
	defer server.Close()

	result, err := newTestClient(server.URL).GetHomeData(context.Background(), nil, 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrUnsuccessfulResponse)
	assert.Contains(t, err.Error(), "maintenance")
}

func TestGetHomeData_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, "invalid json"))
	defer server.Close()

	result, err := newTestClient(server.URL).GetHomeData(context.Background(), nil, 10)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGetCategories_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/categories", r.URL.Path)
		jsonHandler(http.StatusOK, `{"success": true, "data": [
			{"id": "c1", "name": "Food", "subcategories": [{"id": "s1", "name": "Rice", "categoryId": "c1"}]},
			{"id": "c2", "name": "Drinks"}
		]}`)(w, r)
	}))
	defer server.Close()

	categories, err := newTestClient(server.URL).GetCategories(context.Background())

	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "s1", categories[0].Subcategories[0].ID)
}

func TestGetProductsBySubcategory_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/public/products-by-subcategory/sub-1", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "10", r.URL.Query().Get("limit"))
		jsonHandler(http.StatusOK, `{
			"success": true,
			"data": [{"id": "p1", "name": "Rice", "price": 5, "vendorId": "v1", "vendorName": "A"}],
			"pagination": {"page": 2, "totalPages": 3, "total": 25, "limit": 10}
		}`)(w, r)
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).GetProductsBySubcategory(context.Background(), "sub-1", 2, 10)

	require.NoError(t, err)
	assert.Len(t, page.Products, 1)
	assert.Equal(t, 3, page.Pagination.TotalPages)
	assert.True(t, page.Pagination.HasMore())
}

func TestGetProductsBySubcategory_MissingPagination(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"success": true, "data": []}`))
	defer server.Close()

	page, err := newTestClient(server.URL).GetProductsBySubcategory(context.Background(), "sub-1", 1, 10)

	assert.Nil(t, page)
	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestSearchProducts_QueryParams(t *testing.T) {
	minPrice, maxPrice := 10.0, 99.5
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/api/public/search", r.URL.Path)
		assert.Equal(t, "rice", q.Get("q"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		assert.Equal(t, "c1", q.Get("categoryId"))
		assert.False(t, q.Has("subcategoryId"))
		assert.Equal(t, "10", q.Get("minPrice"))
		assert.Equal(t, "99.5", q.Get("maxPrice"))
		jsonHandler(http.StatusOK, `{"success": true, "data": [], "pagination": {"page": 1, "totalPages": 1}}`)(w, r)
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).SearchProducts(context.Background(), domain.SearchQuery{
		Q:          "rice",
		Page:       1,
		Limit:      20,
		CategoryID: "c1",
		MinPrice:   &minPrice,
		MaxPrice:   &maxPrice,
	})

	require.NoError(t, err)
	assert.Empty(t, page.Products)
	assert.False(t, page.Pagination.HasMore())
}

func TestGetUserProfile_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/u-42/profile", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		jsonHandler(http.StatusOK, `{"user": {"_id": "u-42", "name": "Awa Jallow", "phone": "+2207000000", "email": "awa@example.gm", "isVerified": true}}`)(w, r)
	}))
	defer server.Close()

	profile, err := newTestClient(server.URL).GetUserProfile(context.Background(), "u-42", "tok")

	require.NoError(t, err)
	assert.Equal(t, "u-42", profile.ID)
	assert.Equal(t, "Awa Jallow", profile.FullName)
	assert.Equal(t, "+2207000000", profile.Phone)
	assert.True(t, profile.IsVerified)
}

func TestGetUserProfile_MissingCredentials(t *testing.T) {
	client := newTestClient("http://127.0.0.1:0")

	_, err := client.GetUserProfile(context.Background(), "", "tok")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	_, err = client.GetUserProfile(context.Background(), "u-1", "")
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)
}

func TestGetUserProfile_MissingUser(t *testing.T) {
	server := httptest.NewServer(jsonHandler(http.StatusOK, `{"profile": {}}`))
	defer server.Close()

	_, err := newTestClient(server.URL).GetUserProfile(context.Background(), "u-1", "tok")

	assert.ErrorIs(t, err, domain.ErrMalformedResponse)
}

func TestGet_ServerError_Retries(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		jsonHandler(http.StatusOK, `{"success": true, "data": []}`)(w, r)
	}))
	defer server.Close()

	categories, err := newTestClient(server.URL).GetCategories(context.Background())

	require.NoError(t, err)
	assert.Empty(t, categories)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestGet_TooManyRequests_Retries(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		jsonHandler(http.StatusOK, `{"success": true, "data": []}`)(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestGet_ClientError_NoRetry(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCategories(context.Background())

	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.Equal(t, int32(1), attempts.Load()) // 4xx is not retried
}

func TestGet_AllRetriesFail(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).GetCategories(context.Background())

	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
	assert.True(t, IsGatewayError(err))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestGet_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).GetCategories(ctx)

	assert.ErrorIs(t, err, domain.ErrGatewayFailure)
}

func TestGet_RequestCreationError(t *testing.T) {
	_, err := newTestClient("://invalid-url").GetCategories(context.Background())

	assert.Error(t, err)
}

func TestIsGatewayError(t *testing.T) {
	assert.True(t, IsGatewayError(domain.ErrMalformedResponse))
	assert.True(t, IsGatewayError(domain.ErrUnsuccessfulResponse))
	assert.False(t, IsGatewayError(domain.ErrAuthRequired))
	assert.False(t, IsGatewayError(nil))
}
