package gateway

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Backend API paths
const (
	pathHomeData           = "/api/public/home-data"
	pathCategories         = "/api/public/categories"
	pathProductsBySubcat   = "/api/public/products-by-subcategory/"
	pathSearch             = "/api/public/search"
	pathUserProfilePattern = "/api/users/%s/profile"
)

const maxBodySize = 5 * 1024 * 1024 // 5 MB

// Config holds backend client settings
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RateLimit  float64 // requests per second
	Burst      int
	MaxRetries int
}

// Client handles communication with the marketplace backend
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	maxRetries  int
	backoff     func(attempt int) time.Duration
	logger      zerolog.Logger
}

var _ domain.RemoteGateway = (*Client)(nil)

// NewClient creates a new backend client
func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 10
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 1
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		rateLimiter: rate.NewLimiter(limit, burst),
		maxRetries:  retries,
		backoff:     exponentialBackoff,
		logger:      logger.With().Str("component", "gateway").Logger(),
	}
}

// exponentialBackoff returns 500ms, 1s, 2s, ... for attempts 1, 2, 3, ...
func exponentialBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// GetHomeData fetches the home page aggregate
func (c *Client) GetHomeData(ctx context.Context, loc *domain.Location, limit int) (*domain.HomePageData, error) {
	params := url.Values{}
	if loc != nil {
		params.Set("userLat", strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		params.Set("userLng", strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	body, err := c.get(ctx, pathHomeData, params, "")
	if err != nil {
		return nil, err
	}
	data, _, err := decodeEnvelope[domain.HomePageData](body)
	if err != nil {
		return nil, err
	}
	return &data, nil
}

// GetCategories fetches every category
func (c *Client) GetCategories(ctx context.Context) ([]domain.Category, error) {
	body, err := c.get(ctx, pathCategories, nil, "")
	if err != nil {
		return nil, err
	}
	categories, _, err := decodeEnvelope[[]domain.Category](body)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// GetProductsBySubcategory fetches one page of a subcategory's products
func (c *Client) GetProductsBySubcategory(ctx context.Context, subcategoryID string, page, limit int) (*domain.ProductPage, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, pathProductsBySubcat+url.PathEscape(subcategoryID), params, "")
	if err != nil {
		return nil, err
	}
	return decodeProductPage(body)
}

// SearchProducts runs a product search
func (c *Client) SearchProducts(ctx context.Context, query domain.SearchQuery) (*domain.ProductPage, error) {
	params := url.Values{}
	params.Set("q", query.Q)
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("limit", strconv.Itoa(query.Limit))
	if query.CategoryID != "" {
		params.Set("categoryId", query.CategoryID)
	}
	if query.SubcategoryID != "" {
		params.Set("subcategoryId", query.SubcategoryID)
	}
	if query.MinPrice != nil {
		params.Set("minPrice", strconv.FormatFloat(*query.MinPrice, 'f', -1, 64))
	}
	if query.MaxPrice != nil {
		params.Set("maxPrice", strconv.FormatFloat(*query.MaxPrice, 'f', -1, 64))
	}

	body, err := c.get(ctx, pathSearch, params, "")
	if err != nil {
		return nil, err
	}
	return decodeProductPage(body)
}

// GetUserProfile fetches the authoritative profile of userID
func (c *Client) GetUserProfile(ctx context.Context, userID, token string) (*domain.UserProfile, error) {
	if userID == "" || token == "" {
		return nil, domain.ErrMissingCredentials
	}

	body, err := c.get(ctx, fmt.Sprintf(pathUserProfilePattern, url.PathEscape(userID)), nil, token)
	if err != nil {
		return nil, err
	}
	return decodeUserProfile(body)
}

// get executes a GET, retrying transport failures, 429 and 5xx answers
func (c *Client) get(ctx context.Context, path string, params url.Values, token string) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.backoff(attempt-1)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
			}
		}

		// Wait for rate limiter
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: rate limiter: %v", domain.ErrGatewayFailure, err)
		}

		resp, err := c.doRequest(ctx, reqURL, token)
		if err != nil {
			c.logger.Warn().Err(err).Str("path", path).Int("attempt", attempt).Msg("request error")
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("%w: reading body: %v", domain.ErrGatewayFailure, err)
			continue
		}
		if len(body) > maxBodySize {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", domain.ErrMalformedResponse, maxBodySize)
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			c.logger.Debug().Str("path", path).Int("status", resp.StatusCode).Int("bytes", len(body)).Msg("request ok")
			return body, nil
		}

		lastErr = fmt.Errorf("%w: %s returned status %d", domain.ErrGatewayFailure, path, resp.StatusCode)
		c.logger.Warn().Str("path", path).Int("status", resp.StatusCode).Int("attempt", attempt).Msg("backend error")
		if !retryable(resp.StatusCode) {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with proper headers and error handling
func (c *Client) doRequest(ctx context.Context, reqURL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "storefront/1.0")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayFailure, err)
	}
	return resp, nil
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsGatewayError reports whether err came from the backend boundary
func IsGatewayError(err error) bool {
	return errors.Is(err, domain.ErrGatewayFailure) ||
		errors.Is(err, domain.ErrUnsuccessfulResponse) ||
		errors.Is(err, domain.ErrMalformedResponse)
}
