package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/gamstore/storefront/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Version is the service version reported by /health and at startup
const Version = "1.0.0"

// Handler holds dependencies for HTTP handlers
type Handler struct {
	home    *usecase.HomeDataCache
	search  *usecase.CatalogSearch
	profile *usecase.UserProfileCache
	cart    *usecase.CartService
	kv      domain.KeyValueStore
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	home *usecase.HomeDataCache,
	search *usecase.CatalogSearch,
	profile *usecase.UserProfileCache,
	cart *usecase.CartService,
	kv domain.KeyValueStore,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		home:    home,
		search:  search,
		profile: profile,
		cart:    cart,
		kv:      kv,
		logger:  logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "storefront",
		"version": Version,
	})
}

// GetHomePageData returns the cached home page aggregate
func (h *Handler) GetHomePageData(c *gin.Context) {
	c.JSON(http.StatusOK, h.home.GetHomePageData(c.Request.Context()))
}

// RefreshHomePageData drops cached entries and refetches the home page
func (h *Handler) RefreshHomePageData(c *gin.Context) {
	ctx := c.Request.Context()
	h.home.ClearCache(ctx)
	c.JSON(http.StatusOK, h.home.GetHomePageData(ctx))
}

// GetCategories returns every category
func (h *Handler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": h.home.GetCategories(c.Request.Context())})
}

type pageQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetSectionItems returns one page of a subcategory
func (h *Handler) GetSectionItems(c *gin.Context) {
	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := h.home.GetMoreSectionItems(c.Request.Context(), c.Param("subcategoryId"), q.Page, q.Limit)
	c.JSON(http.StatusOK, page)
}

// SearchProducts runs a catalog search
func (h *Handler) SearchProducts(c *gin.Context) {
	var q domain.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.search.Search(c.Request.Context(), q))
}

// GetProfile returns the cached profile immediately. With ?wait=true it also
// waits for the background refresh and returns its result as "fresh".
func (h *Handler) GetProfile(c *gin.Context) {
	ctx := c.Request.Context()
	load := h.profile.SmartLoadUserData(ctx)

	if c.Query("wait") != "true" {
		c.JSON(http.StatusOK, gin.H{"cached": load.Cached})
		return
	}

	select {
	case fresh := <-load.Fresh:
		c.JSON(http.StatusOK, gin.H{"cached": load.Cached, "fresh": fresh})
	case <-ctx.Done():
		c.JSON(http.StatusOK, gin.H{"cached": load.Cached})
	}
}

// RefreshProfile fetches the profile from the backend and caches it
func (h *Handler) RefreshProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"profile": h.profile.FetchAndCacheUserData(c.Request.Context())})
}

// ClearProfileCache removes the cached profile
func (h *Handler) ClearProfileCache(c *gin.Context) {
	h.profile.ClearCache(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type sessionRequest struct {
	UserID string `json:"userId" binding:"required"`
	Token  string `json:"token" binding:"required"`
}

// StartSession stores the credentials issued by the sign-in flow
func (h *Handler) StartSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.kv.MultiSet(c.Request.Context(), map[string]string{
		domain.KeyUserID:     req.UserID,
		domain.KeyToken:      req.Token,
		domain.KeyIsLoggedIn: "true",
	})
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to store session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store session"})
		return
	}
	c.Status(http.StatusNoContent)
}

// EndSession signs out: credentials, cached profile and cart are dropped
func (h *Handler) EndSession(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.kv.Remove(ctx, domain.KeyUserID, domain.KeyToken, domain.KeyIsLoggedIn); err != nil {
		h.logger.Error().Err(err).Msg("failed to remove session")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	h.profile.ClearCache(ctx)
	h.cart.ClearCart()
	c.Status(http.StatusNoContent)
}

type locationRequest struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `json:"lng" binding:"required,min=-180,max=180"`
}

// SetLocation stores the device location used for nearby results
func (h *Handler) SetLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	raw, _ := json.Marshal(domain.Location{Lat: *req.Lat, Lng: *req.Lng})
	if err := h.kv.Set(c.Request.Context(), domain.KeyUserLocation, string(raw)); err != nil {
		h.logger.Error().Err(err).Msg("failed to store location")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store location"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetCart returns the cart contents and totals
func (h *Handler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

type addItemRequest struct {
	Item        domain.Product `json:"item"`
	Quantity    *int           `json:"quantity"`
	ReplaceCart bool           `json:"replaceCart"`
}

// AddCartItem adds a product. A cart holding another vendor's items is only
// replaced when the request sets replaceCart; otherwise 409 carries the prompt.
func (h *Handler) AddCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	ctx, conf := withConfirmation(c.Request.Context(), req.ReplaceCart)
	if err := h.cart.AddToCart(ctx, req.Item, quantity); err != nil {
		if errors.Is(err, domain.ErrVendorMismatch) {
			prompt, _ := conf.Prompt()
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "prompt": prompt})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.cart.Snapshot())
}

type updateItemRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// UpdateCartItem sets a line's quantity; below 1 removes it
func (h *Handler) UpdateCartItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.cart.UpdateQuantity(c.Param("id"), *req.Quantity)
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

// RemoveCartItem deletes a line
func (h *Handler) RemoveCartItem(c *gin.Context) {
	h.cart.RemoveFromCart(c.Param("id"))
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

// ClearCart empties the cart
func (h *Handler) ClearCart(c *gin.Context) {
	h.cart.ClearCart()
	c.JSON(http.StatusOK, h.cart.Snapshot())
}

// writeError maps precondition errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error(), "action": "login"})
	case errors.Is(err, domain.ErrVendorMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidQuantity), errors.Is(err, domain.ErrInvalidItem):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
