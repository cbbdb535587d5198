package domain

import "errors"

var (
	// ErrGatewayFailure is returned when the backend cannot be reached or answers non-2xx
	ErrGatewayFailure = errors.New("backend request failed")

	// ErrUnsuccessfulResponse is returned when the backend answers success:false
	ErrUnsuccessfulResponse = errors.New("backend reported failure")

	// ErrMalformedResponse is returned when a response body cannot be decoded
	ErrMalformedResponse = errors.New("malformed backend response")

	// ErrKeyNotFound is returned by key/value stores for absent keys
	ErrKeyNotFound = errors.New("key not found")

	// ErrCacheMiss is returned when no entry exists for a cache key
	ErrCacheMiss = errors.New("cache miss")

	// ErrMissingCredentials is returned when no user id or auth token is stored
	ErrMissingCredentials = errors.New("missing user id or auth token")

	// ErrAuthRequired is returned when a cart mutation needs a signed-in user
	ErrAuthRequired = errors.New("authentication required")

	// ErrVendorMismatch is returned when an item's vendor differs from the cart's
	// and the user declined replacing the cart
	ErrVendorMismatch = errors.New("cart contains items from another vendor")

	// ErrInvalidQuantity is returned when an add is requested with quantity < 1
	ErrInvalidQuantity = errors.New("quantity must be at least 1")

	// ErrUnknownCacheKey is returned when priming a key the home cache does not own
	ErrUnknownCacheKey = errors.New("unknown cache key")

	// ErrInvalidItem is returned when a cart item has no id or vendor
	ErrInvalidItem = errors.New("cart item requires id and vendor id")
)
