package domain

import (
	"context"
	"time"
)

// Keys read from the persistent key/value store
const (
	KeyUserLocation = "userLocation"
	KeyUserID       = "userId"
	KeyToken        = "token"
	KeyIsLoggedIn   = "isLoggedIn"
)

// Slots owned by the user profile cache
const (
	KeyCachedUserName     = "cached_user_name"
	KeyCachedUserPhone    = "cached_user_phone"
	KeyCachedUserEmail    = "cached_user_email"
	KeyCachedUserVerified = "cached_user_verified"
	KeyCacheTimestamp     = "cache_timestamp"
)

// ProfileCacheKeys lists every slot written and removed together by the profile cache
var ProfileCacheKeys = []string{
	KeyCachedUserName,
	KeyCachedUserPhone,
	KeyCachedUserEmail,
	KeyCachedUserVerified,
	KeyCacheTimestamp,
}

// KeyValueStore is durable on-device string storage.
// Implementations must be safe for concurrent use.
type KeyValueStore interface {
	// Get returns ErrKeyNotFound when the key is absent
	Get(ctx context.Context, key string) (string, error)
	// MultiGet omits absent keys from the result
	MultiGet(ctx context.Context, keys []string) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
	// MultiSet writes all pairs or none of them
	MultiSet(ctx context.Context, pairs map[string]string) error
	Remove(ctx context.Context, keys ...string) error
	Close() error
}

// RemoteGateway defines the backend REST API consumed by the storefront
type RemoteGateway interface {
	// GetHomeData omits the location parameters when loc is nil
	GetHomeData(ctx context.Context, loc *Location, limit int) (*HomePageData, error)
	GetCategories(ctx context.Context) ([]Category, error)
	GetProductsBySubcategory(ctx context.Context, subcategoryID string, page, limit int) (*ProductPage, error)
	SearchProducts(ctx context.Context, query SearchQuery) (*ProductPage, error)
	GetUserProfile(ctx context.Context, userID, token string) (*UserProfile, error)
}

// Clock abstracts wall-clock reads so freshness checks are deterministic in tests
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time { return time.Now() }

// Prompt is a question shown to the user
type Prompt struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Confirmer asks the user to accept a destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt Prompt) bool
}

// ConfirmerFunc adapts a function to Confirmer
type ConfirmerFunc func(ctx context.Context, prompt Prompt) bool

// Confirm calls f(ctx, prompt)
func (f ConfirmerFunc) Confirm(ctx context.Context, prompt Prompt) bool { return f(ctx, prompt) }

// LoginPrompter routes the user to sign-in
type LoginPrompter interface {
	PromptLogin(ctx context.Context)
}

// LoginPrompterFunc adapts a function to LoginPrompter
type LoginPrompterFunc func(ctx context.Context)

// PromptLogin calls f(ctx)
func (f LoginPrompterFunc) PromptLogin(ctx context.Context) { f(ctx) }

// CacheRepository holds cache entries keyed by logical resource name.
// Entries never expire in storage; readers decide staleness.
type CacheRepository interface {
	// Get returns ErrCacheMiss when no entry exists
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}) error
	Clear(ctx context.Context) error
}
