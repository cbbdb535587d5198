package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/rs/zerolog"
)

// DefaultProfileTTL is how long a cached profile counts as valid
const DefaultProfileTTL = 24 * time.Hour

// UserProfileCacheConfig holds configuration for the user profile cache
type UserProfileCacheConfig struct {
	TTL   time.Duration
	Clock domain.Clock
}

// SmartLoad is the result of a stale-while-revalidate profile load.
// Fresh receives exactly one value (nil when the refresh failed) and is then closed.
type SmartLoad struct {
	Cached *domain.UserCacheData
	Fresh  <-chan *domain.UserCacheData
}

// UserProfileCache keeps a durable projection of the signed-in user's profile.
// Storage and network failures degrade to "no cached data"; nothing is returned as an error.
type UserProfileCache struct {
	kv      domain.KeyValueStore
	gateway domain.RemoteGateway
	clock   domain.Clock
	ttl     time.Duration
	logger  zerolog.Logger
}

// NewUserProfileCache creates a new user profile cache with dependencies
func NewUserProfileCache(
	kv domain.KeyValueStore,
	gateway domain.RemoteGateway,
	config UserProfileCacheConfig,
	logger zerolog.Logger,
) *UserProfileCache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	clock := config.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	return &UserProfileCache{
		kv:      kv,
		gateway: gateway,
		clock:   clock,
		ttl:     ttl,
		logger:  logger.With().Str("component", "user_profile_cache").Logger(),
	}
}

// CacheUserData writes the four fields and the timestamp in one batch
func (c *UserProfileCache) CacheUserData(ctx context.Context, data domain.UserCacheData) {
	pairs := map[string]string{
		domain.KeyCachedUserName:     data.FullName,
		domain.KeyCachedUserPhone:    data.Phone,
		domain.KeyCachedUserEmail:    data.Email,
		domain.KeyCachedUserVerified: strconv.FormatBool(data.IsVerified),
		domain.KeyCacheTimestamp:     strconv.FormatInt(c.clock.Now().UnixMilli(), 10),
	}

	if err := c.kv.MultiSet(ctx, pairs); err != nil {
		c.logger.Error().Err(err).Msg("failed to cache user data")
	}
}

// LoadCachedUserData returns the cached profile, or nil when the cache is
// missing, expired or holds no name, phone or email.
func (c *UserProfileCache) LoadCachedUserData(ctx context.Context) *domain.UserCacheData {
	values, err := c.kv.MultiGet(ctx, domain.ProfileCacheKeys)
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to load cached user data")
		return nil
	}

	if !c.fresh(values[domain.KeyCacheTimestamp]) {
		return nil
	}

	data := domain.UserCacheData{
		FullName:   values[domain.KeyCachedUserName],
		Phone:      values[domain.KeyCachedUserPhone],
		Email:      values[domain.KeyCachedUserEmail],
		IsVerified: values[domain.KeyCachedUserVerified] == "true",
	}
	if data.IsEmpty() {
		return nil
	}
	return &data
}

// FetchAndCacheUserData fetches the profile with the stored credentials and
// writes it through CacheUserData. Returns nil on any failure.
func (c *UserProfileCache) FetchAndCacheUserData(ctx context.Context) *domain.UserCacheData {
	creds, err := c.kv.MultiGet(ctx, []string{domain.KeyUserID, domain.KeyToken})
	if err != nil {
		c.logger.Error().Err(err).Msg("failed to read credentials")
		return nil
	}

	userID, token := creds[domain.KeyUserID], creds[domain.KeyToken]
	if userID == "" || token == "" {
		c.logger.Debug().Err(domain.ErrMissingCredentials).Msg("skipping profile fetch")
		return nil
	}

	profile, err := c.gateway.GetUserProfile(ctx, userID, token)
	if err != nil {
		c.logger.Warn().Err(err).Str("user_id", userID).Msg("profile fetch failed")
		return nil
	}

	data := profile.CacheData()
	c.CacheUserData(ctx, data)
	return &data
}

// SmartLoadUserData returns the cached profile immediately and refreshes it
// in the background. The refresh outlives cancellation of ctx.
func (c *UserProfileCache) SmartLoadUserData(ctx context.Context) SmartLoad {
	cached := c.LoadCachedUserData(ctx)

	fresh := make(chan *domain.UserCacheData, 1)
	bg := context.WithoutCancel(ctx)
	go func() {
		defer close(fresh)
		fresh <- c.FetchAndCacheUserData(bg)
	}()

	return SmartLoad{Cached: cached, Fresh: fresh}
}

// ClearCache removes every profile slot (logout)
func (c *UserProfileCache) ClearCache(ctx context.Context) {
	if err := c.kv.Remove(ctx, domain.ProfileCacheKeys...); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear user cache")
	}
}

// IsCacheValid reports whether a timestamp exists and is within the TTL.
// Field content is not inspected.
func (c *UserProfileCache) IsCacheValid(ctx context.Context) bool {
	raw, err := c.kv.Get(ctx, domain.KeyCacheTimestamp)
	if err != nil {
		return false
	}
	return c.fresh(raw)
}

func (c *UserProfileCache) fresh(rawTimestamp string) bool {
	if rawTimestamp == "" {
		return false
	}
	ts, err := strconv.ParseInt(rawTimestamp, 10, 64)
	if err != nil {
		c.logger.Warn().Str("timestamp", rawTimestamp).Msg("ignoring unparsable cache timestamp")
		return false
	}
	return c.clock.Now().UnixMilli()-ts < c.ttl.Milliseconds()
}
