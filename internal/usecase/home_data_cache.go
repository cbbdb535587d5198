package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gamstore/storefront/internal/domain"
	"github.com/gamstore/storefront/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Entry keys owned by HomeDataCache
const (
	KeyHomePageData = "homePageData"
	KeyCategories   = "categories"
)

const (
	DefaultHomeTTL      = 5 * time.Minute // 300000 ms
	DefaultSectionLimit = 10
	DefaultPageLimit    = 10
)

// HomeDataCacheConfig holds configuration for the home data cache
type HomeDataCacheConfig struct {
	TTL          time.Duration
	SectionLimit int
}

// HomeDataCacheOption customizes a HomeDataCache
type HomeDataCacheOption func(*HomeDataCache)

// WithClock overrides the wall clock used for freshness checks
func WithClock(clock domain.Clock) HomeDataCacheOption {
	return func(c *HomeDataCache) { c.clock = clock }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) HomeDataCacheOption {
	return func(c *HomeDataCache) { c.logger = logger }
}

// WithMetrics records read outcomes to m
func WithMetrics(m *metrics.CacheMetrics) HomeDataCacheOption {
	return func(c *HomeDataCache) { c.metrics = m }
}

// WithRefreshListener registers fn to be called with the entry key after
// every successful fetch that replaced the stored entry.
func WithRefreshListener(fn func(key string)) HomeDataCacheOption {
	return func(c *HomeDataCache) { c.onRefresh = fn }
}

// HomeDataCache is a read-through, fail-open cache of home page aggregates
// and categories. Reads never return an error: on a failed fetch the most
// recent entry is served regardless of age, else a static empty value.
//
// Freshness is not keyed by location, so a location change within the TTL
// keeps serving the previous location's aggregate.
type HomeDataCache struct {
	entries      domain.CacheRepository
	gateway      domain.RemoteGateway
	kv           domain.KeyValueStore
	clock        domain.Clock
	ttl          time.Duration
	sectionLimit int
	logger       zerolog.Logger
	metrics      *metrics.CacheMetrics
	onRefresh    func(key string)

	group singleflight.Group

	// mu guards issued, floor and every compare-and-store on entries
	mu     sync.Mutex
	issued map[string]uint64
	floor  map[string]uint64

	preload sync.WaitGroup
}

// NewHomeDataCache creates a new home data cache with dependencies
func NewHomeDataCache(
	entries domain.CacheRepository,
	gateway domain.RemoteGateway,
	kv domain.KeyValueStore,
	config HomeDataCacheConfig,
	opts ...HomeDataCacheOption,
) *HomeDataCache {
	ttl := config.TTL
	if ttl <= 0 {
		ttl = DefaultHomeTTL
	}
	limit := config.SectionLimit
	if limit <= 0 {
		limit = DefaultSectionLimit
	}

	c := &HomeDataCache{
		entries:      entries,
		gateway:      gateway,
		kv:           kv,
		clock:        domain.SystemClock{},
		ttl:          ttl,
		sectionLimit: limit,
		logger:       zerolog.Nop(),
		issued:       make(map[string]uint64),
		floor:        make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("component", "home_data_cache").Logger()
	return c
}

// GetHomePageData returns the home page aggregate.
// Flow: fresh entry -> remote fetch -> store -> return, falling back to the
// last entry of any age and finally to an empty aggregate.
func (c *HomeDataCache) GetHomePageData(ctx context.Context) domain.HomePageData {
	return readThrough(ctx, c, KeyHomePageData,
		func(ctx context.Context) (domain.HomePageData, error) {
			data, err := c.gateway.GetHomeData(ctx, c.lastKnownLocation(ctx), c.sectionLimit)
			if err != nil {
				return domain.HomePageData{}, err
			}
			return data.Normalize(), nil
		},
		domain.EmptyHomePageData,
	)
}

// GetCategories returns every category with the same policy as GetHomePageData
func (c *HomeDataCache) GetCategories(ctx context.Context) []domain.Category {
	return readThrough(ctx, c, KeyCategories,
		func(ctx context.Context) ([]domain.Category, error) {
			categories, err := c.gateway.GetCategories(ctx)
			if err != nil {
				return nil, err
			}
			if categories == nil {
				categories = []domain.Category{}
			}
			return categories, nil
		},
		func() []domain.Category { return []domain.Category{} },
	)
}

// GetMoreSectionItems fetches one page of a subcategory. Never cached; any
// failure yields an empty page with HasMore false.
func (c *HomeDataCache) GetMoreSectionItems(ctx context.Context, subcategoryID string, page, limit int) domain.SectionPage {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	result, err := c.gateway.GetProductsBySubcategory(ctx, subcategoryID, page, limit)
	if err != nil {
		c.logger.Warn().Err(err).Str("subcategory_id", subcategoryID).Int("page", page).Msg("section page fetch failed")
		return domain.EmptySectionPage()
	}
	return toSectionPage(result)
}

// ClearCache drops every entry. Fetches already in flight are not stored,
// and reads issued after the clear start their own fetch instead of joining them.
func (c *HomeDataCache) ClearCache(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, seq := range c.issued {
		c.floor[key] = seq
	}
	for _, key := range []string{KeyHomePageData, KeyCategories} {
		c.group.Forget(key)
	}
	if err := c.entries.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("failed to clear entries")
	}
}

// PreloadCriticalData warms the home page and categories entries in the
// background and returns immediately. Errors are swallowed.
func (c *HomeDataCache) PreloadCriticalData(ctx context.Context) {
	bg := context.WithoutCancel(ctx)

	c.preload.Add(2)
	go func() {
		defer c.preload.Done()
		c.GetHomePageData(bg)
	}()
	go func() {
		defer c.preload.Done()
		c.GetCategories(bg)
	}()
}

// Wait blocks until every preload started so far has finished
func (c *HomeDataCache) Wait() {
	c.preload.Wait()
}

// Prime stores data under key as if it had just been fetched
func (c *HomeDataCache) Prime(ctx context.Context, key string, data any) error {
	switch key {
	case KeyHomePageData:
		home, ok := data.(domain.HomePageData)
		if !ok {
			return fmt.Errorf("prime %s: got %T", key, data)
		}
		c.store(ctx, key, domain.NewCacheEntry(home.Normalize(), c.clock.Now(), c.nextSeq(key)))
	case KeyCategories:
		categories, ok := data.([]domain.Category)
		if !ok {
			return fmt.Errorf("prime %s: got %T", key, data)
		}
		c.store(ctx, key, domain.NewCacheEntry(categories, c.clock.Now(), c.nextSeq(key)))
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownCacheKey, key)
	}
	return nil
}

// readThrough implements the fresh -> fetch -> stale -> fallback policy for one key
func readThrough[T any](
	ctx context.Context,
	c *HomeDataCache,
	key string,
	fetch func(context.Context) (T, error),
	fallback func() T,
) T {
	if entry := loadEntry[T](ctx, c, key); entry.Fresh(c.clock.Now(), c.ttl) {
		c.metrics.ObserveRead(key, metrics.OutcomeHit)
		return entry.Data
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		seq := c.nextSeq(key)
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if c.store(ctx, key, domain.NewCacheEntry(data, c.clock.Now(), seq)) && c.onRefresh != nil {
			c.onRefresh(key)
		}
		return data, nil
	})
	if err == nil {
		c.metrics.ObserveRead(key, metrics.OutcomeFetch)
		return v.(T)
	}

	c.metrics.ObserveFetchError(key)
	if entry := loadEntry[T](ctx, c, key); entry != nil {
		c.logger.Warn().Err(err).Str("key", key).Int64("timestamp", entry.Timestamp).Msg("fetch failed, serving stale entry")
		c.metrics.ObserveRead(key, metrics.OutcomeStale)
		return entry.Data
	}

	c.logger.Warn().Err(err).Str("key", key).Msg("fetch failed, serving empty fallback")
	c.metrics.ObserveRead(key, metrics.OutcomeEmpty)
	return fallback()
}

func loadEntry[T any](ctx context.Context, c *HomeDataCache, key string) *domain.CacheEntry[T] {
	value, err := c.entries.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			c.logger.Error().Err(err).Str("key", key).Msg("entry read failed")
		}
		return nil
	}
	entry, ok := value.(*domain.CacheEntry[T])
	if !ok {
		return nil
	}
	return entry
}

func (c *HomeDataCache) nextSeq(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.issued[key]++
	return c.issued[key]
}

// store saves entry unless a later-issued fetch already stored one or the
// cache was cleared after entry's fetch began. Reports whether it stored.
func (c *HomeDataCache) store(ctx context.Context, key string, entry domain.Sequenced) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	seq := entry.Sequence()
	if seq <= c.floor[key] {
		c.metrics.ObserveDiscarded(key)
		return false
	}
	if current, err := c.entries.Get(ctx, key); err == nil {
		if s, ok := current.(domain.Sequenced); ok && s.Sequence() > seq {
			c.metrics.ObserveDiscarded(key)
			c.logger.Debug().Str("key", key).Uint64("seq", seq).Msg("discarding out-of-order response")
			return false
		}
	}

	if err := c.entries.Set(ctx, key, entry); err != nil {
		c.logger.Error().Err(err).Str("key", key).Msg("entry write failed")
		return false
	}
	return true
}

// lastKnownLocation reads the stored location; nil when absent or unparsable
func (c *HomeDataCache) lastKnownLocation(ctx context.Context) *domain.Location {
	raw, err := c.kv.Get(ctx, domain.KeyUserLocation)
	if err != nil {
		if !errors.Is(err, domain.ErrKeyNotFound) {
			c.logger.Warn().Err(err).Msg("failed to read user location")
		}
		return nil
	}

	var loc *domain.Location
	if err := json.Unmarshal([]byte(raw), &loc); err != nil {
		c.logger.Warn().Err(err).Msg("ignoring unparsable user location")
		return nil
	}
	return loc
}

func toSectionPage(result *domain.ProductPage) domain.SectionPage {
	if result == nil {
		return domain.EmptySectionPage()
	}
	items := result.Products
	if items == nil {
		items = []domain.Product{}
	}
	return domain.SectionPage{Items: items, HasMore: result.Pagination.HasMore()}
}
