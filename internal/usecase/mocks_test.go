package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/gamstore/storefront/internal/domain"
)

// fakeClock is a manually advanced domain.Clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.UnixMilli(1_700_000_000_000)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockGateway is a mock implementation of domain.RemoteGateway
type MockGateway struct {
	mu sync.Mutex

	homeData   *domain.HomePageData
	homeError  error
	categories []domain.Category
	catError   error
	page       *domain.ProductPage
	pageError  error
	profile    *domain.UserProfile
	profError  error

	// when set, GetHomeData signals homeEntered and waits for homeRelease
	homeEntered chan struct{}
	homeRelease chan struct{}

	homeCalls    int
	catCalls     int
	pageCalls    int
	searchCalls  int
	profileCalls int

	lastLocation *domain.Location
	lastLimit    int
	lastSubcat   string
	lastPage     int
	lastSearch   domain.SearchQuery
	lastUserID   string
	lastToken    string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) setHome(data *domain.HomePageData, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.homeData, m.homeError = data, err
}

func (m *MockGateway) setCategories(categories []domain.Category, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.categories, m.catError = categories, err
}

func (m *MockGateway) calls() (home, categories int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.homeCalls, m.catCalls
}

func (m *MockGateway) GetHomeData(ctx context.Context, loc *domain.Location, limit int) (*domain.HomePageData, error) {
	m.mu.Lock()
	m.homeCalls++
	m.lastLocation, m.lastLimit = loc, limit
	entered, release := m.homeEntered, m.homeRelease
	m.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
		<-release
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.homeError != nil {
		return nil, m.homeError
	}
	return m.homeData, nil
}

func (m *MockGateway) GetCategories(ctx context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.catCalls++
	if m.catError != nil {
		return nil, m.catError
	}
	return m.categories, nil
}

func (m *MockGateway) GetProductsBySubcategory(ctx context.Context, subcategoryID string, page, limit int) (*domain.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalls++
	m.lastSubcat, m.lastPage, m.lastLimit = subcategoryID, page, limit
	if m.pageError != nil {
		return nil, m.pageError
	}
	return m.page, nil
}

func (m *MockGateway) SearchProducts(ctx context.Context, query domain.SearchQuery) (*domain.ProductPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	m.lastSearch = query
	if m.pageError != nil {
		return nil, m.pageError
	}
	return m.page, nil
}

func (m *MockGateway) GetUserProfile(ctx context.Context, userID, token string) (*domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profileCalls++
	m.lastUserID, m.lastToken = userID, token
	if m.profError != nil {
		return nil, m.profError
	}
	return m.profile, nil
}

// MockKeyValueStore is a mock implementation of domain.KeyValueStore
type MockKeyValueStore struct {
	mu            sync.Mutex
	data          map[string]string
	getError      error
	multiGetError error
	multiSetError error
	removeError   error
	multiSetCalls int
	lastMultiSet  map[string]string
}

func NewMockKeyValueStore() *MockKeyValueStore {
	return &MockKeyValueStore{data: make(map[string]string)}
}

func (m *MockKeyValueStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getError != nil {
		return "", m.getError
	}
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *MockKeyValueStore) MultiGet(ctx context.Context, keys []string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.multiGetError != nil {
		return nil, m.multiGetError
	}
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := m.data[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MockKeyValueStore) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *MockKeyValueStore) MultiSet(ctx context.Context, pairs map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.multiSetCalls++
	if m.multiSetError != nil {
		return m.multiSetError
	}
	m.lastMultiSet = make(map[string]string, len(pairs))
	for k, v := range pairs {
		m.data[k] = v
		m.lastMultiSet[k] = v
	}
	return nil
}

func (m *MockKeyValueStore) Remove(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeError != nil {
		return m.removeError
	}
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

func (m *MockKeyValueStore) Close() error {
	return nil
}

func (m *MockKeyValueStore) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}
