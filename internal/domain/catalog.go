package domain

import "sort"

// SectionName identifies one of the fixed product sections on the home page
type SectionName string

// Home page sections returned by the backend
const (
	SectionFeatured    SectionName = "featuredProducts"
	SectionPopular     SectionName = "popularProducts"
	SectionNewArrivals SectionName = "newArrivals"
	SectionBestDeals   SectionName = "bestDeals"
)

// HomeSections lists the fixed section set in display order
var HomeSections = []SectionName{
	SectionFeatured,
	SectionPopular,
	SectionNewArrivals,
	SectionBestDeals,
}

// Category is a top-level product category
type Category struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	ImageURL      string        `json:"imageUrl,omitempty"`
	Subcategories []Subcategory `json:"subcategories,omitempty"`
}

// Subcategory belongs to a Category and keys section pagination
type Subcategory struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	CategoryID string `json:"categoryId,omitempty"`
}

// Restaurant is a food vendor near the user
type Restaurant struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	Address    string  `json:"address,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
	IsOpen     bool    `json:"isOpen,omitempty"`
}

// Shop is a retail vendor near the user
type Shop struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	ImageURL   string  `json:"imageUrl,omitempty"`
	Address    string  `json:"address,omitempty"`
	Rating     float64 `json:"rating,omitempty"`
	DistanceKm float64 `json:"distanceKm,omitempty"`
	IsOpen     bool    `json:"isOpen,omitempty"`
}

// Product is a sellable item offered by a single vendor
type Product struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Description   string  `json:"description,omitempty"`
	ImageURL      string  `json:"imageUrl,omitempty"`
	VendorID      string  `json:"vendorId"`
	VendorName    string  `json:"vendorName"`
	SubcategoryID string  `json:"subcategoryId,omitempty"`
	InStock       bool    `json:"inStock,omitempty"`
}

// Advertisement is a promotional banner; lower Priority is shown first
type Advertisement struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	ImageURL  string `json:"imageUrl"`
	TargetURL string `json:"targetUrl,omitempty"`
	Priority  int    `json:"priority"`
}

// Location is the last known device position
type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// HomePageData is the aggregate rendered by the home screen
type HomePageData struct {
	Categories        []Category                `json:"categories"`
	NearbyRestaurants []Restaurant              `json:"nearbyRestaurants"`
	NearbyShops       []Shop                    `json:"nearbyShops"`
	Sections          map[SectionName][]Product `json:"sections"`
	Advertisements    []Advertisement           `json:"advertisements"`
}

// EmptyHomePageData returns the all-empty aggregate used when nothing is cached
// and the backend is unreachable.
func EmptyHomePageData() HomePageData {
	sections := make(map[SectionName][]Product, len(HomeSections))
	for _, name := range HomeSections {
		sections[name] = []Product{}
	}
	return HomePageData{
		Categories:        []Category{},
		NearbyRestaurants: []Restaurant{},
		NearbyShops:       []Shop{},
		Sections:          sections,
		Advertisements:    []Advertisement{},
	}
}

// Normalize returns a copy with nil slices replaced by empty ones, every fixed
// section present and advertisements ordered by ascending priority.
func (h HomePageData) Normalize() HomePageData {
	out := HomePageData{
		Categories:        nonNil(h.Categories),
		NearbyRestaurants: nonNil(h.NearbyRestaurants),
		NearbyShops:       nonNil(h.NearbyShops),
		Sections:          make(map[SectionName][]Product, len(HomeSections)),
	}
	for _, name := range HomeSections {
		out.Sections[name] = []Product{}
	}
	for name, products := range h.Sections {
		out.Sections[name] = nonNil(products)
	}

	ads := make([]Advertisement, len(h.Advertisements))
	copy(ads, h.Advertisements)
	sort.SliceStable(ads, func(i, j int) bool {
		return ads[i].Priority < ads[j].Priority
	})
	out.Advertisements = ads

	return out
}

// SectionPage is one page of products plus whether more pages exist
type SectionPage struct {
	Items   []Product `json:"items"`
	HasMore bool      `json:"hasMore"`
}

// EmptySectionPage is returned whenever a paginated fetch fails
func EmptySectionPage() SectionPage {
	return SectionPage{Items: []Product{}, HasMore: false}
}

// Pagination is the backend's page cursor
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"totalPages"`
	Total      int `json:"total,omitempty"`
	Limit      int `json:"limit,omitempty"`
}

// HasMore reports whether pages remain after the current one
func (p Pagination) HasMore() bool {
	return p.Page < p.TotalPages
}

// ProductPage is a paginated product listing as returned by the backend
type ProductPage struct {
	Products   []Product
	Pagination Pagination
}

// SearchQuery holds the parameters of a product search
type SearchQuery struct {
	Q             string   `form:"q" json:"q"`
	Page          int      `form:"page" json:"page,omitempty"`
	Limit         int      `form:"limit" json:"limit,omitempty"`
	CategoryID    string   `form:"categoryId" json:"categoryId,omitempty"`
	SubcategoryID string   `form:"subcategoryId" json:"subcategoryId,omitempty"`
	MinPrice      *float64 `form:"minPrice" json:"minPrice,omitempty"`
	MaxPrice      *float64 `form:"maxPrice" json:"maxPrice,omitempty"`
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
