package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmptyHomePageData(t *testing.T) {
	data := EmptyHomePageData()

	assert.NotNil(t, data.Categories)
	assert.Empty(t, data.Categories)
	assert.Empty(t, data.NearbyRestaurants)
	assert.Empty(t, data.NearbyShops)
	assert.Empty(t, data.Advertisements)
	assert.Len(t, data.Sections, len(HomeSections))
	for _, name := range HomeSections {
		assert.NotNil(t, data.Sections[name], "section %s", name)
		assert.Empty(t, data.Sections[name], "section %s", name)
	}
}

func TestHomePageData_Normalize(t *testing.T) {
	in := HomePageData{
		Sections: map[SectionName][]Product{
			SectionPopular: {{ID: "p1"}},
			"seasonal":     nil,
		},
		Advertisements: []Advertisement{
			{ID: "late", Priority: 3},
			{ID: "first", Priority: 1},
			{ID: "second", Priority: 1},
		},
	}

	out := in.Normalize()

	assert.NotNil(t, out.Categories)
	assert.NotNil(t, out.NearbyShops)
	assert.Len(t, out.Sections[SectionPopular], 1)
	assert.NotNil(t, out.Sections[SectionFeatured])
	assert.NotNil(t, out.Sections["seasonal"])
	assert.Equal(t, "first", out.Advertisements[0].ID)
	assert.Equal(t, "second", out.Advertisements[1].ID)
	assert.Equal(t, "late", out.Advertisements[2].ID)

	// input untouched
	assert.Equal(t, "late", in.Advertisements[0].ID)
}

func TestPagination_HasMore(t *testing.T) {
	tests := []struct {
		page, total int
		want        bool
	}{
		{2, 5, true},
		{5, 5, false},
		{1, 1, false},
		{1, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Pagination{Page: tt.page, TotalPages: tt.total}.HasMore(),
			"page=%d totalPages=%d", tt.page, tt.total)
	}
}
