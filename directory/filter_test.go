package directory

import (
	"testing"

	"github.com/moanarentals/moana/domain"
)

func testListings() []domain.Property {
	return []domain.Property{
		{ID: "1", Title: "Beach Villa", Address: "1 Shoreline Dr", Description: "Steps from the sand", Price: 1350, Type: "House", Bedrooms: 4},
		{ID: "2", Title: "City Studio", Address: "88 Queen St", Description: "Compact inner-city living", Price: 450, Type: "Studio", Bedrooms: 1},
		{ID: "3", Title: "Garden Apartment", Address: "12 Rose Ave", Description: "Quiet leafy street", Price: 620, Type: "Apartment", Bedrooms: 2},
		{ID: "4", Title: "Harbour Townhouse", Address: "3 Wharf Ln", Description: "Walk to the ferry", Price: 980, Type: "Townhouse", Bedrooms: 3},
		{ID: "5", Title: "Family Home", Address: "45 Beach Rd", Description: "Room for everyone", Price: 800, Type: "House", Bedrooms: 5},
	}
}

func ids(properties []domain.Property) []string {
	result := make([]string, 0, len(properties))
	for _, property := range properties {
		result = append(result, property.ID)
	}
	return result
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{name: "no criteria matches everything", criteria: Criteria{}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "all wildcards match everything", criteria: Criteria{Search: "all", PriceRange: "all", Type: "all", Bedrooms: "all"}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "search matches title", criteria: Criteria{Search: "villa"}, want: []string{"1"}},
		{name: "search matches address", criteria: Criteria{Search: "beach rd"}, want: []string{"5"}},
		{name: "search matches description", criteria: Criteria{Search: "ferry"}, want: []string{"4"}},
		{name: "search is case-insensitive", criteria: Criteria{Search: "QUEEN"}, want: []string{"2"}},
		{name: "search with no match", criteria: Criteria{Search: "penthouse"}, want: []string{}},
		{name: "lowest price band includes the upper edge", criteria: Criteria{PriceRange: "0-500"}, want: []string{"2"}},
		{name: "middle band excludes its lower edge", criteria: Criteria{PriceRange: "500-800"}, want: []string{"3", "5"}},
		{name: "high band", criteria: Criteria{PriceRange: "800-1200"}, want: []string{"4"}},
		{name: "open-ended top band", criteria: Criteria{PriceRange: "1200+"}, want: []string{"1"}},
		{name: "type is case-insensitive", criteria: Criteria{Type: "house"}, want: []string{"1", "5"}},
		{name: "exact bedroom count", criteria: Criteria{Bedrooms: "2"}, want: []string{"3"}},
		{name: "four plus bedrooms", criteria: Criteria{Bedrooms: "4+"}, want: []string{"1", "5"}},
		{name: "criteria combine with AND", criteria: Criteria{Search: "beach", Type: "house", Bedrooms: "4+"}, want: []string{"1", "5"}},
		{name: "AND can eliminate everything", criteria: Criteria{Search: "villa", PriceRange: "0-500"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(Filter(testListings(), tt.criteria))
			if len(got) != len(tt.want) {
				t.Fatalf("wanted: %v\ngot: %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("wanted: %v\ngot: %v", tt.want, got)
				}
			}
		})
	}

	t.Run("should preserve the input order", func(t *testing.T) {
		got := Filter(testListings(), Criteria{Type: "house"})
		if len(got) != 2 || got[0].ID != "1" || got[1].ID != "5" {
			t.Fatalf("wanted matches in original order\ngot: %v", ids(got))
		}
	})

	t.Run("should not mutate the input", func(t *testing.T) {
		listings := testListings()
		Filter(listings, Criteria{Search: "villa"})
		if len(listings) != 5 {
			t.Fatalf("wanted the input to be untouched\ngot: %d entries", len(listings))
		}
	})
}
