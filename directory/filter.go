package directory

import (
	"strconv"
	"strings"

	"github.com/moanarentals/moana/domain"
)

// Criteria describes a property filter. Every field is optional: an empty
// string (or the literal "all") matches everything for that criterion, and
// criteria combine with AND.
type Criteria struct {
	Search     string // case-insensitive substring over title, address, or description
	PriceRange string // one of "0-500", "500-800", "800-1200", "1200+"
	Type       string // exact property type, case-insensitive
	Bedrooms   string // exact count, or "4+" for four or more
}

// Filter applies the criteria to a property list and returns the matches in
// their original order. It is pure: the input slice is never mutated and no
// store read happens here.
func Filter(properties []domain.Property, criteria Criteria) []domain.Property {
	matches := make([]domain.Property, 0, len(properties))
	for _, property := range properties {
		if matchesSearch(property, criteria.Search) &&
			matchesPrice(property.Price, criteria.PriceRange) &&
			matchesType(property.Type, criteria.Type) &&
			matchesBedrooms(property.Bedrooms, criteria.Bedrooms) {
			matches = append(matches, property)
		}
	}
	return matches
}

func wildcard(value string) bool {
	return value == "" || strings.EqualFold(value, "all")
}

func matchesSearch(property domain.Property, search string) bool {
	if wildcard(search) {
		return true
	}
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(property.Title), needle) ||
		strings.Contains(strings.ToLower(property.Address), needle) ||
		strings.Contains(strings.ToLower(property.Description), needle)
}

// matchesPrice applies the fixed weekly rent bands. The band edges follow the
// public site's filter control: a band's lower edge is exclusive except for
// the first band, the upper edge is inclusive.
func matchesPrice(price int, band string) bool {
	switch band {
	case "0-500":
		return price <= 500
	case "500-800":
		return price > 500 && price <= 800
	case "800-1200":
		return price > 800 && price <= 1200
	case "1200+":
		return price > 1200
	default:
		return wildcard(band)
	}
}

func matchesType(propertyType string, wanted string) bool {
	if wildcard(wanted) {
		return true
	}
	return strings.EqualFold(propertyType, wanted)
}

func matchesBedrooms(bedrooms int, wanted string) bool {
	if wildcard(wanted) {
		return true
	}
	if wanted == "4+" {
		return bedrooms >= 4
	}
	count, err := strconv.Atoi(wanted)
	if err != nil {
		return true
	}
	return bedrooms == count
}
