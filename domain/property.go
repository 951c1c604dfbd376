package domain

import "time"

// Property represents a rental listing record held in the remote document store.
// The id is assigned by the store on creation and is immutable thereafter.
type Property struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Address     string    `json:"address"`
	Price       int       `json:"price"` // weekly rent, non-negative
	Type        string    `json:"type"`  // Apartment, House, Townhouse, Studio
	Bedrooms    int       `json:"bedrooms"`
	Bathrooms   int       `json:"bathrooms"`
	Parking     int       `json:"parking"`
	Image       string    `json:"image"`  // primary image URL
	Images      []string  `json:"images"` // additional image URLs, ordered
	Description string    `json:"description"`
	Available   string    `json:"available"` // status label, free-form in practice
	Features    []string  `json:"features"`
	ButtonLink  string    `json:"buttonLink,omitempty"` // optional call-to-action target
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PropertyForm holds the caller supplied fields for creating a property.
// Timestamps are stamped by the directory, never by the caller.
type PropertyForm struct {
	Title       string   `json:"title"`
	Address     string   `json:"address"`
	Price       int      `json:"price"`
	Type        string   `json:"type"`
	Bedrooms    int      `json:"bedrooms"`
	Bathrooms   int      `json:"bathrooms"`
	Parking     int      `json:"parking"`
	Image       string   `json:"image"`
	Images      []string `json:"images"`
	Description string   `json:"description"`
	Available   string   `json:"available"`
	Features    []string `json:"features"`
	ButtonLink  string   `json:"buttonLink,omitempty"`
}

// PropertyPatch holds an edit to an existing property. Only the fields the
// caller actually supplies are merged into the stored document; nil fields
// are left untouched.
type PropertyPatch struct {
	Title       *string   `json:"title,omitempty"`
	Address     *string   `json:"address,omitempty"`
	Price       *int      `json:"price,omitempty"`
	Type        *string   `json:"type,omitempty"`
	Bedrooms    *int      `json:"bedrooms,omitempty"`
	Bathrooms   *int      `json:"bathrooms,omitempty"`
	Parking     *int      `json:"parking,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Images      *[]string `json:"images,omitempty"`
	Description *string   `json:"description,omitempty"`
	Available   *string   `json:"available,omitempty"`
	Features    *[]string `json:"features,omitempty"`
	ButtonLink  *string   `json:"buttonLink,omitempty"`
}
