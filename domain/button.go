package domain

import "time"

// ButtonConfig represents a named, toggleable link shortcut shown on the public site.
// It follows the same shape and lifecycle pattern as Property, only simpler.
type ButtonConfig struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Link        string    `json:"link"`
	IsActive    bool      `json:"isActive"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ButtonForm holds the caller supplied fields for creating a button configuration.
// New buttons always start active.
type ButtonForm struct {
	Name        string `json:"name"`
	Link        string `json:"link"`
	Description string `json:"description,omitempty"`
}

// ButtonPatch holds an edit to an existing button configuration. Nil fields
// are left untouched by the merge.
type ButtonPatch struct {
	Name        *string `json:"name,omitempty"`
	Link        *string `json:"link,omitempty"`
	Description *string `json:"description,omitempty"`
}
