package directory

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalizeProperty(t *testing.T) {
	t.Run("an empty document should get every default", func(t *testing.T) {
		got := normalizeProperty(bson.M{})

		if got.Title != "" || got.Address != "" || got.Description != "" {
			t.Fatalf("wanted empty strings\ngot: %+v", got)
		}
		if got.Type != "Apartment" {
			t.Fatalf("wanted type: Apartment\ngot: %s", got.Type)
		}
		if got.Bedrooms != 1 || got.Bathrooms != 1 {
			t.Fatalf("wanted bedrooms and bathrooms to default to 1\ngot: %d/%d", got.Bedrooms, got.Bathrooms)
		}
		if got.Parking != 0 || got.Price != 0 {
			t.Fatalf("wanted parking and price to default to 0\ngot: %d/%d", got.Parking, got.Price)
		}
		if got.Available != "Available" {
			t.Fatalf("wanted available: Available\ngot: %s", got.Available)
		}
		if got.Images == nil || len(got.Images) != 0 {
			t.Fatalf("wanted an empty images slice\ngot: %v", got.Images)
		}
		if got.Features == nil || len(got.Features) != 0 {
			t.Fatalf("wanted an empty features slice\ngot: %v", got.Features)
		}
		if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
			t.Fatalf("wanted timestamps to default to now\ngot: %v / %v", got.CreatedAt, got.UpdatedAt)
		}
	})

	t.Run("mistyped fields should fall back to defaults", func(t *testing.T) {
		got := normalizeProperty(bson.M{
			"title":    42,
			"price":    "not a number",
			"bedrooms": []string{"three"},
			"images":   "not-a-list",
		})

		if got.Title != "" {
			t.Fatalf("wanted: empty title\ngot: %q", got.Title)
		}
		if got.Price != 0 {
			t.Fatalf("wanted: 0\ngot: %d", got.Price)
		}
		if got.Bedrooms != 1 {
			t.Fatalf("wanted: 1\ngot: %d", got.Bedrooms)
		}
		if len(got.Images) != 0 {
			t.Fatalf("wanted: empty slice\ngot: %v", got.Images)
		}
	})

	t.Run("valid fields should pass through every decoder shape", func(t *testing.T) {
		id := primitive.NewObjectID()
		created := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

		got := normalizeProperty(bson.M{
			"_id":       id,
			"title":     "Beach Villa",
			"price":     int32(950),
			"bedrooms":  int64(3),
			"parking":   float64(2),
			"images":    bson.A{"a.jpg", "b.jpg", 7},
			"features":  []any{"Pool"},
			"createdAt": primitive.NewDateTimeFromTime(created),
			"updatedAt": created,
		})

		if got.ID != id.Hex() {
			t.Fatalf("wanted id: %s\ngot: %s", id.Hex(), got.ID)
		}
		if got.Price != 950 || got.Bedrooms != 3 || got.Parking != 2 {
			t.Fatalf("wanted numbers across widths to normalize\ngot: %+v", got)
		}
		if len(got.Images) != 2 {
			t.Fatalf("wanted non-string array entries to be dropped\ngot: %v", got.Images)
		}
		if len(got.Features) != 1 || got.Features[0] != "Pool" {
			t.Fatalf("wanted features: [Pool]\ngot: %v", got.Features)
		}
		if !got.CreatedAt.Equal(created) || !got.UpdatedAt.Equal(created) {
			t.Fatalf("wanted timestamps to pass through\ngot: %v / %v", got.CreatedAt, got.UpdatedAt)
		}
	})
}

func TestNormalizeButton(t *testing.T) {
	t.Run("an empty document should get defaults", func(t *testing.T) {
		got := normalizeButton(bson.M{})

		if got.Name != "" || got.Link != "" {
			t.Fatalf("wanted empty strings\ngot: %+v", got)
		}
		if got.IsActive {
			t.Fatalf("wanted isActive to default to false")
		}
		if got.CreatedAt.IsZero() {
			t.Fatalf("wanted createdAt to default to now")
		}
	})

	t.Run("fields should pass through", func(t *testing.T) {
		id := primitive.NewObjectID()
		got := normalizeButton(bson.M{
			"_id":      id,
			"name":     "Book Now",
			"link":     "https://booking.test/moana",
			"isActive": true,
		})

		if got.ID != id.Hex() || got.Name != "Book Now" || !got.IsActive {
			t.Fatalf("wanted fields to pass through\ngot: %+v", got)
		}
	})
}
