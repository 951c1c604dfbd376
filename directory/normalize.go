package directory

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/moanarentals/moana/domain"
)

// normalizeProperty converts a raw store document into a Property, supplying a
// safe default for every absent or mistyped field. Documents written by older
// tooling or edited by hand must never break a listing.
func normalizeProperty(doc bson.M) domain.Property {
	now := time.Now()
	return domain.Property{
		ID:          idField(doc["_id"]),
		Title:       stringField(doc["title"], ""),
		Address:     stringField(doc["address"], ""),
		Price:       intField(doc["price"], 0),
		Type:        stringField(doc["type"], "Apartment"),
		Bedrooms:    intField(doc["bedrooms"], 1),
		Bathrooms:   intField(doc["bathrooms"], 1),
		Parking:     intField(doc["parking"], 0),
		Image:       stringField(doc["image"], ""),
		Images:      stringsField(doc["images"]),
		Description: stringField(doc["description"], ""),
		Available:   stringField(doc["available"], "Available"),
		Features:    stringsField(doc["features"]),
		ButtonLink:  stringField(doc["buttonLink"], ""),
		CreatedAt:   timeField(doc["createdAt"], now),
		UpdatedAt:   timeField(doc["updatedAt"], now),
	}
}

// normalizeButton converts a raw store document into a ButtonConfig with the
// same defaulting discipline as normalizeProperty.
func normalizeButton(doc bson.M) domain.ButtonConfig {
	now := time.Now()
	return domain.ButtonConfig{
		ID:          idField(doc["_id"]),
		Name:        stringField(doc["name"], ""),
		Link:        stringField(doc["link"], ""),
		IsActive:    boolField(doc["isActive"], false),
		Description: stringField(doc["description"], ""),
		CreatedAt:   timeField(doc["createdAt"], now),
		UpdatedAt:   timeField(doc["updatedAt"], now),
	}
}

func idField(value any) string {
	switch id := value.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return ""
	}
}

func stringField(value any, fallback string) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fallback
}

func boolField(value any, fallback bool) bool {
	if b, ok := value.(bool); ok {
		return b
	}
	return fallback
}

// intField accepts every numeric width the BSON decoder may hand back.
func intField(value any, fallback int) int {
	switch n := value.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return fallback
	}
}

func stringsField(value any) []string {
	switch items := value.(type) {
	case []string:
		return items
	case bson.A:
		result := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case []any:
		result := make([]string, 0, len(items))
		for _, item := range items {
			if s, ok := item.(string); ok {
				result = append(result, s)
			}
		}
		return result
	default:
		return []string{}
	}
}

func timeField(value any, fallback time.Time) time.Time {
	switch t := value.(type) {
	case time.Time:
		return t
	case primitive.DateTime:
		return t.Time()
	default:
		return fallback
	}
}
