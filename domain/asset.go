package domain

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrAssetNotFound is returned when no cached asset matches the requested store and URL.
var ErrAssetNotFound = errors.New("cached asset not found")

// RawField type is used for the raw serialized response of a cached asset
//
// By default []byte MarshallJSON will encode the []byte value to base64
// MarshalJSON is implemented for RawField to directly marshall the "string" bytes
type RawField []byte

// MarshalJSON implements the json.Marshaler interface. It marshals the raw bytes
// as a JSON string, bypassing the default base64 encoding for []byte.
func (r RawField) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("null"), nil
	}

	return json.Marshal(string(r))
}

// AssetRepository is the interface that holds all the cache-store related repository methods.
// Stores are named, versioned buckets of URL keyed responses. A store name encodes the
// controller version so that activation of a newer version can reclaim every store that
// does not match the current names.
type AssetRepository interface {
	// CreateStore creates a named store. Creating a store that already exists is a no-op.
	CreateStore(name string) error

	// DeleteStore removes a store and every asset it owns.
	// Deleting a store that does not exist is a no-op.
	DeleteStore(name string) error

	// Stores returns the names of all existing stores.
	Stores() ([]string, error)

	// PutAsset inserts or overwrites the asset in the given store, keyed by its URL.
	// The owning store is created when it does not exist yet.
	PutAsset(store string, asset *CachedAsset) error

	// PutAssets inserts all assets into the given store in a single transaction.
	// Either every asset is stored or none of them are.
	PutAssets(store string, assets []*CachedAsset) error

	// GetAsset returns the asset stored under the given store and URL.
	// It returns ErrAssetNotFound when there is no match.
	GetAsset(store string, url string) (*CachedAsset, error)

	// MatchAsset returns the asset stored under the given URL in any store,
	// preferring the most recently fetched copy. It returns ErrAssetNotFound
	// when no store holds the URL.
	MatchAsset(url string) (*CachedAsset, error)

	// ClearStores deletes every store and every asset.
	ClearStores() error
}

// CachedAsset represents a single URL keyed entry inside a named cache store.
// The Raw field holds the complete serialized HTTP response (status line, headers
// and decoded body) so the original response can be rebuilt on a cache hit.
type CachedAsset struct {
	ID          uuid.UUID      // Unique identifier for the cache entry
	Store       string         // Name of the owning store
	URL         string         // Absolute request URL the asset is keyed by
	StatusCode  int            // HTTP status code of the stored response
	ContentType string         // Stored response content type
	Length      string         // Content length of the stored body
	Raw         RawField       // Complete serialized HTTP response
	Metadata    map[string]any // Additional metadata (classification, encoding, precache flag)
	FetchedAt   time.Time      // Timestamp when the asset was fetched from the network
}
