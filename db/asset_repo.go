package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/moanarentals/moana/domain"
)

var _ domain.AssetRepository = (*Repository)(nil)

// dbAsset represents a cached asset as stored in the database.
type dbAsset struct {
	ID          uuid.UUID `db:"id"`           // Unique identifier for the cache entry.
	Store       string    `db:"store"`        // Name of the owning store.
	URL         string    `db:"url"`          // Absolute request URL the asset is keyed by.
	StatusCode  int       `db:"status_code"`  // HTTP status code of the stored response.
	ContentType string    `db:"content_type"` // Stored response content type.
	Length      string    `db:"length"`       // Content length of the stored body.
	ResponseRaw []byte    `db:"response_raw"` // Complete serialized HTTP response.
	Metadata    Metadata  `db:"metadata"`     // Additional metadata.
	FetchedAt   time.Time `db:"fetched_at"`   // Timestamp when the asset was fetched.
}

// fromDomainAsset converts a domain.CachedAsset into a dbAsset for database insertion.
func fromDomainAsset(asset *domain.CachedAsset) *dbAsset {
	return &dbAsset{
		ID:          asset.ID,
		Store:       asset.Store,
		URL:         asset.URL,
		StatusCode:  asset.StatusCode,
		ContentType: asset.ContentType,
		Length:      asset.Length,
		ResponseRaw: asset.Raw,
		Metadata:    Metadata(asset.Metadata),
		FetchedAt:   asset.FetchedAt,
	}
}

// toDomainAsset converts a dbAsset into a domain.CachedAsset.
func toDomainAsset(dbAsset *dbAsset) *domain.CachedAsset {
	return &domain.CachedAsset{
		ID:          dbAsset.ID,
		Store:       dbAsset.Store,
		URL:         dbAsset.URL,
		StatusCode:  dbAsset.StatusCode,
		ContentType: dbAsset.ContentType,
		Length:      dbAsset.Length,
		Raw:         domain.RawField(dbAsset.ResponseRaw),
		Metadata:    map[string]any(dbAsset.Metadata),
		FetchedAt:   dbAsset.FetchedAt,
	}
}

// CreateStore creates a named store. Creating a store that already exists is a no-op.
func (repo *Repository) CreateStore(name string) error {
	query := `INSERT INTO store (name) VALUES (?) ON CONFLICT (name) DO NOTHING`

	_, err := repo.dbConn.Exec(query, name)
	if err != nil {
		return fmt.Errorf("creating store %s: %w", name, err)
	}

	return nil
}

// DeleteStore removes a store and every asset it owns through the cascading foreign key.
// Deleting a store that does not exist is a no-op.
func (repo *Repository) DeleteStore(name string) error {
	query := `DELETE FROM store WHERE name = ?`

	_, err := repo.dbConn.Exec(query, name)
	if err != nil {
		return fmt.Errorf("deleting store %s: %w", name, err)
	}

	return nil
}

// Stores returns the names of all existing stores.
func (repo *Repository) Stores() ([]string, error) {
	var names []string
	query := `SELECT name FROM store ORDER BY name`

	err := repo.dbConn.Select(&names, query)
	if err != nil {
		return nil, fmt.Errorf("getting store names: %w", err)
	}

	return names, nil
}

const upsertAssetQuery = `INSERT INTO asset (id, store, url, status_code, content_type, length, response_raw, metadata, fetched_at)
	VALUES (:id, :store, :url, :status_code, :content_type, :length, :response_raw, :metadata, :fetched_at)
	ON CONFLICT (store, url) DO UPDATE SET
		status_code = excluded.status_code,
		content_type = excluded.content_type,
		length = excluded.length,
		response_raw = excluded.response_raw,
		metadata = excluded.metadata,
		fetched_at = excluded.fetched_at`

// PutAsset inserts or overwrites the asset in the given store, keyed by its URL.
// The owning store is created when it does not exist yet.
func (repo *Repository) PutAsset(store string, asset *domain.CachedAsset) error {
	if err := repo.CreateStore(store); err != nil {
		return err
	}

	dbAsset := fromDomainAsset(asset)
	dbAsset.Store = store

	_, err := repo.dbConn.NamedExec(upsertAssetQuery, dbAsset)
	if err != nil {
		return fmt.Errorf("putting asset %s into store %s: %w", asset.URL, store, err)
	}

	return nil
}

// PutAssets inserts all assets into the given store in a single transaction.
// Either every asset is stored or none of them are.
func (repo *Repository) PutAssets(store string, assets []*domain.CachedAsset) error {
	tx, err := repo.dbConn.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO store (name) VALUES (?) ON CONFLICT (name) DO NOTHING`, store); err != nil {
		return fmt.Errorf("creating store %s: %w", store, err)
	}

	for _, asset := range assets {
		dbAsset := fromDomainAsset(asset)
		dbAsset.Store = store
		if _, err := tx.NamedExec(upsertAssetQuery, dbAsset); err != nil {
			return fmt.Errorf("putting asset %s into store %s: %w", asset.URL, store, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing assets for store %s: %w", store, err)
	}

	return nil
}

// GetAsset returns the asset stored under the given store and URL.
// It returns domain.ErrAssetNotFound when there is no match.
func (repo *Repository) GetAsset(store string, url string) (*domain.CachedAsset, error) {
	var row dbAsset
	query := `SELECT * FROM asset WHERE store = ? AND url = ?`

	err := repo.dbConn.Get(&row, query, store, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset %s from store %s: %w", url, store, err)
	}

	return toDomainAsset(&row), nil
}

// MatchAsset returns the asset stored under the given URL in any store,
// preferring the most recently fetched copy.
func (repo *Repository) MatchAsset(url string) (*domain.CachedAsset, error) {
	var row dbAsset
	query := `SELECT * FROM asset WHERE url = ? ORDER BY fetched_at DESC LIMIT 1`

	err := repo.dbConn.Get(&row, query, url)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrAssetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("matching asset %s: %w", url, err)
	}

	return toDomainAsset(&row), nil
}

// ClearStores deletes every store and every asset.
func (repo *Repository) ClearStores() error {
	_, err := repo.dbConn.Exec(`DELETE FROM store`)
	if err != nil {
		return fmt.Errorf("clearing stores: %w", err)
	}

	return nil
}
