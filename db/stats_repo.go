package db

import (
	"fmt"

	"github.com/moanarentals/moana/domain"
)

var _ domain.StatsRepository = (*Repository)(nil)

// CountAssets returns the number of assets held by the named store.
func (repo *Repository) CountAssets(store string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM asset WHERE store = ?`

	err := repo.dbConn.Get(&count, query, store)
	if err != nil {
		return 0, fmt.Errorf("getting asset count for store %s: %w", store, err)
	}

	return count, nil
}

// CountAllAssets returns the total number of assets across every store.
func (repo *Repository) CountAllAssets() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM asset`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting total asset count: %w", err)
	}

	return count, nil
}

// CountStores returns the number of existing stores.
func (repo *Repository) CountStores() (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM store`

	err := repo.dbConn.Get(&count, query)
	if err != nil {
		return 0, fmt.Errorf("getting store count: %w", err)
	}

	return count, nil
}
