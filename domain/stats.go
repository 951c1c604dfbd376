package domain

// StatsRepository defines the interface for retrieving statistics about the cached state.
type StatsRepository interface {
	// CountAssets returns the number of assets held by the named store.
	CountAssets(store string) (int, error)
	// CountAllAssets returns the total number of assets across every store.
	CountAllAssets() (int, error)
	// CountStores returns the number of existing stores.
	CountStores() (int, error)
}
