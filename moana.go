// Package moana provides the offline asset cache for the Moana Rentals site.
// It runs as an intercepting HTTP layer in front of the site origin, owns one or
// more named cache stores keyed by a version tag, and persists cached responses
// in a SQLite database. It is designed to be decoupled from any UI and exposes
// hooks and a command channel for embedding applications.
//
// The core functionality includes:
//   - Install-time precaching of a declared asset manifest (all-or-nothing)
//   - Version rollover: activation deletes every store of a prior version
//   - Read-through, write-on-miss caching of image requests
//   - Cache-first serving of precached shell assets
//   - A command channel accepting a clear-all-caches command with an acknowledgement reply
//   - SQLite storage and event logging through a DB write channel
package moana

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/martian"
	"github.com/google/martian/fifo"
	"github.com/google/uuid"
	"github.com/moanarentals/moana/domain"
	"github.com/moanarentals/moana/rawhttp"
)

// ErrCacheInstall is returned when any precache asset fails to fetch or store during install.
// The whole install attempt fails so that a half-broken shell is never served.
var ErrCacheInstall = errors.New("precache install failed")

// Repository defines the methods consumed by the controller to interact with the SQLite backend.
// It provides an abstraction layer for all database operations including cache store management,
// asset storage, logging, and statistics.
type Repository interface {
	domain.AssetRepository
	domain.LogRepository
	domain.StatsRepository
	Close() error
}

// ControllerItem is an interface for items that can be written to the database through the DBWriteChannel.
// This interface is implemented by the domain Log type.
type ControllerItem interface {
	// GetType returns a string identifier for the type of controller item.
	GetType() string
}

// logItem wraps a domain.Log so it can travel on the DB write channel.
type logItem struct {
	log domain.Log
}

func (item logItem) GetType() string {
	return "log"
}

// CacheStats summarizes the current cache state for embedders and the admin API.
type CacheStats struct {
	Hits     int64          `json:"hits"`     // Requests served from a store since startup
	Misses   int64          `json:"misses"`   // Requests that went to the network since startup
	Stores   int            `json:"stores"`   // Number of existing stores
	Assets   int            `json:"assets"`   // Total assets across all stores
	PerStore map[string]int `json:"perStore"` // Asset count per store name
}

// Controller is the main struct that orchestrates the asset cache: install-time precaching,
// version activation, fetch interception, command handling, and database operations.
type Controller struct {
	martianProxy   *martian.Proxy                       // The underlying martian.Proxy
	ConfigDir      string                               // The configuration directory (defaults to the moana folder under the user configuration directory)
	Config         *Config                              // The controller configuration
	Repo           Repository                           // DB Repository Interface
	Modifiers      *fifo.Group                          // Modifier group pipeline
	DBWriteChannel chan ControllerItem                  // DB Write Channel
	Commands       chan Command                         // Host-to-controller command channel
	OnLog          func(log domain.Log) error           // Function ran on each log - used by embedding applications
	OnAsset        func(asset domain.CachedAsset) error // Function ran whenever an asset is written to a store
	Version        string                               // Cache version tag, encoded into the store names
	Origin         *url.URL                             // Site origin precache paths are resolved against
	Manifest       []string                             // Declared precache manifest (root-relative paths)
	OfflinePath    string                               // Optional precached offline fallback page
	Addr           string                               // IP Address of the listener
	Port           string                               // Port of the listener
	Client         *http.Client                         // HTTP Client used for precache fetches

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a new Controller instance with default configuration and applies any provided options.
// It initializes the underlying martian proxy, database write channel, command channel, and HTTP client.
//
// Parameters:
//   - options: Variadic list of option functions to configure the controller
//
// Returns:
//   - *Controller: Configured controller instance
//   - error: Configuration error if any option fails
func New(options ...func(*Controller) error) (*Controller, error) {
	controller := &Controller{
		martianProxy:   martian.NewProxy(),
		Modifiers:      fifo.NewGroup(),
		DBWriteChannel: make(chan ControllerItem, 10),
		Commands:       make(chan Command, 10),
		Client:         &http.Client{Timeout: 30 * time.Second},
		Manifest:       make([]string, 0),
	}
	err := controller.WithOptions(options...)
	if err != nil {
		return nil, err
	}
	return controller, nil
}

// AddRequestModifier accepts RequestModifierFunc and wraps it in a reqAdapter
func (controller *Controller) AddRequestModifier(modifier RequestModifierFunc) {
	adapter := &reqAdapter{controller: controller, modifier: modifier}
	controller.Modifiers.AddRequestModifier(adapter)
}

// AddResponseModifier accepts ResponseModifierFunc and wraps it in a resAdapter
func (controller *Controller) AddResponseModifier(modifier ResponseModifierFunc) {
	adapter := &resAdapter{controller: controller, modifier: modifier}
	controller.Modifiers.AddResponseModifier(adapter)
}

// StaticStore returns the name of the static asset store for the current version.
func (controller *Controller) StaticStore() string {
	return fmt.Sprintf("moana-static-%s", controller.Version)
}

// RuntimeStore returns the name of the dynamic/runtime store for the current version.
func (controller *Controller) RuntimeStore() string {
	return fmt.Sprintf("moana-runtime-%s", controller.Version)
}

// Install precaches every manifest URL into the static store for the current version.
// The whole step is atomic: every asset is fetched first and the batch is written in a
// single transaction, so one failed asset aborts the entire install and leaves the
// store unpopulated. This is a deliberate policy so the shell is either fully known
// or absent, never partial.
func (controller *Controller) Install(ctx context.Context) error {
	store := controller.StaticStore()

	assets := make([]*domain.CachedAsset, 0, len(controller.Manifest))
	for _, path := range controller.Manifest {
		asset, err := controller.fetchAsset(ctx, path, store)
		if err != nil {
			controller.WriteLog("ERROR", fmt.Sprintf("Precaching %s failed : %s", path, err.Error()))
			return fmt.Errorf("%w: fetching %s : %w", ErrCacheInstall, path, err)
		}
		assets = append(assets, asset)
	}

	if err := controller.Repo.PutAssets(store, assets); err != nil {
		return fmt.Errorf("%w: storing manifest : %w", ErrCacheInstall, err)
	}

	controller.WriteLog("INFO", fmt.Sprintf("Installed %d precache assets into %s", len(assets), store))
	return nil
}

// Activate reclaims space from prior versions: it enumerates all existing store names
// and deletes every one whose name does not match the current version's store names.
// It also makes sure both current stores exist so runtime writes never race a missing store.
func (controller *Controller) Activate() error {
	current := map[string]bool{
		controller.StaticStore():  true,
		controller.RuntimeStore(): true,
	}

	names, err := controller.Repo.Stores()
	if err != nil {
		return fmt.Errorf("enumerating stores : %w", err)
	}

	for _, name := range names {
		if !current[name] {
			if err := controller.Repo.DeleteStore(name); err != nil {
				return fmt.Errorf("deleting stale store %s : %w", name, err)
			}
			controller.WriteLog("INFO", fmt.Sprintf("Deleted stale store %s", name))
		}
	}

	for name := range current {
		if err := controller.Repo.CreateStore(name); err != nil {
			return fmt.Errorf("creating store %s : %w", name, err)
		}
	}

	return nil
}

// fetchAsset fetches a root-relative path from the configured origin and converts the
// response into a cacheable asset. Precache fetches bypass intermediary caches.
func (controller *Controller) fetchAsset(ctx context.Context, path string, store string) (*domain.CachedAsset, error) {
	if controller.Origin == nil {
		return nil, errors.New("no origin configured")
	}

	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest path %s : %w", path, err)
	}
	target := controller.Origin.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building precache request : %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	res, err := controller.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s : %w", target, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s : unexpected status %s", target, res.Status)
	}

	asset, err := NewCachedAsset(req, res, store)
	if err != nil {
		return nil, err
	}
	asset.Metadata["precache"] = true
	return asset, nil
}

// parseContentType tries to parse the content type header and returns an error if parsing fails
func parseContentType(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("empty content type header")
	}

	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return "", fmt.Errorf("parsing content type '%s': %w", header, err)
	}

	return strings.ToLower(mediaType), nil
}

// NewCachedAsset converts an HTTP response into a cacheable asset. The response body
// is decoded (gzip/brotli) before serialization so the stored copy can be replayed to
// any client, and the body is reset so the caller can still consume it.
func NewCachedAsset(req *http.Request, res *http.Response, store string) (*domain.CachedAsset, error) {
	if err := rawhttp.DecodeResponse(res); err != nil {
		return nil, fmt.Errorf("decoding response body : %w", err)
	}

	raw, err := rawhttp.DumpResponse(res)
	if err != nil {
		return nil, fmt.Errorf("dumping response for %s : %w", req.URL, err)
	}

	contentType := "application/octet-stream"
	if ct := res.Header.Get("Content-Type"); ct != "" {
		if parsedType, err := parseContentType(ct); err == nil {
			contentType = parsedType
		} else {
			log.Printf("warning: %v, using default", err)
		}
	} else {
		bodyBytes, err := io.ReadAll(res.Body)
		if err != nil {
			return nil, fmt.Errorf("reading response body for sniffing: %w", err)
		}
		res.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		if len(bodyBytes) > 0 {
			contentType = mimetype.Detect(bodyBytes).String()
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generating asset id : %w", err)
	}

	return &domain.CachedAsset{
		ID:          id,
		Store:       store,
		URL:         CanonicalURL(req),
		StatusCode:  res.StatusCode,
		ContentType: contentType,
		Length:      res.Header.Get("Content-Length"),
		Raw:         domain.RawField(raw),
		Metadata:    make(map[string]any),
		FetchedAt:   time.Now(),
	}, nil
}

// WriteToDB drains the DB write channel, persisting each item. It runs for the
// lifetime of the controller once Serve is called.
func (controller *Controller) WriteToDB() {
	for item := range controller.DBWriteChannel {
		switch castItem := item.(type) {
		case logItem:
			err := controller.Repo.InsertLog(&castItem.log)
			if err != nil {
				log.Println(err)
			}
			if controller.OnLog != nil {
				controller.OnLog(castItem.log)
			}
		default:
			log.Print(castItem)
		}
	}
}

// WriteLog creates a log entry and queues it on the DB write channel.
func (controller *Controller) WriteLog(level string, message string, options ...func(log *domain.Log) error) error {
	switch level {
	case "DEBUG":
	case "INFO":
	case "WARN":
	case "ERROR":
	case "FATAL":
	default:
		return fmt.Errorf("level should be either: debug, info, warn, error, fatal")
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating new uuid : %w", err)
	}
	entry := domain.Log{
		ID:        id,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Context:   make(map[string]any),
	}
	for _, option := range options {
		err := option(&entry)
		if err != nil {
			return fmt.Errorf("applying log option : %w", err)
		}
	}
	controller.DBWriteChannel <- logItem{log: entry}
	return nil
}

// Stats returns hit/miss counters and the persisted store/asset counts.
func (controller *Controller) Stats() (CacheStats, error) {
	stats := CacheStats{
		Hits:     controller.hits.Load(),
		Misses:   controller.misses.Load(),
		PerStore: make(map[string]int),
	}

	stores, err := controller.Repo.CountStores()
	if err != nil {
		return stats, fmt.Errorf("counting stores : %w", err)
	}
	stats.Stores = stores

	assets, err := controller.Repo.CountAllAssets()
	if err != nil {
		return stats, fmt.Errorf("counting assets : %w", err)
	}
	stats.Assets = assets

	names, err := controller.Repo.Stores()
	if err != nil {
		return stats, fmt.Errorf("enumerating stores : %w", err)
	}
	for _, name := range names {
		count, err := controller.Repo.CountAssets(name)
		if err != nil {
			return stats, fmt.Errorf("counting assets for %s : %w", name, err)
		}
		stats.PerStore[name] = count
	}

	return stats, nil
}

// Logs returns every persisted log entry, for the admin surface.
func (controller *Controller) Logs() ([]*domain.Log, error) {
	logs, err := controller.Repo.GetLogs()
	if err != nil {
		return nil, fmt.Errorf("fetching logs : %w", err)
	}
	return logs, nil
}

// GetListener opens a TCP listener on the given address and port and records the
// listener coordinates used by the loop-prevention modifier.
func (controller *Controller) GetListener(address string, port string) (net.Listener, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%s", address, port))
	if err != nil {
		return listener, fmt.Errorf("setting up listener on address:port %s:%s", address, port)
	}
	controller.Addr = address
	controller.Port = port
	controller.WriteLog("INFO", fmt.Sprintf("Moana cache controller started on %s:%s", address, port))
	return listener, nil
}

// Serve starts the DB writer, installs the caching round tripper on the martian proxy,
// and serves intercepted traffic on the listener until Close is called.
func (controller *Controller) Serve(listener net.Listener) error {
	go controller.WriteToDB()

	controller.martianProxy.SetRoundTripper(
		&cacheRoundTripper{
			controller: controller,
			base:       http.DefaultTransport,
		},
	)
	return controller.martianProxy.Serve(listener)
}

// Close shuts down the underlying martian proxy.
func (controller *Controller) Close() {
	controller.martianProxy.Close()
}
