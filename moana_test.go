package moana

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/moanarentals/moana/db"
	"github.com/moanarentals/moana/domain"
)

func setupTestController(t *testing.T, options ...func(*Controller) error) (*Controller, func()) {
	t.Helper()

	tempFile, err := os.CreateTemp(t.TempDir(), "test_*.db")
	if err != nil {
		t.Fatalf("os.CreateTemp() failed: %v", err)
	}
	tempFile.Close()

	dbConn, err := db.New(tempFile.Name())
	if err != nil {
		t.Fatalf("db.New() failed: %v", err)
	}
	repo := db.NewCacheRepo(dbConn)

	defaults := []func(*Controller) error{
		WithRepo(repo),
		WithVersion("v1"),
	}
	controller, err := New(append(defaults, options...)...)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	teardown := func() {
		repo.Close()
		os.Remove(tempFile.Name())
	}

	return controller, teardown
}

func cachedAsset(t *testing.T, url string) *domain.CachedAsset {
	t.Helper()

	id, err := uuid.NewV7()
	if err != nil {
		t.Fatalf("uuid.NewV7() failed: %v", err)
	}

	body := "cached"
	return &domain.CachedAsset{
		ID:          id,
		URL:         url,
		StatusCode:  200,
		ContentType: "text/plain",
		Raw:         domain.RawField(fmt.Sprintf("HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: %d\r\n\r\n%s", len(body), body)),
		Metadata:    map[string]any{},
		FetchedAt:   time.Now(),
	}
}

func testOrigin(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>home</html>"))
	})
	mux.HandleFunc("/offline.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html>offline</html>"))
	})
	mux.HandleFunc("/logo.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	return httptest.NewServer(mux)
}

func TestController_StoreNames(t *testing.T) {
	controller, teardown := setupTestController(t)
	defer teardown()

	if got := controller.StaticStore(); got != "moana-static-v1" {
		t.Fatalf("wanted: moana-static-v1\ngot: %s", got)
	}
	if got := controller.RuntimeStore(); got != "moana-runtime-v1" {
		t.Fatalf("wanted: moana-runtime-v1\ngot: %s", got)
	}
}

func TestController_Install(t *testing.T) {
	t.Run("should precache the whole manifest", func(t *testing.T) {
		origin := testOrigin(t)
		defer origin.Close()

		controller, teardown := setupTestController(t,
			WithOrigin(origin.URL),
			WithManifest("/", "/offline.html", "/logo.png"),
		)
		defer teardown()

		if err := controller.Install(context.Background()); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		count, err := controller.Repo.CountAssets(controller.StaticStore())
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if count != 3 {
			t.Fatalf("wanted: 3 precached assets\ngot: %d", count)
		}

		asset, err := controller.Repo.GetAsset(controller.StaticStore(), origin.URL+"/logo.png")
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if asset.ContentType != "image/png" {
			t.Fatalf("wanted content type: image/png\ngot: %s", asset.ContentType)
		}
		if asset.Metadata["precache"] != true {
			t.Fatalf("wanted the precache flag on the stored asset\ngot: %v", asset.Metadata)
		}
	})

	t.Run("one failing asset should abort the whole install", func(t *testing.T) {
		origin := testOrigin(t)
		defer origin.Close()

		controller, teardown := setupTestController(t,
			WithOrigin(origin.URL),
			WithManifest("/", "/does-not-exist.css"),
		)
		defer teardown()

		err := controller.Install(context.Background())
		if !errors.Is(err, ErrCacheInstall) {
			t.Fatalf("wanted: ErrCacheInstall\ngot: %v", err)
		}

		count, err := controller.Repo.CountAssets(controller.StaticStore())
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if count != 0 {
			t.Fatalf("wanted: 0 assets after a failed install\ngot: %d", count)
		}
	})

	t.Run("should fail without an origin", func(t *testing.T) {
		controller, teardown := setupTestController(t, WithManifest("/"))
		defer teardown()

		err := controller.Install(context.Background())
		if !errors.Is(err, ErrCacheInstall) {
			t.Fatalf("wanted: ErrCacheInstall\ngot: %v", err)
		}
	})
}

func TestController_Activate(t *testing.T) {
	t.Run("should delete every store of a prior version", func(t *testing.T) {
		controller, teardown := setupTestController(t)
		defer teardown()

		for _, name := range []string{"moana-static-v0", "moana-runtime-v0", "moana-static-v1"} {
			if err := controller.Repo.CreateStore(name); err != nil {
				t.Fatalf("wanted: nil\ngot: %v", err)
			}
		}

		if err := controller.Activate(); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		names, err := controller.Repo.Stores()
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		want := map[string]bool{"moana-static-v1": true, "moana-runtime-v1": true}
		if len(names) != len(want) {
			t.Fatalf("wanted: %d stores\ngot: %v", len(want), names)
		}
		for _, name := range names {
			if !want[name] {
				t.Fatalf("wanted only current stores\ngot: %v", names)
			}
		}
	})

	t.Run("should create the current stores when missing", func(t *testing.T) {
		controller, teardown := setupTestController(t)
		defer teardown()

		if err := controller.Activate(); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		count, err := controller.Repo.CountStores()
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if count != 2 {
			t.Fatalf("wanted: 2 stores\ngot: %d", count)
		}
	})
}

func TestController_Stats(t *testing.T) {
	controller, teardown := setupTestController(t)
	defer teardown()

	if err := controller.Activate(); err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}

	stats, err := controller.Stats()
	if err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}
	if stats.Stores != 2 {
		t.Fatalf("wanted: 2 stores\ngot: %d", stats.Stores)
	}
	if stats.Assets != 0 {
		t.Fatalf("wanted: 0 assets\ngot: %d", stats.Assets)
	}
	if stats.Hits != 0 || stats.Misses != 0 {
		t.Fatalf("wanted fresh counters\ngot: hits=%d misses=%d", stats.Hits, stats.Misses)
	}
}

func TestController_Logs(t *testing.T) {
	controller, teardown := setupTestController(t)
	defer teardown()

	if err := controller.WriteLog("INFO", "installed"); err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}

	item := <-controller.DBWriteChannel
	entry, ok := item.(logItem)
	if !ok {
		t.Fatalf("wanted a logItem\ngot: %T", item)
	}
	if err := controller.Repo.InsertLog(&entry.log); err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}

	logs, err := controller.Logs()
	if err != nil {
		t.Fatalf("wanted: nil\ngot: %v", err)
	}
	if len(logs) != 1 || logs[0].Message != "installed" {
		t.Fatalf("wanted the persisted entry back\ngot: %+v", logs)
	}
}

func TestWriteLog(t *testing.T) {
	t.Run("should reject unknown levels", func(t *testing.T) {
		controller, teardown := setupTestController(t)
		defer teardown()

		if err := controller.WriteLog("VERBOSE", "nope"); err == nil {
			t.Fatalf("wanted: error\ngot: nil")
		}
	})

	t.Run("should queue the entry on the write channel", func(t *testing.T) {
		controller, teardown := setupTestController(t)
		defer teardown()

		if err := controller.WriteLog("INFO", "hello"); err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}

		item := <-controller.DBWriteChannel
		entry, ok := item.(logItem)
		if !ok {
			t.Fatalf("wanted a logItem\ngot: %T", item)
		}
		if entry.log.Message != "hello" {
			t.Fatalf("wanted message: hello\ngot: %s", entry.log.Message)
		}
	})
}

func TestNewCachedAsset(t *testing.T) {
	t.Run("should sniff the content type when the header is missing", func(t *testing.T) {
		origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = nil // suppress the automatic header
			w.Write([]byte("<html><body>untyped</body></html>"))
		}))
		defer origin.Close()

		req, err := http.NewRequest(http.MethodGet, origin.URL+"/untyped", nil)
		if err != nil {
			t.Fatalf("building request : %v", err)
		}
		res, err := origin.Client().Do(req)
		if err != nil {
			t.Fatalf("fetching : %v", err)
		}
		defer res.Body.Close()

		asset, err := NewCachedAsset(req, res, "moana-runtime-v1")
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if asset.ContentType == "application/octet-stream" || asset.ContentType == "" {
			t.Fatalf("wanted a sniffed html content type\ngot: %s", asset.ContentType)
		}
	})

	t.Run("should key the asset by its canonical url", func(t *testing.T) {
		origin := testOrigin(t)
		defer origin.Close()

		req, err := http.NewRequest(http.MethodGet, origin.URL+"/logo.png#section", nil)
		if err != nil {
			t.Fatalf("building request : %v", err)
		}
		res, err := origin.Client().Do(req)
		if err != nil {
			t.Fatalf("fetching : %v", err)
		}
		defer res.Body.Close()

		asset, err := NewCachedAsset(req, res, "moana-runtime-v1")
		if err != nil {
			t.Fatalf("wanted: nil\ngot: %v", err)
		}
		if asset.URL != origin.URL+"/logo.png" {
			t.Fatalf("wanted fragment-free url\ngot: %s", asset.URL)
		}
	})
}
