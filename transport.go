package moana

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/moanarentals/moana/core"
	"github.com/moanarentals/moana/domain"
	"github.com/moanarentals/moana/rawhttp"
)

// imageExtensions is the fixed set of file extensions classified as image requests
// when the requester does not declare a destination type.
var imageExtensions = map[string]bool{
	".avif": true,
	".bmp":  true,
	".gif":  true,
	".ico":  true,
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".svg":  true,
	".webp": true,
}

// IsImageRequest classifies a request as an image fetch, either by the declared
// destination type (Sec-Fetch-Dest) or by file-extension match against a fixed set.
func IsImageRequest(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Dest") == "image" {
		return true
	}
	return imageExtensions[strings.ToLower(path.Ext(req.URL.Path))]
}

// CanonicalURL returns the absolute URL a request is cached under. The fragment is
// dropped and missing host/scheme are filled in from the request so the same resource
// always maps to the same cache key.
func CanonicalURL(req *http.Request) string {
	u := *req.URL
	u.Fragment = ""
	if u.Host == "" {
		u.Host = req.Host
	}
	if u.Scheme == "" {
		if req.TLS != nil {
			u.Scheme = "https"
		} else {
			u.Scheme = "http"
		}
	}
	return u.String()
}

// isNavigation reports whether a request looks like a page navigation, which is the
// only class of request the precached offline page may substitute for.
func isNavigation(req *http.Request) bool {
	if req.Header.Get("Sec-Fetch-Mode") == "navigate" {
		return true
	}
	return strings.Contains(req.Header.Get("Accept"), "text/html")
}

// cacheRoundTripper implements the fetch-interception policy of the controller:
//   - non-GET and non-HTTP(S) requests pass straight to the network
//   - image requests are served read-through from the runtime store, with a copy of
//     every successful network response written back on a miss
//   - all other requests are served from any store when a match exists, otherwise
//     fetched from the network without an implicit cache write
//   - a failed network fetch for a navigation may fall back to a precached offline page
type cacheRoundTripper struct {
	controller *Controller
	base       http.RoundTripper
}

// logOptions carries everything the setup modifier attached to the request
// into the log entry: the request ID, the request time, the martian session,
// and any metadata other modifiers recorded.
func logOptions(req *http.Request) []func(log *domain.Log) error {
	options := make([]func(log *domain.Log) error, 0, 2)
	if id, ok := RequestIDFromContext(req.Context()); ok {
		options = append(options, core.LogWithReqResID(id))
	}

	logContext := make(map[string]any)
	if requestTime, ok := RequestTimeFromContext(req.Context()); ok {
		logContext["requestTime"] = requestTime
	}
	if session, ok := SessionFromContext(req.Context()); ok && session != nil {
		logContext["session"] = session.ID()
	}
	if metadata, ok := MetadataFromContext(req.Context()); ok {
		for key, value := range metadata {
			logContext[key] = value
		}
	}
	if len(logContext) > 0 {
		options = append(options, core.LogWithContext(logContext))
	}
	return options
}

func (c *cacheRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	controller := c.controller

	// Non-GET requests and non-HTTP-scheme requests are never intercepted
	if req.Method != http.MethodGet || (req.URL.Scheme != "http" && req.URL.Scheme != "https") {
		return c.base.RoundTrip(req)
	}

	key := CanonicalURL(req)

	if IsImageRequest(req) {
		asset, err := controller.Repo.GetAsset(controller.RuntimeStore(), key)
		if err == nil {
			controller.hits.Add(1)
			return controller.serveAsset(asset, req)
		}
		if !errors.Is(err, domain.ErrAssetNotFound) {
			controller.WriteLog("ERROR", fmt.Sprintf("Looking up %s : %s", key, err.Error()), logOptions(req)...)
		}

		controller.misses.Add(1)
		res, err := c.base.RoundTrip(req)
		if err != nil {
			return res, err
		}

		if res.StatusCode == http.StatusOK {
			if err := controller.storeAsset(req, res); err != nil {
				controller.WriteLog("ERROR", fmt.Sprintf("Caching %s : %s", key, err.Error()), logOptions(req)...)
			}
		}
		return res, nil
	}

	asset, err := controller.Repo.MatchAsset(key)
	if err == nil {
		controller.hits.Add(1)
		return controller.serveAsset(asset, req)
	}
	if !errors.Is(err, domain.ErrAssetNotFound) {
		controller.WriteLog("ERROR", fmt.Sprintf("Matching %s : %s", key, err.Error()), logOptions(req)...)
	}

	controller.misses.Add(1)
	res, err := c.base.RoundTrip(req)
	if err != nil {
		if offline := controller.offlineFallback(req); offline != nil {
			return offline, nil
		}
		return res, err
	}
	return res, nil
}

// serveAsset rebuilds the stored response for the given request.
func (controller *Controller) serveAsset(asset *domain.CachedAsset, req *http.Request) (*http.Response, error) {
	res, err := rawhttp.RebuildResponse(asset.Raw, req)
	if err != nil {
		return nil, fmt.Errorf("rebuilding cached response for %s : %w", asset.URL, err)
	}
	res.Header.Set("X-Moana-Cache", "HIT")
	return res, nil
}

// storeAsset writes a copy of a successful network response into the runtime store
// and resets the response body so it can still be consumed by the caller.
func (controller *Controller) storeAsset(req *http.Request, res *http.Response) error {
	asset, err := NewCachedAsset(req, res, controller.RuntimeStore())
	if err != nil {
		return err
	}
	if err := controller.Repo.PutAsset(controller.RuntimeStore(), asset); err != nil {
		return err
	}
	if controller.OnAsset != nil {
		if err := controller.OnAsset(*asset); err != nil {
			controller.WriteLog("ERROR", fmt.Sprintf("Asset handler for %s : %s", asset.URL, err.Error()))
		}
	}
	return nil
}

// offlineFallback returns the precached offline page for a failed navigation fetch,
// or nil when no offline page was declared or precached.
func (controller *Controller) offlineFallback(req *http.Request) *http.Response {
	if controller.OfflinePath == "" || controller.Origin == nil || !isNavigation(req) {
		return nil
	}

	ref, err := url.Parse(controller.OfflinePath)
	if err != nil {
		return nil
	}
	target := controller.Origin.ResolveReference(ref)

	asset, err := controller.Repo.GetAsset(controller.StaticStore(), target.String())
	if err != nil {
		return nil
	}

	res, err := rawhttp.RebuildResponse(asset.Raw, req)
	if err != nil {
		return nil
	}
	res.Header.Set("X-Moana-Cache", "OFFLINE")
	return res
}
