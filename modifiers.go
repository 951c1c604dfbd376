package moana

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/martian"
	"github.com/google/uuid"
)

var (
	// ErrSkipPipeline is returned to stop the modifier pipeline for a request.
	// The request will still continue but won't be processed by any future modifiers
	ErrSkipPipeline = errors.New("stop processing item")

	// ErrMetadataNotFound is returned when metadata is invalid or missing
	ErrMetadataNotFound = errors.New("invalid or missing metadata")
)

// RequestModifierFunc is a signature for HTTP request modifiers, it takes in the request and *Controller
type RequestModifierFunc func(controller *Controller, req *http.Request) error

// ResponseModifierFunc is a signature for HTTP response modifiers, it takes in the response and *Controller
type ResponseModifierFunc func(controller *Controller, res *http.Response) error

// reqAdapter adapts the `RequestModifierFunc` and implements the `martian.RequestModifier` interface.
// This allows custom modifiers to be added with access to the *Controller while satisfying the `martian.RequestModifier` interface
type reqAdapter struct {
	controller *Controller
	modifier   RequestModifierFunc
}

// ModifyRequest implements the `martian.RequestModifier` interface and allows the modifier to access the *Controller
func (adapter *reqAdapter) ModifyRequest(req *http.Request) error {
	return adapter.modifier(adapter.controller, req)
}

// resAdapter adapts the `ResponseModifierFunc` and implements the `martian.ResponseModifier` interface.
// This allows custom modifiers to be added with access to the *Controller while satisfying the `martian.ResponseModifier` interface
type resAdapter struct {
	controller *Controller
	modifier   ResponseModifierFunc
}

// ModifyResponse implements the `martian.ResponseModifier` interface and allows the modifier to access the *Controller
func (adapter *resAdapter) ModifyResponse(res *http.Response) error {
	return adapter.modifier(adapter.controller, res)
}

// SkipConnectRequestModifier will skip processing for CONNECT requests
func SkipConnectRequestModifier(controller *Controller, req *http.Request) error {
	if req.Method == http.MethodConnect {
		return ErrSkipPipeline
	}
	return nil
}

// SetupRequestModifier initializes the request context. It will generate and set the request ID,
// set the request time, initialize and set the metadata map, and store the Martian session.
func SetupRequestModifier(controller *Controller, req *http.Request) error {
	*req = *ContextWithRequestTime(req, time.Now())
	metadata := make(Metadata)

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating uuid for request : %w", err)
	}

	*req = *ContextWithRequestID(req, id)
	*req = *ContextWithMetadata(req, metadata)

	ctx := martian.NewContext(req)
	session := ctx.Session()
	*req = *ContextWithSession(req, session)
	return nil
}

// PreventLoopModifier skips processing a request if it is made to the controller's active
// listener address and port, preventing an infinite loop.
// It will normalize localhost & 127.0.0.1 when checking the host and port
func PreventLoopModifier(controller *Controller, req *http.Request) error {
	host, port, err := net.SplitHostPort(req.Host)
	if err != nil {
		// fallback to req.Host
		host = req.Host

		// if net.SplitHostPort fails the fallback is either 443 or 80 depending on the URL scheme or req.TLS
		if req.URL.Scheme == "https" || req.TLS != nil {
			port = "443"
		} else {
			port = "80"
		}
	}

	if host == "localhost" {
		host = "127.0.0.1"
	}

	listenerAddr := controller.Addr
	if listenerAddr == "localhost" {
		listenerAddr = "127.0.0.1"
	}

	if host == listenerAddr && port == controller.Port {
		martian.NewContext(req).SkipRoundTrip()
		return ErrSkipPipeline
	}
	return nil
}
