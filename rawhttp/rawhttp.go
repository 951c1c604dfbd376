// Package rawhttp serializes HTTP responses into raw byte slices and rebuilds
// them again. The asset cache persists whole responses as bytes so a cache hit
// can reproduce the original response without keeping any live connection state.
package rawhttp

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"

	"github.com/andybalholm/brotli"
)

// DecodeResponse decompresses the response body in place when the response carries
// a gzip or brotli Content-Encoding. The Content-Length header and field are updated
// to the decoded size and the Content-Encoding header is removed, so the response can
// be stored and replayed without the client needing to undo the transfer encoding.
// Unknown encodings are left untouched.
func DecodeResponse(res *http.Response) error {
	if res.Header.Get("Content-Encoding") == "" || res.Body == nil {
		return nil
	}

	switch res.Header.Get("Content-Encoding") {
	case "gzip":
		defer res.Body.Close()

		gzipReader, err := gzip.NewReader(res.Body)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}

		defer gzipReader.Close()

		decompressedBody, err := io.ReadAll(gzipReader)
		if err != nil {
			return fmt.Errorf("reading gzip content: %w", err)
		}

		res.Body = io.NopCloser(bytes.NewReader(decompressedBody))
		res.ContentLength = int64(len(decompressedBody))
		res.Header.Set("Content-Length", fmt.Sprintf("%d", len(decompressedBody)))
		res.Header.Del("Content-Encoding")
	case "br":
		defer res.Body.Close()

		brotliReader := brotli.NewReader(res.Body)

		decompressedBody, err := io.ReadAll(brotliReader)
		if err != nil {
			return fmt.Errorf("reading brotli content : %w", err)
		}

		res.Body = io.NopCloser(bytes.NewReader(decompressedBody))
		res.ContentLength = int64(len(decompressedBody))
		res.Header.Set("Content-Length", fmt.Sprintf("%d", len(decompressedBody)))
		res.Header.Del("Content-Encoding")
	}
	return nil
}

// DumpResponse will take a *http.Response, dump the raw response and reset the body so it can be consumed.
// Returns the full dump and an error.
func DumpResponse(res *http.Response) (rawDump []byte, err error) {
	responseDump, err := httputil.DumpResponse(res, false)
	if err != nil {
		return []byte{}, fmt.Errorf("dumping response : %w", err)
	}

	bodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		return []byte{}, fmt.Errorf("reading response body: %w", err)
	}
	res.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	fullDump := append(responseDump, bodyBytes...)
	return fullDump, nil
}

// RecalculateContentLength takes a raw response and updates the content-length to match the body length
func RecalculateContentLength(raw []byte) (updated []byte, err error) {
	normalized := bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))
	parts := bytes.SplitN(normalized, []byte("\n\n"), 2)
	if len(parts) == 2 {
		headers := parts[0]
		body := parts[1]

		headerLines := bytes.Split(headers, []byte("\n"))
		newHeaders := make([][]byte, 0, len(headerLines)+1)
		for _, line := range headerLines {
			if !bytes.HasPrefix(bytes.ToLower(line), []byte("content-length:")) {
				newHeaders = append(newHeaders, line)
			}
		}
		newContentLength := fmt.Sprintf("Content-Length: %d", len(body))
		if len(body) > 0 {
			newHeaders = append(newHeaders, []byte(newContentLength))
		}

		updatedHeaders := bytes.Join(newHeaders, []byte("\r\n"))
		// Reconstruct response with correct Content-Length
		updated := append(updatedHeaders, []byte("\r\n\r\n")...)
		updated = append(updated, body...)
		return updated, nil
	}
	return []byte{}, fmt.Errorf("malformed string : %s", normalized)
}

// RebuildResponse creates a new *http.Response from a raw response slice
func RebuildResponse(raw []byte, req *http.Request) (res *http.Response, err error) {
	updated, err := RecalculateContentLength(raw)
	if err != nil {
		return nil, fmt.Errorf("recalculating content length : %w", err)
	}
	res, err = http.ReadResponse(bufio.NewReader(bytes.NewReader(updated)), req)
	if err != nil {
		return nil, fmt.Errorf("reading raw response %s : %w", raw, err)
	}
	return res, nil
}
