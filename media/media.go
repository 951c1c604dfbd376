// Package media uploads listing images to the hosted media service using
// unsigned upload presets. Uploads are validated locally (size and format)
// before any network call, and a failed preset falls through to the next one
// in a fixed order until a preset succeeds or the list is exhausted.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/nfnt/resize"
)

var (
	// ErrUploadPreset is returned when every configured preset was attempted and
	// all of them failed. The individual preset failures are joined behind it.
	ErrUploadPreset = errors.New("all upload presets failed")

	// ErrFileTooLarge is returned when the upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file exceeds the upload size limit")

	// ErrUnsupportedFormat is returned when the upload is not an accepted image format.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// DefaultMaxBytes caps uploads at 10 MiB, matching the media service's
// unsigned upload limit.
const DefaultMaxBytes = 10 << 20

// maxDimension is the bound a JPEG or PNG is downscaled to before upload.
const maxDimension = 1920

// allowedFormats is the accepted upload MIME set. WebP passes through
// unresized since the stdlib image codecs cannot re-encode it.
var allowedFormats = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// Upload is the media service's response to a successful upload.
type Upload struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Format    string `json:"format"`
	Bytes     int    `json:"bytes"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Uploader posts images to the media service endpoint.
type Uploader struct {
	URL      string   // unsigned upload endpoint
	Presets  []string // ordered preset list, primary first
	Folder   string   // destination folder
	MaxBytes int64    // per-file size limit
	Client   *http.Client
}

// NewUploader creates an uploader with the default size limit and HTTP client.
func NewUploader(uploadURL string, presets []string, folder string) (*Uploader, error) {
	if uploadURL == "" {
		return nil, errors.New("upload url must not be empty")
	}
	if len(presets) == 0 {
		return nil, errors.New("at least one upload preset is required")
	}
	return &Uploader{
		URL:      uploadURL,
		Presets:  presets,
		Folder:   folder,
		MaxBytes: DefaultMaxBytes,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Validate checks the upload against the size limit and accepted formats.
// It returns the detected MIME type for accepted files.
func (uploader *Uploader) Validate(data []byte) (string, error) {
	if int64(len(data)) > uploader.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooLarge, len(data))
	}
	detected := mimetype.Detect(data).String()
	if !allowedFormats[detected] {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, detected)
	}
	return detected, nil
}

// Prepare validates the upload and downscales oversized JPEG/PNG images so the
// stored rendition stays within the display bound.
func (uploader *Uploader) Prepare(data []byte) ([]byte, error) {
	detected, err := uploader.Validate(data)
	if err != nil {
		return nil, err
	}
	if detected != "image/jpeg" && detected != "image/png" {
		return data, nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Accept the file as-is, the media service re-encodes on its side
		return data, nil
	}

	bounds := img.Bounds()
	if bounds.Dx() <= maxDimension && bounds.Dy() <= maxDimension {
		return data, nil
	}

	scaled := resize.Thumbnail(maxDimension, maxDimension, img, resize.Lanczos3)
	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, scaled)
	default:
		err = jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		return nil, fmt.Errorf("re-encoding scaled image : %w", err)
	}
	return buf.Bytes(), nil
}

// UploadImage validates, prepares, and uploads an image. Presets are attempted
// in order and the first success wins; when every preset fails the individual
// failures are joined behind ErrUploadPreset.
func (uploader *Uploader) UploadImage(ctx context.Context, filename string, data []byte) (*Upload, error) {
	prepared, err := uploader.Prepare(data)
	if err != nil {
		return nil, err
	}

	failures := make([]error, 0, len(uploader.Presets))
	for _, preset := range uploader.Presets {
		upload, err := uploader.post(ctx, filename, prepared, preset)
		if err == nil {
			return upload, nil
		}
		failures = append(failures, fmt.Errorf("preset %s : %w", preset, err))
	}
	return nil, fmt.Errorf("%w: %w", ErrUploadPreset, errors.Join(failures...))
}

// post performs a single multipart upload attempt with one preset.
func (uploader *Uploader) post(ctx context.Context, filename string, data []byte, preset string) (*Upload, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart file part : %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("writing multipart file part : %w", err)
	}
	if err := writer.WriteField("upload_preset", preset); err != nil {
		return nil, fmt.Errorf("writing upload_preset field : %w", err)
	}
	if uploader.Folder != "" {
		if err := writer.WriteField("folder", uploader.Folder); err != nil {
			return nil, fmt.Errorf("writing folder field : %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("closing multipart writer : %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploader.URL, &body)
	if err != nil {
		return nil, fmt.Errorf("building upload request : %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := uploader.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting upload : %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		message, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return nil, fmt.Errorf("upload rejected with status %s : %s", res.Status, message)
	}

	var upload Upload
	if err := json.NewDecoder(res.Body).Decode(&upload); err != nil {
		return nil, fmt.Errorf("decoding upload response : %w", err)
	}
	return &upload, nil
}
