package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/moanarentals/moana/media"
)

// UploadImage accepts a multipart image upload, validates it, and forwards it
// to the media service through the preset fallback chain.
func (server *Server) UploadImage(c *gin.Context) {
	if server.Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "uploads are not configured"})
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file field"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, server.Uploader.MaxBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reading upload failed"})
		return
	}

	upload, err := server.Uploader.UploadImage(c.Request.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrFileTooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds the upload size limit"})
		case errors.Is(err, media.ErrUnsupportedFormat):
			c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "unsupported image format"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "uploading image failed"})
		}
		return
	}
	c.JSON(http.StatusCreated, upload)
}
