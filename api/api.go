// Package api exposes the public listing surface and the admin dashboard
// surface over HTTP. Listing reads always render (empty collections on store
// failure), writes require a bearer token, and input validation for property
// and button submissions lives here rather than in the directory.
package api

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/moanarentals/moana"
	"github.com/moanarentals/moana/domain"
	"github.com/moanarentals/moana/media"
)

// Directory is the property directory surface the API consumes,
// implemented by *directory.Client.
type Directory interface {
	CreateProperty(ctx context.Context, form domain.PropertyForm) (*domain.Property, error)
	Properties(ctx context.Context) []domain.Property
	UpdateProperty(ctx context.Context, id string, patch domain.PropertyPatch) error
	DeleteProperty(ctx context.Context, id string) error

	CreateButton(ctx context.Context, form domain.ButtonForm) (*domain.ButtonConfig, error)
	Buttons(ctx context.Context) []domain.ButtonConfig
	ActiveButtons(ctx context.Context) []domain.ButtonConfig
	UpdateButton(ctx context.Context, id string, patch domain.ButtonPatch) error
	ToggleButton(ctx context.Context, id string, active bool) error
	DeleteButton(ctx context.Context, id string) error
}

// Server holds the dependencies of the HTTP surface.
type Server struct {
	Directory  Directory
	Uploader   *media.Uploader
	Controller *moana.Controller
	Secret     []byte // HMAC secret for admin bearer tokens
}

// NewServer creates a server over the given dependencies. The uploader and
// controller are optional; their routes respond 503 when absent.
func NewServer(dir Directory, uploader *media.Uploader, controller *moana.Controller, secret []byte) (*Server, error) {
	if dir == nil {
		return nil, errors.New("api server requires a directory client")
	}
	if len(secret) == 0 {
		return nil, errors.New("api server requires a signing secret")
	}
	return &Server{
		Directory:  dir,
		Uploader:   uploader,
		Controller: controller,
		Secret:     secret,
	}, nil
}

// Router builds the gin engine with the public and admin route groups.
func (server *Server) Router() *gin.Engine {
	router := gin.Default()

	public := router.Group("/api")
	{
		public.GET("/properties", server.ListProperties)
		public.GET("/buttons", server.ListActiveButtons)
	}

	admin := router.Group("/api", AuthRequired(server.Secret))
	{
		admin.POST("/properties", server.CreateProperty)
		admin.PUT("/properties/:id", server.UpdateProperty)
		admin.DELETE("/properties/:id", server.DeleteProperty)

		admin.GET("/admin/buttons", server.ListButtons)
		admin.POST("/buttons", server.CreateButton)
		admin.PUT("/buttons/:id", server.UpdateButton)
		admin.PATCH("/buttons/:id/toggle", server.ToggleButton)
		admin.DELETE("/buttons/:id", server.DeleteButton)

		admin.POST("/uploads", server.UploadImage)
		admin.POST("/cache/clear", server.ClearCache)
		admin.GET("/cache/stats", server.CacheStats)
		admin.GET("/admin/logs", server.ListLogs)
	}

	return router
}
