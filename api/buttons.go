package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moanarentals/moana/domain"
)

// ListActiveButtons renders only the buttons currently toggled on. This is the
// public surface the site navigation consumes.
func (server *Server) ListActiveButtons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buttons": server.Directory.ActiveButtons(c.Request.Context())})
}

// ListButtons renders every button configuration for the dashboard.
func (server *Server) ListButtons(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"buttons": server.Directory.Buttons(c.Request.Context())})
}

// CreateButton validates and persists a new button configuration.
func (server *Server) CreateButton(c *gin.Context) {
	var form domain.ButtonForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid button payload"})
		return
	}
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.Link) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "button name and link are required"})
		return
	}

	button, err := server.Directory.CreateButton(c.Request.Context(), form)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "creating button failed"})
		return
	}
	c.JSON(http.StatusCreated, button)
}

// UpdateButton merges an edited button configuration. Only the supplied
// fields change; a supplied name or link must not be blank.
func (server *Server) UpdateButton(c *gin.Context) {
	var patch domain.ButtonPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid button payload"})
		return
	}
	if (patch.Name != nil && strings.TrimSpace(*patch.Name) == "") ||
		(patch.Link != nil && strings.TrimSpace(*patch.Link) == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "button name and link must not be blank"})
		return
	}

	if err := server.Directory.UpdateButton(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "updating button failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ToggleButton flips a button's active flag.
func (server *Server) ToggleButton(c *gin.Context) {
	var body struct {
		IsActive bool `json:"isActive"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid toggle payload"})
		return
	}

	if err := server.Directory.ToggleButton(c.Request.Context(), c.Param("id"), body.IsActive); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "toggling button failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteButton removes a button configuration.
func (server *Server) DeleteButton(c *gin.Context) {
	if err := server.Directory.DeleteButton(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "deleting button failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
