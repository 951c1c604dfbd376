package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/moanarentals/moana/directory"
	"github.com/moanarentals/moana/domain"
)

// ListProperties renders the property listing, optionally filtered by the
// search/price/type/bedrooms query parameters. A store failure renders an
// empty listing, never an error page.
func (server *Server) ListProperties(c *gin.Context) {
	properties := server.Directory.Properties(c.Request.Context())

	criteria := directory.Criteria{
		Search:     c.Query("search"),
		PriceRange: c.Query("price"),
		Type:       c.Query("type"),
		Bedrooms:   c.Query("bedrooms"),
	}
	c.JSON(http.StatusOK, gin.H{"properties": directory.Filter(properties, criteria)})
}

// CreateProperty validates and persists a new property submission.
func (server *Server) CreateProperty(c *gin.Context) {
	var form domain.PropertyForm
	if err := c.ShouldBindJSON(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}

	if problems := validateProperty(form); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property", "details": problems})
		return
	}

	property, err := server.Directory.CreateProperty(c.Request.Context(), form)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "creating property failed"})
		return
	}
	c.JSON(http.StatusCreated, property)
}

// UpdateProperty validates an edited property submission and merges only the
// fields the caller supplied; everything else stays as stored.
func (server *Server) UpdateProperty(c *gin.Context) {
	var patch domain.PropertyPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property payload"})
		return
	}

	if problems := validatePropertyPatch(patch); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid property", "details": problems})
		return
	}

	if err := server.Directory.UpdateProperty(c.Request.Context(), c.Param("id"), patch); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "updating property failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProperty removes a property.
func (server *Server) DeleteProperty(c *gin.Context) {
	if err := server.Directory.DeleteProperty(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "deleting property failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// validateProperty applies the dashboard's submission rules. The directory
// itself persists whatever it is given, so this is the only gate.
func validateProperty(form domain.PropertyForm) []string {
	problems := make([]string, 0)
	if strings.TrimSpace(form.Title) == "" {
		problems = append(problems, "title is required")
	}
	if strings.TrimSpace(form.Address) == "" {
		problems = append(problems, "address is required")
	}
	if strings.TrimSpace(form.Description) == "" {
		problems = append(problems, "description is required")
	}
	if strings.TrimSpace(form.Image) == "" {
		problems = append(problems, "a primary image is required")
	}
	if len(form.Features) == 0 {
		problems = append(problems, "at least one feature is required")
	}
	if form.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if form.Bedrooms < 0 || form.Bathrooms < 0 || form.Parking < 0 {
		problems = append(problems, "room and parking counts must not be negative")
	}
	return problems
}

// validatePropertyPatch applies the submission rules to the fields an edit
// actually carries. Absent fields are not the editor's to break.
func validatePropertyPatch(patch domain.PropertyPatch) []string {
	problems := make([]string, 0)
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		problems = append(problems, "title must not be empty")
	}
	if patch.Address != nil && strings.TrimSpace(*patch.Address) == "" {
		problems = append(problems, "address must not be empty")
	}
	if patch.Description != nil && strings.TrimSpace(*patch.Description) == "" {
		problems = append(problems, "description must not be empty")
	}
	if patch.Image != nil && strings.TrimSpace(*patch.Image) == "" {
		problems = append(problems, "the primary image must not be empty")
	}
	if patch.Features != nil && len(*patch.Features) == 0 {
		problems = append(problems, "at least one feature is required")
	}
	if patch.Price != nil && *patch.Price < 0 {
		problems = append(problems, "price must not be negative")
	}
	if (patch.Bedrooms != nil && *patch.Bedrooms < 0) ||
		(patch.Bathrooms != nil && *patch.Bathrooms < 0) ||
		(patch.Parking != nil && *patch.Parking < 0) {
		problems = append(problems, "room and parking counts must not be negative")
	}
	return problems
}
