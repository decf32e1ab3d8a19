package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/menuwise/backend/internal/middleware"
	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
)

type PreferenceHandler struct {
	preferences service.IPreferenceService
	aggregator  service.PreferenceAggregator
	validator   middleware.TokenValidator
}

func NewPreferenceHandler(preferences service.IPreferenceService, aggregator service.PreferenceAggregator, validator middleware.TokenValidator) *PreferenceHandler {
	return &PreferenceHandler{preferences: preferences, aggregator: aggregator, validator: validator}
}

func (h *PreferenceHandler) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/preferences")
	prefs.Use(middleware.AuthMiddleware(h.validator))
	{
		prefs.GET("", h.GetPreferences)
		prefs.PUT("", h.SetPreferences)
		prefs.PUT("/flavors/:name", h.SetFlavorPreference)
	}
}

func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	doc, err := h.aggregator.GetPreferences(c.Request.Context(), identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// SetPreferences reconciles the categories present in the body and returns
// the resulting document.
func (h *PreferenceHandler) SetPreferences(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	var doc types.PreferenceDocument
	if !bindJSON(c, &doc) {
		return
	}

	ctx := c.Request.Context()
	if err := h.preferences.SetPreferences(ctx, identity.Email, &doc); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.aggregator.GetPreferences(ctx, identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *PreferenceHandler) SetFlavorPreference(c *gin.Context) {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		respondError(c, service.ErrUnauthenticated)
		return
	}

	var req types.FlavorLevelRequest
	if !bindJSON(c, &req) {
		return
	}

	flavor := c.Param("name")
	if err := h.preferences.SetFlavorPreference(c.Request.Context(), identity.Email, flavor, *req.Level); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flavor": flavor, "level": *req.Level})
}
