package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/menuwise/backend/internal/middleware"
	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
	"github.com/pageza/menuwise/backend/internal/validation"
)

const defaultMaxUploadBytes = 10 << 20

type MenuHandler struct {
	recommendations service.IRecommendationService
	validator       middleware.TokenValidator
	limiter         *middleware.RateLimiter
	maxUploadBytes  int64
}

func NewMenuHandler(recommendations service.IRecommendationService, validator middleware.TokenValidator, limiter *middleware.RateLimiter, maxUploadBytes int64) *MenuHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &MenuHandler{
		recommendations: recommendations,
		validator:       validator,
		limiter:         limiter,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *MenuHandler) RegisterRoutes(router *gin.RouterGroup) {
	pipeline := []gin.HandlerFunc{middleware.OptionalAuthMiddleware(h.validator)}
	if h.limiter != nil {
		pipeline = append(pipeline, h.limiter.RateLimitMiddleware())
	}

	limited := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, pipeline...), handler)
	}

	router.POST("/menu/extract", limited(h.ExtractMenu)...)

	recs := router.Group("/recommendations")
	{
		recs.POST("", limited(h.GenerateRecommendations)...)
		recs.POST("/image", limited(h.AnalyzeMenuImage)...)
		recs.POST("/rating", middleware.OptionalAuthMiddleware(h.validator), h.SaveRating)
		recs.GET("/history", middleware.AuthMiddleware(h.validator), h.GetHistory)
	}
}

// ExtractMenu answers 200 with the extraction document, including when it
// carries an "error" key.
func (h *MenuHandler) ExtractMenu(c *gin.Context) {
	image, ok := h.readImage(c)
	if !ok {
		return
	}

	menu, archived := h.recommendations.ExtractMenu(c.Request.Context(), image, middleware.GetIdentity(c))
	if archived != "" {
		c.Header("X-Archived-Image", archived)
	}
	c.JSON(http.StatusOK, menu)
}

func (h *MenuHandler) GenerateRecommendations(c *gin.Context) {
	var req types.RecommendationRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.recommendations.GenerateRecommendations(c.Request.Context(), req.MenuText, middleware.GetIdentity(c), req.Preferences)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AnalyzeMenuImage takes a multipart "image" and an optional "preferences"
// JSON field used for guests.
func (h *MenuHandler) AnalyzeMenuImage(c *gin.Context) {
	image, ok := h.readImage(c)
	if !ok {
		return
	}

	var guestPrefs *types.PreferenceDocument
	if raw := c.PostForm("preferences"); raw != "" {
		guestPrefs = &types.PreferenceDocument{}
		if err := json.Unmarshal([]byte(raw), guestPrefs); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "preferences must be a JSON object"})
			return
		}
		if err := validation.ValidateStruct(guestPrefs); err != nil {
			respondError(c, err)
			return
		}
	}

	result, err := h.recommendations.AnalyzeMenuImage(c.Request.Context(), image, middleware.GetIdentity(c), guestPrefs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *MenuHandler) SaveRating(c *gin.Context) {
	var req types.RatingRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.recommendations.SaveRecommendationRating(c.Request.Context(), middleware.GetIdentity(c), *req.DishID, *req.Rating)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"dishId": entry.DishID,
		"rating": entry.UserRating,
	})
}

func (h *MenuHandler) GetHistory(c *gin.Context) {
	history, err := h.recommendations.GetUserDishHistory(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// readImage reads the multipart "image" field, enforcing the upload limit.
func (h *MenuHandler) readImage(c *gin.Context) ([]byte, bool) {
	// Leave room for the multipart framing around the file.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	header, err := c.FormFile("image")
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		h.rejectOversize(c)
		return nil, false
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return nil, false
	}
	if header.Size > h.maxUploadBytes {
		h.rejectOversize(c)
		return nil, false
	}

	file, err := header.Open()
	if err != nil {
		respondError(c, fmt.Errorf("failed to open upload: %w", err))
		return nil, false
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		respondError(c, fmt.Errorf("failed to read upload: %w", err))
		return nil, false
	}
	if int64(len(image)) > h.maxUploadBytes {
		h.rejectOversize(c)
		return nil, false
	}
	return image, true
}

func (h *MenuHandler) rejectOversize(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("image exceeds the %d byte limit", h.maxUploadBytes)})
}
