package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/menuwise/backend/internal/middleware"
	"github.com/pageza/menuwise/backend/internal/service"
	"github.com/pageza/menuwise/backend/internal/types"
)

type CatalogHandler struct {
	catalog   service.ICatalogService
	validator middleware.TokenValidator
}

func NewCatalogHandler(catalog service.ICatalogService, validator middleware.TokenValidator) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, validator: validator}
}

// RegisterRoutes exposes reads publicly; writes need a signed-in user.
func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	requireAuth := middleware.AuthMiddleware(h.validator)

	router.GET("/allergies", h.ListAllergies)
	router.GET("/allergies/:id", h.GetAllergy)
	router.POST("/allergies", requireAuth, h.CreateAllergy)

	router.GET("/flavors", h.ListFlavors)
	router.GET("/flavors/:id", h.GetFlavor)
	router.POST("/flavors", requireAuth, h.CreateFlavor)

	router.GET("/constraint-types", h.ListConstraintTypes)
	router.GET("/constraint-types/:id", h.GetConstraintType)
	router.POST("/constraint-types", requireAuth, h.CreateConstraintType)

	router.GET("/dishes", h.ListDishes)
	router.GET("/dishes/search", h.SearchDishes)
	router.GET("/dishes/:id", h.GetDish)
	router.POST("/dishes", requireAuth, h.CreateDish)
}

func (h *CatalogHandler) ListAllergies(c *gin.Context) {
	v, err := h.catalog.ListAllergies(c.Request.Context())
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) GetAllergy(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, err := h.catalog.GetAllergy(c.Request.Context(), id)
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) CreateAllergy(c *gin.Context) {
	var req types.CatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.catalog.CreateAllergy(c.Request.Context(), req.Name, req.Description)
	respond(c, http.StatusCreated, v, err)
}

func (h *CatalogHandler) ListFlavors(c *gin.Context) {
	v, err := h.catalog.ListFlavors(c.Request.Context())
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) GetFlavor(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, err := h.catalog.GetFlavor(c.Request.Context(), id)
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) CreateFlavor(c *gin.Context) {
	var req types.CatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.catalog.CreateFlavor(c.Request.Context(), req.Name, req.Description)
	respond(c, http.StatusCreated, v, err)
}

func (h *CatalogHandler) ListConstraintTypes(c *gin.Context) {
	v, err := h.catalog.ListConstraintTypes(c.Request.Context())
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) GetConstraintType(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, err := h.catalog.GetConstraintType(c.Request.Context(), id)
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) CreateConstraintType(c *gin.Context) {
	var req types.CatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.catalog.CreateConstraintType(c.Request.Context(), req.Name)
	respond(c, http.StatusCreated, v, err)
}

func (h *CatalogHandler) ListDishes(c *gin.Context) {
	v, err := h.catalog.ListDishes(c.Request.Context())
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) GetDish(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	v, err := h.catalog.GetDish(c.Request.Context(), id)
	respond(c, http.StatusOK, v, err)
}

func (h *CatalogHandler) CreateDish(c *gin.Context) {
	var req types.CatalogEntryRequest
	if !bindJSON(c, &req) {
		return
	}
	v, err := h.catalog.CreateDish(c.Request.Context(), req.Name, req.Description)
	respond(c, http.StatusCreated, v, err)
}

// SearchDishes handles GET /dishes/search?q=...&limit=...
func (h *CatalogHandler) SearchDishes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	v, err := h.catalog.SearchDishes(c.Request.Context(), c.Query("q"), limit)
	respond(c, http.StatusOK, v, err)
}

// respond writes either the service error or v with status.
func respond(c *gin.Context, status int, v interface{}, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, v)
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
