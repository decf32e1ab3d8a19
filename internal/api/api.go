package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/menuwise/backend/internal/middleware"
	"github.com/pageza/menuwise/backend/internal/service"
)

// Services are the dependencies of the HTTP handlers.
type Services struct {
	Auth            service.IAuthService
	Preferences     service.IPreferenceService
	Aggregator      service.PreferenceAggregator
	Catalog         service.ICatalogService
	Recommendations service.IRecommendationService
	RateLimiter     *middleware.RateLimiter
	MaxUploadBytes  int64
}

// SetupAPI registers every /api/v1 route on router.
func SetupAPI(router *gin.Engine, svc Services) {
	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(svc.Auth).RegisterRoutes(v1)
		NewPreferenceHandler(svc.Preferences, svc.Aggregator, svc.Auth).RegisterRoutes(v1)
		NewCatalogHandler(svc.Catalog, svc.Auth).RegisterRoutes(v1)
		NewMenuHandler(svc.Recommendations, svc.Auth, svc.RateLimiter, svc.MaxUploadBytes).RegisterRoutes(v1)
	}
}
