package handlers

import (
	"model-bundle-service/internal/core/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	bundleSvc *services.BundleService
	packSvc   *services.PackService
}

func New(bundleSvc *services.BundleService, packSvc *services.PackService) *Handler {
	return &Handler{
		bundleSvc: bundleSvc,
		packSvc:   packSvc,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	// Bundles
	r.GET("/bundles", h.ListBundles)
	r.GET("/bundles/:id", h.GetBundle)
	r.GET("/bundle", h.FindBundle)
	r.PATCH("/bundles/:id/labels", h.UpdateBundleLabels)
	r.POST("/bundles/:id/archive", h.ArchiveBundle)
	r.POST("/bundles/:id/verify", h.VerifyBundle)
	r.DELETE("/bundles/:id", h.DeleteBundle)

	// Pack Actions
	r.POST("/bundles/pack", h.PackBundle)
	r.POST("/bundles/sync", h.SyncBundles)
}
