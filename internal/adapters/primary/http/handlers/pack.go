package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"model-bundle-service/internal/adapters/primary/http/dto"
)

// PackBundle builds and saves a bundle from a definition and slot bindings.
// Artifact paths refer to files visible to the service (shared volume).
func (h *Handler) PackBundle(c *gin.Context) {
	var req dto.PackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bundle, err := h.packSvc.Pack(c.Request.Context(), req.Definition.ToDomain(), req.Artifacts)
	if err != nil {
		log.WithError(err).WithField("name", req.Definition.Name).Error("pack bundle failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBundleResponse(bundle))
}

// SyncBundles reconciles the registry with the store directory.
func (h *Handler) SyncBundles(c *gin.Context) {
	added, err := h.bundleSvc.Sync(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("sync bundles failed")
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"indexed": added})
}
