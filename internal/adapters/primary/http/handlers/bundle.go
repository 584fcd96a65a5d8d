package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-bundle-service/internal/adapters/primary/http/dto"
	"model-bundle-service/internal/core/ports/output"
)

func getBundleID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid bundle id"})
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) ListBundles(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	// Clamp here too so page_size reports what was actually applied.
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	filter := ports.ListFilter{
		Name:   c.Query("name"),
		State:  c.Query("state"),
		SortBy: c.Query("sort_by"),
		Order:  c.Query("order"),
		Limit:  limit,
		Offset: offset,
	}

	bundles, total, err := h.bundleSvc.List(c.Request.Context(), filter)
	if err != nil {
		log.WithError(err).Error("list bundles failed")
		mapDomainError(c, err)
		return
	}

	items := make([]dto.BundleResponse, 0, len(bundles))
	for _, b := range bundles {
		items = append(items, dto.ToBundleResponse(b))
	}

	c.JSON(http.StatusOK, dto.ListBundlesResponse{
		Items:      items,
		Total:      total,
		PageSize:   limit,
		NextOffset: offset + len(items),
	})
}

func (h *Handler) GetBundle(c *gin.Context) {
	id, ok := getBundleID(c)
	if !ok {
		return
	}

	bundle, err := h.bundleSvc.Get(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBundleResponse(bundle))
}

func (h *Handler) FindBundle(c *gin.Context) {
	name := c.Query("name")
	version := c.Query("version")

	bundle, err := h.bundleSvc.Find(c.Request.Context(), name, version)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBundleResponse(bundle))
}

func (h *Handler) UpdateBundleLabels(c *gin.Context) {
	id, ok := getBundleID(c)
	if !ok {
		return
	}

	var req dto.UpdateLabelsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bundle, err := h.bundleSvc.UpdateLabels(c.Request.Context(), id, req.Labels)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBundleResponse(bundle))
}

func (h *Handler) ArchiveBundle(c *gin.Context) {
	id, ok := getBundleID(c)
	if !ok {
		return
	}

	bundle, err := h.bundleSvc.Archive(c.Request.Context(), id)
	if err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBundleResponse(bundle))
}

func (h *Handler) VerifyBundle(c *gin.Context) {
	id, ok := getBundleID(c)
	if !ok {
		return
	}

	if err := h.bundleSvc.Verify(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "verified"})
}

func (h *Handler) DeleteBundle(c *gin.Context) {
	id, ok := getBundleID(c)
	if !ok {
		return
	}

	if err := h.bundleSvc.Delete(c.Request.Context(), id); err != nil {
		mapDomainError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
