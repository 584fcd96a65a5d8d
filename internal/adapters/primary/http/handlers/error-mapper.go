package handlers

import (
	"errors"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"model-bundle-service/internal/core/domain"
)

func mapDomainError(c *gin.Context, err error) {
	switch {
	// Not found errors
	case errors.Is(err, domain.ErrBundleNotFound),
		errors.Is(err, domain.ErrHeaderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	// Conflict errors
	case errors.Is(err, domain.ErrBundleExists),
		errors.Is(err, domain.ErrDigestMismatch):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	// Bad request / validation errors
	case errors.Is(err, domain.ErrInvalidBundleID),
		errors.Is(err, domain.ErrInvalidBundleName),
		errors.Is(err, domain.ErrInvalidDefinition),
		errors.Is(err, domain.ErrNoArtifactSlots),
		errors.Is(err, domain.ErrDuplicateSlot),
		errors.Is(err, domain.ErrUnsupportedFramework),
		errors.Is(err, domain.ErrUnknownSlot),
		errors.Is(err, domain.ErrSlotAlreadyPacked),
		errors.Is(err, domain.ErrSlotNotPacked),
		errors.Is(err, domain.ErrArtifactNotFile),
		errors.Is(err, domain.ErrCannotDeleteLive),
		errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
