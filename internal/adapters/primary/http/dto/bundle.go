package dto

import (
	"time"

	"github.com/google/uuid"

	"model-bundle-service/internal/core/domain"
)

type ArtifactResponse struct {
	Slot      string `json:"slot"`
	Framework string `json:"framework,omitempty"`
	Digest    string `json:"digest"`
	Size      int64  `json:"size"`
}

type BundleResponse struct {
	ID        uuid.UUID          `json:"id"`
	CreatedAt string             `json:"created_at"`
	UpdatedAt string             `json:"updated_at"`
	Name      string             `json:"name"`
	Version   string             `json:"version"`
	State     string             `json:"state"`
	Digest    string             `json:"digest"`
	Path      string             `json:"path"`
	Labels    map[string]string  `json:"labels"`
	Artifacts []ArtifactResponse `json:"artifacts"`
}

type ListBundlesResponse struct {
	Items      []BundleResponse `json:"items"`
	Total      int              `json:"total"`
	PageSize   int              `json:"page_size"`
	NextOffset int              `json:"next_offset"`
}

type PackRequest struct {
	Definition DefinitionRequest `json:"definition" binding:"required"`
	Artifacts  map[string]string `json:"artifacts" binding:"required"`
}

type DefinitionRequest struct {
	Name        string            `json:"name" binding:"required,max=100"`
	Description string            `json:"description"`
	Artifacts   []SlotRequest     `json:"artifacts" binding:"required"`
	Labels      map[string]string `json:"labels"`
}

type SlotRequest struct {
	Name      string `json:"name" binding:"required"`
	Framework string `json:"framework"`
	Optional  bool   `json:"optional"`
}

type UpdateLabelsRequest struct {
	Labels map[string]string `json:"labels" binding:"required"`
}

func (d DefinitionRequest) ToDomain() *domain.ServiceDefinition {
	slots := make([]domain.ArtifactSlot, 0, len(d.Artifacts))
	for _, s := range d.Artifacts {
		slots = append(slots, domain.ArtifactSlot{
			Name:      s.Name,
			Framework: s.Framework,
			Optional:  s.Optional,
		})
	}
	return &domain.ServiceDefinition{
		Name:        d.Name,
		Description: d.Description,
		Slots:       slots,
		Labels:      d.Labels,
	}
}

func ToBundleResponse(b *domain.Bundle) BundleResponse {
	artifacts := make([]ArtifactResponse, 0, len(b.Artifacts))
	for _, a := range b.Artifacts {
		artifacts = append(artifacts, ArtifactResponse{
			Slot:      a.Slot,
			Framework: a.Framework,
			Digest:    string(a.Digest),
			Size:      a.Size,
		})
	}
	labels := b.Labels
	if labels == nil {
		labels = map[string]string{}
	}
	return BundleResponse{
		ID:        b.ID,
		CreatedAt: b.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: b.UpdatedAt.UTC().Format(time.RFC3339),
		Name:      b.Name,
		Version:   b.Version,
		State:     string(b.State),
		Digest:    string(b.Digest),
		Path:      b.Path,
		Labels:    labels,
		Artifacts: artifacts,
	}
}
