package services

import (
	"context"
	"sort"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

// PackService runs the construct-pack-save sequence as a single operation,
// for callers that hand over a complete definition and slot bindings at once
// (the HTTP pack endpoint).
type PackService struct {
	store ports.BundleStore
	repo  ports.BundleRepository
}

func NewPackService(store ports.BundleStore, repo ports.BundleRepository) *PackService {
	return &PackService{store: store, repo: repo}
}

// Pack builds and saves one bundle. artifacts maps slot names to local
// artifact file paths.
func (s *PackService) Pack(ctx context.Context, def *domain.ServiceDefinition, artifacts map[string]string) (*domain.Bundle, error) {
	builder, err := NewBuilder(def, s.store, s.repo)
	if err != nil {
		return nil, err
	}

	slots := make([]string, 0, len(artifacts))
	for slot := range artifacts {
		slots = append(slots, slot)
	}
	sort.Strings(slots)

	for _, slot := range slots {
		if err := builder.Pack(slot, artifacts[slot]); err != nil {
			return nil, err
		}
	}
	return builder.Save(ctx)
}
