package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

type BundleService struct {
	repo  ports.BundleRepository
	store ports.BundleStore
}

func NewBundleService(repo ports.BundleRepository, store ports.BundleStore) *BundleService {
	return &BundleService{repo: repo, store: store}
}

func (s *BundleService) Get(ctx context.Context, id uuid.UUID) (*domain.Bundle, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *BundleService) Find(ctx context.Context, name, version string) (*domain.Bundle, error) {
	if name == "" {
		return nil, domain.ErrInvalidBundleName
	}
	return s.repo.GetByNameVersion(ctx, name, version)
}

func (s *BundleService) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Bundle, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func (s *BundleService) UpdateLabels(ctx context.Context, id uuid.UUID, labels map[string]string) (*domain.Bundle, error) {
	bundle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bundle.Labels == nil {
		bundle.Labels = make(map[string]string)
	}
	for k, v := range labels {
		if v == "" {
			delete(bundle.Labels, k)
			continue
		}
		bundle.Labels[k] = v
	}
	bundle.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, bundle); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *BundleService) Archive(ctx context.Context, id uuid.UUID) (*domain.Bundle, error) {
	bundle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	bundle.State = domain.BundleStateArchived
	bundle.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, bundle); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Delete removes an archived bundle from the registry and the store.
func (s *BundleService) Delete(ctx context.Context, id uuid.UUID) error {
	bundle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if bundle.State != domain.BundleStateArchived {
		return domain.ErrCannotDeleteLive
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := s.store.Remove(bundle.Name, bundle.Version); err != nil && !errors.Is(err, domain.ErrHeaderNotFound) {
		return err
	}
	return nil
}

// Verify re-hashes the bundle's payloads against the digests recorded at
// save time.
func (s *BundleService) Verify(ctx context.Context, id uuid.UUID) error {
	bundle, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return s.store.Verify(bundle)
}

// Index registers a bundle discovered in the store, typically one saved by
// the CLI. Already-registered bundles are skipped.
func (s *BundleService) Index(ctx context.Context, bundle *domain.Bundle) error {
	err := s.repo.Create(ctx, bundle)
	if errors.Is(err, domain.ErrBundleExists) {
		return nil
	}
	if err != nil {
		return err
	}
	log.WithField("bundle", bundle.Tag()).Info("bundle indexed")
	return nil
}

// Sync reconciles the registry with the store contents, registering any
// bundle present on disk but missing from the index. Returns the number of
// bundles added.
func (s *BundleService) Sync(ctx context.Context) (int, error) {
	bundles, err := s.store.Scan()
	if err != nil {
		return 0, err
	}
	added := 0
	for _, bundle := range bundles {
		_, err := s.repo.GetByNameVersion(ctx, bundle.Name, bundle.Version)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrBundleNotFound) {
			return added, err
		}
		if err := s.Index(ctx, bundle); err != nil {
			return added, err
		}
		added++
	}
	return added, nil
}
