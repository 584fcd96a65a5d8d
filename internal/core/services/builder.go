package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

// Builder assembles one bundle from a service definition: artifacts are
// packed into declared slots, then Save persists the bundle through the
// store and registers it. A Builder is single-use; Save may be called once.
type Builder struct {
	def    *domain.ServiceDefinition
	store  ports.BundleStore
	repo   ports.BundleRepository
	packed []ports.PackedArtifact
	slots  map[string]bool
	saved  bool
}

// NewBuilder constructs a builder for the given definition. repo may be nil
// when the caller only needs the filesystem bundle (local CLI mode); the
// registry then picks the bundle up through the store watcher.
func NewBuilder(def *domain.ServiceDefinition, store ports.BundleStore, repo ports.BundleRepository) (*Builder, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &Builder{
		def:   def,
		store: store,
		repo:  repo,
		slots: make(map[string]bool, len(def.Slots)),
	}, nil
}

// Pack binds the trained model file at path to the named artifact slot.
func (b *Builder) Pack(slot, path string) error {
	decl, ok := b.def.Slot(slot)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrUnknownSlot, slot)
	}
	if b.slots[slot] {
		return fmt.Errorf("%w: %q", domain.ErrSlotAlreadyPacked, slot)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat artifact for slot %q: %w", slot, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%w: %s", domain.ErrArtifactNotFile, path)
	}

	b.slots[slot] = true
	b.packed = append(b.packed, ports.PackedArtifact{
		Slot:      slot,
		Framework: decl.Framework,
		Path:      path,
	})
	return nil
}

// Save persists the packed bundle and returns it with Path, Digest and
// Artifacts populated. All non-optional slots must be packed.
func (b *Builder) Save(ctx context.Context) (*domain.Bundle, error) {
	if b.saved {
		return nil, fmt.Errorf("%w: %s", domain.ErrBundleExists, b.def.Name)
	}
	for _, slot := range b.def.Slots {
		if !slot.Optional && !b.slots[slot.Name] {
			return nil, fmt.Errorf("%w: %q", domain.ErrSlotNotPacked, slot.Name)
		}
	}

	labels := make(map[string]string, len(b.def.Labels))
	for k, v := range b.def.Labels {
		labels[k] = v
	}

	now := time.Now().UTC()
	bundle := &domain.Bundle{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Name:      b.def.Name,
		Version:   newVersion(now),
		State:     domain.BundleStateActive,
		Labels:    labels,
	}

	if err := b.store.Save(ctx, bundle, b.packed); err != nil {
		return nil, err
	}
	b.saved = true

	if b.repo != nil {
		if err := b.repo.Create(ctx, bundle); err != nil {
			// Keep the store consistent with the registry.
			if rmErr := b.store.Remove(bundle.Name, bundle.Version); rmErr != nil {
				log.WithError(rmErr).WithField("bundle", bundle.Tag()).Warn("rollback saved bundle")
			}
			return nil, fmt.Errorf("register bundle: %w", err)
		}
	}

	log.WithFields(log.Fields{
		"bundle": bundle.Tag(),
		"path":   bundle.Path,
	}).Info("bundle saved")
	return bundle, nil
}

// newVersion generates a bundle version of the form 20060102150405_A1B2C3:
// a UTC timestamp plus a short random suffix to disambiguate saves within
// the same second.
func newVersion(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:6])
	return now.Format("20060102150405") + "_" + suffix
}
