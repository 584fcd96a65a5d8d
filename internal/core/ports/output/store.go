package ports

import (
	"context"

	"model-bundle-service/internal/core/domain"
)

// PackedArtifact is the input to a store write: a declared slot bound to a
// local file that holds the trained model payload.
type PackedArtifact struct {
	Slot      string
	Framework string
	Path      string
}

// BundleStore persists bundle payloads and headers on the filesystem.
type BundleStore interface {
	// Save writes all artifact payloads into the blob area, writes the bundle
	// header and returns the saved bundle directory. The returned bundle has
	// Path, Digest and Artifacts populated.
	Save(ctx context.Context, bundle *domain.Bundle, artifacts []PackedArtifact) error

	// Load reads a bundle header back from the store.
	Load(name, version string) (*domain.Bundle, error)

	// Scan enumerates all bundle headers present in the store.
	Scan() ([]*domain.Bundle, error)

	// Verify re-hashes the bundle's blobs against the header digests.
	Verify(bundle *domain.Bundle) error

	// Remove deletes the bundle directory. Blobs are shared across bundles
	// and are left in place.
	Remove(name, version string) error
}
