package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/opencontainers/go-digest"
	"gopkg.in/yaml.v3"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

const (
	blobsDir   = "blobs"
	bundlesDir = "bundles"
	headerName = "bundle.yaml"

	headerSchemaVersion = 1
)

// Store is a content-addressed bundle store rooted at a single directory:
//
//	<root>/blobs/sha256/<hex>                   artifact payloads
//	<root>/bundles/<name>/<version>/bundle.yaml bundle headers
type Store struct {
	root string
}

func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve store root: %w", err)
	}
	for _, dir := range []string{blobsDir, bundlesDir} {
		if err := os.MkdirAll(filepath.Join(abs, dir), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	return &Store{root: abs}, nil
}

func (s *Store) Root() string { return s.root }

func (s *Store) BundlesRoot() string { return filepath.Join(s.root, bundlesDir) }

// header is the on-disk YAML representation of a saved bundle.
type header struct {
	SchemaVersion int               `yaml:"schemaVersion"`
	ID            string            `yaml:"id"`
	Name          string            `yaml:"name"`
	Version       string            `yaml:"version"`
	CreatedAt     string            `yaml:"createdAt"`
	Labels        map[string]string `yaml:"labels,omitempty"`
	Artifacts     []domain.Artifact `yaml:"artifacts"`
}

func (s *Store) blobPath(dgst digest.Digest) (string, error) {
	if err := dgst.Validate(); err != nil {
		return "", fmt.Errorf("unsafe digest: %w", err)
	}
	path := filepath.Join(s.root, blobsDir, string(dgst.Algorithm()), dgst.Encoded())
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal attempt detected: %s", path)
	}
	return path, nil
}

// bundleDir resolves the directory for name/version, refusing components
// that would escape the bundles root. Versions are single path elements;
// names may be namespaced (team/model) but must stay under the root.
func (s *Store) bundleDir(name, version string) (string, error) {
	if name == "" || version == "" {
		return "", fmt.Errorf("%w: empty name or version", domain.ErrHeaderNotFound)
	}
	if version == "." || version == ".." || strings.ContainsAny(version, `/\`) {
		return "", fmt.Errorf("unsafe bundle version: %q", version)
	}
	root := filepath.Join(s.root, bundlesDir)
	path := filepath.Join(root, filepath.FromSlash(name), version)
	rel, err := filepath.Rel(root, filepath.Clean(path))
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path traversal attempt detected: %s:%s", name, version)
	}
	return path, nil
}

// writeBlob copies the file at path into the blob area, hashing while
// copying. Existing blobs are not rewritten.
func (s *Store) writeBlob(path string) (digest.Digest, int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", 0, fmt.Errorf("stat artifact: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", 0, fmt.Errorf("%w: %s", domain.ErrArtifactNotFile, path)
	}

	src, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("open artifact: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Join(s.root, blobsDir), "ingest-*")
	if err != nil {
		return "", 0, fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	digester := digest.Canonical.Digester()
	size, err := io.Copy(io.MultiWriter(tmp, digester.Hash()), src)
	if err != nil {
		return "", 0, fmt.Errorf("copy artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", 0, fmt.Errorf("close temp blob: %w", err)
	}

	dgst := digester.Digest()
	dst, err := s.blobPath(dgst)
	if err != nil {
		return "", 0, err
	}
	if _, err := os.Stat(dst); err == nil {
		return dgst, size, nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", 0, fmt.Errorf("create blob directory: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", 0, fmt.Errorf("store blob: %w", err)
	}
	return dgst, size, nil
}

func (s *Store) Save(ctx context.Context, bundle *domain.Bundle, artifacts []ports.PackedArtifact) error {
	dir, err := s.bundleDir(bundle.Name, bundle.Version)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err == nil {
		return domain.ErrBundleExists
	}

	packed := make([]domain.Artifact, 0, len(artifacts))
	for _, a := range artifacts {
		if err := ctx.Err(); err != nil {
			return err
		}
		dgst, size, err := s.writeBlob(a.Path)
		if err != nil {
			return fmt.Errorf("pack slot %q: %w", a.Slot, err)
		}
		packed = append(packed, domain.Artifact{
			Slot:      a.Slot,
			Framework: a.Framework,
			Digest:    dgst,
			Size:      size,
		})
	}

	hdr := header{
		SchemaVersion: headerSchemaVersion,
		ID:            bundle.ID.String(),
		Name:          bundle.Name,
		Version:       bundle.Version,
		CreatedAt:     bundle.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		Labels:        bundle.Labels,
		Artifacts:     packed,
	}
	raw, err := yaml.Marshal(&hdr)
	if err != nil {
		return fmt.Errorf("marshal bundle header: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bundle directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".header-*")
	if err != nil {
		return fmt.Errorf("create temp header: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return fmt.Errorf("write bundle header: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close bundle header: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, headerName)); err != nil {
		return fmt.Errorf("commit bundle header: %w", err)
	}

	bundle.Path = dir
	bundle.Digest = digest.Canonical.FromBytes(raw)
	bundle.Artifacts = packed
	return nil
}

func (s *Store) Load(name, version string) (*domain.Bundle, error) {
	dir, err := s.bundleDir(name, version)
	if err != nil {
		return nil, err
	}
	return s.loadHeader(filepath.Join(dir, headerName))
}

func (s *Store) loadHeader(path string) (*domain.Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrHeaderNotFound
		}
		return nil, fmt.Errorf("read bundle header: %w", err)
	}

	var hdr header
	if err := yaml.Unmarshal(raw, &hdr); err != nil {
		return nil, fmt.Errorf("decode bundle header: %w", err)
	}

	bundle, err := hdr.toBundle()
	if err != nil {
		return nil, err
	}
	bundle.Path = filepath.Dir(path)
	bundle.Digest = digest.Canonical.FromBytes(raw)
	return bundle, nil
}

func (s *Store) Scan() ([]*domain.Bundle, error) {
	var bundles []*domain.Bundle
	root := s.BundlesRoot()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != headerName {
			return nil
		}
		bundle, err := s.loadHeader(path)
		if err != nil {
			return fmt.Errorf("scan %s: %w", path, err)
		}
		bundles = append(bundles, bundle)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan store: %w", err)
	}
	return bundles, nil
}

func (s *Store) Verify(bundle *domain.Bundle) error {
	for _, a := range bundle.Artifacts {
		path, err := s.blobPath(a.Digest)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open blob for slot %q: %w", a.Slot, err)
		}
		actual, err := digest.Canonical.FromReader(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("hash blob for slot %q: %w", a.Slot, err)
		}
		if actual != a.Digest {
			return fmt.Errorf("%w: slot %q", domain.ErrDigestMismatch, a.Slot)
		}
	}
	return nil
}

func (s *Store) Remove(name, version string) error {
	dir, err := s.bundleDir(name, version)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.ErrHeaderNotFound
		}
		return fmt.Errorf("stat bundle directory: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("remove bundle directory: %w", err)
	}
	// Drop the name directory when this was its last version.
	os.Remove(filepath.Dir(dir))
	return nil
}

func (h *header) toBundle() (*domain.Bundle, error) {
	id, err := uuid.Parse(h.ID)
	if err != nil {
		return nil, fmt.Errorf("decode bundle header: bad id %q: %w", h.ID, err)
	}
	created, err := time.Parse(time.RFC3339, h.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("decode bundle header: bad createdAt %q: %w", h.CreatedAt, err)
	}
	labels := h.Labels
	if labels == nil {
		labels = make(map[string]string)
	}
	return &domain.Bundle{
		ID:        id,
		CreatedAt: created,
		UpdatedAt: created,
		Name:      h.Name,
		Version:   h.Version,
		State:     domain.BundleStateActive,
		Labels:    labels,
		Artifacts: h.Artifacts,
	}, nil
}
