package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"model-bundle-service/internal/core/domain"
	"model-bundle-service/internal/core/ports/output"
)

// MockBundleRepo is a mock of BundleRepository.
type MockBundleRepo struct {
	mock.Mock
}

func (m *MockBundleRepo) Create(ctx context.Context, bundle *domain.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockBundleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Bundle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bundle), args.Error(1)
}

func (m *MockBundleRepo) GetByNameVersion(ctx context.Context, name, version string) (*domain.Bundle, error) {
	args := m.Called(ctx, name, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bundle), args.Error(1)
}

func (m *MockBundleRepo) List(ctx context.Context, filter ports.ListFilter) ([]*domain.Bundle, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]*domain.Bundle), args.Int(1), args.Error(2)
}

func (m *MockBundleRepo) Update(ctx context.Context, bundle *domain.Bundle) error {
	args := m.Called(ctx, bundle)
	return args.Error(0)
}

func (m *MockBundleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBundleStore is a mock of BundleStore.
type MockBundleStore struct {
	mock.Mock
}

func (m *MockBundleStore) Save(ctx context.Context, bundle *domain.Bundle, artifacts []ports.PackedArtifact) error {
	args := m.Called(ctx, bundle, artifacts)
	return args.Error(0)
}

func (m *MockBundleStore) Load(name, version string) (*domain.Bundle, error) {
	args := m.Called(name, version)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Bundle), args.Error(1)
}

func (m *MockBundleStore) Scan() ([]*domain.Bundle, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Bundle), args.Error(1)
}

func (m *MockBundleStore) Verify(bundle *domain.Bundle) error {
	args := m.Called(bundle)
	return args.Error(0)
}

func (m *MockBundleStore) Remove(name, version string) error {
	args := m.Called(name, version)
	return args.Error(0)
}
