package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sapcs/internal/model"
	"sapcs/internal/service"
)

// MockContentService is a testify mock of service.ContentService.
type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) Store(ctx context.Context, in service.StoreInput) (*service.StoreResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.StoreResult), args.Error(1)
}

func (m *MockContentService) Fetch(ctx context.Context, documentID string) (*model.StoredFile, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockContentService) Remove(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}

func (m *MockContentService) UpsertMetadata(ctx context.Context, payload any, requestID string) (*service.MetadataBatchResult, error) {
	args := m.Called(ctx, payload, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.MetadataBatchResult), args.Error(1)
}

func (m *MockContentService) Metadata(ctx context.Context, documentID string) (*model.AttachmentBusinessMetadata, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AttachmentBusinessMetadata), args.Error(1)
}

func (m *MockContentService) ServerInfo() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockContentService) ReplicationEnabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockContentService) StorageHealth(ctx context.Context) *service.HealthReport {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.HealthReport)
}

func (m *MockContentService) ReplicationHealth(ctx context.Context) *service.HealthReport {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*service.HealthReport)
}
