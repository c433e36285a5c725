package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"sapcs/internal/model"
)

// MockStore is a testify mock of blob.Store.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Put(ctx context.Context, in model.PutInput) (model.PutResult, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(model.PutResult), args.Error(1)
}

func (m *MockStore) Get(ctx context.Context, documentID string) (*model.StoredFile, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.StoredFile), args.Error(1)
}

func (m *MockStore) Remove(ctx context.Context, documentID string) error {
	args := m.Called(ctx, documentID)
	return args.Error(0)
}
