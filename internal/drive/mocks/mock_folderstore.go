package mocks

import (
	"context"

	"sapcs/internal/drive"

	"github.com/stretchr/testify/mock"
)

type MockFolderStore struct {
	mock.Mock
}

func (m *MockFolderStore) EnsureChildFolder(ctx context.Context, parentID, name string) (string, error) {
	args := m.Called(ctx, parentID, name)
	return args.String(0), args.Error(1)
}

func (m *MockFolderStore) CreateFile(ctx context.Context, in drive.CreateFileInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockFolderStore) Download(ctx context.Context, fileID string) ([]byte, error) {
	args := m.Called(ctx, fileID)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockFolderStore) DeleteFile(ctx context.Context, fileID string) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockFolderStore) ListByProperty(ctx context.Context, key, value string) ([]drive.File, error) {
	args := m.Called(ctx, key, value)
	files, _ := args.Get(0).([]drive.File)
	return files, args.Error(1)
}

func (m *MockFolderStore) DiagnoseFolder(ctx context.Context, folderID string) (*drive.FolderDiagnosis, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*drive.FolderDiagnosis), args.Error(1)
}
