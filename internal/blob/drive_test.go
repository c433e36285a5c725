package blob

import (
	"context"
	"database/sql"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sapcs/internal/apperr"
	"sapcs/internal/config"
	"sapcs/internal/drive"
	driveMocks "sapcs/internal/drive/mocks"
	"sapcs/internal/model"
	repoMocks "sapcs/internal/repository/mocks"
)

func driveResolver(folderID string) *config.Resolver {
	return config.NewResolver(&config.AppConfig{
		StorageBackend: "drive",
		Drive:          config.DriveConfig{FolderID: folderID},
	}, viper.New())
}

func TestDriveStorePut(t *testing.T) {
	t.Run("creates tagged file under root", func(t *testing.T) {
		folders := new(driveMocks.MockFolderStore)
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(folders, docs, driveResolver("root-1"))

		folders.On("CreateFile", mock.Anything, mock.MatchedBy(func(in drive.CreateFileInput) bool {
			return in.Name == "doc-1__report.pdf" &&
				in.ParentID == "root-1" &&
				in.Properties["documentId"] == "doc-1" &&
				in.Properties["fileName"] == "report.pdf"
		})).Return("ext-9", nil).Once()

		result, err := s.Put(context.Background(), model.PutInput{
			DocumentID:  "doc-1",
			FileName:    "report.pdf",
			ContentType: "application/pdf",
			Bytes:       []byte("pdf"),
		})

		require.NoError(t, err)
		assert.Equal(t, "ext-9", result.ExternalFileID)
		assert.Empty(t, result.StoragePath)
		assert.Equal(t, int64(3), result.Size)
		folders.AssertExpectations(t)
	})

	t.Run("missing root folder", func(t *testing.T) {
		s := NewDriveStore(new(driveMocks.MockFolderStore), new(repoMocks.MockDocumentRepository), driveResolver(""))

		_, err := s.Put(context.Background(), model.PutInput{DocumentID: "doc-1"})

		require.Error(t, err)
		assert.True(t, apperr.IsConfiguration(err))
	})
}

func TestDriveStoreGet(t *testing.T) {
	t.Run("resolves external file id via record", func(t *testing.T) {
		folders := new(driveMocks.MockFolderStore)
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(folders, docs, driveResolver("root-1"))

		docs.On("FindByID", mock.Anything, "doc-1").Return(&model.DocumentRecord{
			ID:             "doc-1",
			FileName:       "report.pdf",
			ContentType:    "application/pdf",
			ExternalFileID: "ext-9",
		}, nil).Once()
		folders.On("Download", mock.Anything, "ext-9").Return([]byte("pdf"), nil).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []byte("pdf"), stored.Bytes)
		assert.Equal(t, "application/pdf", stored.ContentType)
		assert.Equal(t, "report.pdf", stored.FileName)
	})

	t.Run("no record returns nil nil", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(new(driveMocks.MockFolderStore), docs, driveResolver("root-1"))

		docs.On("FindByID", mock.Anything, "doc-1").Return(nil, sql.ErrNoRows).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		assert.Nil(t, stored)
	})

	t.Run("record without external id returns nil nil", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(new(driveMocks.MockFolderStore), docs, driveResolver("root-1"))

		docs.On("FindByID", mock.Anything, "doc-1").Return(&model.DocumentRecord{ID: "doc-1"}, nil).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestDriveStoreRemove(t *testing.T) {
	t.Run("deletes external file", func(t *testing.T) {
		folders := new(driveMocks.MockFolderStore)
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(folders, docs, driveResolver("root-1"))

		docs.On("FindByID", mock.Anything, "doc-1").Return(&model.DocumentRecord{
			ID:             "doc-1",
			ExternalFileID: "ext-9",
		}, nil).Once()
		folders.On("DeleteFile", mock.Anything, "ext-9").Return(nil).Once()

		require.NoError(t, s.Remove(context.Background(), "doc-1"))
		folders.AssertExpectations(t)
	})

	t.Run("absent record is a no-op", func(t *testing.T) {
		docs := new(repoMocks.MockDocumentRepository)
		s := NewDriveStore(new(driveMocks.MockFolderStore), docs, driveResolver("root-1"))

		docs.On("FindByID", mock.Anything, "doc-1").Return(nil, sql.ErrNoRows).Once()

		require.NoError(t, s.Remove(context.Background(), "doc-1"))
	})
}
