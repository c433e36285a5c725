package blob

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sapcs/internal/model"
	"sapcs/internal/storage"
	"sapcs/internal/storage/mocks"
)

func TestObjectStorePut(t *testing.T) {
	t.Run("without attachment source", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Put", mock.Anything, "sap-content/doc-1", mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.ContentType == "application/pdf" &&
				opt.Size == 3 &&
				opt.Metadata["file-name"] == "a.pdf"
		})).Return(storage.ObjectInfo{Key: "sap-content/doc-1"}, nil).Once()

		result, err := s.Put(context.Background(), model.PutInput{
			DocumentID:  "doc-1",
			FileName:    "a.pdf",
			ContentType: "application/pdf",
			Bytes:       []byte("pdf"),
		})

		require.NoError(t, err)
		assert.Equal(t, "sap-content/doc-1", result.StoragePath)
		assert.Equal(t, int64(3), result.Size)
		assert.Empty(t, result.ExternalFileID)
		store.AssertExpectations(t)
	})

	t.Run("attachment source folds into the key", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Put", mock.Anything, "sap-content/freight-order/doc-1", mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, nil).Once()

		result, err := s.Put(context.Background(), model.PutInput{
			DocumentID:       "doc-1",
			Bytes:            []byte("x"),
			AttachmentSource: "freight-order",
		})

		require.NoError(t, err)
		assert.Equal(t, "sap-content/freight-order/doc-1", result.StoragePath)
		store.AssertExpectations(t)
	})
}

func TestObjectStoreGet(t *testing.T) {
	t.Run("direct key hit", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Stat", mock.Anything, "sap-content/doc-1").
			Return(storage.ObjectInfo{Key: "sap-content/doc-1"}, true, nil).Once()
		store.On("Get", mock.Anything, "sap-content/doc-1").Return(
			io.NopCloser(strings.NewReader("hello")),
			storage.ObjectInfo{
				ContentType: "text/plain",
				Metadata:    map[string]string{"File-Name": "greeting.txt"},
			},
			nil,
		).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []byte("hello"), stored.Bytes)
		assert.Equal(t, "text/plain", stored.ContentType)
		assert.Equal(t, "greeting.txt", stored.FileName)
		store.AssertExpectations(t)
	})

	t.Run("prefix scan fallback", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Stat", mock.Anything, "sap-content/doc-1").
			Return(storage.ObjectInfo{}, false, nil).Once()
		store.On("List", mock.Anything, "sap-content/").
			Return([]string{"sap-content/invoice/doc-9", "sap-content/freight-order/doc-1"}, nil).Once()
		store.On("Get", mock.Anything, "sap-content/freight-order/doc-1").Return(
			io.NopCloser(strings.NewReader("data")),
			storage.ObjectInfo{},
			nil,
		).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, []byte("data"), stored.Bytes)
		// Metadata-free legacy objects get synthesized defaults.
		assert.Equal(t, "doc-1.bin", stored.FileName)
		assert.Equal(t, "application/octet-stream", stored.ContentType)
		store.AssertExpectations(t)
	})

	t.Run("absent document returns nil nil", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Stat", mock.Anything, "sap-content/doc-1").
			Return(storage.ObjectInfo{}, false, nil).Once()
		store.On("List", mock.Anything, "sap-content/").Return([]string{}, nil).Once()

		stored, err := s.Get(context.Background(), "doc-1")

		require.NoError(t, err)
		assert.Nil(t, stored)
	})
}

func TestObjectStorePutGetRoundTrip(t *testing.T) {
	store := new(mocks.MockStorage)
	s := NewObjectStore(store)

	content := []byte("VERIFY-A-PDF")

	var storedOpt storage.PutObjectOptions
	store.On("Put", mock.Anything, "sap-content/doc-rt", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			storedOpt = args.Get(3).(storage.PutObjectOptions)
		}).
		Return(storage.ObjectInfo{}, nil).Once()

	_, err := s.Put(context.Background(), model.PutInput{
		DocumentID:  "doc-rt",
		FileName:    "verify.pdf",
		ContentType: "application/pdf",
		Bytes:       content,
	})
	require.NoError(t, err)

	store.On("Stat", mock.Anything, "sap-content/doc-rt").
		Return(storage.ObjectInfo{}, true, nil).Once()
	store.On("Get", mock.Anything, "sap-content/doc-rt").Return(
		io.NopCloser(strings.NewReader(string(content))),
		storage.ObjectInfo{ContentType: storedOpt.ContentType, Metadata: storedOpt.Metadata},
		nil,
	).Once()

	stored, err := s.Get(context.Background(), "doc-rt")

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, content, stored.Bytes)
	assert.Equal(t, "application/pdf", stored.ContentType)
	assert.Equal(t, "verify.pdf", stored.FileName)
}

func TestObjectStoreRemove(t *testing.T) {
	t.Run("removes resolved key", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Stat", mock.Anything, "sap-content/doc-1").
			Return(storage.ObjectInfo{}, true, nil).Once()
		store.On("Delete", mock.Anything, "sap-content/doc-1").Return(nil).Once()

		require.NoError(t, s.Remove(context.Background(), "doc-1"))
		store.AssertExpectations(t)
	})

	t.Run("absent document is a no-op", func(t *testing.T) {
		store := new(mocks.MockStorage)
		s := NewObjectStore(store)

		store.On("Stat", mock.Anything, "sap-content/doc-1").
			Return(storage.ObjectInfo{}, false, nil).Once()
		store.On("List", mock.Anything, "sap-content/").Return(nil, nil).Once()

		require.NoError(t, s.Remove(context.Background(), "doc-1"))
		store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}
