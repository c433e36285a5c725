package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sapcs/internal/model"
	"sapcs/internal/service"
	serviceMocks "sapcs/internal/service/mocks"
)

const legacyPath = "/ContentServer/ContentServer.dll"

const serverInfoText = "server=SAP-CONTENT-SERVER\nserverVersion=1.0\nserverBuild=2026-02-14\nbackend=object\ncapabilities=PING,SERVERINFO,PUT,GET,DELETE"

func TestLegacyServerInfo(t *testing.T) {
	svc := new(serviceMocks.MockContentService)
	svc.On("ServerInfo").Return(serverInfoText)
	app := newTestApp(svc)

	spellings := []string{
		"?cmd=serverInfo",
		"?cmd=ping",
		"?serverInfo",
		"?ping",
		"?info",
	}

	for _, qs := range spellings {
		t.Run(qs, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+qs, nil))
			require.NoError(t, err)
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, serverInfoText, string(body))
			assert.Equal(t, "SERVERINFO", resp.Header.Get("X-SAP-Debug-Action"))
		})
	}
}

func TestLegacyGet(t *testing.T) {
	t.Run("fetches by docId", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Fetch", mock.Anything, "doc-1").
			Return(&model.StoredFile{Bytes: []byte("payload"), ContentType: "application/pdf", FileName: "order.pdf"}, nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=get&docId=doc-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get(fiber.HeaderContentType))
		assert.Equal(t, "GET", resp.Header.Get("X-SAP-Debug-Action"))
		assert.Equal(t, "doc-1", resp.Header.Get("X-SAP-Debug-Docid"))

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "payload", string(body))
	})

	t.Run("bare docId reads", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Fetch", mock.Anything, "doc-1").
			Return(&model.StoredFile{Bytes: []byte("x")}, nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?docId=doc-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("absent document answers softly", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Fetch", mock.Anything, "ghost").Return(nil, nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=get&docId=ghost", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "document not found", string(body))
	})

	t.Run("missing docId", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=get", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unclassifiable request", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?contRep=K1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "UNSUPPORTED", resp.Header.Get("X-SAP-Debug-Action"))
	})
}

func TestLegacyDelete(t *testing.T) {
	t.Run("delete verb", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Remove", mock.Anything, "doc-1").Return(nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, legacyPath+"?docId=doc-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("delete verb without docId", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodDelete, legacyPath, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("get with delete cmd", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Remove", mock.Anything, "doc-1").Return(nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=delete&docId=doc-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("get with delete cmd but no docId falls back to serverinfo", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("ServerInfo").Return(serverInfoText)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=delete", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("method override", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Remove", mock.Anything, "doc-1").Return(nil)
		app := newTestApp(svc)

		req := httptest.NewRequest(http.MethodGet, legacyPath+"?docId=doc-1", nil)
		req.Header.Set("X-HTTP-Method-Override", "DELETE")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})

	t.Run("delete accessMode", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Remove", mock.Anything, "doc-1").Return(nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?docId=doc-1&accessMode=d", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestLegacyPost(t *testing.T) {
	t.Run("multipart create", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Store", mock.Anything, mock.MatchedBy(func(in service.StoreInput) bool {
			return in.DocumentID == "doc-1" && in.FileName == "order.pdf"
		})).Return(&service.StoreResult{DocumentID: "doc-1", Backend: model.BackendObject}, nil)
		app := newTestApp(svc)

		body, contentType := multipartBody(t, nil, "file", "order.pdf", []byte("%PDF-1.7"))
		req := httptest.NewRequest(http.MethodPost, legacyPath+"?cmd=create&docId=doc-1", body)
		req.Header.Set(fiber.HeaderContentType, contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		svc.AssertExpectations(t)
	})

	t.Run("docId from body field", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Store", mock.Anything, mock.MatchedBy(func(in service.StoreInput) bool {
			return in.DocumentID == "doc-2"
		})).Return(&service.StoreResult{DocumentID: "doc-2"}, nil)
		app := newTestApp(svc)

		body, contentType := multipartBody(t, map[string]string{"docId": "doc-2"}, "file", "a.txt", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, legacyPath, body)
		req.Header.Set(fiber.HeaderContentType, contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("unsupported cmd in form field", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		app := newTestApp(svc)

		body, contentType := multipartBody(t, map[string]string{"cmd": "MIGRATE", "docId": "doc-9"}, "file", "a.txt", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, legacyPath, body)
		req.Header.Set(fiber.HeaderContentType, contentType)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		out, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(out), "Unsupported cmd for POST: MIGRATE")
		svc.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
	})

	t.Run("unsupported cmd", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, legacyPath+"?cmd=migrate", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "Unsupported cmd for POST: MIGRATE")
	})

	t.Run("missing file part", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, legacyPath+"?cmd=put", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("delete cmd without docId falls back to serverinfo", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("ServerInfo").Return(serverInfoText)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, legacyPath+"?cmd=delete", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("delete cmd on POST", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("Remove", mock.Anything, "doc-1").Return(nil)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, legacyPath+"?cmd=delete&docId=doc-1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	})
}

func TestLegacyPut(t *testing.T) {
	t.Run("admin probe", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("ServerInfo").Return(serverInfoText)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodPut, legacyPath+"?AdminContRep=K1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, serverInfoText, string(body))
	})

	t.Run("admin probe as bare flag", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("ServerInfo").Return(serverInfoText)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodPut, legacyPath+"?AdminContRep", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, serverInfoText, string(body))
	})

	t.Run("serverinfo", func(t *testing.T) {
		svc := new(serviceMocks.MockContentService)
		svc.On("ServerInfo").Return(serverInfoText)
		app := newTestApp(svc)

		resp, err := app.Test(httptest.NewRequest(http.MethodPut, legacyPath+"?serverInfo", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("unsupported", func(t *testing.T) {
		app := newTestApp(new(serviceMocks.MockContentService))

		resp, err := app.Test(httptest.NewRequest(http.MethodPut, legacyPath+"?contRep=K1", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestLegacyDebugHeaders(t *testing.T) {
	svc := new(serviceMocks.MockContentService)
	svc.On("Fetch", mock.Anything, "doc-1").Return(&model.StoredFile{Bytes: []byte("x")}, nil)
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, legacyPath+"?cmd=get&docId=doc-1", nil))
	require.NoError(t, err)

	assert.Equal(t, "GET", resp.Header.Get("X-SAP-Debug-Method"))
	assert.Equal(t, "GET", resp.Header.Get("X-SAP-Debug-Action"))
	assert.Equal(t, "doc-1", resp.Header.Get("X-SAP-Debug-Docid"))
	assert.Equal(t, "cmd%3Dget%26docId%3Ddoc-1", resp.Header.Get("X-SAP-Debug-Query"))
}
