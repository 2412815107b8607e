package ingest_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"turath/features/ingest"
)

func TestHandler_Run(t *testing.T) {
	dir := t.TempDir()
	writeDoc(t, dir, "carthage_en.txt", "Title: Carthage\n\n", 100)

	repo := new(MockRepo)
	repo.On("Upsert", mock.Anything, mock.Anything).Return(nil).Once()
	repo.On("SetChunkCount", mock.Anything, "carthage_en.txt", 1).Return(nil).Once()
	repo.On("UpdateStatus", mock.Anything, "carthage_en.txt", ingest.StatusCompleted, "").Return(nil).Once()

	svc := ingest.NewService(repo, &fakeEmbedder{}, &capturingIndex{}, nil, testParams())
	handler := ingest.NewHandler(svc, dir, false)

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Run(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ingest.RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.Files)
	assert.Equal(t, 1, resp.Data.Chunks)
}

func TestHandler_Run_EmptyBodyUsesConfiguredDir(t *testing.T) {
	dir := t.TempDir()

	svc := ingest.NewService(new(MockRepo), &fakeEmbedder{}, &capturingIndex{}, nil, testParams())
	handler := ingest.NewHandler(svc, dir, false)

	req := httptest.NewRequest(http.MethodPost, "/ingest", strings.NewReader(""))
	rec := httptest.NewRecorder()
	handler.Run(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data ingest.RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Data.Files)
}

func TestHandler_List(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]ingest.Document{
		{ID: "1", Filename: "carthage_en.txt", Title: "Carthage", Status: ingest.StatusCompleted, ChunkCount: 12},
	}, nil).Once()

	svc := ingest.NewService(repo, nil, &capturingIndex{}, nil, testParams())
	handler := ingest.NewHandler(svc, "data", false)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []ingest.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Carthage", resp.Data[0].Title)
}

func TestHandler_List_Empty(t *testing.T) {
	repo := new(MockRepo)
	repo.On("List", mock.Anything).Return([]ingest.Document(nil), nil).Once()

	svc := ingest.NewService(repo, nil, &capturingIndex{}, nil, testParams())
	handler := ingest.NewHandler(svc, "data", false)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestHandler_Delete(t *testing.T) {
	repo := new(MockRepo)
	repo.On("Delete", mock.Anything, "carthage_en.txt").Return(nil).Once()

	index := &capturingIndex{}
	svc := ingest.NewService(repo, nil, index, nil, testParams())
	handler := ingest.NewHandler(svc, "data", false)

	req := httptest.NewRequest(http.MethodDelete, "/documents/carthage_en.txt", nil)
	req.SetPathValue("filename", "carthage_en.txt")
	rec := httptest.NewRecorder()
	handler.Delete(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []string{"carthage_en.txt"}, index.deleted)
	repo.AssertExpectations(t)
}
