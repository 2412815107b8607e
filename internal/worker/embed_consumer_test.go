package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nsqio/go-nsq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"turath/internal/vector"
	"turath/internal/worker"
)

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, content string) ([]float32, error) {
	args := m.Called(ctx, content)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockIndex struct {
	mock.Mock
}

func (m *MockIndex) UpsertEntries(ctx context.Context, entries []vector.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) UpdateStatus(ctx context.Context, filename, status, errMsg string) error {
	return m.Called(ctx, filename, status, errMsg).Error(0)
}

func (m *MockCatalog) SetChunkCount(ctx context.Context, filename string, count int) error {
	return m.Called(ctx, filename, count).Error(0)
}

func testTask() worker.EmbedTask {
	return worker.EmbedTask{
		ChunkID:    "chunk_3",
		Content:    "El Jem hosts one of the largest Roman amphitheatres.",
		Title:      "El Jem",
		Source:     "Wikipedia",
		Site:       "El Jem",
		Filename:   "el_jem_en.txt",
		WordCount:  9,
		ChunkTotal: 4,
	}
}

func taskMessage(t *testing.T, task worker.EmbedTask) *nsq.Message {
	body, err := json.Marshal(task)
	require.NoError(t, err)
	return nsq.NewMessage(nsq.MessageID{}, body)
}

func TestEmbedConsumer_HandleMessage(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockIndex)
	catalog := new(MockCatalog)

	task := testTask()
	embedder.On("Embed", mock.Anything, task.Content).Return([]float32{0.1, 0.2}, nil).Once()
	index.On("UpsertEntries", mock.Anything, mock.MatchedBy(func(entries []vector.Entry) bool {
		return len(entries) == 1 &&
			entries[0].ID == "chunk_3" &&
			entries[0].Meta.Title == "El Jem" &&
			entries[0].Meta.Filename == "el_jem_en.txt"
	})).Return(nil).Once()
	catalog.On("SetChunkCount", mock.Anything, "el_jem_en.txt", 4).Return(nil).Once()
	catalog.On("UpdateStatus", mock.Anything, "el_jem_en.txt", "completed", "").Return(nil).Once()

	consumer := worker.NewEmbedConsumer(embedder, index, catalog)
	err := consumer.HandleMessage(taskMessage(t, task))

	assert.NoError(t, err)
	embedder.AssertExpectations(t)
	index.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestEmbedConsumer_PoisonPill(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockIndex)
	catalog := new(MockCatalog)

	consumer := worker.NewEmbedConsumer(embedder, index, catalog)

	// Invalid JSON must be dropped, not requeued.
	err := consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, []byte("{not json")))
	assert.NoError(t, err)

	// Empty body is a no-op.
	err = consumer.HandleMessage(nsq.NewMessage(nsq.MessageID{}, nil))
	assert.NoError(t, err)

	embedder.AssertNotCalled(t, "Embed")
}

func TestEmbedConsumer_EmbedFailureRequeues(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockIndex)
	catalog := new(MockCatalog)

	task := testTask()
	embedder.On("Embed", mock.Anything, task.Content).Return(nil, errors.New("api down")).Once()

	consumer := worker.NewEmbedConsumer(embedder, index, catalog)
	err := consumer.HandleMessage(taskMessage(t, task))

	assert.Error(t, err)
	index.AssertNotCalled(t, "UpsertEntries")
}

func TestEmbedConsumer_UpsertFailureRequeues(t *testing.T) {
	embedder := new(MockEmbedder)
	index := new(MockIndex)
	catalog := new(MockCatalog)

	task := testTask()
	embedder.On("Embed", mock.Anything, task.Content).Return([]float32{0.1}, nil).Once()
	index.On("UpsertEntries", mock.Anything, mock.Anything).Return(errors.New("index down")).Once()

	consumer := worker.NewEmbedConsumer(embedder, index, catalog)
	err := consumer.HandleMessage(taskMessage(t, task))

	assert.Error(t, err)
	catalog.AssertNotCalled(t, "UpdateStatus")
}
