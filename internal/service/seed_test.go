package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmeliving/sophie-go/internal/models"
)

type fakeSeedStore struct {
	count   int
	created []string
	deleted bool
	failOn  string
}

func (f *fakeSeedStore) CreateKnowledge(_ context.Context, category, content string, _ map[string]any, _ []float32) (*models.Knowledge, error) {
	if f.failOn != "" && category == f.failOn {
		return nil, errors.New("store down")
	}
	f.created = append(f.created, content)
	return &models.Knowledge{Category: category, Content: content}, nil
}

func (f *fakeSeedStore) CountKnowledge(_ context.Context) (int, error) {
	return f.count, nil
}

func (f *fakeSeedStore) DeleteAllKnowledge(_ context.Context) error {
	f.deleted = true
	return nil
}

type fakeBatchEmbedder struct {
	calls int
	texts []string
	err   error
}

func (f *fakeBatchEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	f.texts = texts
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

func TestSeedEmbedsAllFactsInOneBatch(t *testing.T) {
	store := &fakeSeedStore{}
	emb := &fakeBatchEmbedder{}

	result, err := NewSeeder(store, emb).Seed(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, emb.calls, "all facts should go to the embedder in a single batch")
	assert.Equal(t, result.Total, len(emb.texts))
	assert.Equal(t, result.Total, result.Created)
	assert.Zero(t, result.Failed)
	assert.Len(t, store.created, result.Total)
	assert.Greater(t, result.Total, 0)
}

func TestSeedSkipsWhenAlreadyPopulated(t *testing.T) {
	store := &fakeSeedStore{count: 12}
	emb := &fakeBatchEmbedder{}

	result, err := NewSeeder(store, emb).Seed(context.Background(), false)
	require.NoError(t, err)

	assert.Zero(t, emb.calls)
	assert.Zero(t, result.Created)
	assert.Empty(t, store.created)
}

func TestSeedResetClearsFirst(t *testing.T) {
	store := &fakeSeedStore{count: 12}
	emb := &fakeBatchEmbedder{}

	result, err := NewSeeder(store, emb).Seed(context.Background(), true)
	require.NoError(t, err)

	assert.True(t, store.deleted)
	assert.Equal(t, result.Total, result.Created)
}

func TestSeedBatchEmbedFailureAborts(t *testing.T) {
	store := &fakeSeedStore{}
	emb := &fakeBatchEmbedder{err: errors.New("provider down")}

	_, err := NewSeeder(store, emb).Seed(context.Background(), false)
	require.Error(t, err)
	assert.Empty(t, store.created)
}

func TestSeedCountsStoreFailures(t *testing.T) {
	store := &fakeSeedStore{failOn: "pricing"}
	emb := &fakeBatchEmbedder{}

	result, err := NewSeeder(store, emb).Seed(context.Background(), false)
	require.NoError(t, err)

	assert.Greater(t, result.Failed, 0)
	assert.Equal(t, result.Total, result.Created+result.Failed)
}