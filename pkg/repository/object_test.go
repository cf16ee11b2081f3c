package repository_test

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/oracle/pkg/adapter"
	"github.com/m-mizutani/oracle/pkg/repository"
)

// Mock Storage
type mockStorage struct {
	data    map[string][]byte
	getErr  error
	deleted []string
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		data: make(map[string][]byte),
	}
}

func (m *mockStorage) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	return &mockWriteCloser{
		Buffer:  &bytes.Buffer{},
		storage: m,
		key:     key,
	}, nil
}

type mockWriteCloser struct {
	*bytes.Buffer
	storage *mockStorage
	key     string
}

func (m *mockWriteCloser) Close() error {
	m.storage.data[m.key] = m.Buffer.Bytes()
	return nil
}

func (m *mockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.data[key]
	if !ok {
		return nil, goerr.Wrap(adapter.ErrObjectNotFound, "data not found", goerr.V("key", key))
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	delete(m.data, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func TestObjectSlot(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	slot := repository.NewObject(st, "journal/oracle.json")

	data, err := slot.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)

	gt.NoError(t, slot.Save(ctx, []byte(`[]`)))
	gt.Equal(t, string(st.data["journal/oracle.json"]), "[]")

	data, err = slot.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "[]")

	gt.NoError(t, slot.Clear(ctx))
	gt.A(t, st.deleted).Length(1)
	_, ok := st.data["journal/oracle.json"]
	gt.False(t, ok)
}

func TestObjectSlotDefaultKey(t *testing.T) {
	ctx := context.Background()
	st := newMockStorage()
	slot := repository.NewObject(st, "")

	gt.NoError(t, slot.Save(ctx, []byte(`[]`)))
	_, ok := st.data["oracle_history.json"]
	gt.True(t, ok)
}

func TestObjectSlotReadError(t *testing.T) {
	st := newMockStorage()
	st.getErr = goerr.New("permission denied")
	slot := repository.NewObject(st, "k")

	_, err := slot.Load(context.Background())
	gt.Error(t, err)
}
