package repository

import (
	"context"
	"errors"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/oracle/pkg/adapter"
	"github.com/m-mizutani/oracle/pkg/interfaces"
)

// Object keeps the slot as a single object in a Cloud Storage bucket
type Object struct {
	storage adapter.Storage
	key     string
}

var _ interfaces.Slot = (*Object)(nil)

func NewObject(storage adapter.Storage, key string) *Object {
	if key == "" {
		key = DefaultSlotName + ".json"
	}
	return &Object{storage: storage, key: key}
}

func (o *Object) Load(ctx context.Context) ([]byte, error) {
	reader, err := o.storage.Get(ctx, o.key)
	if errors.Is(err, adapter.ErrObjectNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get slot object", goerr.V("key", o.key))
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read slot object", goerr.V("key", o.key))
	}
	return data, nil
}

func (o *Object) Save(ctx context.Context, data []byte) error {
	writer, err := o.storage.Put(ctx, o.key)
	if err != nil {
		return goerr.Wrap(err, "failed to create storage writer", goerr.V("key", o.key))
	}

	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return goerr.Wrap(err, "failed to write slot object", goerr.V("key", o.key))
	}

	if err := writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close storage writer", goerr.V("key", o.key))
	}
	return nil
}

func (o *Object) Clear(ctx context.Context) error {
	if err := o.storage.Delete(ctx, o.key); err != nil {
		return goerr.Wrap(err, "failed to delete slot object", goerr.V("key", o.key))
	}
	return nil
}
