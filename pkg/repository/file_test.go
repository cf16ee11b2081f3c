package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/oracle/pkg/repository"
)

func TestFileLoadAbsent(t *testing.T) {
	slot := repository.NewFile(filepath.Join(t.TempDir(), "history.json"))

	data, err := slot.Load(context.Background())
	gt.NoError(t, err)
	gt.True(t, data == nil)
}

func TestFileSaveCreatesDirectory(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "dir", "history.json")
	slot := repository.NewFile(path)

	gt.NoError(t, slot.Save(ctx, []byte(`[]`)))

	raw, err := os.ReadFile(path)
	gt.NoError(t, err)
	gt.Equal(t, string(raw), "[]")

	_, err = os.Stat(path + ".tmp")
	gt.True(t, os.IsNotExist(err))
}

func TestFileSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	slot := repository.NewFile(filepath.Join(t.TempDir(), "history.json"))

	gt.NoError(t, slot.Save(ctx, []byte(`["first"]`)))
	gt.NoError(t, slot.Save(ctx, []byte(`["second"]`)))

	data, err := slot.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, string(data), `["second"]`)
}

func TestFileClear(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.json")
	slot := repository.NewFile(path)

	// Clearing an absent file succeeds
	gt.NoError(t, slot.Clear(ctx))

	gt.NoError(t, slot.Save(ctx, []byte(`[]`)))
	gt.NoError(t, slot.Clear(ctx))

	_, err := os.Stat(path)
	gt.True(t, os.IsNotExist(err))

	data, err := slot.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)
}

func TestMemorySlot(t *testing.T) {
	ctx := context.Background()
	slot := repository.NewMemory()

	data, err := slot.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)

	src := []byte(`[1]`)
	gt.NoError(t, slot.Save(ctx, src))
	src[1] = '2'

	data, err = slot.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, string(data), "[1]")

	gt.NoError(t, slot.Clear(ctx))
	data, err = slot.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)
}
