package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/oracle/pkg/repository"
)

func setupMongo(t *testing.T) *repository.Mongo {
	uri := os.Getenv("TEST_MONGODB_URI")
	if uri == "" {
		t.Skip("TEST_MONGODB_URI must be set to run MongoDB tests")
	}

	ctx := context.Background()
	repo, err := repository.NewMongo(ctx, uri, "oracle_test", "", uuid.NewString())
	gt.NoError(t, err)
	t.Cleanup(func() {
		_ = repo.Clear(ctx)
		_ = repo.Close(ctx)
	})

	return repo
}

func TestMongoSaveLoadClear(t *testing.T) {
	repo := setupMongo(t)
	ctx := context.Background()

	data, err := repo.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)

	gt.NoError(t, repo.Save(ctx, []byte(`[{"query":"q"}]`)))
	gt.NoError(t, repo.Save(ctx, []byte(`[{"query":"r"}]`)))

	data, err = repo.Load(ctx)
	gt.NoError(t, err)
	gt.Equal(t, string(data), `[{"query":"r"}]`)

	gt.NoError(t, repo.Clear(ctx))

	data, err = repo.Load(ctx)
	gt.NoError(t, err)
	gt.True(t, data == nil)
}
