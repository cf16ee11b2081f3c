package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/oracle/pkg/model"
	"github.com/m-mizutani/oracle/pkg/repository"
	"github.com/m-mizutani/oracle/pkg/usecase/journal"
	"github.com/m-mizutani/oracle/pkg/usecase/oracle"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

func TestRenderResult(t *testing.T) {
	testCases := map[string]struct {
		result   model.OracleResult
		contains []string
		excludes []string
	}{
		"poem": {
			result:   model.OracleResult{Type: model.ResultTypePoem, Text: "line one\nline two"},
			contains: []string{"POEM", "  line one\n", "  line two\n"},
			excludes: []string{"vision"},
		},
		"sonic": {
			result:   model.OracleResult{Type: model.ResultTypeSonic, Text: "wind in a hollow reed"},
			contains: []string{"SONIC", "~ wind in a hollow reed"},
		},
		"image with picture": {
			result: model.OracleResult{
				Type:     model.ResultTypeImage,
				Text:     "a lantern in fog",
				ImageURL: oracle.DataURI("image/png", pngBytes),
			},
			contains: []string{"IMAGE", "a lantern in fog", "[vision manifested: image/png, 6 bytes]"},
		},
		"image without picture": {
			result:   model.OracleResult{Type: model.ResultTypeImage, Text: "a lantern in fog"},
			contains: []string{"[the vision could not take form]"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			renderResult(&buf, tc.result)
			for _, s := range tc.contains {
				gt.S(t, buf.String()).Contains(s)
			}
			for _, s := range tc.excludes {
				gt.S(t, buf.String()).NotContains(s)
			}
		})
	}
}

func TestSaveImage(t *testing.T) {
	t.Run("writes decoded bytes", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "visions", "out.png")
		result := model.OracleResult{
			Type:     model.ResultTypeImage,
			Text:     "a lantern in fog",
			ImageURL: oracle.DataURI("image/png", pngBytes),
		}
		gt.NoError(t, saveImage(path, result))

		data, err := os.ReadFile(path)
		gt.NoError(t, err)
		gt.Equal(t, data, pngBytes)
	})

	t.Run("no image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.png")
		gt.Error(t, saveImage(path, model.OracleResult{Type: model.ResultTypePoem, Text: "x"}))
	})
}

func TestRunAsk(t *testing.T) {
	ctx := context.Background()
	image := func(ctx context.Context, query string) (*model.OracleResult, error) {
		return &model.OracleResult{
			Type:     model.ResultTypeImage,
			Text:     "a door of light",
			ImageURL: oracle.DataURI("image/png", pngBytes),
		}, nil
	}

	t.Run("records and saves image", func(t *testing.T) {
		slot := repository.NewMemory()
		store := journal.New(slot)
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "door.png")

		gt.NoError(t, runAsk(ctx, &mockSubmitter{submitFn: image}, store, &buf, noPending, "show me a door", path))
		gt.S(t, buf.String()).Contains("a door of light")

		data, err := os.ReadFile(path)
		gt.NoError(t, err)
		gt.Equal(t, data, pngBytes)

		reloaded := journal.New(slot)
		items := reloaded.Load(ctx)
		gt.A(t, items).Length(1)
		gt.Equal(t, items[0].Query, "show me a door")
		gt.Equal(t, items[0].Result.ImageURL, oracle.DataURI("image/png", pngBytes))
	})

	t.Run("save-image ignored for text answers", func(t *testing.T) {
		store := journal.New(repository.NewMemory())
		var buf bytes.Buffer
		path := filepath.Join(t.TempDir(), "none.png")

		gt.NoError(t, runAsk(ctx, &mockSubmitter{submitFn: poem}, store, &buf, noPending, "q", path))
		_, err := os.Stat(path)
		gt.True(t, os.IsNotExist(err))
	})

	t.Run("failure records nothing", func(t *testing.T) {
		store := journal.New(repository.NewMemory())
		var buf bytes.Buffer
		err := runAsk(ctx, &mockSubmitter{submitFn: func(ctx context.Context, query string) (*model.OracleResult, error) {
			return nil, model.ErrConnectionSevered
		}}, store, &buf, noPending, "q", "")
		gt.Error(t, err)
		gt.S(t, err.Error()).Contains(model.SeveredMessage)
		gt.Equal(t, store.Len(), 0)
	})
}
