package container

import (
	"context"
	"path/filepath"
	"testing"

	"puma/crawler/internal/config"
	"puma/crawler/internal/queue"

	"github.com/stretchr/testify/require"
)

func TestNewInMemory(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Crawler.Output = filepath.Join(t.TempDir(), "out.jsonl")

	c, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer c.Close()

	require.IsType(t, &queue.MemoryQueue{}, c.Queue)
	require.NotNil(t, c.Engine)
	require.NotNil(t, c.SeenIDs)
}
